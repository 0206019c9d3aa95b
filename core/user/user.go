package user

import (
	"errors"
	"net/mail"
	"strings"
	"time"
)

type User struct {
	ID           string    `json:"id" db:"user_id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash []byte    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

type UserSignup struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type UserLogin struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

var ErrInvalidEmail = errors.New("email is not a valid address")

// NormalizeEmail trims, parses and lower-cases an address so that lookups and
// the unique constraint see a single spelling.
func NormalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", ErrInvalidEmail
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Name != "" {
		return "", ErrInvalidEmail
	}

	return strings.ToLower(addr.Address), nil
}
