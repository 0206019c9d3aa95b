package claims

import (
	"context"
	"errors"
)

const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// Claims identify the caller of a request once the session was verified.
type Claims struct {
	UserID string
	Email  string
	Role   string
}

type ctxKey int

const claimsKey ctxKey = 1

var ErrMissing = errors.New("claim value missing from context")

func Set(ctx context.Context, c Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

func Get(ctx context.Context) (Claims, error) {
	v, ok := ctx.Value(claimsKey).(Claims)
	if !ok || v.UserID == "" {
		return Claims{}, ErrMissing
	}
	return v, nil
}

func IsAdmin(ctx context.Context) bool {
	c, err := Get(ctx)
	if err != nil {
		return false
	}

	return c.Role == RoleAdmin
}
