package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/irsalhamdi/uma-store/api/web"
	"github.com/irsalhamdi/uma-store/api/weberr"
	"github.com/irsalhamdi/uma-store/core/apperr"
	"github.com/irsalhamdi/uma-store/core/claims"
	"github.com/irsalhamdi/uma-store/core/user"
	"github.com/irsalhamdi/uma-store/database"
	"github.com/irsalhamdi/uma-store/rate"
	"github.com/irsalhamdi/uma-store/validate"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

var errCredentials = apperr.Invalid("invalid email or password")

func HandleRegister(db *sqlx.DB, sm *scs.SessionManager, admins []string) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var us user.UserSignup
		if err := web.Decode(w, r, &us); err != nil {
			return err
		}

		email, err := user.NormalizeEmail(us.Email)
		if err != nil {
			return apperr.Invalid("email is required and must be a valid address")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(us.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("generating password hash: %w", err)
		}

		now := time.Now().UTC()
		u := user.User{
			ID:           validate.GenerateID(),
			Email:        email,
			PasswordHash: hash,
			Role:         roleFor(email, admins),
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		if err := user.Create(ctx, db, u); err != nil {
			if errors.Is(err, database.ErrDBDuplicatedEntry) {
				return apperr.Invalid("this email address is already registered")
			}
			return fmt.Errorf("creating user: %w", err)
		}

		if err := login(ctx, sm, u); err != nil {
			return fmt.Errorf("starting session for user[%s]: %w", u.ID, err)
		}

		return web.Respond(ctx, w, u, http.StatusCreated)
	}
}

// HandleLogin checks the credentials and starts a session. Attempts are
// throttled per email address.
func HandleLogin(db *sqlx.DB, sm *scs.SessionManager, lim *rate.Limiter) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var ul user.UserLogin
		if err := web.Decode(w, r, &ul); err != nil {
			return err
		}

		email, err := user.NormalizeEmail(ul.Email)
		if err != nil {
			return errCredentials
		}

		if !lim.Allow(email) {
			return weberr.TooManyRequests(fmt.Errorf("login attempts exceeded for %s", email))
		}

		u, err := user.FetchByEmail(ctx, db, email)
		if errors.Is(err, database.ErrDBNotFound) {
			return errCredentials
		}
		if err != nil {
			return fmt.Errorf("fetching user by email: %w", err)
		}

		if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(ul.Password)); err != nil {
			return errCredentials
		}

		if err := login(ctx, sm, u); err != nil {
			return fmt.Errorf("starting session for user[%s]: %w", u.ID, err)
		}

		return web.Respond(ctx, w, u, http.StatusOK)
	}
}

func HandleLogout(sm *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		if err := sm.Destroy(ctx); err != nil {
			return fmt.Errorf("destroying session: %w", err)
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

func HandleMe(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(err)
		}

		u, err := user.Fetch(ctx, db, clm.UserID)
		if errors.Is(err, database.ErrDBNotFound) {
			return apperr.Missing("user")
		}
		if err != nil {
			return fmt.Errorf("fetching user[%s]: %w", clm.UserID, err)
		}

		return web.Respond(ctx, w, u, http.StatusOK)
	}
}
