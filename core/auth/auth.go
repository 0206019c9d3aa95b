package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/irsalhamdi/uma-store/api/web"
	"github.com/irsalhamdi/uma-store/api/weberr"
	"github.com/irsalhamdi/uma-store/core/claims"
	"github.com/irsalhamdi/uma-store/core/user"
)

const (
	userIDKey = "userID"
	emailKey  = "email"
	roleKey   = "role"
	stateKey  = "oauthState"
)

// LoadAndSave adapts the session manager to the handler chain: the session is
// loaded before the handler runs and its cookie written afterwards.
func LoadAndSave(sm *scs.SessionManager) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			var err error
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				err = handler(r.Context(), w, r)
			})

			sm.LoadAndSave(next).ServeHTTP(w, r.WithContext(ctx))
			return err
		}
		return h
	}
	return m
}

// Authenticate rejects requests without a logged in session and exposes the
// caller through claims.
func Authenticate(sm *scs.SessionManager) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			c := claims.Claims{
				UserID: sm.GetString(ctx, userIDKey),
				Email:  sm.GetString(ctx, emailKey),
				Role:   sm.GetString(ctx, roleKey),
			}
			if c.UserID == "" {
				return weberr.NotAuthorized(errors.New("session has no user"))
			}

			return handler(claims.Set(ctx, c), w, r)
		}
		return h
	}
	return m
}

// Admin is Authenticate restricted to administrators.
func Admin(sm *scs.SessionManager) web.Middleware {
	admin := func(handler web.Handler) web.Handler {
		return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			if !claims.IsAdmin(ctx) {
				return weberr.Forbidden(errors.New("user is not an administrator"))
			}
			return handler(ctx, w, r)
		}
	}

	return func(handler web.Handler) web.Handler {
		return Authenticate(sm)(admin(handler))
	}
}

func login(ctx context.Context, sm *scs.SessionManager, u user.User) error {
	if err := sm.RenewToken(ctx); err != nil {
		return err
	}

	sm.Put(ctx, userIDKey, u.ID)
	sm.Put(ctx, emailKey, u.Email)
	sm.Put(ctx, roleKey, u.Role)
	return nil
}

func roleFor(email string, admins []string) string {
	for _, a := range admins {
		if n, err := user.NormalizeEmail(a); err == nil && n == email {
			return claims.RoleAdmin
		}
	}
	return claims.RoleUser
}
