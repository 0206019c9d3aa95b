package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/irsalhamdi/uma-store/api/web"
	"github.com/irsalhamdi/uma-store/api/weberr"
	"github.com/irsalhamdi/uma-store/core/user"
	"github.com/irsalhamdi/uma-store/database"
	"github.com/irsalhamdi/uma-store/random"
	"github.com/irsalhamdi/uma-store/validate"
	"github.com/jmoiron/sqlx"
	"golang.org/x/oauth2"
)

type ProviderConfig struct {
	Name        string
	Client      string
	Secret      string
	URL         string
	RedirectURL string
}

// Provider is an OpenID Connect identity provider users can log in with.
type Provider struct {
	oauth2.Config
	verifier *oidc.IDTokenVerifier
}

// MakeProviders discovers every configured provider. Entries without a client
// id are skipped so oauth stays optional.
func MakeProviders(ctx context.Context, cfgs []ProviderConfig) (map[string]Provider, error) {
	provs := make(map[string]Provider, len(cfgs))
	for _, c := range cfgs {
		if c.Client == "" {
			continue
		}

		p, err := oidc.NewProvider(ctx, c.URL)
		if err != nil {
			return nil, fmt.Errorf("discovering provider %s: %w", c.Name, err)
		}

		provs[c.Name] = Provider{
			Config: oauth2.Config{
				ClientID:     c.Client,
				ClientSecret: c.Secret,
				RedirectURL:  c.RedirectURL,
				Endpoint:     p.Endpoint(),
				Scopes:       []string{oidc.ScopeOpenID, "email"},
			},
			verifier: p.Verifier(&oidc.Config{ClientID: c.Client}),
		}
	}
	return provs, nil
}

func HandleOauthLogin(sm *scs.SessionManager, provs map[string]Provider) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		name := web.Param(r, "provider")
		prov, ok := provs[name]
		if !ok {
			return weberr.NotFound(fmt.Errorf("oauth provider %q is not configured", name))
		}

		state, err := random.StringSecure(32)
		if err != nil {
			return fmt.Errorf("generating oauth state: %w", err)
		}
		sm.Put(ctx, stateKey, state)

		http.Redirect(w, r, prov.AuthCodeURL(state), http.StatusFound)
		return nil
	}
}

// HandleOauthCallback finishes the provider login, creating a password-less
// user on first sight of a verified email.
func HandleOauthCallback(db *sqlx.DB, sm *scs.SessionManager, provs map[string]Provider, redirectURL string, admins []string) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		name := web.Param(r, "provider")
		prov, ok := provs[name]
		if !ok {
			return weberr.NotFound(fmt.Errorf("oauth provider %q is not configured", name))
		}

		state := sm.PopString(ctx, stateKey)
		if state == "" || state != r.URL.Query().Get("state") {
			return weberr.BadRequest(errors.New("oauth state mismatch"))
		}

		tok, err := prov.Exchange(ctx, r.URL.Query().Get("code"))
		if err != nil {
			return weberr.BadRequest(fmt.Errorf("exchanging oauth code: %w", err))
		}

		raw, ok := tok.Extra("id_token").(string)
		if !ok {
			return weberr.BadRequest(errors.New("oauth token has no id_token"))
		}

		idt, err := prov.verifier.Verify(ctx, raw)
		if err != nil {
			return weberr.BadRequest(fmt.Errorf("verifying id token: %w", err))
		}

		var info struct {
			Email    string `json:"email"`
			Verified bool   `json:"email_verified"`
		}
		if err := idt.Claims(&info); err != nil {
			return fmt.Errorf("reading id token claims: %w", err)
		}

		email, err := user.NormalizeEmail(info.Email)
		if err != nil || !info.Verified {
			return weberr.BadRequest(errors.New("provider did not return a verified email"))
		}

		u, err := user.FetchByEmail(ctx, db, email)
		switch {
		case errors.Is(err, database.ErrDBNotFound):
			now := time.Now().UTC()
			u = user.User{
				ID:        validate.GenerateID(),
				Email:     email,
				Role:      roleFor(email, admins),
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := user.Create(ctx, db, u); err != nil {
				return fmt.Errorf("creating oauth user: %w", err)
			}
		case err != nil:
			return fmt.Errorf("fetching user by email: %w", err)
		}

		if err := login(ctx, sm, u); err != nil {
			return fmt.Errorf("starting session for user[%s]: %w", u.ID, err)
		}

		http.Redirect(w, r, redirectURL, http.StatusFound)
		return nil
	}
}
