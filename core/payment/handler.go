package payment

import (
	"context"
	"errors"
	"net/http"

	"github.com/irsalhamdi/uma-store/api/web"
	"github.com/irsalhamdi/uma-store/api/weberr"
	"github.com/irsalhamdi/uma-store/core/claims"
)

const signatureHeader = "Stripe-Signature"

type stripeConfig struct {
	Configured     bool   `json:"configured"`
	PublishableKey string `json:"publishableKey"`
}

func HandleStripeConfig(s *Stripe) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		cfg := stripeConfig{
			Configured:     s.IsConfigured(),
			PublishableKey: s.PublishableKey(),
		}
		return web.Respond(ctx, w, cfg, http.StatusOK)
	}
}

func HandleStripeCheckout(s *Stripe) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(err)
		}

		res, err := s.CreateCheckoutSession(ctx, clm.UserID)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, res, http.StatusOK)
	}
}

// HandleStripeWebhook passes the raw body to the adapter; it must not be
// decoded before the signature is checked.
func HandleStripeWebhook(s *Stripe) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		payload, err := web.Raw(w, r)
		if err != nil {
			return weberr.BadRequest(err)
		}

		if err := s.HandleWebhook(ctx, payload, r.Header.Get(signatureHeader)); err != nil {
			if errors.Is(err, ErrSignature) {
				return weberr.NewError(err, "invalid signature", http.StatusBadRequest)
			}
			return err
		}

		return web.Respond(ctx, w, map[string]string{"status": "received"}, http.StatusOK)
	}
}

func HandlePaypalCheckout(p *Paypal) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(err)
		}

		res, err := p.Checkout(ctx, clm.UserID)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, res, http.StatusOK)
	}
}

func HandlePaypalCapture(p *Paypal) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(err)
		}

		orderID, err := p.Capture(ctx, clm.UserID, web.Param(r, "id"))
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, map[string]string{"orderId": orderID}, http.StatusOK)
	}
}
