package order

import (
	"context"
	"net/http"

	"github.com/irsalhamdi/uma-store/api/web"
	"github.com/irsalhamdi/uma-store/api/weberr"
	"github.com/irsalhamdi/uma-store/core/claims"
)

type checkoutRequest struct {
	MarkAsPaid bool `json:"markAsPaid"`
}

func HandleList(b *Builder) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(err)
		}

		sums, err := b.List(ctx, clm.UserID)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, sums, http.StatusOK)
	}
}

func HandleShow(b *Builder) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(err)
		}

		d, err := b.Get(ctx, clm.UserID, web.Param(r, "id"))
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, d, http.StatusOK)
	}
}

// HandleCheckout places an order from the cart. The body is optional and
// defaults to a pending order.
func HandleCheckout(b *Builder) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(err)
		}

		var req checkoutRequest
		if err := web.DecodeOptional(w, r, &req); err != nil {
			return err
		}

		d, err := b.Checkout(ctx, clm.UserID, req.MarkAsPaid)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, d, http.StatusOK)
	}
}

func HandlePay(b *Builder) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(err)
		}

		d, err := b.MarkPaid(ctx, clm.UserID, web.Param(r, "id"))
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, d, http.StatusOK)
	}
}
