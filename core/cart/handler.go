package cart

import (
	"context"
	"net/http"

	"github.com/irsalhamdi/uma-store/api/web"
	"github.com/irsalhamdi/uma-store/api/weberr"
	"github.com/irsalhamdi/uma-store/core/claims"
)

type addRequest struct {
	ProductID string `json:"productId"`
	Quantity  *int   `json:"quantity"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

func HandleShow(m *Manager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(err)
		}

		v, err := m.List(ctx, clm.UserID)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, v, http.StatusOK)
	}
}

// HandleAddItem adds to the cart; an omitted quantity means one unit.
func HandleAddItem(m *Manager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(err)
		}

		var req addRequest
		if err := web.Decode(w, r, &req); err != nil {
			return err
		}

		in := ItemNew{ProductID: req.ProductID, Quantity: 1}
		if req.Quantity != nil {
			in.Quantity = *req.Quantity
		}

		v, err := m.AddOrUpdate(ctx, clm.UserID, in)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, v, http.StatusOK)
	}
}

func HandleUpdateItem(m *Manager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(err)
		}

		var req quantityRequest
		if err := web.Decode(w, r, &req); err != nil {
			return err
		}

		v, err := m.SetQuantity(ctx, clm.UserID, web.Param(r, "id"), req.Quantity)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, v, http.StatusOK)
	}
}

func HandleDeleteItem(m *Manager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(err)
		}

		v, err := m.Remove(ctx, clm.UserID, web.Param(r, "id"))
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, v, http.StatusOK)
	}
}

func HandleClear(m *Manager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(err)
		}

		v, err := m.Clear(ctx, clm.UserID)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, v, http.StatusOK)
	}
}
