package product

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/irsalhamdi/uma-store/api/web"
	"github.com/irsalhamdi/uma-store/api/weberr"
	"github.com/irsalhamdi/uma-store/core/apperr"
	"github.com/irsalhamdi/uma-store/database"
	"github.com/irsalhamdi/uma-store/validate"
	"github.com/jmoiron/sqlx"
)

func fetchParam(ctx context.Context, db sqlx.ExtContext, r *http.Request) (Product, error) {
	id := web.Param(r, "id")
	if err := validate.CheckID(id); err != nil {
		return Product{}, apperr.Missing("product")
	}

	p, err := Fetch(ctx, db, id)
	if errors.Is(err, database.ErrDBNotFound) {
		return Product{}, apperr.Missing("product")
	}
	if err != nil {
		return Product{}, fmt.Errorf("fetching product[%s]: %w", id, err)
	}
	return p, nil
}

func HandleList(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		ps, err := List(ctx, db)
		if err != nil {
			return fmt.Errorf("listing products: %w", err)
		}

		return web.Respond(ctx, w, ps, http.StatusOK)
	}
}

func HandleShow(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		p, err := fetchParam(ctx, db, r)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, p, http.StatusOK)
	}
}

func HandleCreate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var pn ProductNew
		if err := web.Decode(w, r, &pn); err != nil {
			return err
		}

		now := time.Now().UTC()
		p := Product{
			ID:          validate.GenerateID(),
			Name:        pn.Name,
			Description: pn.Description,
			Price:       pn.Price.Round(2),
			ImageURL:    pn.ImageURL,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		if err := Create(ctx, db, p); err != nil {
			return fmt.Errorf("creating product: %w", err)
		}

		return web.Respond(ctx, w, p, http.StatusCreated)
	}
}

func HandleUpdate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var pu ProductUp
		if err := web.Decode(w, r, &pu); err != nil {
			return err
		}

		p, err := fetchParam(ctx, db, r)
		if err != nil {
			return err
		}

		if pu.Name != nil {
			p.Name = *pu.Name
		}
		if pu.Description != nil {
			p.Description = *pu.Description
		}
		if pu.Price != nil {
			p.Price = pu.Price.Round(2)
		}
		if pu.ImageURL != nil {
			p.ImageURL = pu.ImageURL
		}
		p.UpdatedAt = time.Now().UTC()

		if err := Update(ctx, db, p); err != nil {
			return fmt.Errorf("updating product[%s]: %w", p.ID, err)
		}

		return web.Respond(ctx, w, p, http.StatusOK)
	}
}

func HandleDelete(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.NotFound(err)
		}

		ok, err := Delete(ctx, db, id)
		if err != nil {
			return fmt.Errorf("deleting product[%s]: %w", id, err)
		}
		if !ok {
			return weberr.NotFound(fmt.Errorf("product[%s] does not exist", id))
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}
