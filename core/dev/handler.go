package dev

import (
	"context"
	"net/http"

	"github.com/irsalhamdi/uma-store/api/web"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

func HandleReset(db *sqlx.DB, log logrus.FieldLogger) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		if err := Reset(ctx, db, log); err != nil {
			return err
		}
		return web.Respond(ctx, w, map[string]string{"status": "reset"}, http.StatusOK)
	}
}
