package api

import (
	"context"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/gorilla/mux"
	"github.com/irsalhamdi/uma-store/api/middleware"
	"github.com/irsalhamdi/uma-store/api/web"
	"github.com/irsalhamdi/uma-store/core/auth"
	"github.com/irsalhamdi/uma-store/core/cart"
	"github.com/irsalhamdi/uma-store/core/dev"
	"github.com/irsalhamdi/uma-store/core/order"
	"github.com/irsalhamdi/uma-store/core/payment"
	"github.com/irsalhamdi/uma-store/core/product"
	"github.com/irsalhamdi/uma-store/rate"
	"github.com/irsalhamdi/uma-store/telemetry"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type APIConfig struct {
	CorsOrigin       string
	Log              logrus.FieldLogger
	DB               *sqlx.DB
	Session          *scs.SessionManager
	LoginLimiter     *rate.Limiter
	AdminEmails      []string
	Carts            *cart.Manager
	Orders           *order.Builder
	Stripe           *payment.Stripe
	Paypal           *payment.Paypal
	Providers        map[string]auth.Provider
	LoginRedirectURL string
	DevEnabled       bool
	Metrics          http.Handler
}

type api struct {
	*mux.Router
	mw  []web.Middleware
	log logrus.FieldLogger
}

func APIMux(cfg APIConfig) http.Handler {
	a := &api{
		Router: mux.NewRouter(),
		log:    cfg.Log,
	}

	a.mw = append(a.mw, auth.LoadAndSave(cfg.Session))
	a.mw = append(a.mw, middleware.RequestID())
	a.mw = append(a.mw, middleware.Logger(cfg.Log))
	a.mw = append(a.mw, middleware.Errors(cfg.Log))
	a.mw = append(a.mw, middleware.Panics())

	if cfg.CorsOrigin != "" {
		a.mw = append(a.mw, middleware.Cors(cfg.CorsOrigin))

		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			w.WriteHeader(http.StatusNoContent)
			return nil
		}

		a.Handle(http.MethodOptions, "/{path:.*}", h)
	}

	authen := auth.Authenticate(cfg.Session)
	admin := auth.Admin(cfg.Session)

	a.Handle(http.MethodPost, "/auth/register", auth.HandleRegister(cfg.DB, cfg.Session, cfg.AdminEmails))
	a.Handle(http.MethodPost, "/auth/login", auth.HandleLogin(cfg.DB, cfg.Session, cfg.LoginLimiter))
	a.Handle(http.MethodPost, "/auth/logout", auth.HandleLogout(cfg.Session))
	a.Handle(http.MethodGet, "/auth/me", auth.HandleMe(cfg.DB), authen)
	a.Handle(http.MethodGet, "/auth/oauth-login/{provider}", auth.HandleOauthLogin(cfg.Session, cfg.Providers))
	a.Handle(http.MethodGet, "/auth/oauth-callback/{provider}", auth.HandleOauthCallback(cfg.DB, cfg.Session, cfg.Providers, cfg.LoginRedirectURL, cfg.AdminEmails))

	a.Handle(http.MethodGet, "/products/{id}", product.HandleShow(cfg.DB))
	a.Handle(http.MethodGet, "/products", product.HandleList(cfg.DB))
	a.Handle(http.MethodPost, "/products", product.HandleCreate(cfg.DB), admin)
	a.Handle(http.MethodPut, "/products/{id}", product.HandleUpdate(cfg.DB), admin)
	a.Handle(http.MethodDelete, "/products/{id}", product.HandleDelete(cfg.DB), admin)

	a.Handle(http.MethodGet, "/cart", cart.HandleShow(cfg.Carts), authen)
	a.Handle(http.MethodPost, "/cart", cart.HandleAddItem(cfg.Carts), authen)
	a.Handle(http.MethodDelete, "/cart", cart.HandleClear(cfg.Carts), authen)
	a.Handle(http.MethodPut, "/cart/{id}", cart.HandleUpdateItem(cfg.Carts), authen)
	a.Handle(http.MethodDelete, "/cart/{id}", cart.HandleDeleteItem(cfg.Carts), authen)

	a.Handle(http.MethodGet, "/orders", order.HandleList(cfg.Orders), authen)
	a.Handle(http.MethodPost, "/orders", order.HandleCheckout(cfg.Orders), authen)
	a.Handle(http.MethodGet, "/orders/{id}", order.HandleShow(cfg.Orders), authen)
	a.Handle(http.MethodPost, "/orders/{id}/pay", order.HandlePay(cfg.Orders), authen)

	a.Handle(http.MethodGet, "/payments/stripe/config", payment.HandleStripeConfig(cfg.Stripe))
	a.Handle(http.MethodPost, "/payments/stripe/checkout", payment.HandleStripeCheckout(cfg.Stripe), authen)
	a.Handle(http.MethodPost, "/payments/stripe/webhook", payment.HandleStripeWebhook(cfg.Stripe))
	a.Handle(http.MethodPost, "/payments/paypal/checkout", payment.HandlePaypalCheckout(cfg.Paypal), authen)
	a.Handle(http.MethodPost, "/payments/paypal/{id}/capture", payment.HandlePaypalCapture(cfg.Paypal), authen)

	if cfg.DevEnabled {
		a.Handle(http.MethodPost, "/dev/reset", dev.HandleReset(cfg.DB, cfg.Log))
	}

	if cfg.Metrics != nil {
		a.Router.Handle("/metrics", cfg.Metrics).Methods(http.MethodGet)
	}

	return a.Router
}

func (a *api) Handle(method string, path string, handler web.Handler, mw ...web.Middleware) {
	handler = web.WrapMiddleware(mw, handler)
	handler = web.WrapMiddleware(a.mw, handler)

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if err := handler(ctx, w, r); err != nil {
			a.log.WithFields(logrus.Fields{
				"req_id":  middleware.ContextRequestID(ctx),
				"message": err,
			}).Error("ERROR")
		}
	})

	a.Router.Handle(path, telemetry.WithHTTPRoute(path, h)).Methods(method)
}
