package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/ardanlabs/conf/v3"
	"github.com/irsalhamdi/uma-store/api"
	"github.com/irsalhamdi/uma-store/config"
	"github.com/irsalhamdi/uma-store/core/auth"
	"github.com/irsalhamdi/uma-store/core/cart"
	"github.com/irsalhamdi/uma-store/core/dev"
	"github.com/irsalhamdi/uma-store/core/order"
	"github.com/irsalhamdi/uma-store/core/payment"
	"github.com/irsalhamdi/uma-store/database"
	"github.com/irsalhamdi/uma-store/messaging"
	"github.com/irsalhamdi/uma-store/rate"
	"github.com/irsalhamdi/uma-store/telemetry"
	"github.com/plutov/paypal/v4"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	stripecl "github.com/stripe/stripe-go/v74/client"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/contrib/instrumentation/runtime"
)

var build = "develop"

func main() {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	if err := Run(log); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func Run(logger *logrus.Logger) error {
	logger.Infof("starting server, build[%s]", build)
	defer logger.Info("shutdown complete")

	const prefix = "UMA"
	var cfg config.Config
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	decimal.MarshalJSONWithoutQuotes = true

	lw := logger.Writer()
	defer lw.Close()
	errLog := log.New(lw, "", 0)

	// =========================================================================
	// Telemetry

	ctx := context.Background()

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, cfg.Telemetry.ServiceName, build, cfg.Telemetry.OTLPEndpoint)
	if err != nil {
		return fmt.Errorf("initializing tracer: %w", err)
	}
	defer shutdownTracer(context.Background())

	metrics, shutdownMeter, err := telemetry.InitMeterProvider(cfg.Telemetry.ServiceName, build)
	if err != nil {
		return fmt.Errorf("initializing meter: %w", err)
	}
	defer shutdownMeter(context.Background())

	if err := runtime.Start(); err != nil {
		return fmt.Errorf("starting runtime metrics: %w", err)
	}

	// =========================================================================
	// Database

	db, err := database.Open(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to open db connection: %w", err)
	}
	defer db.Close()

	if err := database.StatusCheck(ctx, db); err != nil {
		return fmt.Errorf("database is not reachable: %w", err)
	}

	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	if cfg.Dev.Seed {
		if err := dev.Seed(ctx, db, logger); err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}
	}

	// =========================================================================
	// Core

	sessionManager := scs.New()
	sessionManager.Lifetime = cfg.Auth.SessionLifetime
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode

	limiter := rate.NewLimiter(cfg.Auth.LoginInterval, cfg.Auth.LoginBurst, 10*time.Minute)
	defer limiter.Stop()

	var events order.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		producer := messaging.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer producer.Close()
		events = producer
		logger.Infof("publishing order events to topic[%s]", cfg.Kafka.Topic)
	}

	orders, err := order.NewBuilder(db, logger, events)
	if err != nil {
		return fmt.Errorf("building order service: %w", err)
	}
	carts := cart.NewManager(db)

	var sessions payment.SessionClient
	if cfg.Stripe.SecretKey != "" {
		strp := &stripecl.API{}
		strp.Init(cfg.Stripe.SecretKey, nil)
		sessions = strp.CheckoutSessions
	}
	stripe := payment.NewStripe(cfg.Stripe, orders, carts, sessions, logger)

	var ppClient payment.PaypalClient
	if cfg.Paypal.Configured() {
		pp, err := paypal.NewClient(cfg.Paypal.ClientID, cfg.Paypal.Secret, cfg.Paypal.URL)
		if err != nil {
			return fmt.Errorf("failed to build the paypal client: %w", err)
		}

		if _, err = pp.GetAccessToken(ctx); err != nil {
			return fmt.Errorf("failed to get the first paypal access token: %w", err)
		}
		ppClient = pp
	}
	pp := payment.NewPaypal(cfg.Paypal, cfg.Stripe, orders, ppClient, logger)

	dctx, cancel := context.WithTimeout(ctx, cfg.Oauth.DiscoveryTimeout)
	defer cancel()
	google := cfg.Oauth.Google
	oauthProvs, err := auth.MakeProviders(dctx, []auth.ProviderConfig{
		{Name: "google", Client: google.Client, Secret: google.Secret, URL: google.URL, RedirectURL: google.RedirectURL},
	})
	if err != nil {
		return fmt.Errorf("failed to discover oauth providers: %w", err)
	}

	// =========================================================================
	// API

	mux := api.APIMux(api.APIConfig{
		CorsOrigin:       cfg.Cors.Origin,
		Log:              logger,
		DB:               db,
		Session:          sessionManager,
		LoginLimiter:     limiter,
		AdminEmails:      cfg.Auth.AdminEmails,
		Carts:            carts,
		Orders:           orders,
		Stripe:           stripe,
		Paypal:           pp,
		Providers:        oauthProvs,
		LoginRedirectURL: cfg.Oauth.LoginRedirectURL,
		DevEnabled:       cfg.Dev.Enabled,
		Metrics:          metrics,
	})

	api := http.Server{
		Handler:      otelhttp.NewHandler(mux, cfg.Telemetry.ServiceName),
		Addr:         cfg.Web.Address,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     errLog,
	}

	serverErrors := make(chan error, 1)

	go func() {
		logger.Infof("starting api router at %s", api.Addr)
		serverErrors <- api.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Infof("shutting down: signal %s", sig)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		if err := api.Shutdown(ctx); err != nil {
			api.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}
	return nil
}
