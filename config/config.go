package config

import (
	"strings"
	"time"
)

type Config struct {
	Web       Web
	DB        DB
	Cors      Cors
	Auth      Auth
	Stripe    Stripe
	Paypal    Paypal
	Oauth     Oauth
	Kafka     Kafka
	Telemetry Telemetry
	Dev       Dev
}

type Web struct {
	Address         string        `conf:"default:0.0.0.0:8000"`
	ReadTimeout     time.Duration `conf:"default:5s"`
	WriteTimeout    time.Duration `conf:"default:10s"`
	IdleTimeout     time.Duration `conf:"default:120s"`
	ShutdownTimeout time.Duration `conf:"default:20s"`
}

type DB struct {
	User         string `conf:"default:postgres"`
	Password     string `conf:"default:postgres,mask"`
	Host         string `conf:"default:localhost:5432"`
	Name         string `conf:"default:postgres"`
	MaxIdleConns int    `conf:"default:0"`
	MaxOpenConns int    `conf:"default:0"`
	DisableTLS   bool   `conf:"default:true"`
}

type Cors struct {
	Origin string `conf:"default:http://localhost:3000"`
}

type Auth struct {
	SessionLifetime time.Duration `conf:"default:24h"`
	LoginInterval   time.Duration `conf:"default:2s"`
	LoginBurst      int           `conf:"default:5"`
	AdminEmails     []string
}

// Stripe holds the settings of the Stripe checkout integration. It is handed
// to the payment adapter as a value; nothing reads it from global state.
type Stripe struct {
	SecretKey      string        `conf:"mask"`
	PublishableKey string
	WebhookSecret  string        `conf:"mask"`
	SuccessURL     string        `conf:"default:http://localhost:3000/payment/success"`
	CancelURL      string        `conf:"default:http://localhost:3000/payment/cancel"`
	Currency       string        `conf:"default:usd"`
	Timeout        time.Duration `conf:"default:15s"`
}

// Configured reports whether every setting needed to open a checkout session
// is present.
func (s Stripe) Configured() bool {
	for _, v := range []string{s.SecretKey, s.PublishableKey, s.SuccessURL, s.CancelURL} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

type Paypal struct {
	ClientID string
	Secret   string `conf:"mask"`
	URL      string `conf:"default:https://api-m.sandbox.paypal.com"`
	Currency string `conf:"default:USD"`
}

func (p Paypal) Configured() bool {
	return strings.TrimSpace(p.ClientID) != "" && strings.TrimSpace(p.Secret) != ""
}

type Oauth struct {
	Google           OauthProvider
	DiscoveryTimeout time.Duration `conf:"default:10s"`
	LoginRedirectURL string        `conf:"default:http://localhost:3000"`
}

type OauthProvider struct {
	Client      string
	Secret      string `conf:"mask"`
	URL         string `conf:"default:https://accounts.google.com"`
	RedirectURL string `conf:"default:http://localhost:8000/auth/oauth-callback/google"`
}

type Kafka struct {
	Brokers []string
	Topic   string `conf:"default:orders"`
}

type Telemetry struct {
	ServiceName  string `conf:"default:uma-store"`
	OTLPEndpoint string
}

type Dev struct {
	Enabled bool `conf:"default:false"`
	Seed    bool `conf:"default:false"`
}
