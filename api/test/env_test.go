package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/irsalhamdi/uma-store/api"
	"github.com/irsalhamdi/uma-store/config"
	"github.com/irsalhamdi/uma-store/core/cart"
	"github.com/irsalhamdi/uma-store/core/order"
	"github.com/irsalhamdi/uma-store/core/payment"
	"github.com/irsalhamdi/uma-store/database/dbtest"
	"github.com/irsalhamdi/uma-store/rate"
	"github.com/jmoiron/sqlx"
	"github.com/plutov/paypal/v4"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v74"
	stripecl "github.com/stripe/stripe-go/v74/client"
)

const (
	adminEmail = "admin@uma.store"
	password   = "secret-password"
)

type TestEnv struct {
	*httptest.Server
	DB            *sqlx.DB
	Stripe        *mockStripe
	Paypal        *mockPaypal
	WebhookSecret string
}

func NewTestEnv(t *testing.T, name string) (*TestEnv, error) {
	db, _ := dbtest.New(t, name)

	log := logrus.New()
	log.SetOutput(io.Discard)

	ms := &mockStripe{}
	stripeSrv := httptest.NewServer(ms.handle())
	t.Cleanup(stripeSrv.Close)

	mp := &mockPaypal{}
	paypalSrv := httptest.NewServer(mp.handle())
	t.Cleanup(paypalSrv.Close)

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL: stripe.String(stripeSrv.URL),
	})
	strp := &stripecl.API{}
	strp.Init("sk_test_123", &stripe.Backends{API: backend, Connect: backend, Uploads: backend})

	pp, err := paypal.NewClient("client", "secret", paypalSrv.URL)
	if err != nil {
		return nil, fmt.Errorf("building paypal client: %w", err)
	}
	if _, err := pp.GetAccessToken(context.Background()); err != nil {
		return nil, fmt.Errorf("fetching paypal token: %w", err)
	}

	stripeCfg := config.Stripe{
		SecretKey:      "sk_test_123",
		PublishableKey: "pk_test_123",
		WebhookSecret:  "whsec_test_123",
		SuccessURL:     "http://localhost:3000/payment/success",
		CancelURL:      "http://localhost:3000/payment/cancel",
		Currency:       "usd",
		Timeout:        5 * time.Second,
	}
	paypalCfg := config.Paypal{ClientID: "client", Secret: "secret", URL: paypalSrv.URL, Currency: "USD"}

	orders, err := order.NewBuilder(db, log, nil)
	if err != nil {
		return nil, fmt.Errorf("building orders: %w", err)
	}
	carts := cart.NewManager(db)

	limiter := rate.NewLimiter(time.Millisecond, 100, time.Minute)
	t.Cleanup(limiter.Stop)

	mux := api.APIMux(api.APIConfig{
		Log:          log,
		DB:           db,
		Session:      scs.New(),
		LoginLimiter: limiter,
		AdminEmails:  []string{adminEmail},
		Carts:        carts,
		Orders:       orders,
		Stripe:       payment.NewStripe(stripeCfg, orders, carts, strp.CheckoutSessions, log),
		Paypal:       payment.NewPaypal(paypalCfg, stripeCfg, orders, pp, log),
		DevEnabled:   true,
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	srv.Client().Jar = jar

	return &TestEnv{
		Server:        srv,
		DB:            db,
		Stripe:        ms,
		Paypal:        mp,
		WebhookSecret: stripeCfg.WebhookSecret,
	}, nil
}

// do sends a JSON request with the session cookies of the env's client and
// decodes the response into out when it is not nil.
func (e *TestEnv) do(t *testing.T, method, path string, body any, out any) *http.Response {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	}

	r, err := http.NewRequest(method, e.URL+path, rd)
	if err != nil {
		t.Fatal(err)
	}
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}

	w, err := e.Client().Do(r)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()

	raw, err := io.ReadAll(w.Body)
	if err != nil {
		t.Fatal(err)
	}

	if out != nil && w.StatusCode < 300 && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			t.Fatalf("decoding %s %s response %q: %v", method, path, raw, err)
		}
	}

	return w
}

func (e *TestEnv) expect(t *testing.T, method, path string, body any, status int, out any) {
	t.Helper()

	if w := e.do(t, method, path, body, out); w.StatusCode != status {
		t.Fatalf("%s %s: expected status %d, got %s", method, path, status, w.Status)
	}
}

func (e *TestEnv) register(t *testing.T, email string) {
	t.Helper()
	e.expect(t, http.MethodPost, "/auth/register", map[string]string{"email": email, "password": password}, http.StatusCreated, nil)
}

func (e *TestEnv) login(t *testing.T, email string) {
	t.Helper()
	e.expect(t, http.MethodPost, "/auth/login", map[string]string{"email": email, "password": password}, http.StatusOK, nil)
}

func (e *TestEnv) logout(t *testing.T) {
	t.Helper()
	e.expect(t, http.MethodPost, "/auth/logout", nil, http.StatusNoContent, nil)
}
