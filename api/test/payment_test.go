package test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"

	"github.com/gorilla/mux"
	"github.com/irsalhamdi/uma-store/api/web"
	"github.com/plutov/paypal/v4"
	mock "github.com/stripe/stripe-mock/param"
)

type paypalCall struct {
	Reference string
	Total     string
	Items     int
}

type mockPaypal struct {
	mu       sync.Mutex
	n        int
	checkout []paypalCall
	captured []string
}

func (m *mockPaypal) handle() http.Handler {
	token := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := map[string]any{"access_token": "token", "token_type": "Bearer", "expires_in": 3600}
		web.Respond(context.Background(), w, tok, 200)
	})

	checkout := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var pu struct {
			Units []paypal.PurchaseUnitRequest `json:"purchase_units"`
		}
		if err := json.NewDecoder(r.Body).Decode(&pu); err != nil || len(pu.Units) != 1 {
			web.Respond(context.Background(), w, nil, 400)
			return
		}
		u := pu.Units[0]

		m.mu.Lock()
		m.n++
		id := fmt.Sprintf("PAYPAL-%d", m.n)
		m.checkout = append(m.checkout, paypalCall{Reference: u.ReferenceID, Total: u.Amount.Value, Items: len(u.Items)})
		m.mu.Unlock()

		ord := paypal.Order{
			ID:     id,
			Status: "CREATED",
			Links:  []paypal.Link{{Rel: "approve", Href: "https://paypal.test/approve/" + id}},
		}
		web.Respond(context.Background(), w, ord, 201)
	})

	capture := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		m.mu.Lock()
		m.captured = append(m.captured, id)
		m.mu.Unlock()

		web.Respond(context.Background(), w, paypal.CaptureOrderResponse{ID: id, Status: "COMPLETED"}, 201)
	})

	r := mux.NewRouter()
	r.Handle("/v1/oauth2/token", token).Methods("POST")
	r.Handle("/v2/checkout/orders", checkout).Methods("POST")
	r.Handle("/v2/checkout/orders/{id}/capture", capture).Methods("POST")
	return r
}

type stripeLine struct {
	Name       string
	Quantity   int64
	UnitAmount int64
	Currency   string
}

type stripeSession struct {
	ID         string
	SuccessURL string
	CancelURL  string
	Metadata   map[string]string
	Lines      []stripeLine
}

type mockStripe struct {
	mu       sync.Mutex
	sessions []stripeSession
}

func (m *mockStripe) last() stripeSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[len(m.sessions)-1]
}

// indexed returns the elements of a form array, which the parser yields
// either as a slice or as a map keyed by index.
func indexed(v any) []any {
	switch vv := v.(type) {
	case []any:
		return vv
	case map[string]any:
		keys := make([]int, 0, len(vv))
		for k := range vv {
			i, err := strconv.Atoi(k)
			if err != nil {
				return nil
			}
			keys = append(keys, i)
		}
		sort.Ints(keys)

		out := make([]any, 0, len(keys))
		for _, k := range keys {
			out = append(out, vv[strconv.Itoa(k)])
		}
		return out
	}
	return nil
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func num(v any) int64 {
	n, _ := strconv.ParseInt(str(v), 10, 64)
	return n
}

func (m *mockStripe) handle() http.Handler {
	checkout := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		params, err := mock.ParseParams(r)
		if err != nil {
			web.Respond(context.Background(), w, nil, 400)
			return
		}

		var sess stripeSession
		for _, li := range indexed(params["line_items"]) {
			it, _ := li.(map[string]any)
			pd, _ := it["price_data"].(map[string]any)
			prod, _ := pd["product_data"].(map[string]any)

			sess.Lines = append(sess.Lines, stripeLine{
				Name:       str(prod["name"]),
				Quantity:   num(it["quantity"]),
				UnitAmount: num(pd["unit_amount"]),
				Currency:   str(pd["currency"]),
			})
		}

		if len(sess.Lines) == 0 {
			web.Respond(context.Background(), w, nil, 400)
			return
		}

		sess.Metadata = map[string]string{}
		if md, ok := params["metadata"].(map[string]any); ok {
			for k, v := range md {
				sess.Metadata[k] = str(v)
			}
		}
		sess.SuccessURL = str(params["success_url"])
		sess.CancelURL = str(params["cancel_url"])

		m.mu.Lock()
		sess.ID = fmt.Sprintf("cs_test_%d", len(m.sessions)+1)
		m.sessions = append(m.sessions, sess)
		m.mu.Unlock()

		resp := map[string]any{
			"id":       sess.ID,
			"object":   "checkout.session",
			"mode":     "payment",
			"url":      "https://checkout.stripe.test/" + sess.ID,
			"metadata": sess.Metadata,
		}
		web.Respond(context.Background(), w, resp, 200)
	})

	r := mux.NewRouter()
	r.Handle("/v1/checkout/sessions", checkout).Methods("POST")
	return r
}
