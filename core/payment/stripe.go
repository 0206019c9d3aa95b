package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/irsalhamdi/uma-store/config"
	"github.com/irsalhamdi/uma-store/core/apperr"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/webhook"
)

const eventSessionCompleted = "checkout.session.completed"

// ErrSignature reports a webhook payload whose signature did not verify.
var ErrSignature = errors.New("stripe signature verification failed")

// SessionClient creates Stripe checkout sessions. stripe-go's session.Client
// satisfies it.
type SessionClient interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

type CheckoutResult struct {
	OrderID     string `json:"orderId"`
	CheckoutURL string `json:"checkoutUrl"`
	SessionID   string `json:"sessionId"`
}

type Stripe struct {
	cfg      config.Stripe
	orders   Orders
	carts    Carts
	sessions SessionClient
	log      logrus.FieldLogger
}

func NewStripe(cfg config.Stripe, orders Orders, carts Carts, sessions SessionClient, log logrus.FieldLogger) *Stripe {
	log.WithFields(logrus.Fields{
		"secret_key":      cfg.SecretKey != "",
		"publishable_key": cfg.PublishableKey != "",
		"webhook_secret":  cfg.WebhookSecret != "",
	}).Info("stripe settings loaded")

	return &Stripe{
		cfg:      cfg,
		orders:   orders,
		carts:    carts,
		sessions: sessions,
		log:      log,
	}
}

func (s *Stripe) IsConfigured() bool {
	return s.cfg.Configured() && s.sessions != nil
}

func (s *Stripe) PublishableKey() string {
	return s.cfg.PublishableKey
}

func (s *Stripe) currency() string {
	c := strings.ToLower(strings.TrimSpace(s.cfg.Currency))
	if c == "" {
		return "usd"
	}
	return c
}

// CreateCheckoutSession places a pending order from the user's cart and opens
// a Stripe checkout session for it. The cart stays untouched until the
// payment is confirmed.
func (s *Stripe) CreateCheckoutSession(ctx context.Context, userID string) (CheckoutResult, error) {
	if !s.IsConfigured() {
		return CheckoutResult{}, apperr.Unconfigured("stripe is not configured")
	}

	ord, err := s.orders.Checkout(ctx, userID, false)
	if err != nil {
		return CheckoutResult{}, err
	}

	cur := s.currency()
	lines := make([]*stripe.CheckoutSessionLineItemParams, 0, len(ord.Items))
	for _, it := range ord.Items {
		lines = append(lines, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(int64(it.Quantity)),

			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(cur),
				UnitAmount: stripe.Int64(MinorUnits(it.Price)),

				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:        stripe.String(it.Name),
					Description: stripe.String(it.Description),
				},
			},
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(AppendQuery(s.cfg.SuccessURL,
			Param{"session_id", sessionPlaceholder},
			Param{"orderId", ord.ID},
		)),
		CancelURL: stripe.String(AppendQuery(s.cfg.CancelURL,
			Param{"orderId", ord.ID},
		)),
		LineItems: lines,
	}
	params.AddMetadata("orderId", ord.ID)
	params.AddMetadata("userId", userID)

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}
	params.Context = ctx

	sess, err := s.sessions.New(params)
	if err != nil {
		return CheckoutResult{}, apperr.Failed("creating stripe checkout session", err)
	}

	if strings.TrimSpace(sess.URL) == "" {
		return CheckoutResult{}, apperr.Failed("stripe session has no checkout url", nil)
	}

	if err := s.orders.BindProvider(ctx, ord.ID, ProviderStripe, sess.ID); err != nil {
		s.log.WithFields(logrus.Fields{
			"order_id":   ord.ID,
			"session_id": sess.ID,
			"error":      err,
		}).Warn("recording stripe session")
	}

	return CheckoutResult{
		OrderID:     ord.ID,
		CheckoutURL: sess.URL,
		SessionID:   sess.ID,
	}, nil
}

// HandleWebhook verifies and applies a Stripe event. Only completed checkout
// sessions carrying our metadata change state; the order is marked paid and
// the user's cart is cleared.
func (s *Stripe) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if strings.TrimSpace(s.cfg.WebhookSecret) == "" {
		return apperr.Unconfigured("stripe webhook secret is not configured")
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, s.cfg.WebhookSecret,
		webhook.ConstructEventOptions{
			Tolerance:                webhook.DefaultTolerance,
			IgnoreAPIVersionMismatch: true,
		})
	if err != nil {
		s.log.WithField("error", err).Warn("stripe webhook signature verification failed")
		return apperr.Failed("invalid stripe signature", fmt.Errorf("%w: %v", ErrSignature, err))
	}

	log := s.log.WithFields(logrus.Fields{"event_id": event.ID, "event_type": event.Type})

	if string(event.Type) != eventSessionCompleted {
		log.Info("ignoring stripe event")
		return nil
	}

	if event.Data == nil {
		log.Warn("stripe event has no data")
		return nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		log.WithField("error", err).Warn("stripe event data is not a checkout session")
		return nil
	}

	orderID := sess.Metadata["orderId"]
	userID := sess.Metadata["userId"]
	if orderID == "" || userID == "" {
		log.Warn("stripe session misses orderId or userId metadata")
		return nil
	}

	log.WithFields(logrus.Fields{"order_id": orderID, "user_id": userID}).Info("marking order paid")

	if _, err := s.orders.MarkPaid(ctx, userID, orderID); err != nil {
		return fmt.Errorf("confirming order[%s]: %w", orderID, err)
	}

	if _, err := s.carts.Clear(ctx, userID); err != nil {
		return fmt.Errorf("clearing cart of user[%s]: %w", userID, err)
	}

	return nil
}
