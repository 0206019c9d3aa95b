package payment

import (
	"context"
	"fmt"
	"strings"

	"github.com/irsalhamdi/uma-store/config"
	"github.com/irsalhamdi/uma-store/core/apperr"
	"github.com/plutov/paypal/v4"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	intentCapture    = "CAPTURE"
	captureCompleted = "COMPLETED"
)

// PaypalClient is the subset of the PayPal orders API in use.
type PaypalClient interface {
	CreateOrder(ctx context.Context, intent string, units []paypal.PurchaseUnitRequest, payer *paypal.CreateOrderPayer, app *paypal.ApplicationContext) (*paypal.Order, error)
	CaptureOrder(ctx context.Context, orderID string, req paypal.CaptureOrderRequest) (*paypal.CaptureOrderResponse, error)
}

type PaypalCheckout struct {
	OrderID  string `json:"orderId"`
	PaypalID string `json:"paypalId"`
	Status   string `json:"status"`
	Approve  string `json:"approveUrl,omitempty"`
}

type Paypal struct {
	cfg    config.Paypal
	stripe config.Stripe
	orders Orders
	client PaypalClient
	log    logrus.FieldLogger
}

// NewPaypal builds the adapter. Return and cancel urls are shared with the
// Stripe settings.
func NewPaypal(cfg config.Paypal, urls config.Stripe, orders Orders, client PaypalClient, log logrus.FieldLogger) *Paypal {
	return &Paypal{
		cfg:    cfg,
		stripe: urls,
		orders: orders,
		client: client,
		log:    log,
	}
}

func (p *Paypal) IsConfigured() bool {
	return p.cfg.Configured() && p.client != nil
}

func (p *Paypal) currency() string {
	c := strings.ToUpper(strings.TrimSpace(p.cfg.Currency))
	if c == "" {
		return "USD"
	}
	return c
}

func (p *Paypal) money(d decimal.Decimal) *paypal.Money {
	return &paypal.Money{Currency: p.currency(), Value: d.StringFixed(2)}
}

// Checkout places a pending order and registers it with PayPal. The buyer
// approves the PayPal order before it is captured.
func (p *Paypal) Checkout(ctx context.Context, userID string) (PaypalCheckout, error) {
	if !p.IsConfigured() {
		return PaypalCheckout{}, apperr.Unconfigured("paypal is not configured")
	}

	ord, err := p.orders.Checkout(ctx, userID, false)
	if err != nil {
		return PaypalCheckout{}, err
	}

	items := make([]paypal.Item, 0, len(ord.Items))
	for _, it := range ord.Items {
		items = append(items, paypal.Item{
			Quantity:    fmt.Sprint(it.Quantity),
			Name:        it.Name,
			Description: it.Description,
			UnitAmount:  p.money(it.Price),
		})
	}

	total := p.money(ord.TotalAmount)
	units := []paypal.PurchaseUnitRequest{{
		ReferenceID: ord.ID,
		Items:       items,

		Amount: &paypal.PurchaseUnitAmount{
			Currency: total.Currency,
			Value:    total.Value,

			Breakdown: &paypal.PurchaseUnitAmountBreakdown{ItemTotal: total},
		},
	}}

	app := &paypal.ApplicationContext{
		ReturnURL: AppendQuery(p.stripe.SuccessURL, Param{"orderId", ord.ID}),
		CancelURL: AppendQuery(p.stripe.CancelURL, Param{"orderId", ord.ID}),
	}

	pp, err := p.client.CreateOrder(ctx, intentCapture, units, nil, app)
	if err != nil {
		return PaypalCheckout{}, apperr.Failed("creating paypal order", err)
	}

	if err := p.orders.BindProvider(ctx, ord.ID, ProviderPaypal, pp.ID); err != nil {
		return PaypalCheckout{}, fmt.Errorf("recording paypal order[%s]: %w", pp.ID, err)
	}

	res := PaypalCheckout{OrderID: ord.ID, PaypalID: pp.ID, Status: pp.Status}
	for _, l := range pp.Links {
		if l.Rel == "approve" {
			res.Approve = l.Href
		}
	}

	return res, nil
}

// Capture collects an approved PayPal order and marks the matching order
// paid. Orders bound to someone else are reported as not found.
func (p *Paypal) Capture(ctx context.Context, userID, paypalID string) (string, error) {
	if !p.IsConfigured() {
		return "", apperr.Unconfigured("paypal is not configured")
	}

	ord, err := p.orders.FetchByProvider(ctx, ProviderPaypal, paypalID)
	if err != nil {
		return "", err
	}
	if ord.UserID != userID {
		return "", apperr.Missing("order")
	}

	resp, err := p.client.CaptureOrder(ctx, paypalID, paypal.CaptureOrderRequest{})
	if err != nil {
		return "", apperr.Failed("capturing paypal order", err)
	}

	if resp.Status != captureCompleted {
		return "", apperr.Failed("capturing paypal order",
			fmt.Errorf("paypal order[%s] captured with status[%s]", paypalID, resp.Status))
	}

	if _, err := p.orders.MarkPaid(ctx, userID, ord.ID); err != nil {
		return "", fmt.Errorf("the order was paid but its confirmation failed: %w", err)
	}

	p.log.WithFields(logrus.Fields{
		"order_id":  ord.ID,
		"paypal_id": paypalID,
	}).Info("paypal order captured")

	return ord.ID, nil
}
