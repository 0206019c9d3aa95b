package payment

import (
	"context"
	"errors"

	"github.com/irsalhamdi/uma-store/core/apperr"
	"github.com/irsalhamdi/uma-store/core/cart"
	"github.com/irsalhamdi/uma-store/core/order"
	"github.com/plutov/paypal/v4"
	"github.com/stripe/stripe-go/v74"
)

type binding struct {
	orderID, provider, providerID string
}

type fakeOrders struct {
	detail      order.Detail
	checkoutErr error
	markErr     error

	checkouts []bool
	paid      []string
	bindings  []binding
	bound     map[string]order.Order
}

func (f *fakeOrders) Checkout(_ context.Context, userID string, markPaid bool) (order.Detail, error) {
	f.checkouts = append(f.checkouts, markPaid)
	if f.checkoutErr != nil {
		return order.Detail{}, f.checkoutErr
	}
	return f.detail, nil
}

func (f *fakeOrders) MarkPaid(_ context.Context, userID, orderID string) (order.Detail, error) {
	if f.markErr != nil {
		return order.Detail{}, f.markErr
	}
	f.paid = append(f.paid, userID+"/"+orderID)
	return order.Detail{ID: orderID, Status: order.Paid}, nil
}

func (f *fakeOrders) BindProvider(_ context.Context, orderID, provider, providerID string) error {
	f.bindings = append(f.bindings, binding{orderID, provider, providerID})
	return nil
}

func (f *fakeOrders) FetchByProvider(_ context.Context, provider, providerID string) (order.Order, error) {
	o, ok := f.bound[provider+"/"+providerID]
	if !ok {
		return order.Order{}, apperr.Missing("order")
	}
	return o, nil
}

type fakeCarts struct {
	cleared []string
}

func (f *fakeCarts) Clear(_ context.Context, userID string) (cart.View, error) {
	f.cleared = append(f.cleared, userID)
	return cart.View{}, nil
}

type fakeSessions struct {
	params *stripe.CheckoutSessionParams
	sess   *stripe.CheckoutSession
	err    error
}

func (f *fakeSessions) New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	f.params = params
	if f.err != nil {
		return nil, f.err
	}
	return f.sess, nil
}

type fakePaypal struct {
	units   []paypal.PurchaseUnitRequest
	app     *paypal.ApplicationContext
	order   *paypal.Order
	status  string
	err     error
	capture []string
}

func (f *fakePaypal) CreateOrder(_ context.Context, intent string, units []paypal.PurchaseUnitRequest, _ *paypal.CreateOrderPayer, app *paypal.ApplicationContext) (*paypal.Order, error) {
	if intent != intentCapture {
		return nil, errors.New("unexpected intent " + intent)
	}
	f.units, f.app = units, app
	if f.err != nil {
		return nil, f.err
	}
	return f.order, nil
}

func (f *fakePaypal) CaptureOrder(_ context.Context, orderID string, _ paypal.CaptureOrderRequest) (*paypal.CaptureOrderResponse, error) {
	f.capture = append(f.capture, orderID)
	if f.err != nil {
		return nil, f.err
	}
	return &paypal.CaptureOrderResponse{ID: orderID, Status: f.status}, nil
}
