// Package payment connects orders to external payment providers: it opens
// checkout sessions for pending orders and turns provider confirmations into
// paid orders.
package payment

import (
	"context"

	"github.com/irsalhamdi/uma-store/core/cart"
	"github.com/irsalhamdi/uma-store/core/order"
)

const (
	ProviderStripe = "stripe"
	ProviderPaypal = "paypal"
)

// Orders is the part of the order builder the adapters rely on.
type Orders interface {
	Checkout(ctx context.Context, userID string, markPaid bool) (order.Detail, error)
	MarkPaid(ctx context.Context, userID, orderID string) (order.Detail, error)
	BindProvider(ctx context.Context, orderID, provider, providerID string) error
	FetchByProvider(ctx context.Context, provider, providerID string) (order.Order, error)
}

type Carts interface {
	Clear(ctx context.Context, userID string) (cart.View, error)
}
