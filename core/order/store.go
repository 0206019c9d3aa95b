package order

import (
	"context"
	"time"

	"github.com/irsalhamdi/uma-store/database"
	"github.com/jmoiron/sqlx"
)

type ownedOrder struct {
	ID     string `db:"order_id"`
	UserID string `db:"user_id"`
}

type providerRef struct {
	ID         string `db:"order_id"`
	Provider   string `db:"provider"`
	ProviderID string `db:"provider_id"`
}

type paidUp struct {
	ID     string    `db:"order_id"`
	UserID string    `db:"user_id"`
	PaidAt time.Time `db:"paid_at"`
}

const orderColumns = `order_id, user_id, total_amount, status, provider, provider_id, created_at, paid_at`

func Create(ctx context.Context, db sqlx.ExtContext, o Order) error {
	const q = `
	INSERT INTO orders
		(order_id, user_id, total_amount, status, created_at, paid_at)
	VALUES
		(:order_id, :user_id, :total_amount, :status, :created_at, :paid_at)`

	return database.NamedExecContext(ctx, db, q, o)
}

func CreateItem(ctx context.Context, db sqlx.ExtContext, it Item) error {
	const q = `
	INSERT INTO order_items
		(order_item_id, order_id, product_id, name, description, price, quantity, position)
	VALUES
		(:order_item_id, :order_id, :product_id, :name, :description, :price, :quantity, :position)`

	return database.NamedExecContext(ctx, db, q, it)
}

// Fetch returns the order only if it belongs to userID.
func Fetch(ctx context.Context, db sqlx.ExtContext, userID, orderID string) (Order, error) {
	const q = `
	SELECT ` + orderColumns + `
	FROM orders
	WHERE order_id = :order_id AND user_id = :user_id`

	var o Order
	if err := database.NamedQueryStruct(ctx, db, q, ownedOrder{orderID, userID}, &o); err != nil {
		return Order{}, err
	}
	return o, nil
}

func FetchByProvider(ctx context.Context, db sqlx.ExtContext, provider, providerID string) (Order, error) {
	const q = `
	SELECT ` + orderColumns + `
	FROM orders
	WHERE provider = :provider AND provider_id = :provider_id`

	var o Order
	if err := database.NamedQueryStruct(ctx, db, q, providerRef{Provider: provider, ProviderID: providerID}, &o); err != nil {
		return Order{}, err
	}
	return o, nil
}

// ListByUser returns the user's orders, newest first.
func ListByUser(ctx context.Context, db sqlx.ExtContext, userID string) ([]Summary, error) {
	const q = `
	SELECT order_id, total_amount, status, created_at
	FROM orders
	WHERE user_id = :user_id
	ORDER BY created_at DESC, order_id`

	var sums []Summary
	if err := database.NamedQuerySlice(ctx, db, q, ownedOrder{UserID: userID}, &sums); err != nil {
		return nil, err
	}
	return sums, nil
}

func FetchItems(ctx context.Context, db sqlx.ExtContext, orderID string) ([]Item, error) {
	const q = `
	SELECT order_item_id, order_id, product_id, name, description, price, quantity, position
	FROM order_items
	WHERE order_id = :order_id
	ORDER BY position`

	var items []Item
	if err := database.NamedQuerySlice(ctx, db, q, ownedOrder{ID: orderID}, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// MarkPaid moves a pending order to paid. It reports false when the order was
// no longer pending, so only one caller ever performs the transition.
func MarkPaid(ctx context.Context, db sqlx.ExtContext, userID, orderID string, paidAt time.Time) (bool, error) {
	const q = `
	UPDATE orders SET
		status = 'paid',
		paid_at = :paid_at
	WHERE order_id = :order_id AND user_id = :user_id AND status = 'pending'`

	n, err := database.NamedExecAffected(ctx, db, q, paidUp{orderID, userID, paidAt})
	return n > 0, err
}

func BackfillPaidAt(ctx context.Context, db sqlx.ExtContext, userID, orderID string, paidAt time.Time) error {
	const q = `
	UPDATE orders SET
		paid_at = :paid_at
	WHERE order_id = :order_id AND user_id = :user_id AND paid_at IS NULL`

	return database.NamedExecContext(ctx, db, q, paidUp{orderID, userID, paidAt})
}

// BindProvider records the payment session an order is settled through.
func BindProvider(ctx context.Context, db sqlx.ExtContext, orderID, provider, providerID string) (bool, error) {
	const q = `
	UPDATE orders SET
		provider = :provider,
		provider_id = :provider_id
	WHERE order_id = :order_id`

	n, err := database.NamedExecAffected(ctx, db, q, providerRef{orderID, provider, providerID})
	return n > 0, err
}
