package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/irsalhamdi/uma-store/core/apperr"
	"github.com/irsalhamdi/uma-store/core/cart"
	"github.com/irsalhamdi/uma-store/database"
	"github.com/irsalhamdi/uma-store/validate"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Builder turns carts into priced orders and owns the pending to paid
// transition.
type Builder struct {
	db     *sqlx.DB
	log    logrus.FieldLogger
	events Publisher

	created metric.Int64Counter
	paid    metric.Int64Counter
	revenue metric.Float64Counter
}

// NewBuilder wires a Builder. events may be nil, in which case nothing is
// published.
func NewBuilder(db *sqlx.DB, log logrus.FieldLogger, events Publisher) (*Builder, error) {
	meter := otel.Meter("uma-store/order")

	created, err := meter.Int64Counter("orders.created",
		metric.WithDescription("Orders placed from a cart"))
	if err != nil {
		return nil, fmt.Errorf("creating counter: %w", err)
	}

	paid, err := meter.Int64Counter("orders.paid",
		metric.WithDescription("Orders moved to paid"))
	if err != nil {
		return nil, fmt.Errorf("creating counter: %w", err)
	}

	revenue, err := meter.Float64Counter("orders.revenue",
		metric.WithDescription("Total amount of paid orders"))
	if err != nil {
		return nil, fmt.Errorf("creating counter: %w", err)
	}

	return &Builder{
		db:      db,
		log:     log,
		events:  events,
		created: created,
		paid:    paid,
		revenue: revenue,
	}, nil
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// Checkout snapshots the user's cart into a new order priced at this instant.
// When markPaid is set the order is born paid and the ordered quantities leave
// the cart in the same transaction; otherwise the cart is left as is.
func (b *Builder) Checkout(ctx context.Context, userID string, markPaid bool) (Detail, error) {
	var (
		ord   Order
		items []Item
	)

	err := database.Transaction(ctx, b.db, func(tx sqlx.ExtContext) error {
		lines, err := cart.FetchLines(ctx, tx, userID)
		if err != nil {
			return fmt.Errorf("fetching cart: %w", err)
		}

		if len(lines) == 0 {
			return apperr.Invalid("cart is empty")
		}

		at := now()
		ord = Order{
			ID:          validate.GenerateID(),
			UserID:      userID,
			TotalAmount: decimal.Zero,
			Status:      Pending,
			CreatedAt:   at,
		}
		if markPaid {
			ord.Status = Paid
			ord.PaidAt = &at
		}

		items = make([]Item, 0, len(lines))
		for i, l := range lines {
			items = append(items, Item{
				ID:          validate.GenerateID(),
				OrderID:     ord.ID,
				ProductID:   l.ProductID,
				Name:        l.Name,
				Description: l.Description,
				Price:       l.Price,
				Quantity:    l.Quantity,
				Position:    i,
			})
			ord.TotalAmount = ord.TotalAmount.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
		}

		if err := Create(ctx, tx, ord); err != nil {
			return fmt.Errorf("creating order: %w", err)
		}

		for _, it := range items {
			if err := CreateItem(ctx, tx, it); err != nil {
				return fmt.Errorf("creating item: %w", err)
			}
		}

		if markPaid {
			if err := takeFromCart(ctx, tx, userID, items); err != nil {
				return fmt.Errorf("flushing cart: %w", err)
			}
		}

		return nil
	})

	if err != nil {
		if _, ok := apperr.As(err); ok {
			return Detail{}, err
		}
		return Detail{}, fmt.Errorf("checking out cart of user[%s]: %w", userID, err)
	}

	d := newDetail(ord, items)

	b.created.Add(ctx, 1, metric.WithAttributes(attribute.String("status", string(d.Status))))
	b.publish(ctx, newEvent(EventCreated, userID, d, ord.CreatedAt))
	if markPaid {
		b.recordPaid(ctx, userID, d)
	}

	b.log.WithFields(logrus.Fields{
		"order_id": d.ID,
		"user_id":  userID,
		"status":   d.Status,
		"total":    d.TotalAmount.StringFixed(2),
	}).Info("order created")

	return d, nil
}

func (b *Builder) List(ctx context.Context, userID string) ([]Summary, error) {
	sums, err := ListByUser(ctx, b.db, userID)
	if err != nil {
		return nil, fmt.Errorf("listing orders of user[%s]: %w", userID, err)
	}
	return sums, nil
}

func (b *Builder) Get(ctx context.Context, userID, orderID string) (Detail, error) {
	return b.detail(ctx, b.db, userID, orderID)
}

func (b *Builder) detail(ctx context.Context, db sqlx.ExtContext, userID, orderID string) (Detail, error) {
	if err := validate.CheckID(orderID); err != nil {
		return Detail{}, apperr.Missing("order")
	}

	ord, err := Fetch(ctx, db, userID, orderID)
	if errors.Is(err, database.ErrDBNotFound) {
		return Detail{}, apperr.Missing("order")
	}
	if err != nil {
		return Detail{}, fmt.Errorf("fetching order[%s]: %w", orderID, err)
	}

	items, err := FetchItems(ctx, db, orderID)
	if err != nil {
		return Detail{}, fmt.Errorf("fetching items of order[%s]: %w", orderID, err)
	}

	return newDetail(ord, items), nil
}

// MarkPaid confirms payment of a pending order and takes the ordered
// quantities out of the user's cart. Confirming a paid order again changes
// nothing, except filling in a missing paid date.
func (b *Builder) MarkPaid(ctx context.Context, userID, orderID string) (Detail, error) {
	if err := validate.CheckID(orderID); err != nil {
		return Detail{}, apperr.Missing("order")
	}

	var (
		d            Detail
		transitioned bool
	)

	err := database.Transaction(ctx, b.db, func(tx sqlx.ExtContext) error {
		ord, err := Fetch(ctx, tx, userID, orderID)
		if errors.Is(err, database.ErrDBNotFound) {
			return apperr.Missing("order")
		}
		if err != nil {
			return fmt.Errorf("fetching order: %w", err)
		}

		at := now()

		if ord.Status == Paid {
			if ord.PaidAt == nil {
				if err := BackfillPaidAt(ctx, tx, userID, orderID, at); err != nil {
					return fmt.Errorf("backfilling paid date: %w", err)
				}
			}
		} else {
			ok, err := MarkPaid(ctx, tx, userID, orderID, at)
			if err != nil {
				return fmt.Errorf("updating status: %w", err)
			}

			// A concurrent confirmation already ran the reconciliation.
			if ok {
				transitioned = true

				items, err := FetchItems(ctx, tx, orderID)
				if err != nil {
					return fmt.Errorf("fetching items: %w", err)
				}

				if err := takeFromCart(ctx, tx, userID, items); err != nil {
					return fmt.Errorf("reconciling cart: %w", err)
				}
			}
		}

		d, err = b.detail(ctx, tx, userID, orderID)
		return err
	})

	if err != nil {
		if _, ok := apperr.As(err); ok {
			return Detail{}, err
		}
		return Detail{}, fmt.Errorf("marking order[%s] as paid: %w", orderID, err)
	}

	if transitioned {
		b.recordPaid(ctx, userID, d)
		b.log.WithFields(logrus.Fields{
			"order_id": d.ID,
			"user_id":  userID,
		}).Info("order paid")
	}

	return d, nil
}

// BindProvider records the external payment reference of an order.
func (b *Builder) BindProvider(ctx context.Context, orderID, provider, providerID string) error {
	ok, err := BindProvider(ctx, b.db, orderID, provider, providerID)
	if err != nil {
		return fmt.Errorf("binding order[%s] to %s[%s]: %w", orderID, provider, providerID, err)
	}
	if !ok {
		return apperr.Missing("order")
	}
	return nil
}

func (b *Builder) FetchByProvider(ctx context.Context, provider, providerID string) (Order, error) {
	ord, err := FetchByProvider(ctx, b.db, provider, providerID)
	if errors.Is(err, database.ErrDBNotFound) {
		return Order{}, apperr.Missing("order")
	}
	if err != nil {
		return Order{}, fmt.Errorf("fetching order bound to %s[%s]: %w", provider, providerID, err)
	}
	return ord, nil
}

// takeFromCart removes the ordered quantities from the user's cart. Units
// added after the order was taken stay in the cart.
func takeFromCart(ctx context.Context, tx sqlx.ExtContext, userID string, items []Item) error {
	for _, it := range items {
		if err := cart.Decrement(ctx, tx, userID, it.ProductID, it.Quantity); err != nil {
			return fmt.Errorf("product[%s]: %w", it.ProductID, err)
		}
	}
	return nil
}

func (b *Builder) recordPaid(ctx context.Context, userID string, d Detail) {
	b.paid.Add(ctx, 1)
	b.revenue.Add(ctx, d.TotalAmount.InexactFloat64())
	b.publish(ctx, newEvent(EventPaid, userID, d, now()))
}

func (b *Builder) publish(ctx context.Context, e Event) {
	if b.events == nil {
		return
	}

	if err := b.events.PublishOrderEvent(ctx, e); err != nil {
		b.log.WithFields(logrus.Fields{
			"order_id": e.OrderID,
			"event":    e.Type,
			"error":    err,
		}).Error("publishing order event")
	}
}
