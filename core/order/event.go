package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventCreated = "order.created"
	EventPaid    = "order.paid"
)

// Publisher delivers order events to downstream consumers.
type Publisher interface {
	PublishOrderEvent(ctx context.Context, e Event) error
}

type Event struct {
	Type        string          `json:"type"`
	OrderID     string          `json:"orderId"`
	UserID      string          `json:"userId"`
	Status      Status          `json:"status"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Items       []Line          `json:"items,omitempty"`
	Timestamp   time.Time       `json:"timestamp"`
}

func newEvent(typ, userID string, d Detail, at time.Time) Event {
	return Event{
		Type:        typ,
		OrderID:     d.ID,
		UserID:      userID,
		Status:      d.Status,
		TotalAmount: d.TotalAmount,
		Items:       d.Items,
		Timestamp:   at,
	}
}
