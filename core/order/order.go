package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	Pending Status = "pending"
	Paid    Status = "paid"
)

// Order is the stored header of an order. TotalAmount is frozen at checkout.
type Order struct {
	ID          string          `json:"id" db:"order_id"`
	UserID      string          `json:"userId" db:"user_id"`
	TotalAmount decimal.Decimal `json:"totalAmount" db:"total_amount"`
	Status      Status          `json:"status" db:"status"`
	Provider    *string         `json:"provider,omitempty" db:"provider"`
	ProviderID  *string         `json:"providerId,omitempty" db:"provider_id"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
	PaidAt      *time.Time      `json:"paidAt" db:"paid_at"`
}

// Item is a snapshot of a product taken when the order was placed. It never
// follows later changes to the product.
type Item struct {
	ID          string          `db:"order_item_id"`
	OrderID     string          `db:"order_id"`
	ProductID   string          `db:"product_id"`
	Name        string          `db:"name"`
	Description string          `db:"description"`
	Price       decimal.Decimal `db:"price"`
	Quantity    int             `db:"quantity"`
	Position    int             `db:"position"`
}

type Summary struct {
	ID          string          `json:"id" db:"order_id"`
	TotalAmount decimal.Decimal `json:"totalAmount" db:"total_amount"`
	Status      Status          `json:"status" db:"status"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
}

type Line struct {
	ProductID   string          `json:"productId"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
}

type Detail struct {
	ID          string          `json:"id"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Status      Status          `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
	PaidAt      *time.Time      `json:"paidAt"`
	Items       []Line          `json:"items"`
}

func newDetail(o Order, items []Item) Detail {
	d := Detail{
		ID:          o.ID,
		TotalAmount: o.TotalAmount,
		Status:      o.Status,
		CreatedAt:   o.CreatedAt,
		PaidAt:      o.PaidAt,
		Items:       make([]Line, 0, len(items)),
	}

	for _, it := range items {
		d.Items = append(d.Items, Line{
			ProductID:   it.ProductID,
			Name:        it.Name,
			Description: it.Description,
			Price:       it.Price,
			Quantity:    it.Quantity,
			LineTotal:   it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))),
		})
	}

	return d
}
