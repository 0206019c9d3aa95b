package cart

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// MaxQuantity is the largest quantity a cart line can hold.
const MaxQuantity = math.MaxInt32

// Item is one (user, product) cart line as stored.
type Item struct {
	ID        string    `json:"id" db:"cart_item_id"`
	UserID    string    `json:"-" db:"user_id"`
	ProductID string    `json:"productId" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

type ItemNew struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Line is a cart item priced with the live product data.
type Line struct {
	ID          string          `json:"id" db:"cart_item_id"`
	ProductID   string          `json:"productId" db:"product_id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	ImageURL    *string         `json:"image" db:"image_url"`
	Quantity    int             `json:"quantity" db:"quantity"`
	LineTotal   decimal.Decimal `json:"lineTotal" db:"-"`
}

type View struct {
	Items []Line          `json:"items"`
	Total decimal.Decimal `json:"total"`
}

func newView(lines []Line) View {
	v := View{Items: lines, Total: decimal.Zero}
	if v.Items == nil {
		v.Items = []Line{}
	}
	for i := range v.Items {
		l := &v.Items[i]
		l.LineTotal = l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
		v.Total = v.Total.Add(l.LineTotal)
	}
	return v
}
