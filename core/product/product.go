package product

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          string          `json:"id" db:"product_id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	ImageURL    *string         `json:"image" db:"image_url"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time       `json:"updatedAt" db:"updated_at"`
}

type ProductNew struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Description string          `json:"description" validate:"required,max=2000"`
	Price       decimal.Decimal `json:"price" validate:"gte=0"`
	ImageURL    *string         `json:"image" validate:"omitempty,url,max=1024"`
}

type ProductUp struct {
	Name        *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description" validate:"omitempty,min=1,max=2000"`
	Price       *decimal.Decimal `json:"price" validate:"omitempty,gte=0"`
	ImageURL    *string          `json:"image" validate:"omitempty,url,max=1024"`
}
