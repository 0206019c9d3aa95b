// Package dev seeds demo data and resets the database of development
// deployments.
package dev

import (
	"context"
	"fmt"
	"time"

	"github.com/irsalhamdi/uma-store/core/order"
	"github.com/irsalhamdi/uma-store/core/product"
	"github.com/irsalhamdi/uma-store/core/user"
	"github.com/irsalhamdi/uma-store/database"
	"github.com/irsalhamdi/uma-store/validate"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const (
	DemoEmail    = "demo@uma.store"
	DemoPassword = "Password123!"
)

type demoProduct struct {
	name, description, price, image string
}

var catalog = []demoProduct{
	{"Classic White Tee", "100% cotton, comfy everyday wear.", "12.99", "https://picsum.photos/id/100/800/800"},
	{"Denim Jacket", "Light wash, unisex fit.", "49.50", "https://picsum.photos/id/1011/800/800"},
	{"Black Hoodie", "Fleece-lined with kangaroo pocket.", "35.00", "https://picsum.photos/id/1012/800/800"},
	{"Running Shorts", "Breathable, quick-dry fabric.", "19.99", "https://picsum.photos/id/1019/800/800"},
	{"Summer Dress", "Floral print A-line.", "29.90", "https://picsum.photos/id/1027/800/800"},
	{"Leather Belt", "Genuine leather, adjustable.", "15.00", "https://picsum.photos/id/1062/800/800"},
	{"Sport Sneakers", "Lightweight, everyday sneakers.", "59.00", "https://picsum.photos/id/1084/800/800"},
	{"Beanie", "Warm knit beanie.", "9.90", "https://picsum.photos/id/839/800/800"},
}

func empty(ctx context.Context, db sqlx.ExtContext, table string) (bool, error) {
	var exists bool
	if err := sqlx.GetContext(ctx, db, &exists, `SELECT EXISTS (SELECT 1 FROM `+table+`)`); err != nil {
		return false, fmt.Errorf("inspecting %s: %w", table, err)
	}
	return !exists, nil
}

// Seed fills every empty table with demo data: the catalog, a demo user and
// one paid order. Tables that already hold rows are left alone.
func Seed(ctx context.Context, db *sqlx.DB, log logrus.FieldLogger) error {
	return database.Transaction(ctx, db, func(tx sqlx.ExtContext) error {
		return seed(ctx, tx, log)
	})
}

func seed(ctx context.Context, tx sqlx.ExtContext, log logrus.FieldLogger) error {
	now := time.Now().UTC().Truncate(time.Microsecond)

	var first product.Product

	ok, err := empty(ctx, tx, "products")
	if err != nil {
		return err
	}
	if ok {
		for i, d := range catalog {
			img := d.image
			p := product.Product{
				ID:          validate.GenerateID(),
				Name:        d.name,
				Description: d.description,
				Price:       decimal.RequireFromString(d.price),
				ImageURL:    &img,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := product.Create(ctx, tx, p); err != nil {
				return fmt.Errorf("seeding product %q: %w", d.name, err)
			}
			if i == 0 {
				first = p
			}
		}
		log.WithField("count", len(catalog)).Info("seeded products")
	}

	var demo user.User

	ok, err = empty(ctx, tx, "users")
	if err != nil {
		return err
	}
	if ok {
		hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hashing demo password: %w", err)
		}

		demo = user.User{
			ID:           validate.GenerateID(),
			Email:        DemoEmail,
			PasswordHash: hash,
			Role:         "USER",
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := user.Create(ctx, tx, demo); err != nil {
			return fmt.Errorf("seeding demo user: %w", err)
		}
		log.WithField("email", DemoEmail).Info("seeded demo user")
	}

	ok, err = empty(ctx, tx, "orders")
	if err != nil {
		return err
	}
	if !ok || demo.ID == "" || first.ID == "" {
		return nil
	}

	ord := order.Order{
		ID:          validate.GenerateID(),
		UserID:      demo.ID,
		TotalAmount: first.Price,
		Status:      order.Paid,
		CreatedAt:   now,
		PaidAt:      &now,
	}
	if err := order.Create(ctx, tx, ord); err != nil {
		return fmt.Errorf("seeding demo order: %w", err)
	}

	it := order.Item{
		ID:          validate.GenerateID(),
		OrderID:     ord.ID,
		ProductID:   first.ID,
		Name:        first.Name,
		Description: first.Description,
		Price:       first.Price,
		Quantity:    1,
	}
	if err := order.CreateItem(ctx, tx, it); err != nil {
		return fmt.Errorf("seeding demo order item: %w", err)
	}
	log.WithField("order_id", ord.ID).Info("seeded demo order")

	return nil
}

// Reset wipes every table and seeds them again.
func Reset(ctx context.Context, db *sqlx.DB, log logrus.FieldLogger) error {
	return database.Transaction(ctx, db, func(tx sqlx.ExtContext) error {
		const q = `TRUNCATE order_items, orders, cart_items, users, products`
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("truncating tables: %w", err)
		}
		return seed(ctx, tx, log)
	})
}
