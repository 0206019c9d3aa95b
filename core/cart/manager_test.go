package cart_test

import (
	"context"
	"testing"
	"time"

	"github.com/irsalhamdi/uma-store/core/apperr"
	"github.com/irsalhamdi/uma-store/core/cart"
	"github.com/irsalhamdi/uma-store/core/product"
	"github.com/irsalhamdi/uma-store/core/user"
	"github.com/irsalhamdi/uma-store/database/dbtest"
	"github.com/irsalhamdi/uma-store/validate"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

func createUser(t *testing.T, db *sqlx.DB) string {
	t.Helper()

	now := time.Now().UTC()
	u := user.User{ID: validate.GenerateID(), Email: validate.GenerateID() + "@uma.store", Role: "USER", CreatedAt: now, UpdatedAt: now}
	if err := user.Create(context.Background(), db, u); err != nil {
		t.Fatalf("creating user: %v", err)
	}
	return u.ID
}

func createProduct(t *testing.T, db *sqlx.DB, name, price string) product.Product {
	t.Helper()

	now := time.Now().UTC()
	p := product.Product{
		ID:          validate.GenerateID(),
		Name:        name,
		Description: name + " description",
		Price:       decimal.RequireFromString(price),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := product.Create(context.Background(), db, p); err != nil {
		t.Fatalf("creating product: %v", err)
	}
	return p
}

func TestManager(t *testing.T) {
	db, _ := dbtest.New(t, "cart_test")
	m := cart.NewManager(db)
	ctx := context.Background()

	a := createProduct(t, db, "Classic White Tee", "12.99")
	b := createProduct(t, db, "Beanie", "9.90")

	t.Run("empty cart", func(t *testing.T) {
		v, err := m.List(ctx, createUser(t, db))
		if err != nil {
			t.Fatal(err)
		}
		if len(v.Items) != 0 || !v.Total.IsZero() {
			t.Fatalf("expected empty cart, got %+v", v)
		}
	})

	t.Run("adds merge into one line", func(t *testing.T) {
		uid := createUser(t, db)

		if _, err := m.AddOrUpdate(ctx, uid, cart.ItemNew{ProductID: a.ID, Quantity: 2}); err != nil {
			t.Fatal(err)
		}
		v, err := m.AddOrUpdate(ctx, uid, cart.ItemNew{ProductID: a.ID, Quantity: 3})
		if err != nil {
			t.Fatal(err)
		}

		if len(v.Items) != 1 {
			t.Fatalf("expected a single line, got %d", len(v.Items))
		}
		if v.Items[0].Quantity != 5 {
			t.Fatalf("expected quantity 5, got %d", v.Items[0].Quantity)
		}
		if !v.Total.Equal(decimal.RequireFromString("64.95")) {
			t.Fatalf("unexpected total %s", v.Total)
		}
	})

	t.Run("concurrent adds are commutative", func(t *testing.T) {
		uid := createUser(t, db)

		const n = 10
		errs := make(chan error, n)
		for i := 0; i < n; i++ {
			go func() {
				_, err := m.AddOrUpdate(ctx, uid, cart.ItemNew{ProductID: b.ID, Quantity: 1})
				errs <- err
			}()
		}
		for i := 0; i < n; i++ {
			if err := <-errs; err != nil {
				t.Fatal(err)
			}
		}

		v, err := m.List(ctx, uid)
		if err != nil {
			t.Fatal(err)
		}
		if len(v.Items) != 1 || v.Items[0].Quantity != n {
			t.Fatalf("expected one line with quantity %d, got %+v", n, v.Items)
		}
	})

	t.Run("quantities are capped", func(t *testing.T) {
		uid := createUser(t, db)

		v, err := m.AddOrUpdate(ctx, uid, cart.ItemNew{ProductID: a.ID, Quantity: cart.MaxQuantity - 1})
		if err != nil {
			t.Fatal(err)
		}

		_, err = m.AddOrUpdate(ctx, uid, cart.ItemNew{ProductID: a.ID, Quantity: 2})
		if !apperr.Is(err, apperr.InvalidArgument) {
			t.Fatalf("expected %s for an overflowing merge, got %v", apperr.InvalidArgument, err)
		}

		_, err = m.AddOrUpdate(ctx, uid, cart.ItemNew{ProductID: b.ID, Quantity: cart.MaxQuantity + 1})
		if !apperr.Is(err, apperr.InvalidArgument) {
			t.Fatalf("expected %s for an oversized add, got %v", apperr.InvalidArgument, err)
		}

		_, err = m.SetQuantity(ctx, uid, v.Items[0].ID, cart.MaxQuantity+1)
		if !apperr.Is(err, apperr.InvalidArgument) {
			t.Fatalf("expected %s for an oversized update, got %v", apperr.InvalidArgument, err)
		}

		v, err = m.List(ctx, uid)
		if err != nil {
			t.Fatal(err)
		}
		if len(v.Items) != 1 || v.Items[0].Quantity != cart.MaxQuantity-1 {
			t.Fatalf("expected the cart unchanged, got %+v", v.Items)
		}

		v, err = m.SetQuantity(ctx, uid, v.Items[0].ID, cart.MaxQuantity)
		if err != nil {
			t.Fatal(err)
		}
		if v.Items[0].Quantity != cart.MaxQuantity {
			t.Fatalf("expected quantity %d, got %d", cart.MaxQuantity, v.Items[0].Quantity)
		}
	})

	t.Run("unknown product", func(t *testing.T) {
		_, err := m.AddOrUpdate(ctx, createUser(t, db), cart.ItemNew{ProductID: validate.GenerateID(), Quantity: 1})
		if !apperr.Is(err, apperr.NotFound) {
			t.Fatalf("expected NotFound, got %v", err)
		}
	})

	t.Run("lines are ordered by creation", func(t *testing.T) {
		uid := createUser(t, db)
		if _, err := m.AddOrUpdate(ctx, uid, cart.ItemNew{ProductID: b.ID, Quantity: 1}); err != nil {
			t.Fatal(err)
		}
		if _, err := m.AddOrUpdate(ctx, uid, cart.ItemNew{ProductID: a.ID, Quantity: 1}); err != nil {
			t.Fatal(err)
		}
		v, err := m.AddOrUpdate(ctx, uid, cart.ItemNew{ProductID: b.ID, Quantity: 1})
		if err != nil {
			t.Fatal(err)
		}
		if v.Items[0].ProductID != b.ID || v.Items[1].ProductID != a.ID {
			t.Fatalf("unexpected order %s, %s", v.Items[0].Name, v.Items[1].Name)
		}
	})

	t.Run("set quantity", func(t *testing.T) {
		uid := createUser(t, db)
		v, err := m.AddOrUpdate(ctx, uid, cart.ItemNew{ProductID: a.ID, Quantity: 4})
		if err != nil {
			t.Fatal(err)
		}
		id := v.Items[0].ID

		v, err = m.SetQuantity(ctx, uid, id, 1)
		if err != nil {
			t.Fatal(err)
		}
		if v.Items[0].Quantity != 1 {
			t.Fatalf("expected quantity replaced with 1, got %d", v.Items[0].Quantity)
		}

		for _, q := range []int{0, -1} {
			if _, err := m.AddOrUpdate(ctx, uid, cart.ItemNew{ProductID: a.ID, Quantity: 7}); err != nil {
				t.Fatal(err)
			}
			cur, err := m.List(ctx, uid)
			if err != nil {
				t.Fatal(err)
			}

			v, err = m.SetQuantity(ctx, uid, cur.Items[0].ID, q)
			if err != nil {
				t.Fatal(err)
			}
			if len(v.Items) != 0 {
				t.Fatalf("quantity %d: expected the line to be removed, got %+v", q, v.Items)
			}
		}
	})

	t.Run("other users' items are not found", func(t *testing.T) {
		owner := createUser(t, db)
		other := createUser(t, db)

		v, err := m.AddOrUpdate(ctx, owner, cart.ItemNew{ProductID: a.ID, Quantity: 1})
		if err != nil {
			t.Fatal(err)
		}
		id := v.Items[0].ID

		if _, err := m.SetQuantity(ctx, other, id, 3); !apperr.Is(err, apperr.NotFound) {
			t.Fatalf("set quantity: expected NotFound, got %v", err)
		}
		if _, err := m.Remove(ctx, other, id); !apperr.Is(err, apperr.NotFound) {
			t.Fatalf("remove: expected NotFound, got %v", err)
		}
		if _, err := m.Remove(ctx, owner, validate.GenerateID()); !apperr.Is(err, apperr.NotFound) {
			t.Fatalf("remove missing: expected NotFound, got %v", err)
		}

		v, err = m.List(ctx, owner)
		if err != nil {
			t.Fatal(err)
		}
		if len(v.Items) != 1 || v.Items[0].Quantity != 1 {
			t.Fatalf("owner's cart changed: %+v", v.Items)
		}
	})

	t.Run("remove and clear", func(t *testing.T) {
		uid := createUser(t, db)
		if _, err := m.AddOrUpdate(ctx, uid, cart.ItemNew{ProductID: a.ID, Quantity: 1}); err != nil {
			t.Fatal(err)
		}
		v, err := m.AddOrUpdate(ctx, uid, cart.ItemNew{ProductID: b.ID, Quantity: 1})
		if err != nil {
			t.Fatal(err)
		}

		v, err = m.Remove(ctx, uid, v.Items[0].ID)
		if err != nil {
			t.Fatal(err)
		}
		if len(v.Items) != 1 || v.Items[0].ProductID != b.ID {
			t.Fatalf("unexpected cart after remove: %+v", v.Items)
		}

		for i := 0; i < 2; i++ {
			v, err = m.Clear(ctx, uid)
			if err != nil {
				t.Fatal(err)
			}
			if len(v.Items) != 0 {
				t.Fatalf("expected empty cart after clear, got %+v", v.Items)
			}
		}
	})

	t.Run("decrement", func(t *testing.T) {
		uid := createUser(t, db)
		if _, err := m.AddOrUpdate(ctx, uid, cart.ItemNew{ProductID: a.ID, Quantity: 3}); err != nil {
			t.Fatal(err)
		}
		if _, err := m.AddOrUpdate(ctx, uid, cart.ItemNew{ProductID: b.ID, Quantity: 1}); err != nil {
			t.Fatal(err)
		}

		if err := cart.Decrement(ctx, db, uid, a.ID, 2); err != nil {
			t.Fatal(err)
		}
		if err := cart.Decrement(ctx, db, uid, b.ID, 1); err != nil {
			t.Fatal(err)
		}
		if err := cart.Decrement(ctx, db, uid, validate.GenerateID(), 1); err != nil {
			t.Fatalf("missing line must not fail: %v", err)
		}

		v, err := m.List(ctx, uid)
		if err != nil {
			t.Fatal(err)
		}
		if len(v.Items) != 1 || v.Items[0].ProductID != a.ID || v.Items[0].Quantity != 1 {
			t.Fatalf("unexpected cart after decrement: %+v", v.Items)
		}
	})
}
