package dev_test

import (
	"context"
	"testing"

	"github.com/irsalhamdi/uma-store/core/dev"
	"github.com/irsalhamdi/uma-store/core/order"
	"github.com/irsalhamdi/uma-store/core/product"
	"github.com/irsalhamdi/uma-store/core/user"
	"github.com/irsalhamdi/uma-store/database/dbtest"
	"github.com/sirupsen/logrus/hooks/test"
	"golang.org/x/crypto/bcrypt"
)

func TestSeed(t *testing.T) {
	db, _ := dbtest.New(t, "dev_test")
	log, _ := test.NewNullLogger()
	ctx := context.Background()

	check := func(t *testing.T) user.User {
		t.Helper()

		ps, err := product.List(ctx, db)
		if err != nil {
			t.Fatal(err)
		}
		if len(ps) != 8 {
			t.Fatalf("expected 8 products, got %d", len(ps))
		}

		u, err := user.FetchByEmail(ctx, db, dev.DemoEmail)
		if err != nil {
			t.Fatal(err)
		}
		if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(dev.DemoPassword)); err != nil {
			t.Fatalf("demo password does not match: %v", err)
		}

		sums, err := order.ListByUser(ctx, db, u.ID)
		if err != nil {
			t.Fatal(err)
		}
		if len(sums) != 1 || sums[0].Status != order.Paid {
			t.Fatalf("expected one paid order, got %+v", sums)
		}
		return u
	}

	if err := dev.Seed(ctx, db, log); err != nil {
		t.Fatal(err)
	}
	first := check(t)

	if err := dev.Seed(ctx, db, log); err != nil {
		t.Fatal(err)
	}
	check(t)

	if err := dev.Reset(ctx, db, log); err != nil {
		t.Fatal(err)
	}
	if again := check(t); again.ID == first.ID {
		t.Error("expected the demo user to be recreated")
	}
}
