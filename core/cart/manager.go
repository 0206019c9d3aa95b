package cart

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/irsalhamdi/uma-store/core/apperr"
	"github.com/irsalhamdi/uma-store/core/product"
	"github.com/irsalhamdi/uma-store/database"
	"github.com/irsalhamdi/uma-store/validate"
	"github.com/jmoiron/sqlx"
)

var errTooMany = apperr.Invalid("quantity must be at most " + strconv.Itoa(MaxQuantity))

// Manager owns the per-user cart. Every call reads the current rows; nothing
// is cached between requests.
type Manager struct {
	db *sqlx.DB
}

func NewManager(db *sqlx.DB) *Manager {
	return &Manager{db: db}
}

func (m *Manager) List(ctx context.Context, userID string) (View, error) {
	lines, err := FetchLines(ctx, m.db, userID)
	if err != nil {
		return View{}, fmt.Errorf("fetching cart of user[%s]: %w", userID, err)
	}
	return newView(lines), nil
}

// AddOrUpdate adds quantity units of the product, merging into the existing
// line for that product if there is one.
func (m *Manager) AddOrUpdate(ctx context.Context, userID string, in ItemNew) (View, error) {
	in.ProductID = strings.TrimSpace(in.ProductID)
	if in.ProductID == "" {
		return View{}, apperr.Invalid("productId is required")
	}
	if in.Quantity <= 0 {
		return View{}, apperr.Invalid("quantity must be greater than zero")
	}
	if in.Quantity > MaxQuantity {
		return View{}, errTooMany
	}
	if err := validate.CheckID(in.ProductID); err != nil {
		return View{}, apperr.Missing("product")
	}

	if _, err := product.Fetch(ctx, m.db, in.ProductID); err != nil {
		if errors.Is(err, database.ErrDBNotFound) {
			return View{}, apperr.Missing("product")
		}
		return View{}, fmt.Errorf("fetching product[%s]: %w", in.ProductID, err)
	}

	now := time.Now().UTC()
	it := Item{
		ID:        validate.GenerateID(),
		UserID:    userID,
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := Upsert(ctx, m.db, it); err != nil {
		if errors.Is(err, database.ErrDBMissingRelation) {
			return View{}, apperr.Missing("product")
		}
		if errors.Is(err, database.ErrDBOutOfRange) {
			return View{}, errTooMany
		}
		return View{}, fmt.Errorf("adding product[%s] to cart of user[%s]: %w", in.ProductID, userID, err)
	}

	return m.List(ctx, userID)
}

// SetQuantity replaces the quantity of one of the user's lines; zero or less
// removes it.
func (m *Manager) SetQuantity(ctx context.Context, userID, itemID string, quantity int) (View, error) {
	if quantity <= 0 {
		return m.Remove(ctx, userID, itemID)
	}
	if quantity > MaxQuantity {
		return View{}, errTooMany
	}

	if err := validate.CheckID(itemID); err != nil {
		return View{}, apperr.Missing("cart item")
	}

	it, err := FetchItem(ctx, m.db, userID, itemID)
	if errors.Is(err, database.ErrDBNotFound) {
		return View{}, apperr.Missing("cart item")
	}
	if err != nil {
		return View{}, fmt.Errorf("fetching cart item[%s]: %w", itemID, err)
	}

	it.Quantity = quantity
	it.UpdatedAt = time.Now().UTC()
	if err := UpdateQuantity(ctx, m.db, it); err != nil {
		if errors.Is(err, database.ErrDBOutOfRange) {
			return View{}, errTooMany
		}
		return View{}, fmt.Errorf("updating cart item[%s]: %w", itemID, err)
	}

	return m.List(ctx, userID)
}

func (m *Manager) Remove(ctx context.Context, userID, itemID string) (View, error) {
	if err := validate.CheckID(itemID); err != nil {
		return View{}, apperr.Missing("cart item")
	}

	ok, err := DeleteItem(ctx, m.db, userID, itemID)
	if err != nil {
		return View{}, fmt.Errorf("deleting cart item[%s]: %w", itemID, err)
	}
	if !ok {
		return View{}, apperr.Missing("cart item")
	}

	return m.List(ctx, userID)
}

func (m *Manager) Clear(ctx context.Context, userID string) (View, error) {
	if err := Delete(ctx, m.db, userID); err != nil {
		return View{}, fmt.Errorf("clearing cart of user[%s]: %w", userID, err)
	}
	return newView(nil), nil
}
