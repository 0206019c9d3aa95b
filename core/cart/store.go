package cart

import (
	"context"
	"time"

	"github.com/irsalhamdi/uma-store/database"
	"github.com/jmoiron/sqlx"
)

type ownedItem struct {
	ID     string `db:"cart_item_id"`
	UserID string `db:"user_id"`
}

// Upsert inserts the line, or adds its quantity to the user's existing line
// for the same product in the same statement.
func Upsert(ctx context.Context, db sqlx.ExtContext, it Item) error {
	const q = `
	INSERT INTO cart_items
		(cart_item_id, user_id, product_id, quantity, created_at, updated_at)
	VALUES
		(:cart_item_id, :user_id, :product_id, :quantity, :created_at, :updated_at)
	ON CONFLICT (user_id, product_id) DO UPDATE SET
		quantity = cart_items.quantity + EXCLUDED.quantity,
		updated_at = EXCLUDED.updated_at`

	return database.NamedExecContext(ctx, db, q, it)
}

func FetchItem(ctx context.Context, db sqlx.ExtContext, userID, itemID string) (Item, error) {
	const q = `
	SELECT cart_item_id, user_id, product_id, quantity, created_at, updated_at
	FROM cart_items
	WHERE cart_item_id = :cart_item_id AND user_id = :user_id`

	var it Item
	if err := database.NamedQueryStruct(ctx, db, q, ownedItem{itemID, userID}, &it); err != nil {
		return Item{}, err
	}
	return it, nil
}

func UpdateQuantity(ctx context.Context, db sqlx.ExtContext, it Item) error {
	const q = `
	UPDATE cart_items SET
		quantity = :quantity,
		updated_at = :updated_at
	WHERE cart_item_id = :cart_item_id AND user_id = :user_id`

	return database.NamedExecContext(ctx, db, q, it)
}

// DeleteItem reports whether the user owned a line with that id.
func DeleteItem(ctx context.Context, db sqlx.ExtContext, userID, itemID string) (bool, error) {
	const q = `
	DELETE FROM cart_items
	WHERE cart_item_id = :cart_item_id AND user_id = :user_id`

	n, err := database.NamedExecAffected(ctx, db, q, ownedItem{itemID, userID})
	return n > 0, err
}

// Delete empties the user's cart.
func Delete(ctx context.Context, db sqlx.ExtContext, userID string) error {
	const q = `DELETE FROM cart_items WHERE user_id = :user_id`

	return database.NamedExecContext(ctx, db, q, struct {
		UserID string `db:"user_id"`
	}{userID})
}

// FetchLines joins the user's cart with the live product rows, oldest line
// first.
func FetchLines(ctx context.Context, db sqlx.ExtContext, userID string) ([]Line, error) {
	const q = `
	SELECT
		ci.cart_item_id, ci.product_id, ci.quantity,
		p.name, p.description, p.price, p.image_url
	FROM cart_items ci
	JOIN products p ON p.product_id = ci.product_id
	WHERE ci.user_id = :user_id
	ORDER BY ci.created_at, ci.cart_item_id`

	in := struct {
		UserID string `db:"user_id"`
	}{userID}

	var lines []Line
	if err := database.NamedQuerySlice(ctx, db, q, in, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// Decrement takes quantity units of productID out of the user's cart. A line
// left with nothing is removed; a missing line is not an error.
func Decrement(ctx context.Context, db sqlx.ExtContext, userID, productID string, quantity int) error {
	in := struct {
		UserID    string    `db:"user_id"`
		ProductID string    `db:"product_id"`
		Quantity  int       `db:"quantity"`
		UpdatedAt time.Time `db:"updated_at"`
	}{userID, productID, quantity, time.Now().UTC()}

	const del = `
	DELETE FROM cart_items
	WHERE user_id = :user_id AND product_id = :product_id AND quantity <= :quantity`

	if err := database.NamedExecContext(ctx, db, del, in); err != nil {
		return err
	}

	const up = `
	UPDATE cart_items SET
		quantity = quantity - :quantity,
		updated_at = :updated_at
	WHERE user_id = :user_id AND product_id = :product_id AND quantity > :quantity`

	return database.NamedExecContext(ctx, db, up, in)
}
