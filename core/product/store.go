package product

import (
	"context"

	"github.com/irsalhamdi/uma-store/database"
	"github.com/jmoiron/sqlx"
)

func Create(ctx context.Context, db sqlx.ExtContext, p Product) error {
	const q = `
	INSERT INTO products
		(product_id, name, description, price, image_url, created_at, updated_at)
	VALUES
		(:product_id, :name, :description, :price, :image_url, :created_at, :updated_at)`

	return database.NamedExecContext(ctx, db, q, p)
}

func Update(ctx context.Context, db sqlx.ExtContext, p Product) error {
	const q = `
	UPDATE products SET
		name = :name,
		description = :description,
		price = :price,
		image_url = :image_url,
		updated_at = :updated_at
	WHERE product_id = :product_id`

	return database.NamedExecContext(ctx, db, q, p)
}

// Delete removes the product and reports whether it existed. Order lines keep
// their snapshot; cart lines referencing it go with it.
func Delete(ctx context.Context, db sqlx.ExtContext, id string) (bool, error) {
	const q = `DELETE FROM products WHERE product_id = :product_id`

	n, err := database.NamedExecAffected(ctx, db, q, struct {
		ID string `db:"product_id"`
	}{id})
	return n > 0, err
}

func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (Product, error) {
	const q = `
	SELECT product_id, name, description, price, image_url, created_at, updated_at
	FROM products
	WHERE product_id = :product_id`

	in := struct {
		ID string `db:"product_id"`
	}{id}

	var p Product
	if err := database.NamedQueryStruct(ctx, db, q, in, &p); err != nil {
		return Product{}, err
	}
	return p, nil
}

func List(ctx context.Context, db sqlx.ExtContext) ([]Product, error) {
	const q = `
	SELECT product_id, name, description, price, image_url, created_at, updated_at
	FROM products
	ORDER BY created_at DESC, name`

	var ps []Product
	if err := database.NamedQuerySlice(ctx, db, q, struct{}{}, &ps); err != nil {
		return nil, err
	}
	return ps, nil
}
