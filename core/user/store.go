package user

import (
	"context"

	"github.com/irsalhamdi/uma-store/database"
	"github.com/jmoiron/sqlx"
)

func Create(ctx context.Context, db sqlx.ExtContext, u User) error {
	const q = `
	INSERT INTO users
		(user_id, email, password_hash, role, created_at, updated_at)
	VALUES
		(:user_id, :email, :password_hash, :role, :created_at, :updated_at)`

	return database.NamedExecContext(ctx, db, q, u)
}

func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (User, error) {
	const q = `
	SELECT user_id, email, password_hash, role, created_at, updated_at
	FROM users
	WHERE user_id = :user_id`

	in := struct {
		ID string `db:"user_id"`
	}{id}

	var u User
	if err := database.NamedQueryStruct(ctx, db, q, in, &u); err != nil {
		return User{}, err
	}
	return u, nil
}

func FetchByEmail(ctx context.Context, db sqlx.ExtContext, email string) (User, error) {
	const q = `
	SELECT user_id, email, password_hash, role, created_at, updated_at
	FROM users
	WHERE email = :email`

	in := struct {
		Email string `db:"email"`
	}{email}

	var u User
	if err := database.NamedQueryStruct(ctx, db, q, in, &u); err != nil {
		return User{}, err
	}
	return u, nil
}
