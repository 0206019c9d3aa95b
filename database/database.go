package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"reflect"

	"github.com/XSAM/otelsql"
	"github.com/irsalhamdi/uma-store/config"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
	numericOutOfRange   = "22003"
)

var (
	ErrDBNotFound        = sql.ErrNoRows
	ErrDBDuplicatedEntry = errors.New("duplicated entry")
	ErrDBMissingRelation = errors.New("referenced row does not exist")
	ErrDBOutOfRange      = errors.New("value out of range for column")
)

// DSN renders the connection string of the postgres database described by cfg.
func DSN(cfg config.DB) string {
	sslMode := "require"
	if cfg.DisableTLS {
		sslMode = "disable"
	}

	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     cfg.Host,
		Path:     cfg.Name,
		RawQuery: q.Encode(),
	}

	return u.String()
}

// Open opens a traced connection pool. It does not check connectivity, see
// StatusCheck.
func Open(cfg config.DB) (*sqlx.DB, error) {
	db, err := otelsql.Open("postgres", DSN(cfg),
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
	)
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}

	dbx := sqlx.NewDb(db, "postgres")
	dbx.SetMaxIdleConns(cfg.MaxIdleConns)
	dbx.SetMaxOpenConns(cfg.MaxOpenConns)

	return dbx, nil
}

func StatusCheck(ctx context.Context, db *sqlx.DB) error {
	var tmp bool
	return db.QueryRowContext(ctx, `SELECT true`).Scan(&tmp)
}

// Transaction runs f inside a database transaction. The transaction is
// committed when f returns nil and rolled back otherwise.
func Transaction(ctx context.Context, db *sqlx.DB, f func(tx sqlx.ExtContext) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := f(tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			return fmt.Errorf("rollback transaction: %v: %w", rerr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

func NamedExecContext(ctx context.Context, db sqlx.ExtContext, query string, data any) error {
	_, err := NamedExecAffected(ctx, db, query, data)
	return err
}

// NamedExecAffected executes the query and reports how many rows it touched.
func NamedExecAffected(ctx context.Context, db sqlx.ExtContext, query string, data any) (int64, error) {
	res, err := sqlx.NamedExecContext(ctx, db, query, data)
	if err != nil {
		return 0, translate(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading affected rows: %w", err)
	}

	return n, nil
}

// NamedQueryStruct scans the first row of the result into dest, returning
// ErrDBNotFound when the query yields nothing.
func NamedQueryStruct(ctx context.Context, db sqlx.ExtContext, query string, data any, dest any) error {
	rows, err := sqlx.NamedQueryContext(ctx, db, query, data)
	if err != nil {
		return translate(err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return translate(err)
		}
		return ErrDBNotFound
	}

	if err := rows.StructScan(dest); err != nil {
		return err
	}

	return nil
}

func NamedQuerySlice[T any](ctx context.Context, db sqlx.ExtContext, query string, data any, dest *[]T) error {
	val := reflect.ValueOf(dest)
	if val.Kind() != reflect.Ptr || val.Elem().Kind() != reflect.Slice {
		return errors.New("must provide a pointer to a slice")
	}

	rows, err := sqlx.NamedQueryContext(ctx, db, query, data)
	if err != nil {
		return translate(err)
	}
	defer rows.Close()

	slice := []T{}
	for rows.Next() {
		v := new(T)
		if err := rows.StructScan(v); err != nil {
			return err
		}
		slice = append(slice, *v)
	}
	if err := rows.Err(); err != nil {
		return translate(err)
	}

	*dest = slice
	return nil
}

func translate(err error) error {
	var pqerr *pq.Error
	if errors.As(err, &pqerr) {
		switch pqerr.Code {
		case uniqueViolation:
			return fmt.Errorf("%w: %s", ErrDBDuplicatedEntry, pqerr.Constraint)
		case foreignKeyViolation:
			return fmt.Errorf("%w: %s", ErrDBMissingRelation, pqerr.Constraint)
		case numericOutOfRange:
			return fmt.Errorf("%w: %s", ErrDBOutOfRange, pqerr.Message)
		}
	}
	return err
}
