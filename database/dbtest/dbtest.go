// Package dbtest starts a throwaway postgres container for tests.
package dbtest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/irsalhamdi/uma-store/config"
	"github.com/irsalhamdi/uma-store/database"
	"github.com/jmoiron/sqlx"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
)

const (
	image   = "postgres"
	tag     = "15-alpine"
	user    = "postgres"
	pass    = "postgres"
	maxWait = 90 * time.Second
)

// New starts postgres, applies the migrations and returns a connection bound
// to the lifetime of t. The test is skipped when docker is not reachable.
func New(t *testing.T, name string) (*sqlx.DB, config.DB) {
	t.Helper()

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("docker is not available: %v", err)
	}

	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker is not reachable: %v", err)
	}
	pool.MaxWait = maxWait

	res, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: image,
		Tag:        tag,
		Env: []string{
			"POSTGRES_USER=" + user,
			"POSTGRES_PASSWORD=" + pass,
			"POSTGRES_DB=" + name,
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("starting postgres container: %v", err)
	}

	t.Cleanup(func() {
		if err := pool.Purge(res); err != nil {
			t.Logf("purging postgres container: %v", err)
		}
	})

	cfg := config.DB{
		User:       user,
		Password:   pass,
		Host:       res.GetHostPort("5432/tcp"),
		Name:       name,
		DisableTLS: true,
	}

	var db *sqlx.DB
	err = pool.Retry(func() error {
		var err error
		if db, err = database.Open(cfg); err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := database.StatusCheck(ctx, db); err != nil {
			db.Close()
			return err
		}
		return nil
	})
	if err != nil {
		t.Fatalf("connecting to postgres: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrating: %v", err)
	}

	return db, cfg
}

// Exec runs raw statements, failing the test on the first error. Used for
// fixtures that have no store function of their own.
func Exec(t *testing.T, db *sqlx.DB, query string, args ...any) {
	t.Helper()

	if _, err := db.Exec(query, args...); err != nil {
		t.Fatal(fmt.Errorf("exec %q: %w", query, err))
	}
}
