// Package testutil provides helpers for the Postgres integration tests of the
// local cache. Every helper skips the calling test when TEST_DATABASE_URL is
// not set, so the unit suite runs without a database.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql

	"github.com/pkordes/snaptrip/backend/migrations"
)

// DSNVar names the environment variable holding the test database URL.
const DSNVar = "TEST_DATABASE_URL"

// NewPool opens a pool on the test database, closed when the test ends.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	pool, err := pgxpool.New(context.Background(), requireDSN(t))
	if err != nil {
		t.Fatalf("testutil.NewPool: open pool: %v", err)
	}
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		t.Fatalf("testutil.NewPool: ping: %v", err)
	}

	t.Cleanup(pool.Close)
	return pool
}

// NewTx begins a transaction on the test database and rolls it back when the
// test ends, so each test sees an empty cache.
func NewTx(t *testing.T) pgx.Tx {
	t.Helper()
	ctx := context.Background()

	tx, err := NewPool(t).Begin(ctx)
	if err != nil {
		t.Fatalf("testutil.NewTx: begin: %v", err)
	}
	t.Cleanup(func() { _ = tx.Rollback(ctx) })
	return tx
}

// NewSQLDB opens a database/sql handle on the test database for driving
// goose directly.
func NewSQLDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := openSQLDB(requireDSN(t))
	if err != nil {
		t.Fatalf("testutil.NewSQLDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// MigrateMain brings the test database schema up to date and then runs the
// package's tests. Call it from TestMain:
//
//	func TestMain(m *testing.M) { os.Exit(testutil.MigrateMain(m)) }
//
// Without TEST_DATABASE_URL it only runs the tests, which skip themselves.
func MigrateMain(m *testing.M) int {
	dsn := os.Getenv(DSNVar)
	if dsn == "" {
		return m.Run()
	}

	db, err := openSQLDB(dsn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "testutil.MigrateMain: %v\n", err)
		return 1
	}
	_, err = migrations.Up(context.Background(), db)
	db.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "testutil.MigrateMain: %v\n", err)
		return 1
	}
	return m.Run()
}

func openSQLDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return db, nil
}

func requireDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv(DSNVar)
	if dsn == "" {
		t.Skip(DSNVar + " not set; skipping integration test")
	}
	return dsn
}
