// Package repo contains the local cache: the on-device mirror of the remote
// document store, used for offline reads and to make sure nothing a user just
// wrote is lost. Each resource has its own file with a Postgres
// implementation; an in-process implementation lives in repo/memory.
// No business logic lives here; only SQL and type mapping.
package repo

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pkordes/snaptrip/backend/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// TripCache mirrors a user's trips. Rows are replaced whole on upsert, so a
// reader never sees half of an update.
type TripCache interface {
	// UpsertTrip inserts or replaces one trip. The trip must be persisted
	// (carry an id); otherwise domain.ErrValidation is returned.
	UpsertTrip(ctx context.Context, userID string, trip domain.Trip) error

	// UpsertTrips inserts or replaces every trip. Trips missing from the
	// argument are left alone: deletions go through DeleteTrip.
	UpsertTrips(ctx context.Context, userID string, trips []domain.Trip) error

	// ListTrips returns all cached trips of a user ordered by id.
	ListTrips(ctx context.Context, userID string) ([]domain.Trip, error)

	// GetTrip returns one cached trip.
	// Returns domain.ErrNotFound if it is not cached for that user.
	GetTrip(ctx context.Context, userID, tripID string) (domain.Trip, error)

	// DeleteTrip removes a trip. Deleting a missing trip is not an error.
	DeleteTrip(ctx context.Context, tripID string) error
}

// JournalCache mirrors the journal entries of trips.
type JournalCache interface {
	// UpsertJournalEntry inserts or replaces one entry. The entry must be
	// persisted and name its trip.
	UpsertJournalEntry(ctx context.Context, entry domain.JournalEntry) error

	// UpsertJournalEntries inserts or replaces every entry.
	UpsertJournalEntries(ctx context.Context, entries []domain.JournalEntry) error

	// ListJournalEntries returns the entries of a trip, newest first.
	ListJournalEntries(ctx context.Context, tripID string) ([]domain.JournalEntry, error)

	// DeleteJournalEntries removes every entry of a trip.
	DeleteJournalEntries(ctx context.Context, tripID string) error
}

// LocalCache is the full cache surface the sync services depend on.
type LocalCache interface {
	TripCache
	JournalCache
}

// pgCache is the Postgres implementation of LocalCache.
type pgCache struct {
	db db
}

// NewLocalCache constructs a LocalCache backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewLocalCache(db db) LocalCache {
	return &pgCache{db: db}
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan helpers
// to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}
