package testutil_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/snaptrip/backend/migrations"
	"github.com/pkordes/snaptrip/backend/testutil"
)

// TestMigrations applies the cache schema from scratch, checks its tables and
// key columns, re-applies it as a no-op and rolls everything back.
func TestMigrations(t *testing.T) {
	db := testutil.NewSQLDB(t)
	ctx := context.Background()

	provider, err := migrations.NewProvider(db)
	require.NoError(t, err, "create goose provider")

	// Other packages' TestMain may already have migrated this database.
	_, err = provider.DownTo(ctx, 0)
	require.NoError(t, err, "initial reset")

	applied, err := migrations.Up(ctx, db)
	require.NoError(t, err, "goose up")
	assert.Positive(t, applied)

	for _, table := range migrations.Tables {
		assert.True(t, tableExists(t, db, table), "expected table %q", table)
	}
	assert.True(t, columnExists(t, db, "cached_trips", "lifecycle_status"))
	assert.True(t, columnExists(t, db, "cached_trips", "itinerary"))
	assert.True(t, columnExists(t, db, "cached_journal_entries", "trip_id"))

	again, err := migrations.Up(ctx, db)
	require.NoError(t, err, "second goose up")
	assert.Zero(t, again)

	_, err = provider.DownTo(ctx, 0)
	require.NoError(t, err, "goose down-to 0")
	for _, table := range migrations.Tables {
		assert.False(t, tableExists(t, db, table), "expected table %q to be dropped", table)
	}

	// Leave the schema in place for packages tested after this one.
	_, err = migrations.Up(ctx, db)
	require.NoError(t, err)
}

func tableExists(t *testing.T, db *sql.DB, table string) bool {
	t.Helper()
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = 'public' AND table_name = $1
		)`
	var ok bool
	require.NoError(t, db.QueryRowContext(context.Background(), q, table).Scan(&ok))
	return ok
}

func columnExists(t *testing.T, db *sql.DB, table, column string) bool {
	t.Helper()
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.columns
			WHERE table_schema = 'public' AND table_name = $1 AND column_name = $2
		)`
	var ok bool
	require.NoError(t, db.QueryRowContext(context.Background(), q, table, column).Scan(&ok))
	return ok
}
