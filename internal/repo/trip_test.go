package repo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/snaptrip/backend/internal/domain"
	"github.com/pkordes/snaptrip/backend/internal/repo"
	"github.com/pkordes/snaptrip/backend/internal/repo/repotest"
	"github.com/pkordes/snaptrip/backend/testutil"
)

func newTestCache(t *testing.T) repo.LocalCache {
	t.Helper()
	return repo.NewLocalCache(testutil.NewTx(t))
}

func TestLocalCache_Contract(t *testing.T) {
	repotest.Run(t, newTestCache)
}

func TestLocalCache_LegacyCompletedStatusReadsAsFinished(t *testing.T) {
	ctx := context.Background()
	tx := testutil.NewTx(t)

	_, err := tx.Exec(ctx, `
		INSERT INTO cached_trips (id, user_id, name, lifecycle_status)
		VALUES ('old-1', 'user-1', 'Old trip', 'COMPLETED')`)
	require.NoError(t, err)

	got, err := repo.NewLocalCache(tx).GetTrip(ctx, "user-1", "old-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFinished, got.Status)
	assert.NotNil(t, got.Itinerary)
	assert.Empty(t, got.Itinerary)
	assert.Nil(t, got.Weather)
}

func TestLocalCache_UpsertTrips_Empty(t *testing.T) {
	c := newTestCache(t)
	require.NoError(t, c.UpsertTrips(context.Background(), "user-1", nil))
}
