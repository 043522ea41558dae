// Package repotest holds the behavioural contract every repo.LocalCache
// implementation must satisfy. Adapter packages call Run from their own tests.
package repotest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/snaptrip/backend/internal/domain"
	"github.com/pkordes/snaptrip/backend/internal/repo"
)

// Factory returns a fresh, empty cache for one subtest.
type Factory func(t *testing.T) repo.LocalCache

// TripFixture returns a persisted two-day trip with weather and a rating.
func TripFixture(id string) domain.Trip {
	rating := 4.5
	return domain.Trip{
		Ref:  domain.Persisted(id),
		Name: "Rome",
		Itinerary: []domain.Day{
			{Number: 1, Places: []domain.Place{
				{Name: "Colosseum", Address: "Piazza del Colosseo", Lat: 41.89, Lng: 12.49, Rating: &rating, PhotoReference: "ph-1"},
				{Name: "Forum", Lat: 41.892, Lng: 12.485},
			}},
			{Number: 2, Places: []domain.Place{
				{Name: "Vatican", Lat: 41.902, Lng: 12.453},
			}},
		},
		Weather:          &domain.Weather{Temp: 21, Description: "Clear", IconCode: "01d"},
		CoverPhoto:       "https://storage.example/covers/1.jpg",
		Status:           domain.StatusSaved,
		GenerationStatus: "success",
	}
}

// Run executes the contract against caches produced by newCache.
func Run(t *testing.T, newCache Factory) {
	t.Helper()
	ctx := context.Background()

	t.Run("upsert then get round-trips every field", func(t *testing.T) {
		c := newCache(t)
		in := TripFixture("trip-1")

		require.NoError(t, c.UpsertTrip(ctx, "user-1", in))

		got, err := c.GetTrip(ctx, "user-1", "trip-1")
		require.NoError(t, err)
		assert.Equal(t, in, got)
	})

	t.Run("upsert replaces the whole row", func(t *testing.T) {
		c := newCache(t)
		in := TripFixture("trip-1")
		require.NoError(t, c.UpsertTrip(ctx, "user-1", in))

		in.Name = "Rome again"
		in.Weather = nil
		in.Itinerary = in.Itinerary[:1]
		in.Status = domain.StatusActive
		require.NoError(t, c.UpsertTrip(ctx, "user-1", in))

		got, err := c.GetTrip(ctx, "user-1", "trip-1")
		require.NoError(t, err)
		assert.Equal(t, "Rome again", got.Name)
		assert.Nil(t, got.Weather)
		assert.Len(t, got.Itinerary, 1)
		assert.Equal(t, domain.StatusActive, got.Status)
	})

	t.Run("unsaved trip is rejected", func(t *testing.T) {
		c := newCache(t)
		err := c.UpsertTrip(ctx, "user-1", domain.Trip{Ref: domain.Unsaved(), Name: "draft"})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("get missing trip", func(t *testing.T) {
		c := newCache(t)
		_, err := c.GetTrip(ctx, "user-1", "nope")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("list is scoped to the user and ordered by id", func(t *testing.T) {
		c := newCache(t)
		require.NoError(t, c.UpsertTrips(ctx, "user-1", []domain.Trip{TripFixture("b"), TripFixture("a")}))
		require.NoError(t, c.UpsertTrip(ctx, "user-2", TripFixture("c")))

		got, err := c.ListTrips(ctx, "user-1")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "a", got[0].ID())
		assert.Equal(t, "b", got[1].ID())

		_, err = c.GetTrip(ctx, "user-1", "c")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("empty list is not nil", func(t *testing.T) {
		c := newCache(t)
		got, err := c.ListTrips(ctx, "nobody")
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		c := newCache(t)
		require.NoError(t, c.UpsertTrip(ctx, "user-1", TripFixture("trip-1")))

		require.NoError(t, c.DeleteTrip(ctx, "trip-1"))
		require.NoError(t, c.DeleteTrip(ctx, "trip-1"))

		_, err := c.GetTrip(ctx, "user-1", "trip-1")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("journal entries list newest first", func(t *testing.T) {
		c := newCache(t)
		base := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
		entries := []domain.JournalEntry{
			{Ref: domain.Persisted("e1"), TripID: "trip-1", Text: "arrived", Date: base},
			{Ref: domain.Persisted("e2"), TripID: "trip-1", Text: "lunch", Photo: "https://storage.example/j.jpg", Date: base.Add(2 * time.Hour)},
			{Ref: domain.Persisted("e3"), TripID: "trip-2", Text: "elsewhere", Date: base},
		}
		require.NoError(t, c.UpsertJournalEntries(ctx, entries))

		got, err := c.ListJournalEntries(ctx, "trip-1")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "e2", got[0].Ref.String())
		assert.Equal(t, "e1", got[1].Ref.String())
		assert.Equal(t, entries[1], got[0])
	})

	t.Run("journal upsert replaces by id", func(t *testing.T) {
		c := newCache(t)
		e := domain.JournalEntry{Ref: domain.Persisted("e1"), TripID: "trip-1", Text: "draft", Date: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)}
		require.NoError(t, c.UpsertJournalEntry(ctx, e))
		e.Text = "final"
		require.NoError(t, c.UpsertJournalEntry(ctx, e))

		got, err := c.ListJournalEntries(ctx, "trip-1")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "final", got[0].Text)
	})

	t.Run("journal entry needs id and trip", func(t *testing.T) {
		c := newCache(t)
		err := c.UpsertJournalEntry(ctx, domain.JournalEntry{Ref: domain.Unsaved(), TripID: "trip-1"})
		assert.ErrorIs(t, err, domain.ErrValidation)

		err = c.UpsertJournalEntry(ctx, domain.JournalEntry{Ref: domain.Persisted("e1")})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("delete journal entries of one trip", func(t *testing.T) {
		c := newCache(t)
		now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
		require.NoError(t, c.UpsertJournalEntries(ctx, []domain.JournalEntry{
			{Ref: domain.Persisted("e1"), TripID: "trip-1", Date: now},
			{Ref: domain.Persisted("e2"), TripID: "trip-2", Date: now},
		}))

		require.NoError(t, c.DeleteJournalEntries(ctx, "trip-1"))

		got, err := c.ListJournalEntries(ctx, "trip-1")
		require.NoError(t, err)
		assert.Empty(t, got)
		got, err = c.ListJournalEntries(ctx, "trip-2")
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})
}
