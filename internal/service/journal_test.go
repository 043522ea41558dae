package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/snaptrip/backend/internal/domain"
	repomemory "github.com/pkordes/snaptrip/backend/internal/repo/memory"
	"github.com/pkordes/snaptrip/backend/internal/service"
)

var day = time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)

func TestJournalService_List_TagsAndSortsNetworkEntries(t *testing.T) {
	cache := repomemory.NewCache()
	r := &mockRemote{listJournal: func(context.Context, string, string) ([]domain.JournalEntry, error) {
		// The store returns entries without the owning trip id.
		return []domain.JournalEntry{
			{Ref: domain.Persisted("old"), Text: "morning", Date: day},
			{Ref: domain.Persisted("new"), Text: "evening", Date: day.Add(10 * time.Hour)},
		}, nil
	}}

	got, src, err := service.NewJournalService(r, cache, nil).List(context.Background(), "u1", "t1", nil)

	require.NoError(t, err)
	assert.Equal(t, service.SourceNetwork, src)
	require.Len(t, got, 2)
	assert.Equal(t, "new", got[0].Ref.String())
	for _, e := range got {
		assert.Equal(t, "t1", e.TripID)
	}

	cached, err := cache.ListJournalEntries(context.Background(), "t1")
	require.NoError(t, err)
	assert.Len(t, cached, 2)
}

func TestJournalService_List_OfflineFallback(t *testing.T) {
	ctx := context.Background()
	cache := repomemory.NewCache()
	require.NoError(t, cache.UpsertJournalEntry(ctx, domain.JournalEntry{Ref: domain.Persisted("e1"), TripID: "t1", Date: day}))
	svc := service.NewJournalService(offlineRemote(), cache, nil)

	var provisional []domain.JournalEntry
	got, src, err := svc.List(ctx, "u1", "t1", func(es []domain.JournalEntry) { provisional = es })

	require.NoError(t, err)
	assert.Equal(t, service.SourceCache, src)
	assert.Len(t, got, 1)
	assert.Equal(t, got, provisional)

	_, _, err = svc.List(ctx, "u1", "empty-trip", nil)
	assert.ErrorIs(t, err, domain.ErrNoData)
}

func TestJournalService_List_KeepsAndResendsOfflineEntries(t *testing.T) {
	ctx := context.Background()
	cache := repomemory.NewCache()
	offline := service.NewJournalService(offlineRemote(), cache, nil)
	res, err := offline.Save(ctx, "u1", "t1", domain.JournalEntry{Text: "Written on the train", Date: day})
	require.NoError(t, err)
	require.True(t, res.Offline)

	var resent []domain.JournalEntry
	r := &mockRemote{
		listJournal: func(context.Context, string, string) ([]domain.JournalEntry, error) {
			return []domain.JournalEntry{{Ref: domain.Persisted("e-remote"), Text: "earlier", Date: day.Add(-time.Hour)}}, nil
		},
		saveJournal: func(_ context.Context, _, tripID string, e domain.JournalEntry) error {
			assert.Equal(t, "t1", tripID)
			resent = append(resent, e)
			return nil
		},
	}

	got, src, err := service.NewJournalService(r, cache, nil).List(ctx, "u1", "t1", nil)

	require.NoError(t, err)
	assert.Equal(t, service.SourceNetwork, src)
	require.Len(t, got, 2, "network plus offline entries")
	assert.Equal(t, res.Entry.Ref, got[0].Ref, "newest first")
	assert.Equal(t, "e-remote", got[1].Ref.String())
	require.Len(t, resent, 1, "only the cache-only entry is re-sent")
	assert.Equal(t, res.Entry.Ref, resent[0].Ref)
}

func TestJournalService_List_ResendFailureStillLists(t *testing.T) {
	ctx := context.Background()
	cache := repomemory.NewCache()
	require.NoError(t, cache.UpsertJournalEntry(ctx, domain.JournalEntry{Ref: domain.Persisted("local"), TripID: "t1", Date: day}))
	r := &mockRemote{
		listJournal: func(context.Context, string, string) ([]domain.JournalEntry, error) { return nil, nil },
		saveJournal: func(context.Context, string, string, domain.JournalEntry) error { return errOffline },
	}

	got, src, err := service.NewJournalService(r, cache, nil).List(ctx, "u1", "t1", nil)

	require.NoError(t, err)
	assert.Equal(t, service.SourceNetwork, src)
	require.Len(t, got, 1)
	assert.Equal(t, "local", got[0].Ref.String())
}

func TestJournalService_Save_OfflineStillSucceeds(t *testing.T) {
	ctx := context.Background()
	cache := repomemory.NewCache()
	svc := service.NewJournalService(offlineRemote(), cache, nil)

	res, err := svc.Save(ctx, "u1", "t1", domain.JournalEntry{Text: "Gelato by the Pantheon", Date: day})

	require.NoError(t, err)
	assert.True(t, res.Offline)
	id, ok := res.Entry.Ref.ID()
	require.True(t, ok, "id minted")

	cached, err := cache.ListJournalEntries(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, cached, 1)
	assert.Equal(t, id, cached[0].Ref.String(), "id stable across cache read")
	assert.Equal(t, "Gelato by the Pantheon", cached[0].Text)
}

func TestJournalService_Save_MintsExactlyOnce(t *testing.T) {
	var sent []string
	r := &mockRemote{saveJournal: func(_ context.Context, _, _ string, e domain.JournalEntry) error {
		sent = append(sent, e.Ref.String())
		return nil
	}}
	svc := service.NewJournalService(r, repomemory.NewCache(), nil)

	res, err := svc.Save(context.Background(), "u1", "t1", domain.JournalEntry{Text: "a"})
	require.NoError(t, err)
	assert.False(t, res.Offline)
	assert.False(t, res.Entry.Date.IsZero(), "date stamped")

	// Saving again with the returned entry must keep the id.
	res2, err := svc.Save(context.Background(), "u1", "t1", res.Entry)
	require.NoError(t, err)

	require.Len(t, sent, 2)
	assert.Equal(t, sent[0], sent[1])
	assert.Equal(t, res.Entry.Ref, res2.Entry.Ref)
}

func TestJournalService_Save_Validation(t *testing.T) {
	r := &mockRemote{}
	svc := service.NewJournalService(r, repomemory.NewCache(), nil)

	_, err := svc.Save(context.Background(), "", "t1", domain.JournalEntry{})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = svc.Save(context.Background(), "u1", "", domain.JournalEntry{})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Zero(t, r.remoteCalled)
}
