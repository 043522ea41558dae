package service_test

import (
	"context"
	"errors"

	"github.com/pkordes/snaptrip/backend/internal/domain"
	"github.com/pkordes/snaptrip/backend/internal/remote"
)

// mockRemote is a hand-written test double for remote.Store.
// Each method is a function field. Set only the ones your test needs.
type mockRemote struct {
	saveTrip     func(ctx context.Context, userID string, trip domain.Trip) (string, error)
	listTrips    func(ctx context.Context, userID string) ([]domain.Trip, error)
	deleteTrip   func(ctx context.Context, userID, tripID string) error
	listJournal  func(ctx context.Context, userID, tripID string) ([]domain.JournalEntry, error)
	saveJournal  func(ctx context.Context, userID, tripID string, entry domain.JournalEntry) error
	remoteCalled int
}

func (m *mockRemote) CreateOrUpdateTrip(ctx context.Context, userID string, trip domain.Trip) (string, error) {
	m.remoteCalled++
	return m.saveTrip(ctx, userID, trip)
}
func (m *mockRemote) GetAllTrips(ctx context.Context, userID string) ([]domain.Trip, error) {
	m.remoteCalled++
	return m.listTrips(ctx, userID)
}
func (m *mockRemote) DeleteTrip(ctx context.Context, userID, tripID string) error {
	m.remoteCalled++
	return m.deleteTrip(ctx, userID, tripID)
}
func (m *mockRemote) GetJournalEntries(ctx context.Context, userID, tripID string) ([]domain.JournalEntry, error) {
	m.remoteCalled++
	return m.listJournal(ctx, userID, tripID)
}
func (m *mockRemote) CreateOrUpdateJournalEntry(ctx context.Context, userID, tripID string, entry domain.JournalEntry) error {
	m.remoteCalled++
	return m.saveJournal(ctx, userID, tripID, entry)
}

// compile-time check: mockRemote must satisfy remote.Store.
var _ remote.Store = (*mockRemote)(nil)

var errOffline = errors.New("network unreachable")

// offlineRemote fails every call.
func offlineRemote() *mockRemote {
	fail := func() error { return errors.Join(domain.ErrUnavailable, errOffline) }
	return &mockRemote{
		saveTrip:   func(context.Context, string, domain.Trip) (string, error) { return "", fail() },
		listTrips:  func(context.Context, string) ([]domain.Trip, error) { return nil, fail() },
		deleteTrip: func(context.Context, string, string) error { return fail() },
		listJournal: func(context.Context, string, string) ([]domain.JournalEntry, error) {
			return nil, fail()
		},
		saveJournal: func(context.Context, string, string, domain.JournalEntry) error { return fail() },
	}
}
