// Package memory is an in-process remote.Store and remote.ImageStore.
// Documents are kept in their encoded form so every read goes through the
// same decoder as the Firestore adapter. Failures can be injected to simulate
// an unreachable backend.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/pkordes/snaptrip/backend/internal/domain"
	"github.com/pkordes/snaptrip/backend/internal/remote"
)

var (
	_ remote.Store      = (*Store)(nil)
	_ remote.ImageStore = (*Store)(nil)
)

// DefaultBaseURL prefixes the URLs returned by UploadImage.
const DefaultBaseURL = "https://storage.local/"

type journalKey struct {
	userID, tripID string
}

// Store is safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	trips   map[string]map[string]map[string]any // user -> trip id -> document
	journal map[journalKey]map[string]map[string]any
	images  map[string][]byte
	baseURL string
	failure error
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		trips:   map[string]map[string]map[string]any{},
		journal: map[journalKey]map[string]map[string]any{},
		images:  map[string][]byte{},
		baseURL: DefaultBaseURL,
	}
}

// SetFailure makes every subsequent call fail with err wrapped in
// domain.ErrUnavailable. Pass nil to recover.
func (s *Store) SetFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failure = err
}

// PutDocument stores a raw trip document, bypassing the encoder. Tests use it
// to seed legacy or malformed documents.
func (s *Store) PutDocument(userID, tripID string, doc map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userTrips(userID)[tripID] = doc
}

// Image returns the bytes uploaded at path.
func (s *Store) Image(path string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.images[path]
	return b, ok
}

func (s *Store) CreateOrUpdateTrip(_ context.Context, userID string, trip domain.Trip) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("CreateOrUpdateTrip"); err != nil {
		return "", err
	}
	id, ok := trip.Ref.ID()
	if !ok {
		return "", fmt.Errorf("memory.Store.CreateOrUpdateTrip: %w: trip has no id", domain.ErrValidation)
	}
	s.userTrips(userID)[id] = remote.EncodeTrip(trip)
	return id, nil
}

func (s *Store) GetAllTrips(_ context.Context, userID string) ([]domain.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("GetAllTrips"); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(s.trips[userID]))
	for id := range s.trips[userID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	trips := make([]domain.Trip, 0, len(ids))
	for _, id := range ids {
		t, err := remote.DecodeTrip(id, s.trips[userID][id])
		if err != nil {
			return nil, fmt.Errorf("memory.Store.GetAllTrips: %w: %w", domain.ErrUnavailable, err)
		}
		trips = append(trips, t)
	}
	return trips, nil
}

func (s *Store) DeleteTrip(_ context.Context, userID, tripID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("DeleteTrip"); err != nil {
		return err
	}
	delete(s.trips[userID], tripID)
	delete(s.journal, journalKey{userID, tripID})
	return nil
}

func (s *Store) GetJournalEntries(_ context.Context, userID, tripID string) ([]domain.JournalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("GetJournalEntries"); err != nil {
		return nil, err
	}

	docs := s.journal[journalKey{userID, tripID}]
	entries := make([]domain.JournalEntry, 0, len(docs))
	for id, doc := range docs {
		e, err := remote.DecodeJournalEntry(id, tripID, doc)
		if err != nil {
			return nil, fmt.Errorf("memory.Store.GetJournalEntries: %w: %w", domain.ErrUnavailable, err)
		}
		entries = append(entries, e)
	}
	domain.SortJournal(entries)
	return entries, nil
}

func (s *Store) CreateOrUpdateJournalEntry(_ context.Context, userID, tripID string, entry domain.JournalEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("CreateOrUpdateJournalEntry"); err != nil {
		return err
	}
	id, ok := entry.Ref.ID()
	if !ok {
		return fmt.Errorf("memory.Store.CreateOrUpdateJournalEntry: %w: entry has no id", domain.ErrValidation)
	}
	key := journalKey{userID, tripID}
	if s.journal[key] == nil {
		s.journal[key] = map[string]map[string]any{}
	}
	s.journal[key][id] = remote.EncodeJournalEntry(entry)
	return nil
}

func (s *Store) UploadImage(_ context.Context, data []byte, path string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("UploadImage"); err != nil {
		return "", err
	}
	s.images[path] = append([]byte(nil), data...)
	return strings.TrimSuffix(s.baseURL, "/") + "/" + path, nil
}

func (s *Store) userTrips(userID string) map[string]map[string]any {
	if s.trips[userID] == nil {
		s.trips[userID] = map[string]map[string]any{}
	}
	return s.trips[userID]
}

// check must be called with mu held.
func (s *Store) check(op string) error {
	if s.failure != nil {
		return fmt.Errorf("memory.Store.%s: %w: %w", op, domain.ErrUnavailable, s.failure)
	}
	return nil
}
