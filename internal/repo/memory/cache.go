// Package memory is an in-process repo.LocalCache. It backs the server when
// CACHE_BACKEND=memory and serves as the reference implementation in tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/pkordes/snaptrip/backend/internal/domain"
	"github.com/pkordes/snaptrip/backend/internal/repo"
)

var _ repo.LocalCache = (*Cache)(nil)

type tripRow struct {
	userID string
	trip   domain.Trip
}

// Cache is safe for concurrent use. Values are cloned on the way in and out.
type Cache struct {
	mu      sync.RWMutex
	trips   map[string]tripRow
	journal map[string]domain.JournalEntry
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{
		trips:   map[string]tripRow{},
		journal: map[string]domain.JournalEntry{},
	}
}

func (c *Cache) UpsertTrip(_ context.Context, userID string, trip domain.Trip) error {
	id, ok := trip.Ref.ID()
	if !ok {
		return fmt.Errorf("memory.Cache.UpsertTrip: %w: trip has no id", domain.ErrValidation)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.trips[id] = tripRow{userID: userID, trip: normalize(trip)}
	return nil
}

func (c *Cache) UpsertTrips(ctx context.Context, userID string, trips []domain.Trip) error {
	for _, t := range trips {
		if err := c.UpsertTrip(ctx, userID, t); err != nil {
			return err
		}
	}
	return nil
}

func (c *Cache) ListTrips(_ context.Context, userID string) ([]domain.Trip, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := []domain.Trip{}
	for _, row := range c.trips {
		if row.userID == userID {
			out = append(out, row.trip.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out, nil
}

func (c *Cache) GetTrip(_ context.Context, userID, tripID string) (domain.Trip, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	row, ok := c.trips[tripID]
	if !ok || row.userID != userID {
		return domain.Trip{}, fmt.Errorf("memory.Cache.GetTrip: %w", domain.ErrNotFound)
	}
	return row.trip.Clone(), nil
}

func (c *Cache) DeleteTrip(_ context.Context, tripID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.trips, tripID)
	return nil
}

func (c *Cache) UpsertJournalEntry(_ context.Context, entry domain.JournalEntry) error {
	id, ok := entry.Ref.ID()
	if !ok {
		return fmt.Errorf("memory.Cache.UpsertJournalEntry: %w: journal entry has no id", domain.ErrValidation)
	}
	if strings.TrimSpace(entry.TripID) == "" {
		return fmt.Errorf("memory.Cache.UpsertJournalEntry: %w: journal entry %s has no trip", domain.ErrValidation, id)
	}
	entry.Date = entry.Date.UTC()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.journal[id] = entry
	return nil
}

func (c *Cache) UpsertJournalEntries(ctx context.Context, entries []domain.JournalEntry) error {
	for _, e := range entries {
		if err := c.UpsertJournalEntry(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (c *Cache) ListJournalEntries(_ context.Context, tripID string) ([]domain.JournalEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := []domain.JournalEntry{}
	for _, e := range c.journal {
		if e.TripID == tripID {
			out = append(out, e)
		}
	}
	domain.SortJournal(out)
	return out, nil
}

func (c *Cache) DeleteJournalEntries(_ context.Context, tripID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, e := range c.journal {
		if e.TripID == tripID {
			delete(c.journal, id)
		}
	}
	return nil
}

// normalize clones t and defaults a blank status to DRAFT, matching what the
// Postgres cache hands back.
func normalize(t domain.Trip) domain.Trip {
	cp := t.Clone()
	if t.Status == "" {
		cp.Status = domain.StatusDraft
	}
	return cp
}
