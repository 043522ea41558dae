package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/pkordes/snaptrip/backend/internal/domain"
	"github.com/pkordes/snaptrip/backend/internal/remote"
	"github.com/pkordes/snaptrip/backend/internal/repo"
)

// SaveResult reports a journal write. Offline is true when the remote write
// failed and the entry was kept in the cache only.
type SaveResult struct {
	Entry   domain.JournalEntry
	Offline bool
}

// JournalService reads and writes journal entries. Unlike trips, a journal
// write never fails just because the network did.
type JournalService struct {
	remote remote.Store
	cache  repo.JournalCache
	log    *slog.Logger
}

// NewJournalService constructs a JournalService. A nil logger discards output.
func NewJournalService(r remote.Store, c repo.JournalCache, log *slog.Logger) *JournalService {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &JournalService{remote: r, cache: c, log: log}
}

// List returns the journal of a trip, newest first, with the same
// cache-then-network shape as TripService.List. Every fetched entry is tagged
// with tripID before it is cached. After a successful fetch the result is the
// merged cache, so entries saved offline stay listed, and those entries are
// sent to the remote store again.
func (s *JournalService) List(ctx context.Context, userID, tripID string, onProvisional func([]domain.JournalEntry)) ([]domain.JournalEntry, Source, error) {
	if err := requireUser("service.JournalService.List", userID); err != nil {
		return nil, "", err
	}

	cached, err := s.cache.ListJournalEntries(ctx, tripID)
	if err != nil {
		s.log.WarnContext(ctx, "journal cache read failed", "trip_id", tripID, "err", err)
		cached = nil
	}
	domain.SortJournal(cached)
	if len(cached) > 0 && onProvisional != nil {
		onProvisional(cached)
	}

	entries, err := s.remote.GetJournalEntries(ctx, userID, tripID)
	if err != nil {
		if len(cached) > 0 {
			s.log.WarnContext(ctx, "journal fetch failed, serving cache",
				"trip_id", tripID, "cached", len(cached), "err", err)
			return cached, SourceCache, nil
		}
		return nil, "", fmt.Errorf("service.JournalService.List: %w: %w", domain.ErrNoData, err)
	}

	tagged := make([]domain.JournalEntry, len(entries))
	for i, e := range entries {
		e.TripID = tripID
		tagged[i] = e
	}
	domain.SortJournal(tagged)

	if err := s.cache.UpsertJournalEntries(ctx, tagged); err != nil {
		s.log.WarnContext(ctx, "journal cache refresh failed", "trip_id", tripID, "err", err)
		return tagged, SourceNetwork, nil
	}

	merged, err := s.cache.ListJournalEntries(ctx, tripID)
	if err != nil {
		s.log.WarnContext(ctx, "journal cache reread failed", "trip_id", tripID, "err", err)
		return tagged, SourceNetwork, nil
	}
	s.resend(ctx, userID, tripID, tagged, merged)
	domain.SortJournal(merged)

	s.log.DebugContext(ctx, "journal fetched", "trip_id", tripID, "remote", len(tagged), "total", len(merged))
	return merged, SourceNetwork, nil
}

// resend pushes entries that only exist in the cache (saved while offline)
// to the remote store. Failures leave them cached for the next sync.
func (s *JournalService) resend(ctx context.Context, userID, tripID string, remoteEntries, cached []domain.JournalEntry) {
	known := make(map[string]bool, len(remoteEntries))
	for _, e := range remoteEntries {
		known[e.Ref.String()] = true
	}
	for _, e := range cached {
		if known[e.Ref.String()] {
			continue
		}
		if err := s.remote.CreateOrUpdateJournalEntry(ctx, userID, tripID, e); err != nil {
			s.log.WarnContext(ctx, "offline journal entry still unsynced",
				"trip_id", tripID, "entry_id", e.Ref.String(), "err", err)
			continue
		}
		s.log.InfoContext(ctx, "offline journal entry synced", "trip_id", tripID, "entry_id", e.Ref.String())
	}
}

// Save writes an entry for tripID. The entry gets its id before the network
// call. When the remote write fails the entry is still cached and the call
// succeeds with Offline set; only a failed cache write is an error then.
func (s *JournalService) Save(ctx context.Context, userID, tripID string, entry domain.JournalEntry) (SaveResult, error) {
	if err := requireUser("service.JournalService.Save", userID); err != nil {
		return SaveResult{}, err
	}
	if strings.TrimSpace(tripID) == "" {
		return SaveResult{}, fmt.Errorf("service.JournalService.Save: %w: trip id is required", domain.ErrValidation)
	}

	entry.Ref = mint(entry.Ref)
	entry.TripID = tripID
	if entry.Date.IsZero() {
		entry.Date = time.Now().UTC()
	}

	if err := s.remote.CreateOrUpdateJournalEntry(ctx, userID, tripID, entry); err != nil {
		s.log.WarnContext(ctx, "journal write failed, keeping entry locally",
			"trip_id", tripID, "entry_id", entry.Ref.String(), "err", err)
		if cerr := s.cache.UpsertJournalEntry(ctx, entry); cerr != nil {
			return SaveResult{}, fmt.Errorf("service.JournalService.Save: %w", cerr)
		}
		return SaveResult{Entry: entry, Offline: true}, nil
	}

	if err := s.cache.UpsertJournalEntry(ctx, entry); err != nil {
		s.log.WarnContext(ctx, "journal cache write failed", "trip_id", tripID, "entry_id", entry.Ref.String(), "err", err)
	}
	return SaveResult{Entry: entry}, nil
}
