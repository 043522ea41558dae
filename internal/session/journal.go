package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkordes/snaptrip/backend/internal/domain"
	"github.com/pkordes/snaptrip/backend/internal/service"
)

// LoadJournal loads the journal of a trip and restores the trip's last known
// step count.
func (s *Session) LoadJournal(ctx context.Context, tripID string) ([]domain.JournalEntry, error) {
	s.op.Lock()
	defer s.op.Unlock()
	return s.loadJournal(ctx, tripID)
}

func (s *Session) loadJournal(ctx context.Context, tripID string) ([]domain.JournalEntry, error) {
	s.setLoading()

	entries, _, err := s.deps.Journal.List(ctx, s.userID, tripID, func(cached []domain.JournalEntry) {
		s.state.update(func(st *State) {
			st.Journal = cached
			st.JournalTripID = tripID
		})
	})
	if err != nil {
		return nil, s.fail(fmt.Errorf("session.LoadJournal: %w", err))
	}

	last := s.lastSteps(ctx, tripID)
	snap := s.state.update(func(st *State) {
		st.Loading = false
		st.Journal = entries
		st.JournalTripID = tripID
		st.Steps = last
	})
	return snap.Journal, nil
}

// AddJournalEntry uploads the optional photo, saves a new entry and reloads
// the journal. A failed upload fails the call; a failed remote write does not.
func (s *Session) AddJournalEntry(ctx context.Context, tripID, text string, photo []byte) (service.SaveResult, error) {
	s.op.Lock()
	defer s.op.Unlock()

	if strings.TrimSpace(text) == "" && len(photo) == 0 {
		return service.SaveResult{}, s.fail(fmt.Errorf("session.AddJournalEntry: %w: text or photo is required", domain.ErrValidation))
	}

	entry := domain.JournalEntry{
		Ref:    domain.Unsaved(),
		TripID: tripID,
		Text:   text,
		Date:   s.deps.Now().UTC(),
	}
	s.setLoading()
	if len(photo) > 0 {
		url, err := s.uploadJournalPhoto(ctx, tripID, photo)
		if err != nil {
			return service.SaveResult{}, s.fail(fmt.Errorf("session.AddJournalEntry: %w", err))
		}
		entry.Photo = url
	}

	return s.saveJournal(ctx, tripID, entry)
}

// JournalPatch describes an edit to a journal entry. Nil Text keeps the text;
// ClearPhoto removes the photo; a non-empty Photo replaces it.
type JournalPatch struct {
	Text       *string
	Photo      []byte
	ClearPhoto bool
}

// UpdateJournalEntry applies patch to an existing entry and saves it.
func (s *Session) UpdateJournalEntry(ctx context.Context, tripID, entryID string, patch JournalPatch) (service.SaveResult, error) {
	s.op.Lock()
	defer s.op.Unlock()

	snap := s.state.Snapshot()
	journal := snap.Journal
	if snap.JournalTripID != tripID {
		var err error
		if journal, err = s.loadJournal(ctx, tripID); err != nil {
			return service.SaveResult{}, err
		}
	}

	var (
		entry domain.JournalEntry
		found bool
	)
	for _, e := range journal {
		if e.Ref.Is(entryID) {
			entry, found = e, true
			break
		}
	}
	if !found {
		return service.SaveResult{}, s.fail(fmt.Errorf("session.UpdateJournalEntry: %w: entry %s", domain.ErrNotFound, entryID))
	}

	if patch.Text != nil {
		entry.Text = *patch.Text
	}
	if patch.ClearPhoto {
		entry.Photo = ""
	}
	s.setLoading()
	if len(patch.Photo) > 0 {
		url, err := s.uploadJournalPhoto(ctx, tripID, patch.Photo)
		if err != nil {
			return service.SaveResult{}, s.fail(fmt.Errorf("session.UpdateJournalEntry: %w", err))
		}
		entry.Photo = url
	}

	return s.saveJournal(ctx, tripID, entry)
}

func (s *Session) uploadJournalPhoto(ctx context.Context, tripID string, photo []byte) (domain.PhotoRef, error) {
	path := fmt.Sprintf("journal/%s/%d.jpg", tripID, s.deps.Now().UnixMilli())
	url, err := s.deps.Images.UploadImage(ctx, photo, path)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", path, err)
	}
	return domain.PhotoRef(url), nil
}

func (s *Session) saveJournal(ctx context.Context, tripID string, entry domain.JournalEntry) (service.SaveResult, error) {
	res, err := s.deps.Journal.Save(ctx, s.userID, tripID, entry)
	if err != nil {
		return service.SaveResult{}, s.fail(fmt.Errorf("session.saveJournal: %w", err))
	}

	if _, err := s.loadJournal(ctx, tripID); err != nil {
		// The entry is safe in the cache; only the refresh failed.
		s.log.WarnContext(ctx, "journal reload failed", "trip_id", tripID, "err", err)
	}
	if res.Offline {
		s.state.update(func(st *State) { st.Message = msgJournalOffline })
	}
	return res, nil
}
