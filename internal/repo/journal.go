package repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/pkordes/snaptrip/backend/internal/domain"
)

const upsertJournalSQL = `
	INSERT INTO cached_journal_entries (id, trip_id, text, photo, date, cached_at)
	VALUES (@id, @trip_id, @text, @photo, @date, now())
	ON CONFLICT (id) DO UPDATE SET
		trip_id   = EXCLUDED.trip_id,
		text      = EXCLUDED.text,
		photo     = EXCLUDED.photo,
		date      = EXCLUDED.date,
		cached_at = now()`

// UpsertJournalEntry inserts or replaces a single journal entry.
func (c *pgCache) UpsertJournalEntry(ctx context.Context, entry domain.JournalEntry) error {
	args, err := journalArgs(entry)
	if err != nil {
		return fmt.Errorf("repo.JournalCache.UpsertJournalEntry: %w", err)
	}
	if _, err := c.db.Exec(ctx, upsertJournalSQL, args); err != nil {
		return fmt.Errorf("repo.JournalCache.UpsertJournalEntry: %w", err)
	}
	return nil
}

// UpsertJournalEntries sends one upsert per entry in a single batch round-trip.
func (c *pgCache) UpsertJournalEntries(ctx context.Context, entries []domain.JournalEntry) error {
	if len(entries) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, e := range entries {
		args, err := journalArgs(e)
		if err != nil {
			return fmt.Errorf("repo.JournalCache.UpsertJournalEntries: %w", err)
		}
		batch.Queue(upsertJournalSQL, args)
	}

	br := c.db.SendBatch(ctx, batch)
	defer br.Close()
	for range entries {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("repo.JournalCache.UpsertJournalEntries: %w", err)
		}
	}
	return nil
}

// ListJournalEntries returns the cached entries of a trip, newest first.
func (c *pgCache) ListJournalEntries(ctx context.Context, tripID string) ([]domain.JournalEntry, error) {
	const q = `
		SELECT id, trip_id, text, photo, date
		FROM cached_journal_entries
		WHERE trip_id = @trip_id
		ORDER BY date DESC, id`

	rows, err := c.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.JournalCache.ListJournalEntries: %w", err)
	}
	defer rows.Close()

	entries := []domain.JournalEntry{}
	for rows.Next() {
		e, err := scanJournalEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.JournalCache.ListJournalEntries: scan: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.JournalCache.ListJournalEntries: rows: %w", err)
	}
	return entries, nil
}

// DeleteJournalEntries removes every cached entry of a trip.
func (c *pgCache) DeleteJournalEntries(ctx context.Context, tripID string) error {
	const q = `DELETE FROM cached_journal_entries WHERE trip_id = @trip_id`

	if _, err := c.db.Exec(ctx, q, pgx.NamedArgs{"trip_id": tripID}); err != nil {
		return fmt.Errorf("repo.JournalCache.DeleteJournalEntries: %w", err)
	}
	return nil
}

func journalArgs(e domain.JournalEntry) (pgx.NamedArgs, error) {
	id, ok := e.Ref.ID()
	if !ok {
		return nil, fmt.Errorf("%w: journal entry has no id", domain.ErrValidation)
	}
	if strings.TrimSpace(e.TripID) == "" {
		return nil, fmt.Errorf("%w: journal entry %s has no trip", domain.ErrValidation, id)
	}
	return pgx.NamedArgs{
		"id":      id,
		"trip_id": e.TripID,
		"text":    e.Text,
		"photo":   string(e.Photo),
		"date":    e.Date.UTC(),
	}, nil
}

func scanJournalEntry(s scanner) (domain.JournalEntry, error) {
	var (
		e     domain.JournalEntry
		id    string
		photo string
		date  time.Time
	)
	if err := s.Scan(&id, &e.TripID, &e.Text, &photo, &date); err != nil {
		return domain.JournalEntry{}, err
	}
	e.Ref = domain.Persisted(id)
	e.Photo = domain.PhotoRef(photo)
	e.Date = date.UTC()
	return e, nil
}
