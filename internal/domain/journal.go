package domain

import (
	"sort"
	"strings"
	"time"
)

// JournalEntry is a timestamped user-authored note or photo attached to a trip.
type JournalEntry struct {
	Ref    Ref
	TripID string
	Text   string
	Photo  PhotoRef
	Date   time.Time
}

// PhotoRef points at an image. New photos are object-storage URLs; older
// records may carry the image inline as base64.
type PhotoRef string

// IsZero reports whether no photo is attached.
func (p PhotoRef) IsZero() bool { return strings.TrimSpace(string(p)) == "" }

// IsURL reports whether the photo is stored remotely.
func (p PhotoRef) IsURL() bool {
	s := strings.TrimSpace(string(p))
	return strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "gs://")
}

// IsInline reports whether the photo is a legacy inline-encoded image.
func (p PhotoRef) IsInline() bool { return !p.IsZero() && !p.IsURL() }

// SortJournal orders entries for display: newest first.
// Entries sharing a timestamp keep a stable id order.
func SortJournal(entries []JournalEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Date.Equal(entries[j].Date) {
			return entries[i].Ref.String() < entries[j].Ref.String()
		}
		return entries[i].Date.After(entries[j].Date)
	})
}
