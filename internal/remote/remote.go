// Package remote defines the authoritative document store the sync services
// talk to, and the document schema shared by its adapters.
//
// Documents live under users/{uid}/trips/{tripID}, with journal entries in a
// journal sub-collection of each trip. Records arrive as loosely typed maps;
// DecodeTrip and DecodeJournalEntry are the only way they become domain
// values.
package remote

import (
	"context"

	"github.com/pkordes/snaptrip/backend/internal/domain"
)

// Store is the remote document store. Every call is scoped to a user and may
// fail independently; adapters wrap transport failures in
// domain.ErrUnavailable.
type Store interface {
	// CreateOrUpdateTrip writes the whole trip document and returns its id.
	// The trip must already carry a persisted Ref.
	CreateOrUpdateTrip(ctx context.Context, userID string, trip domain.Trip) (string, error)

	// GetAllTrips returns every trip document of the user.
	GetAllTrips(ctx context.Context, userID string) ([]domain.Trip, error)

	// DeleteTrip removes the trip document.
	DeleteTrip(ctx context.Context, userID, tripID string) error

	// GetJournalEntries returns the journal of a trip, newest first.
	GetJournalEntries(ctx context.Context, userID, tripID string) ([]domain.JournalEntry, error)

	// CreateOrUpdateJournalEntry writes one journal entry document.
	CreateOrUpdateJournalEntry(ctx context.Context, userID, tripID string, entry domain.JournalEntry) error
}

// ImageStore uploads image bytes and returns a URL they can be fetched from.
type ImageStore interface {
	UploadImage(ctx context.Context, data []byte, path string) (string, error)
}
