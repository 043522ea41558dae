// Package firestore implements remote.Store on Cloud Firestore and
// remote.ImageStore on Cloud Storage.
package firestore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/pkordes/snaptrip/backend/internal/domain"
	"github.com/pkordes/snaptrip/backend/internal/remote"
)

var (
	_ remote.Store      = (*Store)(nil)
	_ remote.ImageStore = (*Store)(nil)
)

// Store talks to one Firestore project and one Cloud Storage bucket.
type Store struct {
	client  *firestore.Client
	storage *storage.Client
	bucket  string
}

// NewStore opens Firestore for projectID and Cloud Storage for bucket using
// application default credentials.
func NewStore(ctx context.Context, projectID, bucket string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("firestore.NewStore: projectID is required")
	}
	if bucket == "" {
		return nil, fmt.Errorf("firestore.NewStore: bucket is required")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("firestore.NewStore: creating firestore client: %w", err)
	}
	sc, err := storage.NewClient(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("firestore.NewStore: creating storage client: %w", err)
	}

	return &Store{client: client, storage: sc, bucket: bucket}, nil
}

// Close releases both clients.
func (s *Store) Close() error {
	return errors.Join(s.client.Close(), s.storage.Close())
}

// ─────────────────────────────────────────
// Paths
// ─────────────────────────────────────────

func (s *Store) tripsCol(userID string) *firestore.CollectionRef {
	return s.client.Collection("users").Doc(userID).Collection("trips")
}

func (s *Store) journalCol(userID, tripID string) *firestore.CollectionRef {
	return s.tripsCol(userID).Doc(tripID).Collection("journal")
}

// ─────────────────────────────────────────
// remote.Store
// ─────────────────────────────────────────

func (s *Store) CreateOrUpdateTrip(ctx context.Context, userID string, trip domain.Trip) (string, error) {
	id, ok := trip.Ref.ID()
	if !ok {
		return "", fmt.Errorf("firestore.Store.CreateOrUpdateTrip: %w: trip has no id", domain.ErrValidation)
	}
	if _, err := s.tripsCol(userID).Doc(id).Set(ctx, remote.EncodeTrip(trip)); err != nil {
		return "", wrap("firestore.Store.CreateOrUpdateTrip", err)
	}
	return id, nil
}

func (s *Store) GetAllTrips(ctx context.Context, userID string) ([]domain.Trip, error) {
	iter := s.tripsCol(userID).Documents(ctx)
	defer iter.Stop()

	trips := []domain.Trip{}
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, wrap("firestore.Store.GetAllTrips", err)
		}
		t, err := remote.DecodeTrip(snap.Ref.ID, snap.Data())
		if err != nil {
			return nil, wrap("firestore.Store.GetAllTrips", err)
		}
		trips = append(trips, t)
	}
	return trips, nil
}

// DeleteTrip removes the trip document and its journal sub-collection.
// Firestore does not cascade deletes to sub-collections.
func (s *Store) DeleteTrip(ctx context.Context, userID, tripID string) error {
	iter := s.journalCol(userID, tripID).Documents(ctx)
	defer iter.Stop()
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return wrap("firestore.Store.DeleteTrip: journal", err)
		}
		if _, err := snap.Ref.Delete(ctx); err != nil {
			return wrap("firestore.Store.DeleteTrip: journal", err)
		}
	}

	if _, err := s.tripsCol(userID).Doc(tripID).Delete(ctx); err != nil {
		return wrap("firestore.Store.DeleteTrip", err)
	}
	return nil
}

func (s *Store) GetJournalEntries(ctx context.Context, userID, tripID string) ([]domain.JournalEntry, error) {
	iter := s.journalCol(userID, tripID).OrderBy("date", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	entries := []domain.JournalEntry{}
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, wrap("firestore.Store.GetJournalEntries", err)
		}
		e, err := remote.DecodeJournalEntry(snap.Ref.ID, tripID, snap.Data())
		if err != nil {
			return nil, wrap("firestore.Store.GetJournalEntries", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (s *Store) CreateOrUpdateJournalEntry(ctx context.Context, userID, tripID string, entry domain.JournalEntry) error {
	id, ok := entry.Ref.ID()
	if !ok {
		return fmt.Errorf("firestore.Store.CreateOrUpdateJournalEntry: %w: entry has no id", domain.ErrValidation)
	}
	if _, err := s.journalCol(userID, tripID).Doc(id).Set(ctx, remote.EncodeJournalEntry(entry)); err != nil {
		return wrap("firestore.Store.CreateOrUpdateJournalEntry", err)
	}
	return nil
}

// ─────────────────────────────────────────
// remote.ImageStore
// ─────────────────────────────────────────

// UploadImage writes a JPEG object at path and returns its public URL.
func (s *Store) UploadImage(ctx context.Context, data []byte, path string) (string, error) {
	w := s.storage.Bucket(s.bucket).Object(path).NewWriter(ctx)
	w.ContentType = "image/jpeg"

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", wrap("firestore.Store.UploadImage", err)
	}
	if err := w.Close(); err != nil {
		return "", wrap("firestore.Store.UploadImage", err)
	}
	return ObjectURL(s.bucket, path), nil
}

// ObjectURL is the public download URL of an object.
func ObjectURL(bucket, path string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, path)
}

// wrap classifies a client error. NotFound keeps its meaning; everything
// else, including undecodable documents, is a backend failure.
func wrap(op string, err error) error {
	if status.Code(err) == codes.NotFound || errors.Is(err, storage.ErrBucketNotExist) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrNotFound, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrUnavailable, err)
}
