package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/pkordes/snaptrip/backend/internal/domain"
	"github.com/pkordes/snaptrip/backend/internal/remote"
	"github.com/pkordes/snaptrip/backend/internal/repo"
)

// TripService reads and writes trips through the remote store, mirroring
// every confirmed record into the local cache.
type TripService struct {
	remote remote.Store
	cache  repo.LocalCache
	log    *slog.Logger
}

// NewTripService constructs a TripService. A nil logger discards output.
func NewTripService(r remote.Store, c repo.LocalCache, log *slog.Logger) *TripService {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &TripService{remote: r, cache: c, log: log}
}

// List returns the user's trips.
//
// Cached trips, if any, are handed to onProvisional before the network is
// tried. A successful fetch is upserted into the cache and returned; trips
// missing from the response are not evicted. When the fetch fails the cached
// trips become the final result, and with an empty cache the call fails with
// domain.ErrNoData. Nothing is retried.
func (s *TripService) List(ctx context.Context, userID string, onProvisional func([]domain.Trip)) ([]domain.Trip, Source, error) {
	if err := requireUser("service.TripService.List", userID); err != nil {
		return nil, "", err
	}

	cached, err := s.cache.ListTrips(ctx, userID)
	if err != nil {
		s.log.WarnContext(ctx, "trip cache read failed", "user_id", userID, "err", err)
		cached = nil
	}
	if len(cached) > 0 && onProvisional != nil {
		onProvisional(cached)
	}

	trips, err := s.remote.GetAllTrips(ctx, userID)
	if err != nil {
		if len(cached) > 0 {
			s.log.WarnContext(ctx, "trip fetch failed, serving cache",
				"user_id", userID, "cached", len(cached), "err", err)
			return cached, SourceCache, nil
		}
		return nil, "", fmt.Errorf("service.TripService.List: %w: %w", domain.ErrNoData, err)
	}

	if err := s.cache.UpsertTrips(ctx, userID, trips); err != nil {
		s.log.WarnContext(ctx, "trip cache refresh failed", "user_id", userID, "err", err)
	}
	s.log.DebugContext(ctx, "trips fetched", "user_id", userID, "count", len(trips))
	if trips == nil {
		trips = []domain.Trip{}
	}
	return trips, SourceNetwork, nil
}

// Save writes the trip to the remote store and, once confirmed, to the cache.
// An unsaved trip is given its id before the network call so the cache key is
// stable whatever the outcome. Remote failures are returned and leave the
// cache untouched.
func (s *TripService) Save(ctx context.Context, userID string, trip domain.Trip) (domain.Trip, error) {
	if err := requireUser("service.TripService.Save", userID); err != nil {
		return domain.Trip{}, err
	}

	trip = trip.Clone()
	trip.Ref = mint(trip.Ref)

	id, err := s.remote.CreateOrUpdateTrip(ctx, userID, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Save: %w", err)
	}
	trip.Ref = domain.Persisted(id)

	if err := s.cache.UpsertTrip(ctx, userID, trip); err != nil {
		s.log.WarnContext(ctx, "trip cache write failed", "user_id", userID, "trip_id", id, "err", err)
	}
	s.log.DebugContext(ctx, "trip saved", "user_id", userID, "trip_id", id)
	return trip, nil
}

// Delete removes the trip remotely, then drops it and its journal from the
// cache whether or not the remote call succeeded. The remote result is
// returned.
func (s *TripService) Delete(ctx context.Context, userID, tripID string) error {
	if err := requireUser("service.TripService.Delete", userID); err != nil {
		return err
	}

	remoteErr := s.remote.DeleteTrip(ctx, userID, tripID)

	if err := s.cache.DeleteTrip(ctx, tripID); err != nil {
		s.log.WarnContext(ctx, "trip cache delete failed", "trip_id", tripID, "err", err)
	}
	if err := s.cache.DeleteJournalEntries(ctx, tripID); err != nil {
		s.log.WarnContext(ctx, "journal cache delete failed", "trip_id", tripID, "err", err)
	}

	if remoteErr != nil {
		return fmt.Errorf("service.TripService.Delete: %w", remoteErr)
	}
	s.log.DebugContext(ctx, "trip deleted", "user_id", userID, "trip_id", tripID)
	return nil
}

// Get returns one trip from the cache.
// Returns domain.ErrNotFound if it has not been cached for the user.
func (s *TripService) Get(ctx context.Context, userID, tripID string) (domain.Trip, error) {
	if err := requireUser("service.TripService.Get", userID); err != nil {
		return domain.Trip{}, err
	}
	t, err := s.cache.GetTrip(ctx, userID, tripID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Get: %w", err)
	}
	return t, nil
}
