package session

import (
	"context"
	"fmt"

	"github.com/pkordes/snaptrip/backend/internal/domain"
	"github.com/pkordes/snaptrip/backend/internal/itinerary"
	"github.com/pkordes/snaptrip/backend/internal/lifecycle"
)

// Itinerary edits change the current trip in memory only; SaveCurrent
// persists them.

// RemovePlace removes one place from a day of the current trip.
func (s *Session) RemovePlace(day, index int) (domain.Trip, error) {
	return s.edit("RemovePlace", func(days []domain.Day) ([]domain.Day, error) {
		return itinerary.RemovePlace(days, day, index)
	})
}

// MovePlaceUp swaps a place with its predecessor.
func (s *Session) MovePlaceUp(day, index int) (domain.Trip, error) {
	return s.edit("MovePlaceUp", func(days []domain.Day) ([]domain.Day, error) {
		return itinerary.MovePlaceUp(days, day, index)
	})
}

// MovePlaceDown swaps a place with its successor.
func (s *Session) MovePlaceDown(day, index int) (domain.Trip, error) {
	return s.edit("MovePlaceDown", func(days []domain.Day) ([]domain.Day, error) {
		return itinerary.MovePlaceDown(days, day, index)
	})
}

// ReorderPlaces moves a place to another position within its day.
func (s *Session) ReorderPlaces(day, from, to int) (domain.Trip, error) {
	return s.edit("ReorderPlaces", func(days []domain.Day) ([]domain.Day, error) {
		return itinerary.ReorderPlaces(days, day, from, to)
	})
}

// MovePlaceToDay moves a place to the end of another day.
func (s *Session) MovePlaceToDay(fromDay, index, toDay int) (domain.Trip, error) {
	return s.edit("MovePlaceToDay", func(days []domain.Day) ([]domain.Day, error) {
		return itinerary.MovePlaceToDay(days, fromDay, index, toDay)
	})
}

func (s *Session) edit(op string, fn func([]domain.Day) ([]domain.Day, error)) (domain.Trip, error) {
	s.op.Lock()
	defer s.op.Unlock()

	cur := s.state.Snapshot().Current
	if cur == nil {
		return domain.Trip{}, s.fail(fmt.Errorf("session.%s: %w", op, domain.ErrNoCurrentTrip))
	}
	days, err := fn(cur.Itinerary)
	if err != nil {
		return domain.Trip{}, s.fail(fmt.Errorf("session.%s: %w", op, err))
	}
	cur.Itinerary = days

	s.state.update(func(st *State) {
		st.Current = cur
		st.Saved = false
	})
	return cur.Clone(), nil
}

// AddPlaceToActiveTrip appends an accepted suggestion to the last day of the
// user's ACTIVE trip and persists it.
func (s *Session) AddPlaceToActiveTrip(ctx context.Context, place domain.Place) (domain.Trip, error) {
	s.op.Lock()
	defer s.op.Unlock()

	snap := s.state.Snapshot()
	found, ok := lifecycle.FindActive(snap.Trips)
	if !ok {
		return domain.Trip{}, s.fail(fmt.Errorf("session.AddPlaceToActiveTrip: %w", domain.ErrNoActiveTrip))
	}
	active, err := lookup(snap, found.ID())
	if err != nil {
		return domain.Trip{}, s.fail(fmt.Errorf("session.AddPlaceToActiveTrip: %w", err))
	}
	days, err := itinerary.AddPlace(active.Itinerary, place)
	if err != nil {
		return domain.Trip{}, s.fail(fmt.Errorf("session.AddPlaceToActiveTrip: %w", err))
	}
	active.Itinerary = days

	s.setLoading()
	saved, err := s.persist(ctx, active)
	if err != nil {
		return domain.Trip{}, s.fail(fmt.Errorf("session.AddPlaceToActiveTrip: %w", err))
	}
	s.state.update(func(st *State) { st.Loading = false })
	s.log.InfoContext(ctx, "place added to active trip", "trip_id", saved.ID(), "place", place.Name)
	return saved, nil
}
