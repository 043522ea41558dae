package session

import (
	"context"
	"fmt"

	"github.com/pkordes/snaptrip/backend/internal/domain"
)

// RecordSteps feeds a raw step-counter total for the current trip and
// publishes the trip's step count since its baseline.
func (s *Session) RecordSteps(ctx context.Context, total int) (int, error) {
	s.op.Lock()
	defer s.op.Unlock()

	cur := s.state.Snapshot().Current
	if cur == nil {
		return 0, s.fail(fmt.Errorf("session.RecordSteps: %w", domain.ErrNoCurrentTrip))
	}
	id, ok := cur.Ref.ID()
	if !ok {
		return 0, s.fail(fmt.Errorf("session.RecordSteps: %w: trip is not saved", domain.ErrValidation))
	}

	n, err := s.deps.Steps.Apply(ctx, id, total)
	if err != nil {
		return 0, s.fail(fmt.Errorf("session.RecordSteps: %w", err))
	}
	s.state.update(func(st *State) { st.Steps = n })
	return n, nil
}

// RefreshWeather publishes the current trip's stored weather, then fetches
// live conditions at lat/lon. A fresh reading is published and saved onto the
// trip; a failed fetch leaves the stored weather in place.
func (s *Session) RefreshWeather(ctx context.Context, lat, lon float64) (domain.Weather, error) {
	s.op.Lock()
	defer s.op.Unlock()

	cur := s.state.Snapshot().Current
	if cur == nil {
		return domain.Weather{}, s.fail(fmt.Errorf("session.RefreshWeather: %w", domain.ErrNoCurrentTrip))
	}
	s.state.update(func(st *State) {
		st.Weather = cloneWeather(cur.Weather)
		st.Loading = true
	})

	w, err := s.deps.Weather.Current(ctx, lat, lon)
	if err != nil {
		return domain.Weather{}, s.fail(fmt.Errorf("session.RefreshWeather: %w", err))
	}

	cur.Weather = &w
	s.state.update(func(st *State) {
		st.Loading = false
		st.Weather = cloneWeather(&w)
		if st.Current != nil {
			st.Current.Weather = cloneWeather(&w)
		}
	})

	if cur.Ref.IsPersisted() {
		if _, err := s.persist(ctx, *cur); err != nil {
			s.log.WarnContext(ctx, "weather save failed", "trip_id", cur.ID(), "err", err)
		}
	}
	return w, nil
}
