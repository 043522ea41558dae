// Package session holds the per-user orchestrator. A Session owns the
// current trip and the loaded trip list, applies lifecycle rules and itinerary
// edits, drives the sync services, and publishes every change as a State
// snapshot to its subscribers.
//
// Operations on one Session run one at a time, in call order. Sessions of
// different users are independent.
package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/pkordes/snaptrip/backend/internal/domain"
	"github.com/pkordes/snaptrip/backend/internal/lifecycle"
	"github.com/pkordes/snaptrip/backend/internal/remote"
	"github.com/pkordes/snaptrip/backend/internal/service"
	"github.com/pkordes/snaptrip/backend/internal/steps"
	"github.com/pkordes/snaptrip/backend/internal/travelapi"
	"github.com/pkordes/snaptrip/backend/internal/weather"
)

// Deps are the collaborators a Session is built from. They are shared by
// every session of a Registry.
type Deps struct {
	Trips     *service.TripService
	Journal   *service.JournalService
	Images    remote.ImageStore
	Generator travelapi.Generator
	Weather   weather.Provider
	Steps     *steps.Counter
	Logger    *slog.Logger

	// Now defaults to time.Now.
	Now func() time.Time
}

// Session is the orchestrator for one user.
type Session struct {
	userID string
	deps   Deps
	log    *slog.Logger

	op    sync.Mutex // serializes operations
	state *store
}

// New constructs a Session for userID.
func New(userID string, deps Deps) *Session {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	log := deps.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Session{
		userID: userID,
		deps:   deps,
		log:    log.With("user_id", userID),
		state:  newStore(),
	}
}

// UserID returns the owner of the session.
func (s *Session) UserID() string { return s.userID }

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() State { return s.state.Snapshot() }

// Subscribe returns a channel that receives the current state and every later
// change, and a func that unsubscribes and closes the channel.
func (s *Session) Subscribe() (<-chan State, func()) { return s.state.subscribe() }

// ClearMessage drops the user-visible message.
func (s *Session) ClearMessage() {
	s.op.Lock()
	defer s.op.Unlock()
	s.state.update(func(st *State) { st.Message = "" })
}

// ClearCurrent deselects the current trip.
func (s *Session) ClearCurrent() {
	s.op.Lock()
	defer s.op.Unlock()
	s.state.update(func(st *State) {
		st.Current = nil
		st.Saved = false
		st.Weather = nil
		st.Steps = 0
	})
}

// fail publishes err as the user-visible message, ends loading, and returns
// err unchanged.
func (s *Session) fail(err error) error {
	s.state.update(func(st *State) {
		st.Loading = false
		st.Message = UserMessage(err)
	})
	return err
}

func (s *Session) setLoading() {
	s.state.update(func(st *State) { st.Loading = true })
}

// ─────────────────────────────────────────
// Trip list and selection
// ─────────────────────────────────────────

// LoadTrips refreshes the trip list. Cached trips are published first, the
// network result replaces them when it arrives.
func (s *Session) LoadTrips(ctx context.Context) ([]domain.Trip, error) {
	s.op.Lock()
	defer s.op.Unlock()
	return s.loadTrips(ctx)
}

func (s *Session) loadTrips(ctx context.Context) ([]domain.Trip, error) {
	s.setLoading()

	trips, src, err := s.deps.Trips.List(ctx, s.userID, func(cached []domain.Trip) {
		s.state.update(func(st *State) { st.Trips = cached })
	})
	if err != nil {
		return nil, s.fail(fmt.Errorf("session.LoadTrips: %w", err))
	}

	s.log.DebugContext(ctx, "trips loaded", "count", len(trips), "source", src)
	snap := s.state.update(func(st *State) {
		st.Loading = false
		st.Trips = trips
	})
	return snap.Trips, nil
}

// Select makes tripID the current trip, looking it up in the loaded list and
// then in the cache.
func (s *Session) Select(ctx context.Context, tripID string) (domain.Trip, error) {
	s.op.Lock()
	defer s.op.Unlock()

	t, ok := findTrip(s.state.Snapshot().Trips, tripID)
	if !ok {
		var err error
		if t, err = s.deps.Trips.Get(ctx, s.userID, tripID); err != nil {
			return domain.Trip{}, s.fail(fmt.Errorf("session.Select: %w", err))
		}
	}

	last := s.lastSteps(ctx, tripID)
	s.state.update(func(st *State) {
		st.Current = &t
		st.Saved = true
		st.Weather = cloneWeather(t.Weather)
		st.Steps = last
	})
	return t, nil
}

// ─────────────────────────────────────────
// Generation and persistence
// ─────────────────────────────────────────

// GenerateRequest is the user's input to itinerary generation.
type GenerateRequest struct {
	Name   string
	Days   int
	Hotel  string
	Places []string
	Cover  []byte // optional JPEG
}

// Generate validates the request, uploads the optional cover, asks the
// generation backend for an itinerary and publishes the resulting DRAFT trip
// as current. A failed cover upload leaves the trip without a cover.
func (s *Session) Generate(ctx context.Context, req GenerateRequest) (domain.Trip, error) {
	s.op.Lock()
	defer s.op.Unlock()

	tr, err := validateGenerate(req)
	if err != nil {
		return domain.Trip{}, s.fail(fmt.Errorf("session.Generate: %w", err))
	}
	s.setLoading()

	var cover domain.PhotoRef
	if len(req.Cover) > 0 {
		path := fmt.Sprintf("covers/%d.jpg", s.deps.Now().UnixMilli())
		url, err := s.deps.Images.UploadImage(ctx, req.Cover, path)
		if err != nil {
			s.log.WarnContext(ctx, "cover upload failed, continuing without cover", "path", path, "err", err)
		} else {
			cover = domain.PhotoRef(url)
		}
	}

	trip, err := s.deps.Generator.Generate(ctx, tr)
	if err != nil {
		return domain.Trip{}, s.fail(fmt.Errorf("session.Generate: %w", err))
	}
	if trip.GenerationStatus != travelapi.StatusSuccess {
		msg := trip.Error
		if msg == "" {
			msg = "generation status " + trip.GenerationStatus
		}
		return domain.Trip{}, s.fail(&noticeError{
			err:    fmt.Errorf("session.Generate: %w: %s", domain.ErrUnavailable, msg),
			notice: "Trip generation failed: " + msg,
		})
	}

	trip.Ref = domain.Unsaved()
	trip.Status = lifecycle.Generated()
	trip.CoverPhoto = cover
	if trip.Itinerary == nil {
		trip.Itinerary = []domain.Day{}
	}

	s.state.update(func(st *State) {
		st.Loading = false
		st.Current = &trip
		st.Saved = false
		st.Weather = cloneWeather(trip.Weather)
		st.Steps = 0
	})
	s.log.InfoContext(ctx, "trip generated", "name", trip.Name, "days", len(trip.Itinerary))
	return trip.Clone(), nil
}

func validateGenerate(req GenerateRequest) (domain.TripRequest, error) {
	if strings.TrimSpace(req.Name) == "" {
		return domain.TripRequest{}, fmt.Errorf("%w: trip name is required", domain.ErrValidation)
	}
	if strings.TrimSpace(req.Hotel) == "" {
		return domain.TripRequest{}, fmt.Errorf("%w: hotel is required", domain.ErrValidation)
	}
	places := make([]string, 0, len(req.Places))
	for _, p := range req.Places {
		if p = strings.TrimSpace(p); p != "" {
			places = append(places, p)
		}
	}
	if len(places) == 0 {
		return domain.TripRequest{}, fmt.Errorf("%w: at least one place is required", domain.ErrValidation)
	}
	days := req.Days
	if days <= 0 {
		days = 1
	}
	return domain.TripRequest{
		Name:   strings.TrimSpace(req.Name),
		Days:   days,
		Hotel:  strings.TrimSpace(req.Hotel),
		Places: places,
	}, nil
}

// SaveCurrent persists the current trip. A DRAFT becomes SAVED; any other
// status is kept.
func (s *Session) SaveCurrent(ctx context.Context) (domain.Trip, error) {
	s.op.Lock()
	defer s.op.Unlock()

	cur := s.state.Snapshot().Current
	if cur == nil {
		return domain.Trip{}, s.fail(fmt.Errorf("session.SaveCurrent: %w", domain.ErrNoCurrentTrip))
	}
	status, err := lifecycle.Save(cur.Status)
	if err != nil {
		return domain.Trip{}, s.fail(fmt.Errorf("session.SaveCurrent: %w", err))
	}
	cur.Status = status

	s.setLoading()
	saved, err := s.persist(ctx, *cur)
	if err != nil {
		return domain.Trip{}, s.fail(fmt.Errorf("session.SaveCurrent: %w", err))
	}
	s.state.update(func(st *State) {
		st.Loading = false
		st.Saved = true
	})
	return saved, nil
}

// Delete removes a trip everywhere and forgets its step baseline.
func (s *Session) Delete(ctx context.Context, tripID string) error {
	s.op.Lock()
	defer s.op.Unlock()

	s.setLoading()
	if err := s.deps.Trips.Delete(ctx, s.userID, tripID); err != nil {
		return s.fail(fmt.Errorf("session.Delete: %w", err))
	}
	if err := s.deps.Steps.Reset(ctx, tripID); err != nil {
		s.log.WarnContext(ctx, "step baseline reset failed", "trip_id", tripID, "err", err)
	}

	s.state.update(func(st *State) {
		st.Loading = false
		st.Trips = removeTrip(st.Trips, tripID)
		if st.Current != nil && st.Current.Ref.Is(tripID) {
			st.Current = nil
			st.Saved = false
			st.Weather = nil
			st.Steps = 0
		}
		if st.JournalTripID == tripID {
			st.Journal = nil
			st.JournalTripID = ""
		}
	})
	return nil
}

// persist saves t and publishes it into the trip list and, when it is the
// current trip, as Current. Callers hold s.op.
func (s *Session) persist(ctx context.Context, t domain.Trip) (domain.Trip, error) {
	wasUnsaved := !t.Ref.IsPersisted()
	saved, err := s.deps.Trips.Save(ctx, s.userID, t)
	if err != nil {
		return domain.Trip{}, err
	}

	s.state.update(func(st *State) {
		st.Trips = upsertTrip(st.Trips, saved)
		if st.Current == nil {
			return
		}
		if st.Current.Ref.Is(saved.ID()) || (wasUnsaved && !st.Current.Ref.IsPersisted()) {
			c := saved.Clone()
			st.Current = &c
			st.Saved = true
		}
	})
	return saved, nil
}

// ─────────────────────────────────────────
// Lifecycle
// ─────────────────────────────────────────

// Activate starts a trip; a blank tripID starts the current trip, which need
// not have been saved. The one-active-trip rule is checked against the
// loaded trip list, so it is only as fresh as the last LoadTrips.
func (s *Session) Activate(ctx context.Context, tripID string) (domain.Trip, error) {
	s.op.Lock()
	defer s.op.Unlock()

	snap := s.state.Snapshot()
	t, err := lookup(snap, tripID)
	if err != nil {
		return domain.Trip{}, s.fail(fmt.Errorf("session.Activate: %w", err))
	}
	if err := lifecycle.Activate(t, snap.Trips); err != nil {
		return domain.Trip{}, s.fail(fmt.Errorf("session.Activate: %w", err))
	}

	t.Status = domain.StatusActive
	s.setLoading()
	saved, err := s.persist(ctx, t)
	if err != nil {
		return domain.Trip{}, s.fail(fmt.Errorf("session.Activate: %w", err))
	}

	if err := s.deps.Steps.Reset(ctx, saved.ID()); err != nil {
		s.log.WarnContext(ctx, "step baseline reset failed", "trip_id", saved.ID(), "err", err)
	}
	s.state.update(func(st *State) {
		if st.Current != nil && st.Current.Ref.Is(saved.ID()) {
			st.Steps = 0
		}
	})
	s.log.InfoContext(ctx, "trip activated", "trip_id", saved.ID())

	if _, err := s.loadTrips(ctx); err != nil {
		s.log.WarnContext(ctx, "trip list reload failed", "err", err)
	}
	return saved, nil
}

// End finishes an ACTIVE trip (a blank tripID means the current one), folding
// the steps counted since activation into its persisted total. Ending a
// finished trip is a no-op.
func (s *Session) End(ctx context.Context, tripID string) (domain.Trip, error) {
	s.op.Lock()
	defer s.op.Unlock()

	t, err := lookup(s.state.Snapshot(), tripID)
	if err != nil {
		return domain.Trip{}, s.fail(fmt.Errorf("session.End: %w", err))
	}
	next, changed, err := lifecycle.End(t.Status)
	if err != nil {
		return domain.Trip{}, s.fail(fmt.Errorf("session.End: %w", err))
	}
	if !changed {
		return t, nil
	}

	id := t.ID()
	sessionSteps := s.lastSteps(ctx, id)
	t.Status = next
	t.Steps += sessionSteps

	s.setLoading()
	saved, err := s.persist(ctx, t)
	if err != nil {
		return domain.Trip{}, s.fail(fmt.Errorf("session.End: %w", err))
	}

	if err := s.deps.Steps.Reset(ctx, id); err != nil {
		s.log.WarnContext(ctx, "step baseline reset failed", "trip_id", id, "err", err)
	}
	s.state.update(func(st *State) {
		if st.Current != nil && st.Current.Ref.Is(id) {
			st.Steps = 0
		}
	})
	s.log.InfoContext(ctx, "trip ended", "trip_id", id, "session_steps", sessionSteps, "total_steps", saved.Steps)

	if _, err := s.loadTrips(ctx); err != nil {
		s.log.WarnContext(ctx, "trip list reload failed", "err", err)
	}
	return saved, nil
}

// ─────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────

// lookup finds a trip by id. Current wins over the loaded list so its pending
// itinerary edits are carried along. A blank id means the current trip, saved
// or not.
func lookup(st State, tripID string) (domain.Trip, error) {
	if strings.TrimSpace(tripID) == "" {
		if st.Current == nil {
			return domain.Trip{}, domain.ErrNoCurrentTrip
		}
		return st.Current.Clone(), nil
	}
	if st.Current != nil && st.Current.Ref.Is(tripID) {
		return st.Current.Clone(), nil
	}
	if t, ok := findTrip(st.Trips, tripID); ok {
		return t, nil
	}
	return domain.Trip{}, fmt.Errorf("%w: trip %s", domain.ErrNotFound, tripID)
}

func findTrip(trips []domain.Trip, tripID string) (domain.Trip, bool) {
	for _, t := range trips {
		if t.Ref.Is(tripID) {
			return t.Clone(), true
		}
	}
	return domain.Trip{}, false
}

func upsertTrip(trips []domain.Trip, t domain.Trip) []domain.Trip {
	out := make([]domain.Trip, 0, len(trips)+1)
	replaced := false
	for _, existing := range trips {
		if existing.Ref.Is(t.ID()) {
			out = append(out, t.Clone())
			replaced = true
			continue
		}
		out = append(out, existing)
	}
	if !replaced {
		out = append(out, t.Clone())
	}
	return out
}

func removeTrip(trips []domain.Trip, tripID string) []domain.Trip {
	out := make([]domain.Trip, 0, len(trips))
	for _, t := range trips {
		if !t.Ref.Is(tripID) {
			out = append(out, t)
		}
	}
	return out
}

func cloneWeather(w *domain.Weather) *domain.Weather {
	if w == nil {
		return nil
	}
	cp := *w
	return &cp
}

// lastSteps is the last step count recorded for tripID, or 0.
func (s *Session) lastSteps(ctx context.Context, tripID string) int {
	n, err := s.deps.Steps.Last(ctx, tripID)
	if err != nil {
		s.log.WarnContext(ctx, "step baseline read failed", "trip_id", tripID, "err", err)
		return 0
	}
	return n
}
