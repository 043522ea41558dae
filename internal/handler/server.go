// Package handler implements the HTTP surface of the SnapTrip API.
// Every route acts on the caller's TripSession, looked up by the user id the
// auth middleware put in the request context. Handlers are split by area
// (trip.go, journal.go, session.go) but share the Server struct.
package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/snaptrip/backend/internal/auth"
	"github.com/pkordes/snaptrip/backend/internal/domain"
	"github.com/pkordes/snaptrip/backend/internal/service"
	"github.com/pkordes/snaptrip/backend/internal/session"
)

// TripSession is the per-user orchestrator the handlers drive.
// *session.Session satisfies it; handler tests inject a mock.
type TripSession interface {
	Snapshot() session.State
	Subscribe() (<-chan session.State, func())
	ClearMessage()
	ClearCurrent()

	LoadTrips(ctx context.Context) ([]domain.Trip, error)
	Select(ctx context.Context, tripID string) (domain.Trip, error)
	Generate(ctx context.Context, req session.GenerateRequest) (domain.Trip, error)
	SaveCurrent(ctx context.Context) (domain.Trip, error)
	Delete(ctx context.Context, tripID string) error
	Activate(ctx context.Context, tripID string) (domain.Trip, error)
	End(ctx context.Context, tripID string) (domain.Trip, error)

	RemovePlace(day, index int) (domain.Trip, error)
	MovePlaceUp(day, index int) (domain.Trip, error)
	MovePlaceDown(day, index int) (domain.Trip, error)
	ReorderPlaces(day, from, to int) (domain.Trip, error)
	MovePlaceToDay(fromDay, index, toDay int) (domain.Trip, error)
	AddPlaceToActiveTrip(ctx context.Context, place domain.Place) (domain.Trip, error)

	LoadJournal(ctx context.Context, tripID string) ([]domain.JournalEntry, error)
	AddJournalEntry(ctx context.Context, tripID, text string, photo []byte) (service.SaveResult, error)
	UpdateJournalEntry(ctx context.Context, tripID, entryID string, patch session.JournalPatch) (service.SaveResult, error)

	RecordSteps(ctx context.Context, total int) (int, error)
	RefreshWeather(ctx context.Context, lat, lon float64) (domain.Weather, error)
}

// SessionFinder returns the session of an authenticated user.
type SessionFinder func(userID string) (TripSession, error)

// FromRegistry adapts a session.Registry to a SessionFinder.
func FromRegistry(reg *session.Registry) SessionFinder {
	return func(userID string) (TripSession, error) {
		s, err := reg.Get(userID)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// Server holds the dependencies shared by all handlers.
type Server struct {
	sessions  SessionFinder
	log       *slog.Logger
	heartbeat time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithHeartbeat sets how often an idle event stream sends a keep-alive
// comment. Defaults to 25s.
func WithHeartbeat(d time.Duration) Option {
	return func(s *Server) { s.heartbeat = d }
}

// NewServer constructs the Server. A nil logger discards output.
func NewServer(sessions SessionFinder, log *slog.Logger, opts ...Option) *Server {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Server{sessions: sessions, log: log, heartbeat: 25 * time.Second}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Routes registers every endpoint on r. Authentication and the rest of the
// middleware chain are applied by the caller.
func (s *Server) Routes(r chi.Router) {
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Route("/session", func(r chi.Router) {
		r.Get("/", s.GetSession)
		r.Get("/events", s.StreamSession)
		r.Delete("/message", s.ClearMessage)
		r.Post("/steps", s.RecordSteps)
		r.Post("/weather", s.RefreshWeather)

		r.Route("/current", func(r chi.Router) {
			r.Delete("/", s.ClearCurrent)
			r.Post("/save", s.SaveCurrent)
			r.Post("/activate", s.ActivateCurrent)
			r.Post("/end", s.EndCurrent)

			r.Route("/days/{day}/places/{index}", func(r chi.Router) {
				r.Delete("/", s.RemovePlace)
				r.Post("/up", s.MovePlaceUp)
				r.Post("/down", s.MovePlaceDown)
				r.Post("/reorder", s.ReorderPlace)
				r.Post("/move", s.MovePlaceToDay)
			})
		})
	})

	r.Route("/trips", func(r chi.Router) {
		r.Get("/", s.ListTrips)
		r.Post("/generate", s.GenerateTrip)
		r.Post("/active/places", s.AddPlaceToActiveTrip)

		r.Route("/{tripID}", func(r chi.Router) {
			r.Delete("/", s.DeleteTrip)
			r.Post("/select", s.SelectTrip)
			r.Post("/activate", s.ActivateTrip)
			r.Post("/end", s.EndTrip)
			r.Get("/journal", s.ListJournal)
			r.Post("/journal", s.AddJournalEntry)
			r.Patch("/journal/{entryID}", s.UpdateJournalEntry)
		})
	})
}

// Handler returns a chi router with every route registered.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	s.Routes(r)
	return r
}

// session resolves the caller's session, writing the error response itself
// when that fails.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (TripSession, bool) {
	user, err := auth.RequireUser(r.Context())
	if err == nil {
		var sess TripSession
		if sess, err = s.sessions(user); err == nil {
			return sess, true
		}
	}
	s.writeError(w, r, err)
	return nil, false
}
