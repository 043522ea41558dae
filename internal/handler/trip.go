package handler

import (
	"context"
	"net/http"

	"github.com/pkordes/snaptrip/backend/internal/domain"
	"github.com/pkordes/snaptrip/backend/internal/session"
)

// GenerateTripRequest is the body of POST /trips/generate. Cover is an
// optional base64 JPEG.
type GenerateTripRequest struct {
	TripName string   `json:"trip_name"`
	Days     int      `json:"days"`
	Hotel    string   `json:"hotel"`
	Places   []string `json:"places"`
	Cover    []byte   `json:"cover,omitempty"`
}

// ListTrips handles GET /trips.
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	trips, err := sess.LoadTrips(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tripsToResponse(trips))
}

// GenerateTrip handles POST /trips/generate.
func (s *Server) GenerateTrip(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var body GenerateTripRequest
	if !decode(w, r, &body) {
		return
	}
	trip, err := sess.Generate(r.Context(), session.GenerateRequest{
		Name:   body.TripName,
		Days:   body.Days,
		Hotel:  body.Hotel,
		Places: body.Places,
		Cover:  body.Cover,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tripToResponse(trip))
}

// SelectTrip handles POST /trips/{tripID}/select.
func (s *Server) SelectTrip(w http.ResponseWriter, r *http.Request) {
	s.tripAction(w, r, TripSession.Select)
}

// ActivateTrip handles POST /trips/{tripID}/activate.
func (s *Server) ActivateTrip(w http.ResponseWriter, r *http.Request) {
	s.tripAction(w, r, TripSession.Activate)
}

// EndTrip handles POST /trips/{tripID}/end.
func (s *Server) EndTrip(w http.ResponseWriter, r *http.Request) {
	s.tripAction(w, r, TripSession.End)
}

// DeleteTrip handles DELETE /trips/{tripID}.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	id, err := stringParam(r, "tripID")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := sess.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddPlaceToActiveTrip handles POST /trips/active/places.
func (s *Server) AddPlaceToActiveTrip(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var body Place
	if !decode(w, r, &body) {
		return
	}
	if body.Name == "" {
		badRequest(w, "name is required")
		return
	}
	trip, err := sess.AddPlaceToActiveTrip(r.Context(), placeFromRequest(body))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

func (s *Server) tripAction(w http.ResponseWriter, r *http.Request, op func(TripSession, context.Context, string) (domain.Trip, error)) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	id, err := stringParam(r, "tripID")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	trip, err := op(sess, r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(trip))
}
