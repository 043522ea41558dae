package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pkordes/snaptrip/backend/internal/domain"
	"github.com/pkordes/snaptrip/backend/internal/session"
)

// GetSession handles GET /session.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, stateToResponse(sess.Snapshot()))
}

// StreamSession handles GET /session/events: a server-sent event stream that
// starts with the current snapshot and then carries every published change.
// Each event's id is the state version.
func (s *Server) StreamSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	rc := http.NewResponseController(w)
	// Streams outlive the server's write timeout.
	_ = rc.SetWriteDeadline(time.Time{})

	updates, cancel := sess.Subscribe()
	defer cancel()

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if err := writeEvent(w, rc, sess.Snapshot()); err != nil {
		return
	}

	ping := time.NewTicker(s.heartbeat)
	defer ping.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case st, open := <-updates:
			if !open {
				return
			}
			if err := writeEvent(w, rc, st); err != nil {
				s.log.DebugContext(r.Context(), "event stream closed", "err", err)
				return
			}
		case <-ping.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			_ = rc.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, rc *http.ResponseController, st session.State) error {
	data, err := json.Marshal(stateToResponse(st))
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "id: %d\nevent: state\ndata: %s\n\n", st.Version, data); err != nil {
		return err
	}
	return rc.Flush()
}

// ClearMessage handles DELETE /session/message.
func (s *Server) ClearMessage(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.ClearMessage()
	w.WriteHeader(http.StatusNoContent)
}

// ClearCurrent handles DELETE /session/current.
func (s *Server) ClearCurrent(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.ClearCurrent()
	w.WriteHeader(http.StatusNoContent)
}

// SaveCurrent handles POST /session/current/save.
func (s *Server) SaveCurrent(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	trip, err := sess.SaveCurrent(r.Context())
	s.respondTrip(w, r, trip, err)
}

// ActivateCurrent handles POST /session/current/activate. The current trip
// need not be saved yet.
func (s *Server) ActivateCurrent(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	trip, err := sess.Activate(r.Context(), "")
	s.respondTrip(w, r, trip, err)
}

// EndCurrent handles POST /session/current/end.
func (s *Server) EndCurrent(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	trip, err := sess.End(r.Context(), "")
	s.respondTrip(w, r, trip, err)
}

// ─────────────────────────────────────────
// Itinerary edits on the current trip
// ─────────────────────────────────────────

// ReorderRequest is the body of .../reorder.
type ReorderRequest struct {
	To int `json:"to"`
}

// MoveToDayRequest is the body of .../move.
type MoveToDayRequest struct {
	ToDay int `json:"to_day"`
}

// RemovePlace handles DELETE /session/current/days/{day}/places/{index}.
func (s *Server) RemovePlace(w http.ResponseWriter, r *http.Request) {
	s.placeEdit(w, r, func(sess TripSession, day, index int) (domain.Trip, error) {
		return sess.RemovePlace(day, index)
	})
}

// MovePlaceUp handles POST .../up.
func (s *Server) MovePlaceUp(w http.ResponseWriter, r *http.Request) {
	s.placeEdit(w, r, func(sess TripSession, day, index int) (domain.Trip, error) {
		return sess.MovePlaceUp(day, index)
	})
}

// MovePlaceDown handles POST .../down.
func (s *Server) MovePlaceDown(w http.ResponseWriter, r *http.Request) {
	s.placeEdit(w, r, func(sess TripSession, day, index int) (domain.Trip, error) {
		return sess.MovePlaceDown(day, index)
	})
}

// ReorderPlace handles POST .../reorder.
func (s *Server) ReorderPlace(w http.ResponseWriter, r *http.Request) {
	var body ReorderRequest
	if !decode(w, r, &body) {
		return
	}
	s.placeEdit(w, r, func(sess TripSession, day, index int) (domain.Trip, error) {
		return sess.ReorderPlaces(day, index, body.To)
	})
}

// MovePlaceToDay handles POST .../move.
func (s *Server) MovePlaceToDay(w http.ResponseWriter, r *http.Request) {
	var body MoveToDayRequest
	if !decode(w, r, &body) {
		return
	}
	s.placeEdit(w, r, func(sess TripSession, day, index int) (domain.Trip, error) {
		return sess.MovePlaceToDay(day, index, body.ToDay)
	})
}

func (s *Server) placeEdit(w http.ResponseWriter, r *http.Request, op func(TripSession, int, int) (domain.Trip, error)) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	day, err := intParam(r, "day")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	index, err := intParam(r, "index")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	trip, err := op(sess, day, index)
	s.respondTrip(w, r, trip, err)
}

func (s *Server) respondTrip(w http.ResponseWriter, r *http.Request, trip domain.Trip, err error) {
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// ─────────────────────────────────────────
// Sensors
// ─────────────────────────────────────────

// StepsRequest carries a raw step-counter reading.
type StepsRequest struct {
	Total int `json:"total"`
}

// StepsResponse is the step count of the current trip since its baseline.
type StepsResponse struct {
	Steps int `json:"steps"`
}

// WeatherRequest is the device position for a weather refresh.
type WeatherRequest struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// RecordSteps handles POST /session/steps.
func (s *Server) RecordSteps(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var body StepsRequest
	if !decode(w, r, &body) {
		return
	}
	if body.Total < 0 {
		badRequest(w, "total must not be negative")
		return
	}
	n, err := sess.RecordSteps(r.Context(), body.Total)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, StepsResponse{Steps: n})
}

// RefreshWeather handles POST /session/weather.
func (s *Server) RefreshWeather(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var body WeatherRequest
	if !decode(w, r, &body) {
		return
	}
	if body.Lat < -90 || body.Lat > 90 || body.Lon < -180 || body.Lon > 180 {
		badRequest(w, "lat/lon out of range")
		return
	}
	wx, err := sess.RefreshWeather(r.Context(), body.Lat, body.Lon)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, weatherToResponse(&wx))
}
