package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pkordes/snaptrip/backend/internal/domain"
	"github.com/pkordes/snaptrip/backend/internal/session"
)

// ErrorDetail is the body of every error response: {"error":{...}}.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps ErrorDetail.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// classify maps a domain sentinel to an HTTP status and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrNoCurrentTrip):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrActiveTripExists),
		errors.Is(err, domain.ErrTripFinished),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrNoActiveTrip),
		errors.Is(err, domain.ErrNoDays):
		return http.StatusConflict, "conflict"
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity, "validation_error"
	case errors.Is(err, domain.ErrUnavailable), errors.Is(err, domain.ErrNoData):
		return http.StatusServiceUnavailable, "unavailable"
	}
	return http.StatusInternalServerError, "internal"
}

// writeError renders err. Unclassified errors are logged and hidden behind a
// generic message.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	msg := session.UserMessage(err)
	if status == http.StatusInternalServerError {
		s.log.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "err", err)
		msg = "internal server error"
	}
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: msg}})
}

// badRequest rejects a request before it reaches the session (malformed body
// or path parameter).
func badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: ErrorDetail{Code: "validation_error", Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decode reads a JSON request body into dst, rejecting unknown fields. On
// failure it writes the response and returns false.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	err := dec.Decode(dst)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: ErrorDetail{Code: "too_large", Message: "request body too large"}})
		return false
	}
	badRequest(w, "invalid request body: "+err.Error())
	return false
}
