package domain

import "errors"

// ErrNotFound is returned by cache and service functions when the requested
// resource does not exist.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input fails business rule validation
// (e.g. blank trip name, empty place list, place index out of range).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrUnauthenticated is returned before any remote call is attempted when no
// current user id is available.
var ErrUnauthenticated = errors.New("user not logged in")

// ErrUnavailable wraps a failed remote store or backend call (timeout, server
// error, undecodable payload).
var ErrUnavailable = errors.New("backend unavailable")

// ErrNoData is returned by read-through lists when the network failed and the
// local cache had nothing to fall back on.
var ErrNoData = errors.New("no internet and no local data available")

// Lifecycle guard failures. Handlers map these to HTTP 409 Conflict.
var (
	ErrActiveTripExists  = errors.New("you already have an active trip, finish it before starting a new one")
	ErrTripFinished      = errors.New("you cannot reactivate a completed trip")
	ErrInvalidTransition = errors.New("invalid lifecycle transition")
)

// ErrNoDays is returned when a place is added to an itinerary without days.
var ErrNoDays = errors.New("itinerary has no days")

// ErrNoActiveTrip is returned by operations that require an ACTIVE trip in
// the loaded trip list.
var ErrNoActiveTrip = errors.New("no active trip")

// ErrNoCurrentTrip is returned by operations on the session's current trip
// when none is selected.
var ErrNoCurrentTrip = errors.New("no trip selected")
