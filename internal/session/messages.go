package session

import (
	"errors"
	"strings"

	"github.com/pkordes/snaptrip/backend/internal/domain"
)

const (
	msgUnavailable = "The service is unavailable. Please try again later."
	msgGeneric     = "Something went wrong. Please try again."
)

// noticeError carries a message written for the user alongside the error
// that caused it.
type noticeError struct {
	err    error
	notice string
}

func (e *noticeError) Error() string { return e.err.Error() }
func (e *noticeError) Unwrap() error { return e.err }

// UserMessage renders err the way it is shown to the user. Internal detail
// (wrapping prefixes, driver and transport errors) never reaches the text.
func UserMessage(err error) string {
	var notice *noticeError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &notice):
		return notice.notice
	case errors.Is(err, domain.ErrActiveTripExists):
		return "You already have an active trip! Finish it before starting a new one."
	case errors.Is(err, domain.ErrTripFinished):
		return "You cannot reactivate a completed trip!"
	case errors.Is(err, domain.ErrNoDays):
		return "Itinerary has no days!"
	case errors.Is(err, domain.ErrNoData):
		return "No internet and no local data available."
	case errors.Is(err, domain.ErrUnauthenticated):
		return "User not logged in"
	case errors.Is(err, domain.ErrNoActiveTrip):
		return "There is no active trip."
	case errors.Is(err, domain.ErrNoCurrentTrip):
		return "No trip selected."
	case errors.Is(err, domain.ErrUnavailable):
		return msgUnavailable
	case errors.Is(err, domain.ErrValidation):
		return detail(err, domain.ErrValidation, "Invalid input.")
	case errors.Is(err, domain.ErrNotFound):
		return detail(err, domain.ErrNotFound, "Not found.")
	case errors.Is(err, domain.ErrInvalidTransition):
		return detail(err, domain.ErrInvalidTransition, "This trip cannot change to that status.")
	}
	return msgGeneric
}

// detail returns the text our own code attached after sentinel with
// "%w: detail", or fallback when there is none.
func detail(err, sentinel error, fallback string) string {
	msg := err.Error()
	marker := sentinel.Error() + ": "
	i := strings.LastIndex(msg, marker)
	if i < 0 {
		return fallback
	}
	d := strings.TrimSpace(msg[i+len(marker):])
	if d == "" {
		return fallback
	}
	return strings.ToUpper(d[:1]) + d[1:]
}

const msgJournalOffline = "Entry saved offline. It will sync when the connection is back."
