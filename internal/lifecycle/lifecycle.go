// Package lifecycle enforces the trip status state machine:
//
//	DRAFT ──save──▶ SAVED ──activate──▶ ACTIVE ──end──▶ FINISHED
//	  └────────────activate─────────────▲
//
// Saving is orthogonal to activation: a freshly generated DRAFT may be started
// without an explicit save. No transition ever moves backward.
//
// The rules live here, not in storage: the remote store and the local cache
// persist whatever status they are given.
package lifecycle

import (
	"fmt"

	"github.com/pkordes/snaptrip/backend/internal/domain"
)

// rank orders statuses along the lifecycle so backward moves can be rejected.
var rank = map[domain.Status]int{
	domain.StatusDraft:    0,
	domain.StatusSaved:    1,
	domain.StatusActive:   2,
	domain.StatusFinished: 3,
}

// Generated returns the status of a trip produced by the generation backend.
func Generated() domain.Status { return domain.StatusDraft }

// CanTransition reports whether from → to is a legal lifecycle move.
// Staying in the same status is legal (saving edits to an ACTIVE trip keeps it ACTIVE).
func CanTransition(from, to domain.Status) bool {
	rf, okFrom := rank[from]
	rt, okTo := rank[to]
	if !okFrom || !okTo {
		return false
	}
	if from == to {
		return true
	}
	switch to {
	case domain.StatusSaved:
		return from == domain.StatusDraft
	case domain.StatusActive:
		return from == domain.StatusDraft || from == domain.StatusSaved
	case domain.StatusFinished:
		return from == domain.StatusActive
	}
	return rt > rf
}

// Save returns the status a trip should carry after an explicit user save.
// DRAFT becomes SAVED; every later status is kept as is.
func Save(from domain.Status) (domain.Status, error) {
	switch from {
	case domain.StatusDraft, "":
		return domain.StatusSaved, nil
	case domain.StatusSaved, domain.StatusActive, domain.StatusFinished:
		return from, nil
	}
	return "", fmt.Errorf("lifecycle.Save: %w: unknown status %q", domain.ErrInvalidTransition, from)
}

// Activate checks whether trip may become ACTIVE given the currently loaded
// trips of the same user.
//
// The check runs against a point-in-time snapshot, so two activations issued
// before either result is observed can both pass. It is a best-effort guard,
// not a lock.
func Activate(trip domain.Trip, loaded []domain.Trip) error {
	if trip.Status.IsTerminal() {
		return domain.ErrTripFinished
	}
	if trip.Status == domain.StatusActive {
		return domain.ErrActiveTripExists
	}
	for _, other := range loaded {
		if other.Status == domain.StatusActive {
			return domain.ErrActiveTripExists
		}
	}
	if !CanTransition(trip.Status, domain.StatusActive) {
		return fmt.Errorf("lifecycle.Activate: %w: %s → %s", domain.ErrInvalidTransition, trip.Status, domain.StatusActive)
	}
	return nil
}

// End returns the status after ending a trip and whether anything changed.
// Ending an already finished trip is a no-op.
func End(from domain.Status) (domain.Status, bool, error) {
	switch from {
	case domain.StatusActive:
		return domain.StatusFinished, true, nil
	case domain.StatusFinished:
		return domain.StatusFinished, false, nil
	}
	return from, false, fmt.Errorf("lifecycle.End: %w: trip is %s, not ACTIVE", domain.ErrInvalidTransition, from)
}

// FindActive returns the ACTIVE trip among trips, if any.
func FindActive(trips []domain.Trip) (domain.Trip, bool) {
	for _, t := range trips {
		if t.Status == domain.StatusActive {
			return t, true
		}
	}
	return domain.Trip{}, false
}
