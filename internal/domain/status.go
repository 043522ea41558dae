package domain

import (
	"fmt"
	"strings"
)

// Status is a trip's position in its lifecycle.
type Status string

const (
	StatusDraft    Status = "DRAFT"
	StatusSaved    Status = "SAVED"
	StatusActive   Status = "ACTIVE"
	StatusFinished Status = "FINISHED"
)

// legacyCompleted is the older spelling of the terminal status still found in
// stored documents. It is read as StatusFinished and never written.
const legacyCompleted = "COMPLETED"

// ParseStatus converts a stored status string into a Status.
// An empty string is treated as DRAFT, the default for freshly generated trips.
func ParseStatus(s string) (Status, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", string(StatusDraft):
		return StatusDraft, nil
	case string(StatusSaved):
		return StatusSaved, nil
	case string(StatusActive):
		return StatusActive, nil
	case string(StatusFinished), legacyCompleted:
		return StatusFinished, nil
	}
	return "", fmt.Errorf("%w: unknown lifecycle status %q", ErrValidation, s)
}

// IsTerminal reports whether no further transition is allowed out of s.
func (s Status) IsTerminal() bool { return s == StatusFinished }
