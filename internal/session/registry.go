package session

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pkordes/snaptrip/backend/internal/domain"
)

// Registry hands out one Session per user, creating it on first use.
type Registry struct {
	deps Deps

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry constructs a Registry whose sessions share deps.
func NewRegistry(deps Deps) *Registry {
	return &Registry{deps: deps, sessions: map[string]*Session{}}
}

// Get returns the session of userID.
// Returns domain.ErrUnauthenticated for a blank user id.
func (r *Registry) Get(userID string) (*Session, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("session.Registry.Get: %w", domain.ErrUnauthenticated)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[userID]
	if !ok {
		s = New(userID, r.deps)
		r.sessions[userID] = s
	}
	return s, nil
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
