package session

import (
	"sync"

	"github.com/pkordes/snaptrip/backend/internal/domain"
)

// State is the observable state of one user's session.
type State struct {
	Loading bool

	// Message is the last user-visible error or notice; cleared by
	// ClearMessage.
	Message string

	Current *domain.Trip
	Saved   bool // Current has been persisted since its last edit

	Trips []domain.Trip

	Journal       []domain.JournalEntry
	JournalTripID string

	Steps   int
	Weather *domain.Weather

	// Version increases with every published change.
	Version uint64
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	cp := s
	if s.Current != nil {
		c := s.Current.Clone()
		cp.Current = &c
	}
	if s.Trips != nil {
		cp.Trips = make([]domain.Trip, len(s.Trips))
		for i, t := range s.Trips {
			cp.Trips[i] = t.Clone()
		}
	}
	if s.Journal != nil {
		cp.Journal = append([]domain.JournalEntry(nil), s.Journal...)
	}
	if s.Weather != nil {
		w := *s.Weather
		cp.Weather = &w
	}
	return cp
}

// A subscriber holds at most one pending snapshot; a newer one replaces it.
const subscriberBuffer = 1

// store coordinates concurrent reads of the state and fans out every change
// to subscribers.
type store struct {
	mu     sync.RWMutex
	state  State
	nextID int
	subs   map[int]chan State
}

func newStore() *store {
	return &store{subs: map[int]chan State{}}
}

// Snapshot returns a copy of the current state.
func (s *store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// update applies fn to the state, bumps the version and publishes the result.
func (s *store) update(fn func(*State)) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(&s.state)
	s.state.Version++
	snap := s.state.Clone()

	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap.Clone():
		default:
		}
	}
	return snap
}

// subscribe registers a channel that receives the current state immediately
// and every later change.
func (s *store) subscribe() (<-chan State, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan State, subscriberBuffer)
	ch <- s.state.Clone()
	s.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}
