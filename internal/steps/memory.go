package steps

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store. It is safe for concurrent use.
type MemoryStore struct {
	mu   sync.RWMutex
	byID map[string]Baseline
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]Baseline)}
}

func (m *MemoryStore) Get(_ context.Context, tripID string) (Baseline, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.byID[tripID]
	return b, ok, nil
}

func (m *MemoryStore) Put(_ context.Context, tripID string, b Baseline) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[tripID] = b
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, tripID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byID, tripID)
	return nil
}
