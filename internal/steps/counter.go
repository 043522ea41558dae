// Package steps turns raw step-counter readings into per-trip step counts.
//
// A hardware step counter reports a monotonically increasing total since the
// device booted. The first reading seen for a trip becomes its baseline
// (offset); later readings are diffed against it. A reading below the
// baseline means the counter was reset (reboot), so the baseline is moved
// down to that reading and the trip restarts from zero.
package steps

import (
	"context"
	"fmt"
	"sync"
)

// Baseline is the persisted bookkeeping for one trip.
type Baseline struct {
	// Offset is the counter total that corresponds to zero trip steps.
	// HasOffset is false until the first reading arrives.
	Offset    int  `toml:"offset"`
	HasOffset bool `toml:"has_offset"`

	// Last is the most recently computed trip step count, kept so it can be
	// shown again before a fresh reading arrives.
	Last int `toml:"last"`
}

// Store persists baselines by trip id.
type Store interface {
	Get(ctx context.Context, tripID string) (Baseline, bool, error)
	Put(ctx context.Context, tripID string, b Baseline) error
	Delete(ctx context.Context, tripID string) error
}

// Counter applies readings to baselines held in a Store.
// It is safe for concurrent use.
type Counter struct {
	mu    sync.Mutex
	store Store
}

// NewCounter constructs a Counter backed by store.
func NewCounter(store Store) *Counter {
	return &Counter{store: store}
}

// Apply records a raw counter reading for tripID and returns the trip's step
// count since its baseline.
func (c *Counter) Apply(ctx context.Context, tripID string, total int) (int, error) {
	if total < 0 {
		return 0, fmt.Errorf("steps.Counter.Apply: negative reading %d", total)
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	b, _, err := c.store.Get(ctx, tripID)
	if err != nil {
		return 0, fmt.Errorf("steps.Counter.Apply: %w", err)
	}

	b = Next(b, total)
	if err := c.store.Put(ctx, tripID, b); err != nil {
		return 0, fmt.Errorf("steps.Counter.Apply: %w", err)
	}
	return b.Last, nil
}

// Last returns the last computed step count for tripID (0 when unknown).
func (c *Counter) Last(ctx context.Context, tripID string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	b, _, err := c.store.Get(ctx, tripID)
	if err != nil {
		return 0, fmt.Errorf("steps.Counter.Last: %w", err)
	}
	return b.Last, nil
}

// Reset forgets the baseline for tripID; the next reading starts from zero.
func (c *Counter) Reset(ctx context.Context, tripID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Delete(ctx, tripID); err != nil {
		return fmt.Errorf("steps.Counter.Reset: %w", err)
	}
	return nil
}

// Next is the store-and-diff rule applied to a single reading.
func Next(b Baseline, total int) Baseline {
	switch {
	case !b.HasOffset, total < b.Offset:
		return Baseline{Offset: total, HasOffset: true, Last: 0}
	default:
		return Baseline{Offset: b.Offset, HasOffset: true, Last: total - b.Offset}
	}
}
