// Package service holds the offline-first sync policy between the remote
// document store and the local cache. The remote store is authoritative; the
// cache serves provisional and offline reads and keeps user-authored journal
// entries from being lost.
// No SQL or document encoding lives here; services depend on the
// remote.Store and repo.LocalCache interfaces, not implementations.
package service

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/snaptrip/backend/internal/domain"
)

// Source tells a caller where a list result came from.
type Source string

const (
	SourceNetwork Source = "network"
	SourceCache   Source = "cache"
)

// requireUser fails with domain.ErrUnauthenticated when no user id is known.
// Remote-dependent operations call it before touching the network.
func requireUser(op, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%s: %w", op, domain.ErrUnauthenticated)
	}
	return nil
}

// mint returns ref unchanged when persisted, otherwise a fresh random id.
func mint(ref domain.Ref) domain.Ref {
	if ref.IsPersisted() {
		return ref
	}
	return domain.Persisted(uuid.NewString())
}
