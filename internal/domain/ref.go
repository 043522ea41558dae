package domain

import "strings"

// Ref is the persisted identity of a trip or journal entry.
// The zero Ref is unsaved; Persisted wraps a store-assigned id.
// Blank ids never produce a persisted Ref, so "empty string", "missing field"
// and "not yet saved" all collapse to the same state.
type Ref struct {
	id string
}

// Unsaved returns the Ref of an entity that has never been written.
func Unsaved() Ref { return Ref{} }

// Persisted returns a Ref for id. A blank id yields Unsaved.
func Persisted(id string) Ref {
	return Ref{id: strings.TrimSpace(id)}
}

// ID returns the id and true when the entity has been persisted.
func (r Ref) ID() (string, bool) {
	return r.id, r.id != ""
}

// IsPersisted reports whether the entity carries a store identity.
func (r Ref) IsPersisted() bool { return r.id != "" }

// String returns the id, or "" for an unsaved entity.
func (r Ref) String() string { return r.id }

// Is reports whether r is persisted under id.
func (r Ref) Is(id string) bool {
	return r.id != "" && r.id == strings.TrimSpace(id)
}
