package identity

import (
	"bytes"
	"sort"

	"github.com/google/uuid"
)

// Set is an unordered collection of identifiers.
type Set map[uuid.UUID]struct{}

// NewSet creates a set containing the given identifiers.
func NewSet(ids ...uuid.UUID) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add inserts an identifier into the set.
func (s Set) Add(id uuid.UUID) {
	s[id] = struct{}{}
}

// Has reports whether the identifier is a member of the set.
func (s Set) Has(id uuid.UUID) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of identifiers in the set.
func (s Set) Len() int {
	return len(s)
}

// Difference returns the identifiers in s that are absent from other.
func (s Set) Difference(other Set) Set {
	diff := make(Set)
	for id := range s {
		if !other.Has(id) {
			diff.Add(id)
		}
	}
	return diff
}

// Sorted returns the identifiers in byte order for deterministic output.
func (s Set) Sorted() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i][:], ids[j][:]) < 0
	})
	return ids
}
