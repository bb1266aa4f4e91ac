package attend

import (
	"encoding/hex"
	"sort"
	"strings"
	"sync"
)

// CanonicalTag returns the canonical form of a raw tag id: uppercase hex.
// Distinct byte sequences always map to distinct canonical strings.
func CanonicalTag(raw []byte) string {
	return strings.ToUpper(hex.EncodeToString(raw))
}

// TagSet holds the canonical tags observed since the last successful
// reconciliation. A single mutex guards every operation: inserts from
// concurrent workers are atomic, and a snapshot is consistent with respect
// to inserts and removals happening around it.
type TagSet struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func NewTagSet() *TagSet {
	return &TagSet{ids: make(map[string]struct{})}
}

// Insert adds id and reports whether it was newly added.
func (s *TagSet) Insert(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[id]; ok {
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

// Snapshot returns the current members in sorted order.
func (s *TagSet) Snapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Remove deletes the given ids. Ids inserted after a snapshot was taken
// survive removal of that snapshot.
func (s *TagSet) Remove(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.ids, id)
	}
}

func (s *TagSet) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = make(map[string]struct{})
}

func (s *TagSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}
