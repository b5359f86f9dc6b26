// Package variables holds the global variable store shared by the nodes of a pass.
package variables

import (
	"sort"
	"sync"
)

// Store is a goroutine-safe name -> value mapping. Writes are last-write-wins
// and visible to every read that follows them.
type Store struct {
	mu   sync.RWMutex
	data map[string]any
}

// NewStore creates a store seeded with initial values.
func NewStore(initial map[string]any) *Store {
	s := &Store{data: make(map[string]any, len(initial))}
	for k, v := range initial {
		s.data[k] = v
	}
	return s
}

// Get retrieves a value by name. Returns false if the name is not set.
func (s *Store) Get(name string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[name]
	return v, ok
}

// Set stores a value by name.
func (s *Store) Set(name string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[name] = value
}

// Snapshot returns a copy of all variables.
func (s *Store) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}
	return out
}

// Names returns the sorted variable names.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.data))
	for k := range s.data {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
