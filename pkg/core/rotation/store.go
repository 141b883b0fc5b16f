package rotation

import (
	"sync"
	"time"
)

// Store holds rotation state per key and serializes read-modify-write access
// per key, so two callers generating overlapping ranges for the same rule
// cannot lose updates. Distinct keys proceed concurrently.
type Store struct {
	mu      sync.Mutex
	entries map[string]*storeEntry
}

type storeEntry struct {
	mu    sync.Mutex
	state *State
}

// NewStore creates an empty rotation state store
func NewStore() *Store {
	return &Store{entries: make(map[string]*storeEntry)}
}

func (s *Store) entry(key string) *storeEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		e = &storeEntry{state: NewState(key)}
		s.entries[key] = e
	}
	return e
}

// Update runs fn against the key's state under the per-key lock. The state is
// created on first use. If fn returns an error, its mutations are kept; the
// caller decides whether partial progress is acceptable (the generator records
// such dates as warnings rather than rolling back).
func (s *Store) Update(key string, fn func(*State) error) error {
	e := s.entry(key)
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.state)
}

// Get returns a deep copy of the key's state, or nil when the key has never
// been used
func (s *Store) Get(key string) *State {
	s.mu.Lock()
	e, ok := s.entries[key]
	s.mu.Unlock()
	if !ok {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// Evict drops states whose last assignment predates the cutoff. Keys with no
// assignments yet are kept. Normal operation never deletes state; this exists
// for callers applying their own retention window.
func (s *Store) Evict(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	evicted := 0
	for key, e := range s.entries {
		e.mu.Lock()
		stale := !e.state.LastAssignment.IsZero() && e.state.LastAssignment.Before(cutoff)
		e.mu.Unlock()
		if stale {
			delete(s.entries, key)
			evicted++
		}
	}
	return evicted
}
