package bindings

import (
	"sync"
	"time"
)

// Entry is the latest table received for one binding
type Entry struct {
	Table      Table
	ReceivedAt time.Time
}

// Store keeps the latest pushed table per binding. Tables are replaced
// wholesale on every push and never mutated in place.
type Store struct {
	tables map[Kind]Entry
	mu     sync.RWMutex
}

// NewStore creates an empty binding store
func NewStore() *Store {
	return &Store{
		tables: make(map[Kind]Entry),
	}
}

// Put replaces the table for a binding
func (s *Store) Put(kind Kind, t Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[kind] = Entry{Table: t, ReceivedAt: time.Now()}
}

// Get returns the latest table for a binding
func (s *Store) Get(kind Kind) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.tables[kind]
	return e, ok
}

// Snapshot returns a copy of the current binding map
func (s *Store) Snapshot() map[Kind]Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := make(map[Kind]Entry, len(s.tables))
	for k, e := range s.tables {
		snap[k] = e
	}
	return snap
}

// Empty reports whether no binding has ever been received
func (s *Store) Empty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tables) == 0
}

// LastUpdated returns the receive time per binding
func (s *Store) LastUpdated() map[string]time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]time.Time, len(s.tables))
	for k, e := range s.tables {
		out["binding:"+string(k)] = e.ReceivedAt
	}
	return out
}

// Clear drops every table and returns how many were held
func (s *Store) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.tables)
	s.tables = make(map[Kind]Entry)
	return n
}
