package store

import (
	"sync"
	"time"

	"github.com/marocz/launchdash/server/internal/dataset"
)

// historySize bounds the number of past loads kept for reporting.
const historySize = 16

// Entry is a loaded table together with its version and swap time.
type Entry struct {
	Table     *dataset.Table
	Version   uint64
	UpdatedAt time.Time
}

// Load summarises one table swap without retaining the table itself.
type Load struct {
	Version   uint64    `json:"version"`
	Records   int       `json:"records"`
	Source    string    `json:"source,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store is a thread-safe holder for the current table.
// Tables are never mutated; Replace swaps the pointer.
type Store struct {
	mu      sync.RWMutex
	cur     Entry
	history []Load
	now     func() time.Time // injectable for deterministic tests
}

// New creates a Store serving t as version 1.
func New(t *dataset.Table) *Store {
	s := &Store{now: time.Now}
	s.swap(t)
	return s
}

// Current returns the table being served with its version.
func (s *Store) Current() Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// Table returns the table being served.
func (s *Store) Table() *dataset.Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur.Table
}

// Version returns the current version. It starts at 1 and increases by one on
// every Replace.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur.Version
}

// Replace swaps in t and returns the new version. A nil table is ignored and
// the current version is returned unchanged.
func (s *Store) Replace(t *dataset.Table) uint64 {
	if t == nil {
		return s.Version()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.swapLocked(t)
}

// History returns past loads, most recent first.
func (s *Store) History() []Load {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Load, len(s.history))
	for i, l := range s.history {
		out[len(s.history)-1-i] = l
	}
	return out
}

func (s *Store) swap(t *dataset.Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.swapLocked(t)
}

func (s *Store) swapLocked(t *dataset.Table) uint64 {
	s.cur = Entry{
		Table:     t,
		Version:   s.cur.Version + 1,
		UpdatedAt: s.now(),
	}
	l := Load{Version: s.cur.Version, UpdatedAt: s.cur.UpdatedAt}
	if t != nil {
		l.Records = t.Len()
		l.Source = t.Source()
	}
	s.history = append(s.history, l)
	if len(s.history) > historySize {
		s.history = s.history[len(s.history)-historySize:]
	}
	return s.cur.Version
}
