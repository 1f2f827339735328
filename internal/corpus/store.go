package corpus

import "sync/atomic"

// Store publishes the current corpus snapshot. Swaps are atomic, so a request
// that took a snapshot keeps a consistent view while a reload happens.
type Store struct {
	current atomic.Pointer[Corpus]
}

// NewStore creates a store holding initial, which may be nil.
func NewStore(initial *Corpus) *Store {
	s := &Store{}
	if initial == nil {
		initial = New("", nil)
	}
	s.current.Store(initial)
	return s
}

// Snapshot returns the corpus currently in use.
func (s *Store) Snapshot() *Corpus {
	return s.current.Load()
}

// Swap installs next and returns the previous corpus.
func (s *Store) Swap(next *Corpus) *Corpus {
	if next == nil {
		next = New("", nil)
	}
	return s.current.Swap(next)
}
