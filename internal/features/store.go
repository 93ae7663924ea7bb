package features

import (
	"sync/atomic"
)

// Store publishes the live snapshot. Readers always see a fully built
// snapshot; refreshes swap the pointer.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{}
}

// Current returns the live snapshot or nil before the first load
func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

// Publish makes snap the live snapshot
func (s *Store) Publish(snap *Snapshot) {
	s.current.Store(snap)
}

// Ready reports whether a snapshot has been published
func (s *Store) Ready() bool {
	return s.current.Load() != nil
}

// NextVersion returns the version the next snapshot should carry
func (s *Store) NextVersion() uint64 {
	if snap := s.current.Load(); snap != nil {
		return snap.version + 1
	}
	return 1
}

// Version returns the live snapshot's version, or 0 before the first load
func (s *Store) Version() uint64 {
	if snap := s.current.Load(); snap != nil {
		return snap.version
	}
	return 0
}
