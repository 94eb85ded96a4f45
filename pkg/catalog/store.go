package catalog

import (
	"sync"
)

// Store holds the currently published snapshot. A reload builds a complete
// new snapshot and swaps the reference; in-flight routing calls keep the
// snapshot they pinned at call start, so scoring never observes a
// partially-updated catalog.
type Store struct {
	mu   sync.RWMutex
	snap *Snapshot

	updateMu sync.Mutex
	updateCh chan *Snapshot
}

// NewStore creates a Store publishing the given initial snapshot.
func NewStore(initial *Snapshot) *Store {
	return &Store{snap: initial}
}

// Current returns the published snapshot. Callers pin the returned value for
// the duration of one classify/route call.
func (s *Store) Current() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Replace atomically publishes a new snapshot. Safe for concurrent readers.
func (s *Store) Replace(snap *Snapshot) {
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()

	s.updateMu.Lock()
	if s.updateCh != nil {
		select {
		case s.updateCh <- snap:
		default:
			// Listener is behind; it will pick up the latest on its next read.
		}
	}
	s.updateMu.Unlock()
}

// WatchUpdates returns a channel that receives newly published snapshots.
// Only one watcher is supported at a time.
func (s *Store) WatchUpdates() <-chan *Snapshot {
	s.updateMu.Lock()
	defer s.updateMu.Unlock()
	if s.updateCh == nil {
		s.updateCh = make(chan *Snapshot, 1)
	}
	return s.updateCh
}
