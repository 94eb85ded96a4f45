package store

import (
	"context"
	"sync"
)

// MemoryStore is a bounded in-memory audit store. When capacity is reached
// the oldest record is evicted.
type MemoryStore struct {
	mu         sync.RWMutex
	records    []*Record // oldest first
	byID       map[string]*Record
	maxRecords int
}

// DefaultMaxRecords bounds the memory store when no capacity is configured.
const DefaultMaxRecords = 200

// NewMemoryStore creates a memory store holding at most maxRecords entries.
func NewMemoryStore(maxRecords int) *MemoryStore {
	if maxRecords <= 0 {
		maxRecords = DefaultMaxRecords
	}
	return &MemoryStore{
		records:    make([]*Record, 0, maxRecords),
		byID:       make(map[string]*Record),
		maxRecords: maxRecords,
	}
}

func (s *MemoryStore) Put(_ context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.records) >= s.maxRecords {
		oldest := s.records[0]
		s.records = s.records[1:]
		delete(s.byID, oldest.ID)
	}
	s.records = append(s.records, rec)
	s.byID[rec.ID] = rec
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (s *MemoryStore) List(_ context.Context, opts ListOptions) ([]*Record, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Record
	for i := len(s.records) - 1; i >= 0 && len(out) < limit; i-- {
		rec := s.records[i]
		if !matches(rec, opts) {
			continue
		}
		cp := *rec
		out = append(out, &cp)
	}
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }

// Len returns the current record count.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func matches(rec *Record, opts ListOptions) bool {
	if opts.Intent != "" && rec.IntentResult.Intent != opts.Intent {
		return false
	}
	if opts.SelectedControl != "" {
		if rec.Decision == nil || rec.Decision.SelectedControlID != opts.SelectedControl {
			return false
		}
	}
	if opts.Since != nil && rec.ReceivedAt.Before(*opts.Since) {
		return false
	}
	if opts.Until != nil && rec.ReceivedAt.After(*opts.Until) {
		return false
	}
	return true
}
