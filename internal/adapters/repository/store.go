// Package repository holds the rating state of every competitor seen so far.
package repository

import (
	"context"
	"maps"
	"sync"

	"github.com/okian/gambit/internal/domain/model"
	"github.com/okian/gambit/pkg/metrics"
)

// MemoryStore is an in-memory map from competitor name to rating state.
// It is safe for concurrent use.
type MemoryStore struct {
	mu       sync.RWMutex
	byID     map[string]model.RatingState
	capacity int
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{}
	for _, opt := range opts {
		opt(s)
	}
	s.byID = make(map[string]model.RatingState, s.capacity)
	return s
}

// Get returns the state stored for id, or ErrNotFound when id has never
// been written.
func (s *MemoryStore) Get(ctx context.Context, id string) (model.RatingState, error) {
	if err := ctx.Err(); err != nil {
		return model.RatingState{}, err
	}
	s.mu.RLock()
	st, ok := s.byID[id]
	s.mu.RUnlock()
	if !ok {
		return model.RatingState{}, ErrNotFound
	}
	return st, nil
}

// Put stores st as the current state of id.
func (s *MemoryStore) Put(ctx context.Context, id string, st model.RatingState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if id == "" {
		metrics.RecordErrorByComponent("repository", "empty_id")
		return ErrEmptyID
	}

	s.mu.Lock()
	_, existed := s.byID[id]
	s.byID[id] = st
	n := len(s.byID)
	s.mu.Unlock()

	if !existed {
		metrics.UpdateCompetitorsTracked(n)
	}
	return nil
}

// Snapshot returns a copy of every stored state keyed by competitor.
func (s *MemoryStore) Snapshot(ctx context.Context) (map[string]model.RatingState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.byID), nil
}

// Count returns the number of competitors stored.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
