package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/receiptsync/internal/core/domain"
	"github.com/custodia-labs/receiptsync/internal/core/ports/driven"
)

// Ensure RunStore implements the interface.
var _ driven.RunStore = (*RunStore)(nil)

// RunStore is an in-memory implementation of driven.RunStore.
type RunStore struct {
	mu   sync.RWMutex
	runs []domain.RunRecord
	err  error
}

// NewRunStore creates an empty in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{}
}

// Record stores a run summary.
func (s *RunStore) Record(_ context.Context, run domain.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.runs = append(s.runs, run)
	return nil
}

// History returns recent runs, most recent first.
func (s *RunStore) History(_ context.Context, limit int) ([]domain.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := append([]domain.RunRecord(nil), s.runs...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Prune keeps only the most recent 'keep' runs.
func (s *RunStore) Prune(ctx context.Context, keep int) error {
	recent, _ := s.History(ctx, keep)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = recent
	return nil
}

// Close is a no-op.
func (s *RunStore) Close() error {
	return nil
}

// Fail makes Record return err. A nil err clears the failure.
func (s *RunStore) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}
