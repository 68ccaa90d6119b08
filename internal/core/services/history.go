package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/receiptsync/internal/core/domain"
	"github.com/custodia-labs/receiptsync/internal/core/ports/driven"
	"github.com/custodia-labs/receiptsync/internal/core/ports/driving"
)

// Ensure HistoryService implements the interface.
var _ driving.HistoryService = (*HistoryService)(nil)

// HistoryService lists past sync runs.
type HistoryService struct {
	runs driven.RunStore
}

// NewHistoryService creates a history service backed by a run store.
func NewHistoryService(runs driven.RunStore) *HistoryService {
	return &HistoryService{runs: runs}
}

// Recent returns up to limit runs, most recent first.
func (s *HistoryService) Recent(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	if s.runs == nil {
		return nil, nil
	}
	if limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative", domain.ErrInvalidInput)
	}
	runs, err := s.runs.History(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("load run history: %w", err)
	}
	return runs, nil
}
