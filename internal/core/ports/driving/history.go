package driving

import (
	"context"

	"github.com/custodia-labs/receiptsync/internal/core/domain"
)

// HistoryService exposes past sync runs.
type HistoryService interface {
	// Recent returns up to limit runs, most recent first.
	Recent(ctx context.Context, limit int) ([]domain.RunRecord, error)
}
