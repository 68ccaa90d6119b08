package driven

import (
	"context"

	"github.com/custodia-labs/receiptsync/internal/core/domain"
)

// RunStore persists sync run history.
type RunStore interface {
	// Record stores the summary of a finished run.
	Record(ctx context.Context, run domain.RunRecord) error

	// History returns recent runs, most recent first.
	// A limit of zero or less returns all runs.
	History(ctx context.Context, limit int) ([]domain.RunRecord, error)

	// Prune removes all but the most recent 'keep' runs.
	Prune(ctx context.Context, keep int) error

	// Close releases resources.
	Close() error
}
