package driving

import (
	"context"

	"github.com/custodia-labs/receiptsync/internal/core/domain"
)

// SyncService synchronises one period of attachments into storage.
type SyncService interface {
	// Sync runs a full synchronisation for the period.
	// A non-nil result is returned whenever enumeration started, even if
	// an error is also returned.
	Sync(ctx context.Context, period domain.Period, opts SyncOptions) (*domain.SyncResult, error)

	// Status returns progress for a period.
	Status(ctx context.Context, period domain.Period) (*SyncStatus, error)
}

// SyncOptions tunes a run.
type SyncOptions struct {
	// DryRun decides without fetching, writing, or saving state.
	DryRun bool
}

// SyncStatus represents the current state of a sync operation.
type SyncStatus struct {
	// Period identifies the run.
	Period domain.Period

	// Running indicates if sync is currently in progress.
	Running bool

	// Processed is the count of attachments handled so far.
	Processed int

	// Failed is the number of per-attachment failures so far.
	Failed int
}
