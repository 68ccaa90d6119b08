package domain

import "time"

// RunStatus is the terminal state of a run.
type RunStatus string

const (
	// RunCompleted means enumeration finished; some files may still have failed.
	RunCompleted RunStatus = "completed"

	// RunAborted means the run stopped before enumeration finished.
	RunAborted RunStatus = "aborted"
)

// RunRecord is the persisted summary of one sync run.
type RunRecord struct {
	// ID uniquely identifies the run.
	ID string

	// Period is the synchronised month.
	Period Period

	// DryRun indicates nothing was fetched or written.
	DryRun bool

	// StartedAt is when the run started.
	StartedAt time.Time

	// FinishedAt is when the run ended.
	FinishedAt time.Time

	// Counts is the per-decision tally.
	Counts SyncCounts

	// Warnings is the number of run-level warnings.
	Warnings int

	// Status is the terminal state.
	Status RunStatus

	// Error contains the abort reason when Status is RunAborted.
	Error string
}

// NewRunRecord summarises a result. runErr is the error returned by the
// engine, if any.
func NewRunRecord(id string, result *SyncResult, runErr error) RunRecord {
	rec := RunRecord{
		ID:         id,
		Period:     result.Period,
		DryRun:     result.DryRun,
		StartedAt:  result.StartedAt,
		FinishedAt: result.FinishedAt,
		Counts:     result.Counts(),
		Warnings:   len(result.Warnings),
		Status:     RunCompleted,
	}
	if runErr != nil {
		rec.Status = RunAborted
		rec.Error = runErr.Error()
	}
	return rec
}

// Duration returns how long the run took.
func (r RunRecord) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
