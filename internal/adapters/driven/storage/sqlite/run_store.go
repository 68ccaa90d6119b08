package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/custodia-labs/receiptsync/internal/core/domain"
	"github.com/custodia-labs/receiptsync/internal/core/ports/driven"
)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// runStore implements driven.RunStore.
type runStore struct {
	store *Store
}

var _ driven.RunStore = (*runStore)(nil)

// Record stores the summary of a finished run.
func (s *runStore) Record(ctx context.Context, run domain.RunRecord) error {
	if run.ID == "" {
		return fmt.Errorf("%w: run id is empty", domain.ErrInvalidInput)
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO sync_runs (id, period, dry_run, started_at, finished_at,
			new_count, changed_count, unchanged_count, failed_count, warnings, status, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			finished_at = excluded.finished_at,
			new_count = excluded.new_count,
			changed_count = excluded.changed_count,
			unchanged_count = excluded.unchanged_count,
			failed_count = excluded.failed_count,
			warnings = excluded.warnings,
			status = excluded.status,
			error = excluded.error
	`, run.ID,
		run.Period.FolderName(),
		boolToInt(run.DryRun),
		formatTime(run.StartedAt),
		formatNullableTime(run.FinishedAt),
		run.Counts.New,
		run.Counts.Changed,
		run.Counts.Unchanged,
		run.Counts.Failed,
		run.Warnings,
		string(run.Status),
		nullString(run.Error))

	if err != nil {
		return fmt.Errorf("recording sync run: %w", err)
	}
	return nil
}

// History returns recent runs, most recent first.
// A limit of zero or less returns all runs.
func (s *runStore) History(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, period, dry_run, started_at, finished_at,
			new_count, changed_count, unchanged_count, failed_count, warnings, status, error
		FROM sync_runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying run history: %w", err)
	}
	defer rows.Close()

	var runs []domain.RunRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating run history: %w", err)
	}

	return runs, nil
}

// Prune removes all but the most recent 'keep' runs.
func (s *runStore) Prune(ctx context.Context, keep int) error {
	if keep <= 0 {
		return nil
	}
	_, err := s.store.db.ExecContext(ctx, `
		DELETE FROM sync_runs
		WHERE id NOT IN (
			SELECT id FROM sync_runs ORDER BY started_at DESC LIMIT ?
		)
	`, keep)
	if err != nil {
		return fmt.Errorf("pruning run history: %w", err)
	}
	return nil
}

// Close closes the underlying store.
func (s *runStore) Close() error {
	return s.store.Close()
}

// ==================== Helper Functions ====================

// scanRun scans a run from *sql.Rows.
func scanRun(rows *sql.Rows) (*domain.RunRecord, error) {
	var run domain.RunRecord
	var period, startedAt, status string
	var finishedAt, errMsg sql.NullString
	var dryRun int

	if err := rows.Scan(&run.ID, &period, &dryRun, &startedAt, &finishedAt,
		&run.Counts.New, &run.Counts.Changed, &run.Counts.Unchanged, &run.Counts.Failed,
		&run.Warnings, &status, &errMsg); err != nil {
		return nil, fmt.Errorf("scanning sync run: %w", err)
	}

	var year, month int
	if _, err := fmt.Sscanf(period, "%04d-%02d", &year, &month); err == nil {
		run.Period = domain.Period{Year: year, Month: time.Month(month)}
	}
	if t, err := time.Parse(timeLayout, startedAt); err == nil {
		run.StartedAt = t
	}
	run.FinishedAt = parseNullableTime(finishedAt)
	run.DryRun = dryRun == 1
	run.Status = domain.RunStatus(status)
	if errMsg.Valid {
		run.Error = errMsg.String
	}

	return &run, nil
}

// formatTime formats a time in UTC using the sortable layout.
func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// formatNullableTime formats a time, or returns nil for zero time.
func formatNullableTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return formatTime(t)
}

// parseNullableTime parses a nullable timestamp.
// Returns zero time if the string is empty or invalid.
func parseNullableTime(s sql.NullString) time.Time {
	if !s.Valid || s.String == "" {
		return time.Time{}
	}
	t, err := time.Parse(timeLayout, s.String)
	if err != nil {
		return time.Time{} // Return zero time on parse error
	}
	return t
}

// nullString returns nil for empty strings, otherwise the string.
func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// boolToInt converts a bool to 1 (true) or 0 (false).
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
