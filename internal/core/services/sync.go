package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/receiptsync/internal/core/domain"
	"github.com/custodia-labs/receiptsync/internal/core/ports/driven"
	"github.com/custodia-labs/receiptsync/internal/core/ports/driving"
	"github.com/custodia-labs/receiptsync/internal/logger"
)

// Ensure SyncEngine implements the interface.
var _ driving.SyncService = (*SyncEngine)(nil)

// DefaultRunRetention is the number of runs kept in history.
const DefaultRunRetention = 200

// SyncEngine synchronises a period of attachments from a source into a
// storage backend, tracking what was already downloaded in a per-period
// state blob.
type SyncEngine struct {
	source  driven.AttachmentSource
	backend driven.StorageBackend
	runs    driven.RunStore

	retention int
	now       func() time.Time
	newID     func() string

	// Status tracking
	mu          sync.RWMutex
	activeSyncs map[domain.Period]*driving.SyncStatus
}

// NewSyncEngine creates a sync engine.
// The run store is optional - if nil, runs are not recorded.
func NewSyncEngine(source driven.AttachmentSource, backend driven.StorageBackend, runs driven.RunStore) *SyncEngine {
	return &SyncEngine{
		source:      source,
		backend:     backend,
		runs:        runs,
		retention:   DefaultRunRetention,
		now:         time.Now,
		newID:       func() string { return uuid.New().String() },
		activeSyncs: make(map[domain.Period]*driving.SyncStatus),
	}
}

// SetRetention sets how many runs are kept in history. Zero disables pruning.
func (e *SyncEngine) SetRetention(keep int) {
	e.retention = keep
}

// runState is the mutable bookkeeping of one run.
type runState struct {
	period domain.Period
	opts   driving.SyncOptions
	store  *domain.StateStore
	names  *domain.NameRegistry
	seen   map[string]domain.StateEntry
	dirty  bool
	result *domain.SyncResult
}

// Sync runs a full synchronisation for the period.
//
// Source validation or state loading failures abort the run before
// anything is enumerated and return a nil result. Once enumeration has
// started, the result is always returned, possibly together with an error
// when the source failed mid-way or the context was cancelled.
func (e *SyncEngine) Sync(ctx context.Context, period domain.Period, opts driving.SyncOptions) (*domain.SyncResult, error) {
	if e.source == nil || e.backend == nil {
		return nil, fmt.Errorf("%w: sync engine requires a source and a backend", domain.ErrInvalidInput)
	}
	if err := e.begin(period); err != nil {
		return nil, err
	}
	defer e.clearStatus(period)

	result := &domain.SyncResult{Period: period, DryRun: opts.DryRun, StartedAt: e.now()}
	logger.Section("Sync " + period.String())

	// 1. Validate source (credentials, connectivity)
	if err := e.source.Validate(ctx); err != nil {
		err = fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, err)
		e.finish(ctx, result, err)
		return nil, err
	}

	// 2. Load state
	store, err := LoadState(ctx, e.backend, period)
	switch {
	case errors.Is(err, domain.ErrCorruptState):
		logger.Warn("State for %s is corrupt, treating as first run: %v", period, err)
		result.Warn("state for %s could not be parsed, all attachments treated as new: %v", period, err)
	case err != nil:
		err = fmt.Errorf("load state for %s: %w", period, err)
		e.finish(ctx, result, err)
		return nil, err
	}
	logger.Debug("Loaded %d state entries from %s", store.Len(), DescribeBackend(e.backend))

	rs := &runState{
		period: period,
		opts:   opts,
		store:  store,
		names:  domain.NewNameRegistry(store),
		seen:   make(map[string]domain.StateEntry),
		result: result,
	}

	// 3-4. Enumerate, decide, fetch and write
	runErr := e.processAttachments(ctx, rs)

	// 5. Final save, only needed when an incremental save failed
	if rs.dirty && !opts.DryRun {
		if err := SaveState(context.WithoutCancel(ctx), e.backend, period, store); err != nil {
			logger.Warn("Final state save failed: %v", err)
			result.Warn("state for %s could not be saved, written files may be downloaded again: %v", period, err)
		}
	}

	// 6. Record the run
	e.finish(ctx, result, runErr)

	counts := result.Counts()
	logger.Info("Sync complete for %s: %s", period, counts)
	return result, runErr
}

// Status returns progress for a period.
func (e *SyncEngine) Status(_ context.Context, period domain.Period) (*driving.SyncStatus, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if status, ok := e.activeSyncs[period]; ok {
		// Return a copy to avoid race conditions
		cp := *status
		return &cp, nil
	}

	// Not running - return idle status
	return &driving.SyncStatus{
		Period:  period,
		Running: false,
	}, nil
}

// processAttachments consumes the source enumeration once, in order.
func (e *SyncEngine) processAttachments(ctx context.Context, rs *runState) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel() // releases the producer if we stop early

	recordsCh, errsCh := e.source.Attachments(ctx, rs.period)

	for recordsCh != nil || errsCh != nil {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("sync %s interrupted: %w", rs.period, err)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("sync %s interrupted: %w", rs.period, ctx.Err())

		case err, ok := <-errsCh:
			if !ok {
				errsCh = nil
				continue
			}
			if err != nil {
				logger.Warn("Enumeration stopped after %d attachments: %v", len(rs.result.Items), err)
				return fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, err)
			}

		case record, ok := <-recordsCh:
			if !ok {
				recordsCh = nil
				continue
			}

			item := e.processOne(ctx, rs, record)
			rs.result.Add(item)
			e.updateStatus(rs.period, item)

			if item.Outcome == domain.OutcomeWritten {
				// Incremental save so a crash keeps what was written
				if err := SaveState(ctx, e.backend, rs.period, rs.store); err != nil {
					rs.dirty = true
					logger.Warn("State save after %s failed: %v", record.ID, err)
				} else {
					rs.dirty = false
				}
			}
		}
	}

	return nil
}

// processOne decides and, when needed, downloads and writes one attachment.
// The state entry is only touched after a successful write.
func (e *SyncEngine) processOne(ctx context.Context, rs *runState, record domain.AttachmentRecord) domain.SyncItem {
	entry, found := rs.seen[record.ID]
	if !found {
		entry, found = rs.store.Get(record.ID)
	}

	item := domain.SyncItem{
		Record:   record,
		Decision: domain.Decide(entry, found, record),
	}
	if item.Decision == domain.DecisionUnchanged {
		item.Outcome = domain.OutcomeSkipped
		logger.Debug("Unchanged: %s", record.ID)
		return item
	}

	item.FileName = rs.names.Resolve(record.ID, record.DisplayName())

	if rs.opts.DryRun {
		item.Outcome = domain.OutcomePlanned
		rs.seen[record.ID] = domain.NewStateEntry(record, item.FileName)
		logger.Debug("Would download (%s): %s -> %s", item.Decision, record.ID, item.FileName)
		return item
	}

	if item.Decision == domain.DecisionNew && logger.IsVerbose() {
		if exists, err := e.backend.FileExists(ctx, rs.period, item.FileName); err == nil && exists {
			logger.Debug("%s already exists without a state entry, overwriting", item.FileName)
		}
	}

	body, err := e.source.Fetch(ctx, record)
	if err != nil {
		item.Outcome = domain.OutcomeFetchFailed
		item.Err = fmt.Errorf("%w: %s: %w", domain.ErrFetchFailed, record.ID, err)
		logger.Debug("Failed to fetch %s: %v", record.ID, err)
		return item
	}
	if int64(len(body)) != record.Size {
		logger.Debug("Size mismatch for %s: listed %d, fetched %d", record.ID, record.Size, len(body))
	}

	if err := e.backend.WriteFile(ctx, rs.period, item.FileName, body); err != nil {
		item.Outcome = domain.OutcomeWriteFailed
		item.Err = fmt.Errorf("%w: %s: %w", domain.ErrWriteFailed, item.FileName, err)
		logger.Debug("Failed to write %s: %v", item.FileName, err)
		return item
	}

	newEntry := domain.NewStateEntry(record, item.FileName)
	rs.store.Upsert(record.ID, newEntry)
	rs.seen[record.ID] = newEntry
	item.Outcome = domain.OutcomeWritten
	logger.Debug("Wrote (%s): %s", item.Decision, item.FileName)
	return item
}

// finish stamps the result and records the run in history.
func (e *SyncEngine) finish(ctx context.Context, result *domain.SyncResult, runErr error) {
	result.FinishedAt = e.now()
	if e.runs == nil {
		return
	}

	ctx = context.WithoutCancel(ctx)
	run := domain.NewRunRecord(e.newID(), result, runErr)
	if err := e.runs.Record(ctx, run); err != nil {
		logger.Warn("Failed to record run: %v", err)
		result.Warn("run history could not be recorded: %v", err)
		return
	}
	if e.retention > 0 {
		if err := e.runs.Prune(ctx, e.retention); err != nil {
			logger.Debug("Failed to prune run history: %v", err)
		}
	}
}

// DescribeBackend names a backend's location for users.
func DescribeBackend(backend driven.StorageBackend) string {
	if d, ok := backend.(driven.Describer); ok {
		return d.Describe()
	}
	return fmt.Sprintf("%T", backend)
}

// begin registers a running sync for the period.
func (e *SyncEngine) begin(period domain.Period) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, running := e.activeSyncs[period]; running {
		return fmt.Errorf("%w: %s", domain.ErrSyncInProgress, period)
	}
	e.activeSyncs[period] = &driving.SyncStatus{Period: period, Running: true}
	return nil
}

// updateStatus counts a processed attachment.
func (e *SyncEngine) updateStatus(period domain.Period, item domain.SyncItem) {
	e.mu.Lock()
	defer e.mu.Unlock()
	status, ok := e.activeSyncs[period]
	if !ok {
		return
	}
	status.Processed++
	if item.Outcome.Failed() {
		status.Failed++
	}
}

// clearStatus removes the sync status for a period.
func (e *SyncEngine) clearStatus(period domain.Period) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.activeSyncs, period)
}
