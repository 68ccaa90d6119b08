package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidPeriod indicates a year/month pair that is not a valid period.
	ErrInvalidPeriod = errors.New("invalid period")

	// ErrSyncInProgress indicates a sync is already running for the period.
	ErrSyncInProgress = errors.New("sync in progress")

	// Sync Errors.

	// ErrSourceUnavailable indicates attachments could not be enumerated at all.
	// The run is aborted before any state is mutated.
	ErrSourceUnavailable = errors.New("attachment source unavailable")

	// ErrCorruptState indicates the state blob exists but cannot be parsed.
	// The run proceeds as a first run.
	ErrCorruptState = errors.New("corrupt state blob")

	// ErrFetchFailed indicates an attachment body could not be downloaded.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrWriteFailed indicates the storage backend rejected an attachment write.
	ErrWriteFailed = errors.New("write failed")

	// ErrStateSaveFailed indicates the state blob could not be persisted.
	// Already-written files may be downloaded again on the next run.
	ErrStateSaveFailed = errors.New("state save failed")

	// Configuration Errors.

	// ErrCredentialsMissing indicates provider credentials are not configured.
	ErrCredentialsMissing = errors.New("credentials missing")

	// ErrBackendNotConfigured indicates the selected storage backend lacks configuration.
	ErrBackendNotConfigured = errors.New("storage backend not configured")
)
