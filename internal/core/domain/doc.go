// Package domain defines the core business entities for receiptsync.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Period: The calendar month a run synchronises
//   - AttachmentRecord: One provider attachment and its owning transaction
//   - StateStore: What has already been downloaded for a period
//   - SyncResult: Per-attachment decisions and outcomes of a run
//   - RunRecord: The persisted summary of a run
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
