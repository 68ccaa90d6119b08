package driven

import (
	"context"

	"github.com/custodia-labs/receiptsync/internal/core/domain"
)

// StorageBackend provides access to one logical folder per period.
// Implementations store bytes only; they never interpret state content.
// The engine needs exactly these four operations; location details are
// exposed through the optional Describer and FolderLinker interfaces.
type StorageBackend interface {
	// ReadBlob reads a named blob from the period folder.
	// Returns domain.ErrNotFound if the blob does not exist.
	ReadBlob(ctx context.Context, period domain.Period, name string) ([]byte, error)

	// WriteBlob creates or replaces a named blob in the period folder.
	// The replacement is atomic where the backend supports it.
	WriteBlob(ctx context.Context, period domain.Period, name string, data []byte) error

	// WriteFile creates or replaces an attachment file in the period folder.
	WriteFile(ctx context.Context, period domain.Period, fileName string, data []byte) error

	// FileExists reports whether an attachment file exists in the period folder.
	// It is diagnostic only and never drives a sync decision.
	FileExists(ctx context.Context, period domain.Period, fileName string) (bool, error)
}

// Describer is implemented by backends that can name their location.
type Describer interface {
	// Describe returns a human-readable location, e.g. a directory or bucket URL.
	Describe() string
}

// FolderLinker is implemented by backends that can link to a period folder.
type FolderLinker interface {
	// FolderURL returns a browsable URL for the period folder, or "".
	FolderURL(ctx context.Context, period domain.Period) string
}
