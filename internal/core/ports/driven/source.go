package driven

import (
	"context"

	"github.com/custodia-labs/receiptsync/internal/core/domain"
)

// AttachmentSource lists transaction attachments from a banking provider.
type AttachmentSource interface {
	// Validate checks credentials and connectivity with a lightweight call.
	// Returns nil if ready to enumerate.
	Validate(ctx context.Context) error

	// Attachments enumerates every attachment of the period, following
	// pagination until the provider signals completion.
	// Records are sent in provider order. Both channels are closed when
	// enumeration ends; at most one error is sent. The enumeration cannot
	// be restarted: call again to re-enumerate.
	Attachments(ctx context.Context, period domain.Period) (<-chan domain.AttachmentRecord, <-chan error)

	// Fetch downloads the body of one attachment.
	Fetch(ctx context.Context, record domain.AttachmentRecord) ([]byte, error)
}
