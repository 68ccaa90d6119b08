package driven

import (
	"context"

	"github.com/custodia-labs/receiptsync/internal/core/domain"
)

// Notifier delivers a change report to humans.
type Notifier interface {
	// Notify sends the report. Implementations should not send empty reports.
	Notify(ctx context.Context, report domain.Report) error
}
