package domain

import (
	"fmt"
	"time"
)

// Decision is the per-attachment verdict of the diff against the state.
type Decision int

const (
	// DecisionNew means no state entry exists for the attachment.
	DecisionNew Decision = iota

	// DecisionChanged means the stored size or creation timestamp differs.
	DecisionChanged

	// DecisionUnchanged means the stored version matches.
	DecisionUnchanged
)

// String implements fmt.Stringer.
func (d Decision) String() string {
	switch d {
	case DecisionNew:
		return "new"
	case DecisionChanged:
		return "changed"
	case DecisionUnchanged:
		return "unchanged"
	default:
		return fmt.Sprintf("decision(%d)", int(d))
	}
}

// Decide compares a record with its state entry, if any.
func Decide(entry StateEntry, found bool, record AttachmentRecord) Decision {
	switch {
	case !found:
		return DecisionNew
	case !entry.Matches(record):
		return DecisionChanged
	default:
		return DecisionUnchanged
	}
}

// Outcome is what happened to an attachment during a run.
type Outcome int

const (
	// OutcomeSkipped means the attachment was unchanged and left alone.
	OutcomeSkipped Outcome = iota

	// OutcomePlanned means a dry run would have downloaded the attachment.
	OutcomePlanned

	// OutcomeWritten means the attachment was fetched and written.
	OutcomeWritten

	// OutcomeFetchFailed means the body could not be downloaded.
	OutcomeFetchFailed

	// OutcomeWriteFailed means the backend rejected the write.
	OutcomeWriteFailed
)

// String implements fmt.Stringer.
func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomePlanned:
		return "planned"
	case OutcomeWritten:
		return "written"
	case OutcomeFetchFailed:
		return "fetch-failed"
	case OutcomeWriteFailed:
		return "write-failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Failed reports whether the outcome is a per-record failure.
func (o Outcome) Failed() bool {
	return o == OutcomeFetchFailed || o == OutcomeWriteFailed
}

// SyncItem is the decision and outcome for one enumerated attachment.
type SyncItem struct {
	Record   AttachmentRecord
	Decision Decision
	Outcome  Outcome

	// FileName is the resolved display name (empty when skipped).
	FileName string

	// Err is set for failed outcomes.
	Err error
}

// SyncCounts is the user-visible summary of a run.
type SyncCounts struct {
	New       int
	Changed   int
	Unchanged int
	Failed    int
}

// Total returns the number of attachments accounted for.
func (c SyncCounts) Total() int {
	return c.New + c.Changed + c.Unchanged + c.Failed
}

// String implements fmt.Stringer.
func (c SyncCounts) String() string {
	return fmt.Sprintf("new: %d, changed: %d, unchanged: %d, failed: %d",
		c.New, c.Changed, c.Unchanged, c.Failed)
}

// SyncResult is the outcome of one run for one period.
type SyncResult struct {
	Period Period
	DryRun bool

	// Items holds every enumerated attachment in source order.
	Items []SyncItem

	// Changes holds the New and Changed items that were written successfully,
	// in source order. It is the sole input of the change reporter.
	Changes []SyncItem

	// Warnings are run-level problems that did not abort the run.
	Warnings []string

	StartedAt  time.Time
	FinishedAt time.Time
}

// Add appends an item, tracking it as a change when it was written.
func (r *SyncResult) Add(item SyncItem) {
	r.Items = append(r.Items, item)
	if item.Outcome == OutcomeWritten && item.Decision != DecisionUnchanged {
		r.Changes = append(r.Changes, item)
	}
}

// Warn records a run-level warning.
func (r *SyncResult) Warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Counts tallies decisions. Failed items are counted only as failed.
func (r *SyncResult) Counts() SyncCounts {
	var c SyncCounts
	for _, item := range r.Items {
		if item.Outcome.Failed() {
			c.Failed++
			continue
		}
		switch item.Decision {
		case DecisionNew:
			c.New++
		case DecisionChanged:
			c.Changed++
		case DecisionUnchanged:
			c.Unchanged++
		}
	}
	return c
}

// Pending returns New and Changed items regardless of outcome.
// In a dry run these are the downloads the next real run would perform.
func (r *SyncResult) Pending() []SyncItem {
	var out []SyncItem
	for _, item := range r.Items {
		if item.Decision != DecisionUnchanged {
			out = append(out, item)
		}
	}
	return out
}

// Failures returns the items whose fetch or write failed.
func (r *SyncResult) Failures() []SyncItem {
	var out []SyncItem
	for _, item := range r.Items {
		if item.Outcome.Failed() {
			out = append(out, item)
		}
	}
	return out
}
