package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDecide(t *testing.T) {
	created := time.Date(2025, time.June, 3, 9, 0, 0, 0, time.UTC)
	rec := AttachmentRecord{ID: "a", Size: 10, CreatedAt: created}

	assert.Equal(t, DecisionNew, Decide(StateEntry{}, false, rec))
	assert.Equal(t, DecisionUnchanged, Decide(StateEntry{FileSize: 10, CreatedAt: created}, true, rec))
	assert.Equal(t, DecisionChanged, Decide(StateEntry{FileSize: 9, CreatedAt: created}, true, rec))
	assert.Equal(t, DecisionChanged, Decide(StateEntry{FileSize: 10, CreatedAt: created.Add(time.Minute)}, true, rec))
}

func TestDecision_String(t *testing.T) {
	assert.Equal(t, "new", DecisionNew.String())
	assert.Equal(t, "changed", DecisionChanged.String())
	assert.Equal(t, "unchanged", DecisionUnchanged.String())
	assert.Equal(t, "decision(9)", Decision(9).String())
}

func TestOutcome_Failed(t *testing.T) {
	assert.False(t, OutcomeSkipped.Failed())
	assert.False(t, OutcomePlanned.Failed())
	assert.False(t, OutcomeWritten.Failed())
	assert.True(t, OutcomeFetchFailed.Failed())
	assert.True(t, OutcomeWriteFailed.Failed())
	assert.Equal(t, "write-failed", OutcomeWriteFailed.String())
}

func TestSyncResult_CountsAndChanges(t *testing.T) {
	r := &SyncResult{}
	r.Add(SyncItem{Record: AttachmentRecord{ID: "1"}, Decision: DecisionNew, Outcome: OutcomeWritten})
	r.Add(SyncItem{Record: AttachmentRecord{ID: "2"}, Decision: DecisionUnchanged, Outcome: OutcomeSkipped})
	r.Add(SyncItem{Record: AttachmentRecord{ID: "3"}, Decision: DecisionChanged, Outcome: OutcomeWritten})
	r.Add(SyncItem{Record: AttachmentRecord{ID: "4"}, Decision: DecisionNew, Outcome: OutcomeFetchFailed, Err: errors.New("boom")})
	r.Add(SyncItem{Record: AttachmentRecord{ID: "5"}, Decision: DecisionNew, Outcome: OutcomePlanned})

	assert.Equal(t, SyncCounts{New: 2, Changed: 1, Unchanged: 1, Failed: 1}, r.Counts())
	assert.Equal(t, 5, r.Counts().Total())

	var changed []string
	for _, item := range r.Changes {
		changed = append(changed, item.Record.ID)
	}
	assert.Equal(t, []string{"1", "3"}, changed)

	var pending []string
	for _, item := range r.Pending() {
		pending = append(pending, item.Record.ID)
	}
	assert.Equal(t, []string{"1", "3", "4", "5"}, pending)

	assert.Len(t, r.Failures(), 1)
	assert.Equal(t, "4", r.Failures()[0].Record.ID)
}

func TestSyncResult_Warn(t *testing.T) {
	r := &SyncResult{}
	r.Warn("state for %s is corrupt", "2025-06")

	assert.Equal(t, []string{"state for 2025-06 is corrupt"}, r.Warnings)
}

func TestSyncCounts_String(t *testing.T) {
	c := SyncCounts{New: 1, Changed: 2, Unchanged: 3, Failed: 4}
	assert.Equal(t, "new: 1, changed: 2, unchanged: 3, failed: 4", c.String())
}

func TestNewRunRecord(t *testing.T) {
	start := time.Date(2025, time.July, 1, 6, 0, 0, 0, time.UTC)
	r := &SyncResult{
		Period:     Period{Year: 2025, Month: time.June},
		StartedAt:  start,
		FinishedAt: start.Add(3 * time.Second),
	}
	r.Add(SyncItem{Decision: DecisionNew, Outcome: OutcomeWritten})
	r.Warn("x")

	rec := NewRunRecord("run-1", r, nil)
	assert.Equal(t, RunCompleted, rec.Status)
	assert.Equal(t, 1, rec.Counts.New)
	assert.Equal(t, 1, rec.Warnings)
	assert.Equal(t, 3*time.Second, rec.Duration())

	aborted := NewRunRecord("run-2", r, ErrSourceUnavailable)
	assert.Equal(t, RunAborted, aborted.Status)
	assert.Equal(t, "attachment source unavailable", aborted.Error)
}
