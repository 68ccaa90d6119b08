package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/receiptsync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/receiptsync/internal/core/domain"
)

func TestHistoryService_Recent(t *testing.T) {
	runs := memory.NewRunStore()
	ctx := context.Background()
	base := time.Date(2025, time.July, 1, 6, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, runs.Record(ctx, domain.RunRecord{
			ID:        string(rune('a' + i)),
			Period:    testPeriod,
			StartedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	svc := NewHistoryService(runs)
	recent, err := svc.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "c", recent[0].ID)
	assert.Equal(t, "b", recent[1].ID)
}

func TestHistoryService_NoStore(t *testing.T) {
	recent, err := NewHistoryService(nil).Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestHistoryService_NegativeLimit(t *testing.T) {
	_, err := NewHistoryService(memory.NewRunStore()).Recent(context.Background(), -1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
