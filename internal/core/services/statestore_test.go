package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/receiptsync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/receiptsync/internal/core/domain"
)

func TestLoadState_Absent(t *testing.T) {
	store, err := LoadState(context.Background(), memory.NewBackend(), testPeriod)
	require.NoError(t, err)
	assert.Equal(t, 0, store.Len())
}

func TestLoadState_Corrupt(t *testing.T) {
	backend := memory.NewBackend()
	backend.Put(testPeriod, domain.StateBlobName, []byte("[]"))

	store, err := LoadState(context.Background(), backend, testPeriod)
	assert.ErrorIs(t, err, domain.ErrCorruptState)
	require.NotNil(t, store, "corrupt state still yields an empty store")
	assert.Equal(t, 0, store.Len())
}

func TestLoadState_ReadError(t *testing.T) {
	backend := memory.NewBackend()
	backend.FailReads(errors.New("io error"))

	store, err := LoadState(context.Background(), backend, testPeriod)
	assert.Nil(t, store)
	assert.ErrorContains(t, err, "io error")
	assert.NotErrorIs(t, err, domain.ErrCorruptState)
}

func TestSaveState_RoundTrip(t *testing.T) {
	backend := memory.NewBackend()
	store := domain.NewStateStore()
	store.Upsert("1", domain.StateEntry{FileSize: 100, CreatedAt: t1, FileName: "a.pdf"})

	require.NoError(t, SaveState(context.Background(), backend, testPeriod, store))

	loaded, err := LoadState(context.Background(), backend, testPeriod)
	require.NoError(t, err)
	assert.Equal(t, store.Entries(), loaded.Entries())
}

func TestSaveState_WriteError(t *testing.T) {
	backend := memory.NewBackend()
	backend.FailBlobWrites(errors.New("read-only"))

	err := SaveState(context.Background(), backend, testPeriod, domain.NewStateStore())
	assert.ErrorIs(t, err, domain.ErrStateSaveFailed)
}
