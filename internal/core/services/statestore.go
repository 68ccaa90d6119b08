package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/receiptsync/internal/core/domain"
	"github.com/custodia-labs/receiptsync/internal/core/ports/driven"
)

// LoadState reads the period's state blob.
//
// A missing blob yields an empty store and no error (first run).
// A blob that cannot be parsed yields an empty store together with an
// error wrapping domain.ErrCorruptState, so callers can warn and continue.
// Any other read failure is returned as is with a nil store.
func LoadState(ctx context.Context, backend driven.StorageBackend, period domain.Period) (*domain.StateStore, error) {
	data, err := backend.ReadBlob(ctx, period, domain.StateBlobName)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewStateStore(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}

	store, err := domain.DecodeStateStore(data)
	if err != nil {
		return domain.NewStateStore(), err
	}
	return store, nil
}

// SaveState writes the full mapping back, replacing the previous blob.
func SaveState(ctx context.Context, backend driven.StorageBackend, period domain.Period, store *domain.StateStore) error {
	data, err := store.Encode()
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStateSaveFailed, err)
	}
	if err := backend.WriteBlob(ctx, period, domain.StateBlobName, data); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStateSaveFailed, err)
	}
	return nil
}
