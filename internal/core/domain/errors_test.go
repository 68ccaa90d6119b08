package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrInvalidPeriod", ErrInvalidPeriod},
		{"ErrSyncInProgress", ErrSyncInProgress},
		{"ErrSourceUnavailable", ErrSourceUnavailable},
		{"ErrCorruptState", ErrCorruptState},
		{"ErrFetchFailed", ErrFetchFailed},
		{"ErrWriteFailed", ErrWriteFailed},
		{"ErrStateSaveFailed", ErrStateSaveFailed},
		{"ErrCredentialsMissing", ErrCredentialsMissing},
		{"ErrBackendNotConfigured", ErrBackendNotConfigured},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrNotFound(t *testing.T) {
	assert.Equal(t, "not found", ErrNotFound.Error())
	assert.True(t, errors.Is(ErrNotFound, ErrNotFound))
	assert.False(t, errors.Is(ErrNotFound, ErrInvalidInput))
}

// TestErrors_Unique tests that sentinel errors are distinct
func TestErrors_Unique(t *testing.T) {
	errs := []error{
		ErrNotFound, ErrInvalidInput, ErrInvalidPeriod, ErrSyncInProgress,
		ErrSourceUnavailable, ErrCorruptState, ErrFetchFailed, ErrWriteFailed,
		ErrStateSaveFailed, ErrCredentialsMissing, ErrBackendNotConfigured,
	}

	for i, a := range errs {
		for j, b := range errs {
			if i == j {
				continue
			}
			assert.False(t, errors.Is(a, b), "%v should not match %v", a, b)
		}
	}
}

// TestErrors_Wrapping tests that wrapped errors can be unwrapped
func TestErrors_Wrapping(t *testing.T) {
	wrapped := fmt.Errorf("fetch inv-1: %w", ErrFetchFailed)

	assert.True(t, errors.Is(wrapped, ErrFetchFailed))
	assert.False(t, errors.Is(wrapped, ErrWriteFailed))
	assert.Contains(t, wrapped.Error(), "fetch failed")
}
