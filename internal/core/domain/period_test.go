package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPeriod(t *testing.T) {
	tests := []struct {
		name    string
		year    int
		month   int
		wantErr bool
	}{
		{"valid", 2025, 6, false},
		{"january", 2024, 1, false},
		{"december", 2024, 12, false},
		{"month zero", 2025, 0, true},
		{"month thirteen", 2025, 13, true},
		{"year too small", 1999, 5, true},
		{"year too large", 10000, 5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPeriod(tt.year, tt.month)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPeriod)
				assert.True(t, p.IsZero())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.year, p.Year)
			assert.Equal(t, time.Month(tt.month), p.Month)
		})
	}
}

func TestPeriod_FolderName(t *testing.T) {
	assert.Equal(t, "2025-06", Period{Year: 2025, Month: time.June}.FolderName())
	assert.Equal(t, "2024-12", Period{Year: 2024, Month: time.December}.FolderName())
	assert.Equal(t, "2025-06", Period{Year: 2025, Month: time.June}.String())
}

func TestPreviousMonth(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want Period
	}{
		{"mid year", time.Date(2025, time.July, 15, 10, 0, 0, 0, time.UTC), Period{2025, time.June}},
		{"first of month", time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), Period{2025, time.February}},
		{"year boundary", time.Date(2025, time.January, 31, 23, 59, 0, 0, time.UTC), Period{2024, time.December}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PreviousMonth(tt.now))
		})
	}
}

func TestPeriod_Range(t *testing.T) {
	from, to := Period{Year: 2024, Month: time.February}.Range()

	assert.Equal(t, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2024, time.February, 29, 23, 59, 59, 999_000_000, time.UTC), to)
}

func TestPeriod_IsZero(t *testing.T) {
	assert.True(t, Period{}.IsZero())
	assert.False(t, Period{Year: 2025, Month: time.May}.IsZero())
}
