package domain

import (
	"fmt"
	"time"
)

// Period is the calendar month used as the unit of synchronisation
// and storage grouping.
type Period struct {
	Year  int
	Month time.Month
}

// NewPeriod validates and builds a period.
func NewPeriod(year, month int) (Period, error) {
	if month < 1 || month > 12 {
		return Period{}, fmt.Errorf("%w: month %d out of range 1-12", ErrInvalidPeriod, month)
	}
	if year < 2000 || year > 9999 {
		return Period{}, fmt.Errorf("%w: year %d out of range", ErrInvalidPeriod, year)
	}
	return Period{Year: year, Month: time.Month(month)}, nil
}

// PreviousMonth returns the calendar month before the one containing now.
func PreviousMonth(now time.Time) Period {
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	prev := firstOfMonth.AddDate(0, 0, -1)
	return Period{Year: prev.Year(), Month: prev.Month()}
}

// FolderName is the logical folder holding this period's files and state.
func (p Period) FolderName() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// String implements fmt.Stringer.
func (p Period) String() string {
	return p.FolderName()
}

// Range returns the first and last instants of the period in UTC,
// at millisecond precision as the provider expects.
func (p Period) Range() (from, to time.Time) {
	from = time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
	to = from.AddDate(0, 1, 0).Add(-time.Millisecond)
	return from, to
}

// IsZero reports whether the period is unset.
func (p Period) IsZero() bool {
	return p.Year == 0 && p.Month == 0
}
