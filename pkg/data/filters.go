package data

import (
	"fmt"
	"time"

	"github.com/quantguard/backtest-validator/pkg/types"
)

// DefaultBarFilter implements BarFilter for common filtering operations.
type DefaultBarFilter struct{}

// NewDefaultBarFilter creates a new default bar filter.
func NewDefaultBarFilter() *DefaultBarFilter {
	return &DefaultBarFilter{}
}

// FilterByPeriod keeps the trailing period of data, anchored at the
// latest timestamp in the store.
func (f *DefaultBarFilter) FilterByPeriod(bars types.BarStore, period time.Duration) types.BarStore {
	if period <= 0 || len(bars) == 0 {
		return bars
	}

	cutoff := bars[len(bars)-1].Timestamp.Add(-period)
	startIdx := 0
	for i, bar := range bars {
		if !bar.Timestamp.Before(cutoff) {
			startIdx = i
			break
		}
	}
	return bars[startIdx:]
}

// FilterByDateRange keeps data within [start, end] inclusive.
func (f *DefaultBarFilter) FilterByDateRange(bars types.BarStore, start, end time.Time) types.BarStore {
	if len(bars) == 0 {
		return bars
	}

	var filtered types.BarStore
	for _, bar := range bars {
		if !bar.Timestamp.Before(start) && !bar.Timestamp.After(end) {
			filtered = append(filtered, bar)
		}
	}
	return filtered
}

// ValidateTimeSequence ensures data is in strict chronological order
// with no duplicate timestamps.
func (f *DefaultBarFilter) ValidateTimeSequence(bars types.BarStore) error {
	for i := 1; i < len(bars); i++ {
		if bars[i].Timestamp.Before(bars[i-1].Timestamp) {
			return fmt.Errorf("data not in chronological order at index %d: %s comes after %s",
				i, bars[i].Timestamp.Format(time.RFC3339), bars[i-1].Timestamp.Format(time.RFC3339))
		}
		if bars[i].Timestamp.Equal(bars[i-1].Timestamp) {
			return fmt.Errorf("duplicate timestamp at index %d: %s",
				i, bars[i].Timestamp.Format(time.RFC3339))
		}
	}
	return nil
}
