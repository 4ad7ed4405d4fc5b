package types

import (
	"sort"
	"time"
)

// OHLCV is a single bar of market data.
type OHLCV struct {
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	Timestamp time.Time
}

// IsCoherent reports whether the bar satisfies the OHLC relational
// invariants: low <= open,close <= high and body no larger than range.
func (b OHLCV) IsCoherent() bool {
	if b.Low > b.Open || b.Low > b.Close {
		return false
	}
	if b.High < b.Open || b.High < b.Close {
		return false
	}
	body := b.Close - b.Open
	if body < 0 {
		body = -body
	}
	return (b.High - b.Low) >= body
}

// Return computes the simple return from the previous bar's close.
// Returns 0 when the previous close is not positive.
func (b OHLCV) Return(prev OHLCV) float64 {
	if prev.Close <= 0 {
		return 0
	}
	return (b.Close - prev.Close) / prev.Close
}

// BarStore is an ordered, timestamp-unique sequence of bars. Pipeline
// stages treat it as immutable and return a new store instead of
// mutating in place.
type BarStore []OHLCV

// SortAndDedup returns a new store sorted ascending by timestamp with
// duplicate timestamps collapsed to the first occurrence.
func (s BarStore) SortAndDedup() BarStore {
	if len(s) == 0 {
		return BarStore{}
	}

	out := make(BarStore, len(s))
	copy(out, s)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})

	deduped := out[:1]
	for _, bar := range out[1:] {
		if bar.Timestamp.Equal(deduped[len(deduped)-1].Timestamp) {
			continue
		}
		deduped = append(deduped, bar)
	}
	return deduped
}

// IsStrictlyIncreasing reports whether timestamps strictly increase.
func (s BarStore) IsStrictlyIncreasing() bool {
	for i := 1; i < len(s); i++ {
		if !s[i].Timestamp.After(s[i-1].Timestamp) {
			return false
		}
	}
	return true
}

// Timestamps returns the timestamp index of the store.
func (s BarStore) Timestamps() []time.Time {
	ts := make([]time.Time, len(s))
	for i, bar := range s {
		ts[i] = bar.Timestamp
	}
	return ts
}

// Closes returns the close-price series of the store.
func (s BarStore) Closes() []float64 {
	closes := make([]float64, len(s))
	for i, bar := range s {
		closes[i] = bar.Close
	}
	return closes
}

// Returns computes the bar-to-bar simple return series. The result has
// len(s)-1 entries; entry i is the return from bar i to bar i+1.
func (s BarStore) Returns() []float64 {
	if len(s) < 2 {
		return nil
	}
	rets := make([]float64, len(s)-1)
	for i := 1; i < len(s); i++ {
		rets[i-1] = s[i].Return(s[i-1])
	}
	return rets
}

// UpTo returns the prefix of the store with timestamps <= cutoff. The
// returned slice aliases the store and must be treated as read-only.
func (s BarStore) UpTo(cutoff time.Time) BarStore {
	n := sort.Search(len(s), func(i int) bool {
		return s[i].Timestamp.After(cutoff)
	})
	return s[:n]
}
