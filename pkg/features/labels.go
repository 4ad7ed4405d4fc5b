package features

import (
	"math"
	"time"

	"github.com/quantguard/backtest-validator/pkg/types"
)

// LabelSeries maps timestamps to model targets. Labels are derived
// from future bars by construction; this is the one place forward
// information is legitimate, and it must never feed back into the
// feature matrix.
type LabelSeries struct {
	timestamps []time.Time
	values     []float64
}

// LabelFunc derives the label for bar index i from the full bar store.
// Returning ok=false leaves the label undefined (NaN).
type LabelFunc func(bars types.BarStore, i int) (value float64, ok bool)

// BuildLabels evaluates fn across the bar index.
func BuildLabels(bars types.BarStore, fn LabelFunc) *LabelSeries {
	values := make([]float64, len(bars))
	for i := range bars {
		if v, ok := fn(bars, i); ok {
			values[i] = v
		} else {
			values[i] = math.NaN()
		}
	}
	return &LabelSeries{timestamps: bars.Timestamps(), values: values}
}

// Len returns the number of rows.
func (l *LabelSeries) Len() int {
	return len(l.values)
}

// Value returns the label at row i, NaN when undefined.
func (l *LabelSeries) Value(i int) float64 {
	if i < 0 || i >= len(l.values) {
		return math.NaN()
	}
	return l.values[i]
}

// Timestamp returns the timestamp of row i.
func (l *LabelSeries) Timestamp(i int) time.Time {
	return l.timestamps[i]
}

// Timestamps returns the timestamp index. Treat as read-only.
func (l *LabelSeries) Timestamps() []time.Time {
	return l.timestamps
}

// Values returns the raw label series. Treat as read-only.
func (l *LabelSeries) Values() []float64 {
	return l.values
}

// AlignTo re-indexes the series onto the given timestamp index, NaN
// where the series has no observation at a timestamp.
func (l *LabelSeries) AlignTo(timestamps []time.Time) *LabelSeries {
	srcIdx := make(map[int64]int, len(l.timestamps))
	for i, t := range l.timestamps {
		srcIdx[t.UnixNano()] = i
	}

	ts := make([]time.Time, len(timestamps))
	copy(ts, timestamps)
	values := make([]float64, len(timestamps))
	for i, t := range timestamps {
		if si, ok := srcIdx[t.UnixNano()]; ok {
			values[i] = l.values[si]
		} else {
			values[i] = math.NaN()
		}
	}
	return &LabelSeries{timestamps: ts, values: values}
}

// BinaryUpMove labels 1 when the close `horizon` bars ahead exceeds
// the current close by at least threshold, else 0. The trailing
// horizon rows are undefined.
func BinaryUpMove(horizon int, threshold float64) LabelFunc {
	return func(bars types.BarStore, i int) (float64, bool) {
		if i+horizon >= len(bars) || bars[i].Close <= 0 {
			return 0, false
		}
		forward := (bars[i+horizon].Close - bars[i].Close) / bars[i].Close
		if forward >= threshold {
			return 1, true
		}
		return 0, true
	}
}

// ForwardReturn labels the continuous forward return `horizon` bars
// ahead.
func ForwardReturn(horizon int) LabelFunc {
	return func(bars types.BarStore, i int) (float64, bool) {
		if i+horizon >= len(bars) || bars[i].Close <= 0 {
			return 0, false
		}
		return (bars[i+horizon].Close - bars[i].Close) / bars[i].Close, true
	}
}
