package bias

import (
	"math"
	"time"

	"github.com/quantguard/backtest-validator/pkg/types"
)

// Timestamp-alignment helpers. The feature matrix, label series and
// bar store carry their own indexes; tests align them by timestamp
// rather than assuming shared row numbering.

func indexByTime(ts []time.Time) map[int64]int {
	idx := make(map[int64]int, len(ts))
	for i, t := range ts {
		idx[t.UnixNano()] = i
	}
	return idx
}

// alignToBars maps each timestamp onto its bar index, -1 when the bar
// store has no bar at that timestamp.
func alignToBars(bars types.BarStore, ts []time.Time) []int {
	barIdx := indexByTime(bars.Timestamps())
	out := make([]int, len(ts))
	for i, t := range ts {
		if bi, ok := barIdx[t.UnixNano()]; ok {
			out[i] = bi
		} else {
			out[i] = -1
		}
	}
	return out
}

// alignSeries re-indexes (srcTs, srcVals) onto targetTs, with NaN
// where the source has no observation.
func alignSeries(targetTs, srcTs []time.Time, srcVals []float64) []float64 {
	srcIdx := indexByTime(srcTs)
	out := make([]float64, len(targetTs))
	for i, t := range targetTs {
		if si, ok := srcIdx[t.UnixNano()]; ok {
			out[i] = srcVals[si]
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// overlapFraction returns the fraction of a's timestamps present in b.
func overlapFraction(a, b []time.Time) float64 {
	if len(a) == 0 {
		return 0
	}
	bIdx := indexByTime(b)
	matched := 0
	for _, t := range a {
		if _, ok := bIdx[t.UnixNano()]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(a))
}

func strictlyIncreasing(ts []time.Time) (bool, int) {
	for i := 1; i < len(ts); i++ {
		if !ts[i].After(ts[i-1]) {
			return false, i
		}
	}
	return true, -1
}
