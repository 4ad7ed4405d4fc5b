package features

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantguard/backtest-validator/pkg/types"
)

func TestBinaryUpMove(t *testing.T) {
	base := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	closes := []float64{100, 103, 101, 99, 104}
	bars := make(types.BarStore, len(closes))
	for i, c := range closes {
		bars[i] = types.OHLCV{Timestamp: base.Add(time.Duration(i) * time.Hour), Close: c}
	}

	labels := BuildLabels(bars, BinaryUpMove(1, 0.02))
	require.Equal(t, 5, labels.Len())

	assert.Equal(t, 1.0, labels.Value(0)) // 100 -> 103: +3%
	assert.Equal(t, 0.0, labels.Value(1)) // 103 -> 101
	assert.Equal(t, 0.0, labels.Value(2)) // 101 -> 99
	assert.Equal(t, 1.0, labels.Value(3)) // 99 -> 104: +5%

	// Trailing horizon rows are undefined.
	assert.True(t, math.IsNaN(labels.Value(4)))
}

func TestForwardReturn(t *testing.T) {
	base := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := types.BarStore{
		{Timestamp: base, Close: 100},
		{Timestamp: base.Add(time.Hour), Close: 100},
		{Timestamp: base.Add(2 * time.Hour), Close: 110},
	}

	labels := BuildLabels(bars, ForwardReturn(2))
	assert.InDelta(t, 0.10, labels.Value(0), 1e-12)
	assert.True(t, math.IsNaN(labels.Value(1)))
	assert.True(t, math.IsNaN(labels.Value(2)))
}

func TestLabelSeries_AlignTo(t *testing.T) {
	base := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make(types.BarStore, 6)
	for i := range bars {
		bars[i] = types.OHLCV{Timestamp: base.Add(time.Duration(i) * time.Hour), Close: 100 + float64(i)}
	}
	labels := BuildLabels(bars, func(_ types.BarStore, i int) (float64, bool) {
		return float64(i), true
	})

	// Target index skips the first two bars and adds an unknown
	// timestamp at the end.
	target := []time.Time{
		bars[2].Timestamp, bars[3].Timestamp, bars[5].Timestamp,
		base.Add(24 * time.Hour),
	}
	aligned := labels.AlignTo(target)

	require.Equal(t, 4, aligned.Len())
	assert.Equal(t, 2.0, aligned.Value(0))
	assert.Equal(t, 3.0, aligned.Value(1))
	assert.Equal(t, 5.0, aligned.Value(2))
	assert.True(t, math.IsNaN(aligned.Value(3)))
	assert.Equal(t, target[0], aligned.Timestamp(0))

	// The source series is untouched.
	assert.Equal(t, 6, labels.Len())
	assert.Equal(t, 0.0, labels.Value(0))
}

func TestLabelSeries_OutOfRange(t *testing.T) {
	bars := generateBars(5)
	labels := BuildLabels(bars, ForwardReturn(1))

	assert.True(t, math.IsNaN(labels.Value(-1)))
	assert.True(t, math.IsNaN(labels.Value(99)))
	assert.Len(t, labels.Values(), 5)
	assert.Len(t, labels.Timestamps(), 5)
}
