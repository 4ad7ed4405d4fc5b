package features

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantguard/backtest-validator/pkg/types"
)

// generateBars builds a bounded random walk with a fixed seed.
func generateBars(n int) types.BarStore {
	rng := rand.New(rand.NewSource(7))
	base := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)

	bars := make(types.BarStore, n)
	close := 100.0
	for i := range bars {
		open := close
		close = open * (1 + 0.005*(2*rng.Float64()-1))
		bars[i] = types.OHLCV{
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Open:      open,
			High:      math.Max(open, close) * 1.001,
			Low:       math.Min(open, close) * 0.999,
			Close:     close,
			Volume:    1000 + 500*rng.Float64(),
		}
	}
	return bars
}

func TestReferenceBuilder_Build(t *testing.T) {
	bars := generateBars(60)
	m, err := NewReferenceBuilder().Build(bars)
	require.NoError(t, err)

	assert.Equal(t, 60, m.Len())
	assert.Equal(t, []string{"ret_1", "ret_5", "sma_10", "sma_20", "ema_12", "rsi_14", "vol_20"}, m.Columns())

	meta, ok := m.Meta("sma_10")
	require.True(t, ok)
	assert.Equal(t, KindMovingAverage, meta.Kind)
	assert.Equal(t, 10, meta.Window)
}

func TestReferenceBuilder_Build_Empty(t *testing.T) {
	_, err := NewReferenceBuilder().Build(types.BarStore{})
	assert.Error(t, err)
}

// Rows with insufficient history must hold NaN, and the first defined
// row of each column is exactly at Window-1.
func TestReferenceBuilder_InsufficientHistoryIsNaN(t *testing.T) {
	bars := generateBars(60)
	m, err := NewReferenceBuilder().Build(bars)
	require.NoError(t, err)

	for _, name := range m.Columns() {
		meta, _ := m.Meta(name)
		require.Greater(t, meta.Window, 0, name)

		for i := 0; i < meta.Window-1; i++ {
			assert.True(t, math.IsNaN(m.Value(name, i)),
				"%s defined at row %d with window %d", name, i, meta.Window)
		}
		assert.False(t, math.IsNaN(m.Value(name, meta.Window-1)),
			"%s undefined at first full-window row", name)
	}
}

// Values computed over a prefix of the bars must equal the values
// computed over the full series at the same rows: no forward reference.
func TestReferenceBuilder_Causality(t *testing.T) {
	bars := generateBars(80)
	builder := NewReferenceBuilder()

	full, err := builder.Build(bars)
	require.NoError(t, err)

	const cut = 45
	prefix, err := builder.Build(bars[:cut])
	require.NoError(t, err)

	for _, name := range full.Columns() {
		for i := 0; i < cut; i++ {
			fv := full.Value(name, i)
			pv := prefix.Value(name, i)
			if math.IsNaN(fv) {
				assert.True(t, math.IsNaN(pv), "%s row %d: full NaN but prefix defined", name, i)
				continue
			}
			assert.InDelta(t, fv, pv, 1e-12, "%s row %d changed when future bars were added", name, i)
		}
	}
}

func TestSimpleReturn(t *testing.T) {
	base := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := types.BarStore{
		{Timestamp: base, Close: 100},
		{Timestamp: base.Add(time.Hour), Close: 110},
		{Timestamp: base.Add(2 * time.Hour), Close: 99},
	}

	rets := simpleReturn(bars, 1)
	assert.True(t, math.IsNaN(rets[0]))
	assert.InDelta(t, 0.10, rets[1], 1e-12)
	assert.InDelta(t, -0.10, rets[2], 1e-12)
}

func TestSMA(t *testing.T) {
	base := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make(types.BarStore, 5)
	for i := range bars {
		bars[i] = types.OHLCV{Timestamp: base.Add(time.Duration(i) * time.Hour), Close: float64(i + 1)}
	}

	out := sma(bars, 3)
	assert.True(t, math.IsNaN(out[1]))
	assert.InDelta(t, 2.0, out[2], 1e-12)
	assert.InDelta(t, 3.0, out[3], 1e-12)
	assert.InDelta(t, 4.0, out[4], 1e-12)
}

func TestRSI_Bounds(t *testing.T) {
	bars := generateBars(100)
	out := rsi(bars, 14)

	for i := 14; i < len(out); i++ {
		assert.GreaterOrEqual(t, out[i], 0.0)
		assert.LessOrEqual(t, out[i], 100.0)
	}
}
