package features

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIndex(n int) []time.Time {
	base := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	ts := make([]time.Time, n)
	for i := range ts {
		ts[i] = base.Add(time.Duration(i) * time.Hour)
	}
	return ts
}

func TestMatrix_AddColumn(t *testing.T) {
	m := NewMatrix(testIndex(3))

	err := m.AddColumn(ColumnMeta{Name: "ret_1", Kind: KindReturn, Window: 2}, []float64{math.NaN(), 0.1, -0.2})
	require.NoError(t, err)

	assert.Equal(t, 3, m.Len())
	assert.Equal(t, []string{"ret_1"}, m.Columns())
	assert.InDelta(t, 0.1, m.Value("ret_1", 1), 1e-12)
	assert.True(t, math.IsNaN(m.Value("ret_1", 0)))
}

func TestMatrix_AddColumn_LengthMismatch(t *testing.T) {
	m := NewMatrix(testIndex(3))
	err := m.AddColumn(ColumnMeta{Name: "x"}, []float64{1, 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match index length")
}

func TestMatrix_AddColumn_Duplicate(t *testing.T) {
	m := NewMatrix(testIndex(2))
	require.NoError(t, m.AddColumn(ColumnMeta{Name: "x"}, []float64{1, 2}))
	err := m.AddColumn(ColumnMeta{Name: "x"}, []float64{3, 4})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already present")
}

func TestMatrix_Value_OutOfRange(t *testing.T) {
	m := NewMatrix(testIndex(2))
	require.NoError(t, m.AddColumn(ColumnMeta{Name: "x"}, []float64{1, 2}))

	assert.True(t, math.IsNaN(m.Value("x", -1)))
	assert.True(t, math.IsNaN(m.Value("x", 2)))
	assert.True(t, math.IsNaN(m.Value("absent", 0)))
}

func TestInferKind(t *testing.T) {
	m := NewMatrix(testIndex(1))
	cases := map[string]Kind{
		"ret_5":    KindReturn,
		"momentum": KindReturn,
		"sma_20":   KindMovingAverage,
		"vwap":     KindMovingAverage,
		"rsi_14":   KindOscillator,
		"macd":     KindOscillator,
		"atr_14":   KindVolatility,
		"mystery":  KindOther,
	}
	for name, want := range cases {
		require.NoError(t, m.AddColumn(ColumnMeta{Name: name}, []float64{0}))
		meta, _ := m.Meta(name)
		assert.Equal(t, want, meta.Kind, name)
	}
}
