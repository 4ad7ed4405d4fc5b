package bias

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPearson(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{2, 4, 6, 8, 10}
	assert.InDelta(t, 1.0, pearson(x, y), 1e-12)

	inverse := []float64{10, 8, 6, 4, 2}
	assert.InDelta(t, -1.0, pearson(x, inverse), 1e-12)
}

func TestPearson_SkipsNaNPairs(t *testing.T) {
	x := []float64{1, math.NaN(), 2, 3, 4}
	y := []float64{2, 100, 4, math.NaN(), 8}
	// Valid pairs: (1,2), (2,4), (4,8) - perfectly linear.
	assert.InDelta(t, 1.0, pearson(x, y), 1e-12)
}

func TestPearson_Degenerate(t *testing.T) {
	assert.Equal(t, 0.0, pearson([]float64{1, 2}, []float64{3, 4}), "fewer than 3 pairs")
	assert.Equal(t, 0.0, pearson([]float64{5, 5, 5, 5}, []float64{1, 2, 3, 4}), "constant side")
}

func TestMeanAndStdDev(t *testing.T) {
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	assert.InDelta(t, 5.0, mean(values), 1e-12)
	assert.InDelta(t, 2.138, stdDev(values), 1e-3)

	assert.Equal(t, 0.0, mean(nil))
	assert.Equal(t, 0.0, stdDev([]float64{42}))
}

func TestMaxDrawdown(t *testing.T) {
	prices := []float64{100, 110, 95, 105, 120, 90}
	// Deepest decline: 120 -> 90 = 25%.
	assert.InDelta(t, 0.25, maxDrawdown(prices), 1e-12)

	rising := []float64{100, 101, 102}
	assert.Equal(t, 0.0, maxDrawdown(rising))
}

func TestCoefficientOfVariation(t *testing.T) {
	assert.Equal(t, 0.0, coefficientOfVariation([]float64{500, 500, 500}))
	assert.Greater(t, coefficientOfVariation([]float64{100, 200, 300}), 0.3)
}

func TestSkewnessAndKurtosis_Symmetric(t *testing.T) {
	values := []float64{-2, -1, 0, 1, 2}
	assert.InDelta(t, 0.0, skewness(values), 1e-12)
	assert.Less(t, excessKurtosis(values), 0.0, "uniform-like data is platykurtic")
}

func TestSampleIndices(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	sampled := sampleIndices(rng, 100, 10)
	require.Len(t, sampled, 10)
	for i := 1; i < len(sampled); i++ {
		assert.Greater(t, sampled[i], sampled[i-1], "indices sorted and distinct")
	}
	for _, idx := range sampled {
		assert.GreaterOrEqual(t, idx, 0)
		assert.Less(t, idx, 100)
	}
}

func TestSampleIndices_SmallPopulation(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	assert.Equal(t, []int{0, 1, 2}, sampleIndices(rng, 3, 50))
	assert.Nil(t, sampleIndices(rng, 0, 10))
	assert.Nil(t, sampleIndices(rng, 10, 0))
}

func TestSampleIndices_Deterministic(t *testing.T) {
	a := sampleIndices(rand.New(rand.NewSource(7)), 1000, 20)
	b := sampleIndices(rand.New(rand.NewSource(7)), 1000, 20)
	assert.Equal(t, a, b)
}

func TestAlignToBars(t *testing.T) {
	bars := generateBars(10)
	ts := bars.Timestamps()

	probe := []time.Time{ts[3], ts[0].Add(-time.Hour), ts[9]}
	idx := alignToBars(bars, probe)
	assert.Equal(t, []int{3, -1, 9}, idx)
}

func TestOverlapFraction(t *testing.T) {
	bars := generateBars(10)
	ts := bars.Timestamps()

	assert.Equal(t, 1.0, overlapFraction(ts, ts))
	assert.Equal(t, 0.5, overlapFraction([]time.Time{ts[0], ts[0].Add(time.Minute)}, ts))
	assert.Equal(t, 0.0, overlapFraction(nil, ts))
}

func TestAlignSeries(t *testing.T) {
	bars := generateBars(5)
	ts := bars.Timestamps()
	vals := []float64{10, 20, 30, 40, 50}

	target := []time.Time{ts[1], ts[0].Add(-time.Hour), ts[4]}
	aligned := alignSeries(target, ts, vals)
	require.Len(t, aligned, 3)
	assert.Equal(t, 20.0, aligned[0])
	assert.True(t, math.IsNaN(aligned[1]))
	assert.Equal(t, 50.0, aligned[2])
}
