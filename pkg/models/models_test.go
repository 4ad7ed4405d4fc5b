package models

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantguard/backtest-validator/pkg/features"
	"github.com/quantguard/backtest-validator/pkg/types"
)

// parityFixture builds a matrix whose single return feature alternates
// sign, with labels that follow the feature's sign exactly.
func parityFixture(t *testing.T, n int) (*features.Matrix, *features.LabelSeries) {
	t.Helper()
	base := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)

	ts := make([]time.Time, n)
	values := make([]float64, n)
	bars := make(types.BarStore, n)
	for i := range ts {
		ts[i] = base.Add(time.Duration(i) * time.Hour)
		if i%2 == 0 {
			values[i] = 0.01
		} else {
			values[i] = -0.01
		}
		bars[i] = types.OHLCV{Timestamp: ts[i], Close: 100}
	}

	m := features.NewMatrix(ts)
	require.NoError(t, m.AddColumn(
		features.ColumnMeta{Name: "ret_1", Kind: features.KindReturn, Window: 2}, values))

	labels := features.BuildLabels(bars, func(bars types.BarStore, i int) (float64, bool) {
		if i%2 == 0 {
			return 1, true
		}
		return 0, true
	})
	return m, labels
}

func TestMomentumFactory_FitAndPredict(t *testing.T) {
	m, labels := parityFixture(t, 100)
	factory := MomentumFactory{}
	assert.Equal(t, "momentum_threshold", factory.Name())

	model, err := factory.Fit(m, labels, 0, 80)
	require.NoError(t, err)

	preds := model.Predict(m, 80, 100)
	require.Len(t, preds, 20)
	for i, p := range preds {
		row := 80 + i
		if row%2 == 0 {
			assert.Equal(t, 1.0, p, "row %d", row)
		} else {
			assert.Equal(t, 0.0, p, "row %d", row)
		}
	}
}

func TestMomentumFactory_InvertedAssociation(t *testing.T) {
	m, _ := parityFixture(t, 100)

	// Labels flipped: below-threshold rows carry label 1.
	bars := make(types.BarStore, 100)
	base := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		bars[i] = types.OHLCV{Timestamp: base.Add(time.Duration(i) * time.Hour), Close: 100}
	}
	invertedLabels := features.BuildLabels(bars, func(_ types.BarStore, i int) (float64, bool) {
		if i%2 == 0 {
			return 0, true
		}
		return 1, true
	})

	model, err := MomentumFactory{}.Fit(m, invertedLabels, 0, 80)
	require.NoError(t, err)

	preds := model.Predict(m, 80, 100)
	for i, p := range preds {
		row := 80 + i
		if row%2 == 0 {
			assert.Equal(t, 0.0, p, "row %d", row)
		} else {
			assert.Equal(t, 1.0, p, "row %d", row)
		}
	}
}

func TestMomentumFactory_MissingFeature(t *testing.T) {
	m, labels := parityFixture(t, 10)
	_, err := MomentumFactory{Feature: "absent"}.Fit(m, labels, 0, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not in matrix")
}

func TestMomentumFactory_AllNaNTrainingWindow(t *testing.T) {
	base := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	ts := []time.Time{base, base.Add(time.Hour), base.Add(2 * time.Hour)}
	m := features.NewMatrix(ts)
	require.NoError(t, m.AddColumn(
		features.ColumnMeta{Name: "ret_1", Kind: features.KindReturn, Window: 2},
		[]float64{math.NaN(), math.NaN(), math.NaN()}))

	bars := types.BarStore{
		{Timestamp: ts[0], Close: 100}, {Timestamp: ts[1], Close: 100}, {Timestamp: ts[2], Close: 100},
	}
	labels := features.BuildLabels(bars, func(_ types.BarStore, i int) (float64, bool) { return 1, true })

	_, err := MomentumFactory{}.Fit(m, labels, 0, 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "undefined across training rows")
}

func TestMajorityClassFactory(t *testing.T) {
	m, labels := parityFixture(t, 101)
	factory := MajorityClassFactory{}
	assert.Equal(t, "majority_class", factory.Name())

	// Rows 0..100: 51 even rows labeled 1, 50 odd rows labeled 0.
	model, err := factory.Fit(m, labels, 0, 101)
	require.NoError(t, err)

	preds := model.Predict(m, 0, 10)
	for _, p := range preds {
		assert.Equal(t, 1.0, p)
	}
}

func TestMajorityClassFactory_NoLabels(t *testing.T) {
	base := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	ts := []time.Time{base, base.Add(time.Hour)}
	m := features.NewMatrix(ts)

	bars := types.BarStore{{Timestamp: ts[0], Close: 100}, {Timestamp: ts[1], Close: 100}}
	labels := features.BuildLabels(bars, func(_ types.BarStore, _ int) (float64, bool) { return 0, false })

	_, err := MajorityClassFactory{}.Fit(m, labels, 0, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no defined labels")
}
