package walkforward

import (
	"context"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	verrors "github.com/quantguard/backtest-validator/internal/errors"
	"github.com/quantguard/backtest-validator/pkg/features"
	"github.com/quantguard/backtest-validator/pkg/models"
	"github.com/quantguard/backtest-validator/pkg/types"
)

func generateBars(n int) types.BarStore {
	rng := rand.New(rand.NewSource(5))
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
			Volume:    1000,
		}
	}
	return bars
}

func evaluationFixture(t *testing.T, n int) (*features.Matrix, *features.LabelSeries) {
	t.Helper()
	bars := generateBars(n)
	feats, err := features.NewReferenceBuilder().Build(bars)
	require.NoError(t, err)
	labels := features.BuildLabels(bars, features.BinaryUpMove(1, 0.0))
	return feats, labels
}

func testConfig() Config {
	return Config{
		NFolds:         5,
		TrainPeriod:    100,
		TestPeriod:     60,
		Scheme:         Expanding,
		MinFoldSamples: 30,
		Workers:        2,
	}
}

func TestEvaluate_AllFoldsSucceed(t *testing.T) {
	feats, labels := evaluationFixture(t, 400)
	e := NewEvaluator(testConfig(), zerolog.Nop())

	result, err := e.Evaluate(context.Background(), feats, labels, models.MajorityClassFactory{})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, "majority_class", result.Model)
	require.Len(t, result.Folds, 5)
	assert.Equal(t, 5, result.SucceededFolds())

	for i, fold := range result.Folds {
		assert.Equal(t, i, fold.Fold, "reports sorted by fold index")
		assert.False(t, fold.Skipped)
		assert.GreaterOrEqual(t, fold.TrainScore, 0.0)
		assert.LessOrEqual(t, fold.TestScore, 1.0)
	}
}

// Out-of-fold predictions cover each evaluated row exactly once: NaN
// before the first test window, defined everywhere after it.
func TestEvaluate_PredictionCoverage(t *testing.T) {
	feats, labels := evaluationFixture(t, 400)
	e := NewEvaluator(testConfig(), zerolog.Nop())

	result, err := e.Evaluate(context.Background(), feats, labels, models.MajorityClassFactory{})
	require.NoError(t, err)

	require.Len(t, result.Predictions, 400)
	for i := 0; i < 100; i++ {
		assert.True(t, math.IsNaN(result.Predictions[i]), "in-sample row %d has a prediction", i)
	}
	for i := 100; i < 400; i++ {
		assert.False(t, math.IsNaN(result.Predictions[i]), "test row %d has no prediction", i)
	}
	assert.Equal(t, 300, result.Metrics.TotalPredictions)
	assert.GreaterOrEqual(t, result.Metrics.Accuracy, 0.0)
	assert.LessOrEqual(t, result.Metrics.Accuracy, 1.0)
}

func TestEvaluate_MomentumFactory(t *testing.T) {
	feats, labels := evaluationFixture(t, 400)
	e := NewEvaluator(testConfig(), zerolog.Nop())

	result, err := e.Evaluate(context.Background(), feats, labels, models.MomentumFactory{})
	require.NoError(t, err)
	assert.Equal(t, "momentum_threshold", result.Model)
	assert.Equal(t, 5, result.SucceededFolds())
}

// A builder may emit a matrix over a subset of the bar index, e.g.
// with warmup rows trimmed. Labels built over the full bar store must
// then be paired by timestamp, not by row number; both label series
// below describe the same bars, so the runs must agree exactly.
func TestEvaluate_SubsetMatrixAlignsLabelsByTimestamp(t *testing.T) {
	bars := generateBars(400)
	subset := bars[20:]

	feats, err := features.NewReferenceBuilder().Build(subset)
	require.NoError(t, err)

	fullLabels := features.BuildLabels(bars, features.BinaryUpMove(1, 0.0))
	subsetLabels := features.BuildLabels(subset, features.BinaryUpMove(1, 0.0))

	e := NewEvaluator(testConfig(), zerolog.Nop())
	fromFull, err := e.Evaluate(context.Background(), feats, fullLabels, models.MomentumFactory{})
	require.NoError(t, err)
	fromSubset, err := e.Evaluate(context.Background(), feats, subsetLabels, models.MomentumFactory{})
	require.NoError(t, err)

	require.Len(t, fromFull.Folds, len(fromSubset.Folds))
	for i := range fromFull.Folds {
		assert.Equal(t, fromSubset.Folds[i].TrainScore, fromFull.Folds[i].TrainScore, "fold %d train score", i)
		assert.Equal(t, fromSubset.Folds[i].TestScore, fromFull.Folds[i].TestScore, "fold %d test score", i)
	}
	assert.Equal(t, fromSubset.Metrics, fromFull.Metrics)

	require.Len(t, fromFull.Predictions, feats.Len())
	for i := range fromFull.Predictions {
		if math.IsNaN(fromSubset.Predictions[i]) {
			assert.True(t, math.IsNaN(fromFull.Predictions[i]), "row %d", i)
		} else {
			assert.Equal(t, fromSubset.Predictions[i], fromFull.Predictions[i], "row %d", i)
		}
	}
}

func TestEvaluate_AllFoldsSkipped(t *testing.T) {
	feats, labels := evaluationFixture(t, 400)
	cfg := testConfig()
	cfg.MinFoldSamples = 1000
	e := NewEvaluator(cfg, zerolog.Nop())

	result, err := e.Evaluate(context.Background(), feats, labels, models.MajorityClassFactory{})
	require.Error(t, err)
	assert.True(t, verrors.IsInsufficientData(err))

	require.NotNil(t, result, "skipped folds still reported")
	require.Len(t, result.Folds, 5)
	for _, fold := range result.Folds {
		assert.True(t, fold.Skipped)
		assert.NotEmpty(t, fold.SkipReason)
	}
}

func TestEvaluate_TooFewRowsForTraining(t *testing.T) {
	feats, labels := evaluationFixture(t, 50)
	e := NewEvaluator(testConfig(), zerolog.Nop())

	result, err := e.Evaluate(context.Background(), feats, labels, models.MajorityClassFactory{})
	require.Error(t, err)
	assert.True(t, verrors.IsInsufficientData(err))
	assert.Nil(t, result)
}

func TestEvaluate_CancelledContext(t *testing.T) {
	feats, labels := evaluationFixture(t, 400)
	e := NewEvaluator(testConfig(), zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Evaluate(ctx, feats, labels, models.MajorityClassFactory{})
	require.Error(t, err)
	assert.False(t, verrors.IsInsufficientData(err))
}

func TestComputeMetrics(t *testing.T) {
	nan := math.NaN()
	preds := []float64{nan, 1, 0, 1, 0, 1}
	labels := []float64{1, 1, 0, 0, 1, nan}

	m := computeMetrics(preds, labels)
	assert.Equal(t, 5, m.TotalPredictions)
	assert.Equal(t, 4, m.LabeledRows)
	// Correct: rows 1 and 2. tp=1 fp=1 fn=1.
	assert.InDelta(t, 0.5, m.Accuracy, 1e-12)
	assert.InDelta(t, 0.5, m.Precision, 1e-12)
	assert.InDelta(t, 0.5, m.Recall, 1e-12)
	assert.InDelta(t, 0.5, m.F1, 1e-12)
}

func TestAccuracy_Range(t *testing.T) {
	preds := []float64{1, 1, 0, 0}
	labels := []float64{1, 0, 0, 1}
	assert.InDelta(t, 0.5, accuracy(preds, labels, 0, 4), 1e-12)
	assert.Equal(t, 0.0, accuracy(preds, labels, 0, 0))
}
