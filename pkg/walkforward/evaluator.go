// Package walkforward estimates out-of-sample model performance with
// sequential train/test partitioning that respects time order. Each
// fold trains a fresh model on data strictly preceding its test window
// and contributes exactly one prediction per test row to the combined
// out-of-fold series.
package walkforward

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	verrors "github.com/quantguard/backtest-validator/internal/errors"
	"github.com/quantguard/backtest-validator/pkg/features"
	"github.com/quantguard/backtest-validator/pkg/models"
)

const component = "walkforward"

// Config holds the evaluation parameters.
type Config struct {
	NFolds      int
	TrainPeriod int
	TestPeriod  int
	Scheme      Scheme

	// MinFoldSamples skips folds whose train or test partition holds
	// fewer usable rows.
	MinFoldSamples int

	// Workers bounds fold parallelism; 0 means number of CPUs.
	Workers int
}

// DefaultConfig returns conventional parameters for daily data: five
// folds, two years training, a half year testing.
func DefaultConfig() Config {
	return Config{
		NFolds:         5,
		TrainPeriod:    504,
		TestPeriod:     126,
		Scheme:         Expanding,
		MinFoldSamples: 30,
	}
}

// FoldReport records the outcome of one fold.
type FoldReport struct {
	Fold       int
	TrainSize  int
	TestSize   int
	TrainScore float64
	TestScore  float64
	Skipped    bool
	SkipReason string
	Duration   time.Duration
}

// Result is the aggregate of a walk-forward run. Predictions is
// aligned to the feature-matrix rows, NaN outside evaluated test
// ranges; each evaluated row was predicted by the model of exactly one
// fold, trained only on strictly earlier rows.
type Result struct {
	Folds       []FoldReport
	Predictions []float64
	Metrics     Metrics
	Model       string
	Duration    time.Duration
}

// SucceededFolds returns the number of folds that were evaluated.
func (r *Result) SucceededFolds() int {
	n := 0
	for _, f := range r.Folds {
		if !f.Skipped {
			n++
		}
	}
	return n
}

// Evaluator runs walk-forward evaluations.
type Evaluator struct {
	cfg Config
	log zerolog.Logger
}

// NewEvaluator creates an evaluator with the given configuration.
func NewEvaluator(cfg Config, log zerolog.Logger) *Evaluator {
	return &Evaluator{cfg: cfg, log: log.With().Str("component", component).Logger()}
}

type foldOutcome struct {
	report FoldReport
}

// Evaluate partitions the matrix rows, fits a fresh model per fold via
// the factory, and aggregates per-fold scores plus the combined
// out-of-fold prediction series. Cancellation is honored between
// folds; completed folds keep their results. Fails with
// InsufficientDataError when fewer than 2 folds succeed.
func (e *Evaluator) Evaluate(ctx context.Context, feats *features.Matrix, labels *features.LabelSeries, factory models.Factory) (*Result, error) {
	start := time.Now()

	// Builders may emit a matrix over a subset of the bar index.
	// Re-index labels by timestamp so row i of the matrix and row i of
	// the labels describe the same bar.
	labels = labels.AlignTo(feats.Timestamps())

	folds, err := GenerateFolds(feats.Len(), e.cfg.NFolds, e.cfg.TrainPeriod, e.cfg.TestPeriod, e.cfg.Scheme)
	if err != nil {
		return nil, verrors.Wrap(err, verrors.CategoryInsufficientData, component, "generate_folds")
	}

	predictions := make([]float64, feats.Len())
	for i := range predictions {
		predictions[i] = math.NaN()
	}

	pool := newWorkerPool(e.cfg.Workers, len(folds))
	pool.start(ctx)

	submitted := 0
	for _, fold := range folds {
		job := foldJob{
			fold: fold,
			run: func(f Fold) foldOutcome {
				return e.runFold(f, feats, labels, factory, predictions)
			},
		}
		if err := pool.submit(ctx, job); err != nil {
			e.log.Warn().Err(err).Int("fold", fold.Index).Msg("evaluation cancelled before fold dispatch")
			break
		}
		submitted++
	}

	go pool.stop()

	reports := make([]FoldReport, 0, submitted)
	for i := 0; i < submitted; i++ {
		outcome, ok := <-pool.results()
		if !ok {
			break
		}
		reports = append(reports, outcome.report)
	}
	sort.Slice(reports, func(i, j int) bool { return reports[i].Fold < reports[j].Fold })

	result := &Result{
		Folds:       reports,
		Predictions: predictions,
		Model:       factory.Name(),
		Duration:    time.Since(start),
	}
	result.Metrics = computeMetrics(predictions, labels.Values())

	succeeded := result.SucceededFolds()
	e.log.Info().
		Str("scheme", e.cfg.Scheme.String()).
		Int("folds", len(reports)).
		Int("succeeded", succeeded).
		Int("predictions", result.Metrics.TotalPredictions).
		Float64("oos_accuracy", result.Metrics.Accuracy).
		Dur("duration", result.Duration).
		Msg("walk-forward evaluation complete")

	if err := ctx.Err(); err != nil {
		return result, verrors.Wrap(err, verrors.CategoryInternal, component, "evaluate")
	}
	if succeeded < 2 {
		return result, verrors.NewInsufficientDataError(component, "evaluate",
			"too few successful folds for a usable out-of-fold signal").
			WithContext("succeeded", succeeded).
			WithContext("required", 2)
	}
	return result, nil
}

// runFold trains and scores one fold. Predictions are written into the
// fold's own disjoint test range of the shared series.
func (e *Evaluator) runFold(fold Fold, feats *features.Matrix, labels *features.LabelSeries, factory models.Factory, predictions []float64) foldOutcome {
	foldStart := time.Now()
	report := FoldReport{
		Fold:      fold.Index,
		TrainSize: fold.TrainSize(),
		TestSize:  fold.TestSize(),
	}

	if fold.TrainSize() < e.cfg.MinFoldSamples || fold.TestSize() < e.cfg.MinFoldSamples {
		report.Skipped = true
		report.SkipReason = "partition below minimum viable sample count"
		e.log.Warn().Int("fold", fold.Index).
			Int("train_size", fold.TrainSize()).
			Int("test_size", fold.TestSize()).
			Int("min_samples", e.cfg.MinFoldSamples).
			Msg("fold skipped")
		report.Duration = time.Since(foldStart)
		return foldOutcome{report: report}
	}

	model, err := factory.Fit(feats, labels, fold.TrainStart, fold.TrainEnd)
	if err != nil {
		report.Skipped = true
		report.SkipReason = err.Error()
		e.log.Warn().Err(err).Int("fold", fold.Index).Msg("fold skipped: model fit failed")
		report.Duration = time.Since(foldStart)
		return foldOutcome{report: report}
	}

	trainPreds := model.Predict(feats, fold.TrainStart, fold.TrainEnd)
	trainSeries := make([]float64, feats.Len())
	for i := range trainSeries {
		trainSeries[i] = math.NaN()
	}
	copy(trainSeries[fold.TrainStart:fold.TrainEnd], trainPreds)
	report.TrainScore = accuracy(trainSeries, labels.Values(), fold.TrainStart, fold.TrainEnd)

	testPreds := model.Predict(feats, fold.TestStart, fold.TestEnd)
	copy(predictions[fold.TestStart:fold.TestEnd], testPreds)
	report.TestScore = accuracy(predictions, labels.Values(), fold.TestStart, fold.TestEnd)

	report.Duration = time.Since(foldStart)
	return foldOutcome{report: report}
}
