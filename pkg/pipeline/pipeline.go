// Package pipeline wires the four validation stages into one ordered
// flow: quality validation, feature building, bias validation and
// walk-forward evaluation. No stage starts before its predecessor's
// output is fully materialized, and the quality-score and
// critical-bias gates stop the run before any model sees tainted data.
package pipeline

import (
	"context"

	"github.com/rs/zerolog"

	verrors "github.com/quantguard/backtest-validator/internal/errors"
	"github.com/quantguard/backtest-validator/internal/monitoring"
	"github.com/quantguard/backtest-validator/pkg/bias"
	"github.com/quantguard/backtest-validator/pkg/data"
	"github.com/quantguard/backtest-validator/pkg/features"
	"github.com/quantguard/backtest-validator/pkg/models"
	"github.com/quantguard/backtest-validator/pkg/quality"
	"github.com/quantguard/backtest-validator/pkg/types"
	"github.com/quantguard/backtest-validator/pkg/walkforward"
)

// Config aggregates per-stage configuration.
type Config struct {
	Quality     quality.Config
	Bias        bias.Config
	WalkForward walkforward.Config
}

// DefaultConfig returns defaults for every stage.
func DefaultConfig() Config {
	return Config{
		Quality:     quality.DefaultConfig(),
		Bias:        bias.DefaultConfig(),
		WalkForward: walkforward.DefaultConfig(),
	}
}

// RunResult carries every artifact of a completed (or gated) run.
// Reports are present up to the stage that failed.
type RunResult struct {
	Fingerprint string
	Bars        types.BarStore
	Features    *features.Matrix
	Labels      *features.LabelSeries
	Quality     *quality.Report
	Bias        *bias.Report
	WalkForward *walkforward.Result
	FromCache   bool
}

// Runner executes the validation pipeline.
type Runner struct {
	cfg     Config
	builder features.Builder
	labelFn features.LabelFunc
	factory models.Factory
	cache   *ResultCache
	log     zerolog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithCache memoizes completed runs in the given caller-owned cache.
func WithCache(cache *ResultCache) Option {
	return func(r *Runner) { r.cache = cache }
}

// NewRunner creates a pipeline runner. The builder produces features
// under the no-forward-reference contract; labelFn derives the
// forward-looking targets; the factory supplies a fresh model per
// walk-forward fold.
func NewRunner(cfg Config, builder features.Builder, labelFn features.LabelFunc, factory models.Factory, log zerolog.Logger, opts ...Option) *Runner {
	r := &Runner{
		cfg:     cfg,
		builder: builder,
		labelFn: labelFn,
		factory: factory,
		log:     log.With().Str("component", "pipeline").Logger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the full pipeline over one raw table. On a fatal error
// the partial RunResult accompanies it so callers can still render the
// reports that were produced.
func (r *Runner) Run(ctx context.Context, table *data.RawTable) (*RunResult, error) {
	fingerprint := data.Fingerprint(table)
	if r.cache != nil {
		if cached, ok := r.cache.Get(fingerprint); ok {
			r.log.Info().Str("fingerprint", fingerprint[:12]).Msg("returning cached run result")
			copied := *cached
			copied.FromCache = true
			return &copied, nil
		}
	}

	result := &RunResult{Fingerprint: fingerprint}

	// Stage 1: quality validation.
	qualityValidator := quality.NewValidator(r.cfg.Quality, r.log)
	bars, qualityReport, err := qualityValidator.Validate(table)
	result.Quality = qualityReport
	if qualityReport != nil {
		monitoring.UpdateQualityScore(qualityReport.Score)
		monitoring.RecordRowsDropped(qualityReport.TotalRows - qualityReport.ValidRows)
	}
	if err != nil {
		monitoring.RecordRun("integrity_error")
		return result, err
	}
	result.Bars = bars

	// Stage 2: feature building (external contract, invoked here).
	feats, err := r.builder.Build(bars)
	if err != nil {
		monitoring.RecordRun("feature_error")
		return result, verrors.Wrap(err, verrors.CategoryValidation, "pipeline", "build_features")
	}
	result.Features = feats
	result.Labels = features.BuildLabels(bars, r.labelFn)

	// Stage 3: bias validation.
	biasValidator := bias.NewValidator(r.cfg.Bias, r.log)
	biasReport, err := biasValidator.Validate(bars, feats, result.Labels)
	result.Bias = biasReport
	if biasReport != nil {
		monitoring.UpdateBiasConfidence(biasReport.OverallConfidence)
		for _, id := range bias.TestOrder {
			if res, ok := biasReport.Result(id); ok && !res.Passed {
				monitoring.RecordBiasFailure(string(id))
			}
		}
	}
	if err != nil {
		monitoring.RecordRun("bias_violation")
		return result, err
	}

	// Stage 4: walk-forward evaluation.
	evaluator := walkforward.NewEvaluator(r.cfg.WalkForward, r.log)
	wfResult, err := evaluator.Evaluate(ctx, feats, result.Labels, r.factory)
	result.WalkForward = wfResult
	if wfResult != nil {
		for _, fold := range wfResult.Folds {
			if fold.Skipped {
				monitoring.RecordFoldSkipped()
			} else {
				monitoring.ObserveFoldDuration(fold.Duration.Seconds())
			}
		}
	}
	if err != nil {
		monitoring.RecordRun("insufficient_data")
		return result, err
	}

	monitoring.RecordRun("ok")
	if r.cache != nil {
		r.cache.Set(fingerprint, result)
	}
	return result, nil
}
