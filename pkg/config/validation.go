package config

import (
	"fmt"

	"github.com/quantguard/backtest-validator/pkg/pipeline"
)

type runValidator struct{}

func newRunValidator() *runValidator {
	return &runValidator{}
}

// validate performs basic validation on resolved configuration values.
func (v *runValidator) validate(cfg pipeline.Config) error {
	if cfg.Quality.MinRows < 1 {
		return fmt.Errorf("min rows must be positive, got: %d", cfg.Quality.MinRows)
	}
	if cfg.Quality.ScoreFloor < 0 || cfg.Quality.ScoreFloor > 1 {
		return fmt.Errorf("score floor must be between 0 and 1, got: %.4f", cfg.Quality.ScoreFloor)
	}

	if cfg.Bias.SampleSize < 1 {
		return fmt.Errorf("sample size must be positive, got: %d", cfg.Bias.SampleSize)
	}

	wf := cfg.WalkForward
	if wf.NFolds < 1 {
		return fmt.Errorf("fold count must be positive, got: %d", wf.NFolds)
	}
	if wf.TrainPeriod < 1 {
		return fmt.Errorf("train period must be positive, got: %d", wf.TrainPeriod)
	}
	if wf.TestPeriod < 1 {
		return fmt.Errorf("test period must be positive, got: %d", wf.TestPeriod)
	}
	if wf.MinFoldSamples < 1 {
		return fmt.Errorf("minimum fold samples must be positive, got: %d", wf.MinFoldSamples)
	}
	if wf.Workers < 0 {
		return fmt.Errorf("worker count must be non-negative, got: %d", wf.Workers)
	}
	return nil
}
