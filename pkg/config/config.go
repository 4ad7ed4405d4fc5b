package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/quantguard/backtest-validator/pkg/pipeline"
	"github.com/quantguard/backtest-validator/pkg/walkforward"
)

// RunConfig is the JSON representation of a full validation run. All
// fields are pointers so a config file only overrides what it sets;
// everything else keeps the pipeline defaults.
type RunConfig struct {
	Quality     QualitySection     `json:"quality"`
	Bias        BiasSection        `json:"bias"`
	WalkForward WalkForwardSection `json:"walk_forward"`
	Label       LabelSection       `json:"label"`
	Model       *string            `json:"model,omitempty"`
}

type QualitySection struct {
	MinRows    *int     `json:"min_rows,omitempty"`
	ScoreFloor *float64 `json:"score_floor,omitempty"`
}

type BiasSection struct {
	Seed       *int64 `json:"seed,omitempty"`
	SampleSize *int   `json:"sample_size,omitempty"`
}

type WalkForwardSection struct {
	Folds          *int    `json:"folds,omitempty"`
	TrainPeriod    *int    `json:"train_period,omitempty"`
	TestPeriod     *int    `json:"test_period,omitempty"`
	Scheme         *string `json:"scheme,omitempty"`
	MinFoldSamples *int    `json:"min_fold_samples,omitempty"`
	Workers        *int    `json:"workers,omitempty"`
}

type LabelSection struct {
	Horizon   *int     `json:"horizon,omitempty"`
	Threshold *float64 `json:"threshold,omitempty"`
}

// Manager loads, overlays and validates run configurations.
type Manager struct {
	validator *runValidator
}

// NewManager creates a new configuration manager.
func NewManager() *Manager {
	return &Manager{validator: newRunValidator()}
}

// LoadConfig reads a JSON config file and applies it over base. An
// empty path yields base unchanged. Environment variables
// (VALIDATOR_SEED, VALIDATOR_FOLDS) override file values.
func (m *Manager) LoadConfig(configFile string, base pipeline.Config) (pipeline.Config, *RunConfig, error) {
	cfg := base
	run := &RunConfig{}

	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return cfg, nil, fmt.Errorf("could not read config file: %w", err)
		}
		if err := json.Unmarshal(data, run); err != nil {
			return cfg, nil, fmt.Errorf("could not parse config file: %w", err)
		}
	}

	applyEnvironment(run)
	applyOverrides(&cfg, run)

	if err := m.validator.validate(cfg); err != nil {
		return cfg, nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, run, nil
}

func applyEnvironment(run *RunConfig) {
	if v := os.Getenv("VALIDATOR_SEED"); v != "" {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			run.Bias.Seed = &seed
		}
	}
	if v := os.Getenv("VALIDATOR_FOLDS"); v != "" {
		if folds, err := strconv.Atoi(v); err == nil {
			run.WalkForward.Folds = &folds
		}
	}
}

func applyOverrides(cfg *pipeline.Config, run *RunConfig) {
	if run.Quality.MinRows != nil {
		cfg.Quality.MinRows = *run.Quality.MinRows
	}
	if run.Quality.ScoreFloor != nil {
		cfg.Quality.ScoreFloor = *run.Quality.ScoreFloor
	}

	if run.Bias.Seed != nil {
		cfg.Bias.Seed = *run.Bias.Seed
	}
	if run.Bias.SampleSize != nil {
		cfg.Bias.SampleSize = *run.Bias.SampleSize
	}

	wf := run.WalkForward
	if wf.Folds != nil {
		cfg.WalkForward.NFolds = *wf.Folds
	}
	if wf.TrainPeriod != nil {
		cfg.WalkForward.TrainPeriod = *wf.TrainPeriod
	}
	if wf.TestPeriod != nil {
		cfg.WalkForward.TestPeriod = *wf.TestPeriod
	}
	if wf.Scheme != nil && *wf.Scheme == "rolling" {
		cfg.WalkForward.Scheme = walkforward.Rolling
	}
	if wf.MinFoldSamples != nil {
		cfg.WalkForward.MinFoldSamples = *wf.MinFoldSamples
	}
	if wf.Workers != nil {
		cfg.WalkForward.Workers = *wf.Workers
	}
}
