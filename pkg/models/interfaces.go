// Package models defines the pluggable model contract of the
// walk-forward evaluator and ships two reference classifiers used by
// tests and the CLI. The evaluator is agnostic to model architecture;
// anything satisfying Factory can be evaluated.
package models

import (
	"github.com/quantguard/backtest-validator/pkg/features"
)

// Model is a fitted predictor. Predict scores rows [start, end) of the
// feature matrix and returns one prediction per row.
type Model interface {
	Predict(m *features.Matrix, start, end int) []float64
}

// Factory instantiates and fits a fresh model on rows [start, end) of
// the training data. The evaluator calls it once per fold so no state
// leaks between folds.
type Factory interface {
	Name() string
	Fit(m *features.Matrix, labels *features.LabelSeries, start, end int) (Model, error)
}
