package models

import (
	"fmt"
	"math"

	"github.com/quantguard/backtest-validator/pkg/features"
)

// MajorityClassFactory fits a degenerate classifier that always
// predicts the most frequent training label. It anchors evaluation:
// any real model should beat it out of sample.
type MajorityClassFactory struct{}

// Name returns the factory name.
func (MajorityClassFactory) Name() string { return "majority_class" }

// Fit counts training labels and freezes the majority class.
func (MajorityClassFactory) Fit(m *features.Matrix, labels *features.LabelSeries, start, end int) (Model, error) {
	ones, total := 0, 0
	for i := start; i < end; i++ {
		label := labels.Value(i)
		if math.IsNaN(label) {
			continue
		}
		total++
		if label >= 0.5 {
			ones++
		}
	}
	if total == 0 {
		return nil, fmt.Errorf("majority_class: no defined labels in training rows [%d, %d)", start, end)
	}

	class := 0.0
	if ones*2 >= total {
		class = 1.0
	}
	return &constantModel{value: class}, nil
}

type constantModel struct {
	value float64
}

func (c *constantModel) Predict(m *features.Matrix, start, end int) []float64 {
	out := make([]float64, end-start)
	for i := range out {
		out[i] = c.value
	}
	return out
}
