package models

import (
	"fmt"
	"math"

	"github.com/quantguard/backtest-validator/pkg/features"
)

// MomentumFactory fits a one-feature threshold classifier: it learns
// the training mean of the chosen feature and the direction of its
// association with the label, then predicts 1 on the favorable side of
// the mean. Deliberately simple; it exists to exercise the evaluator,
// not to trade.
type MomentumFactory struct {
	// Feature is the column used for classification. When empty the
	// first return-type column is chosen.
	Feature string
}

// Name returns the factory name.
func (f MomentumFactory) Name() string { return "momentum_threshold" }

// Fit learns the threshold and direction from the training rows only.
func (f MomentumFactory) Fit(m *features.Matrix, labels *features.LabelSeries, start, end int) (Model, error) {
	name := f.Feature
	if name == "" {
		for _, col := range m.Columns() {
			if meta, _ := m.Meta(col); meta.Kind == features.KindReturn {
				name = col
				break
			}
		}
	}
	series, ok := m.Column(name)
	if !ok {
		return nil, fmt.Errorf("momentum_threshold: feature %q not in matrix", name)
	}

	var sum float64
	var count int
	for i := start; i < end; i++ {
		if !math.IsNaN(series[i]) {
			sum += series[i]
			count++
		}
	}
	if count == 0 {
		return nil, fmt.Errorf("momentum_threshold: feature %q undefined across training rows [%d, %d)", name, start, end)
	}
	threshold := sum / float64(count)

	// Direction: does being above the mean associate with label 1?
	var above, aboveOnes, below, belowOnes int
	for i := start; i < end; i++ {
		val := series[i]
		label := labels.Value(i)
		if math.IsNaN(val) || math.IsNaN(label) {
			continue
		}
		if val >= threshold {
			above++
			if label >= 0.5 {
				aboveOnes++
			}
		} else {
			below++
			if label >= 0.5 {
				belowOnes++
			}
		}
	}

	invert := false
	if above > 0 && below > 0 {
		if float64(aboveOnes)/float64(above) < float64(belowOnes)/float64(below) {
			invert = true
		}
	}

	return &thresholdModel{feature: name, threshold: threshold, invert: invert}, nil
}

type thresholdModel struct {
	feature   string
	threshold float64
	invert    bool
}

func (t *thresholdModel) Predict(m *features.Matrix, start, end int) []float64 {
	series, ok := m.Column(t.feature)
	out := make([]float64, end-start)
	for i := range out {
		row := start + i
		if !ok || math.IsNaN(series[row]) {
			out[i] = 0
			continue
		}
		positive := series[row] >= t.threshold
		if t.invert {
			positive = !positive
		}
		if positive {
			out[i] = 1
		}
	}
	return out
}
