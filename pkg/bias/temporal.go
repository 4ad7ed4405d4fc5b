package bias

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/quantguard/backtest-validator/pkg/features"
	"github.com/quantguard/backtest-validator/pkg/types"
)

// testTemporalIntegrity verifies that all three indexes are strictly
// increasing and that the feature matrix actually lines up with the
// labels and bars it will be evaluated against.
func (v *Validator) testTemporalIntegrity(bars types.BarStore, feats *features.Matrix, labels *features.LabelSeries, rng *rand.Rand) TestResult {
	res := newResult(TestTemporalIntegrity)

	indexes := []struct {
		name string
		ts   []time.Time
	}{
		{"bar store", bars.Timestamps()},
		{"feature matrix", feats.Timestamps()},
		{"label series", labels.Timestamps()},
	}
	for _, idx := range indexes {
		if ok, at := strictlyIncreasing(idx.ts); !ok {
			res.Passed = false
			res.degrade(0.5)
			res.addFinding(Finding{
				Timestamp: idx.ts[at],
				Statistic: float64(at),
				Message:   fmt.Sprintf("%s index not strictly increasing at position %d", idx.name, at),
			})
		}
	}

	overlaps := []struct {
		name     string
		fraction float64
	}{
		{"feature/label", overlapFraction(feats.Timestamps(), labels.Timestamps())},
		{"feature/bar", overlapFraction(feats.Timestamps(), bars.Timestamps())},
	}
	for _, overlap := range overlaps {
		if overlap.fraction < v.cfg.MinIndexOverlap {
			res.Passed = false
			res.degrade(0.4)
			res.addFinding(Finding{
				Statistic: overlap.fraction,
				Message: fmt.Sprintf("%s index overlap %.1f%% below required %.0f%%",
					overlap.name, overlap.fraction*100, v.cfg.MinIndexOverlap*100),
			})
		}
	}

	// Sampled consecutive-row delta check over the feature matrix.
	if feats.Len() >= 2 {
		ts := feats.Timestamps()
		for _, i := range sampleIndices(rng, feats.Len()-1, v.cfg.SampleSize) {
			if delta := ts[i+1].Sub(ts[i]); delta <= 0 {
				res.Passed = false
				res.degrade(0.3)
				res.addFinding(Finding{
					Timestamp: ts[i+1],
					Statistic: delta.Seconds(),
					Message:   "non-positive timestamp delta between consecutive feature rows",
				})
			}
		}
	}

	return res
}
