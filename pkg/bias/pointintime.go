package bias

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/quantguard/backtest-validator/pkg/features"
	"github.com/quantguard/backtest-validator/pkg/types"
)

// testPointInTime reconstructs "what was known" at sampled timestamps
// and asserts each sampled feature value is structurally derivable
// from that historical slice alone: enough history exists, and
// windowed features are undefined where their window is not yet full.
func (v *Validator) testPointInTime(bars types.BarStore, feats *features.Matrix, rng *rand.Rand) TestResult {
	res := newResult(TestPointInTime)
	barIdx := alignToBars(bars, feats.Timestamps())

	checks := 0
	failures := 0

	for _, row := range sampleIndices(rng, feats.Len(), v.cfg.SampleSize) {
		bi := barIdx[row]
		if bi < 0 {
			continue
		}
		history := bars[:bi+1]

		checks++
		if len(history) < 2 {
			failures++
			res.addFinding(Finding{
				Timestamp: feats.Timestamp(row),
				Statistic: float64(len(history)),
				Message:   "fewer than 2 historical bars available at sampled timestamp",
			})
			continue
		}

		for _, name := range feats.Columns() {
			meta, _ := feats.Meta(name)
			if meta.Window <= 0 {
				continue
			}
			checks++
			stored := feats.Value(name, row)
			if len(history) < meta.Window && !math.IsNaN(stored) {
				failures++
				res.addFinding(Finding{
					Feature:   name,
					Timestamp: feats.Timestamp(row),
					Statistic: stored,
					Message: fmt.Sprintf("value defined with %d bars of history but window is %d",
						len(history), meta.Window),
				})
			}
		}
	}

	if checks == 0 {
		res.Passed = false
		res.Confidence = 0
		res.addFinding(Finding{Message: "no feature rows aligned to bars: nothing to verify"})
		return res
	}

	passRate := 1 - float64(failures)/float64(checks)
	res.Confidence = passRate
	if passRate < v.cfg.PointInTimePassRate {
		res.Passed = false
	}
	return res
}
