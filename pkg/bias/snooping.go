package bias

import (
	"fmt"
	"math"

	"github.com/quantguard/backtest-validator/pkg/features"
)

// testDataSnooping measures direct feature-to-label correlation. A
// feature that nearly reproduces the label was either selected on the
// evaluation data or leaks it outright.
func (v *Validator) testDataSnooping(feats *features.Matrix, labels *features.LabelSeries) TestResult {
	res := newResult(TestDataSnooping)
	if feats.Len() == 0 || labels.Len() == 0 {
		res.degrade(0.5)
		res.addFinding(Finding{Message: "empty feature matrix or label series: nothing to test"})
		return res
	}

	aligned := alignSeries(feats.Timestamps(), labels.Timestamps(), labels.Values())

	var magnitudes []float64
	suspicious := 0
	for _, name := range feats.Columns() {
		series, _ := feats.Column(name)
		r := pearson(series, aligned)
		mag := math.Abs(r)
		magnitudes = append(magnitudes, mag)

		if mag > v.cfg.SnoopSingleCorr {
			res.Passed = false
			res.degrade(0.5)
			res.addFinding(Finding{
				Feature:   name,
				Statistic: r,
				Message:   fmt.Sprintf("feature/label correlation %.3f exceeds %.2f", r, v.cfg.SnoopSingleCorr),
			})
		}
		if mag > v.cfg.SnoopSuspiciousCorr {
			suspicious++
		}
	}

	if meanMag := mean(magnitudes); meanMag > v.cfg.SnoopMeanCorr {
		res.Passed = false
		res.degrade(0.4)
		res.addFinding(Finding{
			Statistic: meanMag,
			Message: fmt.Sprintf("mean absolute feature/label correlation %.3f exceeds %.2f",
				meanMag, v.cfg.SnoopMeanCorr),
		})
	}

	if len(magnitudes) > 0 {
		fraction := float64(suspicious) / float64(len(magnitudes))
		if fraction > v.cfg.SnoopMaxSuspicious {
			res.Passed = false
			res.degrade(0.3)
			res.addFinding(Finding{
				Statistic: fraction,
				Message: fmt.Sprintf("%.0f%% of features exceed suspicious correlation %.2f (limit %.0f%%)",
					fraction*100, v.cfg.SnoopSuspiciousCorr, v.cfg.SnoopMaxSuspicious*100),
			})
		}
	}

	return res
}
