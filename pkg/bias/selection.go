package bias

import (
	"fmt"
	"sort"
	"time"

	"github.com/quantguard/backtest-validator/pkg/types"
)

// weekdayCoverageSpan is the minimum data span before a weekday
// pattern is expected and coverage skew is checked.
const weekdayCoverageSpan = 28 * 24 * time.Hour

// testSelection inspects the bar store itself for sampling
// distortions: excessive large gaps, degenerate volume, and calendar
// coverage skew.
func (v *Validator) testSelection(bars types.BarStore) TestResult {
	res := newResult(TestSelection)
	if len(bars) < 3 {
		res.Passed = false
		res.Confidence = 0
		res.addFinding(Finding{Message: "too few bars to assess selection bias"})
		return res
	}

	v.checkGapFraction(bars, &res)
	v.checkVolumeDegeneracy(bars, &res)
	v.checkWeekdayCoverage(bars, &res)
	return res
}

func (v *Validator) checkGapFraction(bars types.BarStore, res *TestResult) {
	deltas := make([]time.Duration, 0, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		deltas = append(deltas, bars[i].Timestamp.Sub(bars[i-1].Timestamp))
	}
	sorted := make([]time.Duration, len(deltas))
	copy(sorted, deltas)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	typical := sorted[len(sorted)/2]
	if typical <= 0 {
		return
	}

	threshold := time.Duration(float64(typical) * v.cfg.GapFactor)
	large := 0
	for _, d := range deltas {
		if d > threshold {
			large++
		}
	}
	fraction := float64(large) / float64(len(deltas))
	if fraction > v.cfg.MaxLargeGapFraction {
		res.Passed = false
		res.degrade(0.4)
		res.addFinding(Finding{
			Statistic: fraction,
			Message: fmt.Sprintf("%.1f%% of intervals are large gaps (limit %.0f%%): data may be selectively sampled",
				fraction*100, v.cfg.MaxLargeGapFraction*100),
		})
	}
}

func (v *Validator) checkVolumeDegeneracy(bars types.BarStore, res *TestResult) {
	volumes := make([]float64, len(bars))
	zero := 0
	for i, bar := range bars {
		volumes[i] = bar.Volume
		if bar.Volume == 0 {
			zero++
		}
	}

	zeroFraction := float64(zero) / float64(len(bars))
	if zeroFraction > v.cfg.MaxZeroVolumeFraction {
		res.Passed = false
		res.degrade(0.4)
		res.addFinding(Finding{
			Statistic: zeroFraction,
			Message: fmt.Sprintf("%.1f%% of bars have zero volume (limit %.0f%%)",
				zeroFraction*100, v.cfg.MaxZeroVolumeFraction*100),
		})
	}

	if cv := coefficientOfVariation(volumes); cv < v.cfg.MinVolumeCV {
		res.Passed = false
		res.degrade(0.4)
		res.addFinding(Finding{
			Statistic: cv,
			Message: fmt.Sprintf("volume coefficient of variation %.3f below %.2f: unrealistically uniform",
				cv, v.cfg.MinVolumeCV),
		})
	}
}

// checkWeekdayCoverage verifies no trading weekday is nearly absent.
// Only applied when the series spans enough calendar time for a
// weekday pattern to be expected; weekends are ignored since many
// futures venues do not trade them.
func (v *Validator) checkWeekdayCoverage(bars types.BarStore, res *TestResult) {
	span := bars[len(bars)-1].Timestamp.Sub(bars[0].Timestamp)
	if span < weekdayCoverageSpan {
		return
	}

	counts := make(map[time.Weekday]int)
	for _, bar := range bars {
		counts[bar.Timestamp.Weekday()]++
	}

	for day := time.Monday; day <= time.Friday; day++ {
		share := float64(counts[day]) / float64(len(bars))
		if share < v.cfg.MinWeekdayShare {
			res.Passed = false
			res.degrade(0.3)
			res.addFinding(Finding{
				Statistic: share,
				Message: fmt.Sprintf("%s represents %.1f%% of observations (minimum %.0f%%): calendar coverage skew",
					day, share*100, v.cfg.MinWeekdayShare*100),
			})
		}
	}
}
