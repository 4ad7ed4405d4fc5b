package bias

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/quantguard/backtest-validator/pkg/types"
)

// testSurvivorship checks whether the series' risk profile looks
// realistic for a traded instrument. Survivorship-filtered histories
// tend to be implausibly smooth: low volatility, shallow drawdowns,
// near-normal return distributions. Each symptom is suspicious but
// not fatal on its own.
func (v *Validator) testSurvivorship(bars types.BarStore) TestResult {
	res := newResult(TestSurvivorship)
	returns := bars.Returns()
	if len(returns) < 30 {
		res.degrade(0.5)
		res.addFinding(Finding{Message: "too few returns to assess survivorship bias"})
		return res
	}

	suspicious := 0

	annualVol := stdDev(returns) * math.Sqrt(periodsPerYear(bars))
	if annualVol < v.cfg.MinAnnualVol || annualVol > v.cfg.MaxAnnualVol {
		suspicious++
		res.addFinding(Finding{
			Statistic: annualVol,
			Message: fmt.Sprintf("annualized volatility %.1f%% outside plausible range [%.0f%%, %.0f%%]",
				annualVol*100, v.cfg.MinAnnualVol*100, v.cfg.MaxAnnualVol*100),
		})
	}

	if dd := maxDrawdown(bars.Closes()); dd < v.cfg.MinMaxDrawdown {
		suspicious++
		res.addFinding(Finding{
			Statistic: dd,
			Message: fmt.Sprintf("maximum drawdown %.2f%% under %.0f%%: implausibly smooth history",
				dd*100, v.cfg.MinMaxDrawdown*100),
		})
	}

	skew := skewness(returns)
	kurt := excessKurtosis(returns)
	if math.Abs(skew) < v.cfg.MaxNormalSkew && math.Abs(kurt) < v.cfg.MaxNormalKurt {
		suspicious++
		res.addFinding(Finding{
			Statistic: kurt,
			Message: fmt.Sprintf("return distribution too normal (skew %.3f, excess kurtosis %.3f): real markets have fat tails",
				skew, kurt),
		})
	}

	res.Confidence = 1 - 0.25*float64(suspicious)
	if res.Confidence < 0 {
		res.Confidence = 0
	}
	if suspicious > v.cfg.MaxSuspicious {
		res.Passed = false
	}
	return res
}

// periodsPerYear infers the sampling frequency from the median
// inter-bar interval.
func periodsPerYear(bars types.BarStore) float64 {
	if len(bars) < 2 {
		return 252
	}
	deltas := make([]time.Duration, 0, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		deltas = append(deltas, bars[i].Timestamp.Sub(bars[i-1].Timestamp))
	}
	sort.Slice(deltas, func(i, j int) bool { return deltas[i] < deltas[j] })
	median := deltas[len(deltas)/2]
	if median <= 0 {
		return 252
	}

	// Daily-or-slower data is assumed to follow a trading calendar.
	if median >= 20*time.Hour {
		return 252
	}
	const year = 365.25 * 24 * time.Hour
	return float64(year) / float64(median)
}
