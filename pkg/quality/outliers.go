package quality

import (
	"math"
	"sort"
)

// localStats computes mean and standard deviation over a trailing
// window of returns ending just before index i.
func localStats(returns []float64, i, window int) (mean, std float64, ok bool) {
	start := i - window
	if start < 0 {
		start = 0
	}
	slice := returns[start:i]
	if len(slice) < 3 {
		return 0, 0, false
	}

	for _, r := range slice {
		mean += r
	}
	mean /= float64(len(slice))

	var variance float64
	for _, r := range slice {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(slice) - 1)
	return mean, math.Sqrt(variance), true
}

func localMedian(records []record, i, window int) (float64, bool) {
	start := i - window
	if start < 0 {
		start = 0
	}
	var closes []float64
	for _, rec := range records[start:i] {
		if !math.IsNaN(rec.close) {
			closes = append(closes, rec.close)
		}
	}
	if len(closes) < 3 {
		return 0, false
	}
	sort.Float64s(closes)
	mid := len(closes) / 2
	if len(closes)%2 == 0 {
		return (closes[mid-1] + closes[mid]) / 2, true
	}
	return closes[mid], true
}

// removeOutliers drops hard return outliers and scale errors, and
// flags soft outliers without dropping them. Operates on
// price-complete rows only; incomplete rows pass through untouched so
// the fill stage can resolve them.
func (v *Validator) removeOutliers(records []record, report *Report) []record {
	if len(records) < 3 {
		return records
	}

	// Compact finite-return history for local stats.
	var history []float64

	hardDrops := 0
	scaleDrops := 0
	softFlags := 0

	// Returns are measured against the last kept close, so a dropped
	// spike does not poison the return of the bar that follows it.
	lastKeptClose := math.NaN()

	kept := make([]record, 0, len(records))
	for i, rec := range records {
		ret := math.NaN()
		if !math.IsNaN(rec.close) && !math.IsNaN(lastKeptClose) && lastKeptClose > 0 {
			ret = (rec.close - lastKeptClose) / lastKeptClose
		}

		drop := false
		if !math.IsNaN(ret) {
			if _, std, ok := localStats(history, len(history), v.cfg.OutlierWindow); ok && std > 0 {
				mag := math.Abs(ret)
				if mag > v.cfg.HardOutlierSigma*std {
					hardDrops++
					drop = true
				} else if mag > v.cfg.SoftOutlierSigma*std {
					softFlags++
				}
			}
		}

		if !drop && !math.IsNaN(rec.close) {
			if median, ok := localMedian(records, i, v.cfg.OutlierWindow); ok && median > 0 {
				ratio := rec.close / median
				if ratio >= v.cfg.ScaleErrorFactor || ratio <= 1/v.cfg.ScaleErrorFactor {
					scaleDrops++
					drop = true
				}
			}
		}

		if drop {
			continue
		}
		if !math.IsNaN(ret) {
			history = append(history, ret)
		}
		if !math.IsNaN(rec.close) {
			lastKeptClose = rec.close
		}
		kept = append(kept, rec)
	}

	if hardDrops > 0 {
		report.addIssue("extreme return outlier beyond %.0fx local stddev: %d rows dropped", v.cfg.HardOutlierSigma, hardDrops)
	}
	if scaleDrops > 0 {
		report.addIssue("price scale error beyond %.0fx local median: %d rows dropped", v.cfg.ScaleErrorFactor, scaleDrops)
	}
	if softFlags > 0 {
		report.addIssue("suspicious return beyond %.0fx local stddev: %d rows flagged", v.cfg.SoftOutlierSigma, softFlags)
	}
	report.OutliersRemoved += hardDrops + scaleDrops
	report.FlaggedRows += softFlags

	return kept
}
