package quality

import "math"

// Score weights. Retention dominates; issues, completeness and
// outlier ratio share the rest.
const (
	retentionWeight    = 0.4
	issueWeight        = 0.3
	completenessWeight = 0.2
	outlierWeight      = 0.1

	issuePenaltyStep = 0.03
)

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// computeScore combines retention, issue count, per-column
// completeness and outlier ratio into the [0,1] quality score.
func (v *Validator) computeScore(report *Report, completeness []float64) float64 {
	retention := retentionWeight * report.RetainedFraction()

	issues := math.Max(0, issueWeight-issuePenaltyStep*float64(len(report.Issues)))

	complete := 1.0
	for _, c := range completeness {
		complete *= clamp01(c)
	}
	complete *= completenessWeight

	outlierRatio := 0.0
	if report.TotalRows > 0 {
		outlierRatio = float64(report.OutliersRemoved) / float64(report.TotalRows)
	}
	outliers := outlierWeight * (1 - math.Min(1, outlierRatio*10))

	return clamp01(retention + issues + complete + outliers)
}

// columnCompleteness computes the non-missing fraction per numeric
// column over parsed rows.
func columnCompleteness(records []record) []float64 {
	if len(records) == 0 {
		return []float64{0, 0, 0, 0, 0}
	}

	counts := make([]int, 5)
	for _, rec := range records {
		for i, v := range []float64{rec.open, rec.high, rec.low, rec.close, rec.volume} {
			if !math.IsNaN(v) {
				counts[i]++
			}
		}
	}

	fractions := make([]float64, 5)
	for i, c := range counts {
		fractions[i] = float64(c) / float64(len(records))
	}
	return fractions
}
