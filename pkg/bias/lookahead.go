package bias

import (
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/quantguard/backtest-validator/pkg/features"
	"github.com/quantguard/backtest-validator/pkg/types"
)

// testLookAhead catches features computed with future information:
// it independently recomputes declared return and moving-average
// features from prefix data at sampled timestamps, measures
// correlation between every feature and future returns, and scans for
// degenerate columns.
func (v *Validator) testLookAhead(bars types.BarStore, feats *features.Matrix, rng *rand.Rand) TestResult {
	res := newResult(TestLookAhead)
	barIdx := alignToBars(bars, feats.Timestamps())

	v.recomputeDeclaredFeatures(bars, feats, barIdx, rng, &res)
	v.checkFutureCorrelation(bars, feats, barIdx, &res)
	v.scanDegenerateColumns(feats, &res)

	return res
}

// recomputeDeclaredFeatures rebuilds sampled feature values using only
// bars at or before each sampled timestamp and compares against the
// stored values.
func (v *Validator) recomputeDeclaredFeatures(bars types.BarStore, feats *features.Matrix, barIdx []int, rng *rand.Rand, res *TestResult) {
	for _, name := range feats.Columns() {
		meta, _ := feats.Meta(name)
		series, _ := feats.Column(name)

		var tolerance float64
		switch meta.Kind {
		case features.KindReturn:
			tolerance = v.cfg.ReturnTolerance
		case features.KindMovingAverage:
			tolerance = v.cfg.MATolerance
		default:
			continue
		}
		if meta.Window <= 0 {
			continue
		}

		// Rows where the stored value is defined and aligned to a bar.
		var candidates []int
		for i, val := range series {
			if !math.IsNaN(val) && barIdx[i] >= 0 {
				candidates = append(candidates, i)
			}
		}

		mismatches := 0
		for _, ci := range sampleIndices(rng, len(candidates), v.cfg.SampleSize) {
			row := candidates[ci]
			bi := barIdx[row]
			recomputed, ok := recomputeFeature(bars, bi, name, meta)
			if !ok {
				continue
			}
			stored := series[row]
			if relativeError(recomputed, stored) > tolerance {
				mismatches++
				if mismatches <= 3 {
					res.addFinding(Finding{
						Feature:   name,
						Timestamp: feats.Timestamp(row),
						Statistic: stored - recomputed,
						Message: fmt.Sprintf("stored value %.6g differs from point-in-time recomputation %.6g",
							stored, recomputed),
					})
				}
			}
		}
		if mismatches > 0 {
			res.Passed = false
			res.degrade(0.5)
		}
	}
}

// recomputeFeature rebuilds one feature value from the prefix
// bars[0..bi] alone.
func recomputeFeature(bars types.BarStore, bi int, name string, meta features.ColumnMeta) (float64, bool) {
	switch meta.Kind {
	case features.KindReturn:
		horizon := meta.Window - 1
		if horizon < 1 || bi-horizon < 0 {
			return 0, false
		}
		prev := bars[bi-horizon].Close
		if prev <= 0 {
			return 0, false
		}
		return (bars[bi].Close - prev) / prev, true

	case features.KindMovingAverage:
		window := meta.Window
		if window < 1 || bi-window+1 < 0 {
			return 0, false
		}
		if strings.HasPrefix(name, "ema") {
			return prefixEMA(bars, bi, window)
		}
		sum := 0.0
		for j := bi - window + 1; j <= bi; j++ {
			sum += bars[j].Close
		}
		return sum / float64(window), true
	}
	return 0, false
}

// prefixEMA runs the standard SMA-seeded EMA recursion over the
// prefix ending at bi.
func prefixEMA(bars types.BarStore, bi, period int) (float64, bool) {
	if bi+1 < period {
		return 0, false
	}
	seed := 0.0
	for i := 0; i < period; i++ {
		seed += bars[i].Close
	}
	value := seed / float64(period)
	multiplier := 2.0 / float64(period+1)
	for i := period; i <= bi; i++ {
		value = (bars[i].Close-value)*multiplier + value
	}
	return value, true
}

func relativeError(a, b float64) float64 {
	denom := math.Max(math.Abs(b), 1e-12)
	return math.Abs(a-b) / denom
}

// checkFutureCorrelation measures correlation between each feature and
// forward returns at several horizons. High correlation with returns
// that have not happened yet is near-certain leakage.
func (v *Validator) checkFutureCorrelation(bars types.BarStore, feats *features.Matrix, barIdx []int, res *TestResult) {
	closes := bars.Closes()

	for _, horizon := range v.cfg.FutureHorizons {
		// Forward return aligned to feature rows.
		future := make([]float64, feats.Len())
		for i := range future {
			bi := barIdx[i]
			if bi < 0 || bi+horizon >= len(closes) || closes[bi] <= 0 {
				future[i] = math.NaN()
				continue
			}
			future[i] = (closes[bi+horizon] - closes[bi]) / closes[bi]
		}

		for _, name := range feats.Columns() {
			series, _ := feats.Column(name)
			r := pearson(series, future)
			mag := math.Abs(r)
			switch {
			case mag > v.cfg.FutureCorrFail:
				res.Passed = false
				res.degrade(0.5)
				res.addFinding(Finding{
					Feature:   name,
					Statistic: r,
					Message:   fmt.Sprintf("correlation %.3f with %d-step future return: near-certain leakage", r, horizon),
				})
			case mag > v.cfg.FutureCorrSuspicious:
				res.degrade(0.1)
				res.addFinding(Finding{
					Feature:   name,
					Statistic: r,
					Message:   fmt.Sprintf("correlation %.3f with %d-step future return: suspicious", r, horizon),
				})
			}
		}
	}
}

// scanDegenerateColumns flags zero-variance features and values
// implausible for the declared semantic, both common symptoms of a
// broken or leaky feature pipeline.
func (v *Validator) scanDegenerateColumns(feats *features.Matrix, res *TestResult) {
	for _, name := range feats.Columns() {
		meta, _ := feats.Meta(name)
		series, _ := feats.Column(name)
		finite := finiteValues(series)
		if len(finite) == 0 {
			res.degrade(0.1)
			res.addFinding(Finding{Feature: name, Message: "feature has no defined values"})
			continue
		}

		if stdDev(finite) == 0 {
			res.degrade(0.1)
			res.addFinding(Finding{Feature: name, Message: "zero-variance feature"})
		}

		if meta.Kind == features.KindReturn {
			for _, val := range finite {
				if math.Abs(val) > 1.0 {
					res.Passed = false
					res.degrade(0.3)
					res.addFinding(Finding{
						Feature:   name,
						Statistic: val,
						Message:   "return-type feature exceeds 100%: implausible for declared semantic",
					})
					break
				}
			}
		}
	}
}
