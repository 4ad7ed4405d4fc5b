package quality

import (
	"math"
	"sort"
	"time"
)

// typicalInterval estimates the normal inter-bar spacing as the median
// timestamp delta.
func typicalInterval(records []record) time.Duration {
	if len(records) < 2 {
		return 0
	}
	deltas := make([]time.Duration, 0, len(records)-1)
	for i := 1; i < len(records); i++ {
		deltas = append(deltas, records[i].ts.Sub(records[i-1].ts))
	}
	sort.Slice(deltas, func(i, j int) bool { return deltas[i] < deltas[j] })
	return deltas[len(deltas)/2]
}

// analyzeGaps records timestamp gaps far exceeding the typical
// inter-bar interval. Gaps are reported, never repaired: fabricating
// bars would be its own form of corruption.
func (v *Validator) analyzeGaps(records []record, report *Report) {
	typical := typicalInterval(records)
	if typical <= 0 {
		return
	}

	threshold := time.Duration(float64(typical) * v.cfg.GapFactor)
	for i := 1; i < len(records); i++ {
		delta := records[i].ts.Sub(records[i-1].ts)
		if delta > threshold {
			report.LargeGaps = append(report.LargeGaps, Gap{
				From:     records[i-1].ts,
				To:       records[i].ts,
				Interval: delta,
			})
		}
	}
	if len(report.LargeGaps) > 0 {
		report.addIssue("large timestamp gap beyond %.0fx typical interval: %d occurrences", v.cfg.GapFactor, len(report.LargeGaps))
	}
}

// fillMissing forward-fills short runs of missing price values and
// fills missing volume with the column median. Rows still missing a
// required price afterwards are dropped by the caller.
func (v *Validator) fillMissing(records []record, report *Report) []record {
	filled := 0
	runLength := 0
	var last record
	haveLast := false

	for i := range records {
		rec := &records[i]
		if rec.priceComplete() {
			runLength = 0
			last = *rec
			haveLast = true
			continue
		}

		runLength++
		if !haveLast || runLength > v.cfg.MaxFillRun {
			continue
		}
		if math.IsNaN(rec.open) {
			rec.open = last.close
		}
		if math.IsNaN(rec.close) {
			rec.close = last.close
		}
		if math.IsNaN(rec.high) {
			rec.high = math.Max(rec.open, rec.close)
		}
		if math.IsNaN(rec.low) {
			rec.low = math.Min(rec.open, rec.close)
		}
		filled++
	}

	if filled > 0 {
		report.addIssue("missing price values forward-filled: %d rows (max run %d)", filled, v.cfg.MaxFillRun)
	}

	// Median volume fill.
	var volumes []float64
	for _, rec := range records {
		if !math.IsNaN(rec.volume) {
			volumes = append(volumes, rec.volume)
		}
	}
	median := 0.0
	if len(volumes) > 0 {
		sort.Float64s(volumes)
		median = volumes[len(volumes)/2]
	}
	volumeFills := 0
	for i := range records {
		if math.IsNaN(records[i].volume) {
			records[i].volume = median
			volumeFills++
		}
	}
	if volumeFills > 0 {
		report.addIssue("missing volume median-filled: %d rows", volumeFills)
	}

	return records
}
