// Package quality cleans and scores raw OHLCV tables. It is the first
// pipeline stage: structural normalization, timestamp parsing, numeric
// coercion, relational integrity, outlier removal, gap analysis and a
// weighted quality score with a hard floor.
package quality

import (
	"sort"
	"time"

	"github.com/rs/zerolog"

	verrors "github.com/quantguard/backtest-validator/internal/errors"
	"github.com/quantguard/backtest-validator/pkg/data"
	"github.com/quantguard/backtest-validator/pkg/types"
)

const component = "quality"

// Validator runs the cleaning pipeline over raw tables.
type Validator struct {
	cfg Config
	log zerolog.Logger
}

// NewValidator creates a validator with the given configuration.
func NewValidator(cfg Config, log zerolog.Logger) *Validator {
	return &Validator{cfg: cfg, log: log.With().Str("component", component).Logger()}
}

// Validate cleans the raw table and scores the result. The returned
// bar store is a new value; the input table is never mutated. A fatal
// IntegrityError is returned when the retained row count or quality
// score falls below the configured gates.
func (v *Validator) Validate(table *data.RawTable) (types.BarStore, *Report, error) {
	start := time.Now()
	report := &Report{
		TotalRows:   table.NumRows(),
		Fingerprint: data.Fingerprint(table),
	}

	schema, err := data.DetectSchema(table.Header)
	if err != nil {
		return nil, nil, verrors.Wrap(err, verrors.CategoryIntegrity, component, "detect_schema")
	}

	records := v.parseRows(table, schema, report)
	if len(records) == 0 {
		return nil, nil, verrors.NewIntegrityError(component, "parse", "empty timestamp index: no rows with a parseable timestamp").
			WithContext("total_rows", report.TotalRows)
	}

	records = sortAndDedup(records, report)
	completeness := columnCompleteness(records)

	records = v.dropIncoherent(records, report)
	records = v.removeOutliers(records, report)

	v.analyzeGaps(records, report)
	records = v.fillMissing(records, report)
	records = v.dropIncomplete(records, report)

	report.ValidRows = len(records)
	report.Score = v.computeScore(report, completeness)
	report.Duration = time.Since(start)

	v.log.Info().
		Int("total_rows", report.TotalRows).
		Int("valid_rows", report.ValidRows).
		Int("outliers_removed", report.OutliersRemoved).
		Float64("score", report.Score).
		Dur("duration", report.Duration).
		Msg("quality validation complete")

	if report.ValidRows < v.cfg.MinRows {
		return nil, report, verrors.NewIntegrityError(component, "gate",
			"retained rows below minimum").
			WithContext("retained", report.ValidRows).
			WithContext("minimum", v.cfg.MinRows)
	}
	if report.Score < v.cfg.ScoreFloor {
		return nil, report, verrors.NewIntegrityError(component, "gate",
			"quality score below floor").
			WithContext("score", report.Score).
			WithContext("floor", v.cfg.ScoreFloor)
	}

	bars := make(types.BarStore, len(records))
	for i, rec := range records {
		bars[i] = types.OHLCV{
			Timestamp: rec.ts,
			Open:      rec.open,
			High:      rec.high,
			Low:       rec.low,
			Close:     rec.close,
			Volume:    rec.volume,
		}
	}
	return bars, report, nil
}

func sortAndDedup(records []record, report *Report) []record {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].ts.Before(records[j].ts)
	})

	deduped := records[:1]
	duplicates := 0
	for _, rec := range records[1:] {
		if rec.ts.Equal(deduped[len(deduped)-1].ts) {
			duplicates++
			continue
		}
		deduped = append(deduped, rec)
	}
	if duplicates > 0 {
		report.addIssue("duplicate timestamps: %d rows dropped", duplicates)
	}
	return deduped
}

// dropIncoherent removes price-complete rows violating the OHLC
// relational invariants (High < Low, price outside [low, high], body
// exceeding range). These indicate corrupted source data, not
// modelable outliers.
func (v *Validator) dropIncoherent(records []record, report *Report) []record {
	kept := make([]record, 0, len(records))
	dropped := 0
	for _, rec := range records {
		if rec.priceComplete() && !rec.coherent() {
			dropped++
			continue
		}
		kept = append(kept, rec)
	}
	if dropped > 0 {
		report.addIssue("High < Low or OHLC relation violated: %d rows dropped", dropped)
	}
	return kept
}

// dropIncomplete removes rows still missing a required price after the
// fill stage, plus any row the fill left relationally incoherent. The
// output therefore satisfies the OHLC invariants universally.
func (v *Validator) dropIncomplete(records []record, report *Report) []record {
	kept := make([]record, 0, len(records))
	dropped := 0
	for _, rec := range records {
		if !rec.coherent() {
			dropped++
			continue
		}
		kept = append(kept, rec)
	}
	if dropped > 0 {
		report.addIssue("rows unresolvable after fill: %d dropped", dropped)
	}
	return kept
}
