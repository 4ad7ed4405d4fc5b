// Package bias runs six statistical tests over (bars, features,
// labels) to catch temporal information leakage and sampling
// distortions before any model is evaluated. Look-ahead, temporal
// integrity and point-in-time failures are critical and block the
// pipeline; the remaining tests surface as warnings.
package bias

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	verrors "github.com/quantguard/backtest-validator/internal/errors"
	"github.com/quantguard/backtest-validator/pkg/features"
	"github.com/quantguard/backtest-validator/pkg/types"
)

const component = "bias"

// Validator runs the bias test battery.
type Validator struct {
	cfg Config
	log zerolog.Logger
}

// NewValidator creates a validator with the given configuration.
func NewValidator(cfg Config, log zerolog.Logger) *Validator {
	return &Validator{cfg: cfg, log: log.With().Str("component", component).Logger()}
}

// Validate runs all six tests concurrently and assembles the report
// once every test has completed. A BiasViolation is returned when any
// critical test fails; non-critical failures are carried as warnings
// on the report only.
func (v *Validator) Validate(bars types.BarStore, feats *features.Matrix, labels *features.LabelSeries) (*Report, error) {
	start := time.Now()

	tests := []struct {
		id  TestID
		run func(rng *rand.Rand) TestResult
	}{
		{TestLookAhead, func(rng *rand.Rand) TestResult { return v.testLookAhead(bars, feats, rng) }},
		{TestTemporalIntegrity, func(rng *rand.Rand) TestResult { return v.testTemporalIntegrity(bars, feats, labels, rng) }},
		{TestPointInTime, func(rng *rand.Rand) TestResult { return v.testPointInTime(bars, feats, rng) }},
		{TestSelection, func(rng *rand.Rand) TestResult { return v.testSelection(bars) }},
		{TestSurvivorship, func(rng *rand.Rand) TestResult { return v.testSurvivorship(bars) }},
		{TestDataSnooping, func(rng *rand.Rand) TestResult { return v.testDataSnooping(feats, labels) }},
	}

	results := make([]TestResult, len(tests))
	var wg sync.WaitGroup
	for i, test := range tests {
		wg.Add(1)
		// Each test gets its own seeded source so outcomes are
		// deterministic regardless of scheduling.
		rng := rand.New(rand.NewSource(v.cfg.Seed + int64(i)))
		go func(slot int, run func(*rand.Rand) TestResult, rng *rand.Rand) {
			defer wg.Done()
			results[slot] = run(rng)
		}(i, test.run, rng)
	}
	wg.Wait()

	report := &Report{Results: make(map[TestID]TestResult, len(results))}
	totalConfidence := 0.0
	for _, res := range results {
		report.Results[res.ID] = res
		totalConfidence += res.Confidence

		if res.Passed {
			continue
		}
		summary := fmt.Sprintf("%s failed (confidence %.2f, %d findings)", res.ID, res.Confidence, len(res.Findings))
		if IsCritical(res.ID) {
			report.CriticalIssues = append(report.CriticalIssues, summary)
		} else {
			report.Warnings = append(report.Warnings, summary)
		}
	}
	report.OverallConfidence = totalConfidence / float64(len(results))
	report.Duration = time.Since(start)

	v.log.Info().
		Bool("passed", report.Passed()).
		Float64("confidence", report.OverallConfidence).
		Int("critical_issues", len(report.CriticalIssues)).
		Int("warnings", len(report.Warnings)).
		Dur("duration", report.Duration).
		Msg("bias validation complete")

	if !report.Passed() {
		err := verrors.NewBiasViolation(component, "validate", "critical bias test failed").
			WithContext("failed", report.CriticalIssues).
			WithContext("confidence", report.OverallConfidence)
		return report, err
	}
	return report, nil
}

func newResult(id TestID) TestResult {
	return TestResult{ID: id, Passed: true, Confidence: 1.0}
}
