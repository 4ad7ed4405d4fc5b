package bias

import (
	"fmt"
	"time"
)

// TestID identifies one bias test.
type TestID string

const (
	TestLookAhead         TestID = "look_ahead"
	TestTemporalIntegrity TestID = "temporal_integrity"
	TestPointInTime       TestID = "point_in_time"
	TestSelection         TestID = "selection"
	TestSurvivorship      TestID = "survivorship"
	TestDataSnooping      TestID = "data_snooping"
)

// TestOrder is the canonical ordering of tests in reports.
var TestOrder = []TestID{
	TestLookAhead,
	TestTemporalIntegrity,
	TestPointInTime,
	TestSelection,
	TestSurvivorship,
	TestDataSnooping,
}

// criticalTests block the pipeline when they fail; the rest are
// warnings.
var criticalTests = map[TestID]bool{
	TestLookAhead:         true,
	TestTemporalIntegrity: true,
	TestPointInTime:       true,
}

// IsCritical reports whether a failing test blocks the pipeline.
func IsCritical(id TestID) bool {
	return criticalTests[id]
}

// Finding is one structured observation made by a test.
type Finding struct {
	Feature   string
	Timestamp time.Time
	Statistic float64
	Message   string
}

func (f Finding) String() string {
	s := f.Message
	if f.Feature != "" {
		s = fmt.Sprintf("%s [feature=%s]", s, f.Feature)
	}
	if !f.Timestamp.IsZero() {
		s = fmt.Sprintf("%s [at=%s]", s, f.Timestamp.Format(time.RFC3339))
	}
	return s
}

// TestResult is the outcome of one bias test. Recomputed every run,
// never persisted as mutable state.
type TestResult struct {
	ID         TestID
	Passed     bool
	Confidence float64
	Findings   []Finding
}

func (r *TestResult) addFinding(f Finding) {
	r.Findings = append(r.Findings, f)
}

// degrade lowers confidence by delta, clamped at zero.
func (r *TestResult) degrade(delta float64) {
	r.Confidence -= delta
	if r.Confidence < 0 {
		r.Confidence = 0
	}
}

// Report aggregates all six test results.
type Report struct {
	Results           map[TestID]TestResult
	OverallConfidence float64
	CriticalIssues    []string
	Warnings          []string
	Duration          time.Duration
}

// Passed reports whether every critical test passed.
func (r *Report) Passed() bool {
	return len(r.CriticalIssues) == 0
}

// Result returns the outcome of one test.
func (r *Report) Result(id TestID) (TestResult, bool) {
	res, ok := r.Results[id]
	return res, ok
}
