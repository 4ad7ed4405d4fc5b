package quality

import (
	"fmt"
	"time"
)

// Report is the audit artifact of one validation run. It is created
// once per run and read-only afterwards.
type Report struct {
	TotalRows       int
	ValidRows       int
	OutliersRemoved int
	MissingValues   int
	FlaggedRows     int
	Issues          []string
	LargeGaps       []Gap
	Score           float64
	Duration        time.Duration
	Fingerprint     string
}

// Gap describes one abnormally large timestamp gap in the input.
type Gap struct {
	From     time.Time
	To       time.Time
	Interval time.Duration
}

func (r *Report) addIssue(format string, args ...interface{}) {
	r.Issues = append(r.Issues, fmt.Sprintf(format, args...))
}

// RetainedFraction returns the fraction of input rows that survived
// cleaning.
func (r *Report) RetainedFraction() float64 {
	if r.TotalRows == 0 {
		return 0
	}
	return float64(r.ValidRows) / float64(r.TotalRows)
}
