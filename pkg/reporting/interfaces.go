// Package reporting renders pipeline artifacts (quality report, bias
// report, walk-forward result) for consoles, files and spreadsheets.
package reporting

import (
	"github.com/quantguard/backtest-validator/pkg/pipeline"
)

// Reporter renders a completed (or gated) pipeline run.
type Reporter interface {
	// Report renders whatever artifacts the run produced.
	Report(result *pipeline.RunResult) error
}

// FileReporter writes a run to a file at the given path.
type FileReporter interface {
	Write(result *pipeline.RunResult, path string) error
}
