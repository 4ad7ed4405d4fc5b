package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/quantguard/backtest-validator/pkg/bias"
	"github.com/quantguard/backtest-validator/pkg/pipeline"
)

// JSONReporter writes run artifacts as an indented JSON document.
type JSONReporter struct{}

// NewJSONReporter creates a new JSON reporter.
func NewJSONReporter() *JSONReporter {
	return &JSONReporter{}
}

type jsonBiasResult struct {
	Passed     bool     `json:"passed"`
	Critical   bool     `json:"critical"`
	Confidence float64  `json:"confidence"`
	Findings   []string `json:"findings,omitempty"`
}

type jsonPayload struct {
	Fingerprint string                    `json:"fingerprint"`
	Quality     *jsonQuality              `json:"quality,omitempty"`
	Bias        map[string]jsonBiasResult `json:"bias,omitempty"`
	BiasOverall *float64                  `json:"bias_overall_confidence,omitempty"`
	WalkForward *jsonWalkForward          `json:"walk_forward,omitempty"`
}

type jsonQuality struct {
	TotalRows       int      `json:"total_rows"`
	ValidRows       int      `json:"valid_rows"`
	OutliersRemoved int      `json:"outliers_removed"`
	MissingValues   int      `json:"missing_values"`
	Issues          []string `json:"issues,omitempty"`
	Score           float64  `json:"score"`
	DurationMillis  int64    `json:"duration_ms"`
}

type jsonFold struct {
	Fold       int     `json:"fold"`
	TrainSize  int     `json:"train_size"`
	TestSize   int     `json:"test_size"`
	TrainScore float64 `json:"train_score"`
	TestScore  float64 `json:"test_score"`
	Skipped    bool    `json:"skipped"`
	SkipReason string  `json:"skip_reason,omitempty"`
}

type jsonWalkForward struct {
	Model            string     `json:"model"`
	Folds            []jsonFold `json:"folds"`
	TotalPredictions int        `json:"total_predictions"`
	Accuracy         float64    `json:"accuracy"`
	Precision        float64    `json:"precision"`
	Recall           float64    `json:"recall"`
	F1               float64    `json:"f1"`
}

func buildPayload(result *pipeline.RunResult) *jsonPayload {
	payload := &jsonPayload{Fingerprint: result.Fingerprint}

	if q := result.Quality; q != nil {
		payload.Quality = &jsonQuality{
			TotalRows:       q.TotalRows,
			ValidRows:       q.ValidRows,
			OutliersRemoved: q.OutliersRemoved,
			MissingValues:   q.MissingValues,
			Issues:          q.Issues,
			Score:           q.Score,
			DurationMillis:  q.Duration.Milliseconds(),
		}
	}

	if b := result.Bias; b != nil {
		payload.Bias = make(map[string]jsonBiasResult, len(b.Results))
		for id, res := range b.Results {
			findings := make([]string, 0, len(res.Findings))
			for _, f := range res.Findings {
				findings = append(findings, f.String())
			}
			payload.Bias[string(id)] = jsonBiasResult{
				Passed:     res.Passed,
				Critical:   bias.IsCritical(id),
				Confidence: res.Confidence,
				Findings:   findings,
			}
		}
		overall := b.OverallConfidence
		payload.BiasOverall = &overall
	}

	if wf := result.WalkForward; wf != nil {
		jwf := &jsonWalkForward{
			Model:            wf.Model,
			TotalPredictions: wf.Metrics.TotalPredictions,
			Accuracy:         wf.Metrics.Accuracy,
			Precision:        wf.Metrics.Precision,
			Recall:           wf.Metrics.Recall,
			F1:               wf.Metrics.F1,
		}
		for _, fold := range wf.Folds {
			jwf.Folds = append(jwf.Folds, jsonFold{
				Fold:       fold.Fold,
				TrainSize:  fold.TrainSize,
				TestSize:   fold.TestSize,
				TrainScore: fold.TrainScore,
				TestScore:  fold.TestScore,
				Skipped:    fold.Skipped,
				SkipReason: fold.SkipReason,
			})
		}
		payload.WalkForward = jwf
	}
	return payload
}

// Write marshals the run to an indented JSON file.
func (r *JSONReporter) Write(result *pipeline.RunResult, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	payload, err := json.MarshalIndent(buildPayload(result), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0644)
}
