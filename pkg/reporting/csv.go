package reporting

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/quantguard/backtest-validator/pkg/pipeline"
)

// CSVReporter writes the combined out-of-fold prediction series to a
// CSV file, one row per predicted timestamp. This is the signal file a
// strategy simulator consumes.
type CSVReporter struct{}

// NewCSVReporter creates a new CSV reporter.
func NewCSVReporter() *CSVReporter {
	return &CSVReporter{}
}

// Write exports timestamp, prediction and label rows for every
// out-of-fold prediction.
func (r *CSVReporter) Write(result *pipeline.RunResult, path string) error {
	if result.WalkForward == nil || result.Features == nil {
		return fmt.Errorf("no walk-forward predictions to export")
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	if err := w.Write([]string{"timestamp", "prediction", "label"}); err != nil {
		return err
	}

	preds := result.WalkForward.Predictions
	for i, p := range preds {
		if math.IsNaN(p) {
			continue
		}
		label := ""
		if result.Labels != nil {
			if l := result.Labels.Value(i); !math.IsNaN(l) {
				label = strconv.FormatFloat(l, 'f', -1, 64)
			}
		}
		row := []string{
			result.Features.Timestamp(i).Format(time.RFC3339),
			strconv.FormatFloat(p, 'f', -1, 64),
			label,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}
