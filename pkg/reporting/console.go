package reporting

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/quantguard/backtest-validator/pkg/bias"
	"github.com/quantguard/backtest-validator/pkg/pipeline"
)

// ConsoleReporter prints run artifacts as tables.
type ConsoleReporter struct {
	out io.Writer
}

// NewConsoleReporter creates a reporter writing to stdout.
func NewConsoleReporter() *ConsoleReporter {
	return &ConsoleReporter{out: os.Stdout}
}

// NewConsoleReporterTo creates a reporter writing to w.
func NewConsoleReporterTo(w io.Writer) *ConsoleReporter {
	return &ConsoleReporter{out: w}
}

// Report renders whatever artifacts the run produced.
func (r *ConsoleReporter) Report(result *pipeline.RunResult) error {
	if result.Quality != nil {
		r.printQuality(result)
	}
	if result.Bias != nil {
		r.printBias(result)
	}
	if result.WalkForward != nil {
		r.printWalkForward(result)
	}
	return nil
}

func (r *ConsoleReporter) printQuality(result *pipeline.RunResult) {
	q := result.Quality

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleRounded)
	t.SetTitle("Data Quality")
	t.AppendRows([]table.Row{
		{"Input Rows", q.TotalRows},
		{"Valid Rows", q.ValidRows},
		{"Outliers Removed", q.OutliersRemoved},
		{"Missing Values", q.MissingValues},
		{"Large Gaps", len(q.LargeGaps)},
		{"Quality Score", fmt.Sprintf("%.3f", q.Score)},
		{"Duration", q.Duration.Round(1e6)},
		{"Fingerprint", shortFingerprint(q.Fingerprint)},
	})
	t.Render()

	if len(q.Issues) > 0 {
		it := table.NewWriter()
		it.SetOutputMirror(r.out)
		it.SetStyle(table.StyleRounded)
		it.SetTitle("Integrity Issues")
		for _, issue := range q.Issues {
			it.AppendRow(table.Row{issue})
		}
		it.Render()
	}
}

func (r *ConsoleReporter) printBias(result *pipeline.RunResult) {
	b := result.Bias

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleRounded)
	t.SetTitle(fmt.Sprintf("Bias Validation (overall confidence %.2f)", b.OverallConfidence))
	t.AppendHeader(table.Row{"Test", "Result", "Confidence", "Findings"})
	for _, id := range bias.TestOrder {
		res, ok := b.Result(id)
		if !ok {
			continue
		}
		verdict := "PASS"
		if !res.Passed {
			verdict = "FAIL"
			if !bias.IsCritical(id) {
				verdict = "WARN"
			}
		}
		t.AppendRow(table.Row{string(id), verdict, fmt.Sprintf("%.2f", res.Confidence), len(res.Findings)})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})
	t.Render()

	for _, id := range bias.TestOrder {
		res, ok := b.Result(id)
		if !ok || len(res.Findings) == 0 {
			continue
		}
		for _, f := range res.Findings {
			fmt.Fprintf(r.out, "  [%s] %s\n", id, f.String())
		}
	}
}

func (r *ConsoleReporter) printWalkForward(result *pipeline.RunResult) {
	wf := result.WalkForward

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleRounded)
	t.SetTitle(fmt.Sprintf("Walk-Forward Evaluation (%s)", wf.Model))
	t.AppendHeader(table.Row{"Fold", "Train", "Test", "Train Score", "Test Score", "Status"})
	for _, fold := range wf.Folds {
		status := "ok"
		trainScore := fmt.Sprintf("%.3f", fold.TrainScore)
		testScore := fmt.Sprintf("%.3f", fold.TestScore)
		if fold.Skipped {
			status = "skipped: " + fold.SkipReason
			trainScore, testScore = "-", "-"
		}
		t.AppendRow(table.Row{fold.Fold + 1, fold.TrainSize, fold.TestSize, trainScore, testScore, status})
	}
	t.Render()

	m := wf.Metrics
	mt := table.NewWriter()
	mt.SetOutputMirror(r.out)
	mt.SetStyle(table.StyleRounded)
	mt.SetTitle("Out-of-Fold Metrics")
	mt.AppendRows([]table.Row{
		{"Total Predictions", m.TotalPredictions},
		{"Labeled Rows", m.LabeledRows},
		{"Accuracy", fmt.Sprintf("%.3f", m.Accuracy)},
		{"Precision", fmt.Sprintf("%.3f", m.Precision)},
		{"Recall", fmt.Sprintf("%.3f", m.Recall)},
		{"F1", fmt.Sprintf("%.3f", m.F1)},
	})
	mt.Render()
}

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}
