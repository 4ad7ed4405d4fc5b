package reporting

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/quantguard/backtest-validator/pkg/bias"
	"github.com/quantguard/backtest-validator/pkg/pipeline"
)

// ExcelReporter writes run artifacts to a workbook with one sheet per
// pipeline stage, for audit and compliance review.
type ExcelReporter struct{}

// NewExcelReporter creates a new Excel reporter.
func NewExcelReporter() *ExcelReporter {
	return &ExcelReporter{}
}

type excelStyles struct {
	header int
	fail   int
}

// Write saves the workbook at path.
func (r *ExcelReporter) Write(result *pipeline.RunResult, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	fx := excelize.NewFile()
	defer fx.Close()

	styles, err := r.createStyles(fx)
	if err != nil {
		return err
	}

	const qualitySheet = "Quality"
	const biasSheet = "Bias"
	const foldsSheet = "Walk-Forward"

	fx.SetSheetName(fx.GetSheetName(0), qualitySheet)
	if result.Quality != nil {
		if err := r.writeQualitySheet(fx, qualitySheet, result, styles); err != nil {
			return err
		}
	}
	if result.Bias != nil {
		fx.NewSheet(biasSheet)
		if err := r.writeBiasSheet(fx, biasSheet, result, styles); err != nil {
			return err
		}
	}
	if result.WalkForward != nil {
		fx.NewSheet(foldsSheet)
		if err := r.writeFoldsSheet(fx, foldsSheet, result, styles); err != nil {
			return err
		}
	}

	return fx.SaveAs(path)
}

func (r *ExcelReporter) createStyles(fx *excelize.File) (excelStyles, error) {
	var styles excelStyles
	var err error

	styles.header, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11, Color: "FFFFFF", Family: "Calibri"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"2F4F4F"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return styles, err
	}

	styles.fail, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "9C0006"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"FFC7CE"}, Pattern: 1},
	})
	return styles, err
}

func (r *ExcelReporter) writeQualitySheet(fx *excelize.File, sheet string, result *pipeline.RunResult, styles excelStyles) error {
	q := result.Quality
	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Fingerprint", q.Fingerprint},
		{"Input Rows", q.TotalRows},
		{"Valid Rows", q.ValidRows},
		{"Outliers Removed", q.OutliersRemoved},
		{"Missing Values", q.MissingValues},
		{"Flagged Rows", q.FlaggedRows},
		{"Large Gaps", len(q.LargeGaps)},
		{"Quality Score", q.Score},
		{"Duration", q.Duration.String()},
	}
	for i, row := range rows {
		cellRef, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := fx.SetSheetRow(sheet, cellRef, &row); err != nil {
			return err
		}
	}
	if err := fx.SetCellStyle(sheet, "A1", "B1", styles.header); err != nil {
		return err
	}

	issueStart := len(rows) + 2
	for i, issue := range q.Issues {
		cellRef, _ := excelize.CoordinatesToCellName(1, issueStart+i)
		if err := fx.SetCellValue(sheet, cellRef, issue); err != nil {
			return err
		}
	}
	return fx.SetColWidth(sheet, "A", "B", 28)
}

func (r *ExcelReporter) writeBiasSheet(fx *excelize.File, sheet string, result *pipeline.RunResult, styles excelStyles) error {
	header := []interface{}{"Test", "Critical", "Passed", "Confidence", "Findings"}
	if err := fx.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	if err := fx.SetCellStyle(sheet, "A1", "E1", styles.header); err != nil {
		return err
	}

	rowNum := 2
	for _, id := range bias.TestOrder {
		res, ok := result.Bias.Result(id)
		if !ok {
			continue
		}
		findings := ""
		for i, f := range res.Findings {
			if i > 0 {
				findings += "; "
			}
			findings += f.String()
		}
		row := []interface{}{string(id), bias.IsCritical(id), res.Passed, res.Confidence, findings}
		cellRef, _ := excelize.CoordinatesToCellName(1, rowNum)
		if err := fx.SetSheetRow(sheet, cellRef, &row); err != nil {
			return err
		}
		if !res.Passed {
			start, _ := excelize.CoordinatesToCellName(1, rowNum)
			end, _ := excelize.CoordinatesToCellName(5, rowNum)
			if err := fx.SetCellStyle(sheet, start, end, styles.fail); err != nil {
				return err
			}
		}
		rowNum++
	}
	return fx.SetColWidth(sheet, "A", "E", 24)
}

func (r *ExcelReporter) writeFoldsSheet(fx *excelize.File, sheet string, result *pipeline.RunResult, styles excelStyles) error {
	header := []interface{}{"Fold", "Train Size", "Test Size", "Train Score", "Test Score", "Status"}
	if err := fx.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	if err := fx.SetCellStyle(sheet, "A1", "F1", styles.header); err != nil {
		return err
	}

	for i, fold := range result.WalkForward.Folds {
		status := "ok"
		if fold.Skipped {
			status = "skipped: " + fold.SkipReason
		}
		row := []interface{}{fold.Fold + 1, fold.TrainSize, fold.TestSize, fold.TrainScore, fold.TestScore, status}
		cellRef, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := fx.SetSheetRow(sheet, cellRef, &row); err != nil {
			return err
		}
	}

	m := result.WalkForward.Metrics
	summaryStart := len(result.WalkForward.Folds) + 3
	summary := [][]interface{}{
		{"Total Predictions", m.TotalPredictions},
		{"Accuracy", m.Accuracy},
		{"Precision", m.Precision},
		{"Recall", m.Recall},
		{"F1", m.F1},
	}
	for i, row := range summary {
		cellRef, _ := excelize.CoordinatesToCellName(1, summaryStart+i)
		if err := fx.SetSheetRow(sheet, cellRef, &row); err != nil {
			return err
		}
	}
	return fx.SetColWidth(sheet, "A", "F", 18)
}
