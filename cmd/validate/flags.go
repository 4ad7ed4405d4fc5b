package main

import (
	"flag"
	"fmt"
	"strings"
)

// ValidateFlags holds all command line flags for the validate command.
type ValidateFlags struct {
	// Input
	DataFile   *string
	ConfigFile *string
	EnvFile    *string

	// Quality gates
	MinRows    *int
	ScoreFloor *float64

	// Bias validation
	Seed       *int64
	SampleSize *int

	// Walk-forward evaluation
	Folds       *int
	TrainPeriod *int
	TestPeriod  *int
	Scheme      *string
	MinSamples  *int
	Workers     *int

	// Labels
	LabelHorizon   *int
	LabelThreshold *float64

	// Model
	Model *string

	// Output
	JSONOut  *string
	CSVOut   *string
	ExcelOut *string

	// Misc
	MetricsAddr *string
	ShowVersion *bool
	ShowHelp    *bool
}

// NewValidateFlags registers all flags and returns the container.
func NewValidateFlags() *ValidateFlags {
	return &ValidateFlags{
		DataFile:   flag.String("data", "", "Path to OHLCV CSV file (required)"),
		ConfigFile: flag.String("config", "", "Optional JSON run config; overrides other flags"),
		EnvFile:    flag.String("env", "", "Optional .env file to load"),

		MinRows:    flag.Int("min-rows", 100, "Minimum retained rows after cleaning"),
		ScoreFloor: flag.Float64("score-floor", 0.5, "Quality score floor; lower aborts the run"),

		Seed:       flag.Int64("seed", 42, "Seed for deterministic bias-test sampling"),
		SampleSize: flag.Int("sample-size", 50, "Timestamps sampled per bias test"),

		Folds:       flag.Int("folds", 5, "Number of walk-forward folds"),
		TrainPeriod: flag.Int("train-period", 504, "Training partition size in rows"),
		TestPeriod:  flag.Int("test-period", 126, "Test partition size in rows"),
		Scheme:      flag.String("scheme", "expanding", "Training window scheme: expanding or rolling"),
		MinSamples:  flag.Int("min-fold-samples", 30, "Minimum viable rows per fold partition"),
		Workers:     flag.Int("workers", 0, "Fold evaluation parallelism (0 = CPU count)"),

		LabelHorizon:   flag.Int("label-horizon", 5, "Forward horizon in bars for the binary label"),
		LabelThreshold: flag.Float64("label-threshold", 0.02, "Forward return threshold for label 1"),

		Model: flag.String("model", "momentum", "Model to evaluate: momentum or majority"),

		JSONOut:  flag.String("json-out", "", "Write full report JSON to this path"),
		CSVOut:   flag.String("csv-out", "", "Write out-of-fold predictions CSV to this path"),
		ExcelOut: flag.String("excel-out", "", "Write report workbook to this path"),

		MetricsAddr: flag.String("metrics-addr", "", "Serve /metrics and /healthz on this address (e.g. :9100)"),

		ShowVersion: flag.Bool("version", false, "Show version and exit"),
		ShowHelp:    flag.Bool("help", false, "Show usage help"),
	}
}

// ValidateValidateFlags checks flag consistency before the run starts.
func ValidateValidateFlags(flags *ValidateFlags) error {
	if *flags.ShowVersion || *flags.ShowHelp {
		return nil
	}
	if strings.TrimSpace(*flags.DataFile) == "" {
		return fmt.Errorf("-data is required")
	}
	if *flags.Folds < 1 {
		return fmt.Errorf("-folds must be at least 1, got %d", *flags.Folds)
	}
	if *flags.TrainPeriod < 1 || *flags.TestPeriod < 1 {
		return fmt.Errorf("-train-period and -test-period must be positive")
	}
	switch strings.ToLower(*flags.Scheme) {
	case "expanding", "rolling":
	default:
		return fmt.Errorf("-scheme must be expanding or rolling, got %q", *flags.Scheme)
	}
	switch strings.ToLower(*flags.Model) {
	case "momentum", "majority":
	default:
		return fmt.Errorf("-model must be momentum or majority, got %q", *flags.Model)
	}
	if *flags.ScoreFloor < 0 || *flags.ScoreFloor > 1 {
		return fmt.Errorf("-score-floor must be in [0,1], got %g", *flags.ScoreFloor)
	}
	if *flags.LabelHorizon < 1 {
		return fmt.Errorf("-label-horizon must be positive, got %d", *flags.LabelHorizon)
	}
	return nil
}
