package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	verrors "github.com/quantguard/backtest-validator/internal/errors"
	"github.com/quantguard/backtest-validator/internal/monitoring"
	"github.com/quantguard/backtest-validator/pkg/config"
	"github.com/quantguard/backtest-validator/pkg/data"
	"github.com/quantguard/backtest-validator/pkg/features"
	"github.com/quantguard/backtest-validator/pkg/models"
	"github.com/quantguard/backtest-validator/pkg/pipeline"
	"github.com/quantguard/backtest-validator/pkg/reporting"
	"github.com/quantguard/backtest-validator/pkg/walkforward"
)

const (
	AppName    = "Backtest Validator"
	AppVersion = "1.0.0"
)

func main() {
	flags := NewValidateFlags()
	flag.Parse()

	if err := ValidateValidateFlags(flags); err != nil {
		fmt.Fprintf(os.Stderr, "flag validation error: %v\n", err)
		os.Exit(2)
	}

	if *flags.ShowVersion {
		fmt.Printf("%s v%s\n", AppName, AppVersion)
		return
	}
	if *flags.ShowHelp {
		flag.Usage()
		return
	}

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	loadEnvironment(*flags.EnvFile, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	health := monitoring.NewHealthChecker()
	if *flags.MetricsAddr != "" {
		startMonitoringServer(ctx, *flags.MetricsAddr, health, log)
	}

	if err := run(ctx, flags, health, log); err != nil {
		log.Error().Err(err).Msg("validation failed")
		os.Exit(exitCode(err))
	}
}

func startMonitoringServer(ctx context.Context, addr string, health *monitoring.HealthChecker, log zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", monitoring.NewMetricsHandler())
	mux.Handle("/healthz", health)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		log.Info().Str("addr", addr).Msg("monitoring server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn().Err(err).Msg("monitoring server stopped")
		}
	}()
	go func() {
		<-ctx.Done()
		srv.Close()
	}()
}

func run(ctx context.Context, flags *ValidateFlags, health *monitoring.HealthChecker, log zerolog.Logger) error {
	provider := data.NewCSVProvider()
	table, err := provider.LoadTable(*flags.DataFile)
	if err != nil {
		return fmt.Errorf("load data: %w", err)
	}
	log.Info().Str("file", *flags.DataFile).Int("rows", table.NumRows()).Msg("data loaded")

	cfg, runCfg, err := config.NewManager().LoadConfig(*flags.ConfigFile, buildConfig(flags))
	if err != nil {
		return err
	}

	labelHorizon, labelThreshold := *flags.LabelHorizon, *flags.LabelThreshold
	if runCfg.Label.Horizon != nil {
		labelHorizon = *runCfg.Label.Horizon
	}
	if runCfg.Label.Threshold != nil {
		labelThreshold = *runCfg.Label.Threshold
	}
	modelName := *flags.Model
	if runCfg.Model != nil {
		modelName = *runCfg.Model
	}

	labelFn := features.BinaryUpMove(labelHorizon, labelThreshold)
	factory := buildFactory(modelName)

	runner := pipeline.NewRunner(cfg, features.NewReferenceBuilder(), labelFn, factory, log)
	result, runErr := runner.Run(ctx, table)

	status := "ok"
	score := 0.0
	if runErr != nil {
		status = "failed"
	}
	if result != nil && result.Quality != nil {
		score = result.Quality.Score
	}
	health.RecordRun(status, score, runErr)

	// Render whatever reports were produced, even on a gated run.
	if result != nil {
		if err := reporting.NewConsoleReporter().Report(result); err != nil {
			log.Warn().Err(err).Msg("console report failed")
		}
		writeExports(flags, result, log)
	}

	return runErr
}

func buildConfig(flags *ValidateFlags) pipeline.Config {
	cfg := pipeline.DefaultConfig()

	cfg.Quality.MinRows = *flags.MinRows
	cfg.Quality.ScoreFloor = *flags.ScoreFloor

	cfg.Bias.Seed = *flags.Seed
	cfg.Bias.SampleSize = *flags.SampleSize

	cfg.WalkForward.NFolds = *flags.Folds
	cfg.WalkForward.TrainPeriod = *flags.TrainPeriod
	cfg.WalkForward.TestPeriod = *flags.TestPeriod
	cfg.WalkForward.MinFoldSamples = *flags.MinSamples
	cfg.WalkForward.Workers = *flags.Workers
	if strings.ToLower(*flags.Scheme) == "rolling" {
		cfg.WalkForward.Scheme = walkforward.Rolling
	}
	return cfg
}

func buildFactory(name string) models.Factory {
	if strings.ToLower(name) == "majority" {
		return models.MajorityClassFactory{}
	}
	return models.MomentumFactory{}
}

func writeExports(flags *ValidateFlags, result *pipeline.RunResult, log zerolog.Logger) {
	if *flags.JSONOut != "" {
		if err := reporting.NewJSONReporter().Write(result, *flags.JSONOut); err != nil {
			log.Warn().Err(err).Str("path", *flags.JSONOut).Msg("JSON export failed")
		} else {
			log.Info().Str("path", *flags.JSONOut).Msg("JSON report written")
		}
	}
	if *flags.CSVOut != "" && result.WalkForward != nil {
		if err := reporting.NewCSVReporter().Write(result, *flags.CSVOut); err != nil {
			log.Warn().Err(err).Str("path", *flags.CSVOut).Msg("CSV export failed")
		} else {
			log.Info().Str("path", *flags.CSVOut).Msg("prediction CSV written")
		}
	}
	if *flags.ExcelOut != "" {
		if err := reporting.NewExcelReporter().Write(result, *flags.ExcelOut); err != nil {
			log.Warn().Err(err).Str("path", *flags.ExcelOut).Msg("Excel export failed")
		} else {
			log.Info().Str("path", *flags.ExcelOut).Msg("Excel report written")
		}
	}
}

func loadEnvironment(envFile string, log zerolog.Logger) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			log.Warn().Err(err).Str("file", envFile).Msg("could not load env file")
		}
		return
	}
	// Best effort default; absence is normal.
	_ = godotenv.Load()
}

func exitCode(err error) int {
	switch {
	case verrors.IsIntegrityError(err):
		return 3
	case verrors.IsBiasViolation(err):
		return 4
	case verrors.IsInsufficientData(err):
		return 5
	}
	return 1
}
