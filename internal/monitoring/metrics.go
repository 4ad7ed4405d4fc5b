package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Pipeline metrics
	runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "validator_runs_total",
			Help: "Total number of validation pipeline runs",
		},
		[]string{"status"},
	)

	qualityScore = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "validator_quality_score",
			Help: "Quality score of the most recent run",
		},
	)

	rowsDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "validator_rows_dropped_total",
			Help: "Total rows dropped during cleaning",
		},
	)

	// Bias metrics
	biasTestFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "validator_bias_test_failures_total",
			Help: "Total bias test failures by test",
		},
		[]string{"test"},
	)

	biasConfidence = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "validator_bias_confidence",
			Help: "Overall bias confidence of the most recent run",
		},
	)

	// Walk-forward metrics
	foldDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "validator_fold_duration_seconds",
			Help:    "Distribution of per-fold evaluation durations",
			Buckets: prometheus.DefBuckets,
		},
	)

	foldsSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "validator_folds_skipped_total",
			Help: "Total folds skipped for insufficient samples",
		},
	)
)

func init() {
	prometheus.MustRegister(runsTotal)
	prometheus.MustRegister(qualityScore)
	prometheus.MustRegister(rowsDropped)
	prometheus.MustRegister(biasTestFailures)
	prometheus.MustRegister(biasConfidence)
	prometheus.MustRegister(foldDuration)
	prometheus.MustRegister(foldsSkipped)
}

// MetricsHandler serves the Prometheus metrics endpoint.
type MetricsHandler struct{}

// NewMetricsHandler creates a new metrics handler.
func NewMetricsHandler() *MetricsHandler {
	return &MetricsHandler{}
}

// ServeHTTP serves the Prometheus metrics endpoint.
func (m *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// RecordRun records a completed pipeline run with its terminal status.
func RecordRun(status string) {
	runsTotal.WithLabelValues(status).Inc()
}

// UpdateQualityScore updates the quality score gauge.
func UpdateQualityScore(score float64) {
	qualityScore.Set(score)
}

// RecordRowsDropped adds to the dropped-row counter.
func RecordRowsDropped(count int) {
	rowsDropped.Add(float64(count))
}

// RecordBiasFailure records one failed bias test.
func RecordBiasFailure(test string) {
	biasTestFailures.WithLabelValues(test).Inc()
}

// UpdateBiasConfidence updates the overall bias confidence gauge.
func UpdateBiasConfidence(confidence float64) {
	biasConfidence.Set(confidence)
}

// ObserveFoldDuration records one fold's evaluation duration.
func ObserveFoldDuration(seconds float64) {
	foldDuration.Observe(seconds)
}

// RecordFoldSkipped records one skipped fold.
func RecordFoldSkipped() {
	foldsSkipped.Inc()
}
