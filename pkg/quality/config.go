package quality

// Config holds the tunable thresholds of the quality validator. All
// defaults are heuristic starting points, not physical constants;
// validate them against known-clean datasets before tightening.
type Config struct {
	// MinRows is the minimum number of retained rows required for a
	// usable dataset.
	MinRows int

	// ScoreFloor aborts the pipeline when the quality score falls
	// below it.
	ScoreFloor float64

	// MaxPrice and MaxVolume bound plausible values; fields outside
	// the bounds are nulled, not kept.
	MaxPrice  float64
	MaxVolume float64

	// HardOutlierSigma drops a row whose bar-to-bar return exceeds
	// this multiple of the local return standard deviation.
	// SoftOutlierSigma only flags it.
	HardOutlierSigma float64
	SoftOutlierSigma float64

	// OutlierWindow is the trailing window used for local return
	// statistics and the local price median.
	OutlierWindow int

	// ScaleErrorFactor drops rows whose price is this factor above
	// (or 1/factor below) the local median, indicating unit or
	// decimal-point errors.
	ScaleErrorFactor float64

	// GapFactor reports timestamp gaps exceeding this multiple of the
	// typical inter-bar interval.
	GapFactor float64

	// MaxFillRun bounds the length of consecutive missing price
	// values eligible for forward fill.
	MaxFillRun int
}

// DefaultConfig returns the default quality validator configuration.
func DefaultConfig() Config {
	return Config{
		MinRows:          100,
		ScoreFloor:       0.5,
		MaxPrice:         1_000_000,
		MaxVolume:        1e12,
		HardOutlierSigma: 10,
		SoftOutlierSigma: 5,
		OutlierWindow:    20,
		ScaleErrorFactor: 100,
		GapFactor:        10,
		MaxFillRun:       3,
	}
}
