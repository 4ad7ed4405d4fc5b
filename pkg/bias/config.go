package bias

// Config holds the tunable thresholds of the bias validator. Defaults
// follow common practice but are heuristics; treat them as starting
// points and calibrate against known-clean datasets.
type Config struct {
	// Seed drives all sampling so test outcomes are reproducible.
	Seed int64

	// SampleSize bounds how many timestamps the look-ahead and
	// point-in-time tests recompute.
	SampleSize int

	// ReturnTolerance and MATolerance bound the acceptable relative
	// error when recomputing declared features from prefix data.
	ReturnTolerance float64
	MATolerance     float64

	// FutureCorrFail and FutureCorrSuspicious classify the magnitude
	// of correlation between a feature and future returns.
	FutureCorrFail       float64
	FutureCorrSuspicious float64

	// FutureHorizons are the forward-return horizons tested.
	FutureHorizons []int

	// MinIndexOverlap is the required timestamp overlap between the
	// feature matrix and the label series / bar store.
	MinIndexOverlap float64

	// PointInTimePassRate is the fraction of sampled point-in-time
	// checks that must succeed.
	PointInTimePassRate float64

	// Selection-bias thresholds.
	MaxLargeGapFraction   float64
	MaxZeroVolumeFraction float64
	MinVolumeCV           float64
	MinWeekdayShare       float64
	GapFactor             float64

	// Survivorship-bias plausibility bounds.
	MinAnnualVol    float64
	MaxAnnualVol    float64
	MinMaxDrawdown  float64
	MaxNormalSkew   float64
	MaxNormalKurt   float64
	MaxSuspicious   int

	// Data-snooping thresholds.
	SnoopSingleCorr     float64
	SnoopMeanCorr       float64
	SnoopSuspiciousCorr float64
	SnoopMaxSuspicious  float64
}

// DefaultConfig returns the default bias validator configuration.
func DefaultConfig() Config {
	return Config{
		Seed:                 42,
		SampleSize:           50,
		ReturnTolerance:      1e-4,
		MATolerance:          1e-3,
		FutureCorrFail:       0.5,
		FutureCorrSuspicious: 0.3,
		FutureHorizons:       []int{1, 2, 5, 10},
		MinIndexOverlap:      0.8,
		PointInTimePassRate:  0.9,

		MaxLargeGapFraction:   0.10,
		MaxZeroVolumeFraction: 0.20,
		MinVolumeCV:           0.1,
		MinWeekdayShare:       0.05,
		GapFactor:             10,

		MinAnnualVol:   0.05,
		MaxAnnualVol:   2.0,
		MinMaxDrawdown: 0.02,
		MaxNormalSkew:  0.1,
		MaxNormalKurt:  0.5,
		MaxSuspicious:  1,

		SnoopSingleCorr:     0.8,
		SnoopMeanCorr:       0.4,
		SnoopSuspiciousCorr: 0.7,
		SnoopMaxSuspicious:  0.2,
	}
}
