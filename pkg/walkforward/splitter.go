package walkforward

import "fmt"

// Scheme selects how the training window evolves fold over fold.
type Scheme int

const (
	// Expanding keeps the training start fixed; the window grows each
	// fold.
	Expanding Scheme = iota
	// Rolling slides a fixed-size training window forward.
	Rolling
)

func (s Scheme) String() string {
	if s == Rolling {
		return "rolling"
	}
	return "expanding"
}

// Fold is a pair of row-index ranges, half-open [start, end). The
// test range always lies strictly after the training range: no
// temporal overlap, no leakage.
type Fold struct {
	Index      int
	TrainStart int
	TrainEnd   int
	TestStart  int
	TestEnd    int
}

// TrainSize returns the number of training rows.
func (f Fold) TrainSize() int { return f.TrainEnd - f.TrainStart }

// TestSize returns the number of test rows.
func (f Fold) TestSize() int { return f.TestEnd - f.TestStart }

// GenerateFolds partitions [0, total) into up to nFolds sequential
// train/test splits. Test ranges are consecutive and disjoint, so the
// out-of-fold prediction series covers each evaluated row exactly
// once.
func GenerateFolds(total, nFolds, trainPeriod, testPeriod int, scheme Scheme) ([]Fold, error) {
	if trainPeriod <= 0 || testPeriod <= 0 {
		return nil, fmt.Errorf("train period %d and test period %d must be positive", trainPeriod, testPeriod)
	}
	if nFolds <= 0 {
		return nil, fmt.Errorf("fold count %d must be positive", nFolds)
	}
	if total <= trainPeriod {
		return nil, fmt.Errorf("%d rows cannot fit a training window of %d", total, trainPeriod)
	}

	var folds []Fold
	for i := 0; i < nFolds; i++ {
		testStart := trainPeriod + i*testPeriod
		if testStart >= total {
			break
		}
		testEnd := testStart + testPeriod
		if testEnd > total {
			testEnd = total
		}

		trainStart := 0
		if scheme == Rolling {
			trainStart = testStart - trainPeriod
		}

		folds = append(folds, Fold{
			Index:      i,
			TrainStart: trainStart,
			TrainEnd:   testStart,
			TestStart:  testStart,
			TestEnd:    testEnd,
		})
	}

	if len(folds) == 0 {
		return nil, fmt.Errorf("no folds fit %d rows with train %d / test %d", total, trainPeriod, testPeriod)
	}
	return folds, nil
}
