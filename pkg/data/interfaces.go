package data

import (
	"time"

	"github.com/quantguard/backtest-validator/pkg/types"
)

// RawTable is an unvalidated tabular payload as delivered by an
// external loader: a header row plus string records. Column meaning is
// resolved later by schema detection.
type RawTable struct {
	Header  []string
	Records [][]string
}

// NumRows returns the number of data records in the table.
func (t *RawTable) NumRows() int {
	return len(t.Records)
}

// TableProvider loads raw tabular market data from a source.
type TableProvider interface {
	// LoadTable loads an unvalidated table from the specified source.
	LoadTable(source string) (*RawTable, error)

	// GetName returns the name of the provider.
	GetName() string
}

// BarFilter filters and checks ordered bar data.
type BarFilter interface {
	// FilterByPeriod keeps the trailing period of data.
	FilterByPeriod(bars types.BarStore, period time.Duration) types.BarStore

	// FilterByDateRange keeps data within [start, end].
	FilterByDateRange(bars types.BarStore, start, end time.Time) types.BarStore

	// ValidateTimeSequence ensures data is in strict chronological order.
	ValidateTimeSequence(bars types.BarStore) error
}
