package data

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantguard/backtest-validator/pkg/types"
)

func hourlyBars(n int) types.BarStore {
	base := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)
	bars := make(types.BarStore, n)
	for i := range bars {
		bars[i] = types.OHLCV{
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Open:      100, High: 101, Low: 99, Close: 100, Volume: 1000,
		}
	}
	return bars
}

func TestFilterByPeriod(t *testing.T) {
	filter := NewDefaultBarFilter()
	bars := hourlyBars(48)

	trailing := filter.FilterByPeriod(bars, 12*time.Hour)
	assert.Len(t, trailing, 13)
	assert.Equal(t, bars[len(bars)-1].Timestamp, trailing[len(trailing)-1].Timestamp)

	assert.Len(t, filter.FilterByPeriod(bars, 0), 48)
}

func TestFilterByDateRange(t *testing.T) {
	filter := NewDefaultBarFilter()
	bars := hourlyBars(24)

	start := bars[5].Timestamp
	end := bars[10].Timestamp
	ranged := filter.FilterByDateRange(bars, start, end)
	require.Len(t, ranged, 6)
	assert.Equal(t, start, ranged[0].Timestamp)
	assert.Equal(t, end, ranged[5].Timestamp)
}

func TestValidateTimeSequence(t *testing.T) {
	filter := NewDefaultBarFilter()
	bars := hourlyBars(10)
	assert.NoError(t, filter.ValidateTimeSequence(bars))

	duplicated := append(types.BarStore{}, bars...)
	duplicated[5].Timestamp = duplicated[4].Timestamp
	err := filter.ValidateTimeSequence(duplicated)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate timestamp")

	reversed := append(types.BarStore{}, bars...)
	reversed[3], reversed[4] = reversed[4], reversed[3]
	err = filter.ValidateTimeSequence(reversed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chronological order")
}

func TestFingerprint(t *testing.T) {
	table := &RawTable{
		Header:  []string{"timestamp", "close"},
		Records: [][]string{{"2023-01-02", "100"}},
	}

	fp1 := Fingerprint(table)
	fp2 := Fingerprint(table)
	assert.Equal(t, fp1, fp2)
	assert.Len(t, fp1, 64)

	changed := &RawTable{
		Header:  []string{"timestamp", "close"},
		Records: [][]string{{"2023-01-02", "101"}},
	}
	assert.NotEqual(t, fp1, Fingerprint(changed))
}
