package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectSchema_StandardHeader(t *testing.T) {
	schema, err := DetectSchema([]string{"timestamp", "open", "high", "low", "close", "volume"})
	require.NoError(t, err)

	assert.Equal(t, 0, schema[FieldTime])
	assert.Equal(t, 1, schema[FieldOpen])
	assert.Equal(t, 5, schema[FieldVolume])
	assert.True(t, schema.HasTimestamp())
}

func TestDetectSchema_SynonymsAndCase(t *testing.T) {
	schema, err := DetectSchema([]string{"Trade_Date", "Open Price", "Max", "Min", "Settle", "Qty"})
	require.NoError(t, err)

	assert.True(t, schema.Has(FieldDate))
	assert.True(t, schema.Has(FieldOpen))
	assert.True(t, schema.Has(FieldHigh))
	assert.True(t, schema.Has(FieldLow))
	assert.True(t, schema.Has(FieldClose))
	assert.True(t, schema.Has(FieldVolume))
}

func TestDetectSchema_FirstOccurrenceWins(t *testing.T) {
	schema, err := DetectSchema([]string{"date", "close", "last", "open", "high", "low"})
	require.NoError(t, err)

	assert.Equal(t, 1, schema[FieldClose])
}

func TestDetectSchema_TooFewMatches(t *testing.T) {
	_, err := DetectSchema([]string{"foo", "bar", "close", "volume"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unrecognized table layout")
	assert.Contains(t, err.Error(), "matched 2 of 7 canonical fields")
}

func TestCanonicalFieldCount(t *testing.T) {
	fields := []Field{FieldDate, FieldTime, FieldOpen, FieldHigh, FieldLow, FieldClose, FieldVolume}
	assert.Equal(t, len(fields), canonicalFieldCount)
}

func TestDetectSchema_NoTimestampColumn(t *testing.T) {
	_, err := DetectSchema([]string{"open", "high", "low", "close", "volume"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no date or time column")
}

func TestNormalizeColumn(t *testing.T) {
	assert.Equal(t, "tradedate", normalizeColumn("  Trade_Date "))
	assert.Equal(t, "closeprice", normalizeColumn("Close-Price"))
	assert.Equal(t, "vol", normalizeColumn("VOL."))
}
