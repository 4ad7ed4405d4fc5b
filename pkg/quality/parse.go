package quality

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/quantguard/backtest-validator/pkg/data"
)

// record is a row mid-cleaning. Missing or rejected numeric fields are
// NaN until filled or the row is dropped.
type record struct {
	ts     time.Time
	open   float64
	high   float64
	low    float64
	close  float64
	volume float64
}

func (r *record) priceComplete() bool {
	return !math.IsNaN(r.open) && !math.IsNaN(r.high) && !math.IsNaN(r.low) && !math.IsNaN(r.close)
}

func (r *record) coherent() bool {
	if !r.priceComplete() {
		return false
	}
	if r.low > r.open || r.low > r.close || r.high < r.open || r.high < r.close {
		return false
	}
	return (r.high - r.low) >= math.Abs(r.close-r.open)
}

// timestampLayouts are tried in order when parsing datetime fields.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04:05",
	"2006.01.02 15:04:05",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"20060102",
}

func parseTimestamp(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	// Numeric values are unix epochs, possibly in milliseconds.
	if epoch, err := strconv.ParseInt(value, 10, 64); err == nil && epoch > 10_000_000 {
		if epoch > 1e12 {
			return time.UnixMilli(epoch).UTC(), true
		}
		return time.Unix(epoch, 0).UTC(), true
	}

	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}

// parseNumeric parses a price or volume field, tolerating comma
// decimal separators and blank fields. Returns NaN when unparseable.
func parseNumeric(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return math.NaN()
	}
	if strings.Contains(value, ",") && !strings.Contains(value, ".") {
		value = strings.ReplaceAll(value, ",", ".")
	} else {
		value = strings.ReplaceAll(value, ",", "")
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func cell(rec []string, schema data.Schema, field data.Field) (string, bool) {
	idx, ok := schema[field]
	if !ok || idx >= len(rec) {
		return "", false
	}
	return rec[idx], true
}

// parseRows maps raw records onto typed records using the detected
// schema. Rows without a parseable timestamp are dropped and counted;
// unparseable or out-of-range numeric fields become NaN and are
// resolved by the fill stage.
func (v *Validator) parseRows(table *data.RawTable, schema data.Schema, report *Report) []record {
	records := make([]record, 0, len(table.Records))
	droppedTimestamps := 0

	for _, raw := range table.Records {
		ts, ok := v.rowTimestamp(raw, schema)
		if !ok {
			droppedTimestamps++
			continue
		}

		rec := record{ts: ts}
		rec.open = v.parsePrice(raw, schema, data.FieldOpen, report)
		rec.high = v.parsePrice(raw, schema, data.FieldHigh, report)
		rec.low = v.parsePrice(raw, schema, data.FieldLow, report)
		rec.close = v.parsePrice(raw, schema, data.FieldClose, report)
		rec.volume = v.parseVolume(raw, schema, report)
		records = append(records, rec)
	}

	if droppedTimestamps > 0 {
		report.addIssue("unparseable timestamp: %d rows dropped", droppedTimestamps)
	}
	return records
}

func (v *Validator) rowTimestamp(raw []string, schema data.Schema) (time.Time, bool) {
	timeCell, hasTime := cell(raw, schema, data.FieldTime)
	dateCell, hasDate := cell(raw, schema, data.FieldDate)

	if hasDate && hasTime {
		if ts, ok := parseTimestamp(strings.TrimSpace(dateCell) + " " + strings.TrimSpace(timeCell)); ok {
			return ts, true
		}
	}
	if hasTime {
		if ts, ok := parseTimestamp(timeCell); ok {
			return ts, true
		}
	}
	if hasDate {
		if ts, ok := parseTimestamp(dateCell); ok {
			return ts, true
		}
	}
	return time.Time{}, false
}

func (v *Validator) parsePrice(raw []string, schema data.Schema, field data.Field, report *Report) float64 {
	cellValue, ok := cell(raw, schema, field)
	if !ok {
		report.MissingValues++
		return math.NaN()
	}
	price := parseNumeric(cellValue)
	if math.IsNaN(price) {
		report.MissingValues++
		return price
	}
	if price <= 0 || price > v.cfg.MaxPrice {
		report.MissingValues++
		return math.NaN()
	}
	return price
}

func (v *Validator) parseVolume(raw []string, schema data.Schema, report *Report) float64 {
	cellValue, ok := cell(raw, schema, data.FieldVolume)
	if !ok {
		report.MissingValues++
		return math.NaN()
	}
	volume := parseNumeric(cellValue)
	if math.IsNaN(volume) {
		report.MissingValues++
		return volume
	}
	if volume < 0 || volume > v.cfg.MaxVolume {
		report.MissingValues++
		return math.NaN()
	}
	return volume
}
