package data

import (
	"fmt"
	"strings"
)

// Field is a canonical column of the bar schema.
type Field string

const (
	FieldDate   Field = "date"
	FieldTime   Field = "time"
	FieldOpen   Field = "open"
	FieldHigh   Field = "high"
	FieldLow    Field = "low"
	FieldClose  Field = "close"
	FieldVolume Field = "volume"
)

// MinSchemaMatches is the minimum number of canonical fields that must
// be recognized in a header for the table to be accepted.
const MinSchemaMatches = 4

// canonicalFieldCount is the number of distinct canonical fields the
// synonym table can produce.
var canonicalFieldCount = func() int {
	seen := make(map[Field]struct{})
	for _, f := range columnSynonyms {
		seen[f] = struct{}{}
	}
	return len(seen)
}()

// columnSynonyms maps normalized source column names onto canonical
// fields. Matching is exact after normalization, not fuzzy.
var columnSynonyms = map[string]Field{
	"date":       FieldDate,
	"day":        FieldDate,
	"tradedate":  FieldDate,
	"time":       FieldTime,
	"timestamp":  FieldTime,
	"datetime":   FieldTime,
	"ts":         FieldTime,
	"opentime":   FieldTime,
	"open":       FieldOpen,
	"o":          FieldOpen,
	"openprice":  FieldOpen,
	"high":       FieldHigh,
	"h":          FieldHigh,
	"max":        FieldHigh,
	"highprice":  FieldHigh,
	"low":        FieldLow,
	"l":          FieldLow,
	"min":        FieldLow,
	"lowprice":   FieldLow,
	"close":      FieldClose,
	"c":          FieldClose,
	"last":       FieldClose,
	"closeprice": FieldClose,
	"settle":     FieldClose,
	"volume":     FieldVolume,
	"vol":        FieldVolume,
	"v":          FieldVolume,
	"qty":        FieldVolume,
	"quantity":   FieldVolume,
}

// Schema maps canonical fields to source column indices. A field
// absent from the map was not present in the header.
type Schema map[Field]int

// Has reports whether the field was recognized in the source header.
func (s Schema) Has(f Field) bool {
	_, ok := s[f]
	return ok
}

// HasTimestamp reports whether the schema can produce a timestamp,
// either from a combined datetime column or a separate date column.
func (s Schema) HasTimestamp() bool {
	return s.Has(FieldTime) || s.Has(FieldDate)
}

func normalizeColumn(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.NewReplacer(" ", "", "_", "", "-", "", ".", "").Replace(name)
	return name
}

// DetectSchema resolves a source header onto the canonical schema.
// The first occurrence of each canonical field wins. Headers matching
// fewer than MinSchemaMatches canonical fields are rejected.
func DetectSchema(header []string) (Schema, error) {
	schema := make(Schema, len(header))
	for i, col := range header {
		field, ok := columnSynonyms[normalizeColumn(col)]
		if !ok {
			continue
		}
		if _, seen := schema[field]; seen {
			continue
		}
		schema[field] = i
	}

	if len(schema) < MinSchemaMatches {
		return nil, fmt.Errorf("unrecognized table layout: matched %d of %d canonical fields (need %d), header=%v",
			len(schema), canonicalFieldCount, MinSchemaMatches, header)
	}
	if !schema.HasTimestamp() {
		return nil, fmt.Errorf("unrecognized table layout: no date or time column in header %v", header)
	}
	return schema, nil
}
