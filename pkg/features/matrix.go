// Package features defines the feature-matrix and label-series
// contracts consumed by the bias validator and walk-forward evaluator,
// plus a reference builder for common point-in-time indicators.
package features

import (
	"fmt"
	"math"
	"time"
)

// Kind declares the semantic of a feature column. The bias validator
// uses it to pick recomputation strategies and plausibility bounds.
type Kind string

const (
	KindReturn        Kind = "return"
	KindMovingAverage Kind = "moving_average"
	KindOscillator    Kind = "oscillator"
	KindVolatility    Kind = "volatility"
	KindOther         Kind = "other"
)

// ColumnMeta describes one feature column. Window is the number of
// bars of history the feature needs before it is defined; 0 means
// unknown.
type ColumnMeta struct {
	Name   string
	Kind   Kind
	Window int
}

// Matrix maps timestamps to a fixed set of named numeric features.
// Rows with insufficient history hold NaN rather than fabricated
// values. Every value at timestamp T must be computable from bars at
// or before T.
type Matrix struct {
	timestamps []time.Time
	order      []string
	meta       map[string]ColumnMeta
	values     map[string][]float64
}

// NewMatrix creates an empty matrix over the given timestamp index.
func NewMatrix(timestamps []time.Time) *Matrix {
	ts := make([]time.Time, len(timestamps))
	copy(ts, timestamps)
	return &Matrix{
		timestamps: ts,
		meta:       make(map[string]ColumnMeta),
		values:     make(map[string][]float64),
	}
}

// AddColumn attaches a feature column. The series must align with the
// timestamp index one-to-one.
func (m *Matrix) AddColumn(meta ColumnMeta, series []float64) error {
	if len(series) != len(m.timestamps) {
		return fmt.Errorf("column %s: series length %d does not match index length %d",
			meta.Name, len(series), len(m.timestamps))
	}
	if _, exists := m.values[meta.Name]; exists {
		return fmt.Errorf("column %s already present", meta.Name)
	}
	if meta.Kind == "" {
		meta.Kind = inferKind(meta.Name)
	}
	m.order = append(m.order, meta.Name)
	m.meta[meta.Name] = meta
	m.values[meta.Name] = series
	return nil
}

// Len returns the number of rows.
func (m *Matrix) Len() int {
	return len(m.timestamps)
}

// Columns returns column names in insertion order.
func (m *Matrix) Columns() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Meta returns the metadata of a column.
func (m *Matrix) Meta(name string) (ColumnMeta, bool) {
	meta, ok := m.meta[name]
	return meta, ok
}

// Column returns the value series of a column. The slice is shared;
// treat it as read-only.
func (m *Matrix) Column(name string) ([]float64, bool) {
	series, ok := m.values[name]
	return series, ok
}

// Value returns the value of column name at row i.
func (m *Matrix) Value(name string, i int) float64 {
	series, ok := m.values[name]
	if !ok || i < 0 || i >= len(series) {
		return math.NaN()
	}
	return series[i]
}

// Timestamp returns the timestamp of row i.
func (m *Matrix) Timestamp(i int) time.Time {
	return m.timestamps[i]
}

// Timestamps returns the timestamp index. The slice is shared; treat
// it as read-only.
func (m *Matrix) Timestamps() []time.Time {
	return m.timestamps
}

// inferKind guesses the column semantic from its naming convention,
// used when a builder supplies no explicit metadata.
func inferKind(name string) Kind {
	switch {
	case hasAnyPrefix(name, "ret", "return", "roc", "momentum"):
		return KindReturn
	case hasAnyPrefix(name, "sma", "ema", "wma", "hull", "ma_", "vwap"):
		return KindMovingAverage
	case hasAnyPrefix(name, "rsi", "stoch", "macd", "mfi", "cci"):
		return KindOscillator
	case hasAnyPrefix(name, "vol", "atr", "std", "bb_width"):
		return KindVolatility
	}
	return KindOther
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if len(s) >= len(p) && s[:len(p)] == p {
			return true
		}
	}
	return false
}
