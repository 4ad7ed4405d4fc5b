package features

import (
	"fmt"

	"github.com/quantguard/backtest-validator/pkg/types"
)

// Builder produces a feature matrix from validated bars. Implementors
// must honor the no-forward-reference contract: the value at row i may
// use bars [0, i] only.
type Builder interface {
	Build(bars types.BarStore) (*Matrix, error)
}

// ReferenceBuilder computes a standard set of causal indicators:
// returns at several horizons, moving averages, RSI and realized
// volatility. It exists so the pipeline is runnable end-to-end and
// doubles as a known-good baseline in tests.
type ReferenceBuilder struct {
	ReturnHorizons []int
	SMAPeriods     []int
	EMAPeriods     []int
	RSIPeriod      int
	VolPeriod      int
}

// NewReferenceBuilder creates a builder with conventional periods.
func NewReferenceBuilder() *ReferenceBuilder {
	return &ReferenceBuilder{
		ReturnHorizons: []int{1, 5},
		SMAPeriods:     []int{10, 20},
		EMAPeriods:     []int{12},
		RSIPeriod:      14,
		VolPeriod:      20,
	}
}

// Build computes the feature matrix over the bar index.
func (b *ReferenceBuilder) Build(bars types.BarStore) (*Matrix, error) {
	if len(bars) == 0 {
		return nil, fmt.Errorf("no bars to build features from")
	}

	m := NewMatrix(bars.Timestamps())

	for _, h := range b.ReturnHorizons {
		meta := ColumnMeta{Name: fmt.Sprintf("ret_%d", h), Kind: KindReturn, Window: h + 1}
		if err := m.AddColumn(meta, simpleReturn(bars, h)); err != nil {
			return nil, err
		}
	}
	for _, p := range b.SMAPeriods {
		meta := ColumnMeta{Name: fmt.Sprintf("sma_%d", p), Kind: KindMovingAverage, Window: p}
		if err := m.AddColumn(meta, sma(bars, p)); err != nil {
			return nil, err
		}
	}
	for _, p := range b.EMAPeriods {
		meta := ColumnMeta{Name: fmt.Sprintf("ema_%d", p), Kind: KindMovingAverage, Window: p}
		if err := m.AddColumn(meta, ema(bars, p)); err != nil {
			return nil, err
		}
	}
	if b.RSIPeriod > 0 {
		meta := ColumnMeta{Name: fmt.Sprintf("rsi_%d", b.RSIPeriod), Kind: KindOscillator, Window: b.RSIPeriod + 1}
		if err := m.AddColumn(meta, rsi(bars, b.RSIPeriod)); err != nil {
			return nil, err
		}
	}
	if b.VolPeriod > 0 {
		meta := ColumnMeta{Name: fmt.Sprintf("vol_%d", b.VolPeriod), Kind: KindVolatility, Window: b.VolPeriod + 1}
		if err := m.AddColumn(meta, rollingStd(bars, b.VolPeriod)); err != nil {
			return nil, err
		}
	}
	return m, nil
}
