package features

import (
	"math"

	"github.com/quantguard/backtest-validator/pkg/types"
)

// Rolling indicator computations used by the reference builder. All of
// them are causal: the value at index i uses bars [0, i] only, and is
// NaN while the window has insufficient history.

func nanSeries(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}

// simpleReturn computes the h-bar simple close-to-close return.
func simpleReturn(bars types.BarStore, horizon int) []float64 {
	out := nanSeries(len(bars))
	for i := horizon; i < len(bars); i++ {
		prev := bars[i-horizon].Close
		if prev > 0 {
			out[i] = (bars[i].Close - prev) / prev
		}
	}
	return out
}

// sma computes the simple moving average of closes.
func sma(bars types.BarStore, period int) []float64 {
	out := nanSeries(len(bars))
	sum := 0.0
	for i, bar := range bars {
		sum += bar.Close
		if i >= period {
			sum -= bars[i-period].Close
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// ema computes the exponential moving average of closes, seeded with
// the SMA of the first period bars.
func ema(bars types.BarStore, period int) []float64 {
	out := nanSeries(len(bars))
	if len(bars) < period {
		return out
	}

	seed := 0.0
	for i := 0; i < period; i++ {
		seed += bars[i].Close
	}
	seed /= float64(period)
	out[period-1] = seed

	multiplier := 2.0 / float64(period+1)
	prev := seed
	for i := period; i < len(bars); i++ {
		prev = (bars[i].Close-prev)*multiplier + prev
		out[i] = prev
	}
	return out
}

// rsi computes the Wilder relative strength index of closes.
func rsi(bars types.BarStore, period int) []float64 {
	out := nanSeries(len(bars))
	if len(bars) <= period {
		return out
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := bars[i].Close - bars[i-1].Close
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsiValue(avgGain, avgLoss)

	for i := period + 1; i < len(bars); i++ {
		change := bars[i].Close - bars[i-1].Close
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// rollingStd computes the rolling sample standard deviation of 1-bar
// returns over the trailing period.
func rollingStd(bars types.BarStore, period int) []float64 {
	out := nanSeries(len(bars))
	rets := nanSeries(len(bars))
	for i := 1; i < len(bars); i++ {
		if bars[i-1].Close > 0 {
			rets[i] = (bars[i].Close - bars[i-1].Close) / bars[i-1].Close
		}
	}

	for i := period; i < len(bars); i++ {
		var sum, count float64
		for j := i - period + 1; j <= i; j++ {
			if !math.IsNaN(rets[j]) {
				sum += rets[j]
				count++
			}
		}
		if count < 2 {
			continue
		}
		mean := sum / count
		var variance float64
		for j := i - period + 1; j <= i; j++ {
			if !math.IsNaN(rets[j]) {
				d := rets[j] - mean
				variance += d * d
			}
		}
		out[i] = math.Sqrt(variance / (count - 1))
	}
	return out
}
