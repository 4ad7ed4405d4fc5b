package bias

import "math"

// Statistics helpers shared by the bias tests. All of them skip NaN
// pairs so partially-defined feature columns can be tested directly.

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stdDev(values []float64) float64 {
	if len(values) <= 1 {
		return 0
	}
	avg := mean(values)
	sumSquares := 0.0
	for _, v := range values {
		d := v - avg
		sumSquares += d * d
	}
	return math.Sqrt(sumSquares / float64(len(values)-1))
}

// pearson computes the correlation of x and y over indices where both
// are finite. Returns 0 when fewer than 3 valid pairs or either side
// is constant.
func pearson(x, y []float64) float64 {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}

	var xs, ys []float64
	for i := 0; i < n; i++ {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) || math.IsInf(x[i], 0) || math.IsInf(y[i], 0) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < 3 {
		return 0
	}

	mx, my := mean(xs), mean(ys)
	var cov, vx, vy float64
	for i := range xs {
		dx := xs[i] - mx
		dy := ys[i] - my
		cov += dx * dy
		vx += dx * dx
		vy += dy * dy
	}
	if vx == 0 || vy == 0 {
		return 0
	}
	return cov / math.Sqrt(vx*vy)
}

// skewness computes the sample skewness of values.
func skewness(values []float64) float64 {
	n := float64(len(values))
	if n < 3 {
		return 0
	}
	m := mean(values)
	s := stdDev(values)
	if s == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		d := (v - m) / s
		sum += d * d * d
	}
	return sum * n / ((n - 1) * (n - 2))
}

// excessKurtosis computes the sample excess kurtosis of values.
func excessKurtosis(values []float64) float64 {
	n := float64(len(values))
	if n < 4 {
		return 0
	}
	m := mean(values)
	s := stdDev(values)
	if s == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		d := (v - m) / s
		sum += d * d * d * d
	}
	return sum*n*(n+1)/((n-1)*(n-2)*(n-3)) - 3*(n-1)*(n-1)/((n-2)*(n-3))
}

// maxDrawdown computes the deepest peak-to-trough decline of a price
// series, as a positive fraction.
func maxDrawdown(prices []float64) float64 {
	peak := math.Inf(-1)
	deepest := 0.0
	for _, p := range prices {
		if p > peak {
			peak = p
		}
		if peak > 0 {
			dd := (peak - p) / peak
			if dd > deepest {
				deepest = dd
			}
		}
	}
	return deepest
}

// coefficientOfVariation returns stddev/mean, 0 when the mean is 0.
func coefficientOfVariation(values []float64) float64 {
	m := mean(values)
	if m == 0 {
		return 0
	}
	return stdDev(values) / math.Abs(m)
}

func finiteValues(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}
