// Package stats holds the small numeric helpers shared by the loader, the outlier
// filter and the reporting layer. Missing values are NaN throughout.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Finite returns the non-NaN values of vals in their input order.
func Finite(vals []float64) []float64 {
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// Sorted returns a sorted copy of the non-NaN values.
func Sorted(vals []float64) []float64 {
	cp := Finite(vals)
	sort.Float64s(cp)
	return cp
}

// Quantile returns the q-th quantile of an ascending slice using linear
// interpolation between the two nearest ranks (position q*(n-1)).
func Quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

// QuantileOf is Quantile over unsorted values that may contain NaN.
func QuantileOf(vals []float64, q float64) float64 {
	return Quantile(Sorted(vals), q)
}

// MeanStd returns the mean and the sample (n-1) standard deviation of the
// non-NaN values. Std is NaN for fewer than two values.
func MeanStd(vals []float64) (mean, std float64) {
	x := Finite(vals)
	switch len(x) {
	case 0:
		return math.NaN(), math.NaN()
	case 1:
		return x[0], math.NaN()
	}
	return stat.MeanStdDev(x, nil)
}

// Pearson returns the Pearson correlation of x and y over the rows where both are
// present. It is NaN when fewer than two complete pairs exist or either side is
// constant.
func Pearson(x, y []float64) float64 {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	xs := make([]float64, 0, n)
	ys := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < 2 || constant(xs) || constant(ys) {
		return math.NaN()
	}
	r := stat.Correlation(xs, ys, nil)
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r
}

func constant(x []float64) bool {
	for _, v := range x[1:] {
		if v != x[0] {
			return false
		}
	}
	return true
}
