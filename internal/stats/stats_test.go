package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuantileLinearInterpolation(t *testing.T) {
	sorted := []float64{1, 2, 3, 4}
	// pos = 0.25*3 = 0.75 -> 1 + 0.75*(2-1)
	assert.InDelta(t, 1.75, Quantile(sorted, 0.25), 1e-12)
	assert.InDelta(t, 2.5, Quantile(sorted, 0.5), 1e-12)
	assert.InDelta(t, 3.25, Quantile(sorted, 0.75), 1e-12)
	assert.Equal(t, 1.0, Quantile(sorted, 0))
	assert.Equal(t, 4.0, Quantile(sorted, 1))
	assert.True(t, math.IsNaN(Quantile(nil, 0.5)))
}

func TestQuantileOfIgnoresNaNAndOrder(t *testing.T) {
	vals := []float64{4, math.NaN(), 1, 3, 2}
	assert.InDelta(t, 2.5, QuantileOf(vals, 0.5), 1e-12)
	// input untouched
	assert.Equal(t, 4.0, vals[0])
}

func TestMeanStd(t *testing.T) {
	mean, std := MeanStd([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.InDelta(t, 5.0, mean, 1e-12)
	assert.InDelta(t, math.Sqrt(32.0/7.0), std, 1e-12)

	mean, std = MeanStd([]float64{3})
	assert.Equal(t, 3.0, mean)
	assert.True(t, math.IsNaN(std))
}

func TestPearsonPairwiseComplete(t *testing.T) {
	x := []float64{1, 2, 3, math.NaN(), 5}
	y := []float64{2, 4, 6, 100, 10}
	assert.InDelta(t, 1.0, Pearson(x, y), 1e-12)

	neg := []float64{5, 4, 3, 2, 1}
	assert.InDelta(t, -1.0, Pearson([]float64{1, 2, 3, 4, 5}, neg), 1e-12)

	assert.True(t, math.IsNaN(Pearson([]float64{1, 1, 1}, []float64{1, 2, 3})))
	assert.True(t, math.IsNaN(Pearson([]float64{1}, []float64{2})))
}
