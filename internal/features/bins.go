package features

import (
	"fmt"
	"math"
)

// Binning partitions a numeric domain into labelled, left-inclusive intervals.
// Edges must be strictly increasing and len(Labels) == len(Edges)-1.
type Binning struct {
	Edges  []float64
	Labels []string
}

// Validate checks the shape of the binning.
func (b Binning) Validate() error {
	if len(b.Edges) < 2 || len(b.Labels) != len(b.Edges)-1 {
		return fmt.Errorf("binning needs n+1 edges for n labels, got %d edges and %d labels", len(b.Edges), len(b.Labels))
	}
	for i := 1; i < len(b.Edges); i++ {
		if b.Edges[i] <= b.Edges[i-1] {
			return fmt.Errorf("binning edges must increase: %g after %g", b.Edges[i], b.Edges[i-1])
		}
	}
	return nil
}

// Index returns the bin of v: [e_i, e_i+1) with the last edge included in the
// last bin. It returns -1 for NaN and for values outside [first, last].
func (b Binning) Index(v float64) int {
	n := len(b.Edges)
	if math.IsNaN(v) || v < b.Edges[0] || v > b.Edges[n-1] {
		return -1
	}
	if v == b.Edges[n-1] {
		return n - 2
	}
	for i := 0; i < n-1; i++ {
		if v < b.Edges[i+1] {
			return i
		}
	}
	return -1
}

// Label returns the label of v's bin, or "" when v falls outside the domain.
func (b Binning) Label(v float64) string {
	i := b.Index(v)
	if i < 0 {
		return ""
	}
	return b.Labels[i]
}

// Cut labels every value.
func (b Binning) Cut(vals []float64) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = b.Label(v)
	}
	return out
}

// EqualWidth returns n bins of equal width over [lo, hi] labelled 1..n.
func EqualWidth(lo, hi float64, n int) Binning {
	edges := make([]float64, n+1)
	labels := make([]string, n)
	w := (hi - lo) / float64(n)
	for i := 0; i <= n; i++ {
		edges[i] = lo + float64(i)*w
	}
	edges[n] = hi
	for i := 0; i < n; i++ {
		labels[i] = fmt.Sprint(i + 1)
	}
	return Binning{Edges: edges, Labels: labels}
}

var (
	// DietLevels buckets diet_score into ten equal-width levels over [0,10].
	DietLevels = EqualWidth(0, 10, 10)

	AgeGroups = Binning{
		Edges:  []float64{0, 20, 30, 40, 50, 60, 70, 120},
		Labels: []string{"<20", "20-29", "30-39", "40-49", "50-59", "60-69", "70+"},
	}

	BMICategories = Binning{
		Edges:  []float64{0, 18.5, 25, 30, 100},
		Labels: []string{"Underweight", "Normal", "Overweight", "Obese"},
	}

	// ActivityLevels buckets weekly activity minutes.
	ActivityLevels = Binning{
		Edges:  []float64{0, 180, 480, 960},
		Labels: []string{"Low", "Moderate", "High"},
	}
)
