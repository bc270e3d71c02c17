package analysis

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/KaramelBytes/glycoscope/internal/dataset"
	"github.com/KaramelBytes/glycoscope/internal/stats"
)

// CorrMatrix holds a symmetric Pearson correlation matrix across numeric columns.
// Undefined coefficients (constant columns, too few pairs) are NaN.
type CorrMatrix struct {
	Columns []string
	Values  [][]float64 // row-major, Values[i][j]
}

// PairCorr is a simple correlation pair summary.
type PairCorr struct {
	A, B string
	R    float64
}

// Correlations computes pairwise-complete Pearson correlations among all numeric columns.
func Correlations(ds *dataset.Dataset) *CorrMatrix {
	names := ds.NumericNames()
	cols := make([][]float64, len(names))
	for i, n := range names {
		cols[i], _ = ds.Numeric(n)
	}
	n := len(names)
	mat := make([][]float64, n)
	for i := range mat {
		mat[i] = make([]float64, n)
	}
	for a := 0; a < n; a++ {
		for b := a; b < n; b++ {
			var r float64
			if a == b {
				r = stats.Pearson(cols[a], cols[a])
				if !math.IsNaN(r) {
					r = 1
				}
			} else {
				r = stats.Pearson(cols[a], cols[b])
			}
			mat[a][b] = r
			mat[b][a] = r
		}
	}
	return &CorrMatrix{Columns: names, Values: mat}
}

// Index returns the position of a column in the matrix, or -1.
func (m *CorrMatrix) Index(name string) int {
	for i, c := range m.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Pairs lists the upper-triangle pairs ordered by |r| descending. NaN pairs are skipped.
func (m *CorrMatrix) Pairs() []PairCorr {
	var pairs []PairCorr
	n := len(m.Columns)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			r := m.Values[i][j]
			if math.IsNaN(r) {
				continue
			}
			pairs = append(pairs, PairCorr{A: m.Columns[i], B: m.Columns[j], R: r})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		ai := math.Abs(pairs[i].R)
		aj := math.Abs(pairs[j].R)
		if ai == aj {
			return pairs[i].A+pairs[i].B < pairs[j].A+pairs[j].B
		}
		return ai > aj
	})
	return pairs
}

// Ranked is a single entry of a correlation ranking.
type Ranked struct {
	Column string
	R      float64
}

// Ranking lists the strongest positive and negative correlates of a target column.
type Ranking struct {
	Target string
	// Positive is sorted descending by R.
	Positive []Ranked
	// Negative is sorted ascending by R.
	Negative []Ranked
	// All is every defined coefficient sorted descending.
	All []Ranked
}

// TopCorrelations ranks every other numeric column by its Pearson correlation
// with target and returns the k largest and k smallest coefficients. The
// target's self-correlation and undefined coefficients are excluded.
func TopCorrelations(ds *dataset.Dataset, target string, k int) (*Ranking, error) {
	y, err := ds.Numeric(target)
	if err != nil {
		return nil, fmt.Errorf("correlation target: %w", err)
	}
	if k <= 0 {
		return nil, fmt.Errorf("correlation top-k must be positive, got %d", k)
	}
	var all []Ranked
	for _, name := range ds.NumericNames() {
		if name == target {
			continue
		}
		x, _ := ds.Numeric(name)
		r := stats.Pearson(x, y)
		if math.IsNaN(r) {
			continue
		}
		all = append(all, Ranked{Column: name, R: r})
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].R > all[j].R })

	rk := &Ranking{Target: target, All: all}
	limit := k
	if limit > len(all) {
		limit = len(all)
	}
	rk.Positive = append(rk.Positive, all[:limit]...)
	for i := len(all) - 1; i >= len(all)-limit; i-- {
		rk.Negative = append(rk.Negative, all[i])
	}
	return rk, nil
}

// Fprint writes both lists in a console friendly layout.
func (r *Ranking) Fprint(w io.Writer) {
	fmt.Fprintf(w, "Top %d positive correlations with %s:\n", len(r.Positive), r.Target)
	for _, e := range r.Positive {
		fmt.Fprintf(w, "  %-40s %+.4f\n", e.Column, e.R)
	}
	fmt.Fprintf(w, "Top %d negative correlations with %s:\n", len(r.Negative), r.Target)
	for _, e := range r.Negative {
		fmt.Fprintf(w, "  %-40s %+.4f\n", e.Column, e.R)
	}
}
