package charts

import (
	"math"
	"sort"
	"strconv"
)

// Table is a two-way aggregate: Values[h][g] belongs to hue h within group g.
type Table struct {
	Groups []string
	Hues   []string
	Values [][]float64
}

// Order returns the distinct non-empty values of vals. Values named in
// preferred come first in that order; the rest follow numerically when every
// value parses as a number, else lexically.
func Order(vals []string, preferred []string) []string {
	seen := map[string]bool{}
	for _, v := range vals {
		if v != "" {
			seen[v] = true
		}
	}
	var out []string
	for _, p := range preferred {
		if seen[p] {
			out = append(out, p)
			delete(seen, p)
		}
	}
	rest := make([]string, 0, len(seen))
	numeric := true
	for v := range seen {
		rest = append(rest, v)
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			numeric = false
		}
	}
	if numeric {
		sort.Slice(rest, func(i, j int) bool {
			a, _ := strconv.ParseFloat(rest[i], 64)
			b, _ := strconv.ParseFloat(rest[j], 64)
			return a < b
		})
	} else {
		sort.Strings(rest)
	}
	return append(out, rest...)
}

func indexOf(order []string) map[string]int {
	m := make(map[string]int, len(order))
	for i, v := range order {
		m[v] = i
	}
	return m
}

// Shares counts rows per (group, hue) and divides by the group total, times
// scale. Rows with an empty group or hue are ignored. Empty groups yield zeros.
func Shares(groups, hues []string, groupOrder, hueOrder []string, scale float64) Table {
	gi, hi := indexOf(groupOrder), indexOf(hueOrder)
	counts := make([][]float64, len(hueOrder))
	for h := range counts {
		counts[h] = make([]float64, len(groupOrder))
	}
	totals := make([]float64, len(groupOrder))
	for i := range groups {
		g, okg := gi[groups[i]]
		h, okh := hi[hues[i]]
		if !okg || !okh {
			continue
		}
		counts[h][g]++
		totals[g]++
	}
	for h := range counts {
		for g := range counts[h] {
			if totals[g] > 0 {
				counts[h][g] = counts[h][g] / totals[g] * scale
			}
		}
	}
	return Table{Groups: groupOrder, Hues: hueOrder, Values: counts}
}

// Means averages vals per (group, hue), times scale. Cells without rows hold NaN.
func Means(groups, hues []string, vals []float64, groupOrder, hueOrder []string, scale float64) Table {
	gi, hi := indexOf(groupOrder), indexOf(hueOrder)
	sum := make([][]float64, len(hueOrder))
	cnt := make([][]float64, len(hueOrder))
	for h := range sum {
		sum[h] = make([]float64, len(groupOrder))
		cnt[h] = make([]float64, len(groupOrder))
	}
	for i := range groups {
		g, okg := gi[groups[i]]
		h, okh := hi[hues[i]]
		if !okg || !okh || math.IsNaN(vals[i]) {
			continue
		}
		sum[h][g] += vals[i]
		cnt[h][g]++
	}
	for h := range sum {
		for g := range sum[h] {
			if cnt[h][g] == 0 {
				sum[h][g] = math.NaN()
				continue
			}
			sum[h][g] = sum[h][g] / cnt[h][g] * scale
		}
	}
	return Table{Groups: groupOrder, Hues: hueOrder, Values: sum}
}

// constant returns a slice of n copies of s.
func constant(s string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = s
	}
	return out
}

// BMIGroups splits BMI at 25 into the two labels used by the activity chart.
// The result is transient and never stored in the dataset.
func BMIGroups(bmi []float64) []string {
	out := make([]string, len(bmi))
	for i, v := range bmi {
		switch {
		case math.IsNaN(v):
		case v < 25:
			out[i] = BMIUnder25
		default:
			out[i] = BMIOver25
		}
	}
	return out
}
