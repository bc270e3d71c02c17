package analysis

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/KaramelBytes/glycoscope/internal/dataset"
	"github.com/KaramelBytes/glycoscope/internal/features"
	"github.com/KaramelBytes/glycoscope/internal/outliers"
	"github.com/KaramelBytes/glycoscope/internal/stats"
)

// ColDiagnosed holds the 0/1 diagnosis flag used for per-level diagnosis rates.
const ColDiagnosed = "diagnosed_diabetes"

// maxCell bounds sample cells, in runes.
const maxCell = 80

// Options controls the dataset report.
type Options struct {
	SampleRows int
	// GroupBy splits the report by these columns (engineered ones included).
	GroupBy []string
	// Target is the column correlations are ranked against; empty skips the section.
	Target string
	TopK   int
	// Ranges enables the valid-range section; nil skips it.
	Ranges outliers.Ranges
	// Engineer derives risk categories and metabolic indices on a copy of the
	// data when the source columns are present.
	Engineer bool
}

// DefaultOptions returns the settings used by the describe command.
func DefaultOptions() Options {
	return Options{
		SampleRows: 5,
		Target:     "diabetes_risk_score",
		TopK:       5,
		Ranges:     outliers.DefaultRanges(),
		Engineer:   true,
	}
}

// Report is a clinical overview of one dataset.
type Report struct {
	Name     string
	Rows     int
	Numeric  []NumericSummary
	Labels   []LabelSummary
	Ranges   []RangeCheck
	InRange  int
	Risk     []Breakdown
	Indices  []NumericSummary
	Ranking  *Ranking
	Groups   []GroupResult
	Samples  [][]string
	Header   []string
	Warnings []string
}

// NumericSummary is the describe() row of a numeric column plus its missing count.
type NumericSummary struct {
	dataset.Describe
	Missing int
}

// LabelSummary lists the most frequent values of a categorical column.
type LabelSummary struct {
	Name    string
	Missing int
	Unique  int
	Top     []LevelCount
}

// RangeCheck is the valid-range and IQR screen of one column.
type RangeCheck struct {
	Column      string
	Bound       outliers.Range
	OutOfRange  int
	Fences      outliers.Fences
	IQROutliers int
}

// LevelCount is one level of a categorical column. Diagnosed is the share of
// diagnosed rows in the level (NaN when the diagnosis flag is absent).
type LevelCount struct {
	Level     string
	Rows      int
	Diagnosed float64
}

// Breakdown is the level distribution of one risk category column.
type Breakdown struct {
	Column string
	Levels []LevelCount
}

// GroupResult summarizes the rows sharing one combination of group-by values.
type GroupResult struct {
	Key        string
	Size       int
	Diagnosed  float64
	TargetMean float64
}

var riskColumns = []struct {
	name   string
	levels []string
}{
	{features.ColAgeGroup, features.AgeGroups.Labels},
	{features.ColBMICategory, features.BMICategories.Labels},
	{features.ColActivityLevel, features.ActivityLevels.Labels},
	{features.ColDietLevel, features.DietLevels.Labels},
}

var indexColumns = []string{features.ColTyG, features.ColHOMAIR, features.ColQUICKI, features.ColAIP}

// Summarize builds a Report over an in-memory dataset. Problems that only
// affect one section are recorded as warnings; unknown group-by columns fail.
func Summarize(ds *dataset.Dataset, opt Options) (*Report, error) {
	rep := &Report{Name: ds.Name, Rows: ds.Len(), Header: ds.Names()}
	n := opt.SampleRows
	if n <= 0 {
		n = 5
	}
	for i := 0; i < ds.Len() && i < n; i++ {
		rep.Samples = append(rep.Samples, ds.Row(i))
	}
	for _, c := range ds.Columns() {
		missing := 0
		for i := 0; i < c.Len(); i++ {
			if c.IsMissing(i) {
				missing++
			}
		}
		if c.Kind == dataset.Numeric {
			rep.Numeric = append(rep.Numeric, NumericSummary{Describe: dataset.DescribeColumn(c), Missing: missing})
			continue
		}
		top := countLevels(c.Str, nil, nil)
		ls := LabelSummary{Name: c.Name, Missing: missing, Unique: len(top)}
		if len(top) > 8 {
			top = top[:8]
		}
		ls.Top = top
		rep.Labels = append(rep.Labels, ls)
	}
	if rep.Rows == 0 {
		rep.Warnings = append(rep.Warnings, "dataset has no rows")
	}

	if opt.Ranges != nil {
		rep.screenRanges(ds, opt.Ranges)
	}

	work := ds
	if opt.Engineer && !ds.Has(features.ColAgeGroup) {
		enriched := ds.Clone()
		if _, err := features.Engineer(enriched); err != nil {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("risk categories unavailable: %v", err))
		} else {
			work = enriched
		}
	}
	diagnosed, _ := work.Numeric(ColDiagnosed)
	for _, rc := range riskColumns {
		vals, err := work.Labels(rc.name)
		if err != nil {
			continue
		}
		rep.Risk = append(rep.Risk, Breakdown{Column: rc.name, Levels: countLevels(vals, rc.levels, diagnosed)})
	}
	for _, name := range indexColumns {
		if c, err := work.Column(name); err == nil && c.Kind == dataset.Numeric {
			rep.Indices = append(rep.Indices, NumericSummary{Describe: dataset.DescribeColumn(c), Missing: len(c.Num) - len(stats.Finite(c.Num))})
		}
	}

	if opt.Target != "" && work.Has(opt.Target) && rep.Rows > 0 {
		k := opt.TopK
		if k <= 0 {
			k = 5
		}
		rk, err := TopCorrelations(work, opt.Target, k)
		if err != nil {
			rep.Warnings = append(rep.Warnings, err.Error())
		} else {
			rep.Ranking = rk
		}
	}

	if len(opt.GroupBy) > 0 {
		groups, err := groupBy(work, opt.GroupBy, opt.Target, diagnosed)
		if err != nil {
			return nil, err
		}
		rep.Groups = groups
	}
	return rep, nil
}

func (rep *Report) screenRanges(ds *dataset.Dataset, ranges outliers.Ranges) {
	res, err := outliers.Detect(ds, ranges)
	if errors.Is(err, outliers.ErrNotNumeric) {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("valid-range screen skipped: %v", err))
		return
	}
	if err != nil {
		rep.Warnings = append(rep.Warnings, err.Error())
		return
	}
	for _, name := range ranges.Columns() {
		f, ok := res.Fences[name]
		if !ok {
			continue
		}
		rep.Ranges = append(rep.Ranges, RangeCheck{
			Column:      name,
			Bound:       ranges[name],
			OutOfRange:  res.Range[name],
			Fences:      f,
			IQROutliers: res.IQR[name],
		})
	}
	rep.InRange = res.Dataset.Len()
	if len(res.Skipped) > 0 && len(rep.Ranges) > 0 {
		rep.Warnings = append(rep.Warnings, "range columns not in file: "+strings.Join(res.Skipped, ", "))
	}
}

// countLevels tallies non-empty values. With an order the levels follow it and
// keep zero counts; otherwise they are sorted by frequency.
func countLevels(vals, order []string, diagnosed []float64) []LevelCount {
	idx := map[string]int{}
	var out []LevelCount
	for _, l := range order {
		idx[l] = len(out)
		out = append(out, LevelCount{Level: l})
	}
	pos := make([]int, len(out))
	seen := make([]int, len(out))
	for i, v := range vals {
		if v == "" {
			continue
		}
		j, ok := idx[v]
		if !ok {
			j = len(out)
			idx[v] = j
			out = append(out, LevelCount{Level: v})
			pos = append(pos, 0)
			seen = append(seen, 0)
		}
		out[j].Rows++
		if diagnosed != nil && !math.IsNaN(diagnosed[i]) {
			seen[j]++
			if diagnosed[i] == 1 {
				pos[j]++
			}
		}
	}
	for j := range out {
		out[j].Diagnosed = rate(pos[j], seen[j])
	}
	if order == nil {
		sort.SliceStable(out, func(a, b int) bool {
			if out[a].Rows == out[b].Rows {
				return out[a].Level < out[b].Level
			}
			return out[a].Rows > out[b].Rows
		})
	}
	return out
}

func rate(pos, n int) float64 {
	if n == 0 {
		return math.NaN()
	}
	return 100 * float64(pos) / float64(n)
}

func groupBy(ds *dataset.Dataset, names []string, target string, diagnosed []float64) ([]GroupResult, error) {
	cols := make([]string, len(names))
	keys := make([][]string, len(names))
	for j, name := range names {
		cols[j] = strings.TrimSpace(name)
		vals, err := ds.Labels(cols[j])
		if err != nil {
			return nil, fmt.Errorf("group by: %w", err)
		}
		keys[j] = vals
	}
	y, _ := ds.Numeric(target)

	type acc struct {
		size, pos, seen, ny int
		sum                 float64
	}
	groups := map[string]*acc{}
	parts := make([]string, len(cols))
	for i := 0; i < ds.Len(); i++ {
		for j := range cols {
			parts[j] = cols[j] + "=" + keys[j][i]
		}
		k := strings.Join(parts, ", ")
		g := groups[k]
		if g == nil {
			g = &acc{}
			groups[k] = g
		}
		g.size++
		if diagnosed != nil && !math.IsNaN(diagnosed[i]) {
			g.seen++
			if diagnosed[i] == 1 {
				g.pos++
			}
		}
		if y != nil && !math.IsNaN(y[i]) {
			g.ny++
			g.sum += y[i]
		}
	}

	out := make([]GroupResult, 0, len(groups))
	for k, g := range groups {
		gr := GroupResult{Key: k, Size: g.size, Diagnosed: rate(g.pos, g.seen), TargetMean: math.NaN()}
		if g.ny > 0 {
			gr.TargetMean = g.sum / float64(g.ny)
		}
		out = append(out, gr)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Size == out[j].Size {
			return out[i].Key < out[j].Key
		}
		return out[i].Size > out[j].Size
	})
	if len(out) > 20 {
		out = out[:20]
	}
	return out, nil
}
