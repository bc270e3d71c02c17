package charts

import (
	"fmt"
	"image/color"
	"math"
	"sort"
	"strings"

	"github.com/KaramelBytes/glycoscope/internal/analysis"
	"github.com/KaramelBytes/glycoscope/internal/dataset"
	"github.com/KaramelBytes/glycoscope/internal/features"
	"github.com/KaramelBytes/glycoscope/internal/utils"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Columns read by the chart battery in addition to the engineered ones.
const (
	ColGender        = "gender"
	ColEthnicity     = "ethnicity"
	ColStage         = "diabetes_stage"
	ColDiagnosed     = "diagnosed_diabetes"
	ColFamily        = "family_history_diabetes"
	ColGlucoseFast   = "glucose_fasting"
	ColGlucosePost   = "glucose_postprandial"
	ColHbA1c         = "hba1c"
	ColBMI           = "bmi"
	BMIUnder25       = "BMI < 25"
	BMIOver25        = "BMI > 25"
	diagnosedLegend  = "Diagnosed diabetes (0 = No, 1 = Yes)"
	bmiGroupLegend   = "BMI group"
	stageLegendTitle = "Diabetes stage"
)

// StageOrder is the clinical progression used for every stage axis.
var StageOrder = []string{"No Diabetes", "Pre-Diabetes", "Gestational", "Type 1", "Type 2"}

// Func renders one chart from the enriched dataset and returns the written path.
type Func func(ds *dataset.Dataset, opt Options) (string, error)

// Chart binds a chart routine to its artifact name.
type Chart struct {
	Name string
	Draw Func
}

// Battery returns the descriptive charts in the order they are produced.
func Battery() []Chart {
	return []Chart{
		{"gender_diabetes_bar", GenderDiabetesBar},
		{"ethnicity_diabetes_bar", EthnicityDiabetesBar},
		{"age_bmi_pie", AgeBMIPie},
		{"diet_diabetes_bar", DietDiabetesBar},
		{"glucose_stage_box", GlucoseStageBox},
		{"hba1c_fasting_scatter", HbA1cFastingScatter},
		{"bmi_diabetes_bar", BMIDiabetesBar},
		{"activity_bmi_bar", ActivityBMIBar},
		{"family_bar", FamilyBar},
		{"age_diabetes_line", AgeDiabetesLine},
		{"corr_matrix", CorrMatrix},
	}
}

// Select filters the battery by name, keeping battery order. An empty list selects all.
func Select(names []string) ([]Chart, error) {
	all := Battery()
	if len(names) == 0 {
		return all, nil
	}
	want := map[string]bool{}
	for _, n := range names {
		want[n] = true
	}
	var out []Chart
	for _, c := range all {
		if want[c.Name] {
			out = append(out, c)
			delete(want, c.Name)
		}
	}
	if len(want) > 0 {
		var unknown []string
		for n := range want {
			unknown = append(unknown, n)
		}
		sort.Strings(unknown)
		return nil, fmt.Errorf("unknown chart(s): %s", strings.Join(unknown, ", "))
	}
	return out, nil
}

func labels(ds *dataset.Dataset, names ...string) ([][]string, error) {
	out := make([][]string, len(names))
	for i, n := range names {
		l, err := ds.Labels(n)
		if err != nil {
			return nil, err
		}
		out[i] = l
	}
	return out, nil
}

func levelsOf(ds *dataset.Dataset, name string) []string {
	c, err := ds.Column(name)
	if err != nil {
		return nil
	}
	return c.Levels
}

func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Legend.Top = true
	return p
}

// groupedBars adds one bar series per hue, offset side by side within each group.
func groupedBars(p *plot.Plot, tab Table, pal []color.Color) error {
	if len(tab.Groups) == 0 || len(tab.Hues) == 0 {
		return ErrNoData
	}
	n := len(tab.Hues)
	w := vg.Points(math.Max(4, math.Min(24, 420/float64(len(tab.Groups)*n+1))))
	for h := range tab.Hues {
		vals := make(plotter.Values, len(tab.Groups))
		for g, v := range tab.Values[h] {
			if !math.IsNaN(v) {
				vals[g] = v
			}
		}
		bars, err := plotter.NewBarChart(vals, w)
		if err != nil {
			return err
		}
		bars.LineStyle.Width = vg.Length(0)
		bars.Color = pick(pal, h)
		bars.Offset = vg.Length(float64(h)-float64(n-1)/2) * w
		p.Add(bars)
		p.Legend.Add(tab.Hues[h], bars)
	}
	p.NominalX(tab.Groups...)
	return nil
}

func stageShareBar(ds *dataset.Dataset, opt Options, group, name, title, xLabel string) (string, error) {
	cols, err := labels(ds, group, ColStage)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	tab := Shares(cols[0], cols[1], Order(cols[0], levelsOf(ds, group)), Order(cols[1], StageOrder), 1)
	p := newPlot(title, xLabel, "Ratio")
	if err := groupedBars(p, tab, set2); err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return opt.save(p, name)
}

// GenderDiabetesBar plots the share of each diabetes stage within each gender.
func GenderDiabetesBar(ds *dataset.Dataset, opt Options) (string, error) {
	return stageShareBar(ds, opt, ColGender, "gender_diabetes_bar", "Proportion of diabetes stage for each gender", "gender")
}

// EthnicityDiabetesBar plots the share of each diabetes stage within each ethnicity.
func EthnicityDiabetesBar(ds *dataset.Dataset, opt Options) (string, error) {
	return stageShareBar(ds, opt, ColEthnicity, "ethnicity_diabetes_bar", "Proportion of diabetes stage for each ethnicity", "ethnicity")
}

func pieCounts(vals []string, order []string) []float64 {
	idx := indexOf(order)
	out := make([]float64, len(order))
	for _, v := range vals {
		if i, ok := idx[v]; ok {
			out[i]++
		}
	}
	return out
}

func piePlot(title string, vals []string, order []string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.HideAxes()
	counts := pieCounts(vals, order)
	pie := &Pie{Values: counts, Labels: order}
	p.Add(pie)
	for i, l := range order {
		if counts[i] > 0 {
			p.Legend.Add(l, swatch{pie.color(i)})
		}
	}
	p.Legend.Top = true
	return p
}

// AgeBMIPie draws the BMI category and age group distributions side by side.
func AgeBMIPie(ds *dataset.Dataset, opt Options) (string, error) {
	const name = "age_bmi_pie"
	cols, err := labels(ds, features.ColBMICategory, features.ColAgeGroup)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	if ds.Len() == 0 {
		return "", fmt.Errorf("%s: %w", name, ErrNoData)
	}
	bmi := piePlot("BMI", cols[0], features.BMICategories.Labels)
	age := piePlot("Age", cols[1], features.AgeGroups.Labels)
	return opt.saveGrid([][]*plot.Plot{{bmi, age}}, name)
}

func diagnosedShareBar(ds *dataset.Dataset, opt Options, group, name, title, xLabel, yLabel string) (string, error) {
	cols, err := labels(ds, group, ColDiagnosed)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	tab := Shares(cols[0], cols[1], Order(cols[0], levelsOf(ds, group)), Order(cols[1], DiagnosedOrder), 100)
	p := newPlot(title, xLabel, yLabel)
	p.Legend.Add(diagnosedLegend)
	if err := groupedBars(p, tab, diagnosedPalette(tab.Hues)); err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return opt.save(p, name)
}

// DietDiabetesBar plots the diagnosed share within each diet score level.
func DietDiabetesBar(ds *dataset.Dataset, opt Options) (string, error) {
	return diagnosedShareBar(ds, opt, features.ColDietLevel, "diet_diabetes_bar",
		"Diabetes by diet score level", "Diet score level", "Proportion for each level %")
}

// BMIDiabetesBar plots the diagnosed share within each BMI category.
func BMIDiabetesBar(ds *dataset.Dataset, opt Options) (string, error) {
	return diagnosedShareBar(ds, opt, features.ColBMICategory, "bmi_diabetes_bar",
		"Diabetes ratio across BMI", "BMI", "Proportion %")
}

func stageBoxes(title, yLabel string, stages []string, vals []float64) (*plot.Plot, error) {
	p := newPlot(title, "Diabetes Stage", yLabel)
	idx := indexOf(StageOrder)
	groups := make([]plotter.Values, len(StageOrder))
	for i, s := range stages {
		j, ok := idx[s]
		if !ok || math.IsNaN(vals[i]) {
			continue
		}
		groups[j] = append(groups[j], vals[i])
	}
	drawn := 0
	for j, g := range groups {
		if len(g) == 0 {
			continue
		}
		box, err := plotter.NewBoxPlot(vg.Points(40), float64(j), g)
		if err != nil {
			return nil, err
		}
		box.FillColor = pick(set2, j)
		p.Add(box)
		drawn++
	}
	if drawn == 0 {
		return nil, ErrNoData
	}
	p.NominalX(StageOrder...)
	return p, nil
}

// GlucoseStageBox stacks box plots of fasting and postprandial glucose per stage.
func GlucoseStageBox(ds *dataset.Dataset, opt Options) (string, error) {
	const name = "glucose_stage_box"
	stages, err := ds.Labels(ColStage)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	fast, err := ds.Numeric(ColGlucoseFast)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	post, err := ds.Numeric(ColGlucosePost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	top, err := stageBoxes("Fasting Glucose by Diabetes Stage", "Fasting Glucose (mg/dL)", stages, fast)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	bottom, err := stageBoxes("Postprandial Glucose by Diabetes Stage", "Postprandial Glucose (mg/dL)", stages, post)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return opt.saveGrid([][]*plot.Plot{{top}, {bottom}}, name)
}

// HbA1cFastingScatter plots HbA1c against fasting glucose, coloured by diagnosis.
func HbA1cFastingScatter(ds *dataset.Dataset, opt Options) (string, error) {
	const name = "hba1c_fasting_scatter"
	x, err := ds.Numeric(ColGlucoseFast)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	y, err := ds.Numeric(ColHbA1c)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	diag, err := ds.Labels(ColDiagnosed)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	p := newPlot("HbA1c vs Fasting glucose", "Fasting glucose mg/dL", "HbA1c %")
	hues := Order(diag, DiagnosedOrder)
	pal := diagnosedPalette(hues)
	idx := indexOf(hues)
	pts := make([]plotter.XYs, len(hues))
	for i := range x {
		h, ok := idx[diag[i]]
		if !ok || math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		pts[h] = append(pts[h], plotter.XY{X: x[i], Y: y[i]})
	}
	drawn := 0
	for h, xy := range pts {
		if len(xy) == 0 {
			continue
		}
		s, err := plotter.NewScatter(xy)
		if err != nil {
			return "", fmt.Errorf("%s: %w", name, err)
		}
		s.GlyphStyle.Color = pal[h]
		s.GlyphStyle.Radius = vg.Points(1.5)
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(s)
		p.Legend.Add(hues[h], s)
		drawn++
	}
	if drawn == 0 {
		return "", fmt.Errorf("%s: %w", name, ErrNoData)
	}
	return opt.save(p, name)
}

// ActivityBMIBar plots the mean diagnosis rate per activity level, split at BMI 25.
// The BMI split is computed on the fly and not added to the dataset.
func ActivityBMIBar(ds *dataset.Dataset, opt Options) (string, error) {
	const name = "activity_bmi_bar"
	act, err := ds.Labels(features.ColActivityLevel)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	bmi, err := ds.Numeric(ColBMI)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	diag, err := ds.Numeric(ColDiagnosed)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	tab := Means(act, BMIGroups(bmi), diag,
		Order(act, levelsOf(ds, features.ColActivityLevel)), []string{BMIUnder25, BMIOver25}, 100)
	p := newPlot("Diagnosis rate by physical activity and bmi", "Physical activity level", "Diagnosis rate %")
	p.Y.Min, p.Y.Max = 0, 100
	p.Legend.Add(bmiGroupLegend)
	if err := groupedBars(p, tab, bmiGroupColors); err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return opt.save(p, name)
}

// FamilyBar plots the share of each diabetes stage by family history.
func FamilyBar(ds *dataset.Dataset, opt Options) (string, error) {
	const name = "family_bar"
	cols, err := labels(ds, ColFamily, ColStage)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	tab := Shares(cols[0], cols[1], Order(cols[0], nil), Order(cols[1], StageOrder), 100)
	p := newPlot("Diabetes stage ratio by family history", "Family history", "Percentage %")
	p.Legend.Add(stageLegendTitle)
	if err := groupedBars(p, tab, set2); err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return opt.save(p, name)
}

// AgeDiabetesLine plots the diagnosed percentage per age group on a 0-100 axis.
// Age groups without rows are left out of the line.
func AgeDiabetesLine(ds *dataset.Dataset, opt Options) (string, error) {
	const name = "age_diabetes_line"
	age, err := ds.Labels(features.ColAgeGroup)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	diag, err := ds.Numeric(ColDiagnosed)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	order := features.AgeGroups.Labels
	tab := Means(age, constant("all", len(age)), diag, order, []string{"all"}, 100)
	var xy plotter.XYs
	for g, v := range tab.Values[0] {
		if !math.IsNaN(v) {
			xy = append(xy, plotter.XY{X: float64(g), Y: v})
		}
	}
	if len(xy) == 0 {
		return "", fmt.Errorf("%s: %w", name, ErrNoData)
	}
	p := newPlot("Percentage of diagnosed cases by age", "Age", "Diagnosed %")
	p.Y.Min, p.Y.Max = 0, 100
	grid := plotter.NewGrid()
	grid.Vertical.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
	grid.Horizontal.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
	p.Add(grid)
	line, points, err := plotter.NewLinePoints(xy)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	red := color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}
	line.Color = red
	line.Width = vg.Points(2)
	points.Color = red
	points.Shape = draw.CircleGlyph{}
	p.Add(line, points)
	p.NominalX(order...)
	return opt.save(p, name)
}

// corrGrid adapts a correlation matrix to plotter.GridXYZ with the first
// column drawn at the top row.
type corrGrid struct{ m *analysis.CorrMatrix }

func (g corrGrid) Dims() (c, r int) { return len(g.m.Columns), len(g.m.Columns) }
func (g corrGrid) Z(c, r int) float64 { return g.m.Values[len(g.m.Columns)-1-r][c] }
func (g corrGrid) X(c int) float64 { return float64(c) }
func (g corrGrid) Y(r int) float64 { return float64(r) }

// CorrMatrix draws an annotated heat map of the numeric correlation matrix.
func CorrMatrix(ds *dataset.Dataset, opt Options) (string, error) {
	const name = "corr_matrix"
	if ds.Len() == 0 {
		return "", fmt.Errorf("%s: %w", name, ErrNoData)
	}
	m := analysis.Correlations(ds)
	n := len(m.Columns)
	if n < 2 {
		return "", fmt.Errorf("%s: %w", name, ErrNoData)
	}
	cm := moreland.SmoothBlueRed()
	cm.SetMin(-1)
	cm.SetMax(1)
	hm := plotter.NewHeatMap(corrGrid{m}, cm.Palette(255))
	hm.Min, hm.Max = -1, 1
	hm.NaN = color.Gray{Y: 0xdd}

	var cells plotter.XYLabels
	g := corrGrid{m}
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			z := g.Z(c, r)
			if math.IsNaN(z) {
				continue
			}
			cells.XYs = append(cells.XYs, plotter.XY{X: float64(c), Y: float64(r)})
			cells.Labels = append(cells.Labels, fmt.Sprintf("%.2f", z))
		}
	}

	p := plot.New()
	p.Title.Text = "Correlation matrix"
	p.Add(hm)
	if len(cells.Labels) > 0 {
		lbl, err := plotter.NewLabels(cells)
		if err != nil {
			return "", fmt.Errorf("%s: %w", name, err)
		}
		for i := range lbl.TextStyle {
			lbl.TextStyle[i].XAlign = text.XCenter
			lbl.TextStyle[i].YAlign = text.YCenter
			lbl.TextStyle[i].Font.Size = vg.Points(6)
		}
		p.Add(lbl)
	}
	rows := make([]string, n)
	for r := range rows {
		rows[r] = m.Columns[n-1-r]
	}
	p.NominalX(m.Columns...)
	p.NominalY(rows...)
	p.X.Tick.Label.Rotation = math.Pi / 2
	p.X.Tick.Label.XAlign = text.XRight
	p.X.Tick.Label.YAlign = text.YCenter
	w, h := opt.size(1.4, 1.6)
	wt, err := p.WriterTo(w, h, opt.format())
	if err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return opt.write(wt, name)
}

// TopCorrName is the artifact name of the ranking chart for a target column.
func TopCorrName(target string) string { return "top_corr_" + utils.SafeName(target) }

// TopCorr draws the ranked correlates of the target as horizontal bars, positive
// and negative coefficients in separate colours.
func TopCorr(rk *analysis.Ranking, opt Options) (string, error) {
	name := TopCorrName(rk.Target)
	seen := map[string]bool{}
	var entries []analysis.Ranked
	for _, e := range rk.Positive {
		if !seen[e.Column] {
			seen[e.Column] = true
			entries = append(entries, e)
		}
	}
	for i := len(rk.Negative) - 1; i >= 0; i-- {
		e := rk.Negative[i]
		if !seen[e.Column] {
			seen[e.Column] = true
			entries = append(entries, e)
		}
	}
	if len(entries) == 0 {
		return "", fmt.Errorf("%s: %w", name, ErrNoData)
	}
	// bottom-up so the strongest positive correlate ends at the top
	n := len(entries)
	pos := make(plotter.Values, n)
	neg := make(plotter.Values, n)
	names := make([]string, n)
	for i, e := range entries {
		j := n - 1 - i
		names[j] = e.Column
		if e.R >= 0 {
			pos[j] = e.R
		} else {
			neg[j] = e.R
		}
	}
	p := newPlot(fmt.Sprintf("Correlation with %s", rk.Target), "Pearson r", "")
	p.X.Min, p.X.Max = -1, 1
	w := vg.Points(math.Max(4, math.Min(18, 300/float64(n))))
	for k, vals := range []plotter.Values{pos, neg} {
		bars, err := plotter.NewBarChart(vals, w)
		if err != nil {
			return "", fmt.Errorf("%s: %w", name, err)
		}
		bars.Horizontal = true
		bars.LineStyle.Width = vg.Length(0)
		bars.Color = pick([]color.Color{diagnosedColors[1], bmiGroupColors[0]}, k)
		p.Add(bars)
	}
	p.Add(plotter.NewGrid())
	p.NominalY(names...)
	return opt.save(p, name)
}
