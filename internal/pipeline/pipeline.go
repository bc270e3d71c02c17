// Package pipeline sequences loading, cleaning, range filtering, feature
// engineering and reporting for one input file.
package pipeline

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/KaramelBytes/glycoscope/internal/analysis"
	"github.com/KaramelBytes/glycoscope/internal/charts"
	"github.com/KaramelBytes/glycoscope/internal/dataset"
	"github.com/KaramelBytes/glycoscope/internal/features"
	"github.com/KaramelBytes/glycoscope/internal/manifest"
	"github.com/KaramelBytes/glycoscope/internal/outliers"
)

// Options configures a run. Zero values fall back to sensible defaults where noted.
type Options struct {
	Input   string
	Dataset dataset.Options
	// Ranges is the valid-range table; nil uses the built-in table.
	Ranges outliers.Ranges
	Target string
	TopK   int
	// Charts restricts the chart battery by name; empty renders all.
	Charts     []string
	SkipCharts bool
	Chart      charts.Options
	WriteXLSX  bool
	// HeadRows is the number of preview rows printed after loading.
	HeadRows int

	Out    io.Writer
	Logger *slog.Logger
}

// Result summarizes a finished run.
type Result struct {
	Clean    dataset.CleanStats
	Outliers *outliers.Result
	Features features.Stats
	Ranking  *analysis.Ranking
	Manifest *manifest.Manifest
	// Dataset is the enriched table handed to the charts.
	Dataset *dataset.Dataset
}

// Load reads the input and drops incomplete and duplicate rows.
func Load(opt Options) (*dataset.Dataset, dataset.CleanStats, error) {
	ds, err := dataset.Load(opt.Input, opt.Dataset)
	if err != nil {
		return nil, dataset.CleanStats{}, fmt.Errorf("load %s: %w", opt.Input, err)
	}
	if opt.Out != nil {
		dataset.Inspect(opt.Out, ds, opt.HeadRows)
	}
	cleaned, st := dataset.Clean(ds)
	return cleaned, st, nil
}

// Prepare runs everything up to feature engineering and persists the filtered table.
func Prepare(opt Options, m *manifest.Manifest) (*Result, error) {
	opt = withDefaults(opt)
	out, log := opt.Out, opt.Logger

	ds, st, err := Load(opt)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(out, "\nRows before cleaning: %d\n", st.Before)
	fmt.Fprintf(out, "Rows after cleaning: %d\n", st.After)
	fmt.Fprintf(out, "Removed rows: %d (missing %d, duplicates %d)\n", st.Removed(), st.Missing, st.Duplicates)
	log.Info("dataset loaded", "input", opt.Input, "rows", st.Before, "kept", st.After)

	res, written, err := outliers.Apply(ds, opt.Ranges, outliers.Options{
		OutputDir: opt.Chart.OutputDir,
		WriteXLSX: opt.WriteXLSX,
		Logger:    log,
	})
	if err != nil {
		return nil, fmt.Errorf("outlier filter: %w", err)
	}
	PrintOutliers(out, res)

	enriched := res.Dataset
	fst, err := features.Engineer(enriched)
	if err != nil {
		return nil, err
	}
	for _, name := range sortedKeys(fst.Undefined) {
		log.Debug("engineered column has undefined rows", "column", name, "rows", fst.Undefined[name])
	}

	if m != nil {
		m.Rows = manifest.RowCounts{Loaded: st.Before, Cleaned: st.After, Filtered: enriched.Len()}
		m.Outliers = manifest.Outliers{IQR: res.IQR, Range: res.Range}
		for _, p := range written {
			m.AddArtifact(manifest.KindData, p)
		}
	}
	return &Result{Clean: st, Outliers: res, Features: fst, Dataset: enriched}, nil
}

// Run executes the whole pipeline and writes manifest.json last.
func Run(opt Options) (*Result, error) {
	opt = withDefaults(opt)
	out, log := opt.Out, opt.Logger
	m := manifest.New(opt.Input, opt.Chart.OutputDir)
	m.Target, m.TopK = opt.Target, opt.TopK

	res, err := Prepare(opt, m)
	if err != nil {
		return nil, err
	}

	if !opt.SkipCharts {
		battery, err := selectBattery(opt.Charts, charts.TopCorrName(opt.Target))
		if err != nil {
			return nil, err
		}
		for _, c := range battery {
			path, err := c.Draw(res.Dataset, opt.Chart)
			if errors.Is(err, charts.ErrNoData) {
				msg := fmt.Sprintf("%s skipped: %v", c.Name, err)
				fmt.Fprintf(out, "⚠ %s\n", msg)
				m.Warnings = append(m.Warnings, msg)
				continue
			}
			if err != nil {
				return nil, err
			}
			m.AddArtifact(manifest.KindChart, path)
			log.Info("chart saved", "chart", c.Name, "path", path)
		}
	}

	rk, err := analysis.TopCorrelations(res.Dataset, opt.Target, opt.TopK)
	if err != nil {
		return nil, err
	}
	fmt.Fprintln(out)
	rk.Fprint(out)
	res.Ranking = rk
	for _, e := range rk.All {
		m.Ranking = append(m.Ranking, manifest.Correlate{Column: e.Column, R: e.R})
	}
	if !opt.SkipCharts && wants(opt.Charts, charts.TopCorrName(opt.Target)) {
		path, err := charts.TopCorr(rk, opt.Chart)
		switch {
		case errors.Is(err, charts.ErrNoData):
			msg := fmt.Sprintf("%s skipped: %v", charts.TopCorrName(opt.Target), err)
			fmt.Fprintf(out, "⚠ %s\n", msg)
			m.Warnings = append(m.Warnings, msg)
		case err != nil:
			return nil, err
		default:
			m.AddArtifact(manifest.KindChart, path)
		}
	}

	mp, err := m.Save()
	if err != nil {
		return nil, fmt.Errorf("write manifest: %w", err)
	}
	res.Manifest = m
	fmt.Fprintf(out, "\n✓ Wrote %d artifacts to %s (run %s)\n", len(m.Artifacts), opt.Chart.OutputDir, m.RunID)
	log.Info("run complete", "manifest", mp, "artifacts", len(m.Artifacts))
	return res, nil
}

// PrintOutliers lists the non-zero IQR and range counts per column.
func PrintOutliers(w io.Writer, res *outliers.Result) {
	fmt.Fprintln(w, "\nIQR outliers per column:")
	printCounts(w, res.IQR)
	fmt.Fprintln(w, "\nOut-of-range values per column:")
	printCounts(w, res.Range)
	fmt.Fprintf(w, "\nRows removed by range filter: %d (remaining %d)\n", res.Removed(), res.Dataset.Len())
}

func printCounts(w io.Writer, counts map[string]int) {
	printed := false
	for _, name := range sortedKeys(counts) {
		if counts[name] == 0 {
			continue
		}
		printed = true
		fmt.Fprintf(w, "  %-40s %d\n", name, counts[name])
	}
	if !printed {
		fmt.Fprintln(w, "  none")
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// selectBattery resolves the descriptive charts to draw. The ranking chart is
// drawn separately, so its name is accepted but not passed to charts.Select.
func selectBattery(selection []string, rankingChart string) ([]charts.Chart, error) {
	if len(selection) == 0 {
		return charts.Battery(), nil
	}
	var rest []string
	for _, s := range selection {
		if s != rankingChart {
			rest = append(rest, s)
		}
	}
	if len(rest) == 0 {
		return nil, nil
	}
	return charts.Select(rest)
}

// wants reports whether a chart name is selected; an empty selection selects all.
func wants(selection []string, name string) bool {
	if len(selection) == 0 {
		return true
	}
	for _, s := range selection {
		if s == name {
			return true
		}
	}
	return false
}

func withDefaults(opt Options) Options {
	if opt.Out == nil {
		opt.Out = io.Discard
	}
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	if opt.Chart.Logger == nil {
		opt.Chart.Logger = opt.Logger
	}
	if opt.Ranges == nil {
		opt.Ranges = outliers.DefaultRanges()
	}
	if opt.Target == "" {
		opt.Target = "diabetes_risk_score"
	}
	if opt.TopK <= 0 {
		opt.TopK = 5
	}
	if opt.Chart.OutputDir == "" {
		opt.Chart.OutputDir = "results"
	}
	return opt
}
