package pipeline

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/glycoscope/internal/charts"
	"github.com/KaramelBytes/glycoscope/internal/dataset"
	"github.com/KaramelBytes/glycoscope/internal/features"
	"github.com/KaramelBytes/glycoscope/internal/manifest"
	"github.com/KaramelBytes/glycoscope/internal/outliers"
	"github.com/KaramelBytes/glycoscope/internal/sample"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSample(t *testing.T, n, every int) string {
	t.Helper()
	ds, err := sample.Dataset(n, 7, every)
	require.NoError(t, err)
	p := filepath.Join(t.TempDir(), "diabetes.csv")
	require.NoError(t, dataset.WriteCSV(ds, p))
	return p
}

func TestRunEndToEnd(t *testing.T) {
	in := writeSample(t, 200, 10)
	out := filepath.Join(t.TempDir(), "results")
	var buf bytes.Buffer

	res, err := Run(Options{
		Input:  in,
		Chart:  charts.Options{OutputDir: out, Format: "png", WidthIn: 5, HeightIn: 3},
		Target: "diabetes_risk_score",
		TopK:   3,
		Out:    &buf,
	})
	require.NoError(t, err)

	assert.Equal(t, 200, res.Clean.Before)
	assert.Equal(t, 200, res.Clean.After)
	assert.Equal(t, 20, res.Outliers.Range["hba1c"])
	assert.Equal(t, 180, res.Dataset.Len())
	for _, col := range []string{features.ColDietLevel, features.ColAgeGroup, features.ColBMICategory, features.ColActivityLevel, features.ColTyG, features.ColHOMAIR, features.ColQUICKI, features.ColAIP} {
		assert.True(t, res.Dataset.Has(col), col)
	}

	require.NotNil(t, res.Ranking)
	assert.Len(t, res.Ranking.Positive, 3)
	assert.LessOrEqual(t, len(res.Ranking.Negative), 3)

	for _, c := range charts.Battery() {
		_, err := os.Stat(filepath.Join(out, c.Name+".png"))
		assert.NoError(t, err, c.Name)
	}
	_, err = os.Stat(filepath.Join(out, charts.TopCorrName("diabetes_risk_score")+".png"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(out, outliers.CleanedBase+".csv"))
	assert.NoError(t, err)

	m, err := manifest.Load(out)
	require.NoError(t, err)
	assert.Equal(t, res.Manifest.RunID, m.RunID)
	assert.Equal(t, manifest.RowCounts{Loaded: 200, Cleaned: 200, Filtered: 180}, m.Rows)
	// cleaned csv + eleven charts + top-correlation chart
	assert.Len(t, m.Artifacts, 13)
	assert.NotEmpty(t, m.Ranking)

	text := buf.String()
	assert.Contains(t, text, "Rows before cleaning: 200")
	assert.Contains(t, text, "Removed rows: 0")
	assert.Contains(t, text, "hba1c")
	assert.Contains(t, text, "Top 3 positive correlations with diabetes_risk_score:")
	assert.Contains(t, text, "✓ Wrote 13 artifacts")
}

func TestRunSelectedChartsOnly(t *testing.T) {
	in := writeSample(t, 80, 0)
	out := t.TempDir()
	res, err := Run(Options{
		Input:  in,
		Charts: []string{"corr_matrix"},
		Chart:  charts.Options{OutputDir: out, Format: "svg"},
	})
	require.NoError(t, err)
	assert.Len(t, res.Manifest.Artifacts, 2)
	_, err = os.Stat(filepath.Join(out, "corr_matrix.svg"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(out, "gender_diabetes_bar.svg"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunSkipCharts(t *testing.T) {
	in := writeSample(t, 60, 0)
	out := t.TempDir()
	res, err := Run(Options{Input: in, SkipCharts: true, Chart: charts.Options{OutputDir: out}, WriteXLSX: true})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(out, outliers.CleanedBase+".csv"),
		filepath.Join(out, outliers.CleanedBase+".xlsx"),
	}, res.Manifest.Paths())
}

func TestRunUnknownChart(t *testing.T) {
	in := writeSample(t, 40, 0)
	_, err := Run(Options{Input: in, Charts: []string{"nope"}, Chart: charts.Options{OutputDir: t.TempDir()}})
	assert.Error(t, err)
}

func TestRunBadTarget(t *testing.T) {
	in := writeSample(t, 40, 0)
	out := t.TempDir()
	_, err := Run(Options{Input: in, Target: "not_a_column", SkipCharts: true, Chart: charts.Options{OutputDir: out}})
	require.Error(t, err)
	_, statErr := os.Stat(filepath.Join(out, manifest.FileName))
	assert.True(t, os.IsNotExist(statErr), "manifest must not be written on failure")
}

func TestRunMissingInput(t *testing.T) {
	_, err := Run(Options{Input: filepath.Join(t.TempDir(), "absent.csv")})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunCategoricalRangeColumn(t *testing.T) {
	in := writeSample(t, 30, 0)
	_, err := Run(Options{
		Input:  in,
		Ranges: outliers.Ranges{"gender": {Min: 0, Max: 1}},
		Chart:  charts.Options{OutputDir: t.TempDir()},
	})
	assert.ErrorIs(t, err, outliers.ErrNotNumeric)
}

func TestPrintOutliersNone(t *testing.T) {
	ds, err := sample.Dataset(20, 1, 0)
	require.NoError(t, err)
	res, err := outliers.Detect(ds, outliers.Ranges{"bmi": {Min: 0, Max: 100}})
	require.NoError(t, err)
	var buf bytes.Buffer
	PrintOutliers(&buf, res)
	assert.Contains(t, buf.String(), "Out-of-range values per column:\n  none")
	assert.Contains(t, buf.String(), "Rows removed by range filter: 0 (remaining 20)")
}

func TestRunRankingChartOnly(t *testing.T) {
	in := writeSample(t, 50, 0)
	out := t.TempDir()
	res, err := Run(Options{
		Input:  in,
		Charts: []string{charts.TopCorrName("diabetes_risk_score")},
		Chart:  charts.Options{OutputDir: out, Format: "svg"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(out, outliers.CleanedBase+".csv"),
		filepath.Join(out, "top_corr_diabetes_risk_score.svg"),
	}, res.Manifest.Paths())
}

func TestRunEveryRowOutOfRange(t *testing.T) {
	in := writeSample(t, 30, 1)
	out := t.TempDir()
	var buf bytes.Buffer
	res, err := Run(Options{
		Input:  in,
		Charts: []string{"corr_matrix", charts.TopCorrName("diabetes_risk_score")},
		Chart:  charts.Options{OutputDir: out},
		Out:    &buf,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Dataset.Len())
	assert.Empty(t, res.Ranking.All)

	console := buf.String()
	assert.Contains(t, console, "Rows removed by range filter: 30 (remaining 0)")
	assert.Contains(t, console, "⚠ corr_matrix skipped:")
	assert.Contains(t, console, "⚠ top_corr_diabetes_risk_score skipped:")
	assert.Len(t, res.Manifest.Warnings, 2)

	_, err = os.Stat(filepath.Join(out, "corr_matrix.png"))
	assert.True(t, os.IsNotExist(err))
	assert.Equal(t, []string{filepath.Join(out, outliers.CleanedBase+".csv")}, res.Manifest.Paths())
}
