package outliers

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/glycoscope/internal/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.FromRecords("fixture.csv",
		[]string{"gender", "bmi", "hba1c", "steps"},
		[][]string{
			{"Male", "45", "5", "100"},
			{"Female", "23", "5.5", "200"},
			{"Female", "24", "6", "300"},
			{"Male", "25", "6.5", "400"},
			{"Other", "22", "20", "500"},
		})
	require.NoError(t, err)
	return ds
}

func testRanges() Ranges {
	return Ranges{
		"bmi":           {10, 50},
		"hba1c":         {4, 14},
		"insulin_level": {2, 50},
	}
}

func TestDetectCountsAndFilters(t *testing.T) {
	res, err := Detect(fixture(t), testRanges())
	require.NoError(t, err)

	assert.Equal(t, 1, res.IQR["bmi"])
	assert.Equal(t, 0, res.Range["bmi"])
	assert.Equal(t, 1, res.IQR["hba1c"])
	assert.Equal(t, 1, res.Range["hba1c"])
	assert.Equal(t, []string{"insulin_level"}, res.Skipped)
	_, counted := res.IQR["steps"]
	assert.False(t, counted, "columns outside the range table are not counted")

	f := res.Fences["hba1c"]
	assert.Equal(t, 5.5, f.Q1)
	assert.Equal(t, 6.5, f.Q3)
	assert.Equal(t, 1.0, f.IQR())
	assert.Equal(t, 4.0, f.Lower)
	assert.Equal(t, 8.0, f.Upper)

	// HbA1c=20 is dropped; BMI=45 is an IQR outlier but stays.
	assert.Equal(t, 4, res.Dataset.Len())
	assert.Equal(t, 1, res.Removed())
	bmi, _ := res.Dataset.Numeric("bmi")
	assert.Contains(t, bmi, 45.0)
	hba1c, _ := res.Dataset.Numeric("hba1c")
	assert.NotContains(t, hba1c, 20.0)
}

func TestFilteredValuesInsideClosedInterval(t *testing.T) {
	ds, err := dataset.FromRecords("edges.csv", []string{"hba1c"}, [][]string{
		{"4"}, {"14"}, {"3.999"}, {"14.001"}, {"9"},
	})
	require.NoError(t, err)
	r := Ranges{"hba1c": {4, 14}}
	res, err := Detect(ds, r)
	require.NoError(t, err)
	vals, _ := res.Dataset.Numeric("hba1c")
	assert.Equal(t, []float64{4, 14, 9}, vals)
	for _, v := range vals {
		assert.True(t, r["hba1c"].Contains(v))
	}
	assert.Equal(t, 2, res.Range["hba1c"])
}

func TestDetectIsIdempotent(t *testing.T) {
	first, err := Detect(fixture(t), testRanges())
	require.NoError(t, err)
	second, err := Detect(first.Dataset, testRanges())
	require.NoError(t, err)
	assert.Equal(t, first.Dataset.Len(), second.Dataset.Len())
	for _, name := range first.Dataset.Names() {
		a, _ := first.Dataset.Labels(name)
		b, _ := second.Dataset.Labels(name)
		assert.Equal(t, a, b, name)
	}
	for _, n := range second.Range {
		assert.Zero(t, n)
	}
}

func TestDetectRejectsCategoricalRangeColumn(t *testing.T) {
	_, err := Detect(fixture(t), Ranges{"gender": {0, 1}})
	assert.True(t, errors.Is(err, ErrNotNumeric))
}

func TestMissingValueFailsRangeCheck(t *testing.T) {
	ds, err := dataset.FromRecords("gaps.csv", []string{"bmi"}, [][]string{{"20"}, {""}})
	require.NoError(t, err)
	res, err := Detect(ds, Ranges{"bmi": {10, 50}})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Dataset.Len())
	assert.Equal(t, 0, res.Range["bmi"])
}

func TestApplyPersistsCleanedTable(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "results")
	res, written, err := Apply(fixture(t), testRanges(), Options{OutputDir: dir, WriteXLSX: true})
	require.NoError(t, err)
	require.Len(t, written, 2)
	assert.Equal(t, filepath.Join(dir, "cleaned_dataset.csv"), written[0])
	assert.Equal(t, filepath.Join(dir, "cleaned_dataset.xlsx"), written[1])
	for _, p := range written {
		_, err := os.Stat(p)
		assert.NoError(t, err)
	}
	back, err := dataset.Load(written[0], dataset.Options{})
	require.NoError(t, err)
	assert.Equal(t, res.Dataset.Len(), back.Len())
}

func TestDefaultRangesAndYAML(t *testing.T) {
	def := DefaultRanges()
	require.NoError(t, def.Validate())
	assert.Len(t, def, 18)
	assert.Equal(t, Range{Min: 4, Max: 14}, def["hba1c"])

	b, err := def.YAML()
	require.NoError(t, err)
	p := filepath.Join(t.TempDir(), "ranges.yaml")
	require.NoError(t, os.WriteFile(p, b, 0o644))
	back, err := LoadRanges(p)
	require.NoError(t, err)
	assert.Equal(t, def, back)
}

func TestLoadRangesRejectsInvertedBound(t *testing.T) {
	p := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(p, []byte("bmi:\n  min: 60\n  max: 10\n"), 0o644))
	_, err := LoadRanges(p)
	assert.Error(t, err)
}

func TestWriteTableListsPresentColumns(t *testing.T) {
	res, err := Detect(fixture(t), testRanges())
	require.NoError(t, err)
	var buf bytes.Buffer
	res.WriteTable(&buf, testRanges())
	out := buf.String()
	assert.Contains(t, out, "upper fence")
	assert.Contains(t, out, "hba1c")
	assert.Contains(t, out, "14.00")
	assert.False(t, strings.Contains(out, "insulin_level"), "absent columns are not tabulated")
}
