package features

import (
	"errors"
	"math"
	"testing"

	"github.com/KaramelBytes/glycoscope/internal/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinningBoundariesAreLeftInclusive(t *testing.T) {
	cases := []struct {
		bin  Binning
		in   float64
		want string
	}{
		{BMICategories, 0, "Underweight"},
		{BMICategories, 18.49, "Underweight"},
		{BMICategories, 18.5, "Normal"},
		{BMICategories, 25, "Overweight"},
		{BMICategories, 30, "Obese"},
		{BMICategories, 100, "Obese"},
		{BMICategories, 100.1, ""},
		{AgeGroups, 0, "<20"},
		{AgeGroups, 19.9, "<20"},
		{AgeGroups, 20, "20-29"},
		{AgeGroups, 69, "60-69"},
		{AgeGroups, 70, "70+"},
		{AgeGroups, 120, "70+"},
		{AgeGroups, -1, ""},
		{ActivityLevels, 0, "Low"},
		{ActivityLevels, 180, "Moderate"},
		{ActivityLevels, 480, "High"},
		{ActivityLevels, 960, "High"},
		{ActivityLevels, math.NaN(), ""},
		{DietLevels, 0, "1"},
		{DietLevels, 0.99, "1"},
		{DietLevels, 1, "2"},
		{DietLevels, 9.5, "10"},
		{DietLevels, 10, "10"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.bin.Label(tc.in), "%v -> %v", tc.bin.Labels, tc.in)
	}
}

func TestBinningsAreExhaustiveOverDomain(t *testing.T) {
	for _, b := range []Binning{DietLevels, AgeGroups, BMICategories, ActivityLevels} {
		require.NoError(t, b.Validate())
		lo, hi := b.Edges[0], b.Edges[len(b.Edges)-1]
		for v := lo; v <= hi; v += (hi - lo) / 997 {
			assert.NotEmpty(t, b.Label(v), "value %v", v)
		}
		assert.NotEmpty(t, b.Label(hi))
	}
	assert.Error(t, Binning{Edges: []float64{0, 1}, Labels: []string{"a", "b"}}.Validate())
	assert.Error(t, Binning{Edges: []float64{1, 0}, Labels: []string{"a"}}.Validate())
}

func TestIndexFormulas(t *testing.T) {
	assert.InDelta(t, 0.4771, AIP(150, 50), 1e-4)
	assert.InDelta(t, math.Log(150*100/2.0), TyG(150, 100), 1e-12)
	assert.InDelta(t, 100*10/405.0, HOMAIR(100, 10), 1e-12)
	assert.InDelta(t, 1/(math.Log(10)+math.Log(100)), QUICKI(10, 100), 1e-12)

	assert.True(t, math.IsNaN(TyG(150, 0)))
	assert.True(t, math.IsNaN(TyG(0, 100)))
	assert.True(t, math.IsNaN(HOMAIR(0, 10)))
	assert.True(t, math.IsNaN(HOMAIR(100, 0)))
	assert.True(t, math.IsNaN(QUICKI(0, 100)))
	assert.True(t, math.IsNaN(AIP(150, 0)))
	assert.True(t, math.IsNaN(AIP(0, 50)))
	// negative inputs follow IEEE semantics
	assert.True(t, math.IsNaN(QUICKI(-1, 100)))
}

func engineerFixture(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.FromRecords("fixture.csv",
		[]string{"diet_score", "age", "bmi", "physical_activity_minutes_per_week", "triglycerides", "glucose_fasting", "insulin_level", "hdl_cholesterol"},
		[][]string{
			{"7.3", "45", "18.5", "200", "150", "100", "10", "50"},
			{"10", "19", "31", "960", "150", "0", "10", "50"},
		})
	require.NoError(t, err)
	return ds
}

func TestEngineerAppendsColumns(t *testing.T) {
	ds := engineerFixture(t)
	st, err := Engineer(ds)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Rows)

	level, _ := ds.Numeric(ColDietLevel)
	assert.Equal(t, []float64{8, 10}, level)

	age, _ := ds.Labels(ColAgeGroup)
	assert.Equal(t, []string{"40-49", "<20"}, age)
	bmi, _ := ds.Labels(ColBMICategory)
	assert.Equal(t, []string{"Normal", "Obese"}, bmi)
	act, _ := ds.Labels(ColActivityLevel)
	assert.Equal(t, []string{"Moderate", "High"}, act)

	col, err := ds.Column(ColBMICategory)
	require.NoError(t, err)
	assert.Equal(t, BMICategories.Labels, col.Levels)

	aip, _ := ds.Numeric(ColAIP)
	assert.InDelta(t, math.Log10(3), aip[0], 1e-12)

	tyg, _ := ds.Numeric(ColTyG)
	homa, _ := ds.Numeric(ColHOMAIR)
	quicki, _ := ds.Numeric(ColQUICKI)
	assert.False(t, math.IsNaN(tyg[0]))
	assert.True(t, math.IsNaN(tyg[1]))
	assert.True(t, math.IsNaN(homa[1]))
	assert.True(t, math.IsNaN(quicki[1]))
	assert.Equal(t, 1, st.Undefined[ColTyG])
	assert.Equal(t, 1, st.Undefined[ColHOMAIR])
	assert.Zero(t, st.Undefined[ColAIP])
}

func TestEngineerMissingColumn(t *testing.T) {
	ds, err := dataset.FromRecords("x.csv", []string{"age"}, [][]string{{"40"}})
	require.NoError(t, err)
	_, err = Engineer(ds)
	assert.True(t, errors.Is(err, dataset.ErrColumnNotFound))
}
