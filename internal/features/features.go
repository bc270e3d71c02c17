// Package features derives bucketed categories and metabolic indices from the
// cleaned clinical table.
package features

import (
	"fmt"
	"math"

	"github.com/KaramelBytes/glycoscope/internal/dataset"
)

// Source columns.
const (
	ColDietScore    = "diet_score"
	ColAge          = "age"
	ColBMI          = "bmi"
	ColActivity     = "physical_activity_minutes_per_week"
	ColTriglyceride = "triglycerides"
	ColGlucose      = "glucose_fasting"
	ColInsulin      = "insulin_level"
	ColHDL          = "hdl_cholesterol"
)

// Engineered columns.
const (
	ColDietLevel     = "diet_score_level"
	ColAgeGroup      = "age_group"
	ColBMICategory   = "bmi_category"
	ColActivityLevel = "activity_level"
	ColTyG           = "tyg_index"
	ColHOMAIR        = "homa_ir"
	ColQUICKI        = "quicki_index"
	ColAIP           = "aip"
)

// Stats reports how many rows ended up without a value per engineered column.
type Stats struct {
	Rows      int
	Undefined map[string]int
}

// TyG returns ln(trig*glucose/2), NaN when either input is zero.
func TyG(trig, glucose float64) float64 {
	if trig == 0 || glucose == 0 {
		return math.NaN()
	}
	return math.Log(trig * glucose / 2)
}

// HOMAIR returns glucose*insulin/405, NaN when either input is zero.
func HOMAIR(glucose, insulin float64) float64 {
	if glucose == 0 || insulin == 0 {
		return math.NaN()
	}
	return glucose * insulin / 405
}

// QUICKI returns 1/(ln insulin + ln glucose), NaN when either input is zero.
func QUICKI(insulin, glucose float64) float64 {
	if insulin == 0 || glucose == 0 {
		return math.NaN()
	}
	return 1 / (math.Log(insulin) + math.Log(glucose))
}

// AIP returns log10(trig/hdl), NaN when either input is zero.
func AIP(trig, hdl float64) float64 {
	if trig == 0 || hdl == 0 {
		return math.NaN()
	}
	return math.Log10(trig / hdl)
}

// Engineer appends the bucket columns and the metabolic indices to ds in place.
// Negative inputs are not guarded and yield whatever IEEE arithmetic gives.
func Engineer(ds *dataset.Dataset) (Stats, error) {
	need := func(name string) ([]float64, error) {
		v, err := ds.Numeric(name)
		if err != nil {
			return nil, fmt.Errorf("feature engineering: %w", err)
		}
		return v, nil
	}
	diet, err := need(ColDietScore)
	if err != nil {
		return Stats{}, err
	}
	age, err := need(ColAge)
	if err != nil {
		return Stats{}, err
	}
	bmi, err := need(ColBMI)
	if err != nil {
		return Stats{}, err
	}
	act, err := need(ColActivity)
	if err != nil {
		return Stats{}, err
	}
	trig, err := need(ColTriglyceride)
	if err != nil {
		return Stats{}, err
	}
	glu, err := need(ColGlucose)
	if err != nil {
		return Stats{}, err
	}
	ins, err := need(ColInsulin)
	if err != nil {
		return Stats{}, err
	}
	hdl, err := need(ColHDL)
	if err != nil {
		return Stats{}, err
	}

	st := Stats{Rows: ds.Len(), Undefined: map[string]int{}}
	buckets := []struct {
		name string
		bin  Binning
		src  []float64
	}{
		{ColAgeGroup, AgeGroups, age},
		{ColBMICategory, BMICategories, bmi},
		{ColActivityLevel, ActivityLevels, act},
	}

	levels := make([]float64, len(diet))
	for i, v := range diet {
		idx := DietLevels.Index(v)
		if idx < 0 {
			levels[i] = math.NaN()
			st.Undefined[ColDietLevel]++
			continue
		}
		levels[i] = float64(idx + 1)
	}
	if err := ds.AddNumeric(ColDietLevel, levels); err != nil {
		return Stats{}, err
	}
	for _, b := range buckets {
		labels := b.bin.Cut(b.src)
		for _, l := range labels {
			if l == "" {
				st.Undefined[b.name]++
			}
		}
		if err := ds.AddCategorical(b.name, labels, b.bin.Labels); err != nil {
			return Stats{}, err
		}
	}

	n := ds.Len()
	tyg := make([]float64, n)
	homa := make([]float64, n)
	quicki := make([]float64, n)
	aip := make([]float64, n)
	for i := 0; i < n; i++ {
		tyg[i] = TyG(trig[i], glu[i])
		homa[i] = HOMAIR(glu[i], ins[i])
		quicki[i] = QUICKI(ins[i], glu[i])
		aip[i] = AIP(trig[i], hdl[i])
	}
	indices := []struct {
		name string
		vals []float64
	}{
		{ColTyG, tyg}, {ColHOMAIR, homa}, {ColQUICKI, quicki}, {ColAIP, aip},
	}
	for _, ix := range indices {
		for _, v := range ix.vals {
			if math.IsNaN(v) {
				st.Undefined[ix.name]++
			}
		}
		if err := ds.AddNumeric(ix.name, ix.vals); err != nil {
			return Stats{}, err
		}
	}
	return st, nil
}
