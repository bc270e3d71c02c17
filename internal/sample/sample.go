// Package sample generates synthetic diabetes-risk records with the column
// layout the pipeline expects. Output is deterministic for a given seed.
package sample

import (
	"math"
	"math/rand/v2"
	"strconv"

	"github.com/KaramelBytes/glycoscope/internal/dataset"
)

// Header lists the generated columns in file order.
var Header = []string{
	"age", "gender", "ethnicity",
	"alcohol_consumption_per_week", "physical_activity_minutes_per_week",
	"diet_score", "sleep_hours_per_day", "screen_time_hours_per_day",
	"family_history_diabetes", "bmi", "waist_to_hip_ratio",
	"systolic_bp", "diastolic_bp", "heart_rate",
	"cholesterol_total", "hdl_cholesterol", "ldl_cholesterol", "triglycerides",
	"glucose_fasting", "glucose_postprandial", "insulin_level", "hba1c",
	"diabetes_risk_score", "diabetes_stage", "diagnosed_diabetes",
}

var (
	genders    = []string{"Female", "Male", "Other"}
	ethnicity  = []string{"White", "Hispanic", "Black", "Asian", "Other"}
	stageNames = []string{"No Diabetes", "Pre-Diabetes", "Gestational", "Type 1", "Type 2"}
)

type gen struct{ r *rand.Rand }

func (g gen) normal(mu, sigma, lo, hi float64) float64 {
	v := mu + sigma*g.r.NormFloat64()
	return math.Min(hi, math.Max(lo, v))
}

func (g gen) pick(xs []string) string { return xs[g.r.IntN(len(xs))] }

func f1(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) }
func f2(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }
func i0(v float64) string { return strconv.Itoa(int(math.Round(v))) }

// Records returns n synthetic rows. Values stay inside the default valid
// ranges except where outlierEvery > 0: every outlierEvery-th row gets an
// implausible HbA1c so range filtering has something to drop.
func Records(n int, seed uint64, outlierEvery int) [][]string {
	g := gen{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
	rows := make([][]string, 0, n)
	for i := 0; i < n; i++ {
		age := g.normal(48, 15, 18, 90)
		bmi := g.normal(27, 4.5, 15, 45)
		activity := g.normal(300, 180, 0, 900)
		diet := g.normal(5.5, 1.8, 0, 10)
		risk := 10 + 0.5*(bmi-18) + 0.35*(age-18) - 0.02*activity + 2*(6-diet) + g.normal(0, 5, -20, 20)
		risk = math.Min(100, math.Max(0, risk))
		family := 0.0
		if g.r.Float64() < 0.25 {
			family = 1
			risk = math.Min(100, risk+8)
		}
		glucose := g.normal(80+0.9*risk, 10, 60, 195)
		hba1c := g.normal(4.6+0.04*risk, 0.4, 4.2, 13)
		if outlierEvery > 0 && i%outlierEvery == outlierEvery-1 {
			hba1c = 20
		}
		hdl := g.normal(55-0.1*risk, 10, 25, 95)
		trig := g.normal(100+1.5*risk, 35, 40, 600)
		insulin := g.normal(6+0.15*risk, 3, 2.5, 45)

		stage := stageNames[0]
		diagnosed := 0.0
		switch {
		case hba1c >= 6.5 || glucose >= 126:
			diagnosed = 1
			stage = stageNames[4]
			if age < 30 && g.r.Float64() < 0.4 {
				stage = stageNames[3]
			}
		case hba1c >= 5.7 || glucose >= 100:
			stage = stageNames[1]
		}
		gender := g.pick(genders)
		if gender == "Female" && diagnosed == 0 && age < 40 && g.r.Float64() < 0.05 {
			stage = stageNames[2]
		}

		rows = append(rows, []string{
			i0(age), gender, g.pick(ethnicity),
			i0(g.normal(5, 4, 0, 28)), i0(activity),
			f1(diet), f1(g.normal(7, 1.2, 3, 12)), f1(g.normal(6, 2.5, 0, 16)),
			i0(family), f1(bmi), f2(g.normal(0.9, 0.08, 0.6, 1.4)),
			i0(g.normal(125, 15, 85, 200)), i0(g.normal(80, 10, 55, 125)), i0(g.normal(72, 9, 45, 130)),
			i0(g.normal(190, 35, 110, 380)), i0(hdl), i0(g.normal(110, 30, 30, 240)), i0(trig),
			i0(glucose), i0(g.normal(glucose+45, 20, 75, 295)), f1(insulin), f1(hba1c),
			f1(risk), stage, i0(diagnosed),
		})
	}
	return rows
}

// Dataset wraps Records into an in-memory dataset.
func Dataset(n int, seed uint64, outlierEvery int) (*dataset.Dataset, error) {
	return dataset.FromRecords("sample.csv", Header, Records(n, seed, outlierEvery))
}
