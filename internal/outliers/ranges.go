package outliers

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Range is an inclusive [Min, Max] bound for one column.
type Range struct {
	Min float64 `yaml:"min" json:"min" mapstructure:"min"`
	Max float64 `yaml:"max" json:"max" mapstructure:"max"`
}

// Contains reports whether v lies inside the closed interval. NaN is never contained.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Ranges maps a column name to its clinically plausible range.
type Ranges map[string]Range

// DefaultRanges returns the built-in valid-range table for the diabetes
// health-indicator dataset.
func DefaultRanges() Ranges {
	return Ranges{
		"alcohol_consumption_per_week":       {0, 28},
		"physical_activity_minutes_per_week": {0, 900},
		"sleep_hours_per_day":                {3, 12},
		"screen_time_hours_per_day":          {0, 16},
		"bmi":                                {10, 50},
		"waist_to_hip_ratio":                 {0.5, 2.0},
		"systolic_bp":                        {80, 220},
		"diastolic_bp":                       {50, 130},
		"heart_rate":                         {30, 200},
		"cholesterol_total":                  {100, 400},
		"hdl_cholesterol":                    {20, 100},
		"ldl_cholesterol":                    {0, 250},
		"triglycerides":                      {30, 1000},
		"glucose_fasting":                    {50, 200},
		"glucose_postprandial":               {70, 300},
		"insulin_level":                      {2, 50},
		"hba1c":                              {4, 14},
		"diabetes_risk_score":                {0, 100},
	}
}

// Columns returns the column names in sorted order so that reports are stable.
func (r Ranges) Columns() []string {
	out := make([]string, 0, len(r))
	for k := range r {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Validate checks that every bound is well formed.
func (r Ranges) Validate() error {
	for _, name := range r.Columns() {
		b := r[name]
		if b.Min > b.Max {
			return fmt.Errorf("range for %s: min %g exceeds max %g", name, b.Min, b.Max)
		}
	}
	return nil
}

// LoadRanges reads a YAML document of the form `column: {min: x, max: y}`.
func LoadRanges(path string) (Ranges, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ranges: %w", err)
	}
	var r Ranges
	if err := yaml.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("parse ranges: %w", err)
	}
	if len(r) == 0 {
		return nil, fmt.Errorf("parse ranges: %s defines no columns", path)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// YAML renders the table in the format LoadRanges accepts.
func (r Ranges) YAML() ([]byte, error) {
	return yaml.Marshal(map[string]Range(r))
}
