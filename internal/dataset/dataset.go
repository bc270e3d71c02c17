package dataset

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrColumnNotFound is returned when a referenced column is absent.
var ErrColumnNotFound = errors.New("column not found")

// Kind is the inferred type of a column.
type Kind int

const (
	Numeric Kind = iota
	Categorical
)

func (k Kind) String() string {
	if k == Numeric {
		return "float64"
	}
	return "object"
}

// Column is a single named column. Numeric columns keep values in Num with NaN
// for missing cells; categorical columns keep values in Str with "" for missing.
type Column struct {
	Name string
	Kind Kind
	Num  []float64
	Str  []string
	// Levels is the ordered category list for ordinal columns; nil for plain
	// categoricals.
	Levels []string
}

// Len returns the number of cells in the column.
func (c *Column) Len() int {
	if c.Kind == Numeric {
		return len(c.Num)
	}
	return len(c.Str)
}

// IsMissing reports whether row i holds no value.
func (c *Column) IsMissing(i int) bool {
	if c.Kind == Numeric {
		return math.IsNaN(c.Num[i])
	}
	return c.Str[i] == ""
}

// Cell renders row i as text. Missing cells render as "".
func (c *Column) Cell(i int) string {
	if c.Kind == Categorical {
		return c.Str[i]
	}
	return FormatNumber(c.Num[i])
}

// FormatNumber renders a float without exponent and with the shortest exact digits.
func FormatNumber(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Dataset is an in-memory table of named columns with equal length.
type Dataset struct {
	Name  string
	cols  []*Column
	index map[string]int
	rows  int
}

// New creates an empty dataset.
func New(name string) *Dataset {
	return &Dataset{Name: name, index: map[string]int{}}
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return d.rows }

// Columns returns the columns in insertion order.
func (d *Dataset) Columns() []*Column { return d.cols }

// Names returns the column names in insertion order.
func (d *Dataset) Names() []string {
	out := make([]string, len(d.cols))
	for i, c := range d.cols {
		out[i] = c.Name
	}
	return out
}

// NumericNames returns the names of numeric columns in insertion order.
func (d *Dataset) NumericNames() []string {
	var out []string
	for _, c := range d.cols {
		if c.Kind == Numeric {
			out = append(out, c.Name)
		}
	}
	return out
}

// Has reports whether the dataset contains the named column.
func (d *Dataset) Has(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Column looks up a column by name.
func (d *Dataset) Column(name string) (*Column, error) {
	i, ok := d.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, name)
	}
	return d.cols[i], nil
}

// Numeric returns the values of a numeric column.
func (d *Dataset) Numeric(name string) ([]float64, error) {
	c, err := d.Column(name)
	if err != nil {
		return nil, err
	}
	if c.Kind != Numeric {
		return nil, fmt.Errorf("column %s is %s, not numeric", name, c.Kind)
	}
	return c.Num, nil
}

// Labels returns the values of any column rendered as text, suitable for grouping.
func (d *Dataset) Labels(name string) ([]string, error) {
	c, err := d.Column(name)
	if err != nil {
		return nil, err
	}
	if c.Kind == Categorical {
		return c.Str, nil
	}
	out := make([]string, len(c.Num))
	for i := range c.Num {
		out[i] = c.Cell(i)
	}
	return out, nil
}

// AddNumeric appends a numeric column, replacing one with the same name.
func (d *Dataset) AddNumeric(name string, vals []float64) error {
	return d.add(&Column{Name: name, Kind: Numeric, Num: vals})
}

// AddCategorical appends a categorical column, replacing one with the same name.
// levels may be nil.
func (d *Dataset) AddCategorical(name string, vals []string, levels []string) error {
	return d.add(&Column{Name: name, Kind: Categorical, Str: vals, Levels: levels})
}

func (d *Dataset) add(c *Column) error {
	if len(d.cols) > 0 && c.Len() != d.rows {
		return fmt.Errorf("column %s has %d rows, dataset has %d", c.Name, c.Len(), d.rows)
	}
	if len(d.cols) == 0 {
		d.rows = c.Len()
	}
	if i, ok := d.index[c.Name]; ok {
		d.cols[i] = c
		return nil
	}
	d.index[c.Name] = len(d.cols)
	d.cols = append(d.cols, c)
	return nil
}

// Row renders row i as text cells in column order.
func (d *Dataset) Row(i int) []string {
	out := make([]string, len(d.cols))
	for j, c := range d.cols {
		out[j] = c.Cell(i)
	}
	return out
}

// Filter returns a new dataset holding the rows where keep is true.
func (d *Dataset) Filter(keep []bool) *Dataset {
	out := New(d.Name)
	n := 0
	for _, k := range keep {
		if k {
			n++
		}
	}
	for _, c := range d.cols {
		nc := &Column{Name: c.Name, Kind: c.Kind, Levels: c.Levels}
		if c.Kind == Numeric {
			nc.Num = make([]float64, 0, n)
			for i, v := range c.Num {
				if keep[i] {
					nc.Num = append(nc.Num, v)
				}
			}
		} else {
			nc.Str = make([]string, 0, n)
			for i, v := range c.Str {
				if keep[i] {
					nc.Str = append(nc.Str, v)
				}
			}
		}
		out.index[nc.Name] = len(out.cols)
		out.cols = append(out.cols, nc)
	}
	out.rows = n
	return out
}

// Clone returns a deep copy of the dataset.
func (d *Dataset) Clone() *Dataset {
	keep := make([]bool, d.rows)
	for i := range keep {
		keep[i] = true
	}
	return d.Filter(keep)
}

// CleanStats reports how many rows the loader's cleaning step removed.
type CleanStats struct {
	Before     int
	After      int
	Missing    int
	Duplicates int
}

// Removed returns the total number of dropped rows.
func (s CleanStats) Removed() int { return s.Before - s.After }

// Clean drops rows holding any missing field and then exact duplicate rows,
// keeping the first occurrence.
func Clean(d *Dataset) (*Dataset, CleanStats) {
	st := CleanStats{Before: d.Len()}
	keep := make([]bool, d.Len())
	for i := range keep {
		keep[i] = true
		for _, c := range d.cols {
			if c.IsMissing(i) {
				keep[i] = false
				st.Missing++
				break
			}
		}
	}
	seen := make(map[string]struct{}, d.Len())
	for i := range keep {
		if !keep[i] {
			continue
		}
		key := strings.Join(d.Row(i), "\x1f")
		if _, ok := seen[key]; ok {
			keep[i] = false
			st.Duplicates++
			continue
		}
		seen[key] = struct{}{}
	}
	out := d.Filter(keep)
	st.After = out.Len()
	return out, st
}
