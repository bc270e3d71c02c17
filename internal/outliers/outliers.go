// Package outliers counts IQR and valid-range violations and drops rows that
// fall outside any configured range.
package outliers

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"

	"github.com/KaramelBytes/glycoscope/internal/dataset"
	"github.com/KaramelBytes/glycoscope/internal/stats"
)

// ErrNotNumeric is returned when a range column holds non-numeric values.
var ErrNotNumeric = errors.New("range column is not numeric")

// IQRMultiplier scales the interquartile range to obtain the fences.
const IQRMultiplier = 1.5

// Fences are the IQR bounds of one column.
type Fences struct {
	Q1, Q3       float64
	Lower, Upper float64
}

// IQR returns Q3-Q1.
func (f Fences) IQR() float64 { return f.Q3 - f.Q1 }

// ComputeFences derives Q1, Q3 and the 1.5*IQR fences from the present values.
func ComputeFences(vals []float64) Fences {
	s := stats.Sorted(vals)
	q1 := stats.Quantile(s, 0.25)
	q3 := stats.Quantile(s, 0.75)
	iqr := q3 - q1
	return Fences{Q1: q1, Q3: q3, Lower: q1 - IQRMultiplier*iqr, Upper: q3 + IQRMultiplier*iqr}
}

// Result holds the outcome of a detection pass.
type Result struct {
	// IQR counts values strictly outside the fences, per range column present.
	IQR map[string]int
	// Range counts values outside the inclusive bound, per range column present.
	Range  map[string]int
	Fences map[string]Fences
	// Skipped lists range columns absent from the dataset.
	Skipped []string
	// Dataset keeps only the rows inside every present range.
	Dataset *dataset.Dataset
	Before  int
}

// Removed returns the number of rows the range filter dropped.
func (r *Result) Removed() int { return r.Before - r.Dataset.Len() }

// Detect counts outliers for every range column present in ds and returns a
// filtered copy. IQR outliers are reported but never used to drop rows. A
// missing value fails the range check for that row.
func Detect(ds *dataset.Dataset, ranges Ranges) (*Result, error) {
	res := &Result{
		IQR:    map[string]int{},
		Range:  map[string]int{},
		Fences: map[string]Fences{},
		Before: ds.Len(),
	}
	keep := make([]bool, ds.Len())
	for i := range keep {
		keep[i] = true
	}
	for _, name := range ranges.Columns() {
		c, err := ds.Column(name)
		if err != nil {
			if errors.Is(err, dataset.ErrColumnNotFound) {
				res.Skipped = append(res.Skipped, name)
				continue
			}
			return nil, err
		}
		if c.Kind != dataset.Numeric {
			return nil, fmt.Errorf("%w: %s", ErrNotNumeric, name)
		}
		f := ComputeFences(c.Num)
		res.Fences[name] = f
		bound := ranges[name]
		iqrCount, rangeCount := 0, 0
		for i, v := range c.Num {
			if !bound.Contains(v) {
				keep[i] = false
				if !math.IsNaN(v) {
					rangeCount++
				}
			}
			if v < f.Lower || v > f.Upper {
				iqrCount++
			}
		}
		res.IQR[name] = iqrCount
		res.Range[name] = rangeCount
	}
	res.Dataset = ds.Filter(keep)
	return res, nil
}

// Options controls where Apply persists the filtered table.
type Options struct {
	OutputDir string
	// WriteXLSX also writes cleaned_dataset.xlsx next to the CSV.
	WriteXLSX bool
	Logger    *slog.Logger
}

// CleanedBase is the file stem of the persisted filtered table.
const CleanedBase = "cleaned_dataset"

// Apply runs Detect and writes the filtered table into the output directory.
// It returns the result and the paths written.
func Apply(ds *dataset.Dataset, ranges Ranges, opt Options) (*Result, []string, error) {
	log := opt.Logger
	if log == nil {
		log = slog.Default()
	}
	res, err := Detect(ds, ranges)
	if err != nil {
		return nil, nil, err
	}
	for _, name := range res.Skipped {
		log.Debug("range column absent, skipped", "column", name)
	}
	var written []string
	csvPath := filepath.Join(opt.OutputDir, CleanedBase+".csv")
	if err := dataset.WriteCSV(res.Dataset, csvPath); err != nil {
		return nil, nil, fmt.Errorf("write cleaned dataset: %w", err)
	}
	written = append(written, csvPath)
	if opt.WriteXLSX {
		xlsxPath := filepath.Join(opt.OutputDir, CleanedBase+".xlsx")
		if err := dataset.WriteXLSX(res.Dataset, xlsxPath, "cleaned"); err != nil {
			return nil, nil, fmt.Errorf("write cleaned workbook: %w", err)
		}
		written = append(written, xlsxPath)
	}
	log.Info("range filter applied", "before", res.Before, "after", res.Dataset.Len(), "output", csvPath)
	return res, written, nil
}
