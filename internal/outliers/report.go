package outliers

import (
	"io"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
)

// WriteTable renders the per-column fences and violation counts.
func (r *Result) WriteTable(w io.Writer, ranges Ranges) {
	names := make([]string, 0, len(r.Fences))
	for name := range r.Fences {
		names = append(names, name)
	}
	sort.Strings(names)

	t := tablewriter.NewWriter(w)
	t.SetAutoFormatHeaders(false)
	t.SetAutoWrapText(false)
	t.SetAlignment(tablewriter.ALIGN_RIGHT)
	t.SetHeader([]string{"column", "q1", "q3", "lower fence", "upper fence", "iqr outliers", "valid min", "valid max", "out of range"})
	for _, name := range names {
		f := r.Fences[name]
		b := ranges[name]
		t.Append([]string{
			name, num(f.Q1), num(f.Q3), num(f.Lower), num(f.Upper), strconv.Itoa(r.IQR[name]),
			num(b.Min), num(b.Max), strconv.Itoa(r.Range[name]),
		})
	}
	t.Render()
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }
