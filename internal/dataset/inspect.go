package dataset

import (
	"fmt"
	"io"
	"strconv"

	"github.com/KaramelBytes/glycoscope/internal/stats"
	"github.com/olekukonko/tablewriter"
)

// Describe holds the summary statistics of one numeric column.
type Describe struct {
	Name                     string
	Count                    int
	Mean, Std                float64
	Min, Q1, Median, Q3, Max float64
}

// DescribeColumn computes count, mean, std, min, quartiles and max over the
// present values of a numeric column.
func DescribeColumn(c *Column) Describe {
	s := stats.Sorted(c.Num)
	out := Describe{Name: c.Name, Count: len(s)}
	out.Mean, out.Std = stats.MeanStd(s)
	out.Min = stats.Quantile(s, 0)
	out.Q1 = stats.Quantile(s, 0.25)
	out.Median = stats.Quantile(s, 0.5)
	out.Q3 = stats.Quantile(s, 0.75)
	out.Max = stats.Quantile(s, 1)
	return out
}

// Inspect prints a head preview of n rows, the schema with non-null counts and
// summary statistics of the numeric columns.
func Inspect(w io.Writer, d *Dataset, n int) {
	if n <= 0 {
		n = 5
	}
	if n > d.Len() {
		n = d.Len()
	}
	fmt.Fprintf(w, "%s: %d rows x %d columns\n\n", d.Name, d.Len(), len(d.cols))

	fmt.Fprintln(w, "First rows:")
	head := newTable(w)
	head.SetHeader(d.Names())
	for i := 0; i < n; i++ {
		head.Append(d.Row(i))
	}
	head.Render()

	fmt.Fprintln(w, "\nSchema:")
	schema := newTable(w)
	schema.SetHeader([]string{"#", "column", "non-null", "dtype"})
	for j, c := range d.cols {
		nonNull := 0
		for i := 0; i < c.Len(); i++ {
			if !c.IsMissing(i) {
				nonNull++
			}
		}
		schema.Append([]string{strconv.Itoa(j), c.Name, strconv.Itoa(nonNull), c.Kind.String()})
	}
	schema.Render()

	numeric := d.NumericNames()
	if len(numeric) == 0 {
		return
	}
	fmt.Fprintln(w, "\nSummary statistics:")
	desc := newTable(w)
	desc.SetHeader([]string{"column", "count", "mean", "std", "min", "25%", "50%", "75%", "max"})
	for _, name := range numeric {
		c, _ := d.Column(name)
		s := DescribeColumn(c)
		desc.Append([]string{
			s.Name, strconv.Itoa(s.Count),
			fmtStat(s.Mean), fmtStat(s.Std), fmtStat(s.Min),
			fmtStat(s.Q1), fmtStat(s.Median), fmtStat(s.Q3), fmtStat(s.Max),
		})
	}
	desc.Render()
}

func newTable(w io.Writer) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetAutoFormatHeaders(false)
	t.SetAutoWrapText(false)
	t.SetAlignment(tablewriter.ALIGN_RIGHT)
	return t
}

func fmtStat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
