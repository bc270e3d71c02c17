package analysis

import (
	"fmt"
	"math"
	"strings"
)

// Markdown renders the report as a Markdown document.
func (rep *Report) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Dataset report: %s\n\n", rep.Name)
	fmt.Fprintf(&b, "Rows: %d, columns: %d\n\n", rep.Rows, len(rep.Header))

	b.WriteString("## Columns\n\n")
	if len(rep.Numeric) > 0 {
		table(&b, []string{"column", "count", "missing", "mean", "std", "min", "median", "max"}, func(row func(...string)) {
			for _, s := range rep.Numeric {
				row(s.Name, fmt.Sprint(s.Count), fmt.Sprint(s.Missing), num(s.Mean), num(s.Std), num(s.Min), num(s.Median), num(s.Max))
			}
		})
	}
	if len(rep.Labels) > 0 {
		table(&b, []string{"column", "missing", "unique", "top values"}, func(row func(...string)) {
			for _, l := range rep.Labels {
				top := make([]string, len(l.Top))
				for i, t := range l.Top {
					top[i] = fmt.Sprintf("%s (%d)", t.Level, t.Rows)
				}
				row(l.Name, fmt.Sprint(l.Missing), fmt.Sprint(l.Unique), strings.Join(top, ", "))
			}
		})
	}

	if len(rep.Ranges) > 0 {
		b.WriteString("## Valid ranges\n\n")
		table(&b, []string{"column", "valid min", "valid max", "out of range", "lower fence", "upper fence", "iqr outliers"}, func(row func(...string)) {
			for _, r := range rep.Ranges {
				row(r.Column, num(r.Bound.Min), num(r.Bound.Max), fmt.Sprint(r.OutOfRange), num(r.Fences.Lower), num(r.Fences.Upper), fmt.Sprint(r.IQROutliers))
			}
		})
		fmt.Fprintf(&b, "Rows inside every range: %d of %d\n\n", rep.InRange, rep.Rows)
	}

	if len(rep.Risk) > 0 {
		b.WriteString("## Risk categories\n\n")
		for _, br := range rep.Risk {
			fmt.Fprintf(&b, "### %s\n\n", br.Column)
			table(&b, []string{"level", "rows", "diagnosed %"}, func(row func(...string)) {
				for _, l := range br.Levels {
					row(l.Level, fmt.Sprint(l.Rows), pct(l.Diagnosed))
				}
			})
		}
	}

	if len(rep.Indices) > 0 {
		b.WriteString("## Metabolic indices\n\n")
		table(&b, []string{"index", "defined", "undefined", "mean", "median", "min", "max"}, func(row func(...string)) {
			for _, s := range rep.Indices {
				row(s.Name, fmt.Sprint(s.Count), fmt.Sprint(s.Missing), num(s.Mean), num(s.Median), num(s.Min), num(s.Max))
			}
		})
	}

	if rk := rep.Ranking; rk != nil {
		fmt.Fprintf(&b, "## Correlations with %s\n\n", rk.Target)
		table(&b, []string{"direction", "column", "r"}, func(row func(...string)) {
			for _, e := range rk.Positive {
				row("positive", e.Column, fmt.Sprintf("%+.4f", e.R))
			}
			for _, e := range rk.Negative {
				row("negative", e.Column, fmt.Sprintf("%+.4f", e.R))
			}
		})
	}

	if len(rep.Groups) > 0 {
		b.WriteString("## Groups\n\n")
		table(&b, []string{"group", "rows", "diagnosed %", "target mean"}, func(row func(...string)) {
			for _, g := range rep.Groups {
				row(g.Key, fmt.Sprint(g.Size), pct(g.Diagnosed), num(g.TargetMean))
			}
		})
	}

	if len(rep.Samples) > 0 {
		b.WriteString("## Sample rows\n\n")
		table(&b, rep.Header, func(row func(...string)) {
			for _, r := range rep.Samples {
				row(r...)
			}
		})
	}

	if len(rep.Warnings) > 0 {
		b.WriteString("## Notes\n\n")
		for _, w := range rep.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func table(b *strings.Builder, header []string, rows func(row func(...string))) {
	line := func(cells ...string) {
		b.WriteString("|")
		for _, c := range cells {
			b.WriteString(" " + cell(c) + " |")
		}
		b.WriteString("\n")
	}
	line(header...)
	sep := make([]string, len(header))
	for i := range sep {
		sep[i] = "---"
	}
	line(sep...)
	rows(line)
	b.WriteString("\n")
}

// cell escapes pipes, flattens newlines and truncates to maxCell runes.
func cell(s string) string {
	s = strings.NewReplacer("|", "\\|", "\r", " ", "\n", " ").Replace(s)
	r := []rune(s)
	if len(r) > maxCell {
		return string(r[:maxCell-3]) + "..."
	}
	return s
}

func num(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", v)
}

func pct(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.1f", v)
}
