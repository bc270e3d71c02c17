package analysis

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/KaramelBytes/glycoscope/internal/dataset"
	"github.com/KaramelBytes/glycoscope/internal/features"
	"github.com/KaramelBytes/glycoscope/internal/sample"
)

func clinical(t *testing.T, n, outlierEvery int) *dataset.Dataset {
	t.Helper()
	ds, err := sample.Dataset(n, 7, outlierEvery)
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	return ds
}

func TestSummarizeClinicalReport(t *testing.T) {
	opt := DefaultOptions()
	opt.SampleRows = 3
	opt.GroupBy = []string{"gender"}

	ds := clinical(t, 100, 10)
	rep, err := Summarize(ds, opt)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if rep.Rows != 100 || len(rep.Samples) != 3 {
		t.Fatalf("rows=%d samples=%d", rep.Rows, len(rep.Samples))
	}
	if ds.Has(features.ColAgeGroup) {
		t.Fatalf("Summarize must not add columns to the caller's dataset")
	}

	var hba1c *RangeCheck
	for i := range rep.Ranges {
		if rep.Ranges[i].Column == "hba1c" {
			hba1c = &rep.Ranges[i]
		}
	}
	if hba1c == nil || hba1c.OutOfRange != 10 || hba1c.Bound.Max != 14 {
		t.Fatalf("hba1c range check = %#v", hba1c)
	}
	if hba1c.IQROutliers < 10 {
		t.Fatalf("hba1c=20 rows should sit above the upper fence, got %d IQR outliers", hba1c.IQROutliers)
	}
	if rep.InRange != 90 {
		t.Fatalf("rows inside every range = %d, want 90", rep.InRange)
	}

	if len(rep.Risk) != 4 || rep.Risk[0].Column != features.ColAgeGroup {
		t.Fatalf("risk breakdowns = %#v", rep.Risk)
	}
	ages := rep.Risk[0].Levels
	if len(ages) != len(features.AgeGroups.Labels) {
		t.Fatalf("age levels = %#v", ages)
	}
	total := 0
	for i, l := range ages {
		if l.Level != features.AgeGroups.Labels[i] {
			t.Fatalf("level %d = %q, want %q", i, l.Level, features.AgeGroups.Labels[i])
		}
		total += l.Rows
	}
	if total != 100 {
		t.Fatalf("age group rows sum to %d", total)
	}
	if len(rep.Indices) != 4 || rep.Indices[0].Name != features.ColTyG {
		t.Fatalf("indices = %#v", rep.Indices)
	}
	if rep.Ranking == nil || len(rep.Ranking.Positive) != 5 {
		t.Fatalf("ranking = %#v", rep.Ranking)
	}
	if len(rep.Groups) != 3 || !strings.HasPrefix(rep.Groups[0].Key, "gender=") {
		t.Fatalf("groups = %#v", rep.Groups)
	}

	md := rep.Markdown()
	for _, want := range []string{
		"# Dataset report: sample.csv",
		"Rows: 100, columns: 25",
		"## Columns",
		"## Valid ranges",
		"| hba1c | 4.00 | 14.00 | 10 |",
		"Rows inside every range: 90 of 100",
		"## Risk categories",
		"### age_group",
		"| 70+ |",
		"### bmi_category",
		"## Metabolic indices",
		"| homa_ir |",
		"## Correlations with diabetes_risk_score",
		"## Groups",
		"## Sample rows",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
	if strings.Contains(md, "MAD") {
		t.Fatalf("unexpected MAD section:\n%s", md)
	}
}

func TestSummarizeWithoutRangesOrFeatures(t *testing.T) {
	opt := DefaultOptions()
	opt.Ranges = nil
	opt.Engineer = false
	rep, err := Summarize(clinical(t, 40, 0), opt)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if len(rep.Ranges) != 0 || len(rep.Risk) != 0 || len(rep.Indices) != 0 {
		t.Fatalf("ranges=%d risk=%d indices=%d", len(rep.Ranges), len(rep.Risk), len(rep.Indices))
	}
	md := rep.Markdown()
	if strings.Contains(md, "## Valid ranges") || strings.Contains(md, "## Risk categories") {
		t.Fatalf("disabled sections rendered:\n%s", md)
	}
}

func TestSummarizeDiagnosedShare(t *testing.T) {
	ds, err := dataset.FromRecords("tiny.csv",
		[]string{"gender", "diagnosed_diabetes", "diabetes_risk_score"},
		[][]string{
			{"Female", "1", "60"},
			{"Female", "0", "20"},
			{"Female", "1", "40"},
			{"Female", "0", "20"},
			{"Male", "0", "10"},
		})
	if err != nil {
		t.Fatalf("FromRecords: %v", err)
	}
	opt := DefaultOptions()
	opt.GroupBy = []string{" gender "}
	rep, err := Summarize(ds, opt)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if opt.GroupBy[0] != " gender " {
		t.Fatalf("group-by option was modified: %q", opt.GroupBy[0])
	}
	g := rep.Groups[0]
	if g.Key != "gender=Female" || g.Size != 4 || g.Diagnosed != 50 || g.TargetMean != 35 {
		t.Fatalf("female group = %#v", g)
	}
	if !strings.Contains(rep.Markdown(), "| gender=Female | 4 | 50.0 | 35.00 |") {
		t.Fatalf("group row missing:\n%s", rep.Markdown())
	}
	// no clinical sources: features are skipped with a note
	if len(rep.Risk) != 0 || !strings.Contains(strings.Join(rep.Warnings, "\n"), "risk categories unavailable") {
		t.Fatalf("warnings = %v", rep.Warnings)
	}
}

func TestSummarizeTextRangeColumnIsNoted(t *testing.T) {
	ds, err := dataset.FromRecords("text.csv",
		[]string{"hba1c", "bmi"},
		[][]string{{"high", "22"}, {"low", "31"}})
	if err != nil {
		t.Fatalf("FromRecords: %v", err)
	}
	rep, err := Summarize(ds, DefaultOptions())
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if len(rep.Ranges) != 0 {
		t.Fatalf("ranges = %#v", rep.Ranges)
	}
	if !strings.Contains(rep.Markdown(), "valid-range screen skipped") {
		t.Fatalf("missing range note:\n%s", rep.Markdown())
	}
}

func TestSummarizeUnknownGroupColumn(t *testing.T) {
	opt := DefaultOptions()
	opt.GroupBy = []string{"Nope"}
	if _, err := Summarize(clinical(t, 10, 0), opt); err == nil {
		t.Fatalf("expected error for unknown group column")
	}
}

func TestSummarizeEmptyDataset(t *testing.T) {
	ds, err := dataset.FromRecords("empty.csv", []string{"a", "b"}, nil)
	if err != nil {
		t.Fatalf("FromRecords: %v", err)
	}
	rep, err := Summarize(ds, DefaultOptions())
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if rep.Ranking != nil {
		t.Fatalf("ranking on empty dataset = %#v", rep.Ranking)
	}
	if !strings.Contains(rep.Markdown(), "dataset has no rows") {
		t.Fatalf("expected empty-dataset note")
	}
}

func TestSampleCellsTruncateByRune(t *testing.T) {
	long := strings.Repeat("é", 100)
	ds, err := dataset.FromRecords("notes.csv", []string{"note"}, [][]string{{long}, {"a|b"}})
	if err != nil {
		t.Fatalf("FromRecords: %v", err)
	}
	opt := DefaultOptions()
	opt.Ranges = nil
	rep, err := Summarize(ds, opt)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	md := rep.Markdown()
	if !utf8.ValidString(md) {
		t.Fatalf("markdown is not valid UTF-8")
	}
	if !strings.Contains(md, "| "+strings.Repeat("é", 77)+"... |") {
		t.Fatalf("long cell not truncated to 80 runes:\n%s", md)
	}
	if !strings.Contains(md, `| a\|b |`) {
		t.Fatalf("pipe not escaped:\n%s", md)
	}
	if got := cell("short"); got != "short" {
		t.Fatalf("cell(short) = %q", got)
	}
}
