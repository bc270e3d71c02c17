package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/glycoscope/internal/analysis"
	"github.com/KaramelBytes/glycoscope/internal/dataset"
	"github.com/KaramelBytes/glycoscope/internal/utils"
	"github.com/spf13/cobra"
)

var (
	descOutputDir  string
	descSampleRows int
	descGroupBy    []string
	descTarget     string
	descTopK       int
	descRanges     string
	descNoFeatures bool
	descClean      bool
	descQuiet      bool
	descInput      inputFlags
)

var describeCmd = &cobra.Command{
	Use:   "describe <files...>",
	Short: "Write a clinical Markdown report for one or more CSV/TSV/XLSX files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := expandInputs(args)
		if err != nil {
			return err
		}
		dsOpt, err := descInput.options()
		if err != nil {
			return err
		}
		c, err := ensureConfig()
		if err != nil {
			return err
		}
		ranges, err := effectiveRanges(descRanges)
		if err != nil {
			return err
		}
		opt := analysis.DefaultOptions()
		if descSampleRows > 0 {
			opt.SampleRows = descSampleRows
		}
		opt.GroupBy = descGroupBy
		opt.Target = stringChanged(cmd, "target", descTarget, c.TargetColumn)
		opt.TopK = c.TopK
		if cmd.Flags().Changed("top-k") {
			if descTopK <= 0 {
				return fmt.Errorf("--top-k must be positive, got %d", descTopK)
			}
			opt.TopK = descTopK
		}
		opt.Ranges = ranges
		opt.Engineer = !descNoFeatures

		out := cmd.OutOrStdout()
		used := map[string]int{}
		total := len(files)
		for i, path := range files {
			if !descQuiet && descOutputDir != "" {
				fmt.Fprintf(out, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			ds, err := dataset.Load(path, dsOpt)
			if err != nil {
				return fmt.Errorf("load %s: %w", path, err)
			}
			if descClean {
				ds, _ = dataset.Clean(ds)
			}
			rep, err := analysis.Summarize(ds, opt)
			if err != nil {
				return err
			}
			md := rep.Markdown()

			if descOutputDir == "" {
				fmt.Fprintln(out, md)
				continue
			}
			if err := utils.EnsureDir(descOutputDir); err != nil {
				return err
			}
			base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			// same basename from different directories gets a numeric suffix
			used[base]++
			if n := used[base]; n > 1 {
				base = fmt.Sprintf("%s__%d", base, n)
			}
			outFile := filepath.Join(descOutputDir, base+".summary.md")
			if err := utils.SafeWriteFile(outFile, []byte(md)); err != nil {
				return fmt.Errorf("write summary: %w", err)
			}
			if !descQuiet {
				fmt.Fprintf(out, "✓ Wrote summary to %s\n", outFile)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().StringVarP(&descOutputDir, "output", "o", "", "directory to write <name>.summary.md files (default stdout)")
	describeCmd.Flags().IntVar(&descSampleRows, "sample-rows", 5, "number of sample rows to include")
	describeCmd.Flags().StringSliceVar(&descGroupBy, "group-by", nil, "comma-separated column names to group by (repeatable)")
	describeCmd.Flags().StringVar(&descTarget, "target", "", "column to rank correlations against (overrides config)")
	describeCmd.Flags().IntVar(&descTopK, "top-k", 0, "number of positive and negative correlations to report (overrides config)")
	describeCmd.Flags().StringVar(&descRanges, "ranges", "", "YAML file with valid ranges per column")
	describeCmd.Flags().BoolVar(&descNoFeatures, "no-features", false, "skip risk categories and metabolic indices")
	describeCmd.Flags().BoolVar(&descClean, "clean", false, "drop incomplete and duplicate rows before summarizing")
	describeCmd.Flags().BoolVarP(&descQuiet, "quiet", "q", false, "suppress progress output")
	descInput.register(describeCmd)
}
