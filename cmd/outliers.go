package cmd

import (
	"fmt"

	"github.com/KaramelBytes/glycoscope/internal/outliers"
	"github.com/KaramelBytes/glycoscope/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	outOutputDir string
	outRanges    string
	outXLSX      bool
	outTable     bool
	outInput     inputFlags
)

var outliersCmd = &cobra.Command{
	Use:   "outliers <file>",
	Short: "Report IQR and valid-range outliers and write the filtered table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := ensureConfig()
		if err != nil {
			return err
		}
		dsOpt, err := outInput.options()
		if err != nil {
			return err
		}
		ranges, err := effectiveRanges(outRanges)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		ds, st, err := pipeline.Load(pipeline.Options{Input: args[0], Dataset: dsOpt})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Rows after cleaning: %d (removed %d)\n", st.After, st.Removed())

		dir, err := outputDir(cmd, outOutputDir, c.OutputDir)
		if err != nil {
			return err
		}
		writeXLSX := c.WriteXLSX
		if cmd.Flags().Changed("xlsx") {
			writeXLSX = outXLSX
		}
		res, written, err := outliers.Apply(ds, ranges, outliers.Options{OutputDir: dir, WriteXLSX: writeXLSX, Logger: logger})
		if err != nil {
			return err
		}
		pipeline.PrintOutliers(out, res)
		if outTable {
			fmt.Fprintln(out)
			res.WriteTable(out, ranges)
		}
		for _, name := range res.Skipped {
			fmt.Fprintf(out, "⚠ %s not in dataset, skipped\n", name)
		}
		for _, p := range written {
			fmt.Fprintf(out, "✓ Wrote %s\n", p)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(outliersCmd)
	outliersCmd.Flags().StringVarP(&outOutputDir, "output-dir", "o", "", "directory for the filtered table (overrides config)")
	outliersCmd.Flags().StringVar(&outRanges, "ranges", "", "YAML file with valid ranges per column")
	outliersCmd.Flags().BoolVar(&outXLSX, "xlsx", false, "also write the filtered table as XLSX")
	outliersCmd.Flags().BoolVar(&outTable, "table", false, "print fences and bounds per column")
	outInput.register(outliersCmd)
}
