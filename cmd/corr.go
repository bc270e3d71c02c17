package cmd

import (
	"fmt"

	"github.com/KaramelBytes/glycoscope/internal/analysis"
	"github.com/KaramelBytes/glycoscope/internal/charts"
	"github.com/KaramelBytes/glycoscope/internal/features"
	"github.com/KaramelBytes/glycoscope/internal/outliers"
	"github.com/KaramelBytes/glycoscope/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	corrTarget    string
	corrTopK      int
	corrRanges    string
	corrChart     bool
	corrOutputDir string
	corrInput     inputFlags
)

var corrCmd = &cobra.Command{
	Use:   "corr <file>",
	Short: "Rank the variables most correlated with the target column",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := ensureConfig()
		if err != nil {
			return err
		}
		dsOpt, err := corrInput.options()
		if err != nil {
			return err
		}
		ranges, err := effectiveRanges(corrRanges)
		if err != nil {
			return err
		}
		ds, _, err := pipeline.Load(pipeline.Options{Input: args[0], Dataset: dsOpt})
		if err != nil {
			return err
		}
		res, err := outliers.Detect(ds, ranges)
		if err != nil {
			return fmt.Errorf("outlier filter: %w", err)
		}
		if _, err := features.Engineer(res.Dataset); err != nil {
			return err
		}

		topK := c.TopK
		if cmd.Flags().Changed("top-k") {
			topK = corrTopK
		}
		rk, err := analysis.TopCorrelations(res.Dataset, stringChanged(cmd, "target", corrTarget, c.TargetColumn), topK)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		rk.Fprint(out)

		if corrChart {
			opt := c.ChartOptions()
			if opt.OutputDir, err = outputDir(cmd, corrOutputDir, c.OutputDir); err != nil {
				return err
			}
			opt.Logger = logger
			path, err := charts.TopCorr(rk, opt)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Wrote %s\n", path)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(corrCmd)
	corrCmd.Flags().StringVar(&corrTarget, "target", "", "column to rank correlations against (overrides config)")
	corrCmd.Flags().IntVar(&corrTopK, "top-k", 0, "number of positive and negative correlations to report (overrides config)")
	corrCmd.Flags().StringVar(&corrRanges, "ranges", "", "YAML file with valid ranges per column")
	corrCmd.Flags().BoolVar(&corrChart, "chart", false, "also write the ranking as a bar chart")
	corrCmd.Flags().StringVarP(&corrOutputDir, "output-dir", "o", "", "directory for the chart (overrides config)")
	corrInput.register(corrCmd)
}
