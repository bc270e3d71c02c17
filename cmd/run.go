package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/glycoscope/internal/charts"
	"github.com/KaramelBytes/glycoscope/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	runOutputDir string
	runTarget    string
	runTopK      int
	runFormat    string
	runRanges    string
	runXLSX      bool
	runCharts    []string
	runNoCharts  bool
	runOpen      bool
	runHeadRows  int
	runInput     inputFlags
)

var pipelineCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Run the full pipeline: clean, filter, engineer features, chart and rank correlations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := ensureConfig()
		if err != nil {
			return err
		}
		dsOpt, err := runInput.options()
		if err != nil {
			return err
		}
		ranges, err := effectiveRanges(runRanges)
		if err != nil {
			return err
		}

		chartOpt := c.ChartOptions()
		if chartOpt.OutputDir, err = outputDir(cmd, runOutputDir, c.OutputDir); err != nil {
			return err
		}
		chartOpt.Format = strings.ToLower(stringChanged(cmd, "format", runFormat, c.ChartFormat))
		if !charts.ValidFormat(chartOpt.Format) {
			return fmt.Errorf("unsupported --format: %s (use one of %s)", chartOpt.Format, strings.Join(charts.Formats, ", "))
		}
		if runOpen && chartOpt.Viewer == "" {
			chartOpt.Viewer = defaultViewer()
		}
		chartOpt.Logger = logger

		topK := c.TopK
		if cmd.Flags().Changed("top-k") {
			if runTopK <= 0 {
				return fmt.Errorf("--top-k must be positive, got %d", runTopK)
			}
			topK = runTopK
		}
		writeXLSX := c.WriteXLSX
		if cmd.Flags().Changed("xlsx") {
			writeXLSX = runXLSX
		}

		_, err = pipeline.Run(pipeline.Options{
			Input:      args[0],
			Dataset:    dsOpt,
			Ranges:     ranges,
			Target:     stringChanged(cmd, "target", runTarget, c.TargetColumn),
			TopK:       topK,
			Charts:     runCharts,
			SkipCharts: runNoCharts,
			Chart:      chartOpt,
			WriteXLSX:  writeXLSX,
			HeadRows:   runHeadRows,
			Out:        cmd.OutOrStdout(),
			Logger:     logger,
		})
		return err
	},
}

func init() {
	rootCmd.AddCommand(pipelineCmd)
	pipelineCmd.Flags().StringVarP(&runOutputDir, "output-dir", "o", "", "directory for charts, cleaned data and manifest (overrides config)")
	pipelineCmd.Flags().StringVar(&runTarget, "target", "", "column to rank correlations against (overrides config)")
	pipelineCmd.Flags().IntVar(&runTopK, "top-k", 0, "number of positive and negative correlations to report (overrides config)")
	pipelineCmd.Flags().StringVar(&runFormat, "format", "", "chart format: "+strings.Join(charts.Formats, "|")+" (overrides config)")
	pipelineCmd.Flags().StringVar(&runRanges, "ranges", "", "YAML file with valid ranges per column")
	pipelineCmd.Flags().BoolVar(&runXLSX, "xlsx", false, "also write the cleaned table as XLSX")
	pipelineCmd.Flags().StringSliceVar(&runCharts, "charts", nil, "comma-separated chart names to render (default all)")
	pipelineCmd.Flags().BoolVar(&runNoCharts, "no-charts", false, "skip chart rendering")
	pipelineCmd.Flags().BoolVar(&runOpen, "open", false, "open each chart after saving (configured viewer, else the platform default)")
	pipelineCmd.Flags().IntVar(&runHeadRows, "head", 5, "number of rows to preview after loading")
	runInput.register(pipelineCmd)
}
