package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/glycoscope/internal/dataset"
	"github.com/KaramelBytes/glycoscope/internal/sample"
	"github.com/spf13/cobra"
)

var (
	sampleRows     int
	sampleSeed     uint64
	sampleOutliers int
	sampleOutput   string
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Write a synthetic diabetes-risk dataset for trying the pipeline",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if sampleRows <= 0 {
			return fmt.Errorf("--rows must be positive, got %d", sampleRows)
		}
		ds, err := sample.Dataset(sampleRows, sampleSeed, sampleOutliers)
		if err != nil {
			return err
		}
		switch strings.ToLower(filepath.Ext(sampleOutput)) {
		case ".xlsx":
			err = dataset.WriteXLSX(ds, sampleOutput, "data")
		case ".csv":
			err = dataset.WriteCSV(ds, sampleOutput)
		default:
			return fmt.Errorf("%w: %s (use .csv or .xlsx)", dataset.ErrUnsupportedFormat, filepath.Ext(sampleOutput))
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %d rows to %s\n", ds.Len(), sampleOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sampleCmd)
	sampleCmd.Flags().IntVarP(&sampleRows, "rows", "n", 500, "number of rows to generate")
	sampleCmd.Flags().Uint64Var(&sampleSeed, "seed", 1, "random seed")
	sampleCmd.Flags().IntVar(&sampleOutliers, "outliers", 0, "make every Nth row violate the HbA1c range (0 = none)")
	sampleCmd.Flags().StringVarP(&sampleOutput, "output", "o", "sample.csv", "output file (.csv or .xlsx)")
}
