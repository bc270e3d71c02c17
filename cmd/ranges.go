package cmd

import (
	"fmt"

	"github.com/KaramelBytes/glycoscope/internal/outliers"
	"github.com/spf13/cobra"
)

var (
	rangesFile    string
	rangesBuiltIn bool
)

var rangesCmd = &cobra.Command{
	Use:   "ranges",
	Short: "Print the effective valid-range table as YAML",
	Long: `Print the valid-range table used by the outlier filter. The output can be
edited and passed back with --ranges or placed under valid_ranges in the config file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var r outliers.Ranges
		if rangesBuiltIn {
			r = outliers.DefaultRanges()
		} else {
			var err error
			if r, err = effectiveRanges(rangesFile); err != nil {
				return err
			}
		}
		b, err := r.YAML()
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(b))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rangesCmd)
	rangesCmd.Flags().StringVar(&rangesFile, "ranges", "", "YAML file to validate and print instead of the configured table")
	rangesCmd.Flags().BoolVar(&rangesBuiltIn, "built-in", false, "print the built-in table, ignoring config")
}
