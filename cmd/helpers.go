package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/KaramelBytes/glycoscope/internal/dataset"
	"github.com/KaramelBytes/glycoscope/internal/outliers"
	"github.com/KaramelBytes/glycoscope/internal/utils"
	"github.com/spf13/cobra"
)

// inputFlags are the loader options shared by every command that reads a dataset.
type inputFlags struct {
	delimiter  string
	sheetName  string
	sheetIndex int
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (default from file extension: tab for .tsv, else comma)")
	cmd.Flags().StringVar(&f.sheetName, "sheet-name", "", "XLSX: sheet name to read")
	cmd.Flags().IntVar(&f.sheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
}

func (f *inputFlags) options() (dataset.Options, error) {
	opt := dataset.Options{SheetName: f.sheetName, SheetIndex: f.sheetIndex}
	switch f.delimiter {
	case "":
	case ",":
		opt.Delimiter = ','
	case "\t", "tab":
		opt.Delimiter = '\t'
	case ";":
		opt.Delimiter = ';'
	default:
		return opt, fmt.Errorf("unsupported --delimiter: %s", f.delimiter)
	}
	return opt, nil
}

// expandInputs resolves glob patterns and literal paths, de-duplicated and sorted.
func expandInputs(args []string) ([]string, error) {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no input files matched")
	}
	sort.Strings(files)
	return files, nil
}

// effectiveRanges prefers a --ranges file over the configured table.
func effectiveRanges(path string) (outliers.Ranges, error) {
	if path != "" {
		p, err := utils.ExpandHome(path)
		if err != nil {
			return nil, err
		}
		return outliers.LoadRanges(p)
	}
	c, err := ensureConfig()
	if err != nil {
		return nil, err
	}
	return c.Ranges(), nil
}

// defaultViewer returns the platform's "open with default application" command.
func defaultViewer() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "windows":
		return "explorer"
	default:
		return "xdg-open"
	}
}

// outputDir applies the --output-dir override and expands a leading "~".
func outputDir(cmd *cobra.Command, val, fallback string) (string, error) {
	return utils.ExpandHome(stringChanged(cmd, "output-dir", val, fallback))
}

// stringChanged returns the flag value when set, otherwise fallback.
func stringChanged(cmd *cobra.Command, name, val, fallback string) string {
	if cmd.Flags().Changed(name) && strings.TrimSpace(val) != "" {
		return val
	}
	return fallback
}
