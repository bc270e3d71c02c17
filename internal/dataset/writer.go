package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"

	"github.com/KaramelBytes/glycoscope/internal/utils"
	"github.com/xuri/excelize/v2"
)

// WriteCSV writes the dataset with a header row. Missing cells are written empty.
func WriteCSV(d *Dataset, path string) error {
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(d.Names()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := 0; i < d.Len(); i++ {
		if err := w.Write(d.Row(i)); err != nil {
			return fmt.Errorf("write record %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return utils.SafeWriteFile(path, buf.Bytes())
}

// WriteXLSX writes the dataset to a single-sheet workbook. Numeric cells are
// stored as numbers so spreadsheet formulas keep working.
func WriteXLSX(d *Dataset, path, sheet string) error {
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if sheet == "" {
		sheet = "data"
	}
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}
	header := make([]interface{}, 0, len(d.cols))
	for _, c := range d.cols {
		header = append(header, c.Name)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := 0; i < d.Len(); i++ {
		row := make([]interface{}, len(d.cols))
		for j, c := range d.cols {
			switch {
			case c.IsMissing(i):
				row[j] = nil
			case c.Kind == Numeric:
				row[j] = c.Num[i]
			default:
				row[j] = c.Str[i]
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write record %d: %w", i, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save xlsx: %w", err)
	}
	return nil
}
