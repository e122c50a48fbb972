package consolidate

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/jackzampolin/fundrecon/internal/numeric"
)

// DefaultSheet names the worksheet when none is given.
const DefaultSheet = "Reconciliation"

// WriteXLSX writes the table to a single worksheet. Figures are stored as
// numbers, identifiers and keys as text.
func WriteXLSX(w io.Writer, t *Table, sheet string) error {
	if sheet == "" {
		sheet = DefaultSheet
	}
	if len(sheet) > 31 {
		sheet = sheet[:31]
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]any, 0, len(t.Columns)+1)
	header = append(header, t.IdentifierLabel)
	for _, c := range t.Columns {
		header = append(header, c.ID)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write identifier row: %w", err)
	}

	for i, key := range t.Keys {
		row := make([]any, 0, len(t.Columns)+1)
		row = append(row, key)
		for _, c := range t.Columns {
			row = append(row, cellValue(c.Values[i]))
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %q: %w", key, err)
		}
	}

	if err := f.SetColWidth(sheet, "A", "A", 60); err != nil {
		return err
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write xlsx: %w", err)
	}
	return nil
}

func cellValue(v numeric.Value) any {
	if v.Kind() == numeric.KindFloat {
		return v.Float64()
	}
	return v.Int64()
}
