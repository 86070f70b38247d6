package gaps

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/benjaminschreck/aarbuild/pkg/aarbuild/answers"
)

// XLSXWriter writes a single-sheet workbook with a bold header row
type XLSXWriter struct{}

// column widths in characters: the key column is narrow, the text columns wide
var columnWidths = []struct {
	from, to string
	width    float64
}{
	{"A", "A", 20},
	{"B", "C", 60},
}

// Write implements Writer
func (XLSXWriter) Write(w io.Writer, rows []answers.GapRow) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(Header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, "A1", last, bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{r.RequirementKey, r.Note, r.Gap}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	for _, c := range columnWidths {
		if err := f.SetColWidth(SheetName, c.from, c.to, c.width); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}

	return f.Write(w)
}
