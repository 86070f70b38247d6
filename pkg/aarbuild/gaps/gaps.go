// Package gaps writes the three-column gap report: requirement key, the
// requirement note and the missing information.
package gaps

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/benjaminschreck/aarbuild/pkg/aarbuild/answers"
)

// Header is the first row of every report
var Header = []string{answers.FieldRequirement, answers.FieldNote, answers.FieldGap}

// SheetName is the worksheet name used in XLSX reports
const SheetName = "Gaps"

// Writer serializes gap rows
type Writer interface {
	Write(w io.Writer, rows []answers.GapRow) error
}

// ForPath picks the writer matching the file extension: .csv writes CSV,
// anything else writes XLSX.
func ForPath(path string) Writer {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return CSVWriter{}
	}
	return XLSXWriter{}
}

// WriteFile writes rows to path, creating parent directories
func WriteFile(path string, rows []answers.GapRow) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return ForPath(path).Write(f, rows)
}

// CSVWriter writes the report as comma separated values
type CSVWriter struct{}

// Write implements Writer
func (CSVWriter) Write(w io.Writer, rows []answers.GapRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.RequirementKey, r.Note, r.Gap}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
