package excel

import (
	"fmt"

	"rxprev/domain/prevalence"
	"rxprev/internal/errors"

	"github.com/xuri/excelize/v2"
)

// ReportWriter saves a rendered report as a workbook. Cells are written as
// the same strings the TSV report carries.
type ReportWriter struct {
	filePath string
}

// NewReportWriter creates a writer for filePath
func NewReportWriter(filePath string) *ReportWriter {
	return &ReportWriter{filePath: filePath}
}

// WriteReport implements ports.ReportWriter
func (w *ReportWriter) WriteReport(table prevalence.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeRow(f, 1, table.Header); err != nil {
		return err
	}
	for i, record := range table.Records {
		if err := writeRow(f, i+2, record); err != nil {
			return err
		}
	}
	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return errors.IOError("failed to freeze header row", err)
	}
	if err := f.SaveAs(w.filePath); err != nil {
		return errors.IOError("failed to save workbook "+w.filePath, err)
	}
	return nil
}

func writeRow(f *excelize.File, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return errors.InternalError(fmt.Sprintf("invalid row %d: %v", row, err))
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(SheetName, cell, &cells); err != nil {
		return errors.IOError(fmt.Sprintf("failed to write row %d", row), err)
	}
	return nil
}
