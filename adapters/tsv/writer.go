// Package tsv writes reports as tab-separated text.
package tsv

import (
	"encoding/csv"
	"io"

	"rxprev/domain/prevalence"
	"rxprev/internal/errors"
)

// Writer writes a report to an io.Writer. Lines end in CRLF and fields are
// quoted only when they contain a tab, a quote or a line break.
type Writer struct {
	out io.Writer
}

// NewWriter creates a TSV writer on out
func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

// WriteReport implements ports.ReportWriter
func (w *Writer) WriteReport(table prevalence.Table) error {
	cw := csv.NewWriter(w.out)
	cw.Comma = '\t'
	cw.UseCRLF = true

	if err := cw.Write(table.Header); err != nil {
		return errors.IOError("failed to write header", err)
	}
	if err := cw.WriteAll(table.Records); err != nil {
		return errors.IOError("failed to write rows", err)
	}
	return nil
}
