// Package export writes a board out as JSON, CSV or PDF.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/dyluth/kanban/pkg/board"
	"github.com/dyluth/kanban/pkg/persist"
)

// Supported export formats
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatPDF  = "pdf"
)

// Formats lists the accepted values of the --format flag.
var Formats = []string{FormatJSON, FormatCSV, FormatPDF}

// Source is the read side of the engine needed for an export.
type Source interface {
	Columns() []board.Column
	Snapshot() board.Snapshot
}

// Exporter renders a board from a Source.
type Exporter struct {
	src   Source
	title string
}

// NewExporter creates an exporter; title heads the PDF report.
func NewExporter(src Source, title string) *Exporter {
	return &Exporter{src: src, title: title}
}

// Export writes the board in format to w.
func (e *Exporter) Export(w io.Writer, format string) error {
	var (
		data []byte
		err  error
	)

	switch strings.ToLower(format) {
	case FormatJSON:
		data, err = e.json()
	case FormatCSV:
		data, err = e.csv()
	case FormatPDF:
		data, err = e.pdf()
	default:
		return fmt.Errorf("unknown format %s (must be one of %s)", format, strings.Join(Formats, ", "))
	}
	if err != nil {
		return err
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write %s export: %w", format, err)
	}
	return nil
}

// json is the persisted document, indented, so an export can be copied
// back into any storage backend.
func (e *Exporter) json() ([]byte, error) {
	raw, err := persist.Encode(e.src.Snapshot())
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, fmt.Errorf("failed to indent board document: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func (e *Exporter) csv() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"column", "position", "id", "title", "attribute"})
	for _, col := range e.src.Columns() {
		for i, c := range col.Cards {
			_ = w.Write([]string{col.ID, fmt.Sprint(i + 1), c.ID, c.Title, c.Attribute})
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to write CSV: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *Exporter) pdf() ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, tr(e.title))
	pdf.Ln(14)

	for _, col := range e.src.Columns() {
		name := col.Name
		if name == "" {
			name = col.ID
		}
		order := "ascending"
		if !col.SortAscending {
			order = "descending"
		}

		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(40, 8, tr(fmt.Sprintf("%s (%d, %s)", name, len(col.Cards), order)))
		pdf.Ln(9)

		pdf.SetFont("Arial", "", 10)
		if len(col.Cards) == 0 {
			pdf.MultiCell(0, 6, "-", "0", "L", false)
		}
		for _, c := range col.Cards {
			r, g, b := 230, 230, 230
			if hue, ok := board.ParseHSL(c.Attribute); ok {
				r, g, b = hslToRGB(hue)
			}
			pdf.SetFillColor(r, g, b)
			pdf.MultiCell(0, 6, tr(fmt.Sprintf("%s  %s", c.ID, c.Title)), "1", "L", true)
		}
		pdf.Ln(4)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return buf.Bytes(), nil
}
