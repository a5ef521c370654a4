package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const (
	pageWidthLandscape = 277.0
	rowHeight          = 7.0
)

// PDFExporter renders datasets into a landscape table. Core fonts only cover
// cp1252, so characters outside it are replaced by the translator.
type PDFExporter struct {
	fontFamily string
}

// NewPDFExporter constructs a PDF exporter using the given core font family.
func NewPDFExporter(fontFamily string) *PDFExporter {
	if fontFamily == "" {
		fontFamily = "Helvetica"
	}
	return &PDFExporter{fontFamily: fontFamily}
}

func columnWidths(cols []Column) []float64 {
	total := 0.0
	weights := make([]float64, len(cols))
	for i, col := range cols {
		weights[i] = col.Width
		if weights[i] <= 0 {
			weights[i] = 1
		}
		total += weights[i]
	}
	for i := range weights {
		weights[i] = weights[i] / total * pageWidthLandscape
	}
	return weights
}

// Render creates the PDF document.
func (e *PDFExporter) Render(data Dataset) ([]byte, error) {
	if err := data.validate("pdf"); err != nil {
		return nil, err
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(true, 12)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	widths := columnWidths(data.Columns)

	header := func() {
		pdf.SetFont(e.fontFamily, "B", 9)
		pdf.SetFillColor(232, 241, 255)
		for i, col := range data.Columns {
			pdf.CellFormat(widths[i], rowHeight+1, tr(col.Label), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont(e.fontFamily, "", 8)
	}
	pdf.SetHeaderFunc(func() {
		if data.Title != "" {
			pdf.SetFont(e.fontFamily, "B", 13)
			pdf.CellFormat(0, 9, tr(data.Title), "", 1, "L", false, 0, "")
			pdf.Ln(2)
		}
		header()
	})
	pdf.AddPage()

	for _, row := range data.Rows {
		for i, col := range data.Columns {
			pdf.CellFormat(widths[i], rowHeight, tr(row[col.Key]), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
