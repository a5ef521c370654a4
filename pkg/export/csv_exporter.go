package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Column is one exported field. Width is a relative weight used by the PDF
// layout; zero counts as one.
type Column struct {
	Key   string
	Label string
	Width float64
}

// Dataset defines tabular export content. Rows are keyed by Column.Key.
type Dataset struct {
	Title   string
	Columns []Column
	Rows    []map[string]string
}

func (d Dataset) validate(format string) error {
	if len(d.Columns) == 0 {
		return fmt.Errorf("%s requires at least one column", format)
	}
	return nil
}

// utf8BOM lets spreadsheet tools detect UTF-8 for Korean titles.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVExporter renders datasets as CSV.
type CSVExporter struct {
	bom bool
}

// NewCSVExporter builds a CSV exporter; withBOM prefixes the UTF-8 byte order mark.
func NewCSVExporter(withBOM bool) *CSVExporter {
	return &CSVExporter{bom: withBOM}
}

// Render produces CSV encoded bytes for the dataset.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if err := data.validate("csv"); err != nil {
		return nil, err
	}
	buf := &bytes.Buffer{}
	if e.bom {
		buf.Write(utf8BOM)
	}
	writer := csv.NewWriter(buf)

	header := make([]string, len(data.Columns))
	for i, col := range data.Columns {
		header[i] = col.Label
	}
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	record := make([]string, len(data.Columns))
	for _, row := range data.Rows {
		for i, col := range data.Columns {
			record[i] = row[col.Key]
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
