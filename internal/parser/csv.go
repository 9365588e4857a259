package parser

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/dgallion1/docstruct/internal/structure"
)

// CSVParser handles CSV files. The whole file becomes one table whose first
// record is the header row.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*Stream, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	stream := &Stream{Title: baseTitle(filename)}
	if len(records) == 0 {
		return stream, nil
	}

	spec := &structure.TableSpec{Rows: make([][]structure.CellSpec, 0, len(records))}
	for i, record := range records {
		row := make([]structure.CellSpec, len(record))
		for j, field := range record {
			row[j] = structure.CellSpec{Text: field, ColSpan: 1, ColHeader: i == 0}
		}
		spec.Rows = append(spec.Rows, row)
	}
	stream.Elements = append(stream.Elements, structure.Element{Kind: structure.KindTable, Tag: "csv", Table: spec})
	return stream, nil
}
