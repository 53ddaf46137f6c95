package parser

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/dgallion1/docmark/internal/dom"
)

// CSVParser renders CSV files as a table. The first row is the header.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	title := baseTitle(filename)
	doc, body := newDocument(title)
	if len(records) == 0 {
		return &Document{Root: doc, Title: title}, nil
	}

	table := dom.NewElement("table")
	body.AppendChild(table)

	head := appendBlock(table, "thead", "")
	hr := appendBlock(head, "tr", "")
	for _, h := range records[0] {
		appendBlock(hr, "th", h)
	}

	rows := appendBlock(table, "tbody", "")
	for _, row := range records[1:] {
		tr := appendBlock(rows, "tr", "")
		for _, cell := range row {
			appendBlock(tr, "td", cell)
		}
	}
	return &Document{Root: doc, Title: title}, nil
}
