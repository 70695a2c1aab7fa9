package parser

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/dgallion1/docfill/internal/doctree"
)

// CSVParser handles CSV templates. The whole file is one table: each record
// is a row and each field a single-paragraph cell.
type CSVParser struct{}

// CSVTemplate is a parsed CSV template.
type CSVTemplate struct {
	tree *doctree.Document
}

func (p *CSVParser) Parse(r io.Reader, filename string) (Template, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	t := &CSVTemplate{tree: &doctree.Document{Title: title(filename)}}
	if len(records) == 0 {
		return t, nil
	}

	table := &doctree.Table{}
	for _, record := range records {
		row := &doctree.Row{}
		for _, field := range record {
			row.Cells = append(row.Cells, &doctree.Cell{
				Paragraphs: []*doctree.Paragraph{doctree.NewParagraph(field)},
			})
		}
		table.Rows = append(table.Rows, row)
	}
	t.tree.Tables = append(t.tree.Tables, table)
	return t, nil
}

func (t *CSVTemplate) Tree() *doctree.Document { return t.tree }

func (t *CSVTemplate) ContentType() string { return "text/csv; charset=utf-8" }

func (t *CSVTemplate) Ext() string { return ".csv" }

// WriteTo re-encodes the table, quoting fields as needed.
func (t *CSVTemplate) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	enc := csv.NewWriter(cw)
	for _, table := range t.tree.Tables {
		for _, row := range table.Rows {
			record := make([]string, len(row.Cells))
			for i, cell := range row.Cells {
				record[i] = cell.Text()
			}
			if err := enc.Write(record); err != nil {
				return cw.n, err
			}
		}
	}
	enc.Flush()
	return cw.n, enc.Error()
}
