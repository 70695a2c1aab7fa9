package doctree

import "strings"

// Document is a loaded template: its top-level paragraphs and its tables.
// The parser that produced it keeps each Run bound to the source element,
// so edits to Run.Text are written back when the template is saved.
type Document struct {
	Title      string       // Template title (from filename)
	Paragraphs []*Paragraph // Body paragraphs outside tables
	Tables     []*Table     // Body tables
}

// Paragraph is a sequence of text runs. Runs split where the source
// document changes formatting.
type Paragraph struct {
	Runs []*Run
}

// Run is a contiguous span of text with uniform formatting.
type Run struct {
	Text string
}

// Table is a grid of cells, each holding its own paragraphs.
type Table struct {
	Rows []*Row
}

// Row is one table row.
type Row struct {
	Cells []*Cell
}

// Cell is one table cell.
type Cell struct {
	Paragraphs []*Paragraph
}

// NewParagraph builds a paragraph with one run per text.
func NewParagraph(texts ...string) *Paragraph {
	p := &Paragraph{}
	for _, t := range texts {
		p.Runs = append(p.Runs, &Run{Text: t})
	}
	return p
}

// Text joins the paragraph's runs.
func (p *Paragraph) Text() string {
	var b strings.Builder
	for _, r := range p.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// Text joins the cell's paragraphs with newlines.
func (c *Cell) Text() string {
	parts := make([]string, len(c.Paragraphs))
	for i, p := range c.Paragraphs {
		parts[i] = p.Text()
	}
	return strings.Join(parts, "\n")
}
