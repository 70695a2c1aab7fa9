package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docfill/internal/doctree"
	"github.com/fumiama/go-docx"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// DOCXParser handles .docx templates.
type DOCXParser struct{}

// DOCXTemplate is a parsed .docx whose runs are bound to the tree.
type DOCXTemplate struct {
	doc   *docx.Docx
	tree  *doctree.Document
	texts []docxBinding
}

type docxBinding struct {
	run  *doctree.Run
	text *docx.Text
}

func (p *DOCXParser) Parse(r io.Reader, filename string) (Template, error) {
	// go-docx needs an io.ReaderAt plus size.
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	t := &DOCXTemplate{
		doc:  doc,
		tree: &doctree.Document{Title: title(filename)},
	}
	for _, item := range doc.Document.Body.Items {
		switch v := item.(type) {
		case *docx.Paragraph:
			t.tree.Paragraphs = append(t.tree.Paragraphs, t.bindParagraph(v))
		case *docx.Table:
			t.tree.Tables = append(t.tree.Tables, t.bindTable(v))
		}
	}
	return t, nil
}

func (t *DOCXTemplate) bindTable(tbl *docx.Table) *doctree.Table {
	out := &doctree.Table{}
	for _, row := range tbl.TableRows {
		r := &doctree.Row{}
		for _, cell := range row.TableCells {
			c := &doctree.Cell{}
			for _, para := range cell.Paragraphs {
				c.Paragraphs = append(c.Paragraphs, t.bindParagraph(para))
			}
			r.Cells = append(r.Cells, c)
		}
		out.Rows = append(out.Rows, r)
	}
	return out
}

// bindParagraph maps every w:t of every run to one doctree run, in order.
// Runs inside hyperlinks are bound too; go-docx keeps only the last run of
// a multi-run hyperlink.
func (t *DOCXTemplate) bindParagraph(para *docx.Paragraph) *doctree.Paragraph {
	out := &doctree.Paragraph{}
	for _, child := range para.Children {
		switch v := child.(type) {
		case *docx.Run:
			t.bindRun(out, v)
		case *docx.Hyperlink:
			t.bindRun(out, &v.Run)
		}
	}
	return out
}

func (t *DOCXTemplate) bindRun(out *doctree.Paragraph, run *docx.Run) {
	for _, rc := range run.Children {
		text, ok := rc.(*docx.Text)
		if !ok {
			continue
		}
		r := &doctree.Run{Text: text.Text}
		out.Runs = append(out.Runs, r)
		t.texts = append(t.texts, docxBinding{run: r, text: text})
	}
}

func (t *DOCXTemplate) Tree() *doctree.Document { return t.tree }

func (t *DOCXTemplate) ContentType() string { return docxContentType }

func (t *DOCXTemplate) Ext() string { return ".docx" }

// WriteTo copies the tree's text back into the document and writes the
// .docx archive. Styles, images and layout are written as parsed.
func (t *DOCXTemplate) WriteTo(w io.Writer) (int64, error) {
	for _, b := range t.texts {
		b.text.Text = b.run.Text
		// Word trims edge whitespace from a w:t unless it is marked preserve.
		if b.run.Text != strings.TrimSpace(b.run.Text) {
			b.text.XMLSpace = "preserve"
		}
	}
	n, err := t.doc.WriteTo(w)
	if err != nil {
		return n, fmt.Errorf("write docx: %w", err)
	}
	return n, nil
}
