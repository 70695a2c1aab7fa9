package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docfill/internal/doctree"
	"golang.org/x/net/html"
)

// HTMLParser handles .html templates.
type HTMLParser struct{}

// HTMLTemplate is a parsed HTML document whose text nodes are bound to the
// tree. Attribute values are not substituted.
type HTMLTemplate struct {
	root  *html.Node
	tree  *doctree.Document
	texts []htmlBinding
	ext   string
}

type htmlBinding struct {
	run  *doctree.Run
	node *html.Node
}

func (p *HTMLParser) Parse(r io.Reader, filename string) (Template, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	t := &HTMLTemplate{
		root: doc,
		tree: &doctree.Document{Title: title(filename)},
		ext:  extOf(filename, ".html"),
	}
	if name := findTitle(doc); name != "" {
		t.tree.Title = name
	}

	emit := func(p *doctree.Paragraph) {
		t.tree.Paragraphs = append(t.tree.Paragraphs, p)
	}
	onTable := func(n *html.Node) {
		t.tree.Tables = append(t.tree.Tables, t.bindTable(n))
	}
	t.walk(doc, emit, onTable)
	return t, nil
}

// walk emits a paragraph for every paragraph-like element and for every
// bare non-blank text node; tables are handed to onTable.
func (t *HTMLTemplate) walk(n *html.Node, emit func(*doctree.Paragraph), onTable func(*html.Node)) {
	switch n.Type {
	case html.TextNode:
		if strings.TrimSpace(n.Data) != "" {
			emit(t.bindRuns([]*html.Node{n}))
		}
		return
	case html.ElementNode:
		switch n.Data {
		case "script", "style":
			return
		case "table":
			onTable(n)
			return
		}
		if isParagraphElement(n.Data) {
			emit(t.bindRuns(textNodes(n)))
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		t.walk(c, emit, onTable)
	}
}

func (t *HTMLTemplate) bindTable(tbl *html.Node) *doctree.Table {
	out := &doctree.Table{}
	for _, tr := range rows(tbl) {
		row := &doctree.Row{}
		for c := tr.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode || (c.Data != "td" && c.Data != "th") {
				continue
			}
			cell := &doctree.Cell{}
			emit := func(p *doctree.Paragraph) {
				cell.Paragraphs = append(cell.Paragraphs, p)
			}
			// Nested tables contribute their text to the enclosing cell.
			var nested func(*html.Node)
			nested = func(inner *html.Node) {
				for _, r := range t.bindTable(inner).Rows {
					for _, ic := range r.Cells {
						cell.Paragraphs = append(cell.Paragraphs, ic.Paragraphs...)
					}
				}
			}
			for cc := c.FirstChild; cc != nil; cc = cc.NextSibling {
				t.walk(cc, emit, nested)
			}
			row.Cells = append(row.Cells, cell)
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

func (t *HTMLTemplate) bindRuns(nodes []*html.Node) *doctree.Paragraph {
	p := &doctree.Paragraph{}
	for _, n := range nodes {
		r := &doctree.Run{Text: n.Data}
		p.Runs = append(p.Runs, r)
		t.texts = append(t.texts, htmlBinding{run: r, node: n})
	}
	return p
}

func (t *HTMLTemplate) Tree() *doctree.Document { return t.tree }

func (t *HTMLTemplate) ContentType() string { return "text/html; charset=utf-8" }

func (t *HTMLTemplate) Ext() string { return t.ext }

// WriteTo copies the tree's text into the bound text nodes and renders the
// document. Substituted values are escaped by the renderer.
func (t *HTMLTemplate) WriteTo(w io.Writer) (int64, error) {
	for _, b := range t.texts {
		b.node.Data = b.run.Text
	}
	cw := &countingWriter{w: w}
	if err := html.Render(cw, t.root); err != nil {
		return cw.n, fmt.Errorf("render html: %w", err)
	}
	return cw.n, nil
}

func isParagraphElement(tag string) bool {
	switch tag {
	case "p", "li", "h1", "h2", "h3", "h4", "h5", "h6",
		"blockquote", "pre", "dt", "dd", "caption", "figcaption", "title", "label":
		return true
	}
	return false
}

// textNodes returns the text nodes under n in document order.
func textNodes(n *html.Node) []*html.Node {
	var out []*html.Node
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			out = append(out, n)
			return
		}
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return out
}

// rows returns the table's own tr elements, looking through thead, tbody
// and tfoot but not into nested tables.
func rows(tbl *html.Node) []*html.Node {
	var out []*html.Node
	for c := tbl.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "tr":
			out = append(out, c)
		case "thead", "tbody", "tfoot":
			for r := c.FirstChild; r != nil; r = r.NextSibling {
				if r.Type == html.ElementNode && r.Data == "tr" {
					out = append(out, r)
				}
			}
		}
	}
	return out
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	for _, t := range textNodes(n) {
		buf.WriteString(t.Data)
	}
	return strings.TrimSpace(buf.String())
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
