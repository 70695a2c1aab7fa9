package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/docfill/internal/doctree"
)

// TextParser handles plain text and markdown templates. Paragraphs are
// separated by blank lines; each becomes a single-run paragraph.
type TextParser struct {
	ContentType string
}

// TextTemplate is a parsed text template.
type TextTemplate struct {
	tree        *doctree.Document
	contentType string
	ext         string
}

func (p *TextParser) Parse(r io.Reader, filename string) (Template, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var paragraphs []string
	var current strings.Builder

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				paragraphs = append(paragraphs, current.String())
				current.Reset()
			}
		} else {
			if current.Len() > 0 {
				current.WriteString("\n")
			}
			current.WriteString(line)
		}
	}
	if current.Len() > 0 {
		paragraphs = append(paragraphs, current.String())
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	ct := p.ContentType
	if ct == "" {
		ct = "text/plain; charset=utf-8"
	}
	t := &TextTemplate{
		tree:        &doctree.Document{Title: title(filename)},
		contentType: ct,
		ext:         extOf(filename, ".txt"),
	}
	for _, para := range paragraphs {
		t.tree.Paragraphs = append(t.tree.Paragraphs, doctree.NewParagraph(para))
	}
	return t, nil
}

func (t *TextTemplate) Tree() *doctree.Document { return t.tree }

func (t *TextTemplate) ContentType() string { return t.contentType }

func (t *TextTemplate) Ext() string { return t.ext }

// WriteTo writes the paragraphs separated by one blank line.
func (t *TextTemplate) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder
	for i, p := range t.tree.Paragraphs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(p.Text())
	}
	if b.Len() > 0 {
		b.WriteString("\n")
	}
	n, err := io.WriteString(w, b.String())
	return int64(n), err
}
