// Package substitute replaces placeholder tokens in a document tree.
//
// A token is Open + name + Close, e.g. "{{petitioner}}". Names are trimmed,
// so "{{ petitioner }}" resolves the same field. Tokens with no mapping
// entry are left in the text untouched, which makes a second pass with the
// same mapping a no-op and a pass with a richer mapping resolve them.
package substitute

import (
	"strings"

	"github.com/dgallion1/docfill/internal/doctree"
	"github.com/dgallion1/docfill/internal/fields"
)

// Default token delimiters.
const (
	DefaultOpen  = "{{"
	DefaultClose = "}}"
)

// Engine performs in-place token replacement.
type Engine struct {
	Open  string
	Close string
}

// New returns an Engine with the given delimiters, defaulting empty ones.
func New(open, close string) *Engine {
	if open == "" {
		open = DefaultOpen
	}
	if close == "" {
		close = DefaultClose
	}
	return &Engine{Open: open, Close: close}
}

// Stats summarizes one Substitute call.
type Stats struct {
	Replaced     int      // Tokens replaced in total
	InParagraphs int      // ...of which in top-level paragraphs
	InTables     int      // ...of which in table cells
	Unresolved   []string // Unique unresolved names, first-seen order
}

// Substitute replaces tokens in every top-level paragraph and in every
// paragraph of every table cell. The document is mutated and returned.
func (e *Engine) Substitute(doc *doctree.Document, m fields.Mapping) (*doctree.Document, Stats) {
	var st Stats
	seen := make(map[string]bool)
	note := func(missing []string) {
		for _, name := range missing {
			if !seen[name] {
				seen[name] = true
				st.Unresolved = append(st.Unresolved, name)
			}
		}
	}

	for _, p := range doc.Paragraphs {
		n, missing := e.Paragraph(p, m)
		st.InParagraphs += n
		note(missing)
	}
	for _, tbl := range doc.Tables {
		for _, row := range tbl.Rows {
			for _, cell := range row.Cells {
				for _, p := range cell.Paragraphs {
					n, missing := e.Paragraph(p, m)
					st.InTables += n
					note(missing)
				}
			}
		}
	}
	st.Replaced = st.InParagraphs + st.InTables
	return doc, st
}

// Paragraph replaces the tokens of one paragraph and reports how many were
// replaced and which names had no mapping. A token may span runs: its
// replacement goes into the run where it starts, the rest of the token is
// removed from the runs that follow, and all other text stays in its run.
func (e *Engine) Paragraph(p *doctree.Paragraph, m fields.Mapping) (int, []string) {
	text := p.Text()
	tokens := e.scan(text)
	if len(tokens) == 0 {
		return 0, nil
	}

	// owner[i] is the run holding byte i of text.
	owner := make([]int, 0, len(text))
	for i, r := range p.Runs {
		for range len(r.Text) {
			owner = append(owner, i)
		}
	}

	out := make([]strings.Builder, len(p.Runs))
	copySpan := func(from, to int) {
		for i := from; i < to; {
			run := owner[i]
			j := i
			for j < to && owner[j] == run {
				j++
			}
			out[run].WriteString(text[i:j])
			i = j
		}
	}

	var missing []string
	replaced, pos := 0, 0
	for _, tok := range tokens {
		f, ok := m[tok.name]
		if !ok {
			missing = append(missing, tok.name)
			continue
		}
		copySpan(pos, tok.start)
		out[owner[tok.start]].WriteString(f.Display)
		pos = tok.end
		replaced++
	}
	if replaced == 0 {
		return 0, missing
	}
	copySpan(pos, len(text))

	for i, r := range p.Runs {
		r.Text = out[i].String()
	}
	return replaced, missing
}

type token struct {
	start, end int // byte offsets of the whole token, end exclusive
	name       string
}

// scan finds tokens left to right. For "{{a {{b}}" the innermost opener
// wins, so "{{b}}" is the token.
func (e *Engine) scan(text string) []token {
	var out []token
	for i := 0; i < len(text); {
		s := strings.Index(text[i:], e.Open)
		if s < 0 {
			break
		}
		s += i
		bodyStart := s + len(e.Open)
		c := strings.Index(text[bodyStart:], e.Close)
		if c < 0 {
			break
		}
		c += bodyStart
		if k := strings.LastIndex(text[bodyStart:c], e.Open); k >= 0 {
			s = bodyStart + k
			bodyStart = s + len(e.Open)
		}
		end := c + len(e.Close)
		if name := strings.TrimSpace(text[bodyStart:c]); name != "" {
			out = append(out, token{start: s, end: end, name: name})
		}
		i = end
	}
	return out
}
