package substitute

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dgallion1/docfill/internal/doctree"
	"github.com/dgallion1/docfill/internal/fields"
)

func mapping(kv ...string) fields.Mapping {
	m := make(fields.Mapping)
	for i := 0; i+1 < len(kv); i += 2 {
		m.Set(kv[i], kv[i+1])
	}
	return m
}

func runTexts(p *doctree.Paragraph) []string {
	out := make([]string, len(p.Runs))
	for i, r := range p.Runs {
		out[i] = r.Text
	}
	return out
}

func sampleDoc() *doctree.Document {
	return &doctree.Document{
		Title: "docket",
		Paragraphs: []*doctree.Paragraph{
			doctree.NewParagraph("Petitioner: {{petitioner}}, aged {{age}}"),
			doctree.NewParagraph("District of {{district}}"),
		},
		Tables: []*doctree.Table{{
			Rows: []*doctree.Row{{
				Cells: []*doctree.Cell{
					{Paragraphs: []*doctree.Paragraph{doctree.NewParagraph("Amount")}},
					{Paragraphs: []*doctree.Paragraph{
						doctree.NewParagraph("Rs. {{amount}}/-"),
						doctree.NewParagraph("({{amount_words}} only)"),
					}},
				},
			}},
		}},
	}
}

func TestSubstitute_ParagraphsAndTables(t *testing.T) {
	doc := sampleDoc()
	m := mapping(
		"petitioner", "A. Kumar",
		"age", "42",
		"district", "THRISSUR",
		"amount", "150",
		"amount_words", "One Hundred and Fifty",
	)
	got, st := New("", "").Substitute(doc, m)
	if got != doc {
		t.Error("expected the same document to be returned")
	}

	if s := doc.Paragraphs[0].Text(); s != "Petitioner: A. Kumar, aged 42" {
		t.Errorf("paragraph 0: got %q", s)
	}
	if s := doc.Paragraphs[1].Text(); s != "District of THRISSUR" {
		t.Errorf("paragraph 1: got %q", s)
	}
	cell := doc.Tables[0].Rows[0].Cells[1]
	if s := cell.Text(); s != "Rs. 150/-\n(One Hundred and Fifty only)" {
		t.Errorf("table cell: got %q", s)
	}

	want := Stats{Replaced: 5, InParagraphs: 3, InTables: 2}
	if diff := cmp.Diff(want, st); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestSubstitute_UnresolvedLeftLiteral(t *testing.T) {
	doc := sampleDoc()
	_, st := New("", "").Substitute(doc, mapping("petitioner", "A. Kumar"))

	if s := doc.Paragraphs[0].Text(); s != "Petitioner: A. Kumar, aged {{age}}" {
		t.Errorf("expected unresolved token to stay, got %q", s)
	}
	if diff := cmp.Diff([]string{"age", "district", "amount", "amount_words"}, st.Unresolved); diff != "" {
		t.Errorf("unresolved mismatch (-want +got):\n%s", diff)
	}
	if st.Replaced != 1 {
		t.Errorf("expected 1 replacement, got %d", st.Replaced)
	}
}

func TestSubstitute_IdempotentOnUnresolved(t *testing.T) {
	e := New("", "")
	m := mapping("petitioner", "A. Kumar", "amount", "150")

	once := sampleDoc()
	e.Substitute(once, m)

	twice := sampleDoc()
	e.Substitute(twice, m)
	e.Substitute(twice, m)

	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("second pass changed the document (-once +twice):\n%s", diff)
	}
}

func TestSubstitute_DifferentMappingResolvesLater(t *testing.T) {
	e := New("", "")
	doc := sampleDoc()
	e.Substitute(doc, mapping("petitioner", "A. Kumar"))
	e.Substitute(doc, mapping("age", "42", "district", "THRISSUR"))

	if s := doc.Paragraphs[0].Text(); s != "Petitioner: A. Kumar, aged 42" {
		t.Errorf("paragraph 0: got %q", s)
	}
	if s := doc.Paragraphs[1].Text(); s != "District of THRISSUR" {
		t.Errorf("paragraph 1: got %q", s)
	}
}

func TestSubstitute_RepeatedToken(t *testing.T) {
	p := doctree.NewParagraph("{{name}} and {{name}}, again {{ name }}")
	n, missing := New("", "").Paragraph(p, mapping("name", "Asha"))
	if n != 3 {
		t.Errorf("expected 3 replacements, got %d", n)
	}
	if len(missing) != 0 {
		t.Errorf("expected no missing names, got %v", missing)
	}
	if s := p.Text(); s != "Asha and Asha, again Asha" {
		t.Errorf("got %q", s)
	}
}

func TestParagraph_TokenSpanningRuns(t *testing.T) {
	// Word often splits "{{petitioner}}" across runs at spell-check marks.
	p := doctree.NewParagraph("Name: {{peti", "tion", "er}} (", "bold", ")")
	New("", "").Paragraph(p, mapping("petitioner", "A. Kumar"))

	want := []string{"Name: A. Kumar", "", " (", "bold", ")"}
	if diff := cmp.Diff(want, runTexts(p)); diff != "" {
		t.Errorf("runs mismatch (-want +got):\n%s", diff)
	}
}

func TestParagraph_PreservesSurroundingRuns(t *testing.T) {
	p := doctree.NewParagraph("  leading ", "{{a}}", " middle ", "{{b}}", "  trailing\t")
	New("", "").Paragraph(p, mapping("a", "1", "b", "2"))

	want := []string{"  leading ", "1", " middle ", "2", "  trailing\t"}
	if diff := cmp.Diff(want, runTexts(p)); diff != "" {
		t.Errorf("runs mismatch (-want +got):\n%s", diff)
	}
}

func TestParagraph_UnresolvedDoesNotTouchRuns(t *testing.T) {
	p := doctree.NewParagraph("{{miss", "ing}} stays")
	n, missing := New("", "").Paragraph(p, mapping("other", "x"))
	if n != 0 {
		t.Errorf("expected 0 replacements, got %d", n)
	}
	if diff := cmp.Diff([]string{"missing"}, missing); diff != "" {
		t.Errorf("missing mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"{{miss", "ing}} stays"}, runTexts(p)); diff != "" {
		t.Errorf("runs mismatch (-want +got):\n%s", diff)
	}
}

func TestParagraph_ValuesAreNotRescanned(t *testing.T) {
	p := doctree.NewParagraph("{{a}} {{b}}")
	New("", "").Paragraph(p, mapping("a", "{{b}}", "b", "B"))
	if s := p.Text(); s != "{{b}} B" {
		t.Errorf("expected replacement text to be left as-is, got %q", s)
	}
}

func TestParagraph_DelimitedValueResolvesOnNextPass(t *testing.T) {
	e := New("", "")
	m := mapping("a", "{{b}}", "b", "X")
	p := doctree.NewParagraph("{{a}}")

	e.Paragraph(p, m)
	if s := p.Text(); s != "{{b}}" {
		t.Fatalf("first pass: expected %q, got %q", "{{b}}", s)
	}
	e.Paragraph(p, m)
	if s := p.Text(); s != "X" {
		t.Errorf("second pass: expected %q, got %q", "X", s)
	}
}

func TestParagraph_CustomDelimiters(t *testing.T) {
	// Court forms mark fields as "(NAME)".
	p := doctree.NewParagraph("(PETITIONER) of (VILLAGE) village (see annexure)")
	New("(", ")").Paragraph(p, mapping("PETITIONER", "A. Kumar", "VILLAGE", "Ollur"))
	if s := p.Text(); s != "A. Kumar of Ollur village (see annexure)" {
		t.Errorf("got %q", s)
	}
}

func TestScan_EdgeCases(t *testing.T) {
	e := New("", "")
	tests := []struct {
		text string
		want []string
	}{
		{"no tokens here", nil},
		{"{{}} and {{   }}", nil},
		{"unterminated {{name", nil},
		{"{{a {{b}}", []string{"b"}},
		{"}}{{x}}{{", []string{"x"}},
		{"{{ä}}{{b}}", []string{"ä", "b"}},
	}
	for _, tt := range tests {
		var got []string
		for _, tok := range e.scan(tt.text) {
			got = append(got, tok.name)
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("scan(%q) mismatch (-want +got):\n%s", tt.text, diff)
		}
	}
}

func TestParagraph_EmptyParagraph(t *testing.T) {
	p := &doctree.Paragraph{}
	n, missing := New("", "").Paragraph(p, mapping("a", "1"))
	if n != 0 || missing != nil {
		t.Errorf("expected no-op, got n=%d missing=%v", n, missing)
	}
}
