// Package formpage renders the HTML form users fill to generate a document.
package formpage

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"

	"github.com/dgallion1/docfill/internal/fields"
)

var (
	helpPolicyOnce sync.Once
	helpPolicy     *bluemonday.Policy
)

// Page describes one rendered form.
type Page struct {
	Title     string
	Action    string
	Templates []string // other templates, linked under /forms/
	Fields    []fields.Spec
}

type fieldView struct {
	Name     string
	Label    string
	Input    string // "text", "number", "date" or "textarea"
	Default  string
	Required bool
	Help     template.HTML
}

var pageTmpl = template.Must(template.New("form").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<h1>{{.Title}}</h1>
<form method="post" action="{{.Action}}">
{{- range .Fields}}
<div class="field">
  <label for="{{.Name}}">{{.Label}}{{if .Required}} *{{end}}</label>
  {{- if eq .Input "textarea"}}
  <textarea id="{{.Name}}" name="{{.Name}}"{{if .Required}} required{{end}}>{{.Default}}</textarea>
  {{- else}}
  <input id="{{.Name}}" name="{{.Name}}" type="{{.Input}}"{{if eq .Input "number"}} step="1"{{end}} value="{{.Default}}"{{if .Required}} required{{end}}>
  {{- end}}
  {{- if .Help}}
  <div class="help">{{.Help}}</div>
  {{- end}}
</div>
{{- end}}
<button type="submit">Generate</button>
</form>
{{- if .Templates}}
<ul class="templates">
{{- range .Templates}}
  <li><a href="/forms/{{.}}">{{.}}</a></li>
{{- end}}
</ul>
{{- end}}
</body>
</html>
`))

// Render writes the form page.
func Render(w io.Writer, p Page) error {
	views := make([]fieldView, 0, len(p.Fields))
	for _, f := range p.Fields {
		help, err := renderHelp(f.Help)
		if err != nil {
			return fmt.Errorf("field %q help: %w", f.Name, err)
		}
		views = append(views, fieldView{
			Name:     f.Name,
			Label:    f.DisplayLabel(),
			Input:    inputType(f.Type),
			Default:  f.Default,
			Required: f.Required,
			Help:     help,
		})
	}
	return pageTmpl.Execute(w, struct {
		Title     string
		Action    string
		Templates []string
		Fields    []fieldView
	}{p.Title, p.Action, p.Templates, views})
}

func inputType(t fields.Type) string {
	switch t {
	case fields.TypeNumber:
		return "number"
	case fields.TypeDate:
		return "date"
	case fields.TypeTextarea:
		return "textarea"
	default:
		return "text"
	}
}

// renderHelp converts markdown help text to sanitized HTML.
func renderHelp(md string) (template.HTML, error) {
	if strings.TrimSpace(md) == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	clean := strings.TrimSpace(helpSanitizer().Sanitize(buf.String()))
	return template.HTML(clean), nil
}

func helpSanitizer() *bluemonday.Policy {
	helpPolicyOnce.Do(func() {
		helpPolicy = bluemonday.UGCPolicy()
	})
	return helpPolicy
}
