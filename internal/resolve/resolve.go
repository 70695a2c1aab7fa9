// Package resolve maps submitted form values onto the display strings that
// replace a template's placeholders.
package resolve

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/dgallion1/docfill/internal/fields"
	"github.com/dgallion1/docfill/internal/format"
)

// CurrentDate is the builtin placeholder holding today's date, unless the
// catalog declares a field with the same name.
const CurrentDate = "current_date"

// Resolver formats values per their field specs.
type Resolver struct {
	fmt *format.Formatter
	log *slog.Logger
	now func() time.Time
}

// New creates a Resolver. A nil logger discards.
func New(f *format.Formatter, log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Resolver{fmt: f, log: log, now: time.Now}
}

// Resolve formats every value that has a matching spec. Values without a
// spec are dropped silently.
func (r *Resolver) Resolve(values []fields.Value, specs map[string]fields.Spec) fields.Mapping {
	out := make(fields.Mapping, len(values))
	for _, v := range values {
		spec, ok := specs[v.Name]
		if !ok || spec.Computed() {
			continue
		}
		out.Set(v.Name, r.display(spec, v.Raw))
		if spec.Type == fields.TypeNumber && spec.Words {
			out.Set(v.Name+fields.WordsSuffix, r.words(spec.Name, v.Raw))
		}
	}
	return out
}

// Complete fills the entries Resolve cannot produce on its own: defaults for
// unsubmitted fields, sum_of totals and the current_date builtin.
func (r *Resolver) Complete(m fields.Mapping, values []fields.Value, c *fields.Catalog) fields.Mapping {
	raw := make(map[string]string, len(values))
	for _, v := range values {
		raw[v.Name] = v.Raw
	}

	for _, spec := range c.Inputs() {
		if _, ok := m[spec.Name]; ok {
			continue
		}
		raw[spec.Name] = spec.Default
		m.Set(spec.Name, r.display(spec, spec.Default))
		if spec.Type == fields.TypeNumber && spec.Words {
			m.Set(spec.Name+fields.WordsSuffix, r.words(spec.Name, spec.Default))
		}
	}

	for _, spec := range c.Fields {
		if !spec.Computed() {
			continue
		}
		total := r.sum(spec, raw)
		m.Set(spec.Name, total)
		if spec.Words {
			m.Set(spec.Name+fields.WordsSuffix, r.words(spec.Name, total))
		}
	}

	if _, ok := m[CurrentDate]; !ok {
		m.Set(CurrentDate, format.OrdinalDate(r.now()))
	}
	return m
}

func (r *Resolver) display(spec fields.Spec, raw string) string {
	switch spec.Type {
	case fields.TypeNumber:
		s, ok := r.fmt.Number(raw)
		if !ok && strings.TrimSpace(raw) != "" {
			r.log.Warn("number field not parsable", "field", spec.Name, "value", raw)
		}
		return s
	case fields.TypeDate:
		s, ok := r.fmt.Date(raw)
		if !ok && strings.TrimSpace(raw) != "" {
			r.log.Warn("date conversion failed", "field", spec.Name, "value", raw)
		}
		return s
	default:
		s := r.fmt.Format(raw, spec.Type)
		if spec.Upper {
			s = strings.ToUpper(s)
		}
		return s
	}
}

func (r *Resolver) words(name, raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	w, err := r.fmt.Words(raw)
	if err != nil {
		r.log.Warn("number not convertible to words", "field", name, "value", raw, "error", err)
		return ""
	}
	return w
}

// sum adds the referenced fields; blanks count as zero and any unparsable
// value makes the total "0".
func (r *Resolver) sum(spec fields.Spec, raw map[string]string) string {
	total := 0
	for _, ref := range spec.SumOf {
		v := strings.TrimSpace(raw[ref])
		if v == "" {
			continue
		}
		n, err := format.ParseInt(v)
		if err != nil {
			r.log.Warn("failed to calculate total", "field", spec.Name, "operand", ref, "error", err)
			return "0"
		}
		total += n
	}
	return strconv.Itoa(total)
}
