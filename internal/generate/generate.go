// Package generate runs one document generation: it validates the
// submission, resolves field values, fills a fresh template copy and
// serializes the result.
package generate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/docfill/internal/fields"
	"github.com/dgallion1/docfill/internal/parser"
	"github.com/dgallion1/docfill/internal/resolve"
	"github.com/dgallion1/docfill/internal/substitute"
	"github.com/dgallion1/docfill/internal/templates"
)

// DefaultTimeLayout matches the "%d_%m_%YT%H_%M_%S" filenames of earlier
// generated documents.
const DefaultTimeLayout = "02_01_2006T15_04_05"

// ErrUnknownTemplate is returned when the requested template does not exist.
var ErrUnknownTemplate = errors.New("unknown template")

// MissingFieldsError lists required fields left blank.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// Source supplies the catalog and fresh template copies.
type Source interface {
	Catalog() *fields.Catalog
	Open(name string) (parser.Template, error)
}

// Generator fills templates from form submissions.
type Generator struct {
	src        Source
	resolver   *resolve.Resolver
	engine     *substitute.Engine
	log        *slog.Logger
	timeLayout string
	now        func() time.Time
}

// New creates a Generator. An empty timeLayout uses DefaultTimeLayout.
func New(src Source, r *resolve.Resolver, e *substitute.Engine, timeLayout string, log *slog.Logger) *Generator {
	if timeLayout == "" {
		timeLayout = DefaultTimeLayout
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Generator{
		src:        src,
		resolver:   r,
		engine:     e,
		log:        log,
		timeLayout: timeLayout,
		now:        time.Now,
	}
}

// Result is a generated document.
type Result struct {
	ID          string
	Template    string
	Filename    string
	ContentType string
	Body        []byte
	Stats       substitute.Stats
}

// Generate fills the named template with values.
func (g *Generator) Generate(ctx context.Context, name string, values []fields.Value) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	catalog := g.src.Catalog()
	if missing := catalog.Missing(values); len(missing) > 0 {
		return nil, &MissingFieldsError{Fields: missing}
	}

	tmpl, err := g.src.Open(name)
	if err != nil {
		if errors.Is(err, templates.ErrNotFound) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
		}
		return nil, fmt.Errorf("open template %q: %w", name, err)
	}

	mapping := g.resolver.Resolve(values, catalog.Specs())
	mapping = g.resolver.Complete(mapping, values, catalog)
	_, stats := g.engine.Substitute(tmpl.Tree(), mapping)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := tmpl.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write %q: %w", name, err)
	}

	res := &Result{
		ID:          uuid.NewString(),
		Template:    name,
		Filename:    fmt.Sprintf("%s_%s_output%s", g.now().Format(g.timeLayout), name, tmpl.Ext()),
		ContentType: tmpl.ContentType(),
		Body:        buf.Bytes(),
		Stats:       stats,
	}
	g.log.Info("document generated",
		"template", name,
		"generation_id", res.ID,
		"filename", res.Filename,
		"replaced", stats.Replaced,
		"unresolved", len(stats.Unresolved),
	)
	if len(stats.Unresolved) > 0 {
		g.log.Warn("unresolved placeholders", "template", name, "generation_id", res.ID, "names", stats.Unresolved)
	}
	return res, nil
}
