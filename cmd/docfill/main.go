// Command docfill fills a catalog template from the terminal.
//
// Field values come from repeated -set name=value flags. Any input field not
// set is prompted for unless -no-prompt is given.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/dustin/go-humanize"
	"github.com/natefinch/atomic"

	"github.com/dgallion1/docfill/internal/config"
	"github.com/dgallion1/docfill/internal/fields"
	"github.com/dgallion1/docfill/internal/format"
	"github.com/dgallion1/docfill/internal/generate"
	"github.com/dgallion1/docfill/internal/resolve"
	"github.com/dgallion1/docfill/internal/substitute"
	"github.com/dgallion1/docfill/internal/templates"
)

func main() {
	if err := run(); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, "docfill:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	var sets setFlags
	flag.StringVar(&cfg.FieldsFile, "fields", cfg.FieldsFile, "field catalog (YAML)")
	flag.StringVar(&cfg.TemplateDir, "templates", cfg.TemplateDir, "template directory")
	flag.StringVar(&cfg.DefaultTemplate, "template", cfg.DefaultTemplate, "template name from the catalog")
	flag.Var(&sets, "set", "field value as name=value (repeatable)")
	out := flag.String("o", "", "output path (default: generated file name in the current directory)")
	noPrompt := flag.Bool("no-prompt", false, "fail instead of prompting for missing fields")
	list := flag.Bool("list", false, "list templates and input fields, then exit")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		return err
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store, err := templates.NewStore(cfg.TemplateDir, cfg.FieldsFile, cfg.MaxTemplateBytes, log)
	if err != nil {
		return err
	}
	catalog := store.Catalog()

	if *list {
		printCatalog(catalog)
		return nil
	}

	formatter := format.New(cfg.DateInputLayout, cfg.DateOutputLayout)
	values := sets.values()
	if !*noPrompt {
		prompted, err := promptMissing(ctx, formatter, catalog.Inputs(), sets)
		if err != nil {
			return err
		}
		values = append(values, prompted...)
	}

	resolver := resolve.New(formatter, log)
	engine := substitute.New(cfg.PlaceholderOpen, cfg.PlaceholderClose)
	gen := generate.New(store, resolver, engine, cfg.OutputTimeLayout, log)

	res, err := gen.Generate(ctx, cfg.DefaultTemplate, values)
	if err != nil {
		return err
	}

	path := *out
	if path == "" {
		path = res.Filename
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := atomic.WriteFile(path, bytes.NewReader(res.Body)); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	fmt.Printf("wrote %s (%s, %d replaced)\n", path, humanize.Bytes(uint64(len(res.Body))), res.Stats.Replaced)
	if len(res.Stats.Unresolved) > 0 {
		fmt.Fprintf(os.Stderr, "unresolved placeholders: %s\n", strings.Join(res.Stats.Unresolved, ", "))
	}
	return nil
}

func printCatalog(c *fields.Catalog) {
	fmt.Println("templates:")
	for _, name := range c.TemplateNames() {
		fmt.Printf("  %s\t%s\n", name, c.Templates[name])
	}
	fmt.Println("fields:")
	for _, s := range c.Inputs() {
		req := ""
		if s.Required {
			req = " (required)"
		}
		fmt.Printf("  %s\t%s\t%s%s\n", s.Name, s.Type, s.DisplayLabel(), req)
	}
}
