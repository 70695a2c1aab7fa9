package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/docfill/internal/api"
	"github.com/dgallion1/docfill/internal/config"
	"github.com/dgallion1/docfill/internal/format"
	"github.com/dgallion1/docfill/internal/generate"
	"github.com/dgallion1/docfill/internal/resolve"
	"github.com/dgallion1/docfill/internal/substitute"
	"github.com/dgallion1/docfill/internal/templates"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := templates.NewStore(cfg.TemplateDir, cfg.FieldsFile, cfg.MaxTemplateBytes, log)
	if err != nil {
		log.Error("load templates", "fields_file", cfg.FieldsFile, "template_dir", cfg.TemplateDir, "error", err)
		os.Exit(1)
	}
	if cfg.WatchFiles {
		go func() {
			if err := store.Watch(ctx); err != nil {
				log.Error("template watcher stopped", "error", err)
			}
		}()
	}

	resolver := resolve.New(format.New(cfg.DateInputLayout, cfg.DateOutputLayout), log)
	engine := substitute.New(cfg.PlaceholderOpen, cfg.PlaceholderClose)
	gen := generate.New(store, resolver, engine, cfg.OutputTimeLayout, log)

	srv := api.NewServer(gen, store, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting docfill",
		"port", cfg.Port,
		"templates", store.Names(),
		"default_template", cfg.DefaultTemplate,
	)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
