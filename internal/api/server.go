package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/docfill/internal/config"
	"github.com/dgallion1/docfill/internal/generate"
	"github.com/dgallion1/docfill/internal/templates"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for docfill.
type Server struct {
	router    chi.Router
	generator *generate.Generator
	store     *templates.Store
	log       *slog.Logger
	cfg       config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(gen *generate.Generator, store *templates.Store, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		generator: gen,
		store:     store,
		log:       log,
		cfg:       cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints: health and the browser form.
	r.Get("/health", s.handleHealth)
	r.Get("/", s.handleDefaultForm)
	r.Post("/", s.handleDefaultGenerate)
	r.Get("/forms/{template}", s.handleForm)
	r.Post("/forms/{template}", s.handleFormGenerate)

	// API endpoints, authenticated when an API key is configured.
	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Get("/api/templates", s.handleListTemplates)
		r.Get("/api/fields", s.handleListFields)
		r.Post("/api/documents/{template}", s.handleFormGenerate)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
