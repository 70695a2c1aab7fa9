package api

import (
	"bytes"
	"net/http"
	"slices"

	"github.com/dgallion1/docfill/internal/formpage"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleDefaultForm(w http.ResponseWriter, r *http.Request) {
	s.renderForm(w, s.cfg.DefaultTemplate, "/")
}

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "template")
	s.renderForm(w, name, "/forms/"+name)
}

func (s *Server) renderForm(w http.ResponseWriter, name, action string) {
	names := s.store.Names()
	if !slices.Contains(names, name) {
		jsonError(w, "template not found", http.StatusNotFound)
		return
	}

	var buf bytes.Buffer
	err := formpage.Render(&buf, formpage.Page{
		Title:     name,
		Action:    action,
		Templates: names,
		Fields:    s.store.Catalog().Inputs(),
	})
	if err != nil {
		s.log.Error("render form failed", "template", name, "error", err)
		jsonError(w, "failed to render form", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
