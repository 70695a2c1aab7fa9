package api

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/dgallion1/docfill/internal/fields"
	"github.com/dgallion1/docfill/internal/generate"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleDefaultGenerate(w http.ResponseWriter, r *http.Request) {
	s.generate(w, r, s.cfg.DefaultTemplate)
}

func (s *Server) handleFormGenerate(w http.ResponseWriter, r *http.Request) {
	s.generate(w, r, chi.URLParam(r, "template"))
}

// generate fills a template from the submitted form and streams it back as
// an attachment.
func (s *Server) generate(w http.ResponseWriter, r *http.Request, name string) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxFormBytes)

	values, err := s.formValues(r)
	if err != nil {
		jsonError(w, "invalid form: "+err.Error(), http.StatusBadRequest)
		return
	}

	res, err := s.generator.Generate(r.Context(), name, values)
	if err != nil {
		var missing *generate.MissingFieldsError
		switch {
		case errors.As(err, &missing):
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]any{
				"error":   "missing required form fields",
				"missing": missing.Fields,
			})
		case errors.Is(err, generate.ErrUnknownTemplate):
			jsonError(w, err.Error(), http.StatusNotFound)
		default:
			s.log.Error("document generation failed", "template", name, "error", err)
			jsonError(w, "document generation failed", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": res.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Body)))
	w.Header().Set("X-Generation-ID", res.ID)
	if len(res.Stats.Unresolved) > 0 {
		w.Header().Set("X-Unresolved-Placeholders", strings.Join(res.Stats.Unresolved, ","))
	}
	w.WriteHeader(http.StatusOK)
	w.Write(res.Body)
}

// formValues reads a urlencoded or multipart form. Repeated keys keep their
// first value.
func (s *Server) formValues(r *http.Request) ([]fields.Value, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(s.cfg.MaxFormBytes); err != nil {
			return nil, err
		}
		defer r.MultipartForm.RemoveAll()
	} else if err := r.ParseForm(); err != nil {
		return nil, err
	}

	values := make([]fields.Value, 0, len(r.PostForm))
	for name, vs := range r.PostForm {
		if len(vs) == 0 {
			continue
		}
		values = append(values, fields.Value{Name: name, Raw: vs[0]})
	}
	return values, nil
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"templates": s.store.Names()})
}

func (s *Server) handleListFields(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"fields": s.store.Catalog().Fields})
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
