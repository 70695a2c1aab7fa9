package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dgallion1/docfill/internal/config"
	"github.com/dgallion1/docfill/internal/format"
	"github.com/dgallion1/docfill/internal/generate"
	"github.com/dgallion1/docfill/internal/resolve"
	"github.com/dgallion1/docfill/internal/substitute"
	"github.com/dgallion1/docfill/internal/templates"
)

const testCatalog = `
fields:
  - name: petitioner
    label: Name of the Petitioner
    type: text
    required: true
  - name: amount
    type: number
    words: true
templates:
  template: template.txt
  notice: notice.html
`

func newTestServer(t *testing.T, apiKey string) *Server {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"fields.yaml":  testCatalog,
		"template.txt": "Petitioner {{petitioner}} claims Rs. {{amount}} ({{amount_words}}) {{ref}}",
		"notice.html":  "<html><body><p>To {{petitioner}}</p></body></html>",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	log := slog.New(slog.DiscardHandler)
	cfg := config.Config{
		APIKey:          apiKey,
		DefaultTemplate: "template",
		MaxFormBytes:    1 << 20,
	}
	store, err := templates.NewStore(dir, filepath.Join(dir, "fields.yaml"), 1<<20, log)
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	gen := generate.New(store, resolve.New(format.New("", ""), log), substitute.New("", ""), "", log)
	return NewServer(gen, store, log, cfg)
}

func postForm(s *Server, path string, form url.Values, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, "")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != `{"status":"ok"}` {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}

func TestDefaultForm(t *testing.T) {
	s := newTestServer(t, "")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{`name="petitioner"`, `name="amount"`, "Name of the Petitioner", `action="/"`} {
		if !strings.Contains(body, want) {
			t.Errorf("expected form to contain %q", want)
		}
	}
}

func TestNamedForm(t *testing.T) {
	s := newTestServer(t, "")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/forms/notice", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `action="/forms/notice"`) {
		t.Error("expected form to post back to its template")
	}

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/forms/vakkalath", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown template, got %d", rec.Code)
	}
}

func TestGenerateDefault(t *testing.T) {
	s := newTestServer(t, "")
	rec := postForm(s, "/", url.Values{
		"petitioner": {"A. Kumar"},
		"amount":     {"1000000"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	want := "Petitioner A. Kumar claims Rs. 1000000 (Ten Lakh) {{ref}}\n"
	if rec.Body.String() != want {
		t.Errorf("body mismatch\nwant %q\ngot  %q", want, rec.Body.String())
	}

	_, params, err := mime.ParseMediaType(rec.Header().Get("Content-Disposition"))
	if err != nil {
		t.Fatalf("parse content-disposition: %v", err)
	}
	if !strings.HasSuffix(params["filename"], "_template_output.txt") {
		t.Errorf("unexpected filename %q", params["filename"])
	}
	if rec.Header().Get("X-Generation-ID") == "" {
		t.Error("expected X-Generation-ID header")
	}
	if got := rec.Header().Get("X-Unresolved-Placeholders"); got != "ref" {
		t.Errorf("expected unresolved header %q, got %q", "ref", got)
	}
}

func TestGenerateMissingRequired(t *testing.T) {
	s := newTestServer(t, "")
	rec := postForm(s, "/forms/notice", url.Values{"amount": {"5"}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body struct {
		Error   string   `json:"error"`
		Missing []string `json:"missing"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff([]string{"petitioner"}, body.Missing); diff != "" {
		t.Errorf("missing mismatch (-want +got):\n%s", diff)
	}
}

func TestAPIAuth(t *testing.T) {
	s := newTestServer(t, "secret")

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/templates", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/templates", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with wrong token, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/templates", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", rec.Code)
	}
	var body struct {
		Templates []string `json:"templates"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff([]string{"notice", "template"}, body.Templates); diff != "" {
		t.Errorf("templates mismatch (-want +got):\n%s", diff)
	}

	// The browser form stays public.
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected public form, got %d", rec.Code)
	}
}

func TestAPIFields(t *testing.T) {
	s := newTestServer(t, "")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/fields", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Fields []struct {
			Name string `json:"name"`
			Type string `json:"type"`
		} `json:"fields"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Fields) != 2 || body.Fields[1].Type != "number" {
		t.Errorf("unexpected fields %+v", body.Fields)
	}
}

func TestAPIGenerateMultipart(t *testing.T) {
	s := newTestServer(t, "")
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("petitioner", "<Kumar & Sons>")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/documents/notice", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html") {
		t.Errorf("unexpected content type %q", rec.Header().Get("Content-Type"))
	}
	out, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(out), "To &lt;Kumar &amp; Sons&gt;") {
		t.Errorf("expected escaped value in html, got %s", out)
	}
}

func TestAPIGenerateUnknownTemplate(t *testing.T) {
	s := newTestServer(t, "")
	rec := postForm(s, "/api/documents/vakkalath", url.Values{"petitioner": {"A"}})
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
