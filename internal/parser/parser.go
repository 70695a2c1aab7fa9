package parser

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docfill/internal/doctree"
)

// ErrUnsupported is returned for template files with an unknown extension.
var ErrUnsupported = errors.New("unsupported template format")

// Template is a parsed template file. Tree exposes its text for
// substitution; WriteTo serializes the source with the tree's current text.
type Template interface {
	Tree() *doctree.Document
	WriteTo(w io.Writer) (int64, error)
	ContentType() string
	Ext() string
}

// Parser loads template bytes.
type Parser interface {
	Parse(r io.Reader, filename string) (Template, error)
}

// SupportedExtensions lists template extensions this service can fill.
var SupportedExtensions = map[string]bool{
	".docx":     true,
	".html":     true,
	".htm":      true,
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".docx":
		return &DOCXParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".txt":
		return &TextParser{ContentType: "text/plain; charset=utf-8"}, nil
	case ".md", ".markdown":
		return &TextParser{ContentType: "text/markdown; charset=utf-8"}, nil
	case ".csv":
		return &CSVParser{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// Parse picks a parser by extension and parses r.
func Parse(r io.Reader, filename string) (Template, error) {
	p, err := ForFile(filename)
	if err != nil {
		return nil, err
	}
	return p.Parse(r, filename)
}

func title(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func extOf(filename, fallback string) string {
	if ext := strings.ToLower(filepath.Ext(filename)); ext != "" {
		return ext
	}
	return fallback
}
