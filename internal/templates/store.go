// Package templates owns the field catalog and the template directory. It
// caches template bytes and hands every caller a freshly parsed copy.
package templates

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/fsnotify/fsnotify"

	"github.com/dgallion1/docfill/internal/fields"
	"github.com/dgallion1/docfill/internal/parser"
)

// ErrNotFound is returned for template names the catalog does not list.
var ErrNotFound = errors.New("template not found")

// Store serves templates from dir, described by the catalog at catalogPath.
type Store struct {
	dir         string
	catalogPath string
	maxBytes    int64
	log         *slog.Logger

	mu      sync.RWMutex
	catalog *fields.Catalog
	cache   map[string][]byte // file name -> bytes
}

// NewStore loads the catalog and checks every listed template extension.
func NewStore(dir, catalogPath string, maxBytes int64, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	s := &Store{
		dir:         dir,
		catalogPath: catalogPath,
		maxBytes:    maxBytes,
		log:         log,
		cache:       make(map[string][]byte),
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload rereads the catalog and drops cached templates. On error the
// previous catalog stays in effect.
func (s *Store) Reload() error {
	c, err := fields.LoadCatalog(s.catalogPath)
	if err != nil {
		return err
	}
	for name, file := range c.Templates {
		if !parser.IsSupportedExtension(file) {
			return fmt.Errorf("template %q: %w: %s", name, parser.ErrUnsupported, file)
		}
	}
	s.mu.Lock()
	s.catalog = c
	s.cache = make(map[string][]byte)
	s.mu.Unlock()
	return nil
}

// Catalog returns the current catalog. Callers must not modify it.
func (s *Store) Catalog() *fields.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog
}

// Names returns the template names in the catalog.
func (s *Store) Names() []string {
	return s.Catalog().TemplateNames()
}

// Open parses a fresh copy of the named template.
func (s *Store) Open(name string) (parser.Template, error) {
	file, ok := s.Catalog().Templates[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	data, err := s.load(file)
	if err != nil {
		return nil, err
	}
	return parser.Parse(bytes.NewReader(data), file)
}

func (s *Store) load(file string) ([]byte, error) {
	s.mu.RLock()
	data, ok := s.cache[file]
	s.mu.RUnlock()
	if ok {
		return data, nil
	}

	f, err := os.Open(filepath.Join(s.dir, file))
	if err != nil {
		return nil, fmt.Errorf("open template: %w", err)
	}
	defer f.Close()

	data, err = io.ReadAll(io.LimitReader(f, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("template %s exceeds max size (%s)", file, humanize.IBytes(uint64(s.maxBytes)))
	}

	s.mu.Lock()
	s.cache[file] = data
	s.mu.Unlock()
	return data, nil
}

// Invalidate drops the cached bytes of one template file.
func (s *Store) Invalidate(file string) {
	s.mu.Lock()
	delete(s.cache, file)
	s.mu.Unlock()
}

// Watch reloads the catalog and invalidates cached templates when files
// change on disk. It blocks until ctx is done.
func (s *Store) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	catalogAbs, err := filepath.Abs(s.catalogPath)
	if err != nil {
		return fmt.Errorf("resolve catalog path: %w", err)
	}
	dirAbs, err := filepath.Abs(s.dir)
	if err != nil {
		return fmt.Errorf("resolve template dir: %w", err)
	}
	// Watch the catalog's directory: editors replace files by rename.
	for _, d := range uniq(dirAbs, filepath.Dir(catalogAbs)) {
		if err := w.Add(d); err != nil {
			return fmt.Errorf("watch %s: %w", d, err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
				!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			path, _ := filepath.Abs(ev.Name)
			switch {
			case path == catalogAbs:
				if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
					continue
				}
				if err := s.Reload(); err != nil {
					s.log.Error("catalog reload failed", "path", ev.Name, "error", err)
					continue
				}
				s.log.Info("catalog reloaded", "path", ev.Name, "templates", len(s.Names()))
			case filepath.Dir(path) == dirAbs:
				s.Invalidate(filepath.Base(path))
				s.log.Debug("template changed", "file", filepath.Base(path), "op", ev.Op.String())
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.log.Warn("watcher error", "error", err)
		}
	}
}

func uniq(paths ...string) []string {
	seen := make(map[string]bool, len(paths))
	var out []string
	for _, p := range paths {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}
