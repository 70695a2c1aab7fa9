package fields

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Catalog is the static form definition: the fields a template expects and
// the template files that can be generated from them.
type Catalog struct {
	Fields    []Spec            `yaml:"fields" json:"fields"`
	Templates map[string]string `yaml:"templates" json:"templates"`
}

// LoadCatalog reads and validates a YAML catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates a YAML catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks field names, types, sum references and template file names.
func (c *Catalog) Validate() error {
	seen := make(map[string]Spec, len(c.Fields))
	for _, f := range c.Fields {
		if err := f.validate(); err != nil {
			return fmt.Errorf("catalog: %w", err)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("catalog: duplicate field %q", f.Name)
		}
		seen[f.Name] = f
	}
	for _, f := range c.Fields {
		for _, ref := range f.SumOf {
			target, ok := seen[ref]
			if !ok {
				return fmt.Errorf("catalog: field %q sums unknown field %q", f.Name, ref)
			}
			if target.Type != TypeNumber {
				return fmt.Errorf("catalog: field %q sums non-number field %q", f.Name, ref)
			}
		}
	}
	for name, file := range c.Templates {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("catalog: template name is required")
		}
		if file == "" || filepath.Base(file) != file || file == "." || file == ".." {
			return fmt.Errorf("catalog: template %q: file must be a plain file name, got %q", name, file)
		}
	}
	return nil
}

// Specs returns the fields keyed by name.
func (c *Catalog) Specs() map[string]Spec {
	out := make(map[string]Spec, len(c.Fields))
	for _, f := range c.Fields {
		out[f.Name] = f
	}
	return out
}

// Inputs returns the fields a user fills in, in declaration order.
func (c *Catalog) Inputs() []Spec {
	var out []Spec
	for _, f := range c.Fields {
		if !f.Computed() {
			out = append(out, f)
		}
	}
	return out
}

// TemplateNames returns the configured template names, sorted.
func (c *Catalog) TemplateNames() []string {
	names := make([]string, 0, len(c.Templates))
	for name := range c.Templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Missing lists required input fields whose submitted value is blank, in
// declaration order.
func (c *Catalog) Missing(values []Value) []string {
	filled := make(map[string]bool, len(values))
	for _, v := range values {
		if strings.TrimSpace(v.Raw) != "" {
			filled[v.Name] = true
		}
	}
	var missing []string
	for _, f := range c.Inputs() {
		if f.Required && !filled[f.Name] {
			missing = append(missing, f.Name)
		}
	}
	return missing
}
