// Package fields defines form field declarations and the values that flow
// from a submitted form into a template.
package fields

import (
	"fmt"
	"strings"
)

// Type selects how a raw field value is interpreted.
type Type string

const (
	TypeText     Type = "text"
	TypeTextarea Type = "textarea" // formats like TypeText
	TypeNumber   Type = "number"
	TypeDate     Type = "date"
)

// Valid reports whether t is a known field type.
func (t Type) Valid() bool {
	switch t {
	case TypeText, TypeTextarea, TypeNumber, TypeDate:
		return true
	}
	return false
}

// WordsSuffix names the companion entry holding a number field in words.
const WordsSuffix = "_words"

// Spec declares one template field.
type Spec struct {
	Name     string   `yaml:"name" json:"name"`
	Label    string   `yaml:"label" json:"label"`
	Type     Type     `yaml:"type" json:"type"`
	Required bool     `yaml:"required" json:"required"`
	Default  string   `yaml:"default" json:"default,omitempty"`
	Help     string   `yaml:"help" json:"help,omitempty"`
	Upper    bool     `yaml:"upper" json:"upper,omitempty"`
	Words    bool     `yaml:"words" json:"words,omitempty"`
	SumOf    []string `yaml:"sum_of" json:"sum_of,omitempty"`
}

// Computed reports whether the field is derived from other fields rather
// than entered on the form.
func (s Spec) Computed() bool {
	return len(s.SumOf) > 0
}

// DisplayLabel returns Label, falling back to Name.
func (s Spec) DisplayLabel() string {
	if strings.TrimSpace(s.Label) != "" {
		return strings.TrimSpace(s.Label)
	}
	return s.Name
}

// Value is one submitted form field.
type Value struct {
	Name string
	Raw  string
}

// Formatted is the display string substituted for a field's placeholder.
type Formatted struct {
	Name    string
	Display string
}

// Mapping is the resolved name -> display table handed to substitution.
type Mapping map[string]Formatted

// Set stores display under name.
func (m Mapping) Set(name, display string) {
	m[name] = Formatted{Name: name, Display: display}
}

// ValuesFromMap converts a flat name -> raw map, such as a parsed form.
func ValuesFromMap(m map[string]string) []Value {
	out := make([]Value, 0, len(m))
	for k, v := range m {
		out = append(out, Value{Name: k, Raw: v})
	}
	return out
}

func (s Spec) validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("field name is required")
	}
	if s.Type == "" {
		return fmt.Errorf("field %q: type is required", s.Name)
	}
	if !s.Type.Valid() {
		return fmt.Errorf("field %q: unknown type %q", s.Name, s.Type)
	}
	if s.Computed() && s.Type != TypeNumber {
		return fmt.Errorf("field %q: sum_of requires type number", s.Name)
	}
	return nil
}
