// Package schema declares the registration forms of each proponente tipo and
// the rules that check and normalize answers against them.
package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/prefeitura-rio/app-fomento/internal/models"
)

// Kind is the input variant of a field.
type Kind int

const (
	KindText Kind = iota
	KindTextarea
	KindEmail
	KindTel
	KindNumber
	KindDate
	KindSelect
	KindMultiSelect
)

var kindNames = map[Kind]string{
	KindText:        "text",
	KindTextarea:    "textarea",
	KindEmail:       "email",
	KindTel:         "tel",
	KindNumber:      "number",
	KindDate:        "date",
	KindSelect:      "select",
	KindMultiSelect: "multiselect",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// MarshalJSON renders the kind by name.
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// Option is one choice of a select or multiselect field.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Field is a leaf of the form tree.
type Field struct {
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Kind     Kind     `json:"type"`
	Required bool     `json:"required"`
	Options  []Option `json:"options,omitempty"`
}

// optionValue maps an option value or label to the option value. Unknown
// tokens are returned unchanged.
func (f Field) optionValue(token string) (string, bool) {
	for _, opt := range f.Options {
		if opt.Value == token {
			return opt.Value, true
		}
	}
	for _, opt := range f.Options {
		if strings.EqualFold(opt.Label, token) {
			return opt.Value, true
		}
	}
	return token, false
}

// Section groups fields and nested sections.
type Section struct {
	Name     string    `json:"name"`
	Label    string    `json:"label"`
	Fields   []Field   `json:"fields,omitempty"`
	Sections []Section `json:"sections,omitempty"`
}

// Schema is the complete form of one tipo.
type Schema struct {
	Tipo     models.Tipo `json:"tipo"`
	Sections []Section   `json:"sections"`
}

// Step is a section that owns fields, addressed by its dotted path.
type Step struct {
	Path    string   `json:"path"`
	Section *Section `json:"section"`
}

// Walk calls fn once for every field in the tree, depth first in declaration
// order, with the field's dotted path.
func (s *Schema) Walk(fn func(path string, f Field)) {
	for i := range s.Sections {
		walkSection(s.Sections[i].Name, &s.Sections[i], fn)
	}
}

func walkSection(prefix string, sec *Section, fn func(path string, f Field)) {
	for _, f := range sec.Fields {
		fn(prefix+"."+f.Name, f)
	}
	for i := range sec.Sections {
		child := &sec.Sections[i]
		walkSection(prefix+"."+child.Name, child, fn)
	}
}

// Steps lists the sections that own fields in traversal order.
func (s *Schema) Steps() []Step {
	var steps []Step
	var visit func(prefix string, sec *Section)
	visit = func(prefix string, sec *Section) {
		if len(sec.Fields) > 0 {
			steps = append(steps, Step{Path: prefix, Section: sec})
		}
		for i := range sec.Sections {
			child := &sec.Sections[i]
			visit(prefix+"."+child.Name, child)
		}
	}
	for i := range s.Sections {
		visit(s.Sections[i].Name, &s.Sections[i])
	}
	return steps
}

// Field finds the field at a dotted path.
func (s *Schema) Field(path string) (Field, bool) {
	var found Field
	var ok bool
	s.Walk(func(p string, f Field) {
		if !ok && p == path {
			found, ok = f, true
		}
	})
	return found, ok
}

// PathsOf returns every path whose field is named name.
func (s *Schema) PathsOf(name string) []string {
	var paths []string
	s.Walk(func(p string, f Field) {
		if f.Name == name {
			paths = append(paths, p)
		}
	})
	return paths
}

// For returns the schema of tipo. The returned value is shared and must not
// be modified.
func For(t models.Tipo) (*Schema, error) {
	s, ok := registry[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidTipo, t)
	}
	return s, nil
}

// All returns the schemas of every tipo in display order.
func All() []*Schema {
	out := make([]*Schema, 0, len(models.Tipos))
	for _, t := range models.Tipos {
		out = append(out, registry[t])
	}
	return out
}
