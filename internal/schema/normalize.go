package schema

import (
	"strings"

	"github.com/prefeitura-rio/app-fomento/internal/models"
)

// FormState holds raw answers keyed by dotted path, as typed into the form.
type FormState map[string]models.Value

// Clone returns a copy that shares no slices with fs.
func (fs FormState) Clone() FormState {
	out := make(FormState, len(fs))
	for k, v := range fs {
		if v.IsList {
			v.List = append([]string{}, v.List...)
		}
		out[k] = v
	}
	return out
}

// FormStateFromSection flattens an answer tree back into raw form state.
func FormStateFromSection(s *models.Section, schema *Schema) FormState {
	fs := FormState{}
	schema.Walk(func(path string, _ Field) {
		if v, ok := s.Get(path); ok {
			fs[path] = v
		}
	})
	return fs
}

// Normalize turns raw form state into the answer tree persisted for schema.
// Multiselect answers always become de-duplicated arrays of option values.
// Other answers keep their text; a missing key stays missing. Keys that the
// schema does not declare are dropped.
func Normalize(raw FormState, schema *Schema) *models.Section {
	out := models.NewSection()
	schema.Walk(func(path string, f Field) {
		v, present := raw[path]
		if f.Kind == KindMultiSelect {
			out.Set(path, models.List(splitOptions(f, v, present)...))
			return
		}
		if !present {
			return
		}
		if v.IsList {
			out.Set(path, models.Text(strings.Join(v.List, ", ")))
			return
		}
		out.Set(path, models.Text(v.Text))
	})
	return out
}

func splitOptions(f Field, v models.Value, present bool) []string {
	items := []string{}
	if !present {
		return items
	}
	var tokens []string
	if v.IsList {
		for _, item := range v.List {
			tokens = append(tokens, strings.Split(item, ",")...)
		}
	} else {
		tokens = strings.Split(v.Text, ",")
	}

	seen := make(map[string]bool, len(tokens))
	for _, token := range tokens {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		value, _ := f.optionValue(token)
		if seen[value] {
			continue
		}
		seen[value] = true
		items = append(items, value)
	}
	return items
}
