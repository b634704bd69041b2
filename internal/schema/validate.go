package schema

import (
	"strings"

	"github.com/prefeitura-rio/app-fomento/internal/models"
)

// Validate reports whether every required field of s is populated in the
// record. A record of another tipo never validates.
func Validate(record *models.Proponente, s *Schema) bool {
	if record == nil || s == nil || record.Tipo != s.Tipo {
		return false
	}
	return len(Missing(record, s)) == 0
}

// Missing lists the paths of required fields that are absent or empty. For a
// record of another tipo it lists every required field of s.
func Missing(record *models.Proponente, s *Schema) []string {
	if s == nil {
		return nil
	}
	var dados *models.Section
	if record != nil && record.Tipo == s.Tipo {
		dados = &record.Dados
	}
	return missingIn(dados, s, "")
}

// MissingInStep lists the required fields of a single step that are not
// populated in dados.
func MissingInStep(dados *models.Section, s *Schema, step Step) []string {
	return missingIn(dados, s, step.Path+".")
}

func missingIn(dados *models.Section, s *Schema, prefix string) []string {
	var missing []string
	s.Walk(func(path string, f Field) {
		if !f.Required || !strings.HasPrefix(path, prefix) {
			return
		}
		// Nested sections of a step are steps of their own.
		if prefix != "" && strings.Contains(path[len(prefix):], ".") {
			return
		}
		v, ok := dados.Get(path)
		if !ok || v.Empty() {
			missing = append(missing, path)
		}
	})
	return missing
}
