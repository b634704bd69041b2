package services

import (
	"sort"
	"strings"

	"github.com/prefeitura-rio/app-fomento/internal/models"
	"github.com/prefeitura-rio/app-fomento/internal/schema"
	"go.mongodb.org/mongo-driver/bson"
)

// FilterKeys are the dashboard filters understood by BuildPredicate.
var FilterKeys = []string{
	"sexo",
	"genero",
	"racaCorEtnia",
	"orientacaoSexual",
	"pessoaComDeficiencia",
	"faixaEtaria",
	"escolaridade",
	"rendaMensal",
	"bairro",
	"principalAreaAtuacaoCultural",
	"tipo",
}

const tipoKey = "tipo"

// filterPaths maps each field filter to its answer paths per tipo.
var filterPaths = buildFilterPaths()

func buildFilterPaths() map[string]map[models.Tipo][]string {
	out := map[string]map[models.Tipo][]string{}
	for _, key := range FilterKeys {
		if key == tipoKey {
			continue
		}
		byTipo := map[models.Tipo][]string{}
		for _, s := range schema.All() {
			if paths := s.PathsOf(key); len(paths) > 0 {
				byTipo[s.Tipo] = paths
			}
		}
		out[key] = byTipo
	}
	return out
}

type clause struct {
	key   string
	value string
}

// Predicate is a conjunction of exact-match filters over proponentes.
type Predicate struct {
	clauses []clause
}

// BuildPredicate keeps the recognized, non-empty filters. Unknown keys are
// ignored, so an empty or unrecognized filter set matches everything.
func BuildPredicate(filters map[string]string) Predicate {
	var p Predicate
	for _, key := range FilterKeys {
		value := strings.TrimSpace(filters[key])
		if value == "" {
			continue
		}
		p.clauses = append(p.clauses, clause{key: key, value: value})
	}
	return p
}

// Empty reports whether the predicate imposes no constraint.
func (p Predicate) Empty() bool {
	return len(p.clauses) == 0
}

// Active returns the filters in effect, for logs and tracing.
func (p Predicate) Active() map[string]string {
	out := make(map[string]string, len(p.clauses))
	for _, c := range p.clauses {
		out[c.key] = c.value
	}
	return out
}

// Matches evaluates the predicate against a record in memory.
func (p Predicate) Matches(record *models.Proponente) bool {
	for _, c := range p.clauses {
		if !c.matches(record) {
			return false
		}
	}
	return true
}

func (c clause) matches(record *models.Proponente) bool {
	if c.key == tipoKey {
		return string(record.Tipo) == c.value
	}
	for _, path := range filterPaths[c.key][record.Tipo] {
		if v, ok := record.Answer(path); ok && v.Matches(c.value) {
			return true
		}
	}
	return false
}

// Filter renders the predicate as a MongoDB filter over the proponentes
// collection. An empty predicate yields an empty document.
func (p Predicate) Filter() bson.M {
	if p.Empty() {
		return bson.M{}
	}
	and := make(bson.A, 0, len(p.clauses))
	for _, c := range p.clauses {
		and = append(and, c.filter())
	}
	return bson.M{"$and": and}
}

func (c clause) filter() bson.M {
	if c.key == tipoKey {
		return bson.M{"tipo": c.value}
	}

	// Equality on an array field matches when the array contains the value.
	var or bson.A
	for _, path := range c.paths() {
		or = append(or, bson.M{"dados." + path: c.value})
	}
	if len(or) == 0 {
		return bson.M{"_id": bson.M{"$exists": false}}
	}
	return bson.M{"$or": or}
}

func (c clause) paths() []string {
	seen := map[string]bool{}
	var out []string
	for _, paths := range filterPaths[c.key] {
		for _, path := range paths {
			if !seen[path] {
				seen[path] = true
				out = append(out, path)
			}
		}
	}
	sort.Strings(out)
	return out
}
