package services

import (
	"testing"

	"github.com/prefeitura-rio/app-fomento/internal/models"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func newProponente(tipo models.Tipo, answers map[string]models.Value) models.Proponente {
	p := models.Proponente{Tipo: tipo, CityID: "rio", Dados: *models.NewSection()}
	for path, v := range answers {
		p.Dados.Set(path, v)
	}
	return p
}

func sampleProponentes() []models.Proponente {
	return []models.Proponente{
		newProponente(models.TipoFisica, map[string]models.Value{
			"perfilDoProponente.informacoesDemograficas.sexo":             models.Text("feminino"),
			"perfilDoProponente.informacoesDemograficas.racaCorEtnia":     models.Text("preta"),
			"perfilDoProponente.experiencia.principalAreaAtuacaoCultural": models.Text("musica"),
			"perfilDoProponente.aspectosFinanceiros.rendaMensal":          models.Text("ate_1_sm"),
			"endereco.bairro": models.Text("Madureira"),
		}),
		newProponente(models.TipoFisica, map[string]models.Value{
			"perfilDoProponente.informacoesDemograficas.sexo":             models.Text("masculino"),
			"perfilDoProponente.experiencia.principalAreaAtuacaoCultural": models.Text("teatro"),
			"endereco.bairro": models.Text("Copacabana"),
		}),
		newProponente(models.TipoJuridica, map[string]models.Value{
			"perfilDoResponsavel.informacoesDemograficas.sexo":  models.Text("feminino"),
			"perfilPessoaJuridica.principalAreaAtuacaoCultural": models.Text("musica"),
		}),
		newProponente(models.TipoColetivo, map[string]models.Value{
			"perfilDoResponsavel.informacoesDemograficas.sexo": models.Text("feminino"),
			"dadosColetivo.principalAreaAtuacaoCultural":       models.Text("danca"),
		}),
	}
}

func countMatches(p Predicate, records []models.Proponente) int {
	n := 0
	for i := range records {
		if p.Matches(&records[i]) {
			n++
		}
	}
	return n
}

func TestBuildPredicateEmpty(t *testing.T) {
	records := sampleProponentes()

	for _, filters := range []map[string]string{
		nil,
		{},
		{"sexo": ""},
		{"sexo": "   "},
		{"corDosOlhos": "verde"},
	} {
		p := BuildPredicate(filters)
		assert.True(t, p.Empty())
		assert.Equal(t, len(records), countMatches(p, records))
		assert.Equal(t, bson.M{}, p.Filter())
	}
}

func TestPredicateMatches(t *testing.T) {
	records := sampleProponentes()

	tests := []struct {
		name    string
		filters map[string]string
		want    int
	}{
		{"sexo across every tipo", map[string]string{"sexo": "feminino"}, 3},
		{"area at tipo specific paths", map[string]string{"principalAreaAtuacaoCultural": "musica"}, 2},
		{"and of two keys", map[string]string{"sexo": "feminino", "principalAreaAtuacaoCultural": "musica"}, 2},
		{"and with tipo", map[string]string{"sexo": "feminino", "tipo": "coletivo"}, 1},
		{"fisica only key", map[string]string{"rendaMensal": "ate_1_sm"}, 1},
		{"no match", map[string]string{"racaCorEtnia": "indigena"}, 0},
		{"exact match only", map[string]string{"bairro": "madureira"}, 0},
		{"unknown key ignored", map[string]string{"bairro": "Copacabana", "foo": "bar"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := BuildPredicate(tt.filters)
			assert.Equal(t, tt.want, countMatches(p, records))
		})
	}
}

func TestPredicateMatchesListAnswers(t *testing.T) {
	record := newProponente(models.TipoFisica, map[string]models.Value{
		"endereco.bairro": models.List("Centro", "Lapa"),
	})

	assert.True(t, BuildPredicate(map[string]string{"bairro": "Lapa"}).Matches(&record))
	assert.False(t, BuildPredicate(map[string]string{"bairro": "Gávea"}).Matches(&record))
}

func TestPredicateFilter(t *testing.T) {
	p := BuildPredicate(map[string]string{
		"tipo":        "juridica",
		"rendaMensal": "ate_1_sm",
		"ignored":     "x",
	})

	assert.Equal(t, bson.M{"$and": bson.A{
		bson.M{"$or": bson.A{
			bson.M{"dados.perfilDoProponente.aspectosFinanceiros.rendaMensal": "ate_1_sm"},
		}},
		bson.M{"tipo": "juridica"},
	}}, p.Filter())
}

func TestPredicateFilterCoversEveryTipoPath(t *testing.T) {
	p := BuildPredicate(map[string]string{"sexo": "feminino"})

	and := p.Filter()["$and"].(bson.A)
	or := and[0].(bson.M)["$or"].(bson.A)
	assert.ElementsMatch(t, bson.A{
		bson.M{"dados.perfilDoProponente.informacoesDemograficas.sexo": "feminino"},
		bson.M{"dados.perfilDoResponsavel.informacoesDemograficas.sexo": "feminino"},
	}, or)
}

func TestPredicateActive(t *testing.T) {
	p := BuildPredicate(map[string]string{"genero": " nao_binario ", "x": "y"})
	assert.Equal(t, map[string]string{"genero": "nao_binario"}, p.Active())
}
