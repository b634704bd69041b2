package schema

import (
	"testing"

	"github.com/prefeitura-rio/app-fomento/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordFor(t *testing.T, tipo models.Tipo, fs FormState) *models.Proponente {
	t.Helper()
	s, err := For(tipo)
	require.NoError(t, err)
	return &models.Proponente{Tipo: tipo, CityID: "rio", Dados: *Normalize(fs, s)}
}

func TestValidateComplete(t *testing.T) {
	for _, s := range All() {
		t.Run(string(s.Tipo), func(t *testing.T) {
			record := recordFor(t, s.Tipo, completeState(s))
			assert.True(t, Validate(record, s))
			assert.Empty(t, Missing(record, s))
		})
	}
}

func TestValidateMissingRequired(t *testing.T) {
	s, _ := For(models.TipoFisica)

	tests := []struct {
		name   string
		mutate func(FormState)
		path   string
	}{
		{
			name:   "absent answer",
			mutate: func(fs FormState) { delete(fs, "dadosPessoais.cpf") },
			path:   "dadosPessoais.cpf",
		},
		{
			name:   "empty answer",
			mutate: func(fs FormState) { fs["endereco.bairro"] = models.Text("") },
			path:   "endereco.bairro",
		},
		{
			name:   "whitespace answer",
			mutate: func(fs FormState) { fs["contato.email"] = models.Text("   ") },
			path:   "contato.email",
		},
		{
			name:   "empty multiselect",
			mutate: func(fs FormState) { fs["perfilDoProponente.objetivos.objetivosFomento"] = models.Text("") },
			path:   "perfilDoProponente.objetivos.objetivosFomento",
		},
		{
			name:   "nested demographic",
			mutate: func(fs FormState) { delete(fs, "perfilDoProponente.informacoesDemograficas.sexo") },
			path:   "perfilDoProponente.informacoesDemograficas.sexo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := completeState(s)
			tt.mutate(fs)
			record := recordFor(t, models.TipoFisica, fs)

			assert.False(t, Validate(record, s))
			assert.Equal(t, []string{tt.path}, Missing(record, s))
		})
	}
}

func TestValidateEveryRequiredField(t *testing.T) {
	for _, s := range All() {
		var required []string
		s.Walk(func(path string, f Field) {
			if f.Required {
				required = append(required, path)
			}
		})
		require.NotEmpty(t, required, s.Tipo)

		for _, path := range required {
			t.Run(string(s.Tipo)+"/"+path, func(t *testing.T) {
				fs := completeState(s)
				delete(fs, path)
				record := recordFor(t, s.Tipo, fs)
				assert.False(t, Validate(record, s))
				assert.Equal(t, []string{path}, Missing(record, s))

				fs = completeState(s)
				fs[path] = models.Text(" ")
				record = recordFor(t, s.Tipo, fs)
				assert.False(t, Validate(record, s))
				assert.Equal(t, []string{path}, Missing(record, s))
			})
		}
	}
}

func TestValidateOptionalFieldsIgnored(t *testing.T) {
	s, _ := For(models.TipoFisica)
	fs := completeState(s)
	fs["dadosPessoais.nomeSocial"] = models.Text("")
	record := recordFor(t, models.TipoFisica, fs)

	assert.True(t, Validate(record, s))
	_, present := record.Dados.Get("endereco.complemento")
	assert.False(t, present)
}

func TestValidateTipoMismatch(t *testing.T) {
	fisica, _ := For(models.TipoFisica)
	coletivo, _ := For(models.TipoColetivo)
	record := recordFor(t, models.TipoFisica, completeState(fisica))

	assert.False(t, Validate(record, coletivo))
	assert.NotEmpty(t, Missing(record, coletivo))
	assert.False(t, Validate(nil, fisica))
}

func TestMissingInStep(t *testing.T) {
	s, _ := For(models.TipoFisica)
	steps := s.Steps()
	dados := Normalize(FormState{
		"dadosPessoais.nomeCompleto": models.Text("Maria"),
	}, s)

	missing := MissingInStep(dados, s, steps[0])
	assert.Equal(t, []string{"dadosPessoais.cpf", "dadosPessoais.rg", "dadosPessoais.dataNascimento"}, missing)

	missing = MissingInStep(dados, s, steps[3])
	assert.Contains(t, missing, "perfilDoProponente.informacoesDemograficas.sexo")
	for _, path := range missing {
		assert.NotContains(t, path, "experiencia")
	}
}
