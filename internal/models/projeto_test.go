package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProjetoStatus_CanTransition(t *testing.T) {
	tests := []struct {
		from, to ProjetoStatus
		want     bool
	}{
		{ProjetoRascunho, ProjetoEnviado, true},
		{ProjetoRascunho, ProjetoAprovado, false},
		{ProjetoEnviado, ProjetoEmAvaliacao, true},
		{ProjetoEnviado, ProjetoAprovado, false},
		{ProjetoEmAvaliacao, ProjetoEmAvaliacao, true},
		{ProjetoEmAvaliacao, ProjetoReprovado, true},
		{ProjetoAprovado, ProjetoReprovado, false},
		{ProjetoReprovado, ProjetoEmAvaliacao, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransition(tt.to))
		})
	}
}

func TestProjetoStatus_Valid(t *testing.T) {
	assert.True(t, ProjetoEmAvaliacao.Valid())
	assert.False(t, ProjetoStatus("arquivado").Valid())
}

func TestViaCEPResponse_NotFound(t *testing.T) {
	assert.True(t, (&ViaCEPResponse{Erro: true}).NotFound())
	assert.True(t, (&ViaCEPResponse{Erro: "true"}).NotFound())
	assert.False(t, (&ViaCEPResponse{}).NotFound())

	addr := (&ViaCEPResponse{CEP: "20000-000", Bairro: "Centro", Localidade: "Rio de Janeiro", UF: "RJ"}).ToAddress()
	assert.Equal(t, "Rio de Janeiro", addr.Cidade)
	assert.Equal(t, "Centro", addr.Bairro)
}
