package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestSection_SetGet(t *testing.T) {
	s := NewSection()
	s.Set("endereco.cep", Text("20000-000"))
	s.Set("perfil.areas", List("musica", "teatro"))

	v, ok := s.Get("endereco.cep")
	require.True(t, ok)
	assert.Equal(t, "20000-000", v.Text)

	v, ok = s.Get("perfil.areas")
	require.True(t, ok)
	assert.True(t, v.Matches("teatro"))
	assert.False(t, v.Matches("danca"))

	_, ok = s.Get("endereco.bairro")
	assert.False(t, ok)
	_, ok = s.Get("inexistente.campo")
	assert.False(t, ok)

	var nilSection *Section
	_, ok = nilSection.Get("a.b")
	assert.False(t, ok)
}

func TestSection_CloneIsDeep(t *testing.T) {
	s := NewSection()
	s.Set("perfil.areas", List("musica"))
	clone := s.Clone()

	clone.Set("perfil.nome", Text("outro"))
	areas := clone.Child("perfil").Values["areas"]
	areas.List[0] = "alterado"

	_, ok := s.Get("perfil.nome")
	assert.False(t, ok)
	v, _ := s.Get("perfil.areas")
	assert.Equal(t, []string{"musica"}, v.List)
}

func TestValue_Empty(t *testing.T) {
	assert.True(t, Text("  ").Empty())
	assert.True(t, List().Empty())
	assert.True(t, List(" ", "").Empty())
	assert.False(t, Text("a").Empty())
	assert.False(t, List("", "b").Empty())
}

func TestValue_UnmarshalJSON(t *testing.T) {
	var body struct {
		Respostas map[string]Value `json:"respostas"`
	}
	err := json.Unmarshal([]byte(`{"respostas":{"a":"texto","b":["x",2,null],"c":42,"d":true,"e":null}}`), &body)
	require.NoError(t, err)

	assert.Equal(t, Text("texto"), body.Respostas["a"])
	assert.Equal(t, List("x", "2"), body.Respostas["b"])
	assert.Equal(t, Text("42"), body.Respostas["c"])
	assert.Equal(t, Text("true"), body.Respostas["d"])
	assert.Equal(t, Value{}, body.Respostas["e"])

	var v Value
	assert.Error(t, json.Unmarshal([]byte(`{"x":1}`), &v))
}

func TestSection_JSONShape(t *testing.T) {
	s := NewSection()
	s.Set("dadosPessoais.nomeCompleto", Text("Maria"))
	s.Set("perfil.areas", List())

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"dadosPessoais":{"nomeCompleto":"Maria"},"perfil":{"areas":[]}}`, string(data))

	var back Section
	require.NoError(t, json.Unmarshal(data, &back))
	v, ok := back.Get("dadosPessoais.nomeCompleto")
	require.True(t, ok)
	assert.Equal(t, "Maria", v.Text)
}

func TestProponente_BSONKeepsAnswerTree(t *testing.T) {
	p := Proponente{Tipo: TipoColetivo, CityID: "rio"}
	p.Dados = *NewSection()
	p.Dados.Set("dadosColetivo.nomeColetivo", Text("Coletivo"))
	p.Dados.Set("perfil.areas", List("musica", "danca"))

	data, err := bson.Marshal(p)
	require.NoError(t, err)

	var back Proponente
	require.NoError(t, bson.Unmarshal(data, &back))
	assert.Equal(t, TipoColetivo, back.Tipo)

	v, ok := back.Answer("perfil.areas")
	require.True(t, ok)
	assert.True(t, v.IsList)
	assert.Equal(t, []string{"musica", "danca"}, v.List)
}

func TestParseTipo(t *testing.T) {
	tipo, err := ParseTipo(" Juridica ")
	require.NoError(t, err)
	assert.Equal(t, TipoJuridica, tipo)

	_, err = ParseTipo("empresa")
	assert.ErrorIs(t, err, ErrInvalidTipo)
}

func TestValue_BSONScalarsBecomeText(t *testing.T) {
	data, err := bson.Marshal(bson.D{
		{Key: "int32", Value: int32(5)},
		{Key: "int64", Value: int64(1234567890123)},
		{Key: "double", Value: 7.5},
		{Key: "whole", Value: 8.0},
		{Key: "flag", Value: true},
		{Key: "list", Value: bson.A{"a", int32(2), nil, 3.25}},
	})
	require.NoError(t, err)

	var doc struct {
		Int32  Value `bson:"int32"`
		Int64  Value `bson:"int64"`
		Double Value `bson:"double"`
		Whole  Value `bson:"whole"`
		Flag   Value `bson:"flag"`
		List   Value `bson:"list"`
	}
	require.NoError(t, bson.Unmarshal(data, &doc))

	assert.Equal(t, Text("5"), doc.Int32)
	assert.Equal(t, Text("1234567890123"), doc.Int64)
	assert.Equal(t, Text("7.5"), doc.Double)
	assert.Equal(t, Text("8"), doc.Whole)
	assert.Equal(t, Text("true"), doc.Flag)
	assert.Equal(t, List("a", "2", "3.25"), doc.List)
}
