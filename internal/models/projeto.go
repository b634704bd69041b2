package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProjetoStatus is the lifecycle state of a project application.
type ProjetoStatus string

const (
	ProjetoRascunho    ProjetoStatus = "rascunho"
	ProjetoEnviado     ProjetoStatus = "enviado"
	ProjetoEmAvaliacao ProjetoStatus = "em_avaliacao"
	ProjetoAprovado    ProjetoStatus = "aprovado"
	ProjetoReprovado   ProjetoStatus = "reprovado"
)

var projetoTransitions = map[ProjetoStatus][]ProjetoStatus{
	ProjetoRascunho:    {ProjetoEnviado},
	ProjetoEnviado:     {ProjetoEmAvaliacao},
	ProjetoEmAvaliacao: {ProjetoEmAvaliacao, ProjetoAprovado, ProjetoReprovado},
}

// CanTransition reports whether a project may move from s to next.
func (s ProjetoStatus) CanTransition(next ProjetoStatus) bool {
	for _, allowed := range projetoTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Valid reports whether s is a known status.
func (s ProjetoStatus) Valid() bool {
	switch s {
	case ProjetoRascunho, ProjetoEnviado, ProjetoEmAvaliacao, ProjetoAprovado, ProjetoReprovado:
		return true
	}
	return false
}

// Avaliacao is one reviewer's score of a project.
type Avaliacao struct {
	Avaliador string    `bson:"avaliador" json:"avaliador"`
	Nota      float64   `bson:"nota" json:"nota"`
	Parecer   string    `bson:"parecer" json:"parecer"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// Projeto is a project application submitted to a funding call.
type Projeto struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProponenteID    primitive.ObjectID `bson:"proponenteId" json:"proponenteId"`
	UserID          string             `bson:"userId" json:"userId"`
	UserEmail       string             `bson:"userEmail" json:"userEmail"`
	CityID          string             `bson:"cityId" json:"cityId"`
	EditalID        string             `bson:"editalId" json:"editalId"`
	Titulo          string             `bson:"titulo" json:"titulo"`
	Resumo          string             `bson:"resumo" json:"resumo"`
	Categoria       string             `bson:"categoria" json:"categoria"`
	ValorSolicitado float64            `bson:"valorSolicitado" json:"valorSolicitado"`
	Status          ProjetoStatus      `bson:"status" json:"status"`
	Avaliacoes      []Avaliacao        `bson:"avaliacoes" json:"avaliacoes"`
	NotaFinal       *float64           `bson:"notaFinal,omitempty" json:"notaFinal,omitempty"`
	EnviadoEm       *time.Time         `bson:"enviadoEm,omitempty" json:"enviadoEm,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ProjetoInput is the payload to create a project.
type ProjetoInput struct {
	ProponenteID    string  `json:"proponenteId" binding:"required"`
	EditalID        string  `json:"editalId" binding:"required"`
	Titulo          string  `json:"titulo" binding:"required"`
	Resumo          string  `json:"resumo"`
	Categoria       string  `json:"categoria"`
	ValorSolicitado float64 `json:"valorSolicitado"`
}

// AvaliacaoInput is the payload of an admin review.
type AvaliacaoInput struct {
	Nota    float64 `json:"nota"`
	Parecer string  `json:"parecer"`
}

// DecisaoInput is the payload of an admin final decision.
type DecisaoInput struct {
	Status ProjetoStatus `json:"status" binding:"required"`
}

// PaginatedProjetos is a page of projects.
type PaginatedProjetos struct {
	Data       []Projeto  `json:"data"`
	Pagination Pagination `json:"pagination"`
}
