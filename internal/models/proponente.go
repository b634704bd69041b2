package models

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Tipo discriminates the three kinds of proponente.
type Tipo string

const (
	TipoFisica   Tipo = "fisica"
	TipoJuridica Tipo = "juridica"
	TipoColetivo Tipo = "coletivo"
)

// Tipos lists every supported kind in display order.
var Tipos = []Tipo{TipoFisica, TipoJuridica, TipoColetivo}

// Valid reports whether t is one of the supported kinds.
func (t Tipo) Valid() bool {
	switch t {
	case TipoFisica, TipoJuridica, TipoColetivo:
		return true
	}
	return false
}

// ParseTipo parses a kind, ignoring case and surrounding spaces.
func ParseTipo(s string) (Tipo, error) {
	t := Tipo(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidTipo, s)
	}
	return t, nil
}

// Proponente is an applicant registered for a city's cultural funding calls.
// The envelope is fixed; Dados holds the answer tree for the record's Tipo.
type Proponente struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Tipo      Tipo               `bson:"tipo" json:"tipo"`
	UserID    string             `bson:"userId" json:"userId"`
	UserEmail string             `bson:"userEmail" json:"userEmail"`
	CityID    string             `bson:"cityId" json:"cityId"`
	Dados     Section            `bson:"dados" json:"dados"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Answer returns the answer at a dotted path inside Dados.
func (p *Proponente) Answer(path string) (Value, bool) {
	return p.Dados.Get(path)
}

// PaginatedProponentes is a page of proponentes.
type PaginatedProponentes struct {
	Data       []Proponente `json:"data"`
	Pagination Pagination   `json:"pagination"`
}

// Pagination describes a page of results.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// ProponenteUpdate is the payload of an admin edit. Tipo and CityID may be
// sent but must match the stored record.
type ProponenteUpdate struct {
	Tipo   Tipo    `json:"tipo,omitempty"`
	CityID string  `json:"cityId,omitempty"`
	Dados  Section `json:"dados"`
}
