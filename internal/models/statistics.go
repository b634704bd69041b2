package models

import (
	"math"
	"strings"
)

// Zona is a coarse geographic region of a city.
type Zona string

const (
	ZonaNorte        Zona = "norte"
	ZonaSul          Zona = "sul"
	ZonaLeste        Zona = "leste"
	ZonaOeste        Zona = "oeste"
	ZonaCentro       Zona = "centro"
	ZonaNaoInformada Zona = "nao_informada"
)

// NamedZonas are the five classifiable regions.
var NamedZonas = []Zona{ZonaNorte, ZonaSul, ZonaLeste, ZonaOeste, ZonaCentro}

// ParseZona accepts only the five named regions.
func ParseZona(s string) (Zona, bool) {
	z := Zona(strings.ToLower(strings.TrimSpace(s)))
	for _, named := range NamedZonas {
		if z == named {
			return z, true
		}
	}
	return "", false
}

// ZoneCounts holds one counter per zone bucket.
type ZoneCounts struct {
	Norte        int `json:"norte"`
	Sul          int `json:"sul"`
	Leste        int `json:"leste"`
	Oeste        int `json:"oeste"`
	Centro       int `json:"centro"`
	NaoInformada int `json:"nao_informada"`
}

// Add increments the bucket of z; anything unknown lands in NaoInformada.
func (z *ZoneCounts) Add(zona Zona) {
	switch zona {
	case ZonaNorte:
		z.Norte++
	case ZonaSul:
		z.Sul++
	case ZonaLeste:
		z.Leste++
	case ZonaOeste:
		z.Oeste++
	case ZonaCentro:
		z.Centro++
	default:
		z.NaoInformada++
	}
}

// Sum returns the total over all six buckets.
func (z ZoneCounts) Sum() int {
	return z.Norte + z.Sul + z.Leste + z.Oeste + z.Centro + z.NaoInformada
}

// CityStatistics is computed on demand from the live proponente set.
type CityStatistics struct {
	CityID           string     `json:"cityId"`
	TotalProponentes int        `json:"totalProponentes"`
	Fisica           int        `json:"fisica"`
	Juridica         int        `json:"juridica"`
	Coletivo         int        `json:"coletivo"`
	Zonas            ZoneCounts `json:"zonas"`
}

// AddTipo increments the counter of t. It reports false for unknown kinds.
func (s *CityStatistics) AddTipo(t Tipo) bool {
	switch t {
	case TipoFisica:
		s.Fisica++
	case TipoJuridica:
		s.Juridica++
	case TipoColetivo:
		s.Coletivo++
	default:
		return false
	}
	return true
}

// StatisticsPercentages holds rounded integer percentages of the total.
type StatisticsPercentages struct {
	Fisica   int        `json:"fisica"`
	Juridica int        `json:"juridica"`
	Coletivo int        `json:"coletivo"`
	Zonas    ZoneCounts `json:"zonas"`
}

// Percent returns round(count / total * 100). total must be positive.
func Percent(count, total int) int {
	return int(math.Round(float64(count) / float64(total) * 100))
}

// Percentages renders the statistics as percentages. ok is false when there
// are no proponentes, in which case callers show an empty state.
func (s CityStatistics) Percentages() (p StatisticsPercentages, ok bool) {
	total := s.TotalProponentes
	if total <= 0 {
		return p, false
	}
	p.Fisica = Percent(s.Fisica, total)
	p.Juridica = Percent(s.Juridica, total)
	p.Coletivo = Percent(s.Coletivo, total)
	p.Zonas = ZoneCounts{
		Norte:        Percent(s.Zonas.Norte, total),
		Sul:          Percent(s.Zonas.Sul, total),
		Leste:        Percent(s.Zonas.Leste, total),
		Oeste:        Percent(s.Zonas.Oeste, total),
		Centro:       Percent(s.Zonas.Centro, total),
		NaoInformada: Percent(s.Zonas.NaoInformada, total),
	}
	return p, true
}

// ZonaBairro maps a normalized neighbourhood name of a city to a zone.
type ZonaBairro struct {
	CityID string `bson:"cityId" json:"cityId"`
	Bairro string `bson:"bairro" json:"bairro"`
	Zona   Zona   `bson:"zona" json:"zona"`
}
