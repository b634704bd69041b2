package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prefeitura-rio/app-fomento/internal/models"
	"go.uber.org/zap"
)

// StatisticsComputer aggregates the proponentes of a city.
// *services.StatisticsService implements it.
type StatisticsComputer interface {
	ComputeStatistics(ctx context.Context, cityID string, filters map[string]string) (*models.CityStatistics, error)
}

// StatisticsResponse carries the raw counters and, unless the city has no
// proponentes, their percentages.
type StatisticsResponse struct {
	models.CityStatistics
	Vazio         bool                          `json:"vazio"`
	Percentuais   *models.StatisticsPercentages `json:"percentuais,omitempty"`
	FiltrosAtivos map[string]string             `json:"filtrosAtivos"`
}

// StatisticsHandlers serves the city dashboard.
type StatisticsHandlers struct {
	stats  StatisticsComputer
	logger *zap.Logger
}

// NewStatisticsHandlers creates statistics handlers.
func NewStatisticsHandlers(stats StatisticsComputer, logger *zap.Logger) *StatisticsHandlers {
	return &StatisticsHandlers{stats: stats, logger: logger}
}

// GetCityStatistics godoc
// @Summary Estatísticas de proponentes de uma cidade
// @Description Conta proponentes por tipo e por zona, com percentuais arredondados. Sem proponentes, retorna "vazio": true e nenhum percentual.
// @Tags admin
// @Produce json
// @Param cityId path string true "ID da cidade"
// @Param tipo query string false "Tipo de proponente"
// @Param sexo query string false "Sexo"
// @Param genero query string false "Gênero"
// @Param racaCorEtnia query string false "Raça, cor ou etnia"
// @Param faixaEtaria query string false "Faixa etária"
// @Param bairro query string false "Bairro"
// @Security BearerAuth
// @Success 200 {object} StatisticsResponse
// @Failure 401 {object} ErrorResponse "Usuário não autenticado"
// @Failure 403 {object} ErrorResponse "Acesso negado"
// @Failure 500 {object} ErrorResponse "Erro interno do servidor"
// @Router /admin/cidades/{cityId}/estatisticas [get]
func (h *StatisticsHandlers) GetCityStatistics(c *gin.Context) {
	filters := filtersFromQuery(c)
	stats, err := h.stats.ComputeStatistics(c.Request.Context(), c.Param("cityId"), filters)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	resp := StatisticsResponse{CityStatistics: *stats, FiltrosAtivos: filters}
	if p, ok := stats.Percentages(); ok {
		resp.Percentuais = &p
	} else {
		resp.Vazio = true
	}
	c.JSON(http.StatusOK, resp)
}
