package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prefeitura-rio/app-fomento/internal/middleware"
	"github.com/prefeitura-rio/app-fomento/internal/models"
	"github.com/prefeitura-rio/app-fomento/internal/services"
	"github.com/prefeitura-rio/app-fomento/internal/utils"
	"go.uber.org/zap"
)

// ProponenteStore reads and edits stored proponentes.
// *services.ProponenteService implements it.
type ProponenteStore interface {
	Get(ctx context.Context, id string) (*models.Proponente, error)
	ListByUser(ctx context.Context, userID string) ([]models.Proponente, error)
	ListByCity(ctx context.Context, cityID string, pred services.Predicate, page, perPage int) (*models.PaginatedProponentes, error)
	Update(ctx context.Context, id string, update models.ProponenteUpdate) (*models.Proponente, error)
	Delete(ctx context.Context, id string) error
}

// AdminResolver tells whether the caller of a request is an administrator.
// *middleware.Authenticator implements it.
type AdminResolver interface {
	IsAdmin(c *gin.Context) (bool, error)
}

// ProponenteHandlers serves proponente records.
type ProponenteHandlers struct {
	store  ProponenteStore
	admins AdminResolver
	logger *zap.Logger
}

// NewProponenteHandlers creates proponente handlers.
func NewProponenteHandlers(store ProponenteStore, admins AdminResolver, logger *zap.Logger) *ProponenteHandlers {
	return &ProponenteHandlers{store: store, admins: admins, logger: logger}
}

// ListMyProponentes godoc
// @Summary Listar meus cadastros
// @Description Retorna os proponentes cadastrados pelo usuário autenticado
// @Tags proponentes
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Proponente
// @Failure 401 {object} ErrorResponse "Usuário não autenticado"
// @Failure 500 {object} ErrorResponse "Erro interno do servidor"
// @Router /proponentes/me [get]
func (h *ProponenteHandlers) ListMyProponentes(c *gin.Context) {
	session := middleware.SessionFrom(c)
	if session == nil {
		respondError(c, h.logger, models.ErrUnauthenticated)
		return
	}
	records, err := h.store.ListByUser(c.Request.Context(), session.UID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if records == nil {
		records = []models.Proponente{}
	}
	c.JSON(http.StatusOK, records)
}

// GetProponente godoc
// @Summary Obter proponente
// @Description Retorna um proponente. Disponível para o dono do cadastro e para administradores.
// @Tags proponentes
// @Produce json
// @Param id path string true "ID do proponente"
// @Security BearerAuth
// @Success 200 {object} models.Proponente
// @Failure 400 {object} ErrorResponse "Identificador inválido"
// @Failure 401 {object} ErrorResponse "Usuário não autenticado"
// @Failure 403 {object} ErrorResponse "Acesso negado"
// @Failure 404 {object} ErrorResponse "Registro não encontrado"
// @Router /proponentes/{id} [get]
func (h *ProponenteHandlers) GetProponente(c *gin.Context) {
	session := middleware.SessionFrom(c)
	if session == nil {
		respondError(c, h.logger, models.ErrUnauthenticated)
		return
	}
	record, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if record.UserID != session.UID {
		isAdmin, err := h.admins.IsAdmin(c)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		if !isAdmin {
			respondError(c, h.logger, models.ErrAccessDenied)
			return
		}
	}
	c.JSON(http.StatusOK, record)
}

// ListCityProponentes godoc
// @Summary Listar proponentes de uma cidade
// @Description Lista paginada dos proponentes de uma cidade. Filtros vazios ou desconhecidos são ignorados.
// @Tags admin
// @Produce json
// @Param cityId path string true "ID da cidade"
// @Param tipo query string false "Tipo de proponente"
// @Param sexo query string false "Sexo"
// @Param genero query string false "Gênero"
// @Param racaCorEtnia query string false "Raça, cor ou etnia"
// @Param orientacaoSexual query string false "Orientação sexual"
// @Param pessoaComDeficiencia query string false "Pessoa com deficiência"
// @Param faixaEtaria query string false "Faixa etária"
// @Param escolaridade query string false "Escolaridade"
// @Param rendaMensal query string false "Renda mensal"
// @Param bairro query string false "Bairro"
// @Param principalAreaAtuacaoCultural query string false "Principal área de atuação cultural"
// @Param page query int false "Número da página (padrão: 1)" minimum(1)
// @Param per_page query int false "Itens por página (padrão: 10, máximo: 100)" minimum(1) maximum(100)
// @Security BearerAuth
// @Success 200 {object} models.PaginatedProponentes
// @Failure 401 {object} ErrorResponse "Usuário não autenticado"
// @Failure 403 {object} ErrorResponse "Acesso negado"
// @Failure 500 {object} ErrorResponse "Erro interno do servidor"
// @Router /admin/cidades/{cityId}/proponentes [get]
func (h *ProponenteHandlers) ListCityProponentes(c *gin.Context) {
	ctx, span := utils.TraceBusinessLogic(c.Request.Context(), "list_city_proponentes")
	defer span.End()

	page, perPage := pagination(c)
	pred := services.BuildPredicate(filtersFromQuery(c))
	result, err := h.store.ListByCity(ctx, c.Param("cityId"), pred, page, perPage)
	if err != nil {
		utils.RecordErrorInSpan(span, err, nil)
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// UpdateProponente godoc
// @Summary Editar proponente
// @Description Substitui as respostas de um proponente. Tipo e cidade não podem ser alterados; o cadastro é validado novamente.
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "ID do proponente"
// @Param data body models.ProponenteUpdate true "Novas respostas"
// @Security BearerAuth
// @Success 200 {object} models.Proponente
// @Failure 400 {object} ErrorResponse "Dados inválidos"
// @Failure 403 {object} ErrorResponse "Acesso negado"
// @Failure 404 {object} ErrorResponse "Registro não encontrado"
// @Failure 422 {object} ErrorResponse "Campos obrigatórios não preenchidos"
// @Router /admin/proponentes/{id} [put]
func (h *ProponenteHandlers) UpdateProponente(c *gin.Context) {
	ctx := c.Request.Context()

	_, parseSpan := utils.TraceInputParsing(ctx, "proponente_update")
	var req models.ProponenteUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RecordErrorInSpan(parseSpan, err, nil)
		parseSpan.End()
		badRequest(c, err)
		return
	}
	parseSpan.End()

	record, err := h.store.Update(ctx, c.Param("id"), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	_, serializeSpan := utils.TraceResponseSerialization(ctx, "proponente")
	c.JSON(http.StatusOK, record)
	serializeSpan.End()
}

// DeleteProponente godoc
// @Summary Excluir proponente
// @Tags admin
// @Param id path string true "ID do proponente"
// @Security BearerAuth
// @Success 204
// @Failure 403 {object} ErrorResponse "Acesso negado"
// @Failure 404 {object} ErrorResponse "Registro não encontrado"
// @Router /admin/proponentes/{id} [delete]
func (h *ProponenteHandlers) DeleteProponente(c *gin.Context) {
	if err := h.store.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
