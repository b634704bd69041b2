package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prefeitura-rio/app-fomento/internal/middleware"
	"github.com/prefeitura-rio/app-fomento/internal/models"
	"go.uber.org/zap"
)

// ProjetoStore manages project applications.
// *services.ProjetoService implements it.
type ProjetoStore interface {
	Create(ctx context.Context, session *models.Session, input models.ProjetoInput) (*models.Projeto, error)
	Submit(ctx context.Context, session *models.Session, id string) (*models.Projeto, error)
	ListByCity(ctx context.Context, cityID string, status models.ProjetoStatus, page, perPage int) (*models.PaginatedProjetos, error)
	ListMine(ctx context.Context, userID string, page, perPage int) (*models.PaginatedProjetos, error)
	Evaluate(ctx context.Context, id, avaliador string, input models.AvaliacaoInput) (*models.Projeto, error)
	Decide(ctx context.Context, id string, status models.ProjetoStatus) (*models.Projeto, error)
}

// ProjetoHandlers serves project applications and their review.
type ProjetoHandlers struct {
	store  ProjetoStore
	logger *zap.Logger
}

// NewProjetoHandlers creates projeto handlers.
func NewProjetoHandlers(store ProjetoStore, logger *zap.Logger) *ProjetoHandlers {
	return &ProjetoHandlers{store: store, logger: logger}
}

// CreateProjeto godoc
// @Summary Criar projeto
// @Description Cria um projeto em rascunho vinculado a um proponente do usuário autenticado
// @Tags projetos
// @Accept json
// @Produce json
// @Param data body models.ProjetoInput true "Dados do projeto"
// @Security BearerAuth
// @Success 201 {object} models.Projeto
// @Failure 400 {object} ErrorResponse "Dados inválidos"
// @Failure 401 {object} ErrorResponse "Usuário não autenticado"
// @Failure 403 {object} ErrorResponse "Proponente pertence a outro usuário"
// @Failure 404 {object} ErrorResponse "Proponente não encontrado"
// @Router /projetos [post]
func (h *ProjetoHandlers) CreateProjeto(c *gin.Context) {
	var input models.ProjetoInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	projeto, err := h.store.Create(c.Request.Context(), middleware.SessionFrom(c), input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	// the service records its own log entry
	middleware.SkipAudit(c)
	c.JSON(http.StatusCreated, projeto)
}

// ListMyProjetos godoc
// @Summary Listar meus projetos
// @Tags projetos
// @Produce json
// @Param page query int false "Número da página (padrão: 1)" minimum(1)
// @Param per_page query int false "Itens por página (padrão: 10, máximo: 100)" minimum(1) maximum(100)
// @Security BearerAuth
// @Success 200 {object} models.PaginatedProjetos
// @Failure 401 {object} ErrorResponse "Usuário não autenticado"
// @Router /projetos/me [get]
func (h *ProjetoHandlers) ListMyProjetos(c *gin.Context) {
	session := middleware.SessionFrom(c)
	if session == nil {
		respondError(c, h.logger, models.ErrUnauthenticated)
		return
	}
	page, perPage := pagination(c)
	result, err := h.store.ListMine(c.Request.Context(), session.UID, page, perPage)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// SubmitProjeto godoc
// @Summary Enviar projeto
// @Description Envia um projeto em rascunho para avaliação. Somente o dono do projeto pode enviá-lo.
// @Tags projetos
// @Produce json
// @Param id path string true "ID do projeto"
// @Security BearerAuth
// @Success 200 {object} models.Projeto
// @Failure 401 {object} ErrorResponse "Usuário não autenticado"
// @Failure 403 {object} ErrorResponse "Acesso negado"
// @Failure 404 {object} ErrorResponse "Registro não encontrado"
// @Failure 409 {object} ErrorResponse "Projeto já enviado"
// @Router /projetos/{id}/enviar [post]
func (h *ProjetoHandlers) SubmitProjeto(c *gin.Context) {
	projeto, err := h.store.Submit(c.Request.Context(), middleware.SessionFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	middleware.SkipAudit(c)
	c.JSON(http.StatusOK, projeto)
}

// ListCityProjetos godoc
// @Summary Listar projetos de uma cidade
// @Tags admin
// @Produce json
// @Param cityId path string true "ID da cidade"
// @Param status query string false "Status (rascunho, enviado, em_avaliacao, aprovado, reprovado)"
// @Param page query int false "Número da página (padrão: 1)" minimum(1)
// @Param per_page query int false "Itens por página (padrão: 10, máximo: 100)" minimum(1) maximum(100)
// @Security BearerAuth
// @Success 200 {object} models.PaginatedProjetos
// @Failure 400 {object} ErrorResponse "Status inválido"
// @Failure 403 {object} ErrorResponse "Acesso negado"
// @Router /admin/cidades/{cityId}/projetos [get]
func (h *ProjetoHandlers) ListCityProjetos(c *gin.Context) {
	page, perPage := pagination(c)
	status := models.ProjetoStatus(c.Query("status"))
	result, err := h.store.ListByCity(c.Request.Context(), c.Param("cityId"), status, page, perPage)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// EvaluateProjeto godoc
// @Summary Avaliar projeto
// @Description Registra a nota (0 a 10) e o parecer de um avaliador e recalcula a nota final
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "ID do projeto"
// @Param data body models.AvaliacaoInput true "Nota e parecer"
// @Security BearerAuth
// @Success 200 {object} models.Projeto
// @Failure 400 {object} ErrorResponse "Dados inválidos"
// @Failure 403 {object} ErrorResponse "Acesso negado"
// @Failure 404 {object} ErrorResponse "Registro não encontrado"
// @Failure 409 {object} ErrorResponse "Projeto não está aguardando avaliação"
// @Failure 422 {object} ErrorResponse "Nota fora do intervalo"
// @Router /admin/projetos/{id}/avaliacoes [post]
func (h *ProjetoHandlers) EvaluateProjeto(c *gin.Context) {
	var input models.AvaliacaoInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	avaliador := ""
	if session := middleware.SessionFrom(c); session != nil {
		avaliador = session.Email
		if avaliador == "" {
			avaliador = session.UID
		}
	}
	projeto, err := h.store.Evaluate(c.Request.Context(), c.Param("id"), avaliador, input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	middleware.SetAuditAction(c, models.LogActionAvaliarProjeto)
	c.JSON(http.StatusOK, projeto)
}

// DecideProjeto godoc
// @Summary Decidir resultado do projeto
// @Description Aprova ou reprova um projeto em avaliação
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "ID do projeto"
// @Param data body models.DecisaoInput true "Status final (aprovado ou reprovado)"
// @Security BearerAuth
// @Success 200 {object} models.Projeto
// @Failure 400 {object} ErrorResponse "Status inválido"
// @Failure 403 {object} ErrorResponse "Acesso negado"
// @Failure 404 {object} ErrorResponse "Registro não encontrado"
// @Failure 409 {object} ErrorResponse "Projeto não está em avaliação"
// @Router /admin/projetos/{id}/decisao [post]
func (h *ProjetoHandlers) DecideProjeto(c *gin.Context) {
	var input models.DecisaoInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	projeto, err := h.store.Decide(c.Request.Context(), c.Param("id"), input.Status)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	middleware.SetAuditAction(c, models.LogActionDecidirProjeto)
	c.JSON(http.StatusOK, projeto)
}
