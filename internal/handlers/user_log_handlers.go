package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prefeitura-rio/app-fomento/internal/middleware"
	"github.com/prefeitura-rio/app-fomento/internal/models"
	"go.uber.org/zap"
)

// ActivityLog stores and reads user action histories.
// *services.UserLogService implements it.
type ActivityLog interface {
	Append(ctx context.Context, email string, entry models.LogEntry) error
	Get(ctx context.Context, email string) (*models.UserLog, error)
	List(ctx context.Context, page, perPage int) (*models.PaginatedUserLogs, error)
}

// LogEntryRequest is an action reported by the client, such as a document
// upload handled by another service.
type LogEntryRequest struct {
	Action   string            `json:"action" binding:"required" example:"upload_documento"`
	Filename string            `json:"filename,omitempty" example:"portfolio.pdf"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// UserLogHandlers serves user action histories.
type UserLogHandlers struct {
	logs   ActivityLog
	logger *zap.Logger
}

// NewUserLogHandlers creates user log handlers.
func NewUserLogHandlers(logs ActivityLog, logger *zap.Logger) *UserLogHandlers {
	return &UserLogHandlers{logs: logs, logger: logger}
}

// AppendLog godoc
// @Summary Registrar ação do usuário
// @Description Acrescenta uma ação ao histórico do usuário autenticado
// @Tags logs
// @Accept json
// @Produce json
// @Param data body LogEntryRequest true "Ação executada"
// @Security BearerAuth
// @Success 201 {object} models.LogEntry
// @Failure 400 {object} ErrorResponse "Dados inválidos"
// @Failure 401 {object} ErrorResponse "Usuário não autenticado"
// @Failure 500 {object} ErrorResponse "Erro interno do servidor"
// @Router /logs [post]
func (h *UserLogHandlers) AppendLog(c *gin.Context) {
	session := middleware.SessionFrom(c)
	if session == nil || session.Email == "" {
		respondError(c, h.logger, models.ErrUnauthenticated)
		return
	}
	var req LogEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	entry := models.LogEntry{
		Action:   req.Action,
		Filename: req.Filename,
		Metadata: req.Metadata,
	}
	if err := h.logs.Append(c.Request.Context(), session.Email, entry); err != nil {
		respondError(c, h.logger, err)
		return
	}
	middleware.SkipAudit(c)
	c.JSON(http.StatusCreated, entry)
}

// ListLogs godoc
// @Summary Listar históricos de usuários
// @Tags admin
// @Produce json
// @Param page query int false "Número da página (padrão: 1)" minimum(1)
// @Param per_page query int false "Itens por página (padrão: 10, máximo: 100)" minimum(1) maximum(100)
// @Security BearerAuth
// @Success 200 {object} models.PaginatedUserLogs
// @Failure 403 {object} ErrorResponse "Acesso negado"
// @Router /admin/logs [get]
func (h *UserLogHandlers) ListLogs(c *gin.Context) {
	page, perPage := pagination(c)
	result, err := h.logs.List(c.Request.Context(), page, perPage)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetLog godoc
// @Summary Obter histórico de um usuário
// @Tags admin
// @Produce json
// @Param email path string true "E-mail do usuário"
// @Security BearerAuth
// @Success 200 {object} models.UserLog
// @Failure 403 {object} ErrorResponse "Acesso negado"
// @Failure 404 {object} ErrorResponse "Registro não encontrado"
// @Router /admin/logs/{email} [get]
func (h *UserLogHandlers) GetLog(c *gin.Context) {
	log, err := h.logs.Get(c.Request.Context(), c.Param("email"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, log)
}
