package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prefeitura-rio/app-fomento/internal/models"
	"github.com/prefeitura-rio/app-fomento/internal/schema"
	"go.uber.org/zap"
)

// SchemaHandlers serves the registration form definitions.
type SchemaHandlers struct {
	logger *zap.Logger
}

// NewSchemaHandlers creates schema handlers.
func NewSchemaHandlers(logger *zap.Logger) *SchemaHandlers {
	return &SchemaHandlers{logger: logger}
}

// ListSchemas godoc
// @Summary Listar formulários de cadastro
// @Description Retorna o formulário de cada tipo de proponente
// @Tags schemas
// @Produce json
// @Success 200 {array} schema.Schema
// @Router /schemas [get]
func (h *SchemaHandlers) ListSchemas(c *gin.Context) {
	c.JSON(http.StatusOK, schema.All())
}

// GetSchema godoc
// @Summary Obter formulário de cadastro
// @Description Retorna seções, campos e opções do formulário de um tipo de proponente
// @Tags schemas
// @Produce json
// @Param tipo path string true "Tipo de proponente (fisica, juridica, coletivo)"
// @Success 200 {object} schema.Schema
// @Failure 400 {object} ErrorResponse "Tipo inválido"
// @Router /schemas/{tipo} [get]
func (h *SchemaHandlers) GetSchema(c *gin.Context) {
	tipo, err := models.ParseTipo(c.Param("tipo"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	s, err := schema.For(tipo)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, s)
}
