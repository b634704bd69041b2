package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prefeitura-rio/app-fomento/internal/models"
	"go.uber.org/zap"
)

// AddressLookup resolves a CEP. *services.CEPService implements it.
type AddressLookup interface {
	Lookup(ctx context.Context, cep string) (*models.Address, error)
}

// CEPHandlers exposes postal code lookups.
type CEPHandlers struct {
	lookup AddressLookup
	logger *zap.Logger
}

// NewCEPHandlers creates CEP handlers.
func NewCEPHandlers(lookup AddressLookup, logger *zap.Logger) *CEPHandlers {
	return &CEPHandlers{lookup: lookup, logger: logger}
}

// GetAddress godoc
// @Summary Consultar CEP
// @Description Retorna logradouro, bairro, cidade e UF de um CEP
// @Tags cep
// @Produce json
// @Param cep path string true "CEP com ou sem pontuação"
// @Success 200 {object} models.Address
// @Failure 400 {object} ErrorResponse "CEP inválido"
// @Failure 404 {object} ErrorResponse "CEP não encontrado"
// @Failure 502 {object} ErrorResponse "Serviço de CEP indisponível"
// @Router /cep/{cep} [get]
func (h *CEPHandlers) GetAddress(c *gin.Context) {
	addr, err := h.lookup.Lookup(c.Request.Context(), c.Param("cep"))
	if err != nil {
		if status, _ := errorStatus(err); status == 0 {
			h.logger.Warn("CEP lookup failed", zap.Error(err))
			c.JSON(http.StatusBadGateway, ErrorResponse{Error: "Serviço de CEP indisponível"})
			return
		}
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, addr)
}
