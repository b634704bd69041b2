package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prefeitura-rio/app-fomento/internal/utils"
	"go.uber.org/zap"
)

// HealthCheck pings one dependency.
type HealthCheck func(ctx context.Context) error

// HealthHandlers reports the state of the service dependencies.
type HealthHandlers struct {
	checks  map[string]HealthCheck
	timeout time.Duration
	logger  *zap.Logger
}

// NewHealthHandlers creates health handlers for the named checks.
func NewHealthHandlers(checks map[string]HealthCheck, logger *zap.Logger) *HealthHandlers {
	return &HealthHandlers{
		checks:  checks,
		timeout: 3 * time.Second,
		logger:  logger,
	}
}

// HealthCheck godoc
// @Summary Verificação de saúde
// @Description Verifica a saúde da API e de suas dependências (MongoDB e Redis)
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse "Todos os serviços estão saudáveis"
// @Failure 503 {object} HealthResponse "Um ou mais serviços estão indisponíveis"
// @Router /health [get]
func (h *HealthHandlers) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	health := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Services:  make(map[string]string, len(h.checks)),
	}

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		_, span := utils.TraceExternalService(ctx, name, "ping")
		if err := h.checks[name](ctx); err != nil {
			utils.RecordErrorInSpan(span, err, map[string]interface{}{
				"service.name":      name,
				"service.operation": "ping",
			})
			h.logger.Warn("dependency unhealthy", zap.String("service", name), zap.Error(err))
			health.Status = "unhealthy"
			health.Services[name] = "unhealthy"
		} else {
			health.Services[name] = "healthy"
		}
		span.End()
	}

	if health.Status != "healthy" {
		c.JSON(http.StatusServiceUnavailable, health)
		return
	}
	c.JSON(http.StatusOK, health)
}
