package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prefeitura-rio/app-fomento/internal/models"
	"github.com/prefeitura-rio/app-fomento/internal/services"
	"github.com/prefeitura-rio/app-fomento/internal/wizard"
	"go.uber.org/zap"
)

const (
	defaultPerPage = 10
	maxPerPage     = 100

	msgInternal     = "Erro interno do servidor"
	msgInvalidInput = "Dados inválidos"
)

// ErrorResponse is the body of every failed request. Missing lists the
// required answers that were left empty.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Missing []string `json:"missing,omitempty"`
}

// HealthResponse reports the state of each dependency.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

// pagination reads page and per_page, defaulting to 1 and 10 and capping
// per_page at 100.
func pagination(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	perPage, err := strconv.Atoi(c.DefaultQuery("per_page", strconv.Itoa(defaultPerPage)))
	if err != nil || perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}

// filtersFromQuery collects the dashboard filters present in the query.
func filtersFromQuery(c *gin.Context) map[string]string {
	filters := map[string]string{}
	for _, key := range services.FilterKeys {
		if v := c.Query(key); v != "" {
			filters[key] = v
		}
	}
	return filters
}

// errorStatus maps domain errors to a status code and a user-facing message.
// The zero status means the error is unexpected.
func errorStatus(err error) (int, string) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity, "Por favor, preencha todos os campos obrigatórios."
	case errors.Is(err, models.ErrUnauthenticated):
		return http.StatusUnauthorized, "Usuário não autenticado"
	case errors.Is(err, models.ErrAccessDenied):
		return http.StatusForbidden, "Acesso negado"
	case errors.Is(err, models.ErrNotFound), errors.Is(err, wizard.ErrDraftNotFound):
		return http.StatusNotFound, "Registro não encontrado"
	case errors.Is(err, models.ErrInvalidID):
		return http.StatusBadRequest, "Identificador inválido"
	case errors.Is(err, models.ErrInvalidTipo):
		return http.StatusBadRequest, "Tipo de proponente inválido"
	case errors.Is(err, models.ErrInvalidStatus):
		return http.StatusBadRequest, "Status de projeto inválido"
	case errors.Is(err, models.ErrInvalidZona):
		return http.StatusBadRequest, "Zona inválida"
	case errors.Is(err, models.ErrInvalidCEP):
		return http.StatusBadRequest, "CEP inválido"
	case errors.Is(err, models.ErrCEPNotFound):
		return http.StatusNotFound, "CEP não encontrado"
	case errors.Is(err, models.ErrInvalidDocument):
		return http.StatusUnprocessableEntity, "CPF ou CNPJ inválido"
	case errors.Is(err, models.ErrInvalidNota):
		return http.StatusUnprocessableEntity, "A nota deve estar entre 0 e 10"
	case errors.Is(err, models.ErrImmutableField):
		return http.StatusUnprocessableEntity, "Tipo e cidade não podem ser alterados"
	case errors.Is(err, wizard.ErrUnknownField):
		return http.StatusUnprocessableEntity, "Campo desconhecido"
	case errors.Is(err, models.ErrIncompleteRecord):
		return http.StatusUnprocessableEntity, "Por favor, preencha todos os campos obrigatórios."
	case errors.Is(err, models.ErrSubmissionInProgress):
		return http.StatusConflict, "Cadastro já está sendo enviado"
	case errors.Is(err, wizard.ErrFinished):
		return http.StatusConflict, "Cadastro já finalizado"
	case errors.Is(err, models.ErrInvalidStatusTransition):
		return http.StatusConflict, "Transição de status não permitida"
	}
	return 0, ""
}

// respondError writes err as an ErrorResponse. Unexpected errors are logged
// and reported as 500 without details.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status, msg := errorStatus(err)
	if status == 0 {
		logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("method", c.Request.Method),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: msgInternal})
		return
	}
	resp := ErrorResponse{Error: msg}
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		resp.Missing = verr.Missing
	}
	c.JSON(status, resp)
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgInvalidInput + ": " + err.Error()})
}
