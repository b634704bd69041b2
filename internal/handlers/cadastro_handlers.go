package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prefeitura-rio/app-fomento/internal/middleware"
	"github.com/prefeitura-rio/app-fomento/internal/models"
	"github.com/prefeitura-rio/app-fomento/internal/utils"
	"github.com/prefeitura-rio/app-fomento/internal/wizard"
	"go.uber.org/zap"
)

// StartCadastroRequest opens a registration draft.
type StartCadastroRequest struct {
	Tipo   string `json:"tipo" binding:"required" example:"fisica"`
	CityID string `json:"cityId" binding:"required" example:"rio-de-janeiro"`
}

// RespostasRequest carries raw answers keyed by dotted path.
type RespostasRequest struct {
	Respostas map[string]models.Value `json:"respostas" binding:"required"`
}

// CadastroResponse is the state of a draft after an action, with the
// notifications raised by it.
type CadastroResponse struct {
	ID           string                `json:"id"`
	Cadastro     wizard.View           `json:"cadastro"`
	Notificacoes []wizard.Notification `json:"notificacoes"`
}

// CadastroErrorResponse is a failed draft action.
type CadastroErrorResponse struct {
	ErrorResponse
	Notificacoes []wizard.Notification `json:"notificacoes"`
}

// CadastroOptions tunes the wizards created by CadastroHandlers.
type CadastroOptions struct {
	StepValidation bool
	LookupTimeout  time.Duration
}

// CadastroHandlers drives registration wizards stored in a draft registry.
type CadastroHandlers struct {
	registry  *wizard.Registry
	persister wizard.Persister
	address   AddressLookup
	opts      CadastroOptions
	logger    *zap.Logger
}

// NewCadastroHandlers creates cadastro handlers. address may be nil to
// disable address autofill.
func NewCadastroHandlers(registry *wizard.Registry, persister wizard.Persister, address AddressLookup, opts CadastroOptions, logger *zap.Logger) *CadastroHandlers {
	return &CadastroHandlers{
		registry:  registry,
		persister: persister,
		address:   address,
		opts:      opts,
		logger:    logger,
	}
}

func (h *CadastroHandlers) respond(c *gin.Context, status int, d *wizard.Draft) {
	c.JSON(status, CadastroResponse{
		ID:           d.ID,
		Cadastro:     d.Wizard.View(),
		Notificacoes: d.Inbox.Drain(),
	})
}

// respondDraftError prefers the wizard's own notification text, so the
// caller sees the same message the form would show.
func (h *CadastroHandlers) respondDraftError(c *gin.Context, d *wizard.Draft, err error) {
	notes := d.Inbox.Drain()
	status, msg := errorStatus(err)
	if status == 0 {
		h.logger.Error("cadastro action failed",
			zap.String("draft_id", d.ID),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		status, msg = http.StatusInternalServerError, msgInternal
	}
	if n := len(notes); n > 0 && notes[n-1].Level == wizard.LevelError {
		msg = notes[n-1].Message
	}

	resp := CadastroErrorResponse{
		ErrorResponse: ErrorResponse{Error: msg},
		Notificacoes:  notes,
	}
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		resp.Missing = verr.Missing
	}
	c.JSON(status, resp)
}

// draft loads the draft named in the path and checks the caller may use it.
func (h *CadastroHandlers) draft(c *gin.Context) (*wizard.Draft, bool) {
	d, err := h.registry.Get(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return nil, false
	}
	if !d.AccessibleBy(middleware.SessionFrom(c)) {
		respondError(c, h.logger, models.ErrAccessDenied)
		return nil, false
	}
	return d, true
}

// StartCadastro godoc
// @Summary Iniciar cadastro de proponente
// @Description Cria um rascunho de cadastro para o tipo e a cidade informados. A autenticação é opcional; um rascunho criado por um usuário autenticado só pode ser usado por ele.
// @Tags cadastro
// @Accept json
// @Produce json
// @Param data body StartCadastroRequest true "Tipo de proponente e cidade"
// @Security BearerAuth
// @Success 201 {object} CadastroResponse
// @Failure 400 {object} ErrorResponse "Dados inválidos"
// @Router /cadastro [post]
func (h *CadastroHandlers) StartCadastro(c *gin.Context) {
	ctx := c.Request.Context()

	_, parseSpan := utils.TraceInputParsing(ctx, "start_cadastro_request")
	var req StartCadastroRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RecordErrorInSpan(parseSpan, err, nil)
		parseSpan.End()
		badRequest(c, err)
		return
	}
	parseSpan.End()

	_, validationSpan := utils.TraceInputValidation(ctx, "tipo", req.Tipo)
	tipo, err := models.ParseTipo(req.Tipo)
	validationSpan.End()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	inbox := &wizard.Inbox{}
	opts := []wizard.Option{
		wizard.WithNotifier(inbox),
		wizard.WithLogger(h.logger.Named("wizard")),
		wizard.WithLookupTimeout(h.opts.LookupTimeout),
	}
	if h.address != nil {
		opts = append(opts, wizard.WithAddressLookup(h.address))
	}
	if h.opts.StepValidation {
		opts = append(opts, wizard.WithStepValidation())
	}

	w, err := wizard.New(tipo, req.CityID, h.persister, opts...)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	d := h.registry.Add(w, inbox, middleware.SessionFrom(c))
	h.logger.Debug("cadastro started",
		zap.String("draft_id", d.ID),
		zap.String("tipo", string(tipo)),
		zap.String("city_id", req.CityID))
	h.respond(c, http.StatusCreated, d)
}

// GetCadastro godoc
// @Summary Consultar rascunho de cadastro
// @Tags cadastro
// @Produce json
// @Param id path string true "ID do rascunho"
// @Security BearerAuth
// @Success 200 {object} CadastroResponse
// @Failure 403 {object} ErrorResponse "Acesso negado"
// @Failure 404 {object} ErrorResponse "Rascunho não encontrado"
// @Router /cadastro/{id} [get]
func (h *CadastroHandlers) GetCadastro(c *gin.Context) {
	d, ok := h.draft(c)
	if !ok {
		return
	}
	h.respond(c, http.StatusOK, d)
}

// SetRespostas godoc
// @Summary Registrar respostas do cadastro
// @Description Grava respostas pelo caminho do campo (ex.: "endereco.cep"). Informar um CEP preenche o endereço em segundo plano.
// @Tags cadastro
// @Accept json
// @Produce json
// @Param id path string true "ID do rascunho"
// @Param data body RespostasRequest true "Respostas por caminho"
// @Security BearerAuth
// @Success 200 {object} CadastroResponse
// @Failure 400 {object} ErrorResponse "Dados inválidos"
// @Failure 404 {object} ErrorResponse "Rascunho não encontrado"
// @Failure 422 {object} CadastroErrorResponse "Campo desconhecido"
// @Router /cadastro/{id}/respostas [patch]
func (h *CadastroHandlers) SetRespostas(c *gin.Context) {
	d, ok := h.draft(c)
	if !ok {
		return
	}
	_, parseSpan := utils.TraceInputParsing(c.Request.Context(), "respostas")
	var req RespostasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RecordErrorInSpan(parseSpan, err, nil)
		parseSpan.End()
		badRequest(c, err)
		return
	}
	utils.AddSpanAttribute(parseSpan, "respostas.count", len(req.Respostas))
	parseSpan.End()

	if err := d.Wizard.SetAnswers(req.Respostas); err != nil {
		h.respondDraftError(c, d, err)
		return
	}
	h.respond(c, http.StatusOK, d)
}

// NextStep godoc
// @Summary Avançar etapa do cadastro
// @Tags cadastro
// @Produce json
// @Param id path string true "ID do rascunho"
// @Security BearerAuth
// @Success 200 {object} CadastroResponse
// @Failure 404 {object} ErrorResponse "Rascunho não encontrado"
// @Failure 422 {object} CadastroErrorResponse "Campos obrigatórios da etapa não preenchidos"
// @Router /cadastro/{id}/proximo [post]
func (h *CadastroHandlers) NextStep(c *gin.Context) {
	d, ok := h.draft(c)
	if !ok {
		return
	}
	if err := d.Wizard.Next(); err != nil {
		h.respondDraftError(c, d, err)
		return
	}
	h.respond(c, http.StatusOK, d)
}

// PreviousStep godoc
// @Summary Voltar etapa do cadastro
// @Tags cadastro
// @Produce json
// @Param id path string true "ID do rascunho"
// @Security BearerAuth
// @Success 200 {object} CadastroResponse
// @Failure 404 {object} ErrorResponse "Rascunho não encontrado"
// @Router /cadastro/{id}/anterior [post]
func (h *CadastroHandlers) PreviousStep(c *gin.Context) {
	d, ok := h.draft(c)
	if !ok {
		return
	}
	d.Wizard.Previous()
	h.respond(c, http.StatusOK, d)
}

// FinishCadastro godoc
// @Summary Finalizar cadastro
// @Description Valida todas as respostas e grava o proponente. Requer autenticação.
// @Tags cadastro
// @Produce json
// @Param id path string true "ID do rascunho"
// @Security BearerAuth
// @Success 201 {object} CadastroResponse
// @Failure 401 {object} CadastroErrorResponse "Usuário não autenticado"
// @Failure 404 {object} ErrorResponse "Rascunho não encontrado"
// @Failure 409 {object} CadastroErrorResponse "Cadastro em andamento ou já finalizado"
// @Failure 422 {object} CadastroErrorResponse "Campos obrigatórios não preenchidos"
// @Failure 500 {object} CadastroErrorResponse "Erro ao salvar cadastro"
// @Router /cadastro/{id}/finalizar [post]
func (h *CadastroHandlers) FinishCadastro(c *gin.Context) {
	d, ok := h.draft(c)
	if !ok {
		return
	}
	ctx, _, done := utils.TraceOperation(c.Request.Context(), "cadastro.finish", map[string]interface{}{
		"cadastro.id": d.ID,
	})
	_, err := d.Wizard.Submit(ctx, middleware.SessionFrom(c))
	done()
	if err != nil {
		h.respondDraftError(c, d, err)
		return
	}
	// the store already logged the registration
	middleware.SkipAudit(c)
	h.respond(c, http.StatusCreated, d)
}

// DiscardCadastro godoc
// @Summary Descartar rascunho de cadastro
// @Tags cadastro
// @Param id path string true "ID do rascunho"
// @Security BearerAuth
// @Success 204
// @Failure 404 {object} ErrorResponse "Rascunho não encontrado"
// @Router /cadastro/{id} [delete]
func (h *CadastroHandlers) DiscardCadastro(c *gin.Context) {
	d, ok := h.draft(c)
	if !ok {
		return
	}
	if err := h.registry.Remove(d.ID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
