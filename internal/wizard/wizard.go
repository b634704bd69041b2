// Package wizard drives the multi-step registration form of a proponente:
// step navigation, answer collection, address autofill and submission.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/prefeitura-rio/app-fomento/internal/models"
	"github.com/prefeitura-rio/app-fomento/internal/schema"
	"go.uber.org/zap"
)

// User-facing texts.
const (
	LabelNext   = "Próximo"
	LabelFinish = "Finalizar Cadastro"

	MsgUnauthenticated = "Erro: Usuário não autenticado."
	MsgIncomplete      = "Por favor, preencha todos os campos obrigatórios."
	MsgSuccess         = "Cadastro realizado com sucesso!"
	MsgSaveFailed      = "Erro ao salvar cadastro. Tente novamente."
	MsgInvalidDocument = "CPF ou CNPJ inválido. Verifique os dados informados."
)

const defaultLookupTimeout = 30 * time.Second

var (
	ErrUnknownField = errors.New("unknown field")
	ErrFinished     = errors.New("registration already finished")
)

// addressFields are overwritten by a successful CEP lookup.
var addressFields = []string{"logradouro", "bairro", "cidade", "uf"}

// Persister stores a completed record. *services.ProponenteService implements it.
type Persister interface {
	Create(ctx context.Context, record *models.Proponente) (*models.Proponente, error)
}

// Wizard holds the in-progress answers of one registration. It is safe for
// concurrent use.
type Wizard struct {
	mu sync.Mutex

	schema *schema.Schema
	steps  []schema.Step
	cityID string

	step     int
	state    schema.FormState
	inFlight bool
	finished bool
	closed   bool
	result   *models.Proponente

	// cepGen holds the latest lookup generation per section path.
	cepGen map[string]uint64
	// lookups tracks address lookups still running; see Wait.
	lookups sync.WaitGroup

	validateSteps bool
	lookupTimeout time.Duration
	persister     Persister
	address       AddressLookup
	notifier      Notifier
	logger        *zap.Logger
}

// New starts a registration of tipo for cityID.
func New(tipo models.Tipo, cityID string, persister Persister, opts ...Option) (*Wizard, error) {
	s, err := schema.For(tipo)
	if err != nil {
		return nil, err
	}
	w := &Wizard{
		schema:        s,
		steps:         s.Steps(),
		cityID:        strings.TrimSpace(cityID),
		state:         schema.FormState{},
		cepGen:        map[string]uint64{},
		lookupTimeout: defaultLookupTimeout,
		persister:     persister,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

func (w *Wizard) notify(level Level, msg string) {
	if w.notifier == nil {
		return
	}
	w.notifier.Notify(Notification{Level: level, Message: msg, At: time.Now().UTC()})
}

// Tipo returns the kind of proponente being registered.
func (w *Wizard) Tipo() models.Tipo { return w.schema.Tipo }

// CityID returns the city the record will belong to.
func (w *Wizard) CityID() string { return w.cityID }

// Schema returns the form being filled.
func (w *Wizard) Schema() *schema.Schema { return w.schema }

// Step returns the zero-based index of the current step.
func (w *Wizard) Step() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// StepCount returns the number of steps.
func (w *Wizard) StepCount() int { return len(w.steps) }

// CurrentStep returns the current step.
func (w *Wizard) CurrentStep() schema.Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.steps[w.step]
}

// CanGoBack reports whether Previous would move.
func (w *Wizard) CanGoBack() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step > 0
}

// IsLastStep reports whether the current step is the final one.
func (w *Wizard) IsLastStep() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step == len(w.steps)-1
}

// PrimaryActionLabel returns the label of the forward button.
func (w *Wizard) PrimaryActionLabel() string {
	if w.IsLastStep() {
		return LabelFinish
	}
	return LabelNext
}

// Finished reports whether the registration was saved.
func (w *Wizard) Finished() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.finished
}

// Result returns the saved record once finished.
func (w *Wizard) Result() *models.Proponente {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.result
}

// Next advances one step. It is a no-op on the last step. With step
// validation on, missing required fields keep the wizard in place and are
// returned as a *models.ValidationError.
func (w *Wizard) Next() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.finished || w.closed || w.step >= len(w.steps)-1 {
		return nil
	}
	if w.validateSteps {
		dados := schema.Normalize(w.state, w.schema)
		if missing := schema.MissingInStep(dados, w.schema, w.steps[w.step]); len(missing) > 0 {
			w.notify(LevelError, MsgIncomplete)
			return &models.ValidationError{Missing: missing}
		}
	}
	w.step++
	return nil
}

// Previous goes back one step. It is a no-op on the first step.
func (w *Wizard) Previous() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.finished || w.closed || w.step == 0 {
		return
	}
	w.step--
}

// Answers returns a copy of the raw answers.
func (w *Wizard) Answers() schema.FormState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state.Clone()
}

// SetAnswer stores the raw answer of the field at path. Answering a cep
// field starts an address lookup in the background.
func (w *Wizard) SetAnswer(path string, v models.Value) error {
	return w.SetAnswers(map[string]models.Value{path: v})
}

// SetAnswers stores several raw answers at once. Unknown paths are rejected
// before anything is written.
func (w *Wizard) SetAnswers(answers map[string]models.Value) error {
	fields := make(map[string]schema.Field, len(answers))
	for path := range answers {
		f, ok := w.schema.Field(path)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownField, path)
		}
		fields[path] = f
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.finished || w.closed {
		return nil
	}
	for path, v := range answers {
		w.state[path] = v
		if fields[path].Name == "cep" {
			w.startLookupLocked(path, v)
		}
	}
	return nil
}

func sectionOf(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 {
		return path[:i]
	}
	return ""
}

func (w *Wizard) startLookupLocked(path string, v models.Value) {
	if w.address == nil {
		return
	}
	section := sectionOf(path)
	w.cepGen[section]++
	gen := w.cepGen[section]

	cep := strings.TrimSpace(v.String())
	if cep == "" {
		return
	}

	w.lookups.Add(1)
	go func() {
		defer w.lookups.Done()

		ctx, cancel := context.WithTimeout(context.Background(), w.lookupTimeout)
		defer cancel()

		addr, err := w.address.Lookup(ctx, cep)
		if err != nil {
			w.logger.Warn("address lookup failed", zap.String("cep", cep), zap.Error(err))
			return
		}
		w.applyAddress(section, gen, addr)
	}()
}

func (w *Wizard) applyAddress(section string, gen uint64, addr *models.Address) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || w.finished || w.cepGen[section] != gen {
		w.logger.Debug("discarding stale address lookup", zap.String("section", section))
		return
	}
	values := map[string]string{
		"logradouro": addr.Logradouro,
		"bairro":     addr.Bairro,
		"cidade":     addr.Cidade,
		"uf":         addr.UF,
	}
	for _, name := range addressFields {
		path := section + "." + name
		if _, ok := w.schema.Field(path); ok {
			w.state[path] = models.Text(values[name])
		}
	}
}

// Submit validates every answer and saves the record through the persister.
// It may be called from any step; validation always covers the whole form.
// Only one submission runs at a time; a failed save keeps the answers so the
// user can retry.
func (w *Wizard) Submit(ctx context.Context, session *models.Session) (*models.Proponente, error) {
	w.mu.Lock()
	if w.finished || w.closed {
		w.mu.Unlock()
		return nil, ErrFinished
	}
	if w.inFlight {
		w.mu.Unlock()
		return nil, models.ErrSubmissionInProgress
	}
	if session == nil || session.UID == "" {
		w.notify(LevelError, MsgUnauthenticated)
		w.mu.Unlock()
		return nil, models.ErrUnauthenticated
	}

	dados := schema.Normalize(w.state, w.schema)
	record := &models.Proponente{
		Tipo:      w.schema.Tipo,
		UserID:    session.UID,
		UserEmail: session.Email,
		CityID:    w.cityID,
		Dados:     *dados,
	}
	if missing := schema.Missing(record, w.schema); len(missing) > 0 {
		w.notify(LevelError, MsgIncomplete)
		w.mu.Unlock()
		return nil, &models.ValidationError{Missing: missing}
	}
	w.inFlight = true
	w.mu.Unlock()

	saved, err := w.persister.Create(ctx, record)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.inFlight = false

	if err != nil {
		if errors.Is(err, models.ErrInvalidDocument) {
			w.notify(LevelError, MsgInvalidDocument)
		} else {
			w.notify(LevelError, MsgSaveFailed)
		}
		w.logger.Error("failed to save registration",
			zap.String("tipo", string(record.Tipo)),
			zap.String("city_id", record.CityID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to save registration: %w", err)
	}

	w.finished = true
	w.result = saved
	w.notify(LevelSuccess, MsgSuccess)
	return saved, nil
}

// Close discards the wizard. Pending address lookups are ignored when they
// complete.
func (w *Wizard) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
}

// Wait blocks until every address lookup started so far has returned. Each
// lookup is bounded by the lookup timeout.
func (w *Wizard) Wait() {
	w.lookups.Wait()
}

// Closed reports whether Close was called.
func (w *Wizard) Closed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

// View is a point-in-time rendering of the wizard for clients.
type View struct {
	Tipo               models.Tipo      `json:"tipo"`
	CityID             string           `json:"cityId"`
	Step               int              `json:"step"`
	StepCount          int              `json:"stepCount"`
	StepPath           string           `json:"stepPath"`
	Section            *schema.Section  `json:"section"`
	PrimaryActionLabel string           `json:"primaryActionLabel"`
	CanGoBack          bool             `json:"canGoBack"`
	Submitting         bool             `json:"submitting"`
	Finished           bool             `json:"finished"`
	ProponenteID       string           `json:"proponenteId,omitempty"`
	Respostas          schema.FormState `json:"respostas"`
}

// View renders the current state.
func (w *Wizard) View() View {
	w.mu.Lock()
	defer w.mu.Unlock()

	current := w.steps[w.step]
	label := LabelNext
	if w.step == len(w.steps)-1 {
		label = LabelFinish
	}
	v := View{
		Tipo:               w.schema.Tipo,
		CityID:             w.cityID,
		Step:               w.step,
		StepCount:          len(w.steps),
		StepPath:           current.Path,
		Section:            current.Section,
		PrimaryActionLabel: label,
		CanGoBack:          w.step > 0,
		Submitting:         w.inFlight,
		Finished:           w.finished,
		Respostas:          w.state.Clone(),
	}
	if w.result != nil {
		v.ProponenteID = w.result.ID.Hex()
	}
	return v
}
