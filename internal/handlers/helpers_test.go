package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prefeitura-rio/app-fomento/internal/middleware"
	"github.com/prefeitura-rio/app-fomento/internal/models"
	"github.com/prefeitura-rio/app-fomento/internal/services"
	"github.com/prefeitura-rio/app-fomento/internal/wizard"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	userToken  = "token-user"
	otherToken = "token-other"
	adminToken = "token-admin"
)

var errBoom = errors.New("boom")

// tokenVerifier maps fixed tokens to sessions.
type tokenVerifier map[string]*models.Session

func (v tokenVerifier) Verify(_ context.Context, token string) (*models.Session, error) {
	if s, ok := v[token]; ok {
		return s, nil
	}
	return nil, errors.New("unknown token")
}

type adminSet map[string]bool

func (a adminSet) IsAdmin(_ context.Context, uid string) (bool, error) {
	return a[uid], nil
}

var (
	userSession  = &models.Session{UID: "user-1", Email: "ana@example.com"}
	otherSession = &models.Session{UID: "user-2", Email: "bia@example.com"}
	adminSession = &models.Session{UID: "admin-1", Email: "gestor@example.com"}
)

func newAuthenticator() *middleware.Authenticator {
	verifier := tokenVerifier{
		userToken:  userSession,
		otherToken: otherSession,
		adminToken: adminSession,
	}
	return middleware.NewAuthenticator(verifier, adminSet{adminSession.UID: true}, zap.NewNop())
}

// fakeProponentes is an in-memory proponente store that also persists
// wizard submissions.
type fakeProponentes struct {
	mu        sync.Mutex
	records   map[string]*models.Proponente
	created   []*models.Proponente
	createErr error
	lastPred  services.Predicate
	lastPage  [2]int
	updateErr error
}

func newFakeProponentes() *fakeProponentes {
	return &fakeProponentes{records: map[string]*models.Proponente{}}
}

func (f *fakeProponentes) add(p *models.Proponente) *models.Proponente {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	f.records[p.ID.Hex()] = p
	return p
}

func (f *fakeProponentes) Create(_ context.Context, p *models.Proponente) (*models.Proponente, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	saved := f.add(p)
	f.mu.Lock()
	f.created = append(f.created, saved)
	f.mu.Unlock()
	return saved, nil
}

func (f *fakeProponentes) Get(_ context.Context, id string) (*models.Proponente, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.records[id]; ok {
		return p, nil
	}
	return nil, models.ErrNotFound
}

func (f *fakeProponentes) ListByUser(_ context.Context, userID string) ([]models.Proponente, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Proponente
	for _, p := range f.records {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProponentes) ListByCity(_ context.Context, cityID string, pred services.Predicate, page, perPage int) (*models.PaginatedProponentes, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastPred = pred
	f.lastPage = [2]int{page, perPage}
	out := []models.Proponente{}
	for _, p := range f.records {
		if p.CityID == cityID && pred.Matches(p) {
			out = append(out, *p)
		}
	}
	return &models.PaginatedProponentes{
		Data:       out,
		Pagination: models.Pagination{Page: page, PerPage: perPage, Total: len(out), TotalPages: 1},
	}, nil
}

func (f *fakeProponentes) Update(_ context.Context, id string, update models.ProponenteUpdate) (*models.Proponente, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.records[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	p.Dados = *update.Dados.Clone()
	return p, nil
}

func (f *fakeProponentes) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.records[id]; !ok {
		return models.ErrNotFound
	}
	delete(f.records, id)
	return nil
}

type fakeProjetos struct {
	err          error
	created      []models.ProjetoInput
	avaliador    string
	lastStatus   models.ProjetoStatus
	lastDecision models.ProjetoStatus
}

func (f *fakeProjetos) projeto(status models.ProjetoStatus) *models.Projeto {
	return &models.Projeto{ID: primitive.NewObjectID(), Status: status, Avaliacoes: []models.Avaliacao{}}
}

func (f *fakeProjetos) Create(_ context.Context, session *models.Session, input models.ProjetoInput) (*models.Projeto, error) {
	if f.err != nil {
		return nil, f.err
	}
	if session == nil {
		return nil, models.ErrUnauthenticated
	}
	f.created = append(f.created, input)
	p := f.projeto(models.ProjetoRascunho)
	p.Titulo = input.Titulo
	p.UserID = session.UID
	return p, nil
}

func (f *fakeProjetos) Submit(_ context.Context, _ *models.Session, _ string) (*models.Projeto, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.projeto(models.ProjetoEnviado), nil
}

func (f *fakeProjetos) ListByCity(_ context.Context, _ string, status models.ProjetoStatus, page, perPage int) (*models.PaginatedProjetos, error) {
	if status != "" && !status.Valid() {
		return nil, models.ErrInvalidStatus
	}
	f.lastStatus = status
	return &models.PaginatedProjetos{Data: []models.Projeto{}, Pagination: models.Pagination{Page: page, PerPage: perPage}}, nil
}

func (f *fakeProjetos) ListMine(_ context.Context, _ string, page, perPage int) (*models.PaginatedProjetos, error) {
	return &models.PaginatedProjetos{Data: []models.Projeto{}, Pagination: models.Pagination{Page: page, PerPage: perPage}}, nil
}

func (f *fakeProjetos) Evaluate(_ context.Context, _ string, avaliador string, input models.AvaliacaoInput) (*models.Projeto, error) {
	if input.Nota < 0 || input.Nota > 10 {
		return nil, models.ErrInvalidNota
	}
	f.avaliador = avaliador
	p := f.projeto(models.ProjetoEmAvaliacao)
	p.Avaliacoes = append(p.Avaliacoes, models.Avaliacao{Avaliador: avaliador, Nota: input.Nota, Parecer: input.Parecer})
	nota := input.Nota
	p.NotaFinal = &nota
	return p, nil
}

func (f *fakeProjetos) Decide(_ context.Context, _ string, status models.ProjetoStatus) (*models.Projeto, error) {
	if f.err != nil {
		return nil, f.err
	}
	if status != models.ProjetoAprovado && status != models.ProjetoReprovado {
		return nil, models.ErrInvalidStatus
	}
	f.lastDecision = status
	return f.projeto(status), nil
}

type fakeStatistics struct {
	stats       models.CityStatistics
	lastFilters map[string]string
}

func (f *fakeStatistics) ComputeStatistics(_ context.Context, cityID string, filters map[string]string) (*models.CityStatistics, error) {
	f.lastFilters = filters
	out := f.stats
	out.CityID = cityID
	return &out, nil
}

type fakeLogs struct {
	mu      sync.Mutex
	entries map[string][]models.LogEntry
}

func (f *fakeLogs) Append(_ context.Context, email string, entry models.LogEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.entries == nil {
		f.entries = map[string][]models.LogEntry{}
	}
	f.entries[email] = append(f.entries[email], entry)
	return nil
}

func (f *fakeLogs) Get(_ context.Context, email string) (*models.UserLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entries, ok := f.entries[email]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &models.UserLog{User: email, Entries: entries}, nil
}

func (f *fakeLogs) List(_ context.Context, page, perPage int) (*models.PaginatedUserLogs, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.UserLog{}
	for email, entries := range f.entries {
		out = append(out, models.UserLog{User: email, Entries: entries})
	}
	return &models.PaginatedUserLogs{Data: out, Pagination: models.Pagination{Page: page, PerPage: perPage, Total: len(out)}}, nil
}

type fakeZones struct {
	mapping map[string]models.Zona
}

func (f *fakeZones) Mapping(_ context.Context, _ string) (map[string]models.Zona, error) {
	return f.mapping, nil
}

func (f *fakeZones) SetZona(_ context.Context, cityID, bairro string, zona models.Zona) (*models.ZonaBairro, error) {
	z, ok := models.ParseZona(string(zona))
	if !ok {
		return nil, models.ErrInvalidZona
	}
	key := services.NormalizeBairro(bairro)
	if f.mapping == nil {
		f.mapping = map[string]models.Zona{}
	}
	f.mapping[key] = z
	return &models.ZonaBairro{CityID: cityID, Bairro: key, Zona: z}, nil
}

type fakeRoles struct{}

func (fakeRoles) SetRoles(_ context.Context, uid, email string, roles []string) (*models.UserProfile, error) {
	return &models.UserProfile{UID: uid, Email: email, Roles: roles}, nil
}

type fakeLookup struct {
	addr *models.Address
	err  error
}

func (f fakeLookup) Lookup(_ context.Context, _ string) (*models.Address, error) {
	return f.addr, f.err
}

// testServer wires every handler set to fakes behind the real auth
// middleware.
type testServer struct {
	engine      *gin.Engine
	registry    *wizard.Registry
	proponentes *fakeProponentes
	projetos    *fakeProjetos
	stats       *fakeStatistics
	logs        *fakeLogs
	zones       *fakeZones
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	ts := &testServer{
		registry:    wizard.NewRegistry(0, logger),
		proponentes: newFakeProponentes(),
		projetos:    &fakeProjetos{},
		stats:       &fakeStatistics{},
		logs:        &fakeLogs{},
		zones:       &fakeZones{},
	}
	routes := &Routes{
		Health: NewHealthHandlers(map[string]HealthCheck{
			"mongodb": func(context.Context) error { return nil },
			"redis":   func(context.Context) error { return nil },
		}, logger),
		Schemas:     NewSchemaHandlers(logger),
		CEP:         NewCEPHandlers(fakeLookup{err: models.ErrCEPNotFound}, logger),
		Cadastro:    NewCadastroHandlers(ts.registry, ts.proponentes, nil, CadastroOptions{}, logger),
		Proponentes: NewProponenteHandlers(ts.proponentes, newAuthenticator(), logger),
		Statistics:  NewStatisticsHandlers(ts.stats, logger),
		Projetos:    NewProjetoHandlers(ts.projetos, logger),
		Logs:        NewUserLogHandlers(ts.logs, logger),
		Admin:       NewAdminHandlers(ts.zones, fakeRoles{}, logger),
	}

	ts.engine = gin.New()
	routes.Register(ts.engine.Group("/v1"), newAuthenticator())
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	return serve(t, ts.engine, method, path, token, body)
}

func serve(t *testing.T, engine http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}
