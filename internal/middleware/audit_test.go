package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prefeitura-rio/app-fomento/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRecorder struct {
	mu      sync.Mutex
	emails  []string
	entries []models.LogEntry
}

func (r *memoryRecorder) AppendAsync(email string, entry models.LogEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.emails = append(r.emails, email)
	r.entries = append(r.entries, entry)
}

func withSession(email string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if email != "" {
			c.Set(sessionKey, &models.Session{UID: "uid", Email: email})
		}
		c.Next()
	}
}

func newAuditRouter(rec *memoryRecorder, email string) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), withSession(email), Audit(rec))
	ok := func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{}) }
	router.GET("/v1/projetos/me", ok)
	router.POST("/v1/health", ok)
	router.POST("/v1/projetos", ok)
	router.POST("/v1/projetos/:id/enviar", func(c *gin.Context) {
		SetAuditAction(c, models.LogActionEnviarProjeto)
		c.JSON(http.StatusOK, gin.H{})
	})
	router.PUT("/v1/admin/proponentes/:id", ok)
	router.DELETE("/v1/cadastro/:id", ok)
	router.PATCH("/v1/cadastro/:id/respostas", func(c *gin.Context) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "x"})
	})
	router.POST("/v1/logs", func(c *gin.Context) {
		SkipAudit(c)
		c.JSON(http.StatusCreated, gin.H{})
	})
	return router
}

func serve(router http.Handler, method, path string) {
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(method, path, strings.NewReader("{}")))
}

func TestAudit_RecordsSuccessfulWrites(t *testing.T) {
	rec := &memoryRecorder{}
	router := newAuditRouter(rec, "maria@example.com")

	serve(router, http.MethodPost, "/v1/projetos?edital=1")
	serve(router, http.MethodPost, "/v1/projetos/abc/enviar")
	serve(router, http.MethodPut, "/v1/admin/proponentes/p1")
	serve(router, http.MethodDelete, "/v1/cadastro/d1")

	require.Len(t, rec.entries, 4)
	assert.Equal(t, []string{"maria@example.com", "maria@example.com", "maria@example.com", "maria@example.com"}, rec.emails)

	assert.Equal(t, "create_projetos", rec.entries[0].Action)
	assert.Equal(t, "edital=1", rec.entries[0].Metadata["query_params"])
	assert.NotEmpty(t, rec.entries[0].Metadata["request_id"])
	assert.False(t, rec.entries[0].Timestamp.IsZero())

	assert.Equal(t, models.LogActionEnviarProjeto, rec.entries[1].Action)
	assert.Equal(t, "abc", rec.entries[1].Metadata["resource_id"])

	assert.Equal(t, "update_proponentes", rec.entries[2].Action)
	assert.Equal(t, "delete_cadastro", rec.entries[3].Action)
	assert.Equal(t, "200", rec.entries[3].Metadata["response_status"])
}

func TestAudit_Skips(t *testing.T) {
	rec := &memoryRecorder{}
	router := newAuditRouter(rec, "maria@example.com")

	serve(router, http.MethodGet, "/v1/projetos/me")
	serve(router, http.MethodPost, "/v1/health")
	serve(router, http.MethodPatch, "/v1/cadastro/d1/respostas")
	serve(router, http.MethodPost, "/v1/logs")

	assert.Empty(t, rec.entries)

	anonymous := &memoryRecorder{}
	serve(newAuditRouter(anonymous, ""), http.MethodPost, "/v1/projetos")
	assert.Empty(t, anonymous.entries)
}

func TestExtractResourceFromPath(t *testing.T) {
	tests := map[string]string{
		"/v1/cadastro/abc/finalizar":             "cadastro",
		"/v1/admin/proponentes/1":                "proponentes",
		"/v1/admin/cidades/rio/zonas":            "zonas",
		"/v1/admin/projetos/1/avaliacoes":        "projetos",
		"/v1/":                                   "unknown",
		"/v1/admin/cidades/rio/proponentes/teste": "proponentes",
	}
	for path, want := range tests {
		assert.Equal(t, want, extractResourceFromPath(path), path)
	}
}
