package middleware

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prefeitura-rio/app-fomento/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func createTestJWT(claims models.GatewayClaims) string {
	claimsJSON, _ := json.Marshal(claims)
	claimsB64 := base64.RawURLEncoding.EncodeToString(claimsJSON)
	return "eyJhbGciOiJSUzI1NiIsInR5cCI6IkpXVCJ9." + claimsB64 + ".fake-signature"
}

type staticAdmins struct {
	admins map[string]bool
	err    error
	calls  int
}

func (s *staticAdmins) IsAdmin(_ context.Context, uid string) (bool, error) {
	s.calls++
	return s.admins[uid], s.err
}

func newTestRouter(mw ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(mw...)
	router.GET("/test", func(c *gin.Context) {
		session := SessionFrom(c)
		if session == nil {
			c.JSON(http.StatusOK, gin.H{"uid": ""})
			return
		}
		c.JSON(http.StatusOK, gin.H{"uid": session.UID, "email": session.Email})
	})
	return router
}

func doRequest(router http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGatewayVerifier(t *testing.T) {
	v := GatewayVerifier{}

	session, err := v.Verify(context.Background(), createTestJWT(models.GatewayClaims{SUB: "user123", Email: "Maria@Example.com"}))
	require.NoError(t, err)
	assert.Equal(t, &models.Session{UID: "user123", Email: "maria@example.com"}, session)

	session, err = v.Verify(context.Background(), createTestJWT(models.GatewayClaims{UserID: "fb-uid"}))
	require.NoError(t, err)
	assert.Equal(t, "fb-uid", session.UID)

	_, err = v.Verify(context.Background(), createTestJWT(models.GatewayClaims{Email: "x@example.com"}))
	assert.Error(t, err)

	for _, token := range []string{"", "abc", "a.b", "a.!!!.c", "a." + base64.RawURLEncoding.EncodeToString([]byte("not json")) + ".c"} {
		_, err := v.Verify(context.Background(), token)
		assert.Error(t, err, token)
	}
}

func TestAuth(t *testing.T) {
	a := NewAuthenticator(GatewayVerifier{}, &staticAdmins{}, zap.NewNop())
	router := newTestRouter(a.Auth())
	token := createTestJWT(models.GatewayClaims{SUB: "user123", Email: "maria@example.com"})

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid token", "Bearer " + token, http.StatusOK},
		{"no header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"missing token", "Bearer ", http.StatusUnauthorized},
		{"garbage token", "Bearer garbage", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, tt.header)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.JSONEq(t, `{"uid":"user123","email":"maria@example.com"}`, w.Body.String())
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	a := NewAuthenticator(GatewayVerifier{}, &staticAdmins{}, zap.NewNop())
	router := newTestRouter(a.OptionalAuth())

	w := doRequest(router, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"uid":""}`, w.Body.String())

	w = doRequest(router, "Bearer "+createTestJWT(models.GatewayClaims{SUB: "user123"}))
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAdmin(t *testing.T) {
	admins := &staticAdmins{admins: map[string]bool{"boss": true}}
	a := NewAuthenticator(GatewayVerifier{}, admins, zap.NewNop())
	router := newTestRouter(a.OptionalAuth(), a.RequireAdmin())

	w := doRequest(router, "Bearer "+createTestJWT(models.GatewayClaims{SUB: "boss"}))
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, "Bearer "+createTestJWT(models.GatewayClaims{SUB: "citizen"}))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"Acesso negado"}`, w.Body.String())

	w = doRequest(router, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	admins.err = errors.New("redis down")
	w = doRequest(router, "Bearer "+createTestJWT(models.GatewayClaims{SUB: "boss"}))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestIsAdminMemoized(t *testing.T) {
	admins := &staticAdmins{admins: map[string]bool{"boss": true}}
	a := NewAuthenticator(GatewayVerifier{}, admins, zap.NewNop())

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	isAdmin, err := a.IsAdmin(c)
	require.NoError(t, err)
	assert.False(t, isAdmin)
	assert.Equal(t, 0, admins.calls)

	c.Set(sessionKey, &models.Session{UID: "boss"})
	for i := 0; i < 3; i++ {
		isAdmin, err = a.IsAdmin(c)
		require.NoError(t, err)
		assert.True(t, isAdmin)
	}
	assert.Equal(t, 1, admins.calls)
}
