package fixtures

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/prefeitura-rio/app-fomento/internal/models"
	"github.com/prefeitura-rio/app-fomento/internal/schema"
	"github.com/prefeitura-rio/app-fomento/tests/config"
	"github.com/stretchr/testify/require"
)

// Sample documents that pass check-digit validation
const (
	TestCPF    = "529.982.247-25"
	TestCNPJ   = "11.222.333/0001-81"
	TestPhone  = "(21) 99876-5432"
	TestCityID = "rio-de-janeiro"
)

// CompleteDados answers every required field of tipo with a value that the
// service accepts.
func CompleteDados(t *testing.T, tipo models.Tipo) models.Section {
	t.Helper()
	s, err := schema.For(tipo)
	require.NoError(t, err)

	dados := models.NewSection()
	s.Walk(func(path string, f schema.Field) {
		if !f.Required {
			return
		}
		switch {
		case f.Name == "cpf" || f.Name == "cpfResponsavel":
			dados.Set(path, models.Text(TestCPF))
		case f.Name == "cnpj":
			dados.Set(path, models.Text(TestCNPJ))
		case f.Name == "telefone":
			dados.Set(path, models.Text(TestPhone))
		case f.Name == "email":
			dados.Set(path, models.Text("teste@example.com"))
		case f.Kind == schema.KindSelect:
			dados.Set(path, models.Text(f.Options[0].Value))
		case f.Kind == schema.KindMultiSelect:
			dados.Set(path, models.List(f.Options[0].Value))
		default:
			dados.Set(path, models.Text("Teste"))
		}
	})
	return *dados
}

// Respostas flattens CompleteDados into the path to value map that the
// cadastro endpoints accept.
func Respostas(t *testing.T, tipo models.Tipo) map[string]interface{} {
	t.Helper()
	dados := CompleteDados(t, tipo)
	s, err := schema.For(tipo)
	require.NoError(t, err)

	out := map[string]interface{}{}
	s.Walk(func(path string, f schema.Field) {
		v, ok := dados.Get(path)
		if !ok {
			return
		}
		if f.Kind == schema.KindMultiSelect {
			out[path] = v.List
			return
		}
		out[path] = v.Text
	})
	return out
}

// APIClient wraps HTTP client with common test functionality
type APIClient struct {
	BaseURL    string
	HTTPClient *http.Client
	Token      string
}

// NewAPIClient creates a new API client for testing
func NewAPIClient(cfg *config.TestConfig, token string) *APIClient {
	return &APIClient{
		BaseURL: cfg.BaseURL,
		HTTPClient: &http.Client{
			Timeout: time.Duration(cfg.APICallTimeout) * time.Second,
		},
		Token: token,
	}
}

func (c *APIClient) do(method, path string, body interface{}) (*http.Response, error) {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}

	var req *http.Request
	var err error
	if reader != nil {
		req, err = http.NewRequest(method, c.BaseURL+path, reader)
	} else {
		req, err = http.NewRequest(method, c.BaseURL+path, nil)
	}
	if err != nil {
		return nil, err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	return c.HTTPClient.Do(req)
}

// Get performs authenticated GET request
func (c *APIClient) Get(path string) (*http.Response, error) {
	return c.do(http.MethodGet, path, nil)
}

// Post performs authenticated POST request
func (c *APIClient) Post(path string, body interface{}) (*http.Response, error) {
	return c.do(http.MethodPost, path, body)
}

// Patch performs authenticated PATCH request
func (c *APIClient) Patch(path string, body interface{}) (*http.Response, error) {
	return c.do(http.MethodPatch, path, body)
}

// Delete performs authenticated DELETE request
func (c *APIClient) Delete(path string) (*http.Response, error) {
	return c.do(http.MethodDelete, path, nil)
}
