package fixtures

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertStatusCode checks HTTP response status code
func AssertStatusCode(t *testing.T, resp *http.Response, expectedStatus int) {
	t.Helper()
	if resp.StatusCode != expectedStatus {
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, expectedStatus, resp.StatusCode,
			"Unexpected status code. Response body: %s", string(body))
	}
}

// DecodeJSON reads the response body into out
func DecodeJSON(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "Failed to read response body")
	require.NoError(t, json.Unmarshal(body, out), "Response is not valid JSON: %s", string(body))
}

// AssertHealthy checks if health endpoint returns healthy status
func AssertHealthy(t *testing.T, client *APIClient) {
	t.Helper()

	resp, err := client.Get("/health")
	require.NoError(t, err, "Failed to call health endpoint")
	AssertStatusCode(t, resp, http.StatusOK)

	var body map[string]interface{}
	DecodeJSON(t, resp, &body)
	status, ok := body["status"].(string)
	require.True(t, ok, "Health response missing 'status' field")
	assert.Equal(t, "healthy", status, "Service is not healthy")
}

// AssertFieldExists checks if a field exists in JSON response
func AssertFieldExists(t *testing.T, data map[string]interface{}, field string) {
	t.Helper()
	_, exists := data[field]
	assert.True(t, exists, "Expected field '%s' not found in response", field)
}

// WaitForHealthy polls health endpoint until service is ready or timeout
func WaitForHealthy(t *testing.T, client *APIClient, maxAttempts int) error {
	t.Helper()

	for i := 0; i < maxAttempts; i++ {
		resp, err := client.Get("/health")
		if err != nil {
			t.Logf("Health check attempt %d/%d failed: %v", i+1, maxAttempts, err)
		} else {
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				t.Logf("Service healthy after %d attempts", i+1)
				return nil
			}
		}

		if i < maxAttempts-1 {
			time.Sleep(time.Second)
		}
	}

	return fmt.Errorf("service did not become healthy after %d attempts", maxAttempts)
}
