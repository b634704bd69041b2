package config

import (
	"fmt"
	"os"
)

// TestConfig holds configuration for E2E/smoke tests
type TestConfig struct {
	// API endpoint configuration
	BaseURL string // e.g., "https://services.staging.app.dados.rio/fomento/v1"

	// Authentication. Tokens are issued out of band by the auth provider.
	UserToken  string
	AdminToken string

	// Test data
	CityID string

	// Test timeouts
	HealthCheckTimeout int // seconds
	APICallTimeout     int // seconds
}

// LoadTestConfig loads configuration from environment variables
func LoadTestConfig() (*TestConfig, error) {
	baseURL := os.Getenv("TEST_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080/v1" // Default for local testing
	}

	userToken := os.Getenv("TEST_USER_TOKEN")
	if userToken == "" {
		return nil, fmt.Errorf("TEST_USER_TOKEN is required")
	}

	cityID := os.Getenv("TEST_CITY_ID")
	if cityID == "" {
		cityID = "rio-de-janeiro"
	}

	return &TestConfig{
		BaseURL:            baseURL,
		UserToken:          userToken,
		AdminToken:         os.Getenv("TEST_ADMIN_TOKEN"),
		CityID:             cityID,
		HealthCheckTimeout: 30,
		APICallTimeout:     10,
	}, nil
}
