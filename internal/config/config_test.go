package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnvOrDefault(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		setEnv       bool
		want         string
	}{
		{
			name:         "environment variable set",
			key:          "TEST_KEY_1",
			defaultValue: "default",
			envValue:     "custom",
			setEnv:       true,
			want:         "custom",
		},
		{
			name:         "environment variable not set",
			key:          "TEST_KEY_2",
			defaultValue: "default",
			want:         "default",
		},
		{
			name:         "empty environment variable",
			key:          "TEST_KEY_3",
			defaultValue: "default",
			envValue:     "",
			setEnv:       true,
			want:         "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setEnv {
				t.Setenv(tt.key, tt.envValue)
			}
			assert.Equal(t, tt.want, getEnvOrDefault(tt.key, tt.defaultValue))
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("TEST_BOOL_TRUE", "true")
	t.Setenv("TEST_BOOL_BAD", "talvez")

	assert.True(t, getEnvBool("TEST_BOOL_TRUE", false))
	assert.True(t, getEnvBool("TEST_BOOL_BAD", true))
	assert.False(t, getEnvBool("TEST_BOOL_UNSET", false))
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("TEST_DURATION", "90s")

	d, err := getEnvDuration("TEST_DURATION", "1m")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, d)

	d, err = getEnvDuration("TEST_DURATION_UNSET", "1m")
	require.NoError(t, err)
	assert.Equal(t, time.Minute, d)

	t.Setenv("TEST_DURATION", "soon")
	_, err = getEnvDuration("TEST_DURATION", "1m")
	assert.ErrorContains(t, err, "invalid TEST_DURATION")
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "proponentes", cfg.ProponenteCollection)
	assert.Equal(t, "user_logs", cfg.UserLogCollection)
	assert.Equal(t, "usuarios", cfg.ProfileCollection)
	assert.Equal(t, "admin", cfg.AdminRole)
	assert.Equal(t, AuthProviderGateway, cfg.AuthProvider)
	assert.Equal(t, 2*time.Hour, cfg.DraftTTL)
	assert.Equal(t, "https://viacep.com.br/ws", cfg.ViaCEPURL)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.False(t, cfg.DraftStepValidation)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("AUTH_PROVIDER", "Firebase")
	t.Setenv("ADMIN_ROLE", "gestor")
	t.Setenv("VIACEP_URL", "http://cep.local/ws/")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.rio, https://b.rio,")
	t.Setenv("DRAFT_STEP_VALIDATION", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, AuthProviderFirebase, cfg.AuthProvider)
	assert.Equal(t, "gestor", cfg.AdminRole)
	assert.Equal(t, "http://cep.local/ws", cfg.ViaCEPURL)
	assert.Equal(t, []string{"https://a.rio", "https://b.rio"}, cfg.AllowedOrigins)
	assert.True(t, cfg.DraftStepValidation)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"invalid port", "PORT", "http"},
		{"invalid redis db", "REDIS_DB", "zero"},
		{"invalid draft ttl", "DRAFT_TTL", "forever"},
		{"invalid auth provider", "AUTH_PROVIDER", "keycloak"},
		{"invalid email workers", "EMAIL_WORKERS", "many"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}
