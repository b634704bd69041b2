package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Auth providers understood by AUTH_PROVIDER.
const (
	AuthProviderFirebase = "firebase"
	AuthProviderGateway  = "gateway"
)

// Config holds all configuration values
type Config struct {
	// Server configuration
	Port           int      `json:"port"`
	Environment    string   `json:"environment"`
	LogLevel       string   `json:"log_level"`
	ServiceVersion string   `json:"service_version"`
	AllowedOrigins []string `json:"allowed_origins"`

	// MongoDB configuration
	MongoURI      string `json:"mongo_uri"`
	MongoDatabase string `json:"mongo_database"`

	// Redis configuration
	RedisURI      string `json:"redis_uri"`
	RedisPassword string `json:"redis_password"`
	RedisDB       int    `json:"redis_db"`

	// Collection names
	ProponenteCollection string `json:"mongo_proponente_collection"`
	UserLogCollection    string `json:"mongo_user_log_collection"`
	ProfileCollection    string `json:"mongo_profile_collection"`
	ProjetoCollection    string `json:"mongo_projeto_collection"`
	ZonaCollection       string `json:"mongo_zona_collection"`

	// Cache and lock TTLs
	ProfileCacheTTL time.Duration `json:"profile_cache_ttl"`
	CEPCacheTTL     time.Duration `json:"cep_cache_ttl"`
	ZoneCacheTTL    time.Duration `json:"zone_cache_ttl"`
	SubmitLockTTL   time.Duration `json:"submit_lock_ttl"`

	// Authentication
	AuthProvider            string `json:"auth_provider"`
	FirebaseProjectID       string `json:"firebase_project_id"`
	FirebaseCredentialsFile string `json:"firebase_credentials_file"`
	AdminRole               string `json:"admin_role"`

	// Registration drafts
	DraftTTL            time.Duration `json:"draft_ttl"`
	DraftJanitorPeriod  time.Duration `json:"draft_janitor_period"`
	DraftStepValidation bool          `json:"draft_step_validation"`

	// External services
	ViaCEPURL      string `json:"viacep_url"`
	EmailAPIURL    string `json:"email_api_url"`
	EmailAPIToken  string `json:"email_api_token"`
	EmailFrom      string `json:"email_from"`
	EmailQueueSize int    `json:"email_queue_size"`
	EmailWorkers   int    `json:"email_workers"`

	// Tracing
	TracingEnabled  bool   `json:"tracing_enabled"`
	TracingEndpoint string `json:"tracing_endpoint"`
}

// LoadConfig loads configuration from environment variables. A .env file in
// the working directory is read first when present.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("failed to read .env file: %v", err)
	}

	port, err := strconv.Atoi(getEnvOrDefault("PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	redisDB, err := strconv.Atoi(getEnvOrDefault("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	profileCacheTTL, err := getEnvDuration("PROFILE_CACHE_TTL", "5m")
	if err != nil {
		return nil, err
	}

	cepCacheTTL, err := getEnvDuration("CEP_CACHE_TTL", "24h")
	if err != nil {
		return nil, err
	}

	zoneCacheTTL, err := getEnvDuration("ZONE_CACHE_TTL", "10m")
	if err != nil {
		return nil, err
	}

	submitLockTTL, err := getEnvDuration("SUBMIT_LOCK_TTL", "30s")
	if err != nil {
		return nil, err
	}

	draftTTL, err := getEnvDuration("DRAFT_TTL", "2h")
	if err != nil {
		return nil, err
	}

	draftJanitorPeriod, err := getEnvDuration("DRAFT_JANITOR_PERIOD", "1m")
	if err != nil {
		return nil, err
	}

	emailQueueSize, err := strconv.Atoi(getEnvOrDefault("EMAIL_QUEUE_SIZE", "100"))
	if err != nil {
		return nil, fmt.Errorf("invalid EMAIL_QUEUE_SIZE: %w", err)
	}

	emailWorkers, err := strconv.Atoi(getEnvOrDefault("EMAIL_WORKERS", "2"))
	if err != nil {
		return nil, fmt.Errorf("invalid EMAIL_WORKERS: %w", err)
	}

	authProvider := strings.ToLower(getEnvOrDefault("AUTH_PROVIDER", AuthProviderGateway))
	if authProvider != AuthProviderFirebase && authProvider != AuthProviderGateway {
		return nil, fmt.Errorf("invalid AUTH_PROVIDER %q: must be %s or %s", authProvider, AuthProviderFirebase, AuthProviderGateway)
	}

	cfg := &Config{
		// Server configuration
		Port:           port,
		Environment:    getEnvOrDefault("ENVIRONMENT", "development"),
		LogLevel:       getEnvOrDefault("LOG_LEVEL", "info"),
		ServiceVersion: getEnvOrDefault("SERVICE_VERSION", "v1"),
		AllowedOrigins: splitList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "*")),

		// MongoDB configuration
		MongoURI:      getEnvOrDefault("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnvOrDefault("MONGODB_DATABASE", "fomento"),

		// Redis configuration
		RedisURI:      getEnvOrDefault("REDIS_URI", "localhost:6379"),
		RedisPassword: getEnvOrDefault("REDIS_PASSWORD", ""),
		RedisDB:       redisDB,

		// Collection names
		ProponenteCollection: getEnvOrDefault("MONGODB_PROPONENTE_COLLECTION", "proponentes"),
		UserLogCollection:    getEnvOrDefault("MONGODB_USER_LOG_COLLECTION", "user_logs"),
		ProfileCollection:    getEnvOrDefault("MONGODB_PROFILE_COLLECTION", "usuarios"),
		ProjetoCollection:    getEnvOrDefault("MONGODB_PROJETO_COLLECTION", "projetos"),
		ZonaCollection:       getEnvOrDefault("MONGODB_ZONA_COLLECTION", "zonas_bairros"),

		ProfileCacheTTL: profileCacheTTL,
		CEPCacheTTL:     cepCacheTTL,
		ZoneCacheTTL:    zoneCacheTTL,
		SubmitLockTTL:   submitLockTTL,

		// Authentication
		AuthProvider:            authProvider,
		FirebaseProjectID:       getEnvOrDefault("FIREBASE_PROJECT_ID", ""),
		FirebaseCredentialsFile: getEnvOrDefault("FIREBASE_CREDENTIALS_FILE", ""),
		AdminRole:               getEnvOrDefault("ADMIN_ROLE", "admin"),

		// Registration drafts
		DraftTTL:            draftTTL,
		DraftJanitorPeriod:  draftJanitorPeriod,
		DraftStepValidation: getEnvBool("DRAFT_STEP_VALIDATION", false),

		// External services
		ViaCEPURL:      strings.TrimRight(getEnvOrDefault("VIACEP_URL", "https://viacep.com.br/ws"), "/"),
		EmailAPIURL:    getEnvOrDefault("EMAIL_API_URL", ""),
		EmailAPIToken:  getEnvOrDefault("EMAIL_API_TOKEN", ""),
		EmailFrom:      getEnvOrDefault("EMAIL_FROM", "fomento@prefeitura.rio"),
		EmailQueueSize: emailQueueSize,
		EmailWorkers:   emailWorkers,

		// Tracing
		TracingEnabled:  getEnvBool("TRACING_ENABLED", false),
		TracingEndpoint: getEnvOrDefault("TRACING_ENDPOINT", "localhost:4317"),
	}

	return cfg, nil
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvDuration parses a duration environment variable
func getEnvDuration(key, defaultValue string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnvOrDefault(key, defaultValue))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

// getEnvBool parses a boolean environment variable, falling back to the
// default when unset or malformed
func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(getEnvOrDefault(key, strconv.FormatBool(defaultValue)))
	if err != nil {
		return defaultValue
	}
	return value
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
