package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// PlaceholderAPIKey is the sample value shipped in env templates
const PlaceholderAPIKey = "your_openrouter_api_key_here"

// DefaultModels is the stock fallback chain in priority order
var DefaultModels = []string{
	"openai/gpt-4o-mini",
	"anthropic/claude-3-haiku",
	"google/gemini-pro",
	"meta-llama/llama-3-8b-instruct",
}

// Config represents the complete application configuration
type Config struct {
	Server        ServerConfig
	AI            AIConfig
	Audit         AuditConfig
	RateLimit     RateLimitConfig
	Observability ObservabilityConfig
	Environment   string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

// AIConfig holds the provider chain and orchestration tunables
type AIConfig struct {
	// Models in priority order, primary first
	Models []string

	APIKey   string
	BaseURL  string
	AppURL   string
	AppTitle string

	// Timeout bounds a single provider call
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
	MaxRetries  int
	BackoffBase time.Duration

	// ProvidersFile is an optional YAML chain file that overrides the env chain
	ProvidersFile string

	// RedactSecrets masks credentials found in submitted code
	RedactSecrets bool
}

// CredentialPresent reports whether the API key is usable
func (c *AIConfig) CredentialPresent() bool {
	key := strings.TrimSpace(c.APIKey)
	return key != "" && key != PlaceholderAPIKey
}

// AuditConfig holds the execution audit trail configuration
type AuditConfig struct {
	Enabled    bool
	Workers    int
	BufferSize int

	// Database is nil when no DATABASE_URL or DB_HOST is set; an in-memory store is used instead
	Database *DatabaseConfig
}

// DatabaseConfig holds PostgreSQL database configuration.
// When ConnectionString (from DATABASE_URL) is set, it takes precedence over individual fields.
type DatabaseConfig struct {
	ConnectionString string // From DATABASE_URL when set
	Host             string
	Port             int
	User             string
	Password         string
	Database         string
	SSLMode          string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
}

// RateLimitConfig holds per-client request limits
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	Burst             int
	IdleTTL           time.Duration
}

// ObservabilityConfig holds monitoring and logging configuration
type ObservabilityConfig struct {
	LogLevel         string
	LogFormat        string // json or console
	MetricsEnabled   bool
	MetricsNamespace string
}

// New creates a new Config instance by loading environment variables
func New(ctx context.Context) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getPort(),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 5*time.Minute),
			RequestTimeout:  getEnvAsDuration("SERVER_REQUEST_TIMEOUT", 4*time.Minute),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			AllowedOrigins:  getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		AI: AIConfig{
			Models:        loadModels(),
			APIKey:        getEnv("OPENROUTER_API_KEY", getEnv("NEXT_PUBLIC_OPENROUTER_API_KEY", "")),
			BaseURL:       getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
			AppURL:        getEnv("NEXT_PUBLIC_APP_URL", "https://coderipper.vercel.app"),
			AppTitle:      getEnv("AI_APP_TITLE", "CodeRipper AI Editor"),
			Timeout:       getEnvAsMillis("AI_TIMEOUT_MS", 30*time.Second),
			MaxTokens:     getEnvAsInt("AI_MAX_TOKENS", 2000),
			Temperature:   getEnvAsFloat("AI_TEMPERATURE", 0.7),
			MaxRetries:    getEnvAsInt("AI_MAX_RETRIES", 3),
			BackoffBase:   getEnvAsMillis("AI_BACKOFF_BASE_MS", 500*time.Millisecond),
			ProvidersFile: getEnv("AI_PROVIDERS_FILE", ""),
			RedactSecrets: getEnvAsBool("AI_REDACT_SECRETS", false),
		},
		Audit: AuditConfig{
			Enabled:    getEnvAsBool("AUDIT_ENABLED", true),
			Workers:    getEnvAsInt("AUDIT_WORKERS", 2),
			BufferSize: getEnvAsInt("AUDIT_BUFFER_SIZE", 256),
			Database:   loadDatabaseConfig(),
		},
		RateLimit: RateLimitConfig{
			Enabled:           getEnvAsBool("RATE_LIMIT_ENABLED", true),
			RequestsPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 60),
			Burst:             getEnvAsInt("RATE_LIMIT_BURST", 10),
			IdleTTL:           getEnvAsDuration("RATE_LIMIT_IDLE_TTL", 10*time.Minute),
		},
		Observability: ObservabilityConfig{
			LogLevel:         getEnv("LOG_LEVEL", "info"),
			LogFormat:        getEnv("LOG_FORMAT", "json"),
			MetricsEnabled:   getEnvAsBool("METRICS_ENABLED", true),
			MetricsNamespace: getEnv("METRICS_NAMESPACE", "coderipper"),
		},
	}

	if cfg.AI.ProvidersFile != "" {
		chain, err := LoadChainFile(cfg.AI.ProvidersFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load providers file: %w", err)
		}
		chain.Apply(&cfg.AI)
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if all required configuration fields are set
func (c *Config) Validate() error {
	if len(c.AI.Models) == 0 {
		return fmt.Errorf("at least one AI model must be configured")
	}
	seen := make(map[string]struct{}, len(c.AI.Models))
	for _, m := range c.AI.Models {
		if strings.TrimSpace(m) == "" {
			return fmt.Errorf("AI model ids cannot be blank")
		}
		if _, dup := seen[m]; dup {
			return fmt.Errorf("AI model %s is configured more than once", m)
		}
		seen[m] = struct{}{}
	}
	if c.AI.Timeout <= 0 {
		return fmt.Errorf("AI timeout must be positive")
	}
	if c.AI.MaxTokens <= 0 {
		return fmt.Errorf("AI max tokens must be positive")
	}
	if c.AI.Temperature < 0 || c.AI.Temperature > 2 {
		return fmt.Errorf("AI temperature must be between 0 and 2")
	}
	if c.AI.MaxRetries < 0 {
		return fmt.Errorf("AI max retries cannot be negative")
	}
	if c.AI.BackoffBase < 0 {
		return fmt.Errorf("AI backoff base cannot be negative")
	}
	if _, err := url.ParseRequestURI(c.AI.BaseURL); err != nil {
		return fmt.Errorf("invalid AI base URL: %w", err)
	}

	// Degraded responses are acceptable in development only
	if c.IsProduction() && !c.AI.CredentialPresent() {
		return fmt.Errorf("OPENROUTER_API_KEY is required in production")
	}

	if c.RateLimit.Enabled && c.RateLimit.RequestsPerMinute <= 0 {
		return fmt.Errorf("rate limit must be positive when enabled")
	}

	if c.Audit.Enabled && (c.Audit.Workers <= 0 || c.Audit.BufferSize <= 0) {
		return fmt.Errorf("audit workers and buffer size must be positive")
	}

	// Observability validation
	if c.Observability.LogLevel == "" {
		return fmt.Errorf("log level is required")
	}

	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// DSN returns the PostgreSQL connection string.
// Uses ConnectionString (from DATABASE_URL) when set; otherwise builds from individual fields.
func (c *DatabaseConfig) DSN() string {
	if c.ConnectionString != "" {
		return c.ConnectionString
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// LogString returns a safe string for logging (no password). Parses ConnectionString when set.
func (c *DatabaseConfig) LogString() string {
	if c.ConnectionString != "" {
		u, err := url.Parse(c.ConnectionString)
		if err == nil {
			host := u.Hostname()
			port := u.Port()
			if port == "" {
				port = "5432"
			}
			db := strings.TrimPrefix(u.Path, "/")
			return fmt.Sprintf("host=%s port=%s database=%s", host, port, db)
		}
		return "host=<from DATABASE_URL>"
	}
	return fmt.Sprintf("host=%s port=%d database=%s", c.Host, c.Port, c.Database)
}

// Address returns the HTTP server address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// loadModels reads AI_MODEL_PRIMARY and AI_MODEL_FALLBACK_1..3.
// A model repeated by an override is kept at its first position only.
func loadModels() []string {
	keys := []string{"AI_MODEL_PRIMARY", "AI_MODEL_FALLBACK_1", "AI_MODEL_FALLBACK_2", "AI_MODEL_FALLBACK_3"}

	models := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for i, key := range keys {
		id := strings.TrimSpace(getEnv(key, DefaultModels[i]))
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		models = append(models, id)
	}
	return models
}

// loadDatabaseConfig loads database config from DATABASE_URL or DB_* env vars.
// Returns nil when neither is set.
func loadDatabaseConfig() *DatabaseConfig {
	if dbURL := getEnv("DATABASE_URL", ""); dbURL != "" {
		return &DatabaseConfig{
			ConnectionString: dbURL,
			MaxOpenConns:     getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:     getEnvAsInt("DB_MAX_IDLE_CONNS", 2),
			ConnMaxLifetime:  getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		}
	}
	if getEnv("DB_HOST", "") == "" {
		return nil
	}
	return &DatabaseConfig{
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            getEnvAsInt("DB_PORT", 5432),
		User:            getEnv("DB_USER", "coderipper"),
		Password:        getEnv("DB_PASSWORD", ""),
		Database:        getEnv("DB_NAME", "coderipper"),
		SSLMode:         getEnv("DB_SSLMODE", "disable"),
		MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 2),
		ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
	}
}

// Helper functions

// getPort returns the server port from PORT or SERVER_PORT env vars (default: 8080)
func getPort() int {
	if value := os.Getenv("PORT"); value != "" {
		if p, err := strconv.Atoi(value); err == nil {
			return p
		}
	}
	if value := os.Getenv("SERVER_PORT"); value != "" {
		if p, err := strconv.Atoi(value); err == nil {
			return p
		}
	}
	return 8080
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsMillis reads an integer number of milliseconds
func getEnvAsMillis(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return millis(value)
}

func millis(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
