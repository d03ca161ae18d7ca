package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/palisadehq/palisade/pkg/observability"
	"github.com/palisadehq/palisade/pkg/ratelimit"
)

// Environment names understood by the pipeline
const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
	EnvTest        = "test"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Pipeline configuration
	Pipeline PipelineConfig

	// Redis configuration (rate limit counter store)
	Redis RedisConfig

	// Postgres configuration (tenant directory)
	Postgres PostgresConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Health/metrics server (separate port for probes and scrapes)
	HealthPort string
}

// PipelineConfig holds pipeline behavior settings
type PipelineConfig struct {
	// Environment is production, development, or test. Test is the single
	// flag that bypasses rate limiting.
	Environment string

	// APIPathPrefix scopes the CSRF guard; requests outside it are not
	// touched by token issuance or validation
	APIPathPrefix string

	// CSRFExemptPaths are exact paths skipped by CSRF validation
	CSRFExemptPaths []string

	// TrustedProxies are peer addresses (or CIDRs) whose forwarding
	// headers are honored for client IP derivation
	TrustedProxies []string

	// GlobalRateLimitPreset applies at the edge before dispatch
	GlobalRateLimitPreset string

	// RateLimitFailMode is "closed" (default) or "open"
	RateLimitFailMode string

	// PresetFile optionally overrides rate limit presets from YAML
	PresetFile string
}

// RedisConfig holds the counter store connection settings. Empty Addr
// selects the in-memory store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// PostgresConfig holds the tenant directory connection settings. Empty URL
// selects the in-memory directory.
type PostgresConfig struct {
	URL string
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel observability.LogLevel

	MetricsEnabled bool

	OTelEnabled        bool
	OTelEndpoint       string
	OTelServiceName    string
	OTelServiceVersion string
	OTelInsecure       bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server:        loadServerConfig(),
		Pipeline:      loadPipelineConfig(),
		Redis:         loadRedisConfig(),
		Postgres:      loadPostgresConfig(),
		Observability: loadObservabilityConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("PALISADE_HOST", "0.0.0.0"),
		Port:            getEnv("PALISADE_PORT", "8080"),
		ReadTimeout:     getEnvDuration("PALISADE_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("PALISADE_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getEnvDuration("PALISADE_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("PALISADE_SHUTDOWN_TIMEOUT", 30*time.Second),
		HealthPort:      getEnv("PALISADE_HEALTH_PORT", "9090"),
	}
}

func loadPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Environment:           getEnv("PALISADE_ENV", EnvDevelopment),
		APIPathPrefix:         getEnv("PALISADE_API_PREFIX", "/api"),
		CSRFExemptPaths:       getEnvList("PALISADE_CSRF_EXEMPT", "/api/auth/login"),
		TrustedProxies:        getEnvList("PALISADE_TRUSTED_PROXIES", ""),
		GlobalRateLimitPreset: getEnv("PALISADE_GLOBAL_RATELIMIT_PRESET", ratelimit.DefaultPreset),
		RateLimitFailMode:     getEnv("PALISADE_RATELIMIT_FAIL_MODE", "closed"),
		PresetFile:            getEnv("PALISADE_RATELIMIT_PRESET_FILE", ""),
	}
}

func loadRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:     getEnv("PALISADE_REDIS_ADDR", ""),
		Password: getEnv("PALISADE_REDIS_PASSWORD", ""),
		DB:       getEnvInt("PALISADE_REDIS_DB", 0),
	}
}

func loadPostgresConfig() PostgresConfig {
	return PostgresConfig{
		URL: getEnv("PALISADE_POSTGRES_URL", ""),
	}
}

func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:           observability.ParseLogLevel(strings.ToLower(getEnv("PALISADE_LOG_LEVEL", "info"))),
		MetricsEnabled:     getEnvBool("PALISADE_METRICS_ENABLED", true),
		OTelEnabled:        getEnvBool("PALISADE_OTEL_ENABLED", false),
		OTelEndpoint:       getEnv("PALISADE_OTEL_ENDPOINT", "localhost:4317"),
		OTelServiceName:    getEnv("PALISADE_OTEL_SERVICE_NAME", "palisade"),
		OTelServiceVersion: getEnv("PALISADE_OTEL_SERVICE_VERSION", "dev"),
		OTelInsecure:       getEnvBool("PALISADE_OTEL_INSECURE", true),
	}
}

// Validate checks configuration consistency
func (c *Config) Validate() error {
	switch c.Pipeline.Environment {
	case EnvProduction, EnvDevelopment, EnvTest:
	default:
		return fmt.Errorf("invalid environment: %s (must be production, development, or test)", c.Pipeline.Environment)
	}

	switch c.Pipeline.RateLimitFailMode {
	case "closed", "open":
	default:
		return fmt.Errorf("invalid rate limit fail mode: %s (must be closed or open)", c.Pipeline.RateLimitFailMode)
	}

	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
	}

	return nil
}

// IsProduction reports whether the deployment is flagged as production
func (c *Config) IsProduction() bool {
	return c.Pipeline.Environment == EnvProduction
}

// IsTest reports whether this is the test execution context. This is the
// one flag that bypasses rate limiting.
func (c *Config) IsTest() bool {
	return c.Pipeline.Environment == EnvTest
}

// FailMode maps the configured string to the limiter enum
func (c *Config) FailMode() ratelimit.FailMode {
	if c.Pipeline.RateLimitFailMode == "open" {
		return ratelimit.FailOpen
	}
	return ratelimit.FailClosed
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvList returns a comma-separated environment variable as a slice
func getEnvList(key, defaultValue string) []string {
	value := getEnv(key, defaultValue)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
