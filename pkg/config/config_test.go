package config

import (
	"testing"
	"time"

	"github.com/palisadehq/palisade/pkg/ratelimit"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Pipeline.Environment != EnvDevelopment {
		t.Errorf("Environment = %q, want development", cfg.Pipeline.Environment)
	}
	if cfg.Pipeline.APIPathPrefix != "/api" {
		t.Errorf("APIPathPrefix = %q, want /api", cfg.Pipeline.APIPathPrefix)
	}
	if len(cfg.Pipeline.CSRFExemptPaths) != 1 || cfg.Pipeline.CSRFExemptPaths[0] != "/api/auth/login" {
		t.Errorf("CSRFExemptPaths = %v", cfg.Pipeline.CSRFExemptPaths)
	}
	if cfg.Pipeline.GlobalRateLimitPreset != ratelimit.DefaultPreset {
		t.Errorf("GlobalRateLimitPreset = %q", cfg.Pipeline.GlobalRateLimitPreset)
	}
	if cfg.FailMode() != ratelimit.FailClosed {
		t.Error("default fail mode should be closed")
	}
	if cfg.IsProduction() || cfg.IsTest() {
		t.Error("defaults are neither production nor test")
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("PALISADE_PORT", "9999")
	t.Setenv("PALISADE_ENV", "production")
	t.Setenv("PALISADE_RATELIMIT_FAIL_MODE", "open")
	t.Setenv("PALISADE_TRUSTED_PROXIES", "10.0.0.1, 10.0.0.0/8")
	t.Setenv("PALISADE_READ_TIMEOUT", "5s")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != "9999" {
		t.Errorf("Port = %q, want 9999", cfg.Server.Port)
	}
	if !cfg.IsProduction() {
		t.Error("expected production environment")
	}
	if cfg.FailMode() != ratelimit.FailOpen {
		t.Error("fail mode should be open")
	}
	if len(cfg.Pipeline.TrustedProxies) != 2 || cfg.Pipeline.TrustedProxies[1] != "10.0.0.0/8" {
		t.Errorf("TrustedProxies = %v", cfg.Pipeline.TrustedProxies)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("ReadTimeout = %v, want 5s", cfg.Server.ReadTimeout)
	}
}

func TestLoadConfig_TestEnvironment(t *testing.T) {
	t.Setenv("PALISADE_ENV", "test")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.IsTest() {
		t.Error("expected test environment")
	}
}

func TestValidate_RejectsBadValues(t *testing.T) {
	t.Run("bad environment", func(t *testing.T) {
		t.Setenv("PALISADE_ENV", "staging")
		if _, err := LoadConfig(); err == nil {
			t.Error("expected validation error for unknown environment")
		}
	})

	t.Run("bad fail mode", func(t *testing.T) {
		t.Setenv("PALISADE_RATELIMIT_FAIL_MODE", "maybe")
		if _, err := LoadConfig(); err == nil {
			t.Error("expected validation error for unknown fail mode")
		}
	})

	t.Run("otel without endpoint", func(t *testing.T) {
		t.Setenv("PALISADE_OTEL_ENABLED", "true")
		t.Setenv("PALISADE_OTEL_ENDPOINT", "")
		cfg := &Config{
			Pipeline:      PipelineConfig{Environment: EnvDevelopment, RateLimitFailMode: "closed"},
			Observability: ObservabilityConfig{OTelEnabled: true},
		}
		if err := cfg.Validate(); err == nil {
			t.Error("expected validation error for missing OTel endpoint")
		}
	})
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("PALISADE_METRICS_ENABLED", "false")
	t.Setenv("PALISADE_REDIS_DB", "3")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Observability.MetricsEnabled {
		t.Error("MetricsEnabled should parse false")
	}
	if cfg.Redis.DB != 3 {
		t.Errorf("Redis.DB = %d, want 3", cfg.Redis.DB)
	}
}
