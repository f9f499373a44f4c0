package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.MaxUploadBytes != 5<<20 {
		t.Errorf("MaxUploadBytes = %d", cfg.MaxUploadBytes)
	}
	if cfg.GeminiModel != "gemini-2.0-flash" {
		t.Errorf("GeminiModel = %q", cfg.GeminiModel)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("MAX_UPLOAD_BYTES", "1048576")
	t.Setenv("GENERATE_TIMEOUT", "90s")
	t.Setenv("HEALTH_DEGRADE_RATIO", "0.5")

	cfg := Load()
	if cfg.Port != "9000" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.MaxUploadBytes != 1<<20 {
		t.Errorf("MaxUploadBytes = %d", cfg.MaxUploadBytes)
	}
	if cfg.GenerateTimeout != 90*time.Second {
		t.Errorf("GenerateTimeout = %v", cfg.GenerateTimeout)
	}
	if cfg.HealthDegradeRatio != 0.5 {
		t.Errorf("HealthDegradeRatio = %v", cfg.HealthDegradeRatio)
	}
}

func TestBadEnvFallsBackToDefaults(t *testing.T) {
	t.Setenv("MAX_UPLOAD_BYTES", "not-a-number")
	t.Setenv("READ_TIMEOUT", "-5s")
	t.Setenv("RATE_LIMIT_BURST", "0")

	cfg := Load()
	if cfg.MaxUploadBytes != 5<<20 {
		t.Errorf("MaxUploadBytes = %d, want default", cfg.MaxUploadBytes)
	}
	if cfg.ReadTimeout != 30*time.Second {
		t.Errorf("ReadTimeout = %v, want default", cfg.ReadTimeout)
	}
	if cfg.RateLimitBurst != 20 {
		t.Errorf("RateLimitBurst = %d, want default", cfg.RateLimitBurst)
	}
}
