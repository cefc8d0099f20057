package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadUsesDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("NATS_SUBJECT", "")
	t.Setenv("PIPELINE_STAGE_TIMEOUT_SECONDS", "")
	t.Setenv("STORAGE_BACKEND", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.NATSSubject != "documents.process" {
		t.Fatalf("expected default subject documents.process, got %q", cfg.NATSSubject)
	}
	if cfg.StageTimeoutSeconds != 120 {
		t.Fatalf("expected default stage timeout 120, got %d", cfg.StageTimeoutSeconds)
	}
	if cfg.StorageBackend != "localfs" {
		t.Fatalf("expected default storage backend localfs, got %q", cfg.StorageBackend)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("PIPELINE_STAGE_TIMEOUT_SECONDS", "30")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("MINIO_USE_SSL", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.StageTimeoutSeconds != 30 {
		t.Fatalf("expected stage timeout 30, got %d", cfg.StageTimeoutSeconds)
	}
	if cfg.RateLimitRPS != 2.5 {
		t.Fatalf("expected rate limit 2.5, got %f", cfg.RateLimitRPS)
	}
	if !cfg.MinioUseSSL {
		t.Fatalf("expected minio ssl enabled")
	}
}

func TestLoadAppliesFileOverlayWithEnvPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("api_port: \"9999\"\nlog_level: debug\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("API_PORT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIPort != "9999" {
		t.Fatalf("expected file value 9999, got %q", cfg.APIPort)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("expected env to win over file, got %q", cfg.LogLevel)
	}
}
