package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Analysis.ParallelStages {
		t.Error("parallel_stages should default to false")
	}
	if cfg.Fetch.CacheTTL != 300 {
		t.Errorf("cache_ttl: got %d, want 300", cfg.Fetch.CacheTTL)
	}
	if cfg.Fetch.NewsLimit != 20 {
		t.Errorf("news_limit: got %d, want 20", cfg.Fetch.NewsLimit)
	}
	if cfg.API.Host != "0.0.0.0" {
		t.Errorf("api host: got %q", cfg.API.Host)
	}
	if cfg.API.Port != 8080 {
		t.Errorf("api port: got %d, want 8080", cfg.API.Port)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("log level: got %q, want info", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "console" {
		t.Errorf("log format: got %q, want console", cfg.Logging.Format)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
analysis:
  parallel_stages: true
fetch:
  cache_ttl: 60
api:
  port: 9090
  cors_origins:
    - "https://example.com"
logging:
  level: debug
  format: json
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}

	if !cfg.Analysis.ParallelStages {
		t.Error("parallel_stages not applied from file")
	}
	if cfg.Fetch.CacheTTL != 60 {
		t.Errorf("cache_ttl: got %d, want 60", cfg.Fetch.CacheTTL)
	}
	// Unset keys keep their defaults.
	if cfg.Fetch.NewsLimit != 20 {
		t.Errorf("news_limit default: got %d, want 20", cfg.Fetch.NewsLimit)
	}
	if cfg.API.Port != 9090 {
		t.Errorf("api port: got %d, want 9090", cfg.API.Port)
	}
	if len(cfg.API.CORSOrigins) != 1 || cfg.API.CORSOrigins[0] != "https://example.com" {
		t.Errorf("cors origins: got %v", cfg.API.CORSOrigins)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("logging: got %q/%q", cfg.Logging.Level, cfg.Logging.Format)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("EQUISAGE_API_PORT", "7070")
	t.Setenv("EQUISAGE_LOGGING_LEVEL", "warn")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.API.Port != 7070 {
		t.Errorf("env port override: got %d, want 7070", cfg.API.Port)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("env level override: got %q, want warn", cfg.Logging.Level)
	}
}
