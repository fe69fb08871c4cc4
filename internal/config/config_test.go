package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

var envVars = []string{
	"PROMETHEE_PORT", "PROMETHEE_METRICS_PORT", "PROMETHEE_ADMIN_TOKEN", "PROMETHEE_RATE_LIMIT",
	"PROMETHEE_DATABASE_URL", "PROMETHEE_HERMES_URL", "PROMETHEE_WORKERS", "PROMETHEE_TOLERANCE",
	"PROMETHEE_TICK_INTERVAL_MS", "PROMETHEE_STALE_RUN_TIMEOUT_MS", "PROMETHEE_LOG_LEVEL",
	"PROMETHEE_LOG_FORMAT", "PROMETHEE_CORS_ORIGINS",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envVars {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8700 {
		t.Errorf("expected port 8700, got %d", cfg.Server.Port)
	}
	if cfg.Server.MetricsPort != 8701 {
		t.Errorf("expected metrics port 8701, got %d", cfg.Server.MetricsPort)
	}
	if cfg.Server.RateLimit != 120 {
		t.Errorf("expected rate limit 120, got %d", cfg.Server.RateLimit)
	}
	if cfg.Database.URL != "" {
		t.Errorf("expected empty database URL, got %s", cfg.Database.URL)
	}
	if cfg.Hermes.URL != "nats://localhost:4222" {
		t.Errorf("expected nats URL, got %s", cfg.Hermes.URL)
	}
	if cfg.Engine.Workers != 0 {
		t.Errorf("expected workers 0 (GOMAXPROCS), got %d", cfg.Engine.Workers)
	}
	if cfg.Engine.Tolerance != 1e-9 {
		t.Errorf("expected tolerance 1e-9, got %g", cfg.Engine.Tolerance)
	}
	if cfg.Engine.BatchSize != 10 {
		t.Errorf("expected batch size 10, got %d", cfg.Engine.BatchSize)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got '%s'", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("expected log format 'json', got '%s'", cfg.Logging.Format)
	}

	if cfg.TickInterval() != 2*time.Second {
		t.Errorf("expected TickInterval 2s, got %v", cfg.TickInterval())
	}
	if cfg.StaleRunTimeout() != 5*time.Minute {
		t.Errorf("expected StaleRunTimeout 5m, got %v", cfg.StaleRunTimeout())
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PROMETHEE_PORT", "9000")
	t.Setenv("PROMETHEE_METRICS_PORT", "9001")
	t.Setenv("PROMETHEE_ADMIN_TOKEN", "secret-token")
	t.Setenv("PROMETHEE_RATE_LIMIT", "30")
	t.Setenv("PROMETHEE_DATABASE_URL", "postgres://localhost/promethee_test")
	t.Setenv("PROMETHEE_HERMES_URL", "nats://nats:4222")
	t.Setenv("PROMETHEE_WORKERS", "4")
	t.Setenv("PROMETHEE_TOLERANCE", "0.001")
	t.Setenv("PROMETHEE_TICK_INTERVAL_MS", "500")
	t.Setenv("PROMETHEE_STALE_RUN_TIMEOUT_MS", "60000")
	t.Setenv("PROMETHEE_LOG_LEVEL", "debug")
	t.Setenv("PROMETHEE_LOG_FORMAT", "text")
	t.Setenv("PROMETHEE_CORS_ORIGINS", "http://localhost:3000, https://ops.example.com,")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	if cfg.Server.MetricsPort != 9001 {
		t.Errorf("expected metrics port 9001, got %d", cfg.Server.MetricsPort)
	}
	if cfg.Server.AdminToken != "secret-token" {
		t.Errorf("expected admin token 'secret-token', got '%s'", cfg.Server.AdminToken)
	}
	if cfg.Server.RateLimit != 30 {
		t.Errorf("expected rate limit 30, got %d", cfg.Server.RateLimit)
	}
	if cfg.Database.URL != "postgres://localhost/promethee_test" {
		t.Errorf("expected database URL, got '%s'", cfg.Database.URL)
	}
	if cfg.Hermes.URL != "nats://nats:4222" {
		t.Errorf("expected hermes URL, got '%s'", cfg.Hermes.URL)
	}
	if cfg.Engine.Workers != 4 {
		t.Errorf("expected workers 4, got %d", cfg.Engine.Workers)
	}
	if cfg.Engine.Tolerance != 0.001 {
		t.Errorf("expected tolerance 0.001, got %g", cfg.Engine.Tolerance)
	}
	if cfg.TickInterval() != 500*time.Millisecond {
		t.Errorf("expected tick 500ms, got %v", cfg.TickInterval())
	}
	if cfg.StaleRunTimeout() != time.Minute {
		t.Errorf("expected stale timeout 1m, got %v", cfg.StaleRunTimeout())
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got '%s'", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("expected log format 'text', got '%s'", cfg.Logging.Format)
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "https://ops.example.com" {
		t.Errorf("expected two CORS origins, got %v", cfg.Server.CORSOrigins)
	}
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "promethee.yaml")
	data := []byte(`
server:
  port: 7000
engine:
  workers: 2
  stale_run_timeout_ms: 1000
logging:
  format: text
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 7000 {
		t.Errorf("expected port 7000, got %d", cfg.Server.Port)
	}
	if cfg.Server.MetricsPort != 8701 {
		t.Errorf("expected default metrics port to survive, got %d", cfg.Server.MetricsPort)
	}
	if cfg.Engine.Workers != 2 {
		t.Errorf("expected workers 2, got %d", cfg.Engine.Workers)
	}
	if cfg.StaleRunTimeout() != time.Second {
		t.Errorf("expected stale timeout 1s, got %v", cfg.StaleRunTimeout())
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("expected text format, got %s", cfg.Logging.Format)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
