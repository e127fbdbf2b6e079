package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	// Create a temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test.yaml")

	configContent := `
catalog:
  driver: mysql
  host: localhost
  port: 3307
  user: reader
  password: secret
  database: apicatalog
  tls: disable
  max_connections: 8
  tables:
    apis: catalog_apis
  name_cache_size: 128

usage:
  path: /data/NuGet.apiu
  compression: zstd

diff:
  before: ".NET Core/2.2/Platform Extensions"
  after: ".NET Core/3.0"

report:
  output: out.csv
  crlf: true
  open: true
  verify: sha256

progress:
  mode: never
  interval: 1s

logging:
  level: debug
  format: json
  output: stdout
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Catalog.Host != "localhost" {
		t.Errorf("expected catalog host 'localhost', got %s", cfg.Catalog.Host)
	}
	if cfg.Catalog.Port != 3307 {
		t.Errorf("expected catalog port 3307, got %d", cfg.Catalog.Port)
	}
	if cfg.Catalog.MaxConnections != 8 {
		t.Errorf("expected max_connections 8, got %d", cfg.Catalog.MaxConnections)
	}
	if cfg.Catalog.Tables.APIs != "catalog_apis" {
		t.Errorf("expected apis table 'catalog_apis', got %s", cfg.Catalog.Tables.APIs)
	}
	// Unset table names keep their defaults
	if cfg.Catalog.Tables.Containment != "api_assembly_groups" {
		t.Errorf("expected default containment table, got %s", cfg.Catalog.Tables.Containment)
	}
	if cfg.Catalog.NameCacheSize != 128 {
		t.Errorf("expected name_cache_size 128, got %d", cfg.Catalog.NameCacheSize)
	}

	if cfg.Usage.Path != "/data/NuGet.apiu" {
		t.Errorf("expected usage path '/data/NuGet.apiu', got %s", cfg.Usage.Path)
	}
	if cfg.Usage.Compression != "zstd" {
		t.Errorf("expected compression 'zstd', got %s", cfg.Usage.Compression)
	}

	if cfg.Diff.Before != ".NET Core/2.2/Platform Extensions" {
		t.Errorf("unexpected diff.before %q", cfg.Diff.Before)
	}
	if cfg.Diff.After != ".NET Core/3.0" {
		t.Errorf("unexpected diff.after %q", cfg.Diff.After)
	}

	if !cfg.Report.CRLF || !cfg.Report.Open {
		t.Error("expected report.crlf and report.open to be true")
	}
	if cfg.Report.Verify != "sha256" {
		t.Errorf("expected verify 'sha256', got %s", cfg.Report.Verify)
	}

	if cfg.Progress.Mode != "never" {
		t.Errorf("expected progress mode 'never', got %s", cfg.Progress.Mode)
	}
	if cfg.Progress.Interval != time.Second {
		t.Errorf("expected progress interval 1s, got %s", cfg.Progress.Interval)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected logging level 'debug', got %s", cfg.Logging.Level)
	}
}

func TestLoadPostgresDefaultPort(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "pg.yaml")

	configContent := `
catalog:
  driver: postgres
  host: pg-host
  user: reader
  database: apicatalog
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Catalog.Port != 5432 {
		t.Errorf("expected postgres default port 5432, got %d", cfg.Catalog.Port)
	}
}

func TestLoadWithEnvVars(t *testing.T) {
	t.Setenv("TEST_CATALOG_HOST", "env-host")
	t.Setenv("TEST_CATALOG_USER", "env-user")
	t.Setenv("TEST_CATALOG_PASS", "env-pass")
	t.Setenv("TEST_USAGE_DIR", "/mnt/usage")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-env.yaml")

	configContent := `
catalog:
  host: ${TEST_CATALOG_HOST}
  port: 3306
  user: ${TEST_CATALOG_USER}
  password: ${TEST_CATALOG_PASS}
  database: apicatalog
usage:
  path: $TEST_USAGE_DIR/NuGet.apiu
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Catalog.Host != "env-host" {
		t.Errorf("expected catalog host 'env-host', got %s", cfg.Catalog.Host)
	}
	if cfg.Catalog.User != "env-user" {
		t.Errorf("expected catalog user 'env-user', got %s", cfg.Catalog.User)
	}
	if cfg.Catalog.Password != "env-pass" {
		t.Errorf("expected catalog password 'env-pass', got %s", cfg.Catalog.Password)
	}
	if cfg.Usage.Path != "/mnt/usage/NuGet.apiu" {
		t.Errorf("expected usage path '/mnt/usage/NuGet.apiu', got %s", cfg.Usage.Path)
	}
}

func TestLoadWithDotEnv(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "dotenv.yaml")

	// Make sure the variable is not inherited from the test environment
	t.Setenv("BC_DOTENV_PASSWORD", "")
	os.Unsetenv("BC_DOTENV_PASSWORD")

	if err := os.WriteFile(filepath.Join(tmpDir, ".env"), []byte("BC_DOTENV_PASSWORD=from-dotenv\n"), 0644); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}
	configContent := `
catalog:
  host: localhost
  user: reader
  password: ${BC_DOTENV_PASSWORD}
  database: apicatalog
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Catalog.Password != "from-dotenv" {
		t.Errorf("expected password from .env, got %q", cfg.Catalog.Password)
	}
}

func TestExpandEnvVar(t *testing.T) {
	t.Setenv("TEST_VAR", "test-value")

	tests := []struct {
		input    string
		expected string
	}{
		{"${TEST_VAR}", "test-value"},
		{"$TEST_VAR", "test-value"},
		{"prefix-${TEST_VAR}-suffix", "prefix-test-value-suffix"},
		{"${NONEXISTENT}", "${NONEXISTENT}"}, // Unset vars remain unchanged
		{"no-vars-here", "no-vars-here"},
	}

	for _, tt := range tests {
		result := expandEnvVar(tt.input)
		if result != tt.expected {
			t.Errorf("expandEnvVar(%q) = %q, expected %q", tt.input, result, tt.expected)
		}
	}
}

func TestLoadNonExistentFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error for non-existent file")
	}
}

func TestApplyOverrides(t *testing.T) {
	cfg := DefaultConfig()

	cfg.ApplyOverrides(Overrides{
		LogLevel:   "debug",
		LogFormat:  "json",
		Before:     "P1",
		After:      "P2",
		UsagePath:  "usage.apiu",
		Output:     "report.csv",
		Open:       true,
		NoProgress: true,
	})

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug' after override, got %s", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("expected log format 'json' after override, got %s", cfg.Logging.Format)
	}
	if cfg.Diff.Before != "P1" || cfg.Diff.After != "P2" {
		t.Errorf("expected diff P1 -> P2 after override, got %s -> %s", cfg.Diff.Before, cfg.Diff.After)
	}
	if cfg.Usage.Path != "usage.apiu" {
		t.Errorf("expected usage path override, got %s", cfg.Usage.Path)
	}
	if cfg.Report.Output != "report.csv" {
		t.Errorf("expected output override, got %s", cfg.Report.Output)
	}
	if !cfg.Report.Open {
		t.Error("expected report.open to be true after override")
	}
	if cfg.Progress.Mode != "never" {
		t.Errorf("expected progress mode 'never' after override, got %s", cfg.Progress.Mode)
	}
}

func TestApplyOverridesZeroValues(t *testing.T) {
	cfg := &Config{
		Diff:     DiffConfig{Before: "A", After: "B"},
		Report:   ReportConfig{Output: "keep.csv", Open: true},
		Progress: ProgressConfig{Mode: "always"},
		Logging:  LoggingConfig{Level: "warn", Format: "json"},
	}

	// Zero values should NOT override
	cfg.ApplyOverrides(Overrides{})

	if cfg.Logging.Level != "warn" {
		t.Errorf("expected log level 'warn' to be preserved, got %s", cfg.Logging.Level)
	}
	if cfg.Diff.Before != "A" || cfg.Diff.After != "B" {
		t.Errorf("expected diff to be preserved, got %s -> %s", cfg.Diff.Before, cfg.Diff.After)
	}
	if cfg.Report.Output != "keep.csv" || !cfg.Report.Open {
		t.Error("expected report settings to be preserved")
	}
	if cfg.Progress.Mode != "always" {
		t.Errorf("expected progress mode 'always' to be preserved, got %s", cfg.Progress.Mode)
	}
}
