package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

// Helper to clear all config-related env vars
func clearEnv(t *testing.T) {
	t.Helper()
	envVars := []string{
		"LOOPZ_CONFIG_PATH",
		"LOOPZ_PORT",
		"LOOPZ_READ_TIMEOUT",
		"LOOPZ_WRITE_TIMEOUT",
		"LOOPZ_SHUTDOWN_TIMEOUT",
		"LOOPZ_DB_PATH",
		"LOOPZ_API_KEY",
		"LOOPZ_STREAK_CHECK_INTERVAL",
		"LOOPZ_LOG_LEVEL",
		"LOOPZ_LOG_FORMAT",
		"LOOPZ_TIMEZONE",
		"LOOPZ_BACKUP_PASSPHRASE",
		"LOOPZ_BACKUP_BUCKET",
		"LOOPZ_S3_ENDPOINT",
		"LOOPZ_S3_REGION",
		"LOOPZ_S3_PREFIX",
		"LOOPZ_S3_ACCESS_KEY",
		"LOOPZ_S3_SECRET_KEY",
		"LOOPZ_S3_USE_SSL",
		"LOOPZ_S3_URL_EXPIRY",
	}
	for _, v := range envVars {
		os.Unsetenv(v)
	}
}

// dur converts Duration to time.Duration for comparison
func dur(d Duration) time.Duration {
	return time.Duration(d)
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "loopz.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return path
}

// Test: Default values when no config file and no env vars
func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Server defaults
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if dur(cfg.Server.ReadTimeout) != 30*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want 30s", cfg.Server.ReadTimeout)
	}
	if dur(cfg.Server.ShutdownTimeout) != 15*time.Second {
		t.Errorf("Server.ShutdownTimeout = %v, want 15s", cfg.Server.ShutdownTimeout)
	}

	if cfg.Database.Path != "data/loopz.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "data/loopz.db")
	}
	if dur(cfg.Worker.StreakCheckInterval) != time.Hour {
		t.Errorf("Worker.StreakCheckInterval = %v, want 1h", cfg.Worker.StreakCheckInterval)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v, want info/json", cfg.Log)
	}
	if cfg.Calendar.Timezone != "Local" {
		t.Errorf("Calendar.Timezone = %q, want Local", cfg.Calendar.Timezone)
	}

	// Auth and backups are optional
	if cfg.Auth.APIKey != "" {
		t.Errorf("Auth.APIKey = %q, want empty", cfg.Auth.APIKey)
	}
	if cfg.Backup.Storage.Enabled() {
		t.Error("backup storage should be disabled by default")
	}
	if dur(cfg.Backup.Storage.URLExpiry) != 15*time.Minute {
		t.Errorf("Backup.Storage.URLExpiry = %v, want 15m", cfg.Backup.Storage.URLExpiry)
	}
}

// Test: Environment variables override defaults
func TestLoad_EnvVarOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOOPZ_PORT", "9090")
	t.Setenv("LOOPZ_DB_PATH", "/custom/path.db")
	t.Setenv("LOOPZ_LOG_LEVEL", "debug")
	t.Setenv("LOOPZ_STREAK_CHECK_INTERVAL", "10m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Database.Path != "/custom/path.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/custom/path.db")
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "debug")
	}
	if dur(cfg.Worker.StreakCheckInterval) != 10*time.Minute {
		t.Errorf("Worker.StreakCheckInterval = %v, want 10m", cfg.Worker.StreakCheckInterval)
	}
}

// Test: Empty env var does NOT override (only non-empty values override)
func TestLoad_EmptyEnvVarDoesNotOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOOPZ_PORT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080 (default)", cfg.Server.Port)
	}
}

// Test: Malformed env values are ignored
func TestLoad_MalformedEnvIgnored(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOOPZ_PORT", "eighty")
	t.Setenv("LOOPZ_STREAK_CHECK_INTERVAL", "hourly")
	t.Setenv("LOOPZ_S3_USE_SSL", "maybe")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8080 || dur(cfg.Worker.StreakCheckInterval) != time.Hour {
		t.Errorf("malformed env changed config: %+v", cfg)
	}
	if cfg.Backup.Storage.UseSSL != nil {
		t.Error("UseSSL set from malformed value")
	}
}

func TestLoadFromFile_ValidYAML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
server:
  port: 9999
  read_timeout: 60s
database:
  path: /yaml/path.db
log:
  level: warn
  format: text
worker:
  streak_check_interval: 5m
calendar:
  timezone: UTC
`)

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999", cfg.Server.Port)
	}
	if dur(cfg.Server.ReadTimeout) != 60*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want 60s", cfg.Server.ReadTimeout)
	}
	if cfg.Database.Path != "/yaml/path.db" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if cfg.Log.Level != "warn" || cfg.Log.Format != "text" {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if dur(cfg.Worker.StreakCheckInterval) != 5*time.Minute {
		t.Errorf("Worker.StreakCheckInterval = %v, want 5m", cfg.Worker.StreakCheckInterval)
	}
	loc, err := cfg.Calendar.Location()
	if err != nil || loc != time.UTC {
		t.Errorf("Calendar.Location() = %v, %v; want UTC", loc, err)
	}
}

// Test: Env vars override YAML values
func TestLoad_EnvOverridesYAML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
server:
  port: 9000
log:
  level: warn
`)
	t.Setenv("LOOPZ_CONFIG_PATH", path)
	t.Setenv("LOOPZ_PORT", "8888")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8888 {
		t.Errorf("Server.Port = %d, want 8888 (env override)", cfg.Server.Port)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want %q (from YAML)", cfg.Log.Level, "warn")
	}
}

func TestLoadFromFile_InvalidYAML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
server:
  port: not_a_number
  this is invalid yaml [
`)
	if _, err := LoadFromFile(path); err == nil {
		t.Error("LoadFromFile() expected error for invalid YAML, got nil")
	}
}

func TestLoadFromFile_InvalidDuration(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
worker:
  streak_check_interval: every hour
`)
	_, err := LoadFromFile(path)
	if err == nil || !strings.Contains(err.Error(), "invalid duration") {
		t.Errorf("LoadFromFile() error = %v, want invalid duration", err)
	}
}

// Test: Missing config file is NOT an error (uses defaults)
func TestLoad_MissingConfigFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOOPZ_CONFIG_PATH", filepath.Join(t.TempDir(), "nope.yaml"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Path != "data/loopz.db" {
		t.Errorf("Database.Path = %q, want default", cfg.Database.Path)
	}
}

func TestLoadFromFile_MissingFileIsError(t *testing.T) {
	clearEnv(t)
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("LoadFromFile() expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"port zero", func(c *Config) { c.Server.Port = 0 }, "port"},
		{"empty db path", func(c *Config) { c.Database.Path = "" }, "database path"},
		{"zero interval", func(c *Config) { c.Worker.StreakCheckInterval = 0 }, "streak_check_interval"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log format"},
		{"bad timezone", func(c *Config) { c.Calendar.Timezone = "Mars/Olympus" }, "timezone"},
		{"bucket without endpoint", func(c *Config) { c.Backup.Storage.Bucket = "b" }, "LOOPZ_S3_ENDPOINT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newDefaults()
			tt.mutate(cfg)
			err := cfg.validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("validate() = %v, want error containing %q", err, tt.want)
			}
		})
	}

	if err := newDefaults().validate(); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}
}

// Test: secrets are env-only and never serialized
func TestConfig_SecretsNotInYAML(t *testing.T) {
	cfg := newDefaults()
	cfg.Auth.APIKey = "secret-api-key"
	cfg.Backup.Passphrase = "correct horse"
	cfg.Backup.Storage.AccessKey = "AKIA"
	cfg.Backup.Storage.SecretKey = "s3-secret"

	out, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatalf("yaml.Marshal() error = %v", err)
	}
	for _, secret := range []string{"secret-api-key", "correct horse", "AKIA", "s3-secret"} {
		if strings.Contains(string(out), secret) {
			t.Errorf("marshalled config contains %q", secret)
		}
	}
}

func TestConfig_SecretsIgnoredInYAML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
auth:
  api_key: from-yaml
backup:
  passphrase: from-yaml
`)
	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if cfg.Auth.APIKey != "" || cfg.Backup.Passphrase != "" {
		t.Errorf("secrets read from YAML: %+v %+v", cfg.Auth, cfg.Backup)
	}
}

func TestConfig_BackupStorage_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOOPZ_API_KEY", "k")
	t.Setenv("LOOPZ_BACKUP_PASSPHRASE", "pw")
	t.Setenv("LOOPZ_BACKUP_BUCKET", "loopz-backups")
	t.Setenv("LOOPZ_S3_ENDPOINT", "localhost:9000")
	t.Setenv("LOOPZ_S3_REGION", "eu-west-1")
	t.Setenv("LOOPZ_S3_PREFIX", "me")
	t.Setenv("LOOPZ_S3_ACCESS_KEY", "access")
	t.Setenv("LOOPZ_S3_SECRET_KEY", "secret")
	t.Setenv("LOOPZ_S3_USE_SSL", "false")
	t.Setenv("LOOPZ_S3_URL_EXPIRY", "1h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	s := cfg.Backup.Storage
	if !s.Enabled() || s.Bucket != "loopz-backups" || s.Endpoint != "localhost:9000" {
		t.Errorf("storage = %+v", s)
	}
	if s.Region != "eu-west-1" || s.Prefix != "me" || s.AccessKey != "access" || s.SecretKey != "secret" {
		t.Errorf("storage = %+v", s)
	}
	if s.UseSSL == nil || *s.UseSSL {
		t.Errorf("UseSSL = %v, want false", s.UseSSL)
	}
	if dur(s.URLExpiry) != time.Hour {
		t.Errorf("URLExpiry = %v, want 1h", s.URLExpiry)
	}
	if cfg.Auth.APIKey != "k" || cfg.Backup.Passphrase != "pw" {
		t.Errorf("secrets not read from env")
	}
}

func TestConfig_BackupStorage_FromYAML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
backup:
  storage:
    endpoint: s3.example.com
    bucket: my-loopz
    use_ssl: true
    url_expiry: 30m
`)
	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	s := cfg.Backup.Storage
	if s.Endpoint != "s3.example.com" || s.Bucket != "my-loopz" {
		t.Errorf("storage = %+v", s)
	}
	if s.UseSSL == nil || !*s.UseSSL {
		t.Error("UseSSL should be true")
	}
	if dur(s.URLExpiry) != 30*time.Minute {
		t.Errorf("URLExpiry = %v, want 30m", s.URLExpiry)
	}
	if s.Region != "us-east-1" {
		t.Errorf("Region = %q, want default", s.Region)
	}
}
