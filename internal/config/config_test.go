package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if errWrite := os.WriteFile(path, []byte(content), 0o600); errWrite != nil {
		t.Fatalf("write config: %v", errWrite)
	}
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
port: 9100
database-dsn: file:test.db
jwt:
  secret: file-secret
  expiry: 2h
auth:
  allow-legacy-token-transport: true
otp:
  dev-mode: true
`)
	cfg, errLoad := Load(path)
	if errLoad != nil {
		t.Fatalf("load: %v", errLoad)
	}
	if cfg.Port != 9100 {
		t.Fatalf("port = %d, want 9100", cfg.Port)
	}
	if cfg.DSN() != "file:test.db" {
		t.Fatalf("dsn = %q", cfg.DSN())
	}
	if cfg.JWT.Secret != "file-secret" || cfg.JWT.Expiry != 2*time.Hour {
		t.Fatalf("jwt = %+v", cfg.JWT)
	}
	if !cfg.Auth.AllowLegacyTokenTransport {
		t.Fatalf("expected legacy transport enabled")
	}
	if !cfg.OTP.DevMode {
		t.Fatalf("expected otp dev mode")
	}
}

func TestLoadNestedDatabaseDSN(t *testing.T) {
	path := writeConfig(t, `
database:
  dsn: file:nested.db
jwt:
  secret: s
`)
	cfg, errLoad := Load(path)
	if errLoad != nil {
		t.Fatalf("load: %v", errLoad)
	}
	if cfg.DSN() != "file:nested.db" {
		t.Fatalf("dsn = %q", cfg.DSN())
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
database-dsn: file:file.db
jwt:
  secret: file-secret
  expiry: 2h
`)
	t.Setenv(EnvDBConnection, "file:env.db")
	t.Setenv(EnvJWTSecret, "env-secret")
	t.Setenv(EnvJWTExpiry, "30m")
	t.Setenv(EnvPort, "9200")
	t.Setenv(EnvOTPDevMode, "true")

	cfg, errLoad := Load(path)
	if errLoad != nil {
		t.Fatalf("load: %v", errLoad)
	}
	if cfg.DSN() != "file:env.db" {
		t.Fatalf("dsn = %q, want env override", cfg.DSN())
	}
	if cfg.JWT.Secret != "env-secret" {
		t.Fatalf("secret = %q, want env override", cfg.JWT.Secret)
	}
	if cfg.JWT.Expiry != 30*time.Minute {
		t.Fatalf("expiry = %s, want 30m", cfg.JWT.Expiry)
	}
	if cfg.Port != 9200 {
		t.Fatalf("port = %d, want 9200", cfg.Port)
	}
	if !cfg.OTP.DevMode {
		t.Fatalf("expected otp dev mode from env")
	}
}

func TestLoadMissingFileEnvOnly(t *testing.T) {
	t.Setenv(EnvDBConnection, "file:env-only.db")
	t.Setenv(EnvJWTSecret, "env-secret")

	cfg, errLoad := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if errLoad != nil {
		t.Fatalf("load: %v", errLoad)
	}
	if cfg.DSN() != "file:env-only.db" {
		t.Fatalf("dsn = %q", cfg.DSN())
	}
	if cfg.JWT.Expiry <= 0 {
		t.Fatalf("expected default expiry")
	}
}

func TestLoadMissingDSN(t *testing.T) {
	path := writeConfig(t, "jwt:\n  secret: s\n")
	if _, errLoad := Load(path); !errors.Is(errLoad, ErrMissingDatabaseDSN) {
		t.Fatalf("err = %v, want ErrMissingDatabaseDSN", errLoad)
	}
}

func TestLoadMissingSecret(t *testing.T) {
	path := writeConfig(t, "database-dsn: file:x.db\n")
	if _, errLoad := Load(path); !errors.Is(errLoad, ErrMissingJWTSecret) {
		t.Fatalf("err = %v, want ErrMissingJWTSecret", errLoad)
	}
}

func TestResolveConfigPathDefault(t *testing.T) {
	resolved := ResolveConfigPath("")
	if resolved == "" {
		t.Fatalf("expected non-empty default path")
	}
	if !filepath.IsAbs(resolved) {
		t.Fatalf("expected absolute path, got %q", resolved)
	}
}
