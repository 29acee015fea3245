package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		Telegram: TelegramConfig{Token: "123:abc"},
		Session:  SessionConfig{Backend: "redis"},
		Redis:    RedisConfig{URL: "redis://localhost:6379/0"},
		Moltin: MoltinConfig{
			ClientID:     "client",
			ClientSecret: "secret",
		},
	}
}

func TestNormalizeDefaults(t *testing.T) {
	cfg := validConfig()
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Fatalf("run mode default = %s", cfg.Telegram.RunMode)
	}
	if cfg.Moltin.BaseURL != "https://api.moltin.com" {
		t.Fatalf("moltin base url default = %s", cfg.Moltin.BaseURL)
	}
	if cfg.Moltin.RefreshMarginSeconds != 100 {
		t.Fatalf("refresh margin default = %d", cfg.Moltin.RefreshMarginSeconds)
	}
}

func TestNormalizeMissingToken(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.Token = ""
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected error for missing telegram token")
	}
}

func TestNormalizeMissingMoltinCredentials(t *testing.T) {
	cfg := validConfig()
	cfg.Moltin.ClientSecret = ""
	err := Normalize(cfg)
	if err == nil || !strings.Contains(err.Error(), "moltin.client_id") {
		t.Fatalf("expected moltin credentials error, got %v", err)
	}
}

func TestNormalizeSessionBackends(t *testing.T) {
	cfg := validConfig()
	cfg.Session.Backend = "redis"
	cfg.Redis.URL = ""
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected error for redis backend without url")
	}

	cfg = validConfig()
	cfg.Session.Backend = "postgres"
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected error for postgres backend without database settings")
	}
	cfg.Database = DatabaseConfig{Host: "localhost", Port: "5432", Name: "fishbot"}
	if err := Normalize(cfg); err != nil {
		t.Fatalf("postgres backend with database settings: %v", err)
	}

	cfg = validConfig()
	cfg.Session.Backend = "carrier-pigeon"
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected error for unknown session backend")
	}
}

func TestLoadDatabaseSection(t *testing.T) {
	raw := `
telegram:
  token: "123:abc"
session:
  backend: postgres
database:
  host: db.internal
  port: "5433"
  user: fishbot
  password: secret
  name: fishbot
  sslmode: disable
  max_connections: 10
moltin:
  client_id: client
  client_secret: secret
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Database.Host != "db.internal" || cfg.Database.Port != "5433" {
		t.Fatalf("database section = %+v", cfg.Database)
	}
	if cfg.Database.MaxConnections != 10 {
		t.Fatalf("max connections = %d", cfg.Database.MaxConnections)
	}
	if cfg.Session.Backend != SessionBackendPostgres {
		t.Fatalf("backend = %q", cfg.Session.Backend)
	}
}

func TestNormalizeWebhookRequirements(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.RunMode = "webhook"
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected error for webhook mode without url")
	}
	cfg.Webhook = WebhookConfig{URL: "https://bot.example.com", Listen: "0.0.0.0", Port: 8443}
	if err := Normalize(cfg); err != nil {
		t.Fatalf("webhook mode with full settings: %v", err)
	}
}

func TestNormalizeRateLimitExcludes(t *testing.T) {
	cfg := validConfig()
	cfg.RateLimit.ExcludeUpdates = []string{" Callback "}
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.RateLimit.ExcludeUpdates[0] != "callback" {
		t.Fatalf("exclude not normalized: %q", cfg.RateLimit.ExcludeUpdates[0])
	}

	cfg.RateLimit.ExcludeUpdates = []string{"inline_query"}
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected error for unsupported exclude value")
	}
}
