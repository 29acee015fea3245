package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// TelegramConfig holds Telegram bot related settings.
type TelegramConfig struct {
	Token   string `yaml:"token" envconfig:"BOT_TOKEN"`
	RunMode string `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE"`
	// LongPollTimeoutSeconds defines long polling timeout; 0 -> default
	LongPollTimeoutSeconds int `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
}

// WebhookConfig specifies webhook settings.
type WebhookConfig struct {
	URL    string `yaml:"url" envconfig:"WEBHOOK_URL"`
	Listen string `yaml:"listen" envconfig:"WEBHOOK_LISTEN"`
	Port   int    `yaml:"port" envconfig:"WEBHOOK_PORT"`
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	Format  string `yaml:"format"`
	Dir     string `yaml:"dir"`
	BotFile string `yaml:"bot_file"`
	// Profile indicates environment profile such as "debug" or "prod".
	Profile string `yaml:"profile"`
}

const (
	// RunModeWebhook selects webhook mode for Telegram updates.
	RunModeWebhook = "webhook"
	// RunModeLongpoll selects long-polling mode for Telegram updates.
	RunModeLongpoll = "longpoll"
)

const (
	// UpdateCallback identifies callback updates for rate limit exclusions.
	UpdateCallback = "callback"
	// UpdateMessage identifies message updates for rate limit exclusions.
	UpdateMessage = "message"
)

// RateLimitConfig holds settings for rate limiting.
// ExcludeUpdates accepts update types to bypass limiting:
// - "callback": Telegram callback button presses
// - "message": standard text messages
type RateLimitConfig struct {
	IntervalMS     int      `yaml:"interval_ms" envconfig:"RATE_LIMIT_INTERVAL_MS"`
	ExcludeUpdates []string `yaml:"exclude_updates" envconfig:"RATE_LIMIT_EXCLUDE_UPDATES"`
}

const (
	// SessionBackendRedis persists sessions in Redis.
	SessionBackendRedis = "redis"
	// SessionBackendPostgres persists sessions in Postgres.
	SessionBackendPostgres = "postgres"
	// SessionBackendMemory keeps sessions in process memory (dev/tests only).
	SessionBackendMemory = "memory"
)

// SessionConfig selects and tunes the conversation state store.
type SessionConfig struct {
	Backend    string `yaml:"backend" envconfig:"SESSION_BACKEND"`
	TTLSeconds int    `yaml:"ttl_seconds" envconfig:"SESSION_TTL_SECONDS"`
}

// RedisConfig holds Redis connection settings for the session store.
type RedisConfig struct {
	URL                 string `yaml:"url" envconfig:"REDIS_URL"`
	DialTimeoutSeconds  int    `yaml:"dial_timeout_seconds" envconfig:"REDIS_DIAL_TIMEOUT_SECONDS"`
	ReadTimeoutSeconds  int    `yaml:"read_timeout_seconds" envconfig:"REDIS_READ_TIMEOUT_SECONDS"`
	WriteTimeoutSeconds int    `yaml:"write_timeout_seconds" envconfig:"REDIS_WRITE_TIMEOUT_SECONDS"`
}

// DatabaseConfig holds Postgres connection settings for the session store.
// This package stays a leaf: core/database consumes these values through
// its own connection type, converted at the wiring point.
type DatabaseConfig struct {
	Host           string `yaml:"host" envconfig:"DB_HOST"`
	Port           string `yaml:"port" envconfig:"DB_PORT"`
	User           string `yaml:"user" envconfig:"DB_USER"`
	Password       string `yaml:"password" envconfig:"DB_PASSWORD"`
	Name           string `yaml:"name" envconfig:"DB_NAME"`
	SSLMode        string `yaml:"sslmode" envconfig:"DB_SSLMODE"`
	MaxConnections int    `yaml:"max_connections" envconfig:"DB_MAX_CONNECTIONS"`
}

// MoltinConfig holds Elastic Path commerce API credentials and tuning.
type MoltinConfig struct {
	BaseURL              string `yaml:"base_url" envconfig:"MOLTIN_BASE_URL"`
	ClientID             string `yaml:"client_id" envconfig:"MOLTIN_CLIENT_ID"`
	ClientSecret         string `yaml:"client_secret" envconfig:"MOLTIN_CLIENT_SECRET"`
	RefreshMarginSeconds int    `yaml:"refresh_margin_seconds" envconfig:"MOLTIN_REFRESH_MARGIN_SECONDS"`
}

// Config aggregates the application configuration.
type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Logging   LoggingConfig   `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Session   SessionConfig   `yaml:"session"`
	Redis     RedisConfig     `yaml:"redis"`
	Database  DatabaseConfig  `yaml:"database"`
	Moltin    MoltinConfig    `yaml:"moltin"`
}

// Load reads configuration from a YAML file and environment variables.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize performs basic validation of required configuration fields and adjusts defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	if cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram token is required")
	}

	rm := strings.ToLower(strings.TrimSpace(cfg.Telegram.RunMode))
	if rm == "" {
		rm = RunModeLongpoll
	}
	if rm == "polling" { // accept alias
		rm = RunModeLongpoll
	}
	switch rm {
	case RunModeWebhook:
		if strings.TrimSpace(cfg.Webhook.URL) == "" {
			return fmt.Errorf("webhook.url is required when telegram.run_mode is 'webhook'")
		}
		if strings.TrimSpace(cfg.Webhook.Listen) == "" {
			return fmt.Errorf("webhook.listen is required when telegram.run_mode is 'webhook'")
		}
		if cfg.Webhook.Port <= 0 {
			return fmt.Errorf("webhook.port must be > 0 when telegram.run_mode is 'webhook'")
		}
	case RunModeLongpoll:
		if cfg.Telegram.LongPollTimeoutSeconds < 0 {
			return fmt.Errorf("telegram.longpoll_timeout_seconds must be >= 0")
		}
	default:
		return fmt.Errorf("invalid telegram.run_mode %q; allowed: webhook, longpoll", cfg.Telegram.RunMode)
	}
	cfg.Telegram.RunMode = rm

	allowed := map[string]struct{}{
		UpdateCallback: {},
		UpdateMessage:  {},
	}
	for i, v := range cfg.RateLimit.ExcludeUpdates {
		key := strings.ToLower(strings.TrimSpace(v))
		if key == "" {
			continue
		}
		if _, ok := allowed[key]; !ok {
			return fmt.Errorf("invalid rate_limit.exclude_updates value %q; allowed: callback, message", v)
		}
		cfg.RateLimit.ExcludeUpdates[i] = key
	}

	backend := strings.ToLower(strings.TrimSpace(cfg.Session.Backend))
	if backend == "" {
		backend = SessionBackendRedis
	}
	switch backend {
	case SessionBackendRedis:
		if strings.TrimSpace(cfg.Redis.URL) == "" {
			return fmt.Errorf("redis.url is required when session.backend is 'redis'")
		}
	case SessionBackendPostgres:
		if strings.TrimSpace(cfg.Database.Host) == "" || strings.TrimSpace(cfg.Database.Name) == "" {
			return fmt.Errorf("database.host and database.name are required when session.backend is 'postgres'")
		}
	case SessionBackendMemory:
	default:
		return fmt.Errorf("invalid session.backend %q; allowed: redis, postgres, memory", cfg.Session.Backend)
	}
	cfg.Session.Backend = backend
	if cfg.Session.TTLSeconds < 0 {
		return fmt.Errorf("session.ttl_seconds must be >= 0")
	}

	if strings.TrimSpace(cfg.Moltin.ClientID) == "" || strings.TrimSpace(cfg.Moltin.ClientSecret) == "" {
		return fmt.Errorf("moltin.client_id and moltin.client_secret are required")
	}
	if cfg.Moltin.BaseURL == "" {
		cfg.Moltin.BaseURL = "https://api.moltin.com"
	}
	cfg.Moltin.BaseURL = strings.TrimRight(cfg.Moltin.BaseURL, "/")
	if cfg.Moltin.RefreshMarginSeconds < 0 {
		return fmt.Errorf("moltin.refresh_margin_seconds must be >= 0")
	}
	if cfg.Moltin.RefreshMarginSeconds == 0 {
		cfg.Moltin.RefreshMarginSeconds = 100
	}

	return nil
}
