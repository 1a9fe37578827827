package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	StoreMySQL  = "mysql"
	StoreMemory = "memory"
)

type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	Notification NotificationConfig
	Admin        AdminConfig
	Log          LogConfig
}

type ServerConfig struct {
	Port          int
	PublicBaseURL string
	StoreDriver   string
}

type DatabaseConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Addr           string
	Password       string
	DB             int
	IdempotencyTTL time.Duration
}

// Enabled reports whether an idempotency cache is configured.
func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

type NotificationConfig struct {
	Endpoint  string
	Recipient string
	Timeout   time.Duration
	Timezone  string
}

func (c NotificationConfig) Enabled() bool {
	return c.Endpoint != ""
}

type AdminConfig struct {
	PasswordHash string
	TokenSecret  string
	TokenTTL     time.Duration
}

type LogConfig struct {
	Level string
	File  string
}

const minTokenSecretLength = 32

var defaults = map[string]any{
	"SERVER_PORT":          8080,
	"PUBLIC_BASE_URL":      "",
	"STORE_DRIVER":         StoreMySQL,
	"DB_DSN":               "",
	"DB_MAX_OPEN_CONNS":    25,
	"DB_MAX_IDLE_CONNS":    5,
	"DB_CONN_MAX_LIFETIME": "5m",
	"REDIS_ADDR":           "",
	"REDIS_PASSWORD":       "",
	"REDIS_DB":             0,
	"IDEMPOTENCY_TTL":      "24h",
	"NOTIFY_ENDPOINT":      "",
	"NOTIFY_RECIPIENT":     "",
	"NOTIFY_TIMEOUT":       "10s",
	"NOTIFY_TIMEZONE":      "Europe/Moscow",
	"ADMIN_PASSWORD_HASH":  "",
	"ADMIN_TOKEN_SECRET":   "",
	"ADMIN_TOKEN_TTL":      "12h",
	"LOG_LEVEL":            "info",
	"LOG_FILE":             "",
}

// Load reads configuration from an optional YAML file and the environment.
// Environment variables take precedence over the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if path != "" {
		values, err := readFile(path)
		if err != nil {
			return nil, err
		}
		if err := v.MergeConfigMap(values); err != nil {
			return nil, fmt.Errorf("merging config file: %w", err)
		}
	}

	durations := map[string]time.Duration{}
	for _, key := range []string{"DB_CONN_MAX_LIFETIME", "IDEMPOTENCY_TTL", "NOTIFY_TIMEOUT", "ADMIN_TOKEN_TTL"} {
		d, err := time.ParseDuration(v.GetString(key))
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", key, err)
		}
		durations[key] = d
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:          v.GetInt("SERVER_PORT"),
			PublicBaseURL: strings.TrimRight(v.GetString("PUBLIC_BASE_URL"), "/"),
			StoreDriver:   strings.ToLower(v.GetString("STORE_DRIVER")),
		},
		Database: DatabaseConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: durations["DB_CONN_MAX_LIFETIME"],
		},
		Redis: RedisConfig{
			Addr:           v.GetString("REDIS_ADDR"),
			Password:       v.GetString("REDIS_PASSWORD"),
			DB:             v.GetInt("REDIS_DB"),
			IdempotencyTTL: durations["IDEMPOTENCY_TTL"],
		},
		Notification: NotificationConfig{
			Endpoint:  v.GetString("NOTIFY_ENDPOINT"),
			Recipient: v.GetString("NOTIFY_RECIPIENT"),
			Timeout:   durations["NOTIFY_TIMEOUT"],
			Timezone:  v.GetString("NOTIFY_TIMEZONE"),
		},
		Admin: AdminConfig{
			PasswordHash: v.GetString("ADMIN_PASSWORD_HASH"),
			TokenSecret:  v.GetString("ADMIN_TOKEN_SECRET"),
			TokenTTL:     durations["ADMIN_TOKEN_TTL"],
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
			File:  v.GetString("LOG_FILE"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate fails on any missing secret; there are no built-in fallbacks.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("SERVER_PORT %d out of range", c.Server.Port))
	}

	switch c.Server.StoreDriver {
	case StoreMySQL:
		if c.Database.DSN == "" {
			errs = append(errs, errors.New("DB_DSN is required"))
		}
	case StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.Server.StoreDriver))
	}

	if c.Notification.Enabled() && c.Notification.Recipient == "" {
		errs = append(errs, errors.New("NOTIFY_RECIPIENT is required when NOTIFY_ENDPOINT is set"))
	}
	if c.Notification.Timeout <= 0 {
		errs = append(errs, errors.New("NOTIFY_TIMEOUT must be positive"))
	}

	if c.Admin.PasswordHash == "" {
		errs = append(errs, errors.New("ADMIN_PASSWORD_HASH is required"))
	}
	if len(c.Admin.TokenSecret) < minTokenSecretLength {
		errs = append(errs, fmt.Errorf("ADMIN_TOKEN_SECRET must be at least %d bytes", minTokenSecretLength))
	}
	if c.Admin.TokenTTL <= 0 {
		errs = append(errs, errors.New("ADMIN_TOKEN_TTL must be positive"))
	}

	if c.Redis.Enabled() && c.Redis.IdempotencyTTL <= 0 {
		errs = append(errs, errors.New("IDEMPOTENCY_TTL must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
