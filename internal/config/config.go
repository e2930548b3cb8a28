package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	EnvPrefix = "MEDPORT_"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	minSecretLength = 32
)

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Log       LogConfig       `koanf:"log"`
	Timezone  string          `koanf:"timezone"`
	Auth      AuthConfig      `koanf:"auth"`
	Scheduler SchedulerConfig `koanf:"scheduler"`
	Telegram  TelegramConfig  `koanf:"telegram"`
}

type ServerConfig struct {
	Port    string `koanf:"port"`
	AppName string `koanf:"app_name"`
}

type DatabaseConfig struct {
	Driver   string `koanf:"driver"`
	Path     string `koanf:"path"`
	DSN      string `koanf:"dsn"`
	LogLevel string `koanf:"log_level"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// AuthConfig protects /api with HS256 bearer tokens when Secret is set.
type AuthConfig struct {
	Secret   string        `koanf:"secret"`
	TokenTTL time.Duration `koanf:"token_ttl"`
}

type SchedulerConfig struct {
	Enabled bool   `koanf:"enabled"`
	Spec    string `koanf:"spec"`
}

type TelegramConfig struct {
	Token      string `koanf:"token"`
	ChatID     int64  `koanf:"chat_id"`
	RatePerSec int    `koanf:"rate_per_sec"`
	Language   string `koanf:"language"`
}

func defaults() map[string]any {
	return map[string]any{
		"server.port":           "8080",
		"server.app_name":       "Medport",
		"database.driver":       DriverSQLite,
		"database.path":         "data/medport.db",
		"database.dsn":          "",
		"database.log_level":    "warn",
		"log.level":             "info",
		"log.format":            "text",
		"timezone":              "UTC",
		"auth.secret":           "",
		"auth.token_ttl":        "720h",
		"scheduler.enabled":     true,
		"scheduler.spec":        "@every 1m",
		"telegram.token":        "",
		"telegram.chat_id":      0,
		"telegram.rate_per_sec": 1,
		"telegram.language":     "en",
	}
}

// Load layers defaults, the optional YAML file at path and MEDPORT_*
// environment variables, in that order. MEDPORT_DATABASE__DRIVER maps to
// database.driver.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path = strings.TrimSpace(path); path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.normalize()
	return &cfg, nil
}

func envKey(raw string) string {
	key := strings.ToLower(strings.TrimPrefix(raw, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

func (c *Config) normalize() {
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	c.Timezone = strings.TrimSpace(c.Timezone)
	c.Auth.Secret = strings.TrimSpace(c.Auth.Secret)
	c.Scheduler.Spec = strings.TrimSpace(c.Scheduler.Spec)
	c.Telegram.Language = strings.ToLower(strings.TrimSpace(c.Telegram.Language))
}

func (c *Config) Validate() error {
	var problems []error

	switch c.Database.Driver {
	case DriverSQLite:
		if strings.TrimSpace(c.Database.Path) == "" {
			problems = append(problems, errors.New("database.path is required for sqlite"))
		}
	case DriverPostgres:
		if strings.TrimSpace(c.Database.DSN) == "" {
			problems = append(problems, errors.New("database.dsn is required for postgres"))
		}
	default:
		problems = append(problems, fmt.Errorf("unknown database.driver %q (supported: %s, %s)", c.Database.Driver, DriverSQLite, DriverPostgres))
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		problems = append(problems, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err))
	}

	if c.Auth.Secret != "" && len(c.Auth.Secret) < minSecretLength {
		problems = append(problems, fmt.Errorf("auth.secret must be at least %d characters", minSecretLength))
	}
	if c.Auth.TokenTTL <= 0 {
		problems = append(problems, errors.New("auth.token_ttl must be positive"))
	}

	if c.Scheduler.Enabled && c.Scheduler.Spec == "" {
		problems = append(problems, errors.New("scheduler.spec is required when the scheduler is enabled"))
	}
	if c.Telegram.Token != "" && c.Telegram.ChatID == 0 {
		problems = append(problems, errors.New("telegram.chat_id is required when telegram.token is set"))
	}

	return errors.Join(problems...)
}

// Location resolves the configured timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	location, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return location
}

func (c *Config) AuthEnabled() bool {
	return c.Auth.Secret != ""
}

func (c *Config) TelegramEnabled() bool {
	return c.Telegram.Token != "" && c.Telegram.ChatID != 0
}
