package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	yaml "go.yaml.in/yaml/v3"

	"github.com/cpiprint/zap-notify/pkg/core"
	"github.com/cpiprint/zap-notify/pkg/delivery"
	"github.com/cpiprint/zap-notify/pkg/runner"
	"github.com/cpiprint/zap-notify/pkg/storage"
)

// Config is the full command configuration.
type Config struct {
	Environment   string              `yaml:"environment"`
	LogLevel      string              `yaml:"log_level"`
	AppURL        string              `yaml:"app_url"`
	Database      DatabaseConfig      `yaml:"database"`
	Notifications core.Config         `yaml:"notifications"`
	Tick          TickConfig          `yaml:"tick"`
	Delivery      DeliveryConfig      `yaml:"delivery"`
	Mail          delivery.MailConfig `yaml:"mail"`
	Telegram      TelegramConfig      `yaml:"telegram"`
}

// DatabaseConfig selects the database. DSNs starting with postgres:// or
// postgresql:// open PostgreSQL; anything else is a SQLite path.
type DatabaseConfig struct {
	DSN  string             `yaml:"dsn"`
	Pool storage.PoolConfig `yaml:"pool"`
}

// TickConfig controls the once-per-minute tick.
type TickConfig struct {
	Spec        string        `yaml:"spec"`
	Timezone    string        `yaml:"timezone"`
	Timeout     time.Duration `yaml:"timeout"`
	ClaimFirst  bool          `yaml:"claim_first"`
	Concurrency int           `yaml:"concurrency"`
}

// DeliveryConfig sizes the delivery service.
type DeliveryConfig struct {
	Workers    int                  `yaml:"workers"`
	QueueSize  int                  `yaml:"queue_size"`
	RatePerSec float64              `yaml:"rate_per_sec"`
	Burst      int                  `yaml:"burst"`
	Retry      delivery.RetryConfig `yaml:"retry"`
}

// TelegramConfig enables the telegram channel when Token is set.
type TelegramConfig struct {
	Token string `yaml:"token"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Environment:   "development",
		LogLevel:      "info",
		Database:      DatabaseConfig{DSN: "zapnotify.db", Pool: storage.DefaultPoolConfig()},
		Notifications: core.DefaultConfig(),
		Tick: TickConfig{
			Spec:        runner.DefaultSpec,
			Timezone:    "Local",
			Timeout:     runner.DefaultTimeout,
			Concurrency: 1,
		},
		Delivery: DeliveryConfig{
			Workers:    4,
			QueueSize:  1000,
			RatePerSec: 20,
			Burst:      20,
			Retry:      delivery.DefaultRetryConfig(),
		},
	}
}

// Load reads path (optional), applies .env files and environment overrides,
// and validates the result. Missing .env files are ignored.
func Load(path string, envFiles ...string) (*Config, error) {
	loadEnvFiles(envFiles...)
	return Parse(path)
}

// Parse reads path (optional) over the defaults and applies environment
// overrides without touching .env files.
func Parse(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := decode(b, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(b []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func loadEnvFiles(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		// godotenv.Load does not override variables already set.
		_ = godotenv.Load(f)
	}
}

func (c *Config) applyEnv() error {
	setString(&c.Environment, "ZAP_ENV")
	setString(&c.LogLevel, "ZAP_LOG_LEVEL")
	setString(&c.AppURL, "ZAP_APP_URL")
	setString(&c.Database.DSN, "DATABASE_URL")
	setString(&c.Database.DSN, "ZAP_DATABASE_DSN")
	setString(&c.Tick.Spec, "ZAP_TICK_SPEC")
	setString(&c.Tick.Timezone, "ZAP_TIMEZONE")
	setString(&c.Telegram.Token, "TELEGRAM_TOKEN")
	setString(&c.Mail.Host, "ZAP_MAIL_HOST")
	setString(&c.Mail.Username, "ZAP_MAIL_USERNAME")
	setString(&c.Mail.Password, "ZAP_MAIL_PASSWORD")
	setString(&c.Mail.From, "ZAP_MAIL_FROM")

	if err := setInt(&c.Mail.Port, "ZAP_MAIL_PORT"); err != nil {
		return err
	}
	if err := setBool(&c.Notifications.Enabled, "ZAP_NOTIFICATIONS_ENABLED"); err != nil {
		return err
	}
	if err := setBool(&c.Notifications.Queue, "ZAP_NOTIFICATIONS_QUEUE"); err != nil {
		return err
	}
	if v, ok := os.LookupEnv("ZAP_NOTIFICATIONS_CHANNELS"); ok {
		c.Notifications.DefaultChannels = parseChannels(v)
	}
	c.Environment = strings.ToLower(c.Environment)
	c.LogLevel = strings.ToLower(c.LogLevel)
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = b
	return nil
}

func parseChannels(v string) []core.Channel {
	var out []core.Channel
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, core.Channel(strings.ToLower(part)))
		}
	}
	return out
}

var knownChannels = map[core.Channel]bool{
	core.ChannelMail:      true,
	core.ChannelDatabase:  true,
	core.ChannelBroadcast: true,
	core.ChannelTelegram:  true,
	core.ChannelLog:       true,
}

// Validate checks the configuration for values the command cannot run with.
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return errors.New("database.dsn is not set")
	}
	for _, ch := range c.Notifications.DefaultChannels {
		if !knownChannels[ch] {
			return fmt.Errorf("notifications.default_channels: unknown channel %q", ch)
		}
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("tick.timezone: %w", err)
	}
	if _, err := cron.ParseStandard(c.Tick.Spec); err != nil {
		return fmt.Errorf("tick.spec: %w", err)
	}
	if c.Tick.Timeout < 0 {
		return errors.New("tick.timeout must not be negative")
	}
	return nil
}

// Location returns the tick time zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Tick.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Tick.Timezone)
}

// IsProduction reports whether the command runs in production or staging.
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "staging"
}

// IsPostgres reports whether the DSN points at PostgreSQL.
func (c *Config) IsPostgres() bool {
	dsn := strings.ToLower(c.Database.DSN)
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=")
}
