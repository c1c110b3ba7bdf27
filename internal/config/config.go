// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Notification delivery modes.
const (
	NotifyModeLog    = "log"
	NotifyModeOutbox = "outbox"
)

// Config holds settings shared by the server, the worker and docctl.
type Config struct {
	DatabaseURL string
	Port        string
	Env         string
	LogLevel    string
	JWTSecret   string
	Location    *time.Location

	ReminderHour     int
	ReminderInterval time.Duration
	ReminderWorkers  int

	NotifyMode       string
	NotifyWebhookURL string
	OutboxBatchSize  int
	OutboxInterval   time.Duration

	IdempotencyTTL  time.Duration
	ShutdownTimeout time.Duration
}

const (
	defaultPort             = "8080"
	defaultEnv              = "development"
	defaultLogLevel         = "info"
	defaultJWTSecret        = "change-me-in-production"
	defaultTimezone         = "Asia/Tokyo"
	defaultReminderHour     = 9
	defaultReminderInterval = time.Minute
	defaultReminderWorkers  = 8
	defaultOutboxBatchSize  = 50
	defaultOutboxInterval   = 5 * time.Second
	defaultIdempotencyTTL   = 24 * time.Hour
	defaultShutdownTimeout  = 30 * time.Second
)

// ErrDatabaseURLRequired is returned by RequireDatabase when DATABASE_URL is unset.
var ErrDatabaseURLRequired = errors.New("DATABASE_URL must be provided")

type envLookup func(string) (string, bool)

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over .env values.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return load(os.LookupEnv)
}

func load(lookup envLookup) (*Config, error) {
	cfg := &Config{
		DatabaseURL:      getString(lookup, "DATABASE_URL", ""),
		Port:             getString(lookup, "APP_PORT", defaultPort),
		Env:              getString(lookup, "APP_ENV", defaultEnv),
		LogLevel:         getString(lookup, "LOG_LEVEL", defaultLogLevel),
		JWTSecret:        getString(lookup, "JWT_SECRET", defaultJWTSecret),
		ReminderHour:     getInt(lookup, "REMINDER_HOUR", defaultReminderHour),
		ReminderInterval: getDuration(lookup, "REMINDER_INTERVAL", defaultReminderInterval),
		ReminderWorkers:  getInt(lookup, "REMINDER_WORKERS", defaultReminderWorkers),
		NotifyMode:       getString(lookup, "NOTIFY_MODE", NotifyModeLog),
		NotifyWebhookURL: getString(lookup, "NOTIFY_WEBHOOK_URL", ""),
		OutboxBatchSize:  getInt(lookup, "OUTBOX_BATCH_SIZE", defaultOutboxBatchSize),
		OutboxInterval:   getDuration(lookup, "OUTBOX_INTERVAL", defaultOutboxInterval),
		IdempotencyTTL:   getDuration(lookup, "IDEMPOTENCY_TTL", defaultIdempotencyTTL),
		ShutdownTimeout:  getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
	}

	tz := getString(lookup, "TIMEZONE", defaultTimezone)
	loc, err := time.LoadLocation(tz)
	if err != nil {
		if tz != defaultTimezone {
			return nil, fmt.Errorf("invalid TIMEZONE %q: %w", tz, err)
		}
		// Minimal images may ship without tzdata.
		loc = time.FixedZone("JST", 9*60*60)
	}
	cfg.Location = loc

	if cfg.ReminderHour < 0 || cfg.ReminderHour > 23 {
		return nil, fmt.Errorf("REMINDER_HOUR must be within 0..23, got %d", cfg.ReminderHour)
	}
	switch cfg.NotifyMode {
	case NotifyModeLog, NotifyModeOutbox:
	default:
		return nil, fmt.Errorf("NOTIFY_MODE must be %q or %q, got %q", NotifyModeLog, NotifyModeOutbox, cfg.NotifyMode)
	}

	if cfg.ReminderInterval <= 0 {
		cfg.ReminderInterval = defaultReminderInterval
	}
	if cfg.ReminderWorkers <= 0 {
		cfg.ReminderWorkers = defaultReminderWorkers
	}
	if cfg.OutboxBatchSize <= 0 {
		cfg.OutboxBatchSize = defaultOutboxBatchSize
	}
	if cfg.OutboxInterval <= 0 {
		cfg.OutboxInterval = defaultOutboxInterval
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	return cfg, nil
}

// IsDevelopment reports whether APP_ENV selects development logging.
func (c *Config) IsDevelopment() bool {
	return c.Env == defaultEnv
}

// RequireDatabase fails when no DSN is configured.
func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return ErrDatabaseURLRequired
	}
	return nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
