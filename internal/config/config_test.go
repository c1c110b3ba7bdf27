package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(env map[string]string) envLookup {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(lookupFrom(nil))
	require.NoError(t, err)

	assert.Equal(t, defaultPort, cfg.Port)
	assert.Equal(t, defaultJWTSecret, cfg.JWTSecret)
	assert.Equal(t, "Asia/Tokyo", cfg.Location.String())
	assert.Equal(t, defaultReminderHour, cfg.ReminderHour)
	assert.Equal(t, time.Minute, cfg.ReminderInterval)
	assert.Equal(t, NotifyModeLog, cfg.NotifyMode)
	assert.Equal(t, defaultOutboxBatchSize, cfg.OutboxBatchSize)
	assert.True(t, cfg.IsDevelopment())
	assert.ErrorIs(t, cfg.RequireDatabase(), ErrDatabaseURLRequired)
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(lookupFrom(map[string]string{
		"DATABASE_URL":      "postgres://docflow@localhost/docflow",
		"APP_ENV":           "production",
		"TIMEZONE":          "UTC",
		"REMINDER_HOUR":     "6",
		"REMINDER_INTERVAL": "30s",
		"REMINDER_WORKERS":  "0",
		"NOTIFY_MODE":       "outbox",
		"OUTBOX_BATCH_SIZE": "not-a-number",
		"SHUTDOWN_TIMEOUT":  "5s",
	}))
	require.NoError(t, err)

	assert.NoError(t, cfg.RequireDatabase())
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Equal(t, 6, cfg.ReminderHour)
	assert.Equal(t, 30*time.Second, cfg.ReminderInterval)
	assert.Equal(t, defaultReminderWorkers, cfg.ReminderWorkers)
	assert.Equal(t, NotifyModeOutbox, cfg.NotifyMode)
	assert.Equal(t, defaultOutboxBatchSize, cfg.OutboxBatchSize)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown timezone", map[string]string{"TIMEZONE": "Mars/Olympus"}},
		{"hour out of range", map[string]string{"REMINDER_HOUR": "24"}},
		{"unknown notify mode", map[string]string{"NOTIFY_MODE": "smtp"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(lookupFrom(tt.env))
			assert.Error(t, err)
		})
	}
}
