package reminder_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docflow/internal/core/entity"
	"docflow/internal/domain/reminder"
	"docflow/internal/test"
)

func TestRunner_OncePerDayAfterHour(t *testing.T) {
	// 08:30 in Tokyo
	start := time.Date(2025, 6, 9, 23, 30, 0, 0, time.UTC)
	env := test.NewEnv(start)
	inv := putInvoice(env, "INV-2025-00001", entity.StatusPending, day(2025, 5, 1), day(2025, 6, 9))

	r := reminder.NewRunner(newScheduler(env), reminder.RunnerConfig{
		RunAtHour: 9,
		Now:       env.Clock.Now,
	})
	ctx := context.Background()

	assert.False(t, r.Tick(ctx))
	_, ok := r.LastReport()
	assert.False(t, ok)

	env.Clock.Advance(time.Hour)
	assert.True(t, r.Tick(ctx))
	assert.False(t, r.Tick(ctx))
	assert.Equal(t, entity.StatusOverdue, env.Invoices.Get(inv.ID).Status)

	report, ok := r.LastReport()
	require.True(t, ok)
	assert.Equal(t, 1, report.AutoTransitioned)

	env.Clock.Advance(24 * time.Hour)
	assert.True(t, r.Tick(ctx))
}

func TestRunner_RetriesAfterFailure(t *testing.T) {
	env := test.NewEnv(now)
	env.Invoices.Err = test.ErrStorage
	r := reminder.NewRunner(newScheduler(env), reminder.RunnerConfig{RunAtHour: 0, Now: env.Clock.Now})
	ctx := context.Background()

	assert.True(t, r.Tick(ctx))
	env.Invoices.Err = nil
	assert.True(t, r.Tick(ctx))
	assert.False(t, r.Tick(ctx))
}

func TestRunner_RunNowIgnoresSchedule(t *testing.T) {
	env := test.NewEnv(time.Date(2025, 6, 9, 16, 0, 0, 0, time.UTC)) // 01:00 in Tokyo
	r := reminder.NewRunner(newScheduler(env), reminder.RunnerConfig{RunAtHour: 9, Now: env.Clock.Now})

	report, err := r.RunNow(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.Errors)
	assert.Equal(t, env.Clock.Now(), report.RanAt)
}

func TestRunner_RunAtReplaysDay(t *testing.T) {
	at := time.Date(2025, 6, 10, 1, 0, 0, 0, time.UTC)
	env := test.NewEnv(at)
	inv := putInvoice(env, "INV-2025-00002", entity.StatusSent, day(2025, 5, 1), day(2025, 6, 9))
	stale := func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }
	r := reminder.NewRunner(newScheduler(env), reminder.RunnerConfig{RunAtHour: 9, Now: stale})

	report, err := r.RunAt(context.Background(), at)
	require.NoError(t, err)
	assert.Equal(t, at, report.RanAt)
	assert.Equal(t, 1, report.AutoTransitioned)
	assert.Equal(t, entity.StatusOverdue, env.Invoices.Get(inv.ID).Status)

	last, ok := r.LastReport()
	require.True(t, ok)
	assert.Equal(t, at, last.RanAt)
}
