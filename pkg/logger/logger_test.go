package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	appctx "docflow/internal/core/context"
)

func TestFromContext_EnrichesWithTraceAndUser(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := &Logger{zap.New(core).Sugar()}

	ctx := WithLogger(context.Background(), base)
	ctx = appctx.WithTrace(ctx, &appctx.TraceContext{TraceID: "t-1", RequestID: "r-1"})
	ctx = appctx.WithUser(ctx, &appctx.UserContext{UserID: "u-1"})

	Info(ctx, "transition applied", "status", "SENT")

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "t-1", fields["trace_id"])
		assert.Equal(t, "r-1", fields["request_id"])
		assert.Equal(t, "u-1", fields["user_id"])
		assert.Equal(t, "SENT", fields["status"])
	}
}

func TestNew_FallsBackToInfoOnBadLevel(t *testing.T) {
	l, err := New(Config{Level: "nonsense", OutputPaths: []string{"stderr"}})
	assert.NoError(t, err)
	assert.NotNil(t, l)
	assert.False(t, l.Desugar().Core().Enabled(zap.DebugLevel))
}

func TestSetDefault_UsedWithoutContextLogger(t *testing.T) {
	prev := Default()
	t.Cleanup(func() { SetDefault(prev) })

	core, logs := observer.New(zap.InfoLevel)
	SetDefault(&Logger{zap.New(core).Sugar()})

	Warn(context.Background(), "outbox delivery failed", "retry", 2)

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "outbox delivery failed", entries[0].Message)
		assert.EqualValues(t, 2, entries[0].ContextMap()["retry"])
	}
}
