package notify_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"docflow/internal/core/id"
	"docflow/internal/domain/notification"
	"docflow/internal/infrastructure/notify"
	"docflow/internal/infrastructure/storage/postgres"
	"docflow/pkg/logger"
)

type recordingPublisher struct {
	events []postgres.DomainEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e postgres.DomainEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func overdueMessage() notification.Message {
	msg := notification.NewMessage(notification.TemplateReminderOverdue, "billing@vendor.example", "invoice", id.New())
	msg.Subject = "Invoice INV-2025-00001 is overdue"
	return msg.With("number", "INV-2025-00001")
}

func TestLogSender_Send(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ctx := logger.WithLogger(context.Background(), &logger.Logger{SugaredLogger: zap.New(core).Sugar()})

	require.NoError(t, notify.NewLogSender().Send(ctx, overdueMessage()))
	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "billing@vendor.example", entries[0].ContextMap()["to"])
}

func TestLogSender_RejectsInvalid(t *testing.T) {
	err := notify.NewLogSender().Send(context.Background(), notification.Message{Template: notification.TemplateStatusChanged})
	assert.Error(t, err)
}

func TestOutboxSender_Send(t *testing.T) {
	pub := &recordingPublisher{}
	msg := overdueMessage()

	require.NoError(t, notify.NewOutboxSender(pub).Send(context.Background(), msg))
	require.Len(t, pub.events, 1)

	e := pub.events[0]
	assert.Equal(t, "invoice", e.AggregateType)
	assert.Equal(t, msg.DocumentID, e.AggregateID)
	assert.Equal(t, "reminder.overdue", e.EventType)
	assert.Equal(t, msg, e.Payload)
}

func TestOutboxSender_WrapsPublishError(t *testing.T) {
	boom := errors.New("insert failed")
	err := notify.NewOutboxSender(&recordingPublisher{err: boom}).Send(context.Background(), overdueMessage())
	assert.ErrorIs(t, err, boom)
}

func TestWebhookHandler_Handle(t *testing.T) {
	var gotBody []byte
	var gotEvent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotEvent = r.Header.Get("X-Event-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	payload, err := json.Marshal(overdueMessage())
	require.NoError(t, err)

	h := notify.NewWebhookHandler(srv.URL, srv.Client())
	err = h.Handle(context.Background(), &postgres.OutboxMessage{
		ID:        id.New(),
		EventType: "reminder.overdue",
		Payload:   payload,
	})
	require.NoError(t, err)
	assert.Equal(t, "reminder.overdue", gotEvent)
	assert.JSONEq(t, string(payload), string(gotBody))
}

func TestWebhookHandler_Non2xxFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := notify.NewWebhookHandler(srv.URL, nil).Handle(context.Background(), &postgres.OutboxMessage{
		ID:        id.New(),
		EventType: "status.changed",
		Payload:   []byte(`{}`),
	})
	assert.ErrorContains(t, err, "502")
}
