package notification

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docflow/internal/core/id"
)

func TestMessage_Validate(t *testing.T) {
	msg := NewMessage(TemplateStatusChanged, "  billing@vendor.example ", "invoice", id.New())
	require.NoError(t, msg.Validate())
	assert.Equal(t, "billing@vendor.example", msg.To)

	assert.Error(t, NewMessage(TemplateStatusChanged, "", "invoice", id.New()).Validate())
	assert.Error(t, NewMessage("", "a@b.c", "invoice", id.New()).Validate())
}

func TestMessage_With(t *testing.T) {
	msg := Message{}.With("status", "PAID")
	assert.Equal(t, "PAID", msg.Data["status"])
}

func TestSenderFunc(t *testing.T) {
	var got Message
	s := SenderFunc(func(_ context.Context, m Message) error {
		got = m
		return nil
	})
	msg := NewMessage(TemplateReminderOverdue, "a@b.c", "invoice", id.New())
	require.NoError(t, s.Send(context.Background(), msg))
	assert.Equal(t, msg.ID, got.ID)
}
