// Package notify provides notification.Sender transports: a logging sender
// for development and an outbox-backed sender whose rows the worker relays
// to a webhook.
package notify

import (
	"context"

	"docflow/internal/domain/notification"
	"docflow/pkg/logger"
)

var _ notification.Sender = (*LogSender)(nil)

// LogSender writes every message to the log instead of delivering it.
type LogSender struct{}

// NewLogSender creates a logging sender.
func NewLogSender() *LogSender {
	return &LogSender{}
}

// Send implements notification.Sender.
func (s *LogSender) Send(ctx context.Context, msg notification.Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	logger.FromContext(ctx).WithComponent("notify").Infow("notification",
		"message_id", msg.ID,
		"template", msg.Template,
		"to", msg.To,
		"subject", msg.Subject,
		"document_kind", msg.DocumentKind,
		"document_id", msg.DocumentID,
		"data", msg.Data,
	)
	return nil
}
