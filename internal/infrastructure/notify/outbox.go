package notify

import (
	"context"
	"fmt"

	"docflow/internal/domain/notification"
	"docflow/internal/infrastructure/storage/postgres"
)

var _ notification.Sender = (*OutboxSender)(nil)

// Publisher writes a domain event to durable storage.
type Publisher interface {
	Publish(ctx context.Context, event postgres.DomainEvent) error
}

// OutboxSender queues messages in sys_outbox. The template becomes the
// event type and the whole message is the payload.
type OutboxSender struct {
	publisher Publisher
}

// NewOutboxSender creates an outbox-backed sender.
func NewOutboxSender(publisher Publisher) *OutboxSender {
	return &OutboxSender{publisher: publisher}
}

// Send implements notification.Sender.
func (s *OutboxSender) Send(ctx context.Context, msg notification.Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	err := s.publisher.Publish(ctx, postgres.DomainEvent{
		AggregateType: msg.DocumentKind,
		AggregateID:   msg.DocumentID,
		EventType:     string(msg.Template),
		Payload:       msg,
	})
	if err != nil {
		return fmt.Errorf("queue notification %s: %w", msg.Template, err)
	}
	return nil
}
