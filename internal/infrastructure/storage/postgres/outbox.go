package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"docflow/internal/core/id"
	"docflow/pkg/logger"
)

// OutboxStatus represents the state of an outbox message.
type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusPublished OutboxStatus = "published"
	OutboxStatusFailed    OutboxStatus = "failed"
)

// MaxOutboxRetries is the number of failed deliveries after which a
// message is parked as failed.
const MaxOutboxRetries = 5

// OutboxMessage represents a message in the transactional outbox.
type OutboxMessage struct {
	ID            id.ID        `db:"id"`
	AggregateType string       `db:"aggregate_type"` // purchase_order, invoice
	AggregateID   id.ID        `db:"aggregate_id"`
	EventType     string       `db:"event_type"` // notification template
	Payload       []byte       `db:"payload"`
	Status        OutboxStatus `db:"status"`
	RetryCount    int          `db:"retry_count"`
	LastError     *string      `db:"last_error"`
	NextRetryAt   *time.Time   `db:"next_retry_at"`
	CreatedAt     time.Time    `db:"created_at"`
	PublishedAt   *time.Time   `db:"published_at"`
}

// DomainEvent represents an event to be published via outbox.
type DomainEvent struct {
	AggregateType string
	AggregateID   id.ID
	EventType     string
	Payload       any
}

// OutboxPublisher writes events to the outbox table.
type OutboxPublisher struct {
	txManager *TxManager
	now       func() time.Time
}

// NewOutboxPublisher creates a new outbox publisher.
func NewOutboxPublisher(txManager *TxManager) *OutboxPublisher {
	return &OutboxPublisher{txManager: txManager, now: time.Now}
}

// Publish writes an event to the outbox. Inside a transaction the row
// commits with it; outside one it is written directly.
func (p *OutboxPublisher) Publish(ctx context.Context, event DomainEvent) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}

	_, err = p.txManager.GetQuerier(ctx).Exec(ctx, `
		INSERT INTO sys_outbox (id, aggregate_type, aggregate_id, event_type, payload, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id.New(), event.AggregateType, event.AggregateID, event.EventType, payload,
		OutboxStatusPending, p.now().UTC())
	if err != nil {
		return fmt.Errorf("insert outbox message: %w", err)
	}
	return nil
}

// OutboxHandler processes outbox messages.
type OutboxHandler interface {
	// Handle delivers a message and returns error if failed
	Handle(ctx context.Context, msg *OutboxMessage) error
}

// OutboxRelay reads pending messages and hands them to a handler.
type OutboxRelay struct {
	db        DB
	batchSize int
	handler   OutboxHandler
	now       func() time.Time
}

// NewOutboxRelay creates a new outbox relay.
func NewOutboxRelay(db DB, batchSize int, handler OutboxHandler) *OutboxRelay {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &OutboxRelay{
		db:        db,
		batchSize: batchSize,
		handler:   handler,
		now:       time.Now,
	}
}

// ProcessBatch fetches and processes pending messages.
// Returns number of delivered messages.
func (r *OutboxRelay) ProcessBatch(ctx context.Context) (int, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, aggregate_type, aggregate_id, event_type, payload, status,
		       retry_count, last_error, next_retry_at, created_at, published_at
		FROM sys_outbox
		WHERE status = $1
		  AND (next_retry_at IS NULL OR next_retry_at <= $2)
		ORDER BY created_at
		LIMIT $3
		FOR UPDATE SKIP LOCKED`,
		OutboxStatusPending, r.now().UTC(), r.batchSize)
	if err != nil {
		return 0, fmt.Errorf("fetch outbox messages: %w", err)
	}
	defer rows.Close()

	var messages []*OutboxMessage
	for rows.Next() {
		var msg OutboxMessage
		if err := rows.Scan(
			&msg.ID, &msg.AggregateType, &msg.AggregateID, &msg.EventType,
			&msg.Payload, &msg.Status, &msg.RetryCount, &msg.LastError,
			&msg.NextRetryAt, &msg.CreatedAt, &msg.PublishedAt,
		); err != nil {
			return 0, fmt.Errorf("scan outbox message: %w", err)
		}
		messages = append(messages, &msg)
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate outbox messages: %w", err)
	}

	processed := 0
	for _, msg := range messages {
		if err := r.processMessage(ctx, msg); err != nil {
			logger.Warn(ctx, "outbox delivery failed",
				"message_id", msg.ID,
				"event_type", msg.EventType,
				"retry", msg.RetryCount+1,
				"error", err)
			continue
		}
		processed++
	}
	return processed, nil
}

func (r *OutboxRelay) processMessage(ctx context.Context, msg *OutboxMessage) error {
	now := r.now().UTC()

	if err := r.handler.Handle(ctx, msg); err != nil {
		// Linear backoff: one more minute per attempt.
		nextRetry := now.Add(time.Duration(msg.RetryCount+1) * time.Minute)
		status := OutboxStatusPending
		if msg.RetryCount+1 >= MaxOutboxRetries {
			status = OutboxStatusFailed
		}

		_, updateErr := r.db.Exec(ctx, `
			UPDATE sys_outbox
			SET retry_count = retry_count + 1,
			    last_error = $1,
			    next_retry_at = $2,
			    status = $3
			WHERE id = $4`,
			err.Error(), nextRetry, status, msg.ID)
		if updateErr != nil {
			return fmt.Errorf("update failed message: %w", updateErr)
		}
		return err
	}

	_, err := r.db.Exec(ctx, `
		UPDATE sys_outbox
		SET status = $1, published_at = $2
		WHERE id = $3`,
		OutboxStatusPublished, now, msg.ID)
	if err != nil {
		return fmt.Errorf("mark published: %w", err)
	}
	return nil
}

// PurgePublished deletes messages published before cutoff.
func (r *OutboxRelay) PurgePublished(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.Exec(ctx, `
		DELETE FROM sys_outbox WHERE status = $1 AND published_at < $2`,
		OutboxStatusPublished, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("purge outbox: %w", err)
	}
	return result.RowsAffected(), nil
}
