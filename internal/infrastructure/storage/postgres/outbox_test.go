package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docflow/internal/core/id"
)

type handlerFunc func(ctx context.Context, msg *OutboxMessage) error

func (f handlerFunc) Handle(ctx context.Context, msg *OutboxMessage) error { return f(ctx, msg) }

var outboxColumns = []string{
	"id", "aggregate_type", "aggregate_id", "event_type", "payload", "status",
	"retry_count", "last_error", "next_retry_at", "created_at", "published_at",
}

func outboxRow(msgID id.ID, retries int) []any {
	var lastError *string
	var nextRetry, published *time.Time
	return []any{
		msgID, "invoice", id.New(), "invoice.overdue", []byte(`{"number":"INV-2025-00001"}`),
		OutboxStatusPending, retries, lastError, nextRetry, time.Now().UTC(), published,
	}
}

func fixedNow() time.Time { return time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC) }

func TestOutboxPublisher_Publish(t *testing.T) {
	m, mock := newMockManager(t)
	p := NewOutboxPublisher(m)
	p.now = fixedNow

	docID := id.New()
	mock.ExpectExec("INSERT INTO sys_outbox").
		WithArgs(pgxmock.AnyArg(), "invoice", docID, "invoice.approved",
			[]byte(`{"number":"INV-2025-00001"}`), OutboxStatusPending, fixedNow()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := p.Publish(context.Background(), DomainEvent{
		AggregateType: "invoice",
		AggregateID:   docID,
		EventType:     "invoice.approved",
		Payload:       map[string]string{"number": "INV-2025-00001"},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRelay_ProcessBatch_Delivered(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	msgID := id.New()
	mock.ExpectQuery("FROM sys_outbox").
		WithArgs(OutboxStatusPending, fixedNow(), 10).
		WillReturnRows(pgxmock.NewRows(outboxColumns).AddRow(outboxRow(msgID, 0)...))
	mock.ExpectExec("SET status = \\$1, published_at = \\$2").
		WithArgs(OutboxStatusPublished, fixedNow(), msgID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	var seen []string
	relay := NewOutboxRelay(mock, 10, handlerFunc(func(ctx context.Context, msg *OutboxMessage) error {
		seen = append(seen, msg.EventType)
		return nil
	}))
	relay.now = fixedNow

	n, err := relay.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"invoice.overdue"}, seen)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRelay_ProcessBatch_FailureSchedulesRetry(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	msgID := id.New()
	mock.ExpectQuery("FROM sys_outbox").
		WillReturnRows(pgxmock.NewRows(outboxColumns).AddRow(outboxRow(msgID, 1)...))
	mock.ExpectExec("SET retry_count = retry_count \\+ 1").
		WithArgs("webhook returned 502", fixedNow().Add(2*time.Minute), OutboxStatusPending, msgID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	relay := NewOutboxRelay(mock, 0, handlerFunc(func(ctx context.Context, msg *OutboxMessage) error {
		return errors.New("webhook returned 502")
	}))
	relay.now = fixedNow

	n, err := relay.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRelay_ProcessBatch_ParksAfterMaxRetries(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	msgID := id.New()
	mock.ExpectQuery("FROM sys_outbox").
		WillReturnRows(pgxmock.NewRows(outboxColumns).AddRow(outboxRow(msgID, MaxOutboxRetries-1)...))
	mock.ExpectExec("SET retry_count = retry_count \\+ 1").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), OutboxStatusFailed, msgID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	relay := NewOutboxRelay(mock, 0, handlerFunc(func(ctx context.Context, msg *OutboxMessage) error {
		return errors.New("unreachable")
	}))
	relay.now = fixedNow

	_, err = relay.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRelay_PurgePublished(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	cutoff := fixedNow().Add(-7 * 24 * time.Hour)
	mock.ExpectExec("DELETE FROM sys_outbox").
		WithArgs(OutboxStatusPublished, cutoff).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	n, err := NewOutboxRelay(mock, 0, nil).PurgePublished(context.Background(), cutoff)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}
