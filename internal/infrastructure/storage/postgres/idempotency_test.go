package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docflow/internal/core/apperror"
)

var idempotencyColumns = []string{
	"idempotency_key", "user_id", "operation", "status", "request_hash",
	"response", "response_status", "response_content_type",
	"created_at", "updated_at", "expires_at", "inserted",
}

func newIdempotencyStore(t *testing.T) (*IdempotencyStore, pgxmock.PgxPoolIface) {
	t.Helper()
	m, mock := newMockManager(t)
	store := NewIdempotencyStore(m, 24*time.Hour)
	store.now = fixedNow
	return store, mock
}

func idempotencyRow(status IdempotencyStatus, hash string, updatedAt time.Time, inserted bool) []any {
	return []any{
		"key-1", "u-1", "POST /invoices", status, hash,
		[]byte(`{"id":"x"}`), 201, "application/json",
		updatedAt, updatedAt, updatedAt.Add(24 * time.Hour), inserted,
	}
}

func TestIdempotencyStore_AcquireKey_Fresh(t *testing.T) {
	store, mock := newIdempotencyStore(t)
	mock.ExpectQuery("INSERT INTO sys_idempotency").
		WillReturnRows(pgxmock.NewRows(idempotencyColumns).
			AddRow(idempotencyRow(IdempotencyStatusPending, "h1", fixedNow(), true)...))

	replay, err := store.AcquireKey(context.Background(), "key-1", "u-1", "POST /invoices", "h1")
	require.NoError(t, err)
	assert.Nil(t, replay)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotencyStore_AcquireKey_ReplaysCompleted(t *testing.T) {
	store, mock := newIdempotencyStore(t)
	mock.ExpectQuery("INSERT INTO sys_idempotency").
		WillReturnRows(pgxmock.NewRows(idempotencyColumns).
			AddRow(idempotencyRow(IdempotencyStatusSuccess, "h1", fixedNow().Add(-time.Hour), false)...))

	replay, err := store.AcquireKey(context.Background(), "key-1", "u-1", "POST /invoices", "h1")
	require.NoError(t, err)
	require.NotNil(t, replay)
	assert.Equal(t, 201, replay.StatusCode)
	assert.Equal(t, `{"id":"x"}`, string(replay.Body))
}

func TestIdempotencyStore_AcquireKey_Mismatch(t *testing.T) {
	store, mock := newIdempotencyStore(t)
	mock.ExpectQuery("INSERT INTO sys_idempotency").
		WillReturnRows(pgxmock.NewRows(idempotencyColumns).
			AddRow(idempotencyRow(IdempotencyStatusSuccess, "other", fixedNow(), false)...))

	_, err := store.AcquireKey(context.Background(), "key-1", "u-1", "POST /invoices", "h1")
	require.True(t, apperror.HasCode(err, apperror.CodeIdempotency))
	assert.Contains(t, err.Error(), "mismatch")
}

func TestIdempotencyStore_AcquireKey_PendingInFlight(t *testing.T) {
	store, mock := newIdempotencyStore(t)
	mock.ExpectQuery("INSERT INTO sys_idempotency").
		WillReturnRows(pgxmock.NewRows(idempotencyColumns).
			AddRow(idempotencyRow(IdempotencyStatusPending, "h1", fixedNow().Add(-10*time.Second), false)...))

	_, err := store.AcquireKey(context.Background(), "key-1", "u-1", "POST /invoices", "h1")
	assert.True(t, apperror.HasCode(err, apperror.CodeIdempotency))
}

func TestIdempotencyStore_AcquireKey_TakesOverStalePending(t *testing.T) {
	store, mock := newIdempotencyStore(t)
	stale := fixedNow().Add(-5 * time.Minute)
	mock.ExpectQuery("INSERT INTO sys_idempotency").
		WillReturnRows(pgxmock.NewRows(idempotencyColumns).
			AddRow(idempotencyRow(IdempotencyStatusPending, "h1", stale, false)...))
	mock.ExpectExec("UPDATE sys_idempotency").
		WithArgs(fixedNow(), "key-1", IdempotencyStatusPending, stale).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	replay, err := store.AcquireKey(context.Background(), "key-1", "u-1", "POST /invoices", "h1")
	require.NoError(t, err)
	assert.Nil(t, replay)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotencyStore_CompleteKey(t *testing.T) {
	store, mock := newIdempotencyStore(t)
	mock.ExpectExec("UPDATE sys_idempotency").
		WithArgs(IdempotencyStatusSuccess, []byte(`{"ok":true}`), 200, "application/json", fixedNow(), "key-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, store.CompleteKey(context.Background(), "key-1", 200, "application/json", map[string]bool{"ok": true}))
	assert.NoError(t, mock.ExpectationsWereMet())
}
