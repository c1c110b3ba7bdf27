package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var readWrite = pgx.TxOptions{IsoLevel: pgx.ReadCommitted, AccessMode: pgx.ReadWrite}

func newMockManager(t *testing.T) (*TxManager, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewTxManagerFromDB(mock), mock
}

func expectBegin(mock pgxmock.PgxPoolIface, opts pgx.TxOptions) {
	mock.ExpectBeginTx(opts)
	mock.ExpectExec("SET LOCAL statement_timeout = '30000ms'").
		WillReturnResult(pgxmock.NewResult("SET", 0))
}

func TestTxManager_Commit(t *testing.T) {
	m, mock := newMockManager(t)
	expectBegin(mock, readWrite)
	mock.ExpectExec("UPDATE doc_invoices").WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	err := m.RunInTransaction(context.Background(), func(ctx context.Context) error {
		assert.True(t, m.InTransaction(ctx))
		_, err := m.GetQuerier(ctx).Exec(ctx, "UPDATE doc_invoices SET notes = ''")
		return err
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxManager_RollbackOnError(t *testing.T) {
	m, mock := newMockManager(t)
	expectBegin(mock, readWrite)
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := m.RunInTransaction(context.Background(), func(ctx context.Context) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxManager_NestedReusesTransaction(t *testing.T) {
	m, mock := newMockManager(t)
	expectBegin(mock, readWrite)
	mock.ExpectCommit()

	calls := 0
	err := m.RunInTransaction(context.Background(), func(ctx context.Context) error {
		outer := m.GetTx(ctx)
		return m.RunInTransaction(ctx, func(ctx context.Context) error {
			calls++
			assert.Same(t, outer, m.GetTx(ctx))
			return nil
		})
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxManager_SavepointRollback(t *testing.T) {
	m, mock := newMockManager(t)
	expectBegin(mock, readWrite)
	mock.ExpectExec("SAVEPOINT sp_").WillReturnResult(pgxmock.NewResult("SAVEPOINT", 0))
	mock.ExpectExec("ROLLBACK TO SAVEPOINT sp_").WillReturnResult(pgxmock.NewResult("ROLLBACK", 0))
	mock.ExpectCommit()

	opts := DefaultTxOptions()
	opts.UseSavepoint = true
	inner := errors.New("inner")

	err := m.RunInTransaction(context.Background(), func(ctx context.Context) error {
		nestedErr := m.RunInTransactionWithOptions(ctx, opts, func(ctx context.Context) error {
			return inner
		})
		assert.ErrorIs(t, nestedErr, inner)
		return nil
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxManager_ReadOnly(t *testing.T) {
	m, mock := newMockManager(t)
	expectBegin(mock, pgx.TxOptions{IsoLevel: pgx.ReadCommitted, AccessMode: pgx.ReadOnly})
	mock.ExpectCommit()

	require.NoError(t, m.ReadOnly(context.Background(), func(ctx context.Context) error { return nil }))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxManager_BeginFailure(t *testing.T) {
	m, mock := newMockManager(t)
	mock.ExpectBeginTx(readWrite).WillReturnError(errors.New("no connection"))

	called := false
	err := m.RunInTransaction(context.Background(), func(ctx context.Context) error {
		called = true
		return nil
	})
	assert.ErrorContains(t, err, "begin transaction")
	assert.False(t, called)
}

func TestTxManager_GetQuerierOutsideTransaction(t *testing.T) {
	m, mock := newMockManager(t)
	assert.False(t, m.InTransaction(context.Background()))
	assert.Equal(t, Querier(mock), m.GetQuerier(context.Background()))
}
