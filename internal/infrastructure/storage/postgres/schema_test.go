package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitSchema(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	for _, stmt := range schemaStatements {
		mock.ExpectExec(regexp.QuoteMeta(stmt)).WillReturnResult(pgxmock.NewResult("CREATE", 0))
	}

	require.NoError(t, InitSchema(context.Background(), mock))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInitSchema_StopsOnError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(regexp.QuoteMeta(schemaStatements[0])).WillReturnError(errors.New("permission denied"))

	err = InitSchema(context.Background(), mock)
	assert.ErrorContains(t, err, "init schema")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSchemaStatements_CoverRepositoryTables(t *testing.T) {
	all := ""
	for _, stmt := range schemaStatements {
		all += stmt + "\n"
	}
	for _, table := range []string{
		"sys_sequences", "cat_vendors", "doc_purchase_orders", "doc_purchase_order_items",
		"doc_invoices", "doc_invoice_items", "doc_invoice_payments", "doc_invoice_reminders",
		"sys_status_history", "sys_audit", "sys_outbox", "sys_idempotency",
	} {
		assert.Contains(t, all, "CREATE TABLE IF NOT EXISTS "+table+" ", table)
	}
}
