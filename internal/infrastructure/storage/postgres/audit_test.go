package postgres

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appctx "docflow/internal/core/context"
	"docflow/internal/core/entity"
	"docflow/internal/core/id"
	"docflow/internal/core/types"
)

func newAuditService(t *testing.T) (*AuditService, pgxmock.PgxPoolIface) {
	t.Helper()
	m, mock := newMockManager(t)
	svc, err := NewAuditService(m)
	require.NoError(t, err)
	return svc, mock
}

func auditDocument() *entity.Document {
	d := entity.NewDocument(id.New(), time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	d.Items = []entity.LineItem{{
		LineNo:    1,
		ItemName:  "Paper A4",
		Quantity:  10,
		UnitPrice: types.Yen(500),
		TaxRate:   types.MustMoney("0.10"),
	}}
	d.Subtotal = types.Yen(5000)
	d.TaxAmount = types.Yen(500)
	d.TotalAmount = types.Yen(5500)
	return &d
}

func TestAuditService_LogItemsChange_NoChanges(t *testing.T) {
	svc, mock := newAuditService(t)
	doc := auditDocument()
	same := *doc

	require.NoError(t, svc.LogItemsChange(context.Background(), "invoice", doc.ID, doc, &same))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditService_LogItemsChange_WritesDiff(t *testing.T) {
	svc, mock := newAuditService(t)
	before := auditDocument()
	after := *before
	after.Notes = "rush order"

	ctx := appctx.WithUser(context.Background(), &appctx.UserContext{UserID: "u-42"})

	var captured []byte
	mock.ExpectExec("INSERT INTO sys_audit").
		WithArgs(pgxmock.AnyArg(), "invoice", before.ID, AuditActionUpdate, "u-42",
			captureBytes(&captured), []byte(nil), CompressionNone, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, svc.LogItemsChange(ctx, "invoice", before.ID, before, &after))
	require.NoError(t, mock.ExpectationsWereMet())

	var changes map[string]map[string]any
	require.NoError(t, json.Unmarshal(captured, &changes))
	assert.Len(t, changes, 1)
	assert.Equal(t, "rush order", changes["notes"]["new"])
}

func TestAuditService_Log_CompressesLargePayload(t *testing.T) {
	svc, mock := newAuditService(t)
	svc.compressThreshold = 16

	payload := json.RawMessage(`{"notes":{"old":"","new":"` + string(bytes.Repeat([]byte("x"), 64)) + `"}}`)

	var compressed []byte
	mock.ExpectExec("INSERT INTO sys_audit").
		WithArgs(pgxmock.AnyArg(), "purchase_order", pgxmock.AnyArg(), AuditActionUpdate, "system",
			json.RawMessage(nil), captureBytes(&compressed), CompressionZstd, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, svc.Log(context.Background(), AuditEntry{
		EntityType: "purchase_order",
		EntityID:   id.New(),
		Action:     AuditActionUpdate,
		UserID:     "system",
		Changes:    payload,
	}))
	require.NoError(t, mock.ExpectationsWereMet())

	decoded, err := svc.decoder.DecodeAll(compressed, nil)
	require.NoError(t, err)
	assert.JSONEq(t, string(payload), string(decoded))
}

func TestAuditService_GetEntityHistory_Decompresses(t *testing.T) {
	svc, mock := newAuditService(t)
	entityID := id.New()
	original := []byte(`{"notes":{"old":"a","new":"b"}}`)
	compressed := svc.encoder.EncodeAll(original, nil)

	rows := pgxmock.NewRows([]string{
		"id", "entity_type", "entity_id", "action", "user_id",
		"changes", "changes_compressed", "compression_algo", "created_at",
	}).AddRow(id.New(), "invoice", entityID, AuditActionUpdate, "u-1",
		json.RawMessage(nil), compressed, CompressionZstd, time.Now().UTC())

	mock.ExpectQuery("FROM sys_audit").
		WithArgs("invoice", entityID, 20).
		WillReturnRows(rows)

	entries, err := svc.GetEntityHistory(context.Background(), "invoice", entityID, 20)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.JSONEq(t, string(original), string(entries[0].Changes))
	assert.Nil(t, entries[0].ChangesCompressed)
}

func TestDiff(t *testing.T) {
	changes := Diff(
		map[string]any{"a": "1", "b": "2", "gone": true},
		map[string]any{"a": "1", "b": "3", "added": 5},
	)
	assert.Len(t, changes, 3)
	assert.Equal(t, map[string]any{"old": "2", "new": "3"}, changes["b"])
	assert.Equal(t, map[string]any{"old": nil, "new": 5}, changes["added"])
	assert.Equal(t, map[string]any{"old": true, "new": nil}, changes["gone"])
}

// byteCapture matches any byte-slice argument and keeps a copy of it.
type byteCapture struct{ dst *[]byte }

func captureBytes(dst *[]byte) pgxmock.Argument { return byteCapture{dst: dst} }

func (c byteCapture) Match(v any) bool {
	switch b := v.(type) {
	case []byte:
		*c.dst = append([]byte(nil), b...)
		return true
	case json.RawMessage:
		*c.dst = append([]byte(nil), b...)
		return true
	}
	return false
}
