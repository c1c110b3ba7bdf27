package entity

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docflow/internal/core/apperror"
	"docflow/internal/core/id"
	"docflow/internal/core/types"
)

func TestLineItem_Validate(t *testing.T) {
	valid := LineItem{ItemName: "Paper", Quantity: 1, UnitPrice: types.Yen(100), TaxRate: types.MustMoney("0.10")}

	tests := []struct {
		name   string
		mutate func(*LineItem)
		field  string
	}{
		{"empty name", func(l *LineItem) { l.ItemName = "  " }, "items.itemName"},
		{"long name", func(l *LineItem) { l.ItemName = strings.Repeat("あ", 101) }, "items.itemName"},
		{"zero quantity", func(l *LineItem) { l.Quantity = 0 }, "items.quantity"},
		{"negative price", func(l *LineItem) { l.UnitPrice = types.Yen(-1) }, "items.unitPrice"},
		{"long description", func(l *LineItem) { l.Description = strings.Repeat("x", 501) }, "items.description"},
	}

	require.NoError(t, valid.Validate(1))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := valid
			tt.mutate(&item)
			err := item.Validate(3)
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperror.CodeValidation, appErr.Code)
			assert.Equal(t, tt.field, appErr.Details["field"])
			assert.Equal(t, 3, appErr.Details["lineNo"])
		})
	}
}

func TestLineItem_NameLimitCountsRunes(t *testing.T) {
	item := LineItem{ItemName: strings.Repeat("紙", 100), Quantity: 1, UnitPrice: types.Zero()}
	assert.NoError(t, item.Validate(1))
}

func TestDocument_SetItemsStampsLines(t *testing.T) {
	doc := NewDocument(id.New(), time.Now())
	doc.SetItems([]LineItem{{ItemName: "a"}, {ItemName: "b"}})

	require.Len(t, doc.Items, 2)
	for i, item := range doc.Items {
		assert.Equal(t, i+1, item.LineNo)
		assert.Equal(t, doc.ID, item.DocumentID)
		assert.False(t, id.IsNil(item.ID))
	}
}

func TestDocument_Validate(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	before := date.AddDate(0, 0, -1)

	doc := NewDocument(id.New(), date)
	assert.NoError(t, doc.Validate(ctx))

	doc.DueDate = &before
	assert.True(t, apperror.HasCode(doc.Validate(ctx), apperror.CodeValidation))

	noVendor := NewDocument(id.Nil(), date)
	assert.Error(t, noVendor.Validate(ctx))
}

func TestDocument_CanModify(t *testing.T) {
	doc := NewDocument(id.New(), time.Now())
	assert.NoError(t, doc.CanModify())

	doc.SetStatus(StatusSent)
	assert.True(t, apperror.HasCode(doc.CanModify(), apperror.CodeDocumentLocked))
}

func TestDocument_IsPastDue(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	due := time.Date(2025, 5, 10, 0, 0, 0, 0, tokyo)
	doc := NewDocument(id.New(), due.AddDate(0, -1, 0))
	doc.DueDate = &due

	// 2025-05-10 20:00 UTC is already 2025-05-11 in Tokyo.
	assert.True(t, doc.IsPastDue(time.Date(2025, 5, 10, 20, 0, 0, 0, time.UTC), tokyo))
	assert.False(t, doc.IsPastDue(time.Date(2025, 5, 10, 10, 0, 0, 0, time.UTC), tokyo))

	doc.DueDate = nil
	assert.False(t, doc.IsPastDue(time.Now(), tokyo))
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2025, 3, 30, 0, 0, 0, 0, time.UTC)
	b := time.Date(2025, 4, 2, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, 3, DaysBetween(a, b))
	assert.Equal(t, -3, DaysBetween(b, a))
	assert.Equal(t, 0, DaysBetween(a, a.Add(5*time.Hour)))
}
