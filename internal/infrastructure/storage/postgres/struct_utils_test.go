package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"docflow/internal/core/entity"
	"docflow/internal/core/id"
	"docflow/internal/core/types"
)

type testDocument struct {
	entity.Document
	PaymentTerms string `db:"payment_terms"`
	scratch      string
}

func TestExtractDBColumns_DocumentHeader(t *testing.T) {
	cols := ExtractDBColumns[testDocument]()

	for _, expected := range []string{
		"id", "deletion_mark", "version",
		"created_at", "updated_at", "created_by", "updated_by",
		"number", "vendor_id", "status", "date", "due_date",
		"subtotal", "tax_amount", "total_amount", "notes", "payment_terms",
	} {
		assert.Contains(t, cols, expected)
	}
	assert.NotContains(t, cols, "items")
	assert.NotContains(t, cols, "-")
}

func TestStructToMap_Document(t *testing.T) {
	due := time.Date(2025, 7, 31, 0, 0, 0, 0, time.UTC)
	doc := testDocument{
		Document:     entity.NewDocument(id.New(), time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)),
		PaymentTerms: "net 30",
	}
	doc.Number = "INV-2025-00001"
	doc.DueDate = &due
	doc.TotalAmount = types.Yen(3064)
	doc.scratch = "ignored"

	m := StructToMap(&doc)

	assert.Equal(t, doc.ID, m["id"])
	assert.Equal(t, 1, m["version"])
	assert.Equal(t, "INV-2025-00001", m["number"])
	assert.Equal(t, entity.StatusDraft, m["status"])
	assert.Equal(t, &due, m["due_date"])
	assert.True(t, types.Yen(3064).Equal(m["total_amount"].(types.Money)))
	assert.Equal(t, "net 30", m["payment_terms"])
	assert.NotContains(t, m, "items")
	assert.Len(t, m, len(ExtractDBColumns[testDocument]()))
}

func TestStructToMap_NonStruct(t *testing.T) {
	assert.Nil(t, StructToMap(42))
}
