package entity

import (
	"strings"

	"docflow/internal/core/apperror"
	"docflow/internal/core/id"
	"docflow/internal/core/types"
)

const (
	MaxItemNameLength    = 100
	MaxDescriptionLength = 500
)

// LineItem is one row of a document's table part.
// Taxable and tax amounts are derived by the tax package, never stored per line.
type LineItem struct {
	ID         id.ID `db:"id" json:"id"`
	DocumentID id.ID `db:"document_id" json:"-"`
	LineNo     int   `db:"line_no" json:"lineNo"`

	ItemName    string      `db:"item_name" json:"itemName"`
	Quantity    int         `db:"quantity" json:"quantity"`
	UnitPrice   types.Money `db:"unit_price" json:"unitPrice"`
	TaxRate     types.Rate  `db:"tax_rate" json:"taxRate"`
	Description string      `db:"description" json:"description,omitempty"`
	Category    string      `db:"category" json:"category,omitempty"`
}

// Validate checks structural invariants of the line. lineNo is 1-based and
// used only for error details. Tax rate membership is checked by the tax package.
func (l *LineItem) Validate(lineNo int) error {
	name := strings.TrimSpace(l.ItemName)
	if name == "" {
		return lineError("item name is required", "itemName", lineNo)
	}
	if len([]rune(name)) > MaxItemNameLength {
		return lineError("item name is too long", "itemName", lineNo).
			WithDetail("max", MaxItemNameLength)
	}
	if l.Quantity < 1 {
		return lineError("quantity must be at least 1", "quantity", lineNo)
	}
	if l.UnitPrice.IsNegative() {
		return lineError("unit price must not be negative", "unitPrice", lineNo)
	}
	if len([]rune(l.Description)) > MaxDescriptionLength {
		return lineError("description is too long", "description", lineNo).
			WithDetail("max", MaxDescriptionLength)
	}
	return nil
}

func lineError(msg, field string, lineNo int) *apperror.AppError {
	return apperror.NewValidation(msg).
		WithDetail("field", "items."+field).
		WithDetail("lineNo", lineNo)
}
