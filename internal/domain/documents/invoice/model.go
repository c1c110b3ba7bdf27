// Package invoice provides the Invoice document with its payments and
// reminder settings.
package invoice

import (
	"context"
	"time"

	"docflow/internal/core/apperror"
	"docflow/internal/core/entity"
	"docflow/internal/core/id"
)

// Invoice is a bill from a vendor. Date is the issue date and DueDate the
// payment due date.
type Invoice struct {
	entity.Document

	// PurchaseOrderID links the invoice to the order it bills
	PurchaseOrderID *id.ID `db:"purchase_order_id" json:"purchaseOrderId,omitempty"`

	PaymentTerms string `db:"payment_terms" json:"paymentTerms,omitempty"`
}

// NewInvoice creates a DRAFT invoice.
func NewInvoice(vendorID id.ID, issueDate, dueDate time.Time) *Invoice {
	inv := &Invoice{
		Document: entity.NewDocument(vendorID, issueDate),
	}
	inv.DueDate = &dueDate
	return inv
}

// Validate implements entity.Validatable.
func (i *Invoice) Validate(ctx context.Context) error {
	if err := i.Document.Validate(ctx); err != nil {
		return err
	}
	if i.DueDate == nil {
		return apperror.NewValidation("due date is required").
			WithDetail("field", "dueDate")
	}
	if i.PurchaseOrderID != nil && id.IsNil(*i.PurchaseOrderID) {
		i.PurchaseOrderID = nil
	}
	if len([]rune(i.PaymentTerms)) > 500 {
		return apperror.NewValidation("payment terms are too long").
			WithDetail("field", "paymentTerms")
	}
	return nil
}

// IsLinked reports whether the invoice references a purchase order.
func (i *Invoice) IsLinked() bool {
	return i.PurchaseOrderID != nil
}
