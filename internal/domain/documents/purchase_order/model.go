// Package purchase_order provides the PurchaseOrder document.
package purchase_order

import (
	"context"
	"time"

	"docflow/internal/core/apperror"
	"docflow/internal/core/entity"
	"docflow/internal/core/id"
)

const MaxTermsLength = 500

// PurchaseOrder is an order placed with a vendor. DueDate holds the
// expected delivery date.
type PurchaseOrder struct {
	entity.Document

	DeliveryAddress string `db:"delivery_address" json:"deliveryAddress,omitempty"`
	PaymentTerms    string `db:"payment_terms" json:"paymentTerms,omitempty"`
}

// NewPurchaseOrder creates a DRAFT purchase order.
func NewPurchaseOrder(vendorID id.ID, orderDate time.Time) *PurchaseOrder {
	return &PurchaseOrder{
		Document: entity.NewDocument(vendorID, orderDate),
	}
}

// DeliveryDate returns the expected delivery date, if set.
func (p *PurchaseOrder) DeliveryDate() *time.Time {
	return p.DueDate
}

// Validate implements entity.Validatable.
func (p *PurchaseOrder) Validate(ctx context.Context) error {
	if err := p.Document.Validate(ctx); err != nil {
		return err
	}
	if len([]rune(p.DeliveryAddress)) > MaxTermsLength {
		return apperror.NewValidation("delivery address is too long").
			WithDetail("field", "deliveryAddress")
	}
	if len([]rune(p.PaymentTerms)) > MaxTermsLength {
		return apperror.NewValidation("payment terms are too long").
			WithDetail("field", "paymentTerms")
	}
	return nil
}
