package invoice

import (
	"time"

	"docflow/internal/core/id"
	"docflow/internal/core/types"
	"docflow/internal/domain/lifecycle"
)

// Payment records money received against an invoice.
type Payment struct {
	ID          id.ID                   `db:"id" json:"id"`
	InvoiceID   id.ID                   `db:"invoice_id" json:"invoiceId"`
	PaymentDate time.Time               `db:"payment_date" json:"paymentDate"`
	Amount      types.Money             `db:"amount" json:"amount"`
	Method      lifecycle.PaymentMethod `db:"method" json:"method"`
	Note        string                  `db:"note" json:"note,omitempty"`
	CreatedBy   string                  `db:"created_by" json:"createdBy"`
	CreatedAt   time.Time               `db:"created_at" json:"createdAt"`
}

// NewPayment builds a payment row from transition data.
func NewPayment(invoiceID id.ID, data lifecycle.PaymentData, createdBy string, now time.Time) Payment {
	return Payment{
		ID:          id.New(),
		InvoiceID:   invoiceID,
		PaymentDate: data.PaymentDate,
		Amount:      data.Amount,
		Method:      data.Method,
		Note:        data.Note,
		CreatedBy:   createdBy,
		CreatedAt:   now.UTC(),
	}
}
