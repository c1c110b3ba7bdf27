package lifecycle

import (
	"time"

	"docflow/internal/core/apperror"
	"docflow/internal/core/types"
)

// PaymentMethod is how an invoice was settled.
type PaymentMethod string

const (
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodCash         PaymentMethod = "cash"
	MethodCreditCard   PaymentMethod = "credit_card"
	MethodOther        PaymentMethod = "other"
)

// IsValid reports whether m is a known method.
func (m PaymentMethod) IsValid() bool {
	switch m {
	case MethodBankTransfer, MethodCash, MethodCreditCard, MethodOther:
		return true
	}
	return false
}

// MaxPaymentNoteLength bounds the free-form payment note.
const MaxPaymentNoteLength = 500

// PaymentData accompanies transitions into PAID.
type PaymentData struct {
	PaymentDate time.Time     `json:"paymentDate"`
	Amount      types.Money   `json:"amount"`
	Method      PaymentMethod `json:"method"`
	Note        string        `json:"note,omitempty"`
}

// Validate checks the payload. An empty method defaults to bank transfer.
func (p *PaymentData) Validate() error {
	if p.PaymentDate.IsZero() {
		return apperror.NewValidation("payment date is required").
			WithDetail("field", "payment.paymentDate")
	}
	if !p.Amount.IsPositive() {
		return apperror.NewValidation("payment amount must be positive").
			WithDetail("field", "payment.amount")
	}
	if p.Method == "" {
		p.Method = MethodBankTransfer
	}
	if !p.Method.IsValid() {
		return apperror.NewValidation("unknown payment method").
			WithDetail("field", "payment.method").
			WithDetail("value", string(p.Method))
	}
	if len([]rune(p.Note)) > MaxPaymentNoteLength {
		return apperror.NewValidation("payment note is too long").
			WithDetail("field", "payment.note").
			WithDetail("max", MaxPaymentNoteLength)
	}
	return nil
}
