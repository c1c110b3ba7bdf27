package dto

import (
	"time"

	"docflow/internal/core/id"
	"docflow/internal/core/types"
	"docflow/internal/domain/documents/invoice"
	"docflow/internal/domain/lifecycle"
)

// CreateInvoiceRequest represents a request to create an invoice.
type CreateInvoiceRequest struct {
	DocumentFields
	PurchaseOrderID *string `json:"purchaseOrderId"`
	PaymentTerms    string  `json:"paymentTerms"`
}

func (r *CreateInvoiceRequest) apply(inv *invoice.Invoice) error {
	if err := r.DocumentFields.ApplyTo(&inv.Document); err != nil {
		return err
	}
	poID, err := ParseOptionalID(r.PurchaseOrderID)
	if err != nil {
		return invalidField("purchaseOrderId")
	}
	inv.PurchaseOrderID = poID
	inv.PaymentTerms = r.PaymentTerms
	return nil
}

// ToEntity converts request to domain entity.
func (r *CreateInvoiceRequest) ToEntity() (*invoice.Invoice, error) {
	inv := invoice.NewInvoice(id.Nil(), r.Date, r.Date)
	if err := r.apply(inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// UpdateInvoiceRequest replaces the header and items.
type UpdateInvoiceRequest struct {
	CreateInvoiceRequest
	Version int `json:"version" binding:"required,min=1"`
}

// ApplyTo applies updates to an existing entity.
func (r *UpdateInvoiceRequest) ApplyTo(inv *invoice.Invoice) error {
	if err := r.apply(inv); err != nil {
		return err
	}
	inv.Version = r.Version
	return nil
}

// InvoiceResponse is the response body for an invoice.
type InvoiceResponse struct {
	DocumentResponse
	PurchaseOrderID *string `json:"purchaseOrderId,omitempty"`
	PaymentTerms    string  `json:"paymentTerms,omitempty"`
}

// FromInvoice creates response DTO from domain entity.
func FromInvoice(inv *invoice.Invoice, machine *lifecycle.Machine) InvoiceResponse {
	resp := InvoiceResponse{
		DocumentResponse: FromDocument(&inv.Document, machine),
		PaymentTerms:     inv.PaymentTerms,
	}
	if inv.PurchaseOrderID != nil {
		s := inv.PurchaseOrderID.String()
		resp.PurchaseOrderID = &s
	}
	return resp
}

// --- Payments ---

// RegisterPaymentRequest records a payment and moves the invoice to PAID.
type RegisterPaymentRequest struct {
	PaymentRequest
	Comment string `json:"comment"`
}

// PaymentResponse is one recorded payment.
type PaymentResponse struct {
	ID          string      `json:"id"`
	PaymentDate time.Time   `json:"paymentDate"`
	Amount      types.Money `json:"amount"`
	Method      string      `json:"method"`
	Note        string      `json:"note,omitempty"`
	CreatedBy   string      `json:"createdBy"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// FromPayments maps recorded payments.
func FromPayments(payments []invoice.Payment) []PaymentResponse {
	out := make([]PaymentResponse, len(payments))
	for i, p := range payments {
		out[i] = PaymentResponse{
			ID:          p.ID.String(),
			PaymentDate: p.PaymentDate,
			Amount:      p.Amount,
			Method:      string(p.Method),
			Note:        p.Note,
			CreatedBy:   p.CreatedBy,
			CreatedAt:   p.CreatedAt,
		}
	}
	return out
}

// --- Reminders ---

// ReminderSettingRequest is one reminder rule.
type ReminderSettingRequest struct {
	Type              string `json:"type" binding:"required"`
	DaysBeforeOrAfter int    `json:"daysBeforeOrAfter"`
	Enabled           *bool  `json:"enabled"`
}

// SetRemindersRequest replaces every reminder of an invoice.
type SetRemindersRequest struct {
	Reminders []ReminderSettingRequest `json:"reminders"`
}

// ToSettings converts the request. Enabled defaults to true.
func (r *SetRemindersRequest) ToSettings() []invoice.ReminderSetting {
	out := make([]invoice.ReminderSetting, len(r.Reminders))
	for i, rs := range r.Reminders {
		enabled := true
		if rs.Enabled != nil {
			enabled = *rs.Enabled
		}
		out[i] = invoice.ReminderSetting{
			Type:              invoice.ReminderType(rs.Type),
			DaysBeforeOrAfter: rs.DaysBeforeOrAfter,
			Enabled:           enabled,
		}
	}
	return out
}

// ReminderSettingResponse is one stored reminder rule.
type ReminderSettingResponse struct {
	ID                string     `json:"id"`
	Type              string     `json:"type"`
	DaysBeforeOrAfter int        `json:"daysBeforeOrAfter"`
	Enabled           bool       `json:"enabled"`
	LastSentAt        *time.Time `json:"lastSentAt,omitempty"`
}

// FromReminders maps stored reminder rules.
func FromReminders(settings []invoice.ReminderSetting) []ReminderSettingResponse {
	out := make([]ReminderSettingResponse, len(settings))
	for i, s := range settings {
		out[i] = ReminderSettingResponse{
			ID:                s.ID.String(),
			Type:              string(s.Type),
			DaysBeforeOrAfter: s.DaysBeforeOrAfter,
			Enabled:           s.Enabled,
			LastSentAt:        s.LastSentAt,
		}
	}
	return out
}
