package dto

import (
	"slices"
	"strings"
	"time"

	"docflow/internal/core/apperror"
	"docflow/internal/core/entity"
	"docflow/internal/core/id"
	"docflow/internal/core/types"
	"docflow/internal/domain/audit"
	"docflow/internal/domain/documents"
	"docflow/internal/domain/lifecycle"
	"docflow/internal/domain/tax"
)

// --- Line items ---

// LineItemRequest represents a line in create/update/transition requests.
// Amounts accept JSON numbers or decimal strings. Lines are validated by
// the domain so errors carry the line number.
type LineItemRequest struct {
	ItemName    string      `json:"itemName"`
	Quantity    int         `json:"quantity"`
	UnitPrice   types.Money `json:"unitPrice"`
	TaxRate     types.Rate  `json:"taxRate"`
	Description string      `json:"description,omitempty"`
	Category    string      `json:"category,omitempty"`
}

// ToLineItems converts request lines to domain items. A nil slice stays nil.
func ToLineItems(lines []LineItemRequest) []entity.LineItem {
	if lines == nil {
		return nil
	}
	items := make([]entity.LineItem, len(lines))
	for i, l := range lines {
		items[i] = entity.LineItem{
			ItemName:    l.ItemName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			TaxRate:     l.TaxRate,
			Description: l.Description,
			Category:    l.Category,
		}
	}
	return items
}

// LineItemResponse is one line of a document response.
type LineItemResponse struct {
	ID          string      `json:"id"`
	LineNo      int         `json:"lineNo"`
	ItemName    string      `json:"itemName"`
	Quantity    int         `json:"quantity"`
	UnitPrice   types.Money `json:"unitPrice"`
	TaxRate     types.Rate  `json:"taxRate"`
	Amount      types.Money `json:"amount"`
	Description string      `json:"description,omitempty"`
	Category    string      `json:"category,omitempty"`
}

func fromLineItems(items []entity.LineItem) []LineItemResponse {
	out := make([]LineItemResponse, len(items))
	for i, it := range items {
		out[i] = LineItemResponse{
			ID:          it.ID.String(),
			LineNo:      it.LineNo,
			ItemName:    it.ItemName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TaxRate:     it.TaxRate,
			Amount:      it.UnitPrice.Mul(types.Yen(int64(it.Quantity))),
			Description: it.Description,
			Category:    it.Category,
		}
	}
	return out
}

// --- Shared header ---

// DocumentFields are the editable header fields of both document kinds.
type DocumentFields struct {
	VendorID string            `json:"vendorId" binding:"required"`
	Date     time.Time         `json:"date" binding:"required"`
	DueDate  *time.Time        `json:"dueDate"`
	Notes    string            `json:"notes"`
	Items    []LineItemRequest `json:"items"`
}

// ApplyTo copies the fields onto a document header.
func (f *DocumentFields) ApplyTo(d *entity.Document) error {
	vendorID, err := id.Parse(f.VendorID)
	if err != nil {
		return invalidField("vendorId")
	}
	d.VendorID = vendorID
	d.Date = f.Date
	d.DueDate = f.DueDate
	d.Notes = f.Notes
	d.Items = ToLineItems(f.Items)
	if d.Items == nil {
		d.Items = []entity.LineItem{}
	}
	return nil
}

// DocumentResponse contains the shared header, items and tax breakdown.
type DocumentResponse struct {
	BaseResponse
	Number      string             `json:"number"`
	VendorID    string             `json:"vendorId"`
	Status      entity.Status      `json:"status"`
	Date        time.Time          `json:"date"`
	DueDate     *time.Time         `json:"dueDate,omitempty"`
	Subtotal    types.Money        `json:"subtotal"`
	TaxAmount   types.Money        `json:"taxAmount"`
	TotalAmount types.Money        `json:"totalAmount"`
	Notes       string             `json:"notes,omitempty"`
	Items       []LineItemResponse `json:"items,omitempty"`

	// TaxByRate is present when items were loaded
	TaxByRate map[string]tax.RateGroup `json:"taxByRate,omitempty"`

	// Transitions lists the statuses reachable from the current one
	Transitions []entity.Status `json:"transitions,omitempty"`
}

// FromDocument creates DocumentResponse from entity.Document.
func FromDocument(d *entity.Document, machine *lifecycle.Machine) DocumentResponse {
	resp := DocumentResponse{
		BaseResponse: FromBaseDocument(d.BaseDocument),
		Number:       d.Number,
		VendorID:     d.VendorID.String(),
		Status:       d.Status,
		Date:         d.Date,
		DueDate:      d.DueDate,
		Subtotal:     d.Subtotal,
		TaxAmount:    d.TaxAmount,
		TotalAmount:  d.TotalAmount,
		Notes:        d.Notes,
	}
	if len(d.Items) > 0 {
		resp.Items = fromLineItems(d.Items)
		if summary, err := tax.Compute(d.Items); err == nil {
			resp.TaxByRate = summary.ByRate
		}
	}
	if machine != nil {
		resp.Transitions = machine.Targets(d.Status)
	}
	return resp
}

// --- List ---

// DocumentListQuery holds list query parameters shared by both kinds.
type DocumentListQuery struct {
	PageQuery
	// Status is a comma separated list, e.g. SENT,APPROVED
	Status    string     `form:"status"`
	VendorID  string     `form:"vendorId"`
	DateFrom  *time.Time `form:"dateFrom" time_format:"2006-01-02"`
	DateTo    *time.Time `form:"dateTo" time_format:"2006-01-02"`
	DueBefore *time.Time `form:"dueBefore" time_format:"2006-01-02"`
}

// ToFilter converts the query to a document filter. Unknown statuses are
// rejected against machine.
func (q DocumentListQuery) ToFilter(machine *lifecycle.Machine) (documents.ListFilter, error) {
	f := documents.ListFilter{
		ListFilter: q.PageQuery.ToFilter(),
		DateFrom:   q.DateFrom,
		DateTo:     q.DateTo,
		DueBefore:  q.DueBefore,
	}
	if q.VendorID != "" {
		v, err := id.Parse(q.VendorID)
		if err != nil {
			return f, invalidField("vendorId")
		}
		f.VendorID = &v
	}
	if q.Status != "" {
		known := machine.Statuses()
		for _, raw := range strings.Split(q.Status, ",") {
			s := entity.Status(strings.ToUpper(strings.TrimSpace(raw)))
			if !slices.Contains(known, s) {
				return f, apperror.NewValidation("unknown status").
					WithDetail("field", "status").
					WithDetail("value", string(s))
			}
			f.Statuses = append(f.Statuses, s)
		}
	}
	return f, nil
}

// --- Transition ---

// PaymentRequest carries payment data for a transition into PAID.
type PaymentRequest struct {
	PaymentDate time.Time   `json:"paymentDate"`
	Amount      types.Money `json:"amount"`
	Method      string      `json:"method"`
	Note        string      `json:"note"`
}

// ToPaymentData converts the request to lifecycle payment data.
func (p *PaymentRequest) ToPaymentData() lifecycle.PaymentData {
	return lifecycle.PaymentData{
		PaymentDate: p.PaymentDate,
		Amount:      p.Amount,
		Method:      lifecycle.PaymentMethod(p.Method),
		Note:        p.Note,
	}
}

// TransitionRequest asks for a status change.
type TransitionRequest struct {
	Status         string            `json:"status" binding:"required"`
	Comment        string            `json:"comment"`
	ExpectedStatus string            `json:"expectedStatus"`
	Payment        *PaymentRequest   `json:"payment"`
	Items          []LineItemRequest `json:"items"`
}

// ToRequest converts the body into an engine request for docID.
func (r *TransitionRequest) ToRequest(docID id.ID) lifecycle.Request {
	req := lifecycle.Request{
		DocumentID:     docID,
		Target:         entity.Status(strings.ToUpper(strings.TrimSpace(r.Status))),
		Comment:        r.Comment,
		Items:          ToLineItems(r.Items),
		ExpectedStatus: entity.Status(strings.ToUpper(strings.TrimSpace(r.ExpectedStatus))),
	}
	if r.Payment != nil {
		pd := r.Payment.ToPaymentData()
		req.Payment = &pd
	}
	return req
}

// --- History ---

// HistoryEntryResponse is one status history row.
type HistoryEntryResponse struct {
	ID             string        `json:"id"`
	Status         entity.Status `json:"status"`
	PreviousStatus entity.Status `json:"previousStatus,omitempty"`
	Comment        string        `json:"comment,omitempty"`
	Actor          string        `json:"actor"`
	System         bool          `json:"system"`
	CreatedAt      time.Time     `json:"createdAt"`
}

// FromHistory maps history entries in order.
func FromHistory(entries []audit.StatusHistoryEntry) []HistoryEntryResponse {
	out := make([]HistoryEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = HistoryEntryResponse{
			ID:             e.ID.String(),
			Status:         e.Status,
			PreviousStatus: e.PreviousStatus,
			Comment:        e.Comment,
			Actor:          e.Actor.String(),
			System:         e.Actor.IsSystem(),
			CreatedAt:      e.CreatedAt,
		}
	}
	return out
}

func invalidField(field string) *apperror.AppError {
	return apperror.NewValidation("invalid " + field + " format").WithDetail("field", field)
}
