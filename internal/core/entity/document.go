package entity

import (
	"context"
	"time"

	"docflow/internal/core/apperror"
	"docflow/internal/core/id"
	"docflow/internal/core/types"
)

// MaxNotesLength bounds the free-form notes on a document header.
const MaxNotesLength = 2000

// Document is the shared header of purchase orders and invoices.
type Document struct {
	BaseDocument

	// Number is the human-facing document number (PO-000001, INV-2025-00001)
	Number string `db:"number" json:"number"`

	// VendorID references the vendor catalog
	VendorID id.ID `db:"vendor_id" json:"vendorId"`

	// Status is the current lifecycle state
	Status Status `db:"status" json:"status"`

	// Date is the issue date (invoices) or order date (purchase orders)
	Date time.Time `db:"date" json:"date"`

	// DueDate is the payment due date (invoices) or delivery date (purchase orders)
	DueDate *time.Time `db:"due_date" json:"dueDate,omitempty"`

	// Totals, always equal to the tax summary of Items at last save
	Subtotal    types.Money `db:"subtotal" json:"subtotal"`
	TaxAmount   types.Money `db:"tax_amount" json:"taxAmount"`
	TotalAmount types.Money `db:"total_amount" json:"totalAmount"`

	Notes string `db:"notes" json:"notes,omitempty"`

	// Items is the table part, stored separately
	Items []LineItem `db:"-" json:"items"`
}

// NewDocument creates a DRAFT document for the given vendor.
func NewDocument(vendorID id.ID, date time.Time) Document {
	return Document{
		BaseDocument: NewBaseDocument(),
		VendorID:     vendorID,
		Status:       StatusDraft,
		Date:         date,
		Subtotal:     types.Zero(),
		TaxAmount:    types.Zero(),
		TotalAmount:  types.Zero(),
		Items:        make([]LineItem, 0),
	}
}

// Validate implements Validatable interface.
func (d *Document) Validate(ctx context.Context) error {
	if id.IsNil(d.VendorID) {
		return apperror.NewValidation("vendor is required").
			WithDetail("field", "vendorId")
	}

	if d.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}

	if d.DueDate != nil && d.DueDate.Before(d.Date) {
		return apperror.NewValidation("due date must not be before the document date").
			WithDetail("field", "dueDate")
	}

	if len([]rune(d.Notes)) > MaxNotesLength {
		return apperror.NewValidation("notes are too long").
			WithDetail("field", "notes").
			WithDetail("max", MaxNotesLength)
	}

	return nil
}

// GetStatus returns the lifecycle state.
func (d *Document) GetStatus() Status {
	return d.Status
}

// SetStatus moves the document to s. Callers are expected to have validated
// the edge against the lifecycle table.
func (d *Document) SetStatus(s Status) {
	d.Status = s
}

// GetDocument exposes the shared header to generic code.
func (d *Document) GetDocument() *Document {
	return d
}

// SetItems replaces the table part and stamps document references and line numbers.
func (d *Document) SetItems(items []LineItem) {
	d.Items = make([]LineItem, len(items))
	for i, item := range items {
		if id.IsNil(item.ID) {
			item.ID = id.New()
		}
		item.DocumentID = d.ID
		item.LineNo = i + 1
		d.Items[i] = item
	}
}

// ApplyTotals stores a computed tax summary on the header.
func (d *Document) ApplyTotals(subtotal, tax, total types.Money) {
	d.Subtotal = subtotal
	d.TaxAmount = tax
	d.TotalAmount = total
}

// CanModify checks that header and items may still be edited.
func (d *Document) CanModify() error {
	if !d.Status.IsEditable() {
		return apperror.NewBusinessRule(
			apperror.CodeDocumentLocked,
			"document can only be edited in DRAFT or PENDING status",
		).WithDetail("document_id", d.ID.String()).
			WithDetail("status", d.Status.String())
	}
	return nil
}

// IsPastDue reports whether the due date is strictly before the calendar day of now in loc.
func (d *Document) IsPastDue(now time.Time, loc *time.Location) bool {
	if d.DueDate == nil {
		return false
	}
	return DateOnly(*d.DueDate, loc).Before(CalendarDay(now, loc))
}

// CalendarDay truncates t to midnight of its calendar date in loc.
func CalendarDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, day := t.In(loc).Date()
	return time.Date(y, m, day, 0, 0, 0, 0, loc)
}

// DateOnly keeps the year, month and day of a date column as written and
// places it at midnight in loc. Dates are not shifted between zones.
func DateOnly(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, day := t.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, loc)
}

// DaysBetween returns the whole calendar days from a to b, both taken as dates.
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	from := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	to := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}
