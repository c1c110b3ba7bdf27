package invoice

import (
	"time"

	"docflow/internal/core/apperror"
	"docflow/internal/core/id"
)

// ReminderType selects the date a reminder counts from.
type ReminderType string

const (
	ReminderBeforeDue  ReminderType = "BEFORE_DUE"
	ReminderAfterDue   ReminderType = "AFTER_DUE"
	ReminderAfterIssue ReminderType = "AFTER_ISSUE"
)

// IsValid reports whether t is a known type.
func (t ReminderType) IsValid() bool {
	switch t {
	case ReminderBeforeDue, ReminderAfterDue, ReminderAfterIssue:
		return true
	}
	return false
}

// MaxReminderDays bounds DaysBeforeOrAfter.
const MaxReminderDays = 365

// ReminderSetting is one reminder rule of an invoice.
type ReminderSetting struct {
	ID                id.ID        `db:"id" json:"id"`
	InvoiceID         id.ID        `db:"invoice_id" json:"invoiceId"`
	Type              ReminderType `db:"type" json:"type"`
	DaysBeforeOrAfter int          `db:"days_before_or_after" json:"daysBeforeOrAfter"`
	Enabled           bool         `db:"enabled" json:"enabled"`
	LastSentAt        *time.Time   `db:"last_sent_at" json:"lastSentAt,omitempty"`
}

// Validate checks type and day range. index is used for error details.
func (r *ReminderSetting) Validate(index int) error {
	if !r.Type.IsValid() {
		return apperror.NewValidation("unknown reminder type").
			WithDetail("field", "reminders.type").
			WithDetail("index", index).
			WithDetail("value", string(r.Type))
	}
	if r.DaysBeforeOrAfter < 0 || r.DaysBeforeOrAfter > MaxReminderDays {
		return apperror.NewValidation("reminder days must be between 0 and 365").
			WithDetail("field", "reminders.daysBeforeOrAfter").
			WithDetail("index", index)
	}
	return nil
}

// SentOn reports whether the reminder already fired on the calendar day of
// now in loc.
func (r *ReminderSetting) SentOn(now time.Time, loc *time.Location) bool {
	if r.LastSentAt == nil {
		return false
	}
	y1, m1, d1 := r.LastSentAt.In(loc).Date()
	y2, m2, d2 := now.In(loc).Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// ReminderTarget is an enabled reminder joined with its invoice header.
type ReminderTarget struct {
	Setting ReminderSetting
	Invoice Invoice
}
