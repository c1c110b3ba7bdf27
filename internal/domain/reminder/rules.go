// Package reminder runs the daily scan that sends invoice reminders and
// moves documents past their due date into their overdue status.
package reminder

import (
	"time"

	"docflow/internal/core/entity"
	"docflow/internal/domain/documents/invoice"
	"docflow/internal/domain/notification"
)

// Classification tells the vendor whether payment is coming up or late.
type Classification string

const (
	Upcoming Classification = "upcoming"
	Overdue  Classification = "overdue"
)

// Template returns the notification template for the classification.
func (c Classification) Template() notification.Template {
	if c == Overdue {
		return notification.TemplateReminderOverdue
	}
	return notification.TemplateReminderUpcoming
}

// Evaluate decides whether a reminder fires on today. today must be a
// calendar day in the business location. Day counts must match exactly.
func Evaluate(t invoice.ReminderTarget, today time.Time) (bool, Classification) {
	inv := t.Invoice
	days := t.Setting.DaysBeforeOrAfter

	switch t.Setting.Type {
	case invoice.ReminderBeforeDue:
		if inv.DueDate == nil {
			return false, ""
		}
		return entity.DaysBetween(today, *inv.DueDate) == days, Upcoming

	case invoice.ReminderAfterDue:
		if inv.DueDate == nil {
			return false, ""
		}
		return entity.DaysBetween(*inv.DueDate, today) == days, Overdue

	case invoice.ReminderAfterIssue:
		if entity.DaysBetween(inv.Date, today) != days {
			return false, ""
		}
		if inv.DueDate != nil && entity.DaysBetween(*inv.DueDate, today) > 0 {
			return true, Overdue
		}
		return true, Upcoming
	}
	return false, ""
}
