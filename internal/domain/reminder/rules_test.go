package reminder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"docflow/internal/core/id"
	"docflow/internal/domain/documents/invoice"
	"docflow/internal/domain/notification"
)

func target(typ invoice.ReminderType, days int, issue time.Time, due *time.Time) invoice.ReminderTarget {
	inv := invoice.NewInvoice(id.New(), issue, issue)
	inv.DueDate = due
	return invoice.ReminderTarget{
		Setting: invoice.ReminderSetting{Type: typ, DaysBeforeOrAfter: days, Enabled: true},
		Invoice: *inv,
	}
}

func TestEvaluate(t *testing.T) {
	jst := time.FixedZone("JST", 9*60*60)
	today := time.Date(2025, 6, 10, 0, 0, 0, 0, jst)
	date := func(d int) time.Time { return time.Date(2025, 6, d, 0, 0, 0, 0, time.UTC) }
	ptr := func(t time.Time) *time.Time { return &t }

	tests := []struct {
		name   string
		target invoice.ReminderTarget
		fire   bool
		class  Classification
	}{
		{"before due exact", target(invoice.ReminderBeforeDue, 3, date(1), ptr(date(13))), true, Upcoming},
		{"before due off by one", target(invoice.ReminderBeforeDue, 3, date(1), ptr(date(14))), false, ""},
		{"before due zero days", target(invoice.ReminderBeforeDue, 0, date(1), ptr(date(10))), true, Upcoming},
		{"before due without due date", target(invoice.ReminderBeforeDue, 3, date(1), nil), false, ""},
		{"after due exact", target(invoice.ReminderAfterDue, 2, date(1), ptr(date(8))), true, Overdue},
		{"after due not yet", target(invoice.ReminderAfterDue, 2, date(1), ptr(date(9))), false, ""},
		{"after issue before due", target(invoice.ReminderAfterIssue, 5, date(5), ptr(date(20))), true, Upcoming},
		{"after issue on due date", target(invoice.ReminderAfterIssue, 5, date(5), ptr(date(10))), true, Upcoming},
		{"after issue past due", target(invoice.ReminderAfterIssue, 5, date(5), ptr(date(9))), true, Overdue},
		{"after issue wrong day", target(invoice.ReminderAfterIssue, 4, date(5), ptr(date(20))), false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fire, class := Evaluate(tt.target, today)
			assert.Equal(t, tt.fire, fire)
			if tt.fire {
				assert.Equal(t, tt.class, class)
			}
		})
	}
}

func TestClassification_Template(t *testing.T) {
	assert.Equal(t, notification.TemplateReminderUpcoming, Upcoming.Template())
	assert.Equal(t, notification.TemplateReminderOverdue, Overdue.Template())
}
