package invoice

import (
	"context"
	"time"

	"docflow/internal/core/entity"
	"docflow/internal/core/id"
	"docflow/internal/domain/documents"
)

// Repository defines operations for invoices.
type Repository interface {
	documents.Repository[*Invoice]

	// CountByPurchaseOrder counts live invoices referencing a purchase order.
	CountByPurchaseOrder(ctx context.Context, poID id.ID) (int, error)
}

// PaymentRepository stores payments.
type PaymentRepository interface {
	CreatePayment(ctx context.Context, p Payment) error
	ListPayments(ctx context.Context, invoiceID id.ID) ([]Payment, error)
	CountPayments(ctx context.Context, invoiceID id.ID) (int, error)
}

// ReminderRepository stores reminder settings.
type ReminderRepository interface {
	// ReplaceReminders deletes the invoice's settings and inserts the given ones.
	ReplaceReminders(ctx context.Context, invoiceID id.ID, settings []ReminderSetting) error
	ListReminders(ctx context.Context, invoiceID id.ID) ([]ReminderSetting, error)

	// ListActive returns enabled settings of live invoices whose status is
	// not in excluded.
	ListActive(ctx context.Context, excluded []entity.Status) ([]ReminderTarget, error)

	// ClaimReminder stamps last_sent_at with at unless it is already on or
	// after dayStart. It reports whether this call made the claim.
	ClaimReminder(ctx context.Context, reminderID id.ID, at, dayStart time.Time) (bool, error)
}
