package invoice

import (
	"docflow/internal/core/entity"
	"docflow/internal/core/numerator"
)

const (
	// NumeratorStrategy defines the numbering strategy for invoices.
	// Invoices are accounting documents, so numbers must not skip.
	NumeratorStrategy = numerator.StrategyStrict
)

// Numbering returns the INV-2025-00001 scheme.
func Numbering() numerator.Config {
	return numerator.InvoiceConfig()
}

// ReminderExcludedStatuses never receive reminders.
var ReminderExcludedStatuses = []entity.Status{
	entity.StatusPaid,
	entity.StatusRejected,
	entity.StatusDraft,
	entity.StatusCancelled,
}
