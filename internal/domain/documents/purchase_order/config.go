package purchase_order

import "docflow/internal/core/numerator"

const (
	// NumeratorStrategy defines the numbering strategy for purchase orders.
	// Orders are sent to vendors, so numbers must not skip.
	NumeratorStrategy = numerator.StrategyStrict
)

// Numbering returns the PO-000001 scheme.
func Numbering() numerator.Config {
	return numerator.PurchaseOrderConfig()
}
