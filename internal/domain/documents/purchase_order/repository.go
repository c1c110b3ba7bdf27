package purchase_order

import (
	"context"

	"docflow/internal/core/id"
	"docflow/internal/domain/documents"
)

// Repository defines operations for purchase orders.
type Repository interface {
	documents.Repository[*PurchaseOrder]
}

// InvoiceLinks reports invoices that reference a purchase order.
type InvoiceLinks interface {
	CountByPurchaseOrder(ctx context.Context, poID id.ID) (int, error)
}
