package document_repo

import (
	"docflow/internal/domain/documents/purchase_order"
	"docflow/internal/infrastructure/storage/postgres"
)

// Compile-time interface check
var _ purchase_order.Repository = (*PurchaseOrderRepo)(nil)

// PurchaseOrderRepo implements purchase_order.Repository.
type PurchaseOrderRepo struct {
	*BaseDocumentRepo[*purchase_order.PurchaseOrder]
}

// NewPurchaseOrderRepo creates a new purchase order repository.
func NewPurchaseOrderRepo(txManager *postgres.TxManager) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txManager,
			"doc_purchase_orders",
			"doc_purchase_order_items",
			postgres.ExtractDBColumns[purchase_order.PurchaseOrder](),
			func() *purchase_order.PurchaseOrder { return &purchase_order.PurchaseOrder{} },
		),
	}
}
