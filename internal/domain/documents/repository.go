// Package documents holds what purchase orders and invoices share:
// storage contracts, list filters and the generic document service.
package documents

import (
	"context"
	"time"

	"docflow/internal/core/entity"
	"docflow/internal/core/id"
	"docflow/internal/domain"
	"docflow/internal/domain/lifecycle"
)

// Entity is a concrete document type (pointer to PurchaseOrder or Invoice).
type Entity interface {
	lifecycle.Document
	entity.Validatable
}

// Repository is the storage shared by both document kinds.
type Repository[T Entity] interface {
	Create(ctx context.Context, doc T) error

	// GetByID returns the header without items.
	GetByID(ctx context.Context, docID id.ID) (T, error)

	// GetForUpdate locks the row and returns the header with items.
	GetForUpdate(ctx context.Context, docID id.ID) (T, error)

	// Update saves the header with optimistic locking.
	Update(ctx context.Context, doc T) error

	SetDeletionMark(ctx context.Context, docID id.ID, marked bool) error

	GetItems(ctx context.Context, docID id.ID) ([]entity.LineItem, error)
	ReplaceItems(ctx context.Context, docID id.ID, items []entity.LineItem) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[T], error)
}

// ListFilter narrows document lists.
type ListFilter struct {
	domain.ListFilter

	Statuses []entity.Status
	VendorID *id.ID
	DateFrom *time.Time
	DateTo   *time.Time
	// DueBefore selects documents whose due date is strictly earlier
	DueBefore *time.Time
}

// VendorChecker confirms a vendor reference before a document is saved.
type VendorChecker interface {
	Exists(ctx context.Context, vendorID id.ID) (bool, error)
}

// ItemAuditor records header and item changes of editable documents.
type ItemAuditor interface {
	LogItemsChange(ctx context.Context, kind string, docID id.ID, before, after *entity.Document) error
}
