package export

import (
	"context"
	"fmt"

	"docflow/internal/core/id"
	"docflow/internal/domain"
	"docflow/internal/domain/catalogs/vendor"
	"docflow/internal/domain/documents"
	"docflow/internal/domain/documents/invoice"
)

// MaxRows caps a single export.
const MaxRows = 5000

const pageSize = 200

// InvoiceSource lists invoices and loads them with items.
type InvoiceSource interface {
	List(ctx context.Context, filter documents.ListFilter) (domain.ListResult[*invoice.Invoice], error)
	GetByID(ctx context.Context, invoiceID id.ID) (*invoice.Invoice, error)
}

// VendorSource resolves vendor names.
type VendorSource interface {
	GetByID(ctx context.Context, vendorID id.ID) (*vendor.Vendor, error)
}

// CollectInvoiceRows pages through invoices matching filter and builds
// export rows. Vendors that cannot be loaded are shown by id.
func CollectInvoiceRows(ctx context.Context, invoices InvoiceSource, vendors VendorSource, filter documents.ListFilter) ([]InvoiceRow, error) {
	names := make(map[id.ID]string)
	vendorName := func(vendorID id.ID) string {
		if n, ok := names[vendorID]; ok {
			return n
		}
		n := vendorID.String()
		if v, err := vendors.GetByID(ctx, vendorID); err == nil {
			n = v.Name
		}
		names[vendorID] = n
		return n
	}

	filter.Limit = pageSize
	filter.Offset = 0
	if filter.OrderBy == "" {
		filter.OrderBy = "number"
	}

	rows := make([]InvoiceRow, 0)
	for {
		page, err := invoices.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		for _, head := range page.Items {
			if len(rows) >= MaxRows {
				return rows, nil
			}
			inv, err := invoices.GetByID(ctx, head.ID)
			if err != nil {
				return nil, fmt.Errorf("load invoice %s: %w", head.Number, err)
			}
			row, err := NewInvoiceRow(inv, vendorName(inv.VendorID))
			if err != nil {
				return nil, fmt.Errorf("invoice %s: %w", inv.Number, err)
			}
			rows = append(rows, row)
		}
		if len(page.Items) < pageSize {
			return rows, nil
		}
		filter.Offset += pageSize
	}
}
