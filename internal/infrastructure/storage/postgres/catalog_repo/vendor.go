package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"docflow/internal/domain/catalogs/vendor"
	"docflow/internal/infrastructure/storage/postgres"
)

// Compile-time interface check
var _ vendor.Repository = (*VendorRepo)(nil)

// VendorRepo implements vendor.Repository.
type VendorRepo struct {
	*BaseCatalogRepo[*vendor.Vendor]
}

// NewVendorRepo creates a new vendor repository.
func NewVendorRepo(txManager *postgres.TxManager) *VendorRepo {
	return &VendorRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			"cat_vendors",
			postgres.ExtractDBColumns[vendor.Vendor](),
			func() *vendor.Vendor { return &vendor.Vendor{} },
		),
	}
}

// FindByRegistrationNumber retrieves a live vendor by its qualified invoice number.
func (r *VendorRepo) FindByRegistrationNumber(ctx context.Context, number string) (*vendor.Vendor, error) {
	return r.GetOne(ctx, squirrel.Eq{"registration_number": number, "deletion_mark": false}, number)
}
