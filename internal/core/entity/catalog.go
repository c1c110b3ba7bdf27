package entity

import (
	"context"
	"strings"

	"docflow/internal/core/apperror"
)

// Catalog is the base type for reference data such as vendors.
type Catalog struct {
	BaseCatalog

	// Code is a short human-readable identifier, unique per catalog
	Code string `db:"code" json:"code"`

	// Name is the display name
	Name string `db:"name" json:"name"`
}

// NewCatalog creates a new Catalog with generated ID.
func NewCatalog(code, name string) Catalog {
	return Catalog{
		BaseCatalog: NewBaseCatalog(),
		Code:        code,
		Name:        name,
	}
}

// Validate implements Validatable interface.
func (c *Catalog) Validate(ctx context.Context) error {
	if strings.TrimSpace(c.Name) == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	return nil
}

// GetCode returns the catalog code.
func (c *Catalog) GetCode() string {
	return c.Code
}

// SetCode assigns the catalog code.
func (c *Catalog) SetCode(code string) {
	c.Code = code
}
