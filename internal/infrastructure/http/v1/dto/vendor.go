package dto

import (
	"docflow/internal/domain/catalogs/vendor"
)

// --- Request DTOs ---

// CreateVendorRequest is the request body for creating a vendor.
type CreateVendorRequest struct {
	Code               string  `json:"code"`
	Name               string  `json:"name" binding:"required"`
	Email              string  `json:"email" binding:"required"`
	RegistrationNumber *string `json:"registrationNumber"`
	Address            *string `json:"address"`
	Phone              *string `json:"phone"`
	ContactPerson      *string `json:"contactPerson"`
	Notes              *string `json:"notes"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateVendorRequest) ToEntity() *vendor.Vendor {
	v := vendor.NewVendor(r.Code, r.Name, r.Email)
	v.RegistrationNumber = r.RegistrationNumber
	v.Address = r.Address
	v.Phone = r.Phone
	v.ContactPerson = r.ContactPerson
	v.Notes = r.Notes
	return v
}

// UpdateVendorRequest is the request body for updating a vendor.
type UpdateVendorRequest struct {
	CreateVendorRequest
	Version int `json:"version" binding:"required,min=1"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateVendorRequest) ApplyTo(v *vendor.Vendor) {
	if r.Code != "" {
		v.Code = r.Code
	}
	v.Name = r.Name
	v.Email = r.Email
	v.RegistrationNumber = r.RegistrationNumber
	v.Address = r.Address
	v.Phone = r.Phone
	v.ContactPerson = r.ContactPerson
	v.Notes = r.Notes
	v.Version = r.Version
}

// --- Response DTOs ---

// VendorResponse is the response body for a vendor.
type VendorResponse struct {
	BaseResponse
	Code               string  `json:"code"`
	Name               string  `json:"name"`
	Email              string  `json:"email"`
	RegistrationNumber *string `json:"registrationNumber,omitempty"`
	QualifiedIssuer    bool    `json:"qualifiedIssuer"`
	Address            *string `json:"address,omitempty"`
	Phone              *string `json:"phone,omitempty"`
	ContactPerson      *string `json:"contactPerson,omitempty"`
	Notes              *string `json:"notes,omitempty"`
}

// FromVendor creates response DTO from domain entity.
func FromVendor(v *vendor.Vendor) VendorResponse {
	return VendorResponse{
		BaseResponse:       FromBaseCatalog(v.BaseCatalog),
		Code:               v.Code,
		Name:               v.Name,
		Email:              v.Email,
		RegistrationNumber: v.RegistrationNumber,
		QualifiedIssuer:    v.IsQualifiedIssuer(),
		Address:            v.Address,
		Phone:              v.Phone,
		ContactPerson:      v.ContactPerson,
		Notes:              v.Notes,
	}
}
