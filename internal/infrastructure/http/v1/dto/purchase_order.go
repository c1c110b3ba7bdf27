package dto

import (
	"docflow/internal/core/id"
	"docflow/internal/domain/documents/purchase_order"
	"docflow/internal/domain/lifecycle"
)

// CreatePurchaseOrderRequest represents a request to create a purchase order.
type CreatePurchaseOrderRequest struct {
	DocumentFields
	DeliveryAddress string `json:"deliveryAddress"`
	PaymentTerms    string `json:"paymentTerms"`
}

// ToEntity converts request to domain entity.
func (r *CreatePurchaseOrderRequest) ToEntity() (*purchase_order.PurchaseOrder, error) {
	po := purchase_order.NewPurchaseOrder(id.Nil(), r.Date)
	if err := r.DocumentFields.ApplyTo(&po.Document); err != nil {
		return nil, err
	}
	po.DeliveryAddress = r.DeliveryAddress
	po.PaymentTerms = r.PaymentTerms
	return po, nil
}

// UpdatePurchaseOrderRequest replaces the header and items.
type UpdatePurchaseOrderRequest struct {
	CreatePurchaseOrderRequest
	Version int `json:"version" binding:"required,min=1"`
}

// ApplyTo applies updates to an existing entity.
func (r *UpdatePurchaseOrderRequest) ApplyTo(po *purchase_order.PurchaseOrder) error {
	if err := r.DocumentFields.ApplyTo(&po.Document); err != nil {
		return err
	}
	po.DeliveryAddress = r.DeliveryAddress
	po.PaymentTerms = r.PaymentTerms
	po.Version = r.Version
	return nil
}

// PurchaseOrderResponse is the response body for a purchase order.
type PurchaseOrderResponse struct {
	DocumentResponse
	DeliveryAddress string `json:"deliveryAddress,omitempty"`
	PaymentTerms    string `json:"paymentTerms,omitempty"`
}

// FromPurchaseOrder creates response DTO from domain entity.
func FromPurchaseOrder(po *purchase_order.PurchaseOrder, machine *lifecycle.Machine) PurchaseOrderResponse {
	return PurchaseOrderResponse{
		DocumentResponse: FromDocument(&po.Document, machine),
		DeliveryAddress:  po.DeliveryAddress,
		PaymentTerms:     po.PaymentTerms,
	}
}
