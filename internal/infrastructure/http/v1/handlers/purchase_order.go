package handlers

import (
	"docflow/internal/domain/documents/purchase_order"
	"docflow/internal/domain/lifecycle"
	"docflow/internal/infrastructure/http/v1/dto"
)

// PurchaseOrderHandler handles HTTP requests for purchase orders.
type PurchaseOrderHandler struct {
	*DocumentHandler[*purchase_order.PurchaseOrder, dto.CreatePurchaseOrderRequest, dto.UpdatePurchaseOrderRequest, dto.PurchaseOrderResponse]
}

// NewPurchaseOrderHandler creates a new purchase order handler.
func NewPurchaseOrderHandler(
	base *BaseHandler,
	service DocumentService[*purchase_order.PurchaseOrder],
	machine *lifecycle.Machine,
) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{
		DocumentHandler: NewDocumentHandler(base, DocumentHandlerConfig[
			*purchase_order.PurchaseOrder,
			dto.CreatePurchaseOrderRequest,
			dto.UpdatePurchaseOrderRequest,
			dto.PurchaseOrderResponse,
		]{
			Service:      service,
			Machine:      machine,
			MapCreateDTO: (*dto.CreatePurchaseOrderRequest).ToEntity,
			MapUpdateDTO: (*dto.UpdatePurchaseOrderRequest).ApplyTo,
			MapToDTO:     dto.FromPurchaseOrder,
		}),
	}
}
