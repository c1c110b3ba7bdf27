package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"docflow/internal/core/id"
	"docflow/internal/domain"
	"docflow/internal/domain/catalogs/vendor"
	"docflow/internal/infrastructure/http/v1/dto"
)

// VendorService is implemented by vendor.Service.
type VendorService interface {
	Create(ctx context.Context, v *vendor.Vendor) error
	Update(ctx context.Context, v *vendor.Vendor) error
	GetByID(ctx context.Context, vendorID id.ID) (*vendor.Vendor, error)
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*vendor.Vendor], error)
	Delete(ctx context.Context, vendorID id.ID) error
}

// VendorHandler handles HTTP requests for the vendor catalog.
type VendorHandler struct {
	*BaseHandler
	service VendorService
}

// NewVendorHandler creates a new vendor handler.
func NewVendorHandler(base *BaseHandler, service VendorService) *VendorHandler {
	return &VendorHandler{BaseHandler: base, service: service}
}

// List handles GET /vendors
func (h *VendorHandler) List(c *gin.Context) {
	var q dto.PageQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter := q.ToFilter()
	if filter.OrderBy == "" {
		filter.OrderBy = "name"
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(result, dto.FromVendor))
}

// Get handles GET /vendors/:id
func (h *VendorHandler) Get(c *gin.Context) {
	vendorID, ok := h.ParamID(c)
	if !ok {
		return
	}
	v, err := h.service.GetByID(c.Request.Context(), vendorID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromVendor(v))
}

// Create handles POST /vendors
func (h *VendorHandler) Create(c *gin.Context) {
	var req dto.CreateVendorRequest
	if !h.BindJSON(c, &req) {
		return
	}
	v := req.ToEntity()
	if err := h.service.Create(c.Request.Context(), v); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromVendor(v))
}

// Update handles PUT /vendors/:id
func (h *VendorHandler) Update(c *gin.Context) {
	vendorID, ok := h.ParamID(c)
	if !ok {
		return
	}
	var req dto.UpdateVendorRequest
	if !h.BindJSON(c, &req) {
		return
	}

	v, err := h.service.GetByID(c.Request.Context(), vendorID)
	if err != nil {
		h.Error(c, err)
		return
	}
	req.ApplyTo(v)

	if err := h.service.Update(c.Request.Context(), v); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromVendor(v))
}

// Delete handles DELETE /vendors/:id
func (h *VendorHandler) Delete(c *gin.Context) {
	vendorID, ok := h.ParamID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), vendorID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}
