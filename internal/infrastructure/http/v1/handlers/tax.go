package handlers

import (
	"github.com/gin-gonic/gin"

	"docflow/internal/domain/tax"
	"docflow/internal/infrastructure/http/v1/dto"
)

// TaxHandler exposes the tax calculator for ad hoc lines.
type TaxHandler struct {
	*BaseHandler
}

// NewTaxHandler creates a new tax handler.
func NewTaxHandler(base *BaseHandler) *TaxHandler {
	return &TaxHandler{BaseHandler: base}
}

// Compute handles POST /tax/compute
func (h *TaxHandler) Compute(c *gin.Context) {
	var req dto.ComputeTaxRequest
	if !h.BindJSON(c, &req) {
		return
	}
	summary, err := tax.Compute(dto.ToLineItems(req.Items))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromTaxSummary(summary))
}
