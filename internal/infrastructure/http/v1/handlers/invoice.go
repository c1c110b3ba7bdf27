package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"docflow/internal/core/apperror"
	"docflow/internal/core/id"
	"docflow/internal/domain/documents/invoice"
	"docflow/internal/domain/lifecycle"
	"docflow/internal/infrastructure/export"
	"docflow/internal/infrastructure/http/v1/dto"
)

// InvoiceService is implemented by invoice.Service.
type InvoiceService interface {
	DocumentService[*invoice.Invoice]
	RegisterPayment(ctx context.Context, invoiceID id.ID, data lifecycle.PaymentData, comment string) (*invoice.Invoice, error)
	ListPayments(ctx context.Context, invoiceID id.ID) ([]invoice.Payment, error)
	SetReminders(ctx context.Context, invoiceID id.ID, settings []invoice.ReminderSetting) ([]invoice.ReminderSetting, error)
	Reminders(ctx context.Context, invoiceID id.ID) ([]invoice.ReminderSetting, error)
}

// InvoiceHandler handles HTTP requests for invoices.
type InvoiceHandler struct {
	*DocumentHandler[*invoice.Invoice, dto.CreateInvoiceRequest, dto.UpdateInvoiceRequest, dto.InvoiceResponse]
	invoices InvoiceService
	vendors  export.VendorSource
	now      func() time.Time
}

// NewInvoiceHandler creates a new invoice handler.
func NewInvoiceHandler(
	base *BaseHandler,
	service InvoiceService,
	machine *lifecycle.Machine,
	vendors export.VendorSource,
) *InvoiceHandler {
	return &InvoiceHandler{
		DocumentHandler: NewDocumentHandler(base, DocumentHandlerConfig[
			*invoice.Invoice,
			dto.CreateInvoiceRequest,
			dto.UpdateInvoiceRequest,
			dto.InvoiceResponse,
		]{
			Service:      service,
			Machine:      machine,
			MapCreateDTO: (*dto.CreateInvoiceRequest).ToEntity,
			MapUpdateDTO: (*dto.UpdateInvoiceRequest).ApplyTo,
			MapToDTO:     dto.FromInvoice,
		}),
		invoices: service,
		vendors:  vendors,
		now:      time.Now,
	}
}

// RegisterPayment handles POST /invoices/:id/payments
func (h *InvoiceHandler) RegisterPayment(c *gin.Context) {
	invoiceID, ok := h.ParamID(c)
	if !ok {
		return
	}
	var req dto.RegisterPaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	inv, err := h.invoices.RegisterPayment(c.Request.Context(), invoiceID, req.ToPaymentData(), req.Comment)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromInvoice(inv, h.machine))
}

// ListPayments handles GET /invoices/:id/payments
func (h *InvoiceHandler) ListPayments(c *gin.Context) {
	invoiceID, ok := h.ParamID(c)
	if !ok {
		return
	}
	payments, err := h.invoices.ListPayments(c.Request.Context(), invoiceID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": dto.FromPayments(payments)})
}

// SetReminders handles PUT /invoices/:id/reminders
func (h *InvoiceHandler) SetReminders(c *gin.Context) {
	invoiceID, ok := h.ParamID(c)
	if !ok {
		return
	}
	var req dto.SetRemindersRequest
	if !h.BindJSON(c, &req) {
		return
	}

	saved, err := h.invoices.SetReminders(c.Request.Context(), invoiceID, req.ToSettings())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": dto.FromReminders(saved)})
}

// GetReminders handles GET /invoices/:id/reminders
func (h *InvoiceHandler) GetReminders(c *gin.Context) {
	invoiceID, ok := h.ParamID(c)
	if !ok {
		return
	}
	settings, err := h.invoices.Reminders(c.Request.Context(), invoiceID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": dto.FromReminders(settings)})
}

// Export handles GET /invoices/export?format=csv|pdf with the list filters.
func (h *InvoiceHandler) Export(c *gin.Context) {
	var q dto.DocumentListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter, err := q.ToFilter(h.machine)
	if err != nil {
		h.Error(c, err)
		return
	}
	format := c.DefaultQuery("format", "csv")
	if format != "csv" && format != "pdf" {
		h.Error(c, apperror.NewValidation("format must be csv or pdf").
			WithDetail("field", "format").
			WithDetail("value", format))
		return
	}

	rows, err := export.CollectInvoiceRows(c.Request.Context(), h.invoices, h.vendors, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	now := h.now()
	filename := fmt.Sprintf("invoices-%s.%s", now.Format("20060102"), format)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)

	switch format {
	case "pdf":
		c.Header("Content-Type", "application/pdf")
		c.Status(http.StatusOK)
		err = export.WritePDF(c.Writer, "Invoices", now, rows)
	default:
		c.Header("Content-Type", "text/csv; charset=utf-8")
		c.Status(http.StatusOK)
		err = export.WriteCSV(c.Writer, rows)
	}
	if err != nil {
		h.Error(c, err)
	}
}
