package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"docflow/internal/core/apperror"
	"docflow/internal/core/id"
	"docflow/internal/domain/audit"
	"docflow/internal/domain/reminder"
	"docflow/internal/infrastructure/http/v1/dto"
	"docflow/internal/infrastructure/storage/postgres"
)

// ReminderRunner is implemented by reminder.Runner.
type ReminderRunner interface {
	RunNow(ctx context.Context) (reminder.Report, error)
	RunAt(ctx context.Context, at time.Time) (reminder.Report, error)
	LastReport() (reminder.Report, bool)
}

// AuditReader is implemented by postgres.AuditService.
type AuditReader interface {
	GetEntityHistory(ctx context.Context, entityType string, entityID id.ID, limit int) ([]postgres.AuditEntry, error)
}

// AdminHandler serves operator endpoints.
type AdminHandler struct {
	*BaseHandler
	runner ReminderRunner
	audit  AuditReader // Optional
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(base *BaseHandler, runner ReminderRunner, auditReader AuditReader) *AdminHandler {
	return &AdminHandler{BaseHandler: base, runner: runner, audit: auditReader}
}

// RunReminders handles POST /admin/reminders/run
func (h *AdminHandler) RunReminders(c *gin.Context) {
	var req dto.RunRemindersRequest
	if c.Request.ContentLength > 0 && !h.BindJSON(c, &req) {
		return
	}

	var (
		report reminder.Report
		err    error
	)
	if req.At != nil {
		report, err = h.runner.RunAt(c.Request.Context(), *req.At)
	} else {
		report, err = h.runner.RunNow(c.Request.Context())
	}
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromReminderReport(report))
}

// LastReminderReport handles GET /admin/reminders/last
func (h *AdminHandler) LastReminderReport(c *gin.Context) {
	report, ok := h.runner.LastReport()
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, dto.FromReminderReport(report))
}

// AuditHistory handles GET /audit/:kind/:id
func (h *AdminHandler) AuditHistory(c *gin.Context) {
	if h.audit == nil {
		h.Error(c, apperror.NewNotFound("audit", c.Param("kind")))
		return
	}
	kind := audit.DocumentKind(c.Param("kind"))
	if kind != audit.KindInvoice && kind != audit.KindPurchaseOrder {
		h.Error(c, apperror.NewValidation("unknown document kind").
			WithDetail("field", "kind").
			WithDetail("value", string(kind)))
		return
	}
	docID, ok := h.ParamID(c)
	if !ok {
		return
	}
	limit := h.ParseIntQuery(c, "limit", 50)
	if limit < 1 || limit > 500 {
		limit = 50
	}

	entries, err := h.audit.GetEntityHistory(c.Request.Context(), string(kind), docID, limit)
	if err != nil {
		h.Error(c, apperror.NewRepositoryFailure(err))
		return
	}
	h.OK(c, gin.H{"items": entries})
}
