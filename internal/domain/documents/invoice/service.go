package invoice

import (
	"context"
	"fmt"
	"time"

	"docflow/internal/core/apperror"
	"docflow/internal/core/entity"
	"docflow/internal/core/id"
	"docflow/internal/core/numerator"
	"docflow/internal/core/tx"
	"docflow/internal/domain/audit"
	"docflow/internal/domain/documents"
	"docflow/internal/domain/lifecycle"
	"docflow/pkg/logger"
)

// OrderChecker confirms a purchase order reference.
type OrderChecker interface {
	Exists(ctx context.Context, poID id.ID) (bool, error)
}

// Service provides business operations for invoices.
type Service struct {
	*documents.Service[*Invoice]
	repo      Repository
	payments  PaymentRepository
	reminders ReminderRepository
	orders    OrderChecker
	txManager tx.Manager
}

// Deps wires the invoice service.
type Deps struct {
	Repo      Repository
	Payments  PaymentRepository
	Reminders ReminderRepository
	Engine    *lifecycle.Engine[*Invoice]
	Trail     audit.Trail
	TxManager tx.Manager
	Numerator numerator.Generator
	Vendors   documents.VendorChecker
	Orders    OrderChecker // Optional
	Auditor   documents.ItemAuditor
}

// NewService creates a new invoice service and registers the payment hook
// on the engine.
func NewService(deps Deps) *Service {
	base := documents.NewService(documents.ServiceConfig[*Invoice]{
		Repo:      deps.Repo,
		Engine:    deps.Engine,
		Trail:     deps.Trail,
		TxManager: deps.TxManager,
		Numerator: deps.Numerator,
		Numbering: Numbering(),
		Strategy:  NumeratorStrategy,
		Vendors:   deps.Vendors,
		Auditor:   deps.Auditor,
	})

	svc := &Service{
		Service:   base,
		repo:      deps.Repo,
		payments:  deps.Payments,
		reminders: deps.Reminders,
		orders:    deps.Orders,
		txManager: deps.TxManager,
	}

	base.Hooks().OnBeforeCreate(svc.checkOrder)
	base.Hooks().OnBeforeUpdate(svc.checkOrder)
	base.Hooks().OnBeforeDelete(svc.ensureUnreferenced)
	deps.Engine.Hooks().OnBeforeTransitionCommit(svc.recordPayment)

	return svc
}

// RegisterPayment marks the invoice PAID and stores the payment in the
// same transaction.
func (s *Service) RegisterPayment(ctx context.Context, invoiceID id.ID, data lifecycle.PaymentData, comment string) (*Invoice, error) {
	return s.Transition(ctx, lifecycle.Request{
		DocumentID: invoiceID,
		Target:     entity.StatusPaid,
		Comment:    comment,
		Payment:    &data,
	})
}

// ListPayments returns the payments of an invoice.
func (s *Service) ListPayments(ctx context.Context, invoiceID id.ID) ([]Payment, error) {
	if ok, err := s.Exists(ctx, invoiceID); err != nil {
		return nil, apperror.NewRepositoryFailure(err)
	} else if !ok {
		return nil, apperror.NewDocumentNotFound(string(audit.KindInvoice), invoiceID.String())
	}
	payments, err := s.payments.ListPayments(ctx, invoiceID)
	if err != nil {
		return nil, apperror.NewRepositoryFailure(err)
	}
	return payments, nil
}

// SetReminders replaces the reminder settings of an invoice. Replaced
// settings start with no LastSentAt.
func (s *Service) SetReminders(ctx context.Context, invoiceID id.ID, settings []ReminderSetting) ([]ReminderSetting, error) {
	seen := make(map[ReminderType]map[int]struct{})
	out := make([]ReminderSetting, len(settings))
	for i, r := range settings {
		if err := r.Validate(i); err != nil {
			return nil, err
		}
		if seen[r.Type] == nil {
			seen[r.Type] = make(map[int]struct{})
		}
		if _, dup := seen[r.Type][r.DaysBeforeOrAfter]; dup {
			return nil, apperror.NewValidation("duplicate reminder").
				WithDetail("field", "reminders").
				WithDetail("index", i)
		}
		seen[r.Type][r.DaysBeforeOrAfter] = struct{}{}

		r.ID = id.New()
		r.InvoiceID = invoiceID
		r.LastSentAt = nil
		out[i] = r
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		ok, err := s.Exists(ctx, invoiceID)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.NewDocumentNotFound(string(audit.KindInvoice), invoiceID.String())
		}
		return s.reminders.ReplaceReminders(ctx, invoiceID, out)
	})
	if err != nil {
		if apperror.IsAppError(err) {
			return nil, err
		}
		return nil, apperror.NewRepositoryFailure(err)
	}

	logger.Info(ctx, "invoice reminders updated", "invoice_id", invoiceID, "count", len(out))
	return out, nil
}

// Reminders returns the reminder settings of an invoice.
func (s *Service) Reminders(ctx context.Context, invoiceID id.ID) ([]ReminderSetting, error) {
	if ok, err := s.Exists(ctx, invoiceID); err != nil {
		return nil, apperror.NewRepositoryFailure(err)
	} else if !ok {
		return nil, apperror.NewDocumentNotFound(string(audit.KindInvoice), invoiceID.String())
	}
	settings, err := s.reminders.ListReminders(ctx, invoiceID)
	if err != nil {
		return nil, apperror.NewRepositoryFailure(err)
	}
	return settings, nil
}

// ActiveReminders returns enabled reminders of invoices that can still be
// reminded about.
func (s *Service) ActiveReminders(ctx context.Context) ([]ReminderTarget, error) {
	return s.reminders.ListActive(ctx, ReminderExcludedStatuses)
}

// ClaimReminder reserves a reminder for sending on the day starting at
// dayStart. False means another run already sent it that day.
func (s *Service) ClaimReminder(ctx context.Context, reminderID id.ID, at, dayStart time.Time) (bool, error) {
	return s.reminders.ClaimReminder(ctx, reminderID, at, dayStart)
}

// CountByPurchaseOrder implements purchase_order.InvoiceLinks.
func (s *Service) CountByPurchaseOrder(ctx context.Context, poID id.ID) (int, error) {
	return s.repo.CountByPurchaseOrder(ctx, poID)
}

// recordPayment creates the Payment row for transitions that carry one.
func (s *Service) recordPayment(ctx context.Context, inv *Invoice) error {
	tr, ok := lifecycle.TransitionFromContext(ctx)
	if !ok || tr.Payment == nil || tr.To != entity.StatusPaid {
		return nil
	}

	createdBy := tr.Actor.String()
	p := NewPayment(inv.ID, *tr.Payment, createdBy, tr.At)
	if err := s.payments.CreatePayment(ctx, p); err != nil {
		return fmt.Errorf("create payment: %w", err)
	}

	if !p.Amount.Equal(inv.TotalAmount) {
		logger.Warn(ctx, "payment amount differs from invoice total",
			"invoice_id", inv.ID,
			"amount", p.Amount.String(),
			"total", inv.TotalAmount.String())
	}
	return nil
}

func (s *Service) checkOrder(ctx context.Context, inv *Invoice) error {
	if inv.PurchaseOrderID == nil || id.IsNil(*inv.PurchaseOrderID) || s.orders == nil {
		return nil
	}
	ok, err := s.orders.Exists(ctx, *inv.PurchaseOrderID)
	if err != nil {
		return apperror.NewRepositoryFailure(fmt.Errorf("check purchase order: %w", err))
	}
	if !ok {
		return apperror.NewValidation("purchase order not found").
			WithDetail("field", "purchaseOrderId")
	}
	return nil
}

// ensureUnreferenced blocks deleting linked or paid invoices.
func (s *Service) ensureUnreferenced(ctx context.Context, inv *Invoice) error {
	if inv.IsLinked() {
		return apperror.NewBusinessRule(apperror.CodeBusinessRule,
			"invoice is linked to a purchase order").
			WithDetail("purchaseOrderId", inv.PurchaseOrderID.String())
	}
	n, err := s.payments.CountPayments(ctx, inv.ID)
	if err != nil {
		return fmt.Errorf("count payments: %w", err)
	}
	if n > 0 {
		return apperror.NewBusinessRule(apperror.CodeBusinessRule,
			"invoice has registered payments").
			WithDetail("payments", n)
	}
	return nil
}
