package reminder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"docflow/internal/core/apperror"
	"docflow/internal/core/entity"
	"docflow/internal/core/id"
	"docflow/internal/domain"
	"docflow/internal/domain/audit"
	"docflow/internal/domain/documents"
	"docflow/internal/domain/documents/invoice"
	"docflow/internal/domain/documents/purchase_order"
	"docflow/internal/domain/lifecycle"
	"docflow/internal/domain/notification"
	"docflow/pkg/logger"
)

// DefaultWorkers bounds concurrent document processing.
const DefaultWorkers = 4

const scanPageSize = 200

// Invoices is what the scan needs from the invoice service.
type Invoices interface {
	ActiveReminders(ctx context.Context) ([]invoice.ReminderTarget, error)
	ClaimReminder(ctx context.Context, reminderID id.ID, at, dayStart time.Time) (bool, error)
	List(ctx context.Context, filter documents.ListFilter) (domain.ListResult[*invoice.Invoice], error)
	Transition(ctx context.Context, req lifecycle.Request) (*invoice.Invoice, error)
}

// PurchaseOrders is what the scan needs from the purchase order service.
type PurchaseOrders interface {
	List(ctx context.Context, filter documents.ListFilter) (domain.ListResult[*purchase_order.PurchaseOrder], error)
	Transition(ctx context.Context, req lifecycle.Request) (*purchase_order.PurchaseOrder, error)
}

// Config wires a Scheduler.
type Config struct {
	Invoices       Invoices
	PurchaseOrders PurchaseOrders
	Contacts       lifecycle.Contacts
	Sender         notification.Sender
	Location       *time.Location // Defaults to Asia/Tokyo
	Workers        int
}

// Scheduler performs one reminder and overdue pass per RunOnce call.
type Scheduler struct {
	invoices Invoices
	orders   PurchaseOrders
	contacts lifecycle.Contacts
	sender   notification.Sender
	loc      *time.Location
	workers  int
}

// ScanError is a per-document failure that did not stop the scan.
type ScanError struct {
	Kind       audit.DocumentKind `json:"kind"`
	DocumentID id.ID              `json:"documentId"`
	Number     string             `json:"number"`
	Stage      string             `json:"stage"`
	Message    string             `json:"message"`
}

// Report summarizes one scan.
type Report struct {
	RanAt            time.Time   `json:"ranAt"`
	FiredReminders   int         `json:"firedReminders"`
	AutoTransitioned int         `json:"autoTransitioned"`
	Errors           []ScanError `json:"errors"`
}

// DefaultLocation returns Asia/Tokyo, falling back to a fixed +09:00 zone
// when tzdata is unavailable.
func DefaultLocation() *time.Location {
	loc, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		return time.FixedZone("JST", 9*60*60)
	}
	return loc
}

// NewScheduler creates a scheduler.
func NewScheduler(cfg Config) *Scheduler {
	loc := cfg.Location
	if loc == nil {
		loc = DefaultLocation()
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Scheduler{
		invoices: cfg.Invoices,
		orders:   cfg.PurchaseOrders,
		contacts: cfg.Contacts,
		sender:   cfg.Sender,
		loc:      loc,
		workers:  workers,
	}
}

// Location returns the business calendar.
func (s *Scheduler) Location() *time.Location {
	return s.loc
}

// collector gathers results from concurrent workers.
type collector struct {
	mu     sync.Mutex
	report Report
}

func (c *collector) fail(kind audit.DocumentKind, docID id.ID, number, stage string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.report.Errors = append(c.report.Errors, ScanError{
		Kind:       kind,
		DocumentID: docID,
		Number:     number,
		Stage:      stage,
		Message:    err.Error(),
	})
}

func (c *collector) fired() {
	c.mu.Lock()
	c.report.FiredReminders++
	c.mu.Unlock()
}

func (c *collector) transitioned() {
	c.mu.Lock()
	c.report.AutoTransitioned++
	c.mu.Unlock()
}

// RunOnce evaluates reminders and overdue documents as of now.
// Only a failure to load reminder settings aborts the scan; every other
// error is recorded in the report and processing continues.
func (s *Scheduler) RunOnce(ctx context.Context, now time.Time) (Report, error) {
	log := logger.FromContext(ctx).WithComponent("reminder")
	today := entity.CalendarDay(now, s.loc)
	c := &collector{report: Report{RanAt: now, Errors: []ScanError{}}}

	targets, err := s.invoices.ActiveReminders(ctx)
	if err != nil {
		return c.report, apperror.NewRepositoryFailure(fmt.Errorf("load reminders: %w", err))
	}

	var g errgroup.Group
	g.SetLimit(s.workers)
	for _, t := range targets {
		if t.Setting.SentOn(now, s.loc) {
			continue
		}
		fire, class := Evaluate(t, today)
		if !fire {
			continue
		}
		g.Go(func() error {
			s.fire(ctx, c, t, class, now, today)
			return nil
		})
	}
	_ = g.Wait()

	s.scanInvoices(ctx, c, today)
	s.scanPurchaseOrders(ctx, c, today)

	log.Infow("reminder scan finished",
		"fired", c.report.FiredReminders,
		"transitioned", c.report.AutoTransitioned,
		"errors", len(c.report.Errors))

	return c.report, nil
}

// fire claims the setting for today and then notifies the vendor. The claim
// stands even when the notification fails, so a reminder goes out at most
// once per day across overlapping runs.
func (s *Scheduler) fire(ctx context.Context, c *collector, t invoice.ReminderTarget, class Classification, now, today time.Time) {
	inv := t.Invoice

	claimed, err := s.invoices.ClaimReminder(ctx, t.Setting.ID, now, today)
	if err != nil {
		logger.Error(ctx, "claim reminder failed", "reminder_id", t.Setting.ID, "error", err)
		c.fail(audit.KindInvoice, inv.ID, inv.Number, "claim", err)
		return
	}
	if !claimed {
		return
	}
	c.fired()

	if err := s.send(ctx, t, class); err != nil {
		failure := apperror.NewNotificationFailure(string(class.Template()), err)
		logger.Warn(ctx, "reminder notification failed",
			"code", failure.Code,
			"invoice_id", inv.ID,
			"reminder_id", t.Setting.ID,
			"error", err)
		c.fail(audit.KindInvoice, inv.ID, inv.Number, "notify", err)
	}
}

func (s *Scheduler) send(ctx context.Context, t invoice.ReminderTarget, class Classification) error {
	if s.sender == nil || s.contacts == nil {
		return nil
	}
	inv := t.Invoice
	email, err := s.contacts.VendorEmail(ctx, inv.VendorID)
	if err != nil {
		return err
	}

	msg := notification.NewMessage(class.Template(), email, string(audit.KindInvoice), inv.ID).
		With("number", inv.Number).
		With("classification", string(class)).
		With("reminderType", string(t.Setting.Type)).
		With("days", t.Setting.DaysBeforeOrAfter).
		With("totalAmount", inv.TotalAmount.String())
	if inv.DueDate != nil {
		msg = msg.With("dueDate", inv.DueDate.Format(time.DateOnly))
	}
	msg.Subject = fmt.Sprintf("Invoice %s: payment %s", inv.Number, class)
	return s.sender.Send(ctx, msg)
}

type candidate struct {
	id     id.ID
	number string
	status entity.Status
}

// scanInvoices moves PENDING and SENT invoices past due into OVERDUE.
func (s *Scheduler) scanInvoices(ctx context.Context, c *collector, today time.Time) {
	filter := overdueFilter(today, entity.StatusPending, entity.StatusSent)

	var found []candidate
	err := collectPages(ctx, filter, s.invoices.List, func(inv *invoice.Invoice) {
		found = append(found, candidate{inv.ID, inv.Number, inv.Status})
	})
	if err != nil {
		c.fail(audit.KindInvoice, id.Nil(), "", "list", err)
		return
	}

	s.transitionAll(ctx, c, audit.KindInvoice, found, entity.StatusOverdue, "due date passed",
		func(ctx context.Context, req lifecycle.Request) error {
			_, err := s.invoices.Transition(ctx, req)
			return err
		})
}

// scanPurchaseOrders moves SENT purchase orders past their delivery date
// into COMPLETED.
func (s *Scheduler) scanPurchaseOrders(ctx context.Context, c *collector, today time.Time) {
	if s.orders == nil {
		return
	}
	filter := overdueFilter(today, entity.StatusSent)

	var found []candidate
	err := collectPages(ctx, filter, s.orders.List, func(po *purchase_order.PurchaseOrder) {
		found = append(found, candidate{po.ID, po.Number, po.Status})
	})
	if err != nil {
		c.fail(audit.KindPurchaseOrder, id.Nil(), "", "list", err)
		return
	}

	// TODO: confirm with purchasing whether a lapsed order should become
	// OVERDUE instead of COMPLETED; kept as the existing behaviour for now.
	s.transitionAll(ctx, c, audit.KindPurchaseOrder, found, entity.StatusCompleted, "delivery date passed",
		func(ctx context.Context, req lifecycle.Request) error {
			_, err := s.orders.Transition(ctx, req)
			return err
		})
}

func (s *Scheduler) transitionAll(
	ctx context.Context,
	c *collector,
	kind audit.DocumentKind,
	found []candidate,
	target entity.Status,
	comment string,
	transition func(context.Context, lifecycle.Request) error,
) {
	var g errgroup.Group
	g.SetLimit(s.workers)
	for _, cand := range found {
		g.Go(func() error {
			err := transition(ctx, lifecycle.Request{
				DocumentID:     cand.id,
				Target:         target,
				Actor:          audit.SystemActor,
				Comment:        comment,
				ExpectedStatus: cand.status,
			})
			if err != nil {
				logger.Warn(ctx, "automatic transition failed",
					"kind", kind,
					"document_id", cand.id,
					"target", target,
					"error", err)
				c.fail(kind, cand.id, cand.number, "transition", err)
				return nil
			}
			c.transitioned()
			return nil
		})
	}
	_ = g.Wait()
}

func overdueFilter(today time.Time, statuses ...entity.Status) documents.ListFilter {
	y, m, d := today.Date()
	due := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return documents.ListFilter{
		ListFilter: domain.ListFilter{Limit: scanPageSize, OrderBy: "number"},
		Statuses:   statuses,
		DueBefore:  &due,
	}
}

// collectPages reads every page before any document is changed, so
// transitions do not shift later pages.
func collectPages[T any](
	ctx context.Context,
	filter documents.ListFilter,
	list func(context.Context, documents.ListFilter) (domain.ListResult[T], error),
	visit func(T),
) error {
	for {
		page, err := list(ctx, filter)
		if err != nil {
			return err
		}
		for _, item := range page.Items {
			visit(item)
		}
		filter.Offset += len(page.Items)
		if len(page.Items) == 0 || int64(filter.Offset) >= page.TotalCount {
			return nil
		}
	}
}
