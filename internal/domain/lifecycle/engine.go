package lifecycle

import (
	"context"
	"fmt"
	"time"

	"docflow/internal/core/apperror"
	"docflow/internal/core/entity"
	"docflow/internal/core/id"
	"docflow/internal/core/tx"
	"docflow/internal/domain"
	"docflow/internal/domain/audit"
	"docflow/internal/domain/notification"
	"docflow/internal/domain/tax"
	"docflow/pkg/logger"
)

// Document is implemented by purchase orders and invoices.
type Document interface {
	GetDocument() *entity.Document
}

// Store is the persistence the engine needs for one document kind.
type Store[T Document] interface {
	// GetForUpdate loads the document and its items with a row lock.
	GetForUpdate(ctx context.Context, docID id.ID) (T, error)

	// Update saves the header with a version check.
	Update(ctx context.Context, doc T) error

	// ReplaceItems rewrites the table part.
	ReplaceItems(ctx context.Context, docID id.ID, items []entity.LineItem) error
}

// Contacts resolves the notification address of a vendor.
type Contacts interface {
	VendorEmail(ctx context.Context, vendorID id.ID) (string, error)
}

// Request is one transition call.
type Request struct {
	DocumentID id.ID
	Target     entity.Status
	// Actor defaults to the context user. Scheduled jobs set SystemActor.
	Actor   audit.Actor
	Comment string
	// Payment is required when entering PAID
	Payment *PaymentData
	// Items, when non-nil, replace the table part and trigger recomputation
	Items []entity.LineItem
	// ExpectedStatus, when set, must match the locked status
	ExpectedStatus entity.Status
}

// MaxCommentLength bounds transition comments.
const MaxCommentLength = 1000

// Config wires an Engine.
type Config[T Document] struct {
	Machine   *Machine
	Store     Store[T]
	Trail     audit.Trail
	TxManager tx.Manager
	Contacts  Contacts            // Optional
	Sender    notification.Sender // Optional
	Location  *time.Location      // Defaults to UTC
	Now       func() time.Time    // Defaults to time.Now
}

// Engine applies transitions for one document kind.
type Engine[T Document] struct {
	machine   *Machine
	store     Store[T]
	trail     audit.Trail
	txManager tx.Manager
	contacts  Contacts
	sender    notification.Sender
	loc       *time.Location
	now       func() time.Time
	hooks     *domain.HookRegistry[T]
}

// NewEngine creates an engine.
func NewEngine[T Document](cfg Config[T]) *Engine[T] {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Engine[T]{
		machine:   cfg.Machine,
		store:     cfg.Store,
		trail:     cfg.Trail,
		txManager: cfg.TxManager,
		contacts:  cfg.Contacts,
		sender:    cfg.Sender,
		loc:       loc,
		now:       now,
		hooks:     domain.NewHookRegistry[T](),
	}
}

// Hooks returns the hook registry for transition callbacks.
func (e *Engine[T]) Hooks() *domain.HookRegistry[T] {
	return e.hooks
}

// Machine returns the transition table.
func (e *Engine[T]) Machine() *Machine {
	return e.machine
}

// Now returns the engine clock.
func (e *Engine[T]) Now() time.Time {
	return e.now()
}

// Location returns the calendar used for due date checks.
func (e *Engine[T]) Location() *time.Location {
	return e.loc
}

// Transition moves a document to req.Target.
//
// Status, items, totals, the history entry and any before-commit hook writes
// happen in one transaction. The vendor is notified after commit and
// notification errors are only logged.
func (e *Engine[T]) Transition(ctx context.Context, req Request) (T, error) {
	var zero T

	if req.Actor == "" {
		actor, err := audit.ActorFromContext(ctx)
		if err != nil {
			return zero, err
		}
		req.Actor = actor
	}
	if len([]rune(req.Comment)) > MaxCommentLength {
		return zero, apperror.NewValidation("comment is too long").
			WithDetail("field", "comment").
			WithDetail("max", MaxCommentLength)
	}
	if req.Payment != nil {
		if err := req.Payment.Validate(); err != nil {
			return zero, err
		}
	}

	now := e.now()
	var (
		result T
		tr     *Transition
	)

	err := e.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := e.store.GetForUpdate(ctx, req.DocumentID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewDocumentNotFound(string(e.machine.Kind()), req.DocumentID.String())
			}
			return err
		}
		d := doc.GetDocument()
		if d.DeletionMark {
			return apperror.NewDocumentNotFound(string(e.machine.Kind()), req.DocumentID.String())
		}
		from := d.Status

		if req.ExpectedStatus != "" && req.ExpectedStatus != from {
			return apperror.NewInvalidStatusTransition(from.String(), req.Target.String()).
				WithDetail("expected", req.ExpectedStatus.String())
		}

		if err := e.machine.Check(d, req.Target, req.Actor, now, e.loc); err != nil {
			return err
		}

		if e.machine.RequiresPayment(from, req.Target) && req.Payment == nil {
			return apperror.NewMissingPaymentData()
		}

		if req.Items != nil {
			if !from.IsEditable() && !req.Target.IsEditable() {
				return d.CanModify()
			}
			d.SetItems(req.Items)
			if _, err := tax.Apply(d); err != nil {
				return err
			}
		}

		d.SetStatus(req.Target)
		if !req.Actor.IsSystem() {
			d.SetUpdatedBy(req.Actor.String())
		}

		if err := e.store.Update(ctx, doc); err != nil {
			if apperror.IsConcurrentModification(err) {
				return apperror.NewInvalidStatusTransition(from.String(), req.Target.String()).
					WithDetail("reason", "concurrent update").
					WithCause(err)
			}
			return fmt.Errorf("update document: %w", err)
		}

		if req.Items != nil {
			if err := e.store.ReplaceItems(ctx, d.ID, d.Items); err != nil {
				return fmt.Errorf("replace items: %w", err)
			}
		}

		entry := audit.NewStatusHistoryEntry(e.machine.Kind(), d.ID, from, req.Target, req.Actor, req.Comment, now)
		if err := e.trail.Append(ctx, entry); err != nil {
			return fmt.Errorf("append history: %w", err)
		}

		tr = &Transition{
			Kind:    e.machine.Kind(),
			From:    from,
			To:      req.Target,
			Actor:   req.Actor,
			Comment: req.Comment,
			Payment: req.Payment,
			At:      now,
		}
		if err := e.hooks.Run(WithTransition(ctx, tr), domain.BeforeTransitionCommit, doc); err != nil {
			return err
		}

		result = doc
		return nil
	})
	if err != nil {
		if !apperror.IsAppError(err) {
			logger.Error(ctx, "transition rolled back",
				"kind", e.machine.Kind(),
				"document_id", req.DocumentID,
				"target", req.Target,
				"error", err)
			return zero, apperror.NewRepositoryFailure(err)
		}
		return zero, err
	}

	ctx = WithTransition(ctx, tr)
	if err := e.hooks.Run(ctx, domain.AfterTransition, result); err != nil {
		logger.Warn(ctx, "after-transition hook failed", "error", err)
	}

	logger.Info(ctx, "document status changed",
		"kind", tr.Kind,
		"document_id", req.DocumentID,
		"from", tr.From,
		"to", tr.To,
		"actor", tr.Actor)

	e.notify(ctx, result.GetDocument(), tr)

	return result, nil
}

// notify sends the status change to the vendor. Errors are logged only.
func (e *Engine[T]) notify(ctx context.Context, d *entity.Document, tr *Transition) {
	if e.sender == nil || e.contacts == nil {
		return
	}

	template := notification.TemplateStatusChanged
	email, err := e.contacts.VendorEmail(ctx, d.VendorID)
	if err == nil {
		msg := notification.NewMessage(template, email, string(tr.Kind), d.ID).
			With("number", d.Number).
			With("from", tr.From.String()).
			With("to", tr.To.String()).
			With("comment", tr.Comment).
			With("totalAmount", d.TotalAmount.String())
		msg.Subject = fmt.Sprintf("%s %s: %s", tr.Kind, d.Number, tr.To)
		err = e.sender.Send(ctx, msg)
	}
	if err != nil {
		failure := apperror.NewNotificationFailure(string(template), err).
			WithDetail("document_id", d.ID.String())
		logger.Warn(ctx, "notification failed",
			"code", failure.Code,
			"template", template,
			"document_id", d.ID,
			"error", err)
	}
}
