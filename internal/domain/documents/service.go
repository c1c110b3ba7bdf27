package documents

import (
	"context"
	"fmt"

	"docflow/internal/core/apperror"
	"docflow/internal/core/entity"
	"docflow/internal/core/id"
	"docflow/internal/core/numerator"
	"docflow/internal/core/tx"
	"docflow/internal/domain"
	"docflow/internal/domain/audit"
	"docflow/internal/domain/lifecycle"
	"docflow/internal/domain/tax"
	"docflow/pkg/logger"
)

// ServiceConfig wires a document Service.
type ServiceConfig[T Entity] struct {
	Repo      Repository[T]
	Engine    *lifecycle.Engine[T]
	Trail     audit.Trail
	TxManager tx.Manager
	Numerator numerator.Generator
	Numbering numerator.Config
	Strategy  numerator.Strategy
	Vendors   VendorChecker // Optional
	Auditor   ItemAuditor   // Optional
}

// Service implements create, read, edit and delete for one document kind.
// Status changes go through the lifecycle engine.
type Service[T Entity] struct {
	repo      Repository[T]
	engine    *lifecycle.Engine[T]
	trail     audit.Trail
	txManager tx.Manager
	numerator numerator.Generator
	numbering numerator.Config
	strategy  numerator.Strategy
	vendors   VendorChecker
	auditor   ItemAuditor
	hooks     *domain.HookRegistry[T]
	kind      audit.DocumentKind
}

// NewService creates a document service.
func NewService[T Entity](cfg ServiceConfig[T]) *Service[T] {
	s := &Service[T]{
		repo:      cfg.Repo,
		engine:    cfg.Engine,
		trail:     cfg.Trail,
		txManager: cfg.TxManager,
		numerator: cfg.Numerator,
		numbering: cfg.Numbering,
		strategy:  cfg.Strategy,
		vendors:   cfg.Vendors,
		auditor:   cfg.Auditor,
		hooks:     domain.NewHookRegistry[T](),
		kind:      cfg.Engine.Machine().Kind(),
	}

	s.hooks.OnBeforeCreate(func(ctx context.Context, doc T) error {
		return audit.EnrichCreatedBy(ctx, doc.GetDocument())
	})
	s.hooks.OnBeforeUpdate(func(ctx context.Context, doc T) error {
		return audit.EnrichUpdatedBy(ctx, doc.GetDocument())
	})

	return s
}

// Hooks returns the hook registry for create, update and delete callbacks.
func (s *Service[T]) Hooks() *domain.HookRegistry[T] {
	return s.hooks
}

// Engine returns the lifecycle engine behind Transition.
func (s *Service[T]) Engine() *lifecycle.Engine[T] {
	return s.engine
}

// Kind returns the document kind.
func (s *Service[T]) Kind() audit.DocumentKind {
	return s.kind
}

// Create saves a new DRAFT document with computed totals and a number.
func (s *Service[T]) Create(ctx context.Context, doc T) error {
	d := doc.GetDocument()
	d.Status = entity.StatusDraft
	d.SetItems(d.Items)

	if err := s.hooks.RunBeforeCreate(ctx, doc); err != nil {
		return err
	}
	if err := doc.Validate(ctx); err != nil {
		return err
	}
	if _, err := tax.Apply(d); err != nil {
		return err
	}
	if err := s.checkVendor(ctx, d.VendorID); err != nil {
		return s.normalizeErr(ctx, err)
	}
	actor, err := audit.ActorFromContext(ctx)
	if err != nil {
		return err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if d.Number == "" {
			number, err := s.numerator.GetNextNumber(ctx, s.numbering, &numerator.Options{Strategy: s.strategy}, d.Date)
			if err != nil {
				return fmt.Errorf("generate number: %w", err)
			}
			d.Number = number
		}

		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create document: %w", err)
		}
		if err := s.repo.ReplaceItems(ctx, d.ID, d.Items); err != nil {
			return fmt.Errorf("save items: %w", err)
		}

		entry := audit.NewStatusHistoryEntry(s.kind, d.ID, "", entity.StatusDraft,
			actor, "created", s.engine.Now())
		if err := s.trail.Append(ctx, entry); err != nil {
			return fmt.Errorf("append history: %w", err)
		}
		return nil
	})
	if err != nil {
		return s.normalizeErr(ctx, err)
	}

	if err := s.hooks.RunAfterCreate(ctx, doc); err != nil {
		logger.Warn(ctx, "after-create hook failed", "kind", s.kind, "error", err)
	}

	logger.Info(ctx, "document created",
		"kind", s.kind,
		"id", d.ID,
		"number", d.Number,
		"total", d.TotalAmount.String())

	return nil
}

// GetByID returns a document with its items.
func (s *Service[T]) GetByID(ctx context.Context, docID id.ID) (T, error) {
	var zero T

	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return zero, s.normalizeGetErr(err, docID)
	}
	if doc.GetDocument().DeletionMark {
		return zero, apperror.NewDocumentNotFound(string(s.kind), docID.String())
	}

	items, err := s.repo.GetItems(ctx, docID)
	if err != nil {
		return zero, apperror.NewRepositoryFailure(fmt.Errorf("get items: %w", err))
	}
	doc.GetDocument().Items = items

	return doc, nil
}

// List returns headers matching the filter.
func (s *Service[T]) List(ctx context.Context, filter ListFilter) (domain.ListResult[T], error) {
	filter.Normalize()
	if filter.OrderBy == "" {
		filter.OrderBy = "-date"
	}
	res, err := s.repo.List(ctx, filter)
	if err != nil {
		if apperror.IsAppError(err) {
			return res, err
		}
		return res, apperror.NewRepositoryFailure(err)
	}
	return res, nil
}

// Update replaces header fields and items of an editable document.
// Status, number and creation fields are kept from the stored version.
func (s *Service[T]) Update(ctx context.Context, doc T) error {
	d := doc.GetDocument()

	if err := s.hooks.RunBeforeUpdate(ctx, doc); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetForUpdate(ctx, d.ID)
		if err != nil {
			return s.normalizeGetErr(err, d.ID)
		}
		cur := current.GetDocument()
		if cur.DeletionMark {
			return apperror.NewDocumentNotFound(string(s.kind), d.ID.String())
		}
		if err := cur.CanModify(); err != nil {
			return err
		}
		if d.Version != cur.Version {
			return apperror.NewConcurrentModification(string(s.kind), d.ID)
		}

		d.Number = cur.Number
		d.Status = cur.Status
		d.CreatedAt = cur.CreatedAt
		d.CreatedBy = cur.CreatedBy
		d.DeletionMark = false
		d.SetItems(d.Items)

		if err := doc.Validate(ctx); err != nil {
			return err
		}
		if _, err := tax.Apply(d); err != nil {
			return err
		}
		if d.VendorID != cur.VendorID {
			if err := s.checkVendor(ctx, d.VendorID); err != nil {
				return err
			}
		}

		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update document: %w", err)
		}
		if err := s.repo.ReplaceItems(ctx, d.ID, d.Items); err != nil {
			return fmt.Errorf("save items: %w", err)
		}

		if s.auditor != nil {
			if err := s.auditor.LogItemsChange(ctx, string(s.kind), d.ID, cur, d); err != nil {
				return fmt.Errorf("audit items: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return s.normalizeErr(ctx, err)
	}

	if err := s.hooks.RunAfterUpdate(ctx, doc); err != nil {
		logger.Warn(ctx, "after-update hook failed", "kind", s.kind, "error", err)
	}
	return nil
}

// Delete soft-deletes a document in a deletable status. Kind-specific
// reference checks run as before-delete hooks inside the transaction.
func (s *Service[T]) Delete(ctx context.Context, docID id.ID) error {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return s.normalizeGetErr(err, docID)
		}
		d := doc.GetDocument()
		if d.DeletionMark {
			return apperror.NewDocumentNotFound(string(s.kind), docID.String())
		}
		if !d.Status.IsDeletable() {
			return apperror.NewBusinessRule(apperror.CodeDocumentLocked,
				"document can only be deleted in DRAFT or PENDING status").
				WithDetail("status", d.Status.String())
		}
		if err := s.hooks.RunBeforeDelete(ctx, doc); err != nil {
			return err
		}
		if err := s.repo.SetDeletionMark(ctx, docID, true); err != nil {
			return fmt.Errorf("delete document: %w", err)
		}
		return nil
	})
	if err != nil {
		return s.normalizeErr(ctx, err)
	}

	logger.Info(ctx, "document deleted", "kind", s.kind, "id", docID)
	return nil
}

// Transition delegates to the lifecycle engine.
func (s *Service[T]) Transition(ctx context.Context, req lifecycle.Request) (T, error) {
	return s.engine.Transition(ctx, req)
}

// History returns the status history of a document, oldest first.
func (s *Service[T]) History(ctx context.Context, docID id.ID) ([]audit.StatusHistoryEntry, error) {
	if _, err := s.repo.GetByID(ctx, docID); err != nil {
		return nil, s.normalizeGetErr(err, docID)
	}
	entries, err := s.trail.List(ctx, s.kind, docID)
	if err != nil {
		return nil, apperror.NewRepositoryFailure(err)
	}
	return entries, nil
}

func (s *Service[T]) checkVendor(ctx context.Context, vendorID id.ID) error {
	if s.vendors == nil {
		return nil
	}
	ok, err := s.vendors.Exists(ctx, vendorID)
	if err != nil {
		return fmt.Errorf("check vendor: %w", err)
	}
	if !ok {
		return apperror.NewValidation("vendor not found").
			WithDetail("field", "vendorId").
			WithDetail("value", vendorID.String())
	}
	return nil
}

func (s *Service[T]) normalizeGetErr(err error, docID id.ID) error {
	if apperror.IsNotFound(err) {
		return apperror.NewDocumentNotFound(string(s.kind), docID.String())
	}
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewRepositoryFailure(err)
}

func (s *Service[T]) normalizeErr(ctx context.Context, err error) error {
	if apperror.IsAppError(err) {
		return err
	}
	logger.Error(ctx, "document operation failed", "kind", s.kind, "error", err)
	return apperror.NewRepositoryFailure(err)
}

// Exists reports whether a live document with the id exists.
func (s *Service[T]) Exists(ctx context.Context, docID id.ID) (bool, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return !doc.GetDocument().DeletionMark, nil
}
