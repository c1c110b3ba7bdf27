package purchase_order

import (
	"context"
	"fmt"

	"docflow/internal/core/apperror"
	"docflow/internal/core/numerator"
	"docflow/internal/core/tx"
	"docflow/internal/domain/audit"
	"docflow/internal/domain/documents"
	"docflow/internal/domain/lifecycle"
)

// Service provides business operations for purchase orders.
type Service struct {
	*documents.Service[*PurchaseOrder]
	links InvoiceLinks
}

// Deps wires the purchase order service.
type Deps struct {
	Repo      Repository
	Engine    *lifecycle.Engine[*PurchaseOrder]
	Trail     audit.Trail
	TxManager tx.Manager
	Numerator numerator.Generator
	Vendors   documents.VendorChecker
	Auditor   documents.ItemAuditor
	Links     InvoiceLinks // Optional
}

// NewService creates a new purchase order service.
func NewService(deps Deps) *Service {
	base := documents.NewService(documents.ServiceConfig[*PurchaseOrder]{
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

	svc := &Service{Service: base, links: deps.Links}
	base.Hooks().OnBeforeDelete(svc.ensureNotInvoiced)
	return svc
}

// SetInvoiceLinks attaches the invoice lookup after both services exist.
func (s *Service) SetInvoiceLinks(links InvoiceLinks) {
	s.links = links
}

// ensureNotInvoiced blocks deleting an order that an invoice refers to.
func (s *Service) ensureNotInvoiced(ctx context.Context, po *PurchaseOrder) error {
	if s.links == nil {
		return nil
	}
	n, err := s.links.CountByPurchaseOrder(ctx, po.ID)
	if err != nil {
		return fmt.Errorf("count invoices: %w", err)
	}
	if n > 0 {
		return apperror.NewBusinessRule(apperror.CodeBusinessRule,
			"purchase order is referenced by invoices").
			WithDetail("invoices", n)
	}
	return nil
}
