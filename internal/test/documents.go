// Package test provides in-memory stand-ins for repositories and
// collaborators used across package tests.
package test

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"docflow/internal/core/apperror"
	"docflow/internal/core/entity"
	"docflow/internal/core/id"
	"docflow/internal/domain"
	"docflow/internal/domain/documents"
	"docflow/internal/domain/documents/invoice"
	"docflow/internal/domain/documents/purchase_order"
)

// ErrStorage is a generic storage failure for injection.
var ErrStorage = errors.New("storage unavailable")

// DocumentStore keeps documents in memory and satisfies documents.Repository.
type DocumentStore[T documents.Entity] struct {
	mu    sync.Mutex
	docs  map[id.ID]T
	items map[id.ID][]entity.LineItem
	clone func(T) T
	table string

	// Err, when set, is returned by every call
	Err error
	// UpdateErr is returned by Update only
	UpdateErr error
}

func newDocumentStore[T documents.Entity](table string, clone func(T) T) *DocumentStore[T] {
	return &DocumentStore[T]{
		docs:  make(map[id.ID]T),
		items: make(map[id.ID][]entity.LineItem),
		clone: clone,
		table: table,
	}
}

// NewPurchaseOrderStore returns an empty purchase order store.
func NewPurchaseOrderStore() *DocumentStore[*purchase_order.PurchaseOrder] {
	return newDocumentStore("purchase_orders", func(p *purchase_order.PurchaseOrder) *purchase_order.PurchaseOrder {
		c := *p
		c.Items = slices.Clone(p.Items)
		return &c
	})
}

// Put stores doc as-is, items included.
func (s *DocumentStore[T]) Put(doc T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := doc.GetDocument()
	s.docs[d.ID] = s.clone(doc)
	s.items[d.ID] = slices.Clone(d.Items)
}

// Get returns the stored copy with items, or the zero value.
func (s *DocumentStore[T]) Get(docID id.ID) T {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[docID]
	if !ok {
		var zero T
		return zero
	}
	c := s.clone(doc)
	c.GetDocument().Items = slices.Clone(s.items[docID])
	return c
}

func (s *DocumentStore[T]) Create(_ context.Context, doc T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	d := doc.GetDocument()
	if _, exists := s.docs[d.ID]; exists {
		return apperror.NewDuplicate(s.table, "id", d.ID.String())
	}
	for _, other := range s.docs {
		if other.GetDocument().Number == d.Number {
			return apperror.NewDuplicate(s.table, "number", d.Number)
		}
	}
	c := s.clone(doc)
	c.GetDocument().Items = nil
	s.docs[d.ID] = c
	return nil
}

func (s *DocumentStore[T]) GetByID(_ context.Context, docID id.ID) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	if s.Err != nil {
		return zero, s.Err
	}
	doc, ok := s.docs[docID]
	if !ok {
		return zero, apperror.NewNotFound(s.table, docID.String())
	}
	return s.clone(doc), nil
}

func (s *DocumentStore[T]) GetForUpdate(ctx context.Context, docID id.ID) (T, error) {
	doc, err := s.GetByID(ctx, docID)
	if err != nil {
		return doc, err
	}
	s.mu.Lock()
	doc.GetDocument().Items = slices.Clone(s.items[docID])
	s.mu.Unlock()
	return doc, nil
}

func (s *DocumentStore[T]) Update(_ context.Context, doc T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if s.UpdateErr != nil {
		return s.UpdateErr
	}
	d := doc.GetDocument()
	cur, ok := s.docs[d.ID]
	if !ok || cur.GetDocument().Version != d.Version {
		return apperror.NewConcurrentModification(s.table, d.ID)
	}
	d.Touch()
	c := s.clone(doc)
	c.GetDocument().Items = nil
	s.docs[d.ID] = c
	return nil
}

func (s *DocumentStore[T]) SetDeletionMark(_ context.Context, docID id.ID, marked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	doc, ok := s.docs[docID]
	if !ok {
		return apperror.NewNotFound(s.table, docID.String())
	}
	doc.GetDocument().DeletionMark = marked
	doc.GetDocument().Version++
	return nil
}

func (s *DocumentStore[T]) GetItems(_ context.Context, docID id.ID) ([]entity.LineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	return slices.Clone(s.items[docID]), nil
}

func (s *DocumentStore[T]) ReplaceItems(_ context.Context, docID id.ID, items []entity.LineItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.items[docID] = slices.Clone(items)
	return nil
}

func (s *DocumentStore[T]) List(_ context.Context, f documents.ListFilter) (domain.ListResult[T], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := domain.ListResult[T]{Limit: f.Limit, Offset: f.Offset}
	if s.Err != nil {
		return res, s.Err
	}

	var matched []T
	for _, doc := range s.docs {
		d := doc.GetDocument()
		if d.DeletionMark && !f.IncludeDeleted {
			continue
		}
		if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, d.Status) {
			continue
		}
		if f.VendorID != nil && d.VendorID != *f.VendorID {
			continue
		}
		if f.DateFrom != nil && d.Date.Before(*f.DateFrom) {
			continue
		}
		if f.DateTo != nil && d.Date.After(*f.DateTo) {
			continue
		}
		if f.DueBefore != nil && (d.DueDate == nil || !d.DueDate.Before(*f.DueBefore)) {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(d.Number), strings.ToLower(f.Search)) {
			continue
		}
		matched = append(matched, s.clone(doc))
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].GetDocument().Number < matched[j].GetDocument().Number
	})

	res.TotalCount = int64(len(matched))
	if f.Offset < len(matched) {
		matched = matched[f.Offset:]
	} else {
		matched = nil
	}
	if f.Limit > 0 && len(matched) > f.Limit {
		matched = matched[:f.Limit]
	}
	res.Items = matched
	return res, nil
}

// Snapshot implements Snapshotter.
func (s *DocumentStore[T]) Snapshot() func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs := make(map[id.ID]T, len(s.docs))
	for k, v := range s.docs {
		docs[k] = s.clone(v)
	}
	items := maps.Clone(s.items)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.docs = docs
		s.items = items
	}
}

// InvoiceStore adds payments and reminders to the invoice document store.
type InvoiceStore struct {
	*DocumentStore[*invoice.Invoice]

	pmu       sync.Mutex
	payments  []invoice.Payment
	reminders map[id.ID][]invoice.ReminderSetting

	// PaymentErr is returned by CreatePayment
	PaymentErr error
	// ClaimErr is returned by ClaimReminder
	ClaimErr error
}

// NewInvoiceStore returns an empty invoice store.
func NewInvoiceStore() *InvoiceStore {
	return &InvoiceStore{
		DocumentStore: newDocumentStore("invoices", func(i *invoice.Invoice) *invoice.Invoice {
			c := *i
			c.Items = slices.Clone(i.Items)
			return &c
		}),
		reminders: make(map[id.ID][]invoice.ReminderSetting),
	}
}

func (s *InvoiceStore) CountByPurchaseOrder(_ context.Context, poID id.ID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, inv := range s.docs {
		if !inv.DeletionMark && inv.PurchaseOrderID != nil && *inv.PurchaseOrderID == poID {
			n++
		}
	}
	return n, nil
}

func (s *InvoiceStore) CreatePayment(_ context.Context, p invoice.Payment) error {
	s.pmu.Lock()
	defer s.pmu.Unlock()
	if s.PaymentErr != nil {
		return s.PaymentErr
	}
	s.payments = append(s.payments, p)
	return nil
}

func (s *InvoiceStore) ListPayments(_ context.Context, invoiceID id.ID) ([]invoice.Payment, error) {
	s.pmu.Lock()
	defer s.pmu.Unlock()
	var out []invoice.Payment
	for _, p := range s.payments {
		if p.InvoiceID == invoiceID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *InvoiceStore) CountPayments(ctx context.Context, invoiceID id.ID) (int, error) {
	ps, err := s.ListPayments(ctx, invoiceID)
	return len(ps), err
}

func (s *InvoiceStore) ReplaceReminders(_ context.Context, invoiceID id.ID, settings []invoice.ReminderSetting) error {
	s.pmu.Lock()
	defer s.pmu.Unlock()
	s.reminders[invoiceID] = slices.Clone(settings)
	return nil
}

func (s *InvoiceStore) ListReminders(_ context.Context, invoiceID id.ID) ([]invoice.ReminderSetting, error) {
	s.pmu.Lock()
	defer s.pmu.Unlock()
	return slices.Clone(s.reminders[invoiceID]), nil
}

func (s *InvoiceStore) ListActive(_ context.Context, excluded []entity.Status) ([]invoice.ReminderTarget, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	docs := make(map[id.ID]invoice.Invoice, len(s.docs))
	for k, v := range s.docs {
		docs[k] = *v
	}
	s.mu.Unlock()

	s.pmu.Lock()
	defer s.pmu.Unlock()
	var out []invoice.ReminderTarget
	for invoiceID, settings := range s.reminders {
		inv, ok := docs[invoiceID]
		if !ok || inv.DeletionMark || slices.Contains(excluded, inv.Status) {
			continue
		}
		for _, r := range settings {
			if r.Enabled {
				out = append(out, invoice.ReminderTarget{Setting: r, Invoice: inv})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Setting.ID.String() < out[j].Setting.ID.String() })
	return out, nil
}

func (s *InvoiceStore) ClaimReminder(_ context.Context, reminderID id.ID, at, dayStart time.Time) (bool, error) {
	s.pmu.Lock()
	defer s.pmu.Unlock()
	if s.ClaimErr != nil {
		return false, s.ClaimErr
	}
	for invoiceID, settings := range s.reminders {
		for i := range settings {
			if settings[i].ID != reminderID {
				continue
			}
			if last := settings[i].LastSentAt; last != nil && !last.Before(dayStart) {
				return false, nil
			}
			t := at
			settings[i].LastSentAt = &t
			s.reminders[invoiceID] = settings
			return true, nil
		}
	}
	return false, nil
}

// Payments returns every stored payment.
func (s *InvoiceStore) Payments() []invoice.Payment {
	s.pmu.Lock()
	defer s.pmu.Unlock()
	return slices.Clone(s.payments)
}

// Snapshot implements Snapshotter including payments.
func (s *InvoiceStore) Snapshot() func() {
	restoreDocs := s.DocumentStore.Snapshot()
	s.pmu.Lock()
	payments := slices.Clone(s.payments)
	s.pmu.Unlock()
	return func() {
		restoreDocs()
		s.pmu.Lock()
		s.payments = payments
		s.pmu.Unlock()
	}
}
