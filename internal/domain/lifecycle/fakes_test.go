package lifecycle

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"
	"time"

	"docflow/internal/core/apperror"
	"docflow/internal/core/entity"
	"docflow/internal/core/id"
	"docflow/internal/domain/audit"
	"docflow/internal/domain/notification"
)

type testDoc struct {
	entity.Document
}

type memStore struct {
	mu        sync.Mutex
	docs      map[id.ID]testDoc
	updateErr error
	itemsErr  error
	// bumpBeforeUpdate simulates a concurrent writer between lock and update
	bumpBeforeUpdate bool
}

func newMemStore(docs ...testDoc) *memStore {
	s := &memStore{docs: make(map[id.ID]testDoc)}
	for _, d := range docs {
		s.docs[d.ID] = d
	}
	return s
}

func (s *memStore) get(docID id.ID) testDoc {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs[docID]
}

func (s *memStore) GetForUpdate(_ context.Context, docID id.ID) (*testDoc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[docID]
	if !ok {
		return nil, apperror.NewNotFound("documents", docID.String())
	}
	d.Items = slices.Clone(d.Items)
	return &d, nil
}

func (s *memStore) Update(_ context.Context, doc *testDoc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	cur := s.docs[doc.ID]
	if s.bumpBeforeUpdate {
		cur.Version++
		s.docs[doc.ID] = cur
	}
	if cur.Version != doc.Version {
		return apperror.NewConcurrentModification("documents", doc.ID)
	}
	doc.Touch()
	stored := *doc
	stored.Items = cur.Items
	s.docs[doc.ID] = stored
	return nil
}

func (s *memStore) ReplaceItems(_ context.Context, docID id.ID, items []entity.LineItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.itemsErr != nil {
		return s.itemsErr
	}
	d := s.docs[docID]
	d.Items = slices.Clone(items)
	s.docs[docID] = d
	return nil
}

type memTrail struct {
	mu        sync.Mutex
	entries   []audit.StatusHistoryEntry
	appendErr error
}

func (t *memTrail) Append(_ context.Context, e audit.StatusHistoryEntry) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.appendErr != nil {
		return t.appendErr
	}
	t.entries = append(t.entries, e)
	return nil
}

func (t *memTrail) List(_ context.Context, kind audit.DocumentKind, docID id.ID) ([]audit.StatusHistoryEntry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []audit.StatusHistoryEntry
	for _, e := range t.entries {
		if e.DocumentKind == kind && e.DocumentID == docID {
			out = append(out, e)
		}
	}
	return out, nil
}

// snapshotTx restores store and trail when fn fails.
type snapshotTx struct {
	store *memStore
	trail *memTrail
}

func (m snapshotTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.store.mu.Lock()
	docs := maps.Clone(m.store.docs)
	m.store.mu.Unlock()
	m.trail.mu.Lock()
	entries := slices.Clone(m.trail.entries)
	m.trail.mu.Unlock()

	if err := fn(ctx); err != nil {
		m.store.mu.Lock()
		m.store.docs = docs
		m.store.mu.Unlock()
		m.trail.mu.Lock()
		m.trail.entries = entries
		m.trail.mu.Unlock()
		return err
	}
	return nil
}

type staticContacts map[id.ID]string

func (c staticContacts) VendorEmail(_ context.Context, vendorID id.ID) (string, error) {
	email, ok := c[vendorID]
	if !ok {
		return "", apperror.NewNotFound("vendor", vendorID.String())
	}
	return email, nil
}

type recordingSender struct {
	mu   sync.Mutex
	sent []notification.Message
	err  error
}

func (s *recordingSender) Send(_ context.Context, msg notification.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return s.err
}

var errDisk = errors.New("disk full")

func fixedNow() time.Time {
	return time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)
}
