package test

import (
	"context"
	"slices"
	"sync"
	"time"

	"docflow/internal/core/apperror"
	"docflow/internal/core/id"
	"docflow/internal/domain/audit"
	"docflow/internal/domain/notification"
)

// Snapshotter can capture its state and return a restore function.
type Snapshotter interface {
	Snapshot() func()
}

// Tx is a tx.Manager that restores registered stores when fn fails.
type Tx struct {
	Stores []Snapshotter
}

// NewTx creates a Tx over the given stores.
func NewTx(stores ...Snapshotter) *Tx {
	return &Tx{Stores: stores}
}

// RunInTransaction implements tx.Manager. Nested calls share the outer
// snapshot.
func (t *Tx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txMarker{}) != nil {
		return fn(ctx)
	}
	restores := make([]func(), 0, len(t.Stores))
	for _, s := range t.Stores {
		restores = append(restores, s.Snapshot())
	}
	if err := fn(context.WithValue(ctx, txMarker{}, true)); err != nil {
		for _, r := range restores {
			r()
		}
		return err
	}
	return nil
}

type txMarker struct{}

// Trail is an in-memory audit.Trail.
type Trail struct {
	mu      sync.Mutex
	entries []audit.StatusHistoryEntry

	// Err is returned by Append
	Err error
}

func (t *Trail) Append(_ context.Context, e audit.StatusHistoryEntry) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.Err != nil {
		return t.Err
	}
	t.entries = append(t.entries, e)
	return nil
}

func (t *Trail) List(_ context.Context, kind audit.DocumentKind, docID id.ID) ([]audit.StatusHistoryEntry, error) {
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

// Entries returns every entry in append order.
func (t *Trail) Entries() []audit.StatusHistoryEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.entries)
}

// Snapshot implements Snapshotter.
func (t *Trail) Snapshot() func() {
	t.mu.Lock()
	saved := slices.Clone(t.entries)
	t.mu.Unlock()
	return func() {
		t.mu.Lock()
		t.entries = saved
		t.mu.Unlock()
	}
}

// Sender records messages and optionally fails.
type Sender struct {
	mu   sync.Mutex
	sent []notification.Message

	// Err is returned after recording the message
	Err error
}

func (s *Sender) Send(_ context.Context, msg notification.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return s.Err
}

// Sent returns the recorded messages.
func (s *Sender) Sent() []notification.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.sent)
}

// Vendors maps vendor ids to e-mail addresses.
type Vendors struct {
	mu     sync.Mutex
	emails map[id.ID]string
}

// NewVendors registers one vendor and returns its id.
func NewVendors(email string) (*Vendors, id.ID) {
	v := &Vendors{emails: make(map[id.ID]string)}
	vendorID := v.Add(email)
	return v, vendorID
}

// Add registers a vendor.
func (v *Vendors) Add(email string) id.ID {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.emails == nil {
		v.emails = make(map[id.ID]string)
	}
	vendorID := id.New()
	v.emails[vendorID] = email
	return vendorID
}

func (v *Vendors) Exists(_ context.Context, vendorID id.ID) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, ok := v.emails[vendorID]
	return ok, nil
}

func (v *Vendors) VendorEmail(_ context.Context, vendorID id.ID) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	email, ok := v.emails[vendorID]
	if !ok {
		return "", apperror.NewNotFound("vendor", vendorID.String())
	}
	return email, nil
}

// Clock returns a fixed instant that tests can move.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock creates a clock at t.
func NewClock(t time.Time) *Clock {
	return &Clock{now: t}
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
