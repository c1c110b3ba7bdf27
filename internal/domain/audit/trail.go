package audit

import (
	"context"
	"strings"
	"time"

	"docflow/internal/core/entity"
	"docflow/internal/core/id"
)

// Actor identifies who caused a status change.
type Actor string

// SystemActor marks changes made by scheduled jobs rather than a user.
const SystemActor Actor = "system"

// IsSystem reports whether the actor is the scheduler sentinel.
func (a Actor) IsSystem() bool {
	return a == SystemActor
}

// IsReservedUserID reports whether userID collides with SystemActor.
// Such ids are never issued to or accepted from users.
func IsReservedUserID(userID string) bool {
	return strings.EqualFold(strings.TrimSpace(userID), string(SystemActor))
}

// String implements fmt.Stringer.
func (a Actor) String() string {
	return string(a)
}

// DocumentKind distinguishes purchase orders from invoices in shared tables.
type DocumentKind string

const (
	KindPurchaseOrder DocumentKind = "purchase_order"
	KindInvoice       DocumentKind = "invoice"
)

// StatusHistoryEntry is one immutable row of a document's status history.
type StatusHistoryEntry struct {
	ID             id.ID         `db:"id" json:"id"`
	DocumentID     id.ID         `db:"document_id" json:"documentId"`
	DocumentKind   DocumentKind  `db:"document_kind" json:"documentKind"`
	Status         entity.Status `db:"status" json:"status"`
	PreviousStatus entity.Status `db:"previous_status" json:"previousStatus,omitempty"`
	Comment        string        `db:"comment" json:"comment,omitempty"`
	Actor          Actor         `db:"actor" json:"actor"`
	CreatedAt      time.Time     `db:"created_at" json:"createdAt"`
}

// NewStatusHistoryEntry builds an entry stamped with a fresh id and now.
func NewStatusHistoryEntry(
	kind DocumentKind,
	documentID id.ID,
	previous, status entity.Status,
	actor Actor,
	comment string,
	now time.Time,
) StatusHistoryEntry {
	return StatusHistoryEntry{
		ID:             id.New(),
		DocumentID:     documentID,
		DocumentKind:   kind,
		Status:         status,
		PreviousStatus: previous,
		Comment:        comment,
		Actor:          actor,
		CreatedAt:      now.UTC(),
	}
}

// Trail is the append-only status history store.
// Entries are never updated or deleted.
type Trail interface {
	// Append inserts one entry. Runs inside the caller's transaction.
	Append(ctx context.Context, entry StatusHistoryEntry) error

	// List returns the entries of a document ordered oldest first.
	List(ctx context.Context, kind DocumentKind, documentID id.ID) ([]StatusHistoryEntry, error)
}
