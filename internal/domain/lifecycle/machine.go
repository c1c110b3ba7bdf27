// Package lifecycle implements the purchase order and invoice status machines
// and the transactional transition engine shared by both.
package lifecycle

import (
	"sort"
	"time"

	"docflow/internal/core/apperror"
	"docflow/internal/core/entity"
	"docflow/internal/domain/audit"
)

// Edge is one allowed status change.
type Edge struct {
	From entity.Status
	To   entity.Status

	// SystemOnly edges are rejected when requested by a user.
	SystemOnly bool
	// RequiresPastDue edges need a due date strictly before today.
	RequiresPastDue bool
	// RequiresPayment edges need payment data and record a payment.
	RequiresPayment bool
}

// Machine is the transition table of one document kind.
type Machine struct {
	kind  audit.DocumentKind
	edges map[entity.Status]map[entity.Status]Edge
}

// NewMachine builds a machine from its edges. Anything not listed is denied.
func NewMachine(kind audit.DocumentKind, edges ...Edge) *Machine {
	m := &Machine{
		kind:  kind,
		edges: make(map[entity.Status]map[entity.Status]Edge),
	}
	for _, e := range edges {
		if m.edges[e.From] == nil {
			m.edges[e.From] = make(map[entity.Status]Edge)
		}
		m.edges[e.From][e.To] = e
	}
	return m
}

// PurchaseOrderMachine returns the purchase order table.
// COMPLETED and REJECTED keep their way back to PENDING for corrections.
func PurchaseOrderMachine() *Machine {
	return NewMachine(audit.KindPurchaseOrder,
		Edge{From: entity.StatusDraft, To: entity.StatusPending},

		Edge{From: entity.StatusPending, To: entity.StatusSent},
		Edge{From: entity.StatusPending, To: entity.StatusRejected},

		Edge{From: entity.StatusSent, To: entity.StatusCompleted},
		Edge{From: entity.StatusSent, To: entity.StatusOverdue},
		Edge{From: entity.StatusSent, To: entity.StatusDraft},
		Edge{From: entity.StatusSent, To: entity.StatusPending},

		Edge{From: entity.StatusCompleted, To: entity.StatusRejected},
		Edge{From: entity.StatusCompleted, To: entity.StatusOverdue},
		Edge{From: entity.StatusCompleted, To: entity.StatusPending},

		Edge{From: entity.StatusRejected, To: entity.StatusDraft},
		Edge{From: entity.StatusRejected, To: entity.StatusPending},

		Edge{From: entity.StatusOverdue, To: entity.StatusPending},
		Edge{From: entity.StatusOverdue, To: entity.StatusCompleted},
	)
}

// InvoiceMachine returns the invoice table. PAID, REJECTED and CANCELLED
// have no outgoing edges.
func InvoiceMachine() *Machine {
	overdue := func(from entity.Status) Edge {
		return Edge{From: from, To: entity.StatusOverdue, SystemOnly: true, RequiresPastDue: true}
	}
	paid := func(from entity.Status) Edge {
		return Edge{From: from, To: entity.StatusPaid, RequiresPayment: true}
	}

	return NewMachine(audit.KindInvoice,
		Edge{From: entity.StatusDraft, To: entity.StatusPending},

		Edge{From: entity.StatusPending, To: entity.StatusSent},
		Edge{From: entity.StatusPending, To: entity.StatusApproved},
		Edge{From: entity.StatusPending, To: entity.StatusRejected},
		paid(entity.StatusPending),
		overdue(entity.StatusPending),

		paid(entity.StatusSent),
		overdue(entity.StatusSent),

		Edge{From: entity.StatusApproved, To: entity.StatusSent},
		paid(entity.StatusApproved),

		paid(entity.StatusOverdue),
	)
}

// Kind returns the document kind the table belongs to.
func (m *Machine) Kind() audit.DocumentKind {
	return m.kind
}

// Lookup returns the edge from -> to if the table has it.
func (m *Machine) Lookup(from, to entity.Status) (Edge, bool) {
	e, ok := m.edges[from][to]
	return e, ok
}

// Allowed reports whether the table contains from -> to.
func (m *Machine) Allowed(from, to entity.Status) bool {
	_, ok := m.Lookup(from, to)
	return ok
}

// Targets lists the statuses reachable from the given one, sorted.
func (m *Machine) Targets(from entity.Status) []entity.Status {
	out := make([]entity.Status, 0, len(m.edges[from]))
	for to := range m.edges[from] {
		out = append(out, to)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Statuses lists every status that appears in the table, sorted.
func (m *Machine) Statuses() []entity.Status {
	seen := make(map[entity.Status]struct{})
	for from, tos := range m.edges {
		seen[from] = struct{}{}
		for to := range tos {
			seen[to] = struct{}{}
		}
	}
	out := make([]entity.Status, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// RequiresPayment reports whether entering status needs payment data.
func (m *Machine) RequiresPayment(from, to entity.Status) bool {
	e, ok := m.Lookup(from, to)
	return ok && e.RequiresPayment
}

// Check validates from -> to for the given actor and document state.
// Every rejection is INVALID_STATUS_TRANSITION naming both statuses.
func (m *Machine) Check(doc *entity.Document, to entity.Status, actor audit.Actor, now time.Time, loc *time.Location) error {
	from := doc.Status
	e, ok := m.Lookup(from, to)
	if !ok {
		return apperror.NewInvalidStatusTransition(from.String(), to.String()).
			WithDetail("kind", string(m.kind))
	}
	if e.SystemOnly && !actor.IsSystem() {
		return apperror.NewInvalidStatusTransition(from.String(), to.String()).
			WithDetail("kind", string(m.kind)).
			WithDetail("reason", "system only")
	}
	if e.RequiresPastDue && !doc.IsPastDue(now, loc) {
		return apperror.NewInvalidStatusTransition(from.String(), to.String()).
			WithDetail("kind", string(m.kind)).
			WithDetail("reason", "not past due")
	}
	return nil
}
