package entity

// Status is the lifecycle state of a purchase order or invoice.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusPending   Status = "PENDING"
	StatusSent      Status = "SENT"
	StatusApproved  Status = "APPROVED"
	StatusCompleted Status = "COMPLETED"
	StatusRejected  Status = "REJECTED"
	StatusOverdue   Status = "OVERDUE"
	StatusPaid      Status = "PAID"
	StatusCancelled Status = "CANCELLED"
)

// String implements fmt.Stringer.
func (s Status) String() string {
	return string(s)
}

// IsEditable reports whether header and items may still change in this status.
func (s Status) IsEditable() bool {
	return s == StatusDraft || s == StatusPending
}

// IsDeletable reports whether a document in this status may be soft-deleted.
func (s Status) IsDeletable() bool {
	return s == StatusDraft || s == StatusPending
}
