package domain

import "time"

// TicketField names a ticket attribute tracked in the audit trail.
type TicketField string

const (
	FieldStatus       TicketField = "status"
	FieldPriority     TicketField = "priority"
	FieldAssignee     TicketField = "assignee"
	FieldSupportLevel TicketField = "support_level"
)

// TicketHistory is an immutable audit entry recording a single field change.
type TicketHistory struct {
	ID          string
	TicketID    string
	Field       TicketField
	OldValue    string
	NewValue    string
	ChangedByID string
	CreatedAt   time.Time
}
