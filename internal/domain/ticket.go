package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusNew        TicketStatus = "new"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusEscalated  TicketStatus = "escalated"
	TicketStatusResolved   TicketStatus = "resolved"
)

// Valid reports whether s is a member of the closed status set.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusNew, TicketStatusInProgress, TicketStatusEscalated, TicketStatusResolved:
		return true
	}
	return false
}

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
)

// Valid reports whether p is a member of the closed priority set.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh:
		return true
	}
	return false
}

// TicketCategory enumerates the fixed request categories.
type TicketCategory string

const (
	CategoryHardware TicketCategory = "Hardware"
	CategorySoftware TicketCategory = "Software"
	CategoryNetwork  TicketCategory = "Network"
	CategoryAccount  TicketCategory = "Account"
	CategoryOther    TicketCategory = "Other"
)

// Valid reports whether c is a member of the closed category set.
func (c TicketCategory) Valid() bool {
	switch c {
	case CategoryHardware, CategorySoftware, CategoryNetwork, CategoryAccount, CategoryOther:
		return true
	}
	return false
}

// SupportLevel identifies which support tier owns a ticket. A nil level on a
// ticket means it sits in the first-line queue and has never been escalated.
type SupportLevel string

const (
	SupportLevelFirstline  SupportLevel = "firstline"
	SupportLevelSecondline SupportLevel = "secondline"
)

// Valid reports whether l is a member of the closed support-level set.
func (l SupportLevel) Valid() bool {
	return l == SupportLevelFirstline || l == SupportLevelSecondline
}

// Field length limits enforced at the API boundary.
const (
	TitleMaxLen       = 100
	DescriptionMaxLen = 500
)

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID           string
	SubmitterID  string
	AssigneeID   *string
	SupportLevel *SupportLevel
	Title        string
	Description  string
	Category     TicketCategory
	Status       TicketStatus
	Priority     TicketPriority
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Assigned reports whether the ticket has an assignee.
func (t *Ticket) Assigned() bool {
	return t.AssigneeID != nil && *t.AssigneeID != ""
}

// QueueTier returns the tier whose queue the ticket currently belongs to.
// Unescalated tickets without an explicit level are first-line work.
func (t *Ticket) QueueTier() SupportLevel {
	if t.SupportLevel != nil {
		return *t.SupportLevel
	}
	return SupportLevelFirstline
}
