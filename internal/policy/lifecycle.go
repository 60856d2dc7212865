package policy

import "github.com/helpdesk-io/helpdesk-service/internal/domain"

// allowedTransitions is the lifecycle table. Resolved is terminal; only the
// admin override in CanSetStatus steps outside it.
var allowedTransitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusNew:        {domain.TicketStatusInProgress},
	domain.TicketStatusInProgress: {domain.TicketStatusEscalated, domain.TicketStatusResolved},
	domain.TicketStatusEscalated:  {domain.TicketStatusInProgress, domain.TicketStatusResolved},
	domain.TicketStatusResolved:   {},
}

// ValidTransition reports whether the lifecycle table permits current → next.
func ValidTransition(current, next domain.TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// CanSetStatus decides whether the actor may move the ticket to next. Admins
// may force any valid status (the resolved escape hatch); the assigned support
// actor is limited to in_progress and resolved, and to legal transitions.
func CanSetStatus(actor Actor, t *domain.Ticket, next domain.TicketStatus) bool {
	if t == nil || !next.Valid() {
		return false
	}
	if actor.Role == domain.RoleAdmin {
		return true
	}
	if !actor.Role.IsSupport() || !isAssignee(actor, t) {
		return false
	}
	if next != domain.TicketStatusInProgress && next != domain.TicketStatusResolved {
		return false
	}
	return ValidTransition(t.Status, next)
}

// CanEscalate decides whether the actor may escalate the ticket to the second
// line. Only the assigned first-line actor (or an admin) escalates, and only
// out of in_progress.
func CanEscalate(actor Actor, t *domain.Ticket) bool {
	if t == nil || !ValidTransition(t.Status, domain.TicketStatusEscalated) {
		return false
	}
	if actor.Role == domain.RoleAdmin {
		return true
	}
	return actor.Role == domain.RoleFirstline && isAssignee(actor, t)
}

// CanSelfAssign decides whether a support actor may claim the ticket. The
// ticket must be unassigned and sitting in the actor's own queue; forced
// reassignment needs an admin.
func CanSelfAssign(actor Actor, t *domain.Ticket) bool {
	if t == nil || t.Assigned() {
		return false
	}
	tier, ok := actor.Role.SupportTier()
	if !ok {
		return false
	}
	if t.Status == domain.TicketStatusResolved {
		return false
	}
	return t.QueueTier() == tier
}
