// Package policy holds the access-control predicate and the ticket lifecycle
// state machine. Every handler and service consults this package; permission
// rules are never re-derived inline elsewhere.
package policy

import "github.com/helpdesk-io/helpdesk-service/internal/domain"

// Action enumerates the operations gated by the access predicate.
type Action string

const (
	ActionView          Action = "view"
	ActionCreate        Action = "create"
	ActionUpdateContent Action = "update_content"
	ActionUpdateStatus  Action = "update_status"
	ActionAssign        Action = "assign"
	ActionComment       Action = "comment"
	ActionDelete        Action = "delete"
)

// Actor is the authenticated caller as seen by the predicate.
type Actor struct {
	ID   string
	Role domain.Role
}

// Allows decides whether the actor may perform action on the ticket. For
// ActionCreate the ticket may be nil. Transition-specific checks
// (CanSetStatus, CanSelfAssign, CanEscalate) refine the coarse answer.
func Allows(actor Actor, t *domain.Ticket, action Action) bool {
	switch action {
	case ActionCreate:
		return actor.Role == domain.RoleUser
	case ActionView:
		return CanView(actor, t)
	case ActionUpdateContent:
		return CanUpdateContent(actor, t)
	case ActionUpdateStatus:
		return canTouchStatus(actor, t)
	case ActionAssign:
		return actor.Role == domain.RoleAdmin || actor.Role.IsSupport()
	case ActionComment:
		return CanComment(actor, t)
	case ActionDelete:
		return CanDelete(actor, t)
	}
	return false
}

// CanView allows admins, the submitter, the assignee, and support staff whose
// tier matches the queue the ticket currently sits in.
func CanView(actor Actor, t *domain.Ticket) bool {
	if t == nil {
		return false
	}
	switch actor.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleUser:
		return t.SubmitterID == actor.ID
	case domain.RoleFirstline, domain.RoleSecondline:
		if isAssignee(actor, t) {
			return true
		}
		tier, _ := actor.Role.SupportTier()
		return t.QueueTier() == tier
	}
	return false
}

// CanUpdateContent restricts title/description/category edits to the
// submitter, and only before resolution.
func CanUpdateContent(actor Actor, t *domain.Ticket) bool {
	if t == nil || t.SubmitterID != actor.ID || actor.Role != domain.RoleUser {
		return false
	}
	return t.Status != domain.TicketStatusResolved
}

// CanUpdatePriority allows support staff with view access, and admins.
func CanUpdatePriority(actor Actor, t *domain.Ticket) bool {
	if actor.Role == domain.RoleAdmin {
		return true
	}
	return actor.Role.IsSupport() && CanView(actor, t)
}

// CanComment allows the submitter, the current assignee, and admins. Support
// staff not assigned to the ticket may look but not comment.
func CanComment(actor Actor, t *domain.Ticket) bool {
	if t == nil {
		return false
	}
	switch actor.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleUser:
		return t.SubmitterID == actor.ID
	case domain.RoleFirstline, domain.RoleSecondline:
		return isAssignee(actor, t)
	}
	return false
}

// CanDelete allows the submitter and admins only.
func CanDelete(actor Actor, t *domain.Ticket) bool {
	if t == nil {
		return false
	}
	return actor.Role == domain.RoleAdmin ||
		(actor.Role == domain.RoleUser && t.SubmitterID == actor.ID)
}

// canTouchStatus is the coarse gate for any status mutation: admin, or the
// assigned support actor. The transition table narrows which targets are legal.
func canTouchStatus(actor Actor, t *domain.Ticket) bool {
	if t == nil {
		return false
	}
	if actor.Role == domain.RoleAdmin {
		return true
	}
	return actor.Role.IsSupport() && isAssignee(actor, t)
}

func isAssignee(actor Actor, t *domain.Ticket) bool {
	return t.AssigneeID != nil && *t.AssigneeID == actor.ID
}
