package policy

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/helpdesk-io/helpdesk-service/internal/domain"
)

func strPtr(s string) *string { return &s }

func levelPtr(l domain.SupportLevel) *domain.SupportLevel { return &l }

func baseTicket() *domain.Ticket {
	return &domain.Ticket{
		ID:          "ticket-1",
		SubmitterID: "submitter-1",
		Status:      domain.TicketStatusNew,
		Priority:    domain.TicketPriorityMedium,
		Category:    domain.CategorySoftware,
	}
}

func TestCanView(t *testing.T) {
	submitter := Actor{ID: "submitter-1", Role: domain.RoleUser}
	otherUser := Actor{ID: "user-2", Role: domain.RoleUser}
	firstline := Actor{ID: "fl-1", Role: domain.RoleFirstline}
	secondline := Actor{ID: "sl-1", Role: domain.RoleSecondline}
	admin := Actor{ID: "admin-1", Role: domain.RoleAdmin}

	t.Run("unassigned ticket sits in the firstline queue", func(t *testing.T) {
		ticket := baseTicket()
		require.True(t, CanView(submitter, ticket))
		require.False(t, CanView(otherUser, ticket))
		require.True(t, CanView(firstline, ticket))
		require.False(t, CanView(secondline, ticket))
		require.True(t, CanView(admin, ticket))
	})

	t.Run("escalated ticket moves to the secondline queue", func(t *testing.T) {
		ticket := baseTicket()
		ticket.Status = domain.TicketStatusEscalated
		ticket.SupportLevel = levelPtr(domain.SupportLevelSecondline)
		require.False(t, CanView(firstline, ticket))
		require.True(t, CanView(secondline, ticket))
		require.True(t, CanView(submitter, ticket))
	})

	t.Run("assignee keeps access regardless of queue", func(t *testing.T) {
		ticket := baseTicket()
		ticket.AssigneeID = strPtr("fl-1")
		ticket.SupportLevel = levelPtr(domain.SupportLevelSecondline)
		require.True(t, CanView(firstline, ticket))
	})

	t.Run("nil ticket fails closed", func(t *testing.T) {
		require.False(t, CanView(admin, nil))
	})
}

func TestCanUpdateContent(t *testing.T) {
	submitter := Actor{ID: "submitter-1", Role: domain.RoleUser}

	ticket := baseTicket()
	require.True(t, CanUpdateContent(submitter, ticket))

	ticket.Status = domain.TicketStatusResolved
	require.False(t, CanUpdateContent(submitter, ticket))

	ticket.Status = domain.TicketStatusInProgress
	require.False(t, CanUpdateContent(Actor{ID: "user-2", Role: domain.RoleUser}, ticket))
	require.False(t, CanUpdateContent(Actor{ID: "fl-1", Role: domain.RoleFirstline}, ticket))
	require.False(t, CanUpdateContent(Actor{ID: "admin-1", Role: domain.RoleAdmin}, ticket))
}

func TestCanComment(t *testing.T) {
	submitter := Actor{ID: "submitter-1", Role: domain.RoleUser}
	assignee := Actor{ID: "fl-1", Role: domain.RoleFirstline}
	bystander := Actor{ID: "fl-2", Role: domain.RoleFirstline}
	admin := Actor{ID: "admin-1", Role: domain.RoleAdmin}

	ticket := baseTicket()
	ticket.AssigneeID = strPtr("fl-1")
	ticket.SupportLevel = levelPtr(domain.SupportLevelFirstline)

	require.True(t, CanComment(submitter, ticket))
	require.True(t, CanComment(assignee, ticket))
	require.True(t, CanComment(admin, ticket))

	// view access is not enough: the queue-mate can look but not comment
	require.True(t, CanView(bystander, ticket))
	require.False(t, CanComment(bystander, ticket))
}

func TestCanDelete(t *testing.T) {
	ticket := baseTicket()
	require.True(t, CanDelete(Actor{ID: "submitter-1", Role: domain.RoleUser}, ticket))
	require.True(t, CanDelete(Actor{ID: "admin-1", Role: domain.RoleAdmin}, ticket))
	require.False(t, CanDelete(Actor{ID: "user-2", Role: domain.RoleUser}, ticket))
	require.False(t, CanDelete(Actor{ID: "fl-1", Role: domain.RoleFirstline}, ticket))
}

func TestCanUpdatePriority(t *testing.T) {
	ticket := baseTicket()

	require.True(t, CanUpdatePriority(Actor{ID: "admin-1", Role: domain.RoleAdmin}, ticket))
	require.True(t, CanUpdatePriority(Actor{ID: "fl-1", Role: domain.RoleFirstline}, ticket))
	require.False(t, CanUpdatePriority(Actor{ID: "sl-1", Role: domain.RoleSecondline}, ticket))
	require.False(t, CanUpdatePriority(Actor{ID: "submitter-1", Role: domain.RoleUser}, ticket))
}

func TestAllowsCreate(t *testing.T) {
	require.True(t, Allows(Actor{ID: "u1", Role: domain.RoleUser}, nil, ActionCreate))
	require.False(t, Allows(Actor{ID: "fl-1", Role: domain.RoleFirstline}, nil, ActionCreate))
	require.False(t, Allows(Actor{ID: "admin-1", Role: domain.RoleAdmin}, nil, ActionCreate))
}

func TestAllowsUnknownActionDenied(t *testing.T) {
	require.False(t, Allows(Actor{ID: "admin-1", Role: domain.RoleAdmin}, baseTicket(), Action("reopen")))
}
