package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/helpdesk-io/helpdesk-service/internal/domain"
	"github.com/helpdesk-io/helpdesk-service/internal/events"
)

type assignmentFixture struct {
	svc        *AssignmentService
	tickets    *fakeTicketRepo
	users      *fakeUserRepo
	history    *fakeHistoryRepo
	dispatcher *capturingDispatcher
}

func newAssignmentFixture() *assignmentFixture {
	f := &assignmentFixture{
		tickets:    newFakeTicketRepo(),
		users:      newFakeUserRepo(),
		history:    newFakeHistoryRepo(),
		dispatcher: &capturingDispatcher{},
	}
	f.svc = NewAssignmentService(AssignmentDependencies{
		TicketRepo:  f.tickets,
		UserRepo:    f.users,
		HistoryRepo: f.history,
		Dispatcher:  f.dispatcher,
	})
	return f
}

func (f *assignmentFixture) newTicket() *domain.Ticket {
	return f.tickets.add(domain.Ticket{
		SubmitterID: submitter.ID,
		Status:      domain.TicketStatusNew,
		Category:    domain.CategoryOther,
		Priority:    domain.TicketPriorityLow,
	})
}

func TestSelfAssign(t *testing.T) {
	f := newAssignmentFixture()
	ctx := context.Background()
	ticket := f.newTicket()

	got, err := f.svc.SelfAssign(ctx, firstline, ticket.ID)
	require.NoError(t, err)
	require.Equal(t, firstline.ID, *got.AssigneeID)
	require.Equal(t, domain.SupportLevelFirstline, *got.SupportLevel)
	require.Equal(t, domain.TicketStatusInProgress, got.Status)
	require.Len(t, f.dispatcher.byType(events.EventTicketAssigned), 1)

	// claiming an already-claimed ticket conflicts, even for the same actor
	_, err = f.svc.SelfAssign(ctx, firstline, ticket.ID)
	requireCode(t, err, "CONFLICT")
	_, err = f.svc.SelfAssign(ctx, secondline, ticket.ID)
	requireCode(t, err, "CONFLICT")
}

func TestSelfAssignTierMismatch(t *testing.T) {
	f := newAssignmentFixture()
	ctx := context.Background()
	ticket := f.newTicket()

	// a new unassigned ticket sits in the firstline queue
	_, err := f.svc.SelfAssign(ctx, secondline, ticket.ID)
	requireCode(t, err, "FORBIDDEN")

	_, err = f.svc.SelfAssign(ctx, submitter, ticket.ID)
	requireCode(t, err, "FORBIDDEN")
	_, err = f.svc.SelfAssign(ctx, admin, ticket.ID)
	requireCode(t, err, "FORBIDDEN")
}

func TestSelfAssignResolvedTicket(t *testing.T) {
	f := newAssignmentFixture()
	ticket := f.newTicket()
	ticket.Status = domain.TicketStatusResolved

	_, err := f.svc.SelfAssign(context.Background(), firstline, ticket.ID)
	requireCode(t, err, "CONFLICT")
}

func TestAdminAssign(t *testing.T) {
	f := newAssignmentFixture()
	ctx := context.Background()
	staff := f.users.add(domain.User{ID: "staff-sl-9", Role: domain.RoleSecondline, Name: "SL", Email: "sl@example.com"})
	ticket := f.newTicket()

	got, err := f.svc.Assign(ctx, admin, ticket.ID, staff.ID, domain.SupportLevelSecondline)
	require.NoError(t, err)
	require.Equal(t, staff.ID, *got.AssigneeID)
	require.Equal(t, domain.SupportLevelSecondline, *got.SupportLevel)
	require.Equal(t, domain.TicketStatusInProgress, got.Status)

	// admins may also override an existing assignment
	other := f.users.add(domain.User{ID: "staff-sl-10", Role: domain.RoleSecondline, Name: "SL2", Email: "sl2@example.com"})
	got, err = f.svc.Assign(ctx, admin, ticket.ID, other.ID, domain.SupportLevelSecondline)
	require.NoError(t, err)
	require.Equal(t, other.ID, *got.AssigneeID)

	entries := f.history.forField(domain.FieldAssignee)
	require.Len(t, entries, 2)
	require.Equal(t, staff.ID, entries[1].OldValue)
	require.Equal(t, other.ID, entries[1].NewValue)
}

func TestAdminAssignValidation(t *testing.T) {
	f := newAssignmentFixture()
	ctx := context.Background()
	staff := f.users.add(domain.User{ID: "staff-fl-9", Role: domain.RoleFirstline, Name: "FL", Email: "fl@example.com"})
	enduser := f.users.add(domain.User{ID: "user-9", Role: domain.RoleUser, Name: "U", Email: "u@example.com"})
	ticket := f.newTicket()

	_, err := f.svc.Assign(ctx, firstline, ticket.ID, staff.ID, domain.SupportLevelFirstline)
	requireCode(t, err, "FORBIDDEN")

	_, err = f.svc.Assign(ctx, admin, ticket.ID, staff.ID, domain.SupportLevelSecondline)
	requireCode(t, err, "VALIDATION_FAILED")

	_, err = f.svc.Assign(ctx, admin, ticket.ID, enduser.ID, domain.SupportLevelFirstline)
	requireCode(t, err, "VALIDATION_FAILED")

	_, err = f.svc.Assign(ctx, admin, ticket.ID, "missing", domain.SupportLevelFirstline)
	requireCode(t, err, "NOT_FOUND")

	_, err = f.svc.Assign(ctx, admin, "missing", staff.ID, domain.SupportLevelFirstline)
	requireCode(t, err, "NOT_FOUND")
}
