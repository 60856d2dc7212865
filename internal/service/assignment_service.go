package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/helpdesk-io/helpdesk-service/internal/domain"
	"github.com/helpdesk-io/helpdesk-service/internal/events"
	"github.com/helpdesk-io/helpdesk-service/internal/policy"
	"github.com/helpdesk-io/helpdesk-service/internal/repository"
	apperrors "github.com/helpdesk-io/helpdesk-service/pkg/util/errorutil"
)

// AssignmentService handles claiming tickets from the queue and admin
// assignment. Assignment always pulls the ticket into in_progress.
type AssignmentService struct {
	tickets    repository.TicketRepository
	users      repository.UserRepository
	history    repository.TicketHistoryRepository
	dispatcher events.Dispatcher
}

// AssignmentDependencies bundles repositories for assignment service.
type AssignmentDependencies struct {
	TicketRepo  repository.TicketRepository
	UserRepo    repository.UserRepository
	HistoryRepo repository.TicketHistoryRepository
	Dispatcher  events.Dispatcher
}

// NewAssignmentService constructs the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	return &AssignmentService{
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		history:    deps.HistoryRepo,
		dispatcher: deps.Dispatcher,
	}
}

// SelfAssign lets a support actor claim an unassigned ticket from their own
// tier's queue.
func (s *AssignmentService) SelfAssign(ctx context.Context, actor policy.Actor, ticketID string) (*domain.Ticket, error) {
	tier, ok := actor.Role.SupportTier()
	if !ok {
		return nil, apperrors.NewForbidden("only support staff may claim tickets")
	}
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !policy.CanSelfAssign(actor, ticket) {
		if ticket.Assigned() {
			return nil, apperrors.NewConflict("ticket is already assigned", map[string]any{"assignee_id": *ticket.AssigneeID})
		}
		if ticket.Status == domain.TicketStatusResolved {
			return nil, apperrors.NewConflict("resolved tickets cannot be claimed", nil)
		}
		return nil, apperrors.NewForbidden("ticket is outside your support queue")
	}
	return s.apply(ctx, actor, ticket, actor.ID, tier)
}

// Assign lets an admin attach any support user to the ticket, including
// overriding an existing assignment. The target user's role must match the
// requested support level.
func (s *AssignmentService) Assign(ctx context.Context, actor policy.Actor, ticketID, assigneeID string, level domain.SupportLevel) (*domain.Ticket, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("only admins may assign tickets directly")
	}
	if !level.Valid() {
		return nil, apperrors.NewValidationError("invalid support level", map[string]any{"support_level": "unknown value"})
	}

	assignee, err := s.users.GetByID(ctx, assigneeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": assigneeID})
		}
		return nil, apperrors.MapError(err)
	}
	tier, ok := assignee.Role.SupportTier()
	if !ok {
		return nil, apperrors.NewValidationError("assignee is not support staff", map[string]any{"role": assignee.Role})
	}
	if tier != level {
		return nil, apperrors.NewValidationError("support level does not match assignee role", map[string]any{
			"support_level": level,
			"role":          assignee.Role,
		})
	}

	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, actor, ticket, assignee.ID, level)
}

// apply writes the assignment and its side effects: support level follows the
// assignee's tier, status moves to in_progress, and the audit trail records
// each field that changed.
func (s *AssignmentService) apply(ctx context.Context, actor policy.Actor, ticket *domain.Ticket, assigneeID string, level domain.SupportLevel) (*domain.Ticket, error) {
	oldAssignee := ""
	if ticket.AssigneeID != nil {
		oldAssignee = *ticket.AssigneeID
	}
	oldLevel := ticket.QueueTier()
	oldStatus := ticket.Status

	ticket.AssigneeID = &assigneeID
	ticket.SupportLevel = &level
	ticket.Status = domain.TicketStatusInProgress
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	if oldAssignee != assigneeID {
		s.audit(ctx, actor, ticket.ID, domain.FieldAssignee, oldAssignee, assigneeID)
	}
	if oldLevel != level {
		s.audit(ctx, actor, ticket.ID, domain.FieldSupportLevel, string(oldLevel), string(level))
	}
	if oldStatus != ticket.Status {
		s.audit(ctx, actor, ticket.ID, domain.FieldStatus, string(oldStatus), string(ticket.Status))
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventTicketAssigned,
			TicketID:  ticket.ID,
			ActorID:   actor.ID,
			ActorRole: actor.Role,
			Timestamp: time.Now(),
			Payload: events.TicketAssignedPayload{
				AssigneeID:   assigneeID,
				SupportLevel: level,
			},
		})
	}
	return ticket, nil
}

func (s *AssignmentService) loadTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *AssignmentService) audit(ctx context.Context, actor policy.Actor, ticketID string, field domain.TicketField, oldValue, newValue string) {
	if s.history == nil {
		return
	}
	_ = s.history.Create(ctx, &domain.TicketHistory{
		TicketID:    ticketID,
		Field:       field,
		OldValue:    oldValue,
		NewValue:    newValue,
		ChangedByID: actor.ID,
	})
}
