package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/helpdesk-io/helpdesk-service/internal/domain"
	"github.com/helpdesk-io/helpdesk-service/internal/events"
	"github.com/helpdesk-io/helpdesk-service/internal/policy"
	"github.com/helpdesk-io/helpdesk-service/internal/repository"
	apperrors "github.com/helpdesk-io/helpdesk-service/pkg/util/errorutil"
)

// TicketService coordinates ticket workflows. Every operation is gated by the
// policy package before anything about the ticket is returned.
type TicketService struct {
	tickets    repository.TicketRepository
	comments   repository.CommentRepository
	history    repository.TicketHistoryRepository
	dispatcher events.Dispatcher
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	CommentRepo repository.CommentRepository
	HistoryRepo repository.TicketHistoryRepository
	Dispatcher  events.Dispatcher
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Category    domain.TicketCategory
	Priority    domain.TicketPriority
}

// TicketListFilter describes listing filters; role scoping is applied on top.
type TicketListFilter struct {
	Statuses   []domain.TicketStatus
	Priorities []domain.TicketPriority
	Categories []domain.TicketCategory
	Limit      int
	Offset     int
}

// ContentUpdateInput carries the submitter-editable fields. Anything else the
// caller sent has already been stripped at the DTO boundary.
type ContentUpdateInput struct {
	Title       *string
	Description *string
	Category    *domain.TicketCategory
}

// TicketDetail is a ticket with its thread and audit trail.
type TicketDetail struct {
	Ticket   *domain.Ticket
	Comments []domain.Comment
	History  []domain.TicketHistory
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		comments:   deps.CommentRepo,
		history:    deps.HistoryRepo,
		dispatcher: deps.Dispatcher,
	}
}

// Create opens a new ticket for a submitter. Status is always `new`.
func (s *TicketService) Create(ctx context.Context, actor policy.Actor, input TicketCreateInput) (*domain.Ticket, error) {
	if !policy.Allows(actor, nil, policy.ActionCreate) {
		return nil, apperrors.NewForbidden("only end users may open tickets")
	}
	if err := validateCreate(&input); err != nil {
		return nil, err
	}

	ticket := &domain.Ticket{
		SubmitterID: actor.ID,
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Category:    input.Category,
		Status:      domain.TicketStatusNew,
		Priority:    input.Priority,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, actor, ticket.ID, events.EventTicketCreated, events.TicketCreatedPayload{
		Title:    ticket.Title,
		Category: ticket.Category,
		Priority: ticket.Priority,
	})
	return ticket, nil
}

// List returns tickets visible to the actor: submitters see their own,
// support staff see their tier's queue plus their own assignments, admins
// see everything.
func (s *TicketService) List(ctx context.Context, actor policy.Actor, filter TicketListFilter) ([]domain.Ticket, error) {
	repoFilter := repository.TicketFilter{
		Statuses:   filter.Statuses,
		Priorities: filter.Priorities,
		Categories: filter.Categories,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}
	switch {
	case actor.Role == domain.RoleAdmin:
		// no scoping
	case actor.Role.IsSupport():
		tier, _ := actor.Role.SupportTier()
		actorID := actor.ID
		repoFilter.TierQueue = &tier
		repoFilter.AssigneeID = &actorID
	default:
		actorID := actor.ID
		repoFilter.SubmitterID = &actorID
	}
	tickets, err := s.tickets.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// Get fetches a ticket with comments and history, failing closed: the view
// check runs before any content leaves the service.
func (s *TicketService) Get(ctx context.Context, actor policy.Actor, ticketID string) (*TicketDetail, error) {
	ticket, err := s.load(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !policy.CanView(actor, ticket) {
		return nil, apperrors.NewForbidden("not authorized to view this ticket")
	}
	comments, err := s.comments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	history, err := s.history.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &TicketDetail{Ticket: ticket, Comments: comments, History: history}, nil
}

// UpdateContent lets the submitter amend title/description/category while the
// ticket is still editable.
func (s *TicketService) UpdateContent(ctx context.Context, actor policy.Actor, ticketID string, input ContentUpdateInput) (*domain.Ticket, error) {
	ticket, err := s.load(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !policy.CanUpdateContent(actor, ticket) {
		if ticket.SubmitterID == actor.ID && ticket.Status == domain.TicketStatusResolved {
			return nil, apperrors.NewConflict("resolved tickets cannot be edited", nil)
		}
		return nil, apperrors.NewForbidden("not authorized to update this ticket")
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" || len(title) > domain.TitleMaxLen {
			return nil, apperrors.NewValidationError("invalid title", map[string]any{"title": fmt.Sprintf("required, at most %d characters", domain.TitleMaxLen)})
		}
		ticket.Title = title
	}
	if input.Description != nil {
		desc := strings.TrimSpace(*input.Description)
		if desc == "" || len(desc) > domain.DescriptionMaxLen {
			return nil, apperrors.NewValidationError("invalid description", map[string]any{"description": fmt.Sprintf("required, at most %d characters", domain.DescriptionMaxLen)})
		}
		ticket.Description = desc
	}
	if input.Category != nil {
		if !input.Category.Valid() {
			return nil, apperrors.NewValidationError("invalid category", map[string]any{"category": "unknown value"})
		}
		ticket.Category = *input.Category
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// UpdatePriority changes urgency; support staff need view access, admins may
// always.
func (s *TicketService) UpdatePriority(ctx context.Context, actor policy.Actor, ticketID string, priority domain.TicketPriority) (*domain.Ticket, error) {
	if !priority.Valid() {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": "unknown value"})
	}
	ticket, err := s.load(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !policy.CanUpdatePriority(actor, ticket) {
		return nil, apperrors.NewForbidden("not authorized to change priority")
	}
	old := ticket.Priority
	if old == priority {
		return ticket, nil
	}
	ticket.Priority = priority
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.audit(ctx, actor, ticket.ID, domain.FieldPriority, string(old), string(priority))
	return ticket, nil
}

// UpdateStatus moves the ticket through the lifecycle. Admins may force any
// status; the assigned support actor is limited to in_progress and resolved.
func (s *TicketService) UpdateStatus(ctx context.Context, actor policy.Actor, ticketID string, next domain.TicketStatus) (*domain.Ticket, error) {
	if !next.Valid() {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": "unknown value"})
	}
	ticket, err := s.load(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !policy.CanSetStatus(actor, ticket, next) {
		if policy.Allows(actor, ticket, policy.ActionUpdateStatus) {
			// right actor, wrong transition
			return nil, apperrors.NewConflict("status transition not allowed", map[string]any{
				"from": ticket.Status,
				"to":   next,
			})
		}
		return nil, apperrors.NewForbidden("not authorized to change status")
	}

	old := ticket.Status
	if old == next {
		return ticket, nil
	}
	ticket.Status = next
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	if next == domain.TicketStatusResolved {
		if err := s.appendResolutionComment(ctx, actor, ticket); err != nil {
			return nil, err
		}
	}
	s.audit(ctx, actor, ticket.ID, domain.FieldStatus, string(old), string(next))
	s.publish(ctx, actor, ticket.ID, events.EventTicketStatusChanged, events.TicketStatusChangedPayload{
		OldStatus: old,
		NewStatus: next,
	})
	return ticket, nil
}

// Escalate hands the ticket to the second line: status flips to escalated,
// the support level flips to secondline, and the assignee is cleared so
// second-line staff can claim it.
func (s *TicketService) Escalate(ctx context.Context, actor policy.Actor, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.load(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !policy.CanEscalate(actor, ticket) {
		if actor.Role == domain.RoleFirstline && ticket.AssigneeID != nil && *ticket.AssigneeID == actor.ID {
			return nil, apperrors.NewConflict("ticket cannot be escalated in its current state", map[string]any{"status": ticket.Status})
		}
		return nil, apperrors.NewForbidden("not authorized to escalate this ticket")
	}

	oldStatus := ticket.Status
	oldLevel := ticket.QueueTier()
	oldAssignee := ""
	if ticket.AssigneeID != nil {
		oldAssignee = *ticket.AssigneeID
	}

	secondline := domain.SupportLevelSecondline
	ticket.Status = domain.TicketStatusEscalated
	ticket.SupportLevel = &secondline
	ticket.AssigneeID = nil
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.audit(ctx, actor, ticket.ID, domain.FieldStatus, string(oldStatus), string(ticket.Status))
	s.audit(ctx, actor, ticket.ID, domain.FieldSupportLevel, string(oldLevel), string(secondline))
	if oldAssignee != "" {
		s.audit(ctx, actor, ticket.ID, domain.FieldAssignee, oldAssignee, "")
	}
	s.publish(ctx, actor, ticket.ID, events.EventTicketEscalated, events.TicketEscalatedPayload{
		FromLevel: oldLevel,
		ToLevel:   secondline,
	})
	return ticket, nil
}

// AddComment appends to the thread. Prior comments are never touched.
func (s *TicketService) AddComment(ctx context.Context, actor policy.Actor, ticketID, text string) (*domain.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.NewValidationError("comment text required", map[string]any{"text": "required"})
	}
	ticket, err := s.load(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !policy.CanComment(actor, ticket) {
		return nil, apperrors.NewForbidden("not authorized to comment on this ticket")
	}

	authorID := actor.ID
	comment := &domain.Comment{
		TicketID:   ticket.ID,
		AuthorID:   &authorID,
		AuthorType: authorType(actor.Role),
		Text:       text,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, actor, ticket.ID, events.EventTicketCommentAdded, events.TicketCommentAddedPayload{
		CommentID:   comment.ID,
		AuthorType:  comment.AuthorType,
		BodyPreview: preview(comment.Text, 120),
	})
	return comment, nil
}

// Delete removes a ticket; submitter or admin only.
func (s *TicketService) Delete(ctx context.Context, actor policy.Actor, ticketID string) error {
	ticket, err := s.load(ctx, ticketID)
	if err != nil {
		return err
	}
	if !policy.CanDelete(actor, ticket) {
		return apperrors.NewForbidden("not authorized to delete this ticket")
	}
	if err := s.tickets.Delete(ctx, ticket.ID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

func (s *TicketService) load(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// appendResolutionComment records who resolved the ticket and under which
// tier, as the newest entry in the thread.
func (s *TicketService) appendResolutionComment(ctx context.Context, actor policy.Actor, ticket *domain.Ticket) error {
	by := string(actor.Role)
	if tier, ok := actor.Role.SupportTier(); ok {
		by = string(tier) + " support staff"
	}
	comment := &domain.Comment{
		TicketID:   ticket.ID,
		AuthorType: domain.AuthorTypeSystem,
		Text:       fmt.Sprintf("Ticket marked as resolved by %s", by),
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

func (s *TicketService) audit(ctx context.Context, actor policy.Actor, ticketID string, field domain.TicketField, oldValue, newValue string) {
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

func (s *TicketService) publish(ctx context.Context, actor policy.Actor, ticketID string, eventType events.EventType, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TicketID:  ticketID,
		ActorID:   actor.ID,
		ActorRole: actor.Role,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}

func validateCreate(input *TicketCreateInput) error {
	details := map[string]any{}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		details["title"] = "required"
	} else if len(title) > domain.TitleMaxLen {
		details["title"] = fmt.Sprintf("at most %d characters", domain.TitleMaxLen)
	}
	desc := strings.TrimSpace(input.Description)
	if desc == "" {
		details["description"] = "required"
	} else if len(desc) > domain.DescriptionMaxLen {
		details["description"] = fmt.Sprintf("at most %d characters", domain.DescriptionMaxLen)
	}
	if !input.Category.Valid() {
		details["category"] = "unknown value"
	}
	if input.Priority == "" {
		input.Priority = domain.TicketPriorityMedium
	} else if !input.Priority.Valid() {
		details["priority"] = "unknown value"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid ticket payload", details)
	}
	return nil
}

func authorType(role domain.Role) domain.CommentAuthorType {
	if role == domain.RoleUser {
		return domain.AuthorTypeUser
	}
	return domain.AuthorTypeStaff
}

func preview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
