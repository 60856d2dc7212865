package dto

import (
	"time"

	"github.com/helpdesk-io/helpdesk-service/internal/domain"
)

// CreateTicketRequest opens a ticket. Priority defaults to medium when empty.
type CreateTicketRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Category    domain.TicketCategory `json:"category"`
	Priority    domain.TicketPriority `json:"priority"`
}

// UpdateTicketRequest is the partial ticket edit. Which fields take effect
// depends on the caller's role: submitters edit content, support staff and
// admins change priority. Fields outside the caller's reach are dropped
// silently, as are unknown body fields on decode.
type UpdateTicketRequest struct {
	Title       *string                `json:"title"`
	Description *string                `json:"description"`
	Category    *domain.TicketCategory `json:"category"`
	Priority    *domain.TicketPriority `json:"priority"`
}

// UpdateStatusRequest moves the ticket through the lifecycle.
type UpdateStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
}

// AssignTicketRequest is the assignment payload. An empty body is a support
// actor claiming the ticket for themselves; a populated one is an admin
// assigning a specific staff member.
type AssignTicketRequest struct {
	AssigneeID   string              `json:"assignee_id"`
	SupportLevel domain.SupportLevel `json:"support_level"`
}

// AddCommentRequest appends to the ticket thread.
type AddCommentRequest struct {
	Text string `json:"text"`
}

// TicketResponse is the public ticket shape.
type TicketResponse struct {
	ID           string                `json:"id"`
	SubmitterID  string                `json:"submitter_id"`
	AssigneeID   *string               `json:"assignee_id"`
	SupportLevel *domain.SupportLevel  `json:"support_level"`
	Title        string                `json:"title"`
	Description  string                `json:"description"`
	Category     domain.TicketCategory `json:"category"`
	Status       domain.TicketStatus   `json:"status"`
	Priority     domain.TicketPriority `json:"priority"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// CommentResponse is a single thread entry.
type CommentResponse struct {
	ID         string                   `json:"id"`
	AuthorID   *string                  `json:"author_id"`
	AuthorType domain.CommentAuthorType `json:"author_type"`
	Text       string                   `json:"text"`
	CreatedAt  time.Time                `json:"created_at"`
}

// HistoryResponse is a single audit trail entry.
type HistoryResponse struct {
	ID          string             `json:"id"`
	Field       domain.TicketField `json:"field"`
	OldValue    string             `json:"old_value"`
	NewValue    string             `json:"new_value"`
	ChangedByID string             `json:"changed_by_id"`
	CreatedAt   time.Time          `json:"created_at"`
}

// TicketDetailResponse is a ticket with its thread and audit trail.
type TicketDetailResponse struct {
	Ticket   TicketResponse    `json:"ticket"`
	Comments []CommentResponse `json:"comments"`
	History  []HistoryResponse `json:"history"`
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(t *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:           t.ID,
		SubmitterID:  t.SubmitterID,
		AssigneeID:   t.AssigneeID,
		SupportLevel: t.SupportLevel,
		Title:        t.Title,
		Description:  t.Description,
		Category:     t.Category,
		Status:       t.Status,
		Priority:     t.Priority,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

// NewTicketListResponse maps a slice of domain tickets.
func NewTicketListResponse(tickets []domain.Ticket) []TicketResponse {
	out := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		out = append(out, NewTicketResponse(&tickets[i]))
	}
	return out
}

// NewCommentResponse maps a domain comment.
func NewCommentResponse(c *domain.Comment) CommentResponse {
	return CommentResponse{
		ID:         c.ID,
		AuthorID:   c.AuthorID,
		AuthorType: c.AuthorType,
		Text:       c.Text,
		CreatedAt:  c.CreatedAt,
	}
}

// NewTicketDetailResponse maps a ticket with comments and history.
func NewTicketDetailResponse(t *domain.Ticket, comments []domain.Comment, history []domain.TicketHistory) TicketDetailResponse {
	resp := TicketDetailResponse{
		Ticket:   NewTicketResponse(t),
		Comments: make([]CommentResponse, 0, len(comments)),
		History:  make([]HistoryResponse, 0, len(history)),
	}
	for i := range comments {
		resp.Comments = append(resp.Comments, NewCommentResponse(&comments[i]))
	}
	for i := range history {
		h := &history[i]
		resp.History = append(resp.History, HistoryResponse{
			ID:          h.ID,
			Field:       h.Field,
			OldValue:    h.OldValue,
			NewValue:    h.NewValue,
			ChangedByID: h.ChangedByID,
			CreatedAt:   h.CreatedAt,
		})
	}
	return resp
}
