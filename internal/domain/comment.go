package domain

import "time"

// CommentAuthorType indicates who authored a comment.
type CommentAuthorType string

const (
	AuthorTypeUser   CommentAuthorType = "USER"
	AuthorTypeStaff  CommentAuthorType = "STAFF"
	AuthorTypeSystem CommentAuthorType = "SYSTEM"
)

// Comment is an immutable entry in a ticket's thread. System comments (e.g.
// the resolution record) have no author id.
type Comment struct {
	ID         string
	TicketID   string
	AuthorID   *string
	AuthorType CommentAuthorType
	Text       string
	CreatedAt  time.Time
}
