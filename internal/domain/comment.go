package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Comment is a message posted on an issue. Only its author may change it.
type Comment struct {
	ID        uuid.UUID `json:"id"`
	IssueID   uuid.UUID `json:"issueId"`
	UserID    uuid.UUID `json:"userId"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CommentRepository defines the interface for comment persistence operations
type CommentRepository interface {
	Create(ctx context.Context, comment *Comment) (*Comment, error)
	GetForIssue(ctx context.Context, issueID, commentID uuid.UUID) (*Comment, error)
	ListByIssue(ctx context.Context, issueID uuid.UUID) ([]Comment, error)
	UpdateBody(ctx context.Context, id uuid.UUID, body string) (*Comment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
