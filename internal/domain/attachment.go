package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Attachment is an image uploaded to an issue. The bytes live in object storage
// under ObjectKey, with a resized copy under ThumbnailKey.
type Attachment struct {
	ID           uuid.UUID `json:"id"`
	IssueID      uuid.UUID `json:"issueId"`
	UploaderID   uuid.UUID `json:"uploaderId"`
	Filename     string    `json:"filename"`
	ContentType  string    `json:"contentType"`
	SizeBytes    int64     `json:"sizeBytes"`
	ObjectKey    string    `json:"-"`
	ThumbnailKey string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// AttachmentRepository defines the interface for attachment persistence operations
type AttachmentRepository interface {
	Create(ctx context.Context, attachment *Attachment) (*Attachment, error)
	GetForIssue(ctx context.Context, issueID, attachmentID uuid.UUID) (*Attachment, error)
	ListByIssue(ctx context.Context, issueID uuid.UUID) ([]Attachment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
