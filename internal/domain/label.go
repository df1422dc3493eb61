package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Label limits
const (
	MaxLabelNameLen        = 50
	MaxLabelColorLen       = 20
	MaxLabelDescriptionLen = 200
)

// Label is a workspace-wide tag that can be attached to issues
type Label struct {
	ID          uuid.UUID `json:"id"`
	WorkspaceID uuid.UUID `json:"workspaceId"`
	Name        string    `json:"name"`
	Color       string    `json:"color"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// LabelSummary is the label projection embedded in issue responses
type LabelSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Color string    `json:"color"`
}

// LabelRepository defines the interface for label persistence operations
type LabelRepository interface {
	Create(ctx context.Context, label *Label) (*Label, error)
	GetInWorkspace(ctx context.Context, workspaceID, labelID uuid.UUID) (*Label, error)
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]Label, error)
	// CountInWorkspace counts how many of the distinct ids are labels of the workspace.
	CountInWorkspace(ctx context.Context, workspaceID uuid.UUID, ids []uuid.UUID) (int, error)
	Update(ctx context.Context, label *Label) (*Label, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
