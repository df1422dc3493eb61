package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Role is a workspace membership role
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember:
		return true
	}
	return false
}

// Workspace is the top-level tenant boundary. Slug is globally unique.
type Workspace struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	OwnerID   uuid.UUID `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// WorkspaceMember links a user to a workspace with a role
type WorkspaceMember struct {
	ID          uuid.UUID    `json:"id"`
	WorkspaceID uuid.UUID    `json:"workspaceId"`
	UserID      uuid.UUID    `json:"userId"`
	Role        Role         `json:"role"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	User        *UserSummary `json:"user,omitempty"`
}

// WorkspaceWithRole is a workspace as seen by one of its members
type WorkspaceWithRole struct {
	Workspace
	Role Role `json:"role"`
}

// WorkspaceRepository defines the interface for workspace persistence operations
type WorkspaceRepository interface {
	Create(ctx context.Context, workspace *Workspace) (*Workspace, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Workspace, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]WorkspaceWithRole, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	UpdateName(ctx context.Context, id uuid.UUID, name string) (*Workspace, error)
	Delete(ctx context.Context, id uuid.UUID) error

	AddMember(ctx context.Context, member *WorkspaceMember) (*WorkspaceMember, error)
	GetMember(ctx context.Context, workspaceID, userID uuid.UUID) (*WorkspaceMember, error)
	ListMembers(ctx context.Context, workspaceID uuid.UUID) ([]WorkspaceMember, error)
}
