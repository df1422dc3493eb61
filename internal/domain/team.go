package domain

import (
	"context"
	"regexp"
	"time"

	"github.com/google/uuid"
)

var teamIdentifierPattern = regexp.MustCompile(`^[A-Z]{2,5}$`)

// ValidTeamIdentifier reports whether s is 2-5 uppercase ASCII letters
func ValidTeamIdentifier(s string) bool {
	return teamIdentifierPattern.MatchString(s)
}

// Team is a sub-tenant of a workspace. IssueCounter is the last issue number handed out.
type Team struct {
	ID           uuid.UUID `json:"id"`
	WorkspaceID  uuid.UUID `json:"workspaceId"`
	Name         string    `json:"name"`
	Identifier   string    `json:"identifier"`
	IssueCounter int       `json:"issueCounter"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TeamMember links a user to a team
type TeamMember struct {
	ID        uuid.UUID    `json:"id"`
	TeamID    uuid.UUID    `json:"teamId"`
	UserID    uuid.UUID    `json:"userId"`
	CreatedAt time.Time    `json:"createdAt"`
	User      *UserSummary `json:"user,omitempty"`
}

// TeamRepository defines the interface for team persistence operations
type TeamRepository interface {
	Create(ctx context.Context, team *Team) (*Team, error)
	GetInWorkspace(ctx context.Context, workspaceID, teamID uuid.UUID) (*Team, error)
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]Team, error)
	ListAll(ctx context.Context) ([]Team, error)
	UpdateName(ctx context.Context, id uuid.UUID, name string) (*Team, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// IncrementIssueCounter bumps the team's counter in a single statement and
	// returns the new value together with the team identifier.
	IncrementIssueCounter(ctx context.Context, teamID uuid.UUID) (counter int, identifier string, err error)

	AddMember(ctx context.Context, member *TeamMember) (*TeamMember, error)
	ListMembers(ctx context.Context, teamID uuid.UUID) ([]TeamMember, error)
}
