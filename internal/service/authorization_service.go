package service

import (
	"context"
	"errors"

	"github.com/dafibh/dolinear/dolinear-backend/internal/domain"
	"github.com/google/uuid"
)

// WorkspaceAccess is the resolved context of a caller acting inside a workspace.
// Handlers obtain it from the guard and pass it to the services they call.
type WorkspaceAccess struct {
	UserID    uuid.UUID
	Workspace *domain.Workspace
	Member    *domain.WorkspaceMember
}

// HasRole reports whether the caller holds one of roles
func (a *WorkspaceAccess) HasRole(roles ...domain.Role) bool {
	for _, r := range roles {
		if a.Member.Role == r {
			return true
		}
	}
	return false
}

// TeamAccess is a WorkspaceAccess narrowed to one team of that workspace
type TeamAccess struct {
	WorkspaceAccess
	Team *domain.Team
}

// AuthorizationService resolves workspace membership and role for the acting user
type AuthorizationService struct {
	workspaceRepo domain.WorkspaceRepository
	teamRepo      domain.TeamRepository
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(workspaceRepo domain.WorkspaceRepository, teamRepo domain.TeamRepository) *AuthorizationService {
	return &AuthorizationService{workspaceRepo: workspaceRepo, teamRepo: teamRepo}
}

// Authorize checks that userID belongs to workspaceID and, when roles are
// given, holds one of them. It only reads.
func (s *AuthorizationService) Authorize(ctx context.Context, userID, workspaceID uuid.UUID, roles ...domain.Role) (*WorkspaceAccess, error) {
	ws, err := s.workspaceRepo.GetByID(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	member, err := s.workspaceRepo.GetMember(ctx, workspaceID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.Forbidden(domain.MsgNotWorkspaceMember)
		}
		return nil, err
	}

	access := &WorkspaceAccess{UserID: userID, Workspace: ws, Member: member}
	if len(roles) > 0 && !access.HasRole(roles...) {
		return nil, domain.Forbidden(domain.MsgInsufficientPermissions)
	}
	return access, nil
}

// AuthorizeTeam authorizes the workspace and then checks the team belongs to it.
// Team membership itself is not required.
func (s *AuthorizationService) AuthorizeTeam(ctx context.Context, userID, workspaceID, teamID uuid.UUID, roles ...domain.Role) (*TeamAccess, error) {
	access, err := s.Authorize(ctx, userID, workspaceID, roles...)
	if err != nil {
		return nil, err
	}

	team, err := s.teamRepo.GetInWorkspace(ctx, workspaceID, teamID)
	if err != nil {
		return nil, err
	}
	return &TeamAccess{WorkspaceAccess: *access, Team: team}, nil
}
