package service

import (
	"context"
	"errors"
	"strings"

	"github.com/dafibh/dolinear/dolinear-backend/internal/domain"
	"github.com/google/uuid"
)

// TeamService handles team-related business logic
type TeamService struct {
	tx            domain.Transactor
	teamRepo      domain.TeamRepository
	workspaceRepo domain.WorkspaceRepository
}

// NewTeamService creates a new TeamService
func NewTeamService(tx domain.Transactor, teamRepo domain.TeamRepository, workspaceRepo domain.WorkspaceRepository) *TeamService {
	return &TeamService{tx: tx, teamRepo: teamRepo, workspaceRepo: workspaceRepo}
}

// CreateTeamInput contains input for creating a team
type CreateTeamInput struct {
	Name       string
	Identifier string
}

// CreateTeam inserts the team, makes the creator a member and seeds the
// default workflow states in one transaction.
func (s *TeamService) CreateTeam(ctx context.Context, access *WorkspaceAccess, input CreateTeamInput) (*domain.Team, error) {
	if err := validateName(input.Name); err != nil {
		return nil, err
	}
	if !domain.ValidTeamIdentifier(input.Identifier) {
		return nil, domain.Validation(domain.MsgInvalidTeamIdentifier, map[string][]string{
			"identifier": {domain.MsgInvalidTeamIdentifier},
		})
	}

	var created *domain.Team
	err := s.tx.WithinTx(ctx, func(tx *domain.Repositories) error {
		var err error
		created, err = tx.Teams.Create(ctx, &domain.Team{
			ID:          uuid.New(),
			WorkspaceID: access.Workspace.ID,
			Name:        strings.TrimSpace(input.Name),
			Identifier:  input.Identifier,
		})
		if err != nil {
			return err
		}

		if _, err := tx.Teams.AddMember(ctx, &domain.TeamMember{
			ID:     uuid.New(),
			TeamID: created.ID,
			UserID: access.UserID,
		}); err != nil {
			return err
		}

		return SeedDefaultStates(ctx, tx.WorkflowStates, created.ID)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ListTeams returns the workspace's teams ordered by name
func (s *TeamService) ListTeams(ctx context.Context, access *WorkspaceAccess) ([]domain.Team, error) {
	return s.teamRepo.ListByWorkspace(ctx, access.Workspace.ID)
}

// UpdateTeam renames a team
func (s *TeamService) UpdateTeam(ctx context.Context, access *TeamAccess, name string) (*domain.Team, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	return s.teamRepo.UpdateName(ctx, access.Team.ID, strings.TrimSpace(name))
}

// DeleteTeam removes the team with its states, issues and members
func (s *TeamService) DeleteTeam(ctx context.Context, access *TeamAccess) error {
	return s.teamRepo.Delete(ctx, access.Team.ID)
}

// AddMember adds a workspace member to the team
func (s *TeamService) AddMember(ctx context.Context, access *TeamAccess, userID uuid.UUID) (*domain.TeamMember, error) {
	if _, err := s.workspaceRepo.GetMember(ctx, access.Workspace.ID, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.Forbidden(domain.MsgTargetNotInWorkspace)
		}
		return nil, err
	}

	return s.teamRepo.AddMember(ctx, &domain.TeamMember{
		ID:     uuid.New(),
		TeamID: access.Team.ID,
		UserID: userID,
	})
}

// ListMembers returns the team members with their user summaries
func (s *TeamService) ListMembers(ctx context.Context, access *TeamAccess) ([]domain.TeamMember, error) {
	return s.teamRepo.ListMembers(ctx, access.Team.ID)
}
