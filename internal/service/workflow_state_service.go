package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dafibh/dolinear/dolinear-backend/internal/domain"
	"github.com/google/uuid"
)

const maxColorLen = 20

// WorkflowStateService manages the workflow states of a team
type WorkflowStateService struct {
	tx        domain.Transactor
	stateRepo domain.WorkflowStateRepository
	teamRepo  domain.TeamRepository
}

// NewWorkflowStateService creates a new WorkflowStateService
func NewWorkflowStateService(tx domain.Transactor, stateRepo domain.WorkflowStateRepository, teamRepo domain.TeamRepository) *WorkflowStateService {
	return &WorkflowStateService{tx: tx, stateRepo: stateRepo, teamRepo: teamRepo}
}

// CreateStateInput contains input for creating a workflow state
type CreateStateInput struct {
	Name     string
	Color    string
	Type     domain.StateType
	Position int
}

func (in *CreateStateInput) validate() error {
	fe := domain.FieldErrors{}
	validateStateName(fe, in.Name)
	validateColor(fe, in.Color)
	if !in.Type.Valid() {
		fe.Add("type", "Type must be one of backlog, unstarted, started, completed, cancelled")
	}
	if in.Position < 0 {
		fe.Add("position", "Position must be zero or greater")
	}
	return fe.Err(domain.MsgValidationFailed)
}

// UpdateStateInput is a partial update of a workflow state
type UpdateStateInput struct {
	Name     *string
	Color    *string
	Type     *domain.StateType
	Position *int
}

func (in *UpdateStateInput) validate() error {
	fe := domain.FieldErrors{}
	if in.Name != nil {
		validateStateName(fe, *in.Name)
	}
	if in.Color != nil {
		validateColor(fe, *in.Color)
	}
	if in.Type != nil && !in.Type.Valid() {
		fe.Add("type", "Type must be one of backlog, unstarted, started, completed, cancelled")
	}
	if in.Position != nil && *in.Position < 0 {
		fe.Add("position", "Position must be zero or greater")
	}
	return fe.Err(domain.MsgValidationFailed)
}

func validateStateName(fe domain.FieldErrors, name string) {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	if n == 0 || n > maxNameLen {
		fe.Add("name", "Name must be between 1 and 50 characters")
	}
}

func validateColor(fe domain.FieldErrors, color string) {
	n := utf8.RuneCountInString(color)
	if n == 0 || n > maxColorLen {
		fe.Add("color", "Color must be between 1 and 20 characters")
	}
}

// ListStates returns the team's states ordered by position
func (s *WorkflowStateService) ListStates(ctx context.Context, access *TeamAccess) ([]domain.WorkflowState, error) {
	return s.stateRepo.ListByTeam(ctx, access.Team.ID)
}

// CreateState adds a state to the team. Names are unique per team.
func (s *WorkflowStateService) CreateState(ctx context.Context, access *TeamAccess, input CreateStateInput) (*domain.WorkflowState, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	return s.stateRepo.Create(ctx, &domain.WorkflowState{
		ID:       uuid.New(),
		TeamID:   access.Team.ID,
		Name:     strings.TrimSpace(input.Name),
		Color:    input.Color,
		Type:     input.Type,
		Position: input.Position,
	})
}

// UpdateState applies a partial update to one of the team's states
func (s *WorkflowStateService) UpdateState(ctx context.Context, access *TeamAccess, stateID uuid.UUID, input UpdateStateInput) (*domain.WorkflowState, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	state, err := ValidateStateBelongsToTeam(ctx, s.stateRepo, stateID, access.Team.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		state.Name = strings.TrimSpace(*input.Name)
	}
	if input.Color != nil {
		state.Color = *input.Color
	}
	if input.Type != nil {
		state.Type = *input.Type
	}
	if input.Position != nil {
		state.Position = *input.Position
	}
	return s.stateRepo.Update(ctx, state)
}

// DeleteState removes a state that no issue references
func (s *WorkflowStateService) DeleteState(ctx context.Context, access *TeamAccess, stateID uuid.UUID) error {
	return s.stateRepo.Delete(ctx, access.Team.ID, stateID)
}

// StateRepair describes what was (or would be) done to one team
type StateRepair struct {
	TeamID     uuid.UUID
	Identifier string
	Action     string
	StateName  string
}

// Repair actions
const (
	RepairSeededDefaults = "seeded-defaults"
	RepairAddedBacklog   = "added-backlog"
)

// RepairStates finds teams without a backlog state and fixes them. Teams with
// no states at all get the defaults; the rest get a "Backlog" state at position 0.
// teamID narrows the run to one team. With dryRun nothing is written.
func (s *WorkflowStateService) RepairStates(ctx context.Context, teamID *uuid.UUID, dryRun bool) ([]StateRepair, error) {
	teams, err := s.teamRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	if teamID != nil {
		var match []domain.Team
		for _, t := range teams {
			if t.ID == *teamID {
				match = append(match, t)
			}
		}
		if len(match) == 0 {
			return nil, domain.NotFound("Team")
		}
		teams = match
	}

	var repairs []StateRepair
	for _, team := range teams {
		repair, err := s.repairTeam(ctx, team, dryRun)
		if err != nil {
			return repairs, fmt.Errorf("repair team %s: %w", team.Identifier, err)
		}
		if repair != nil {
			repairs = append(repairs, *repair)
		}
	}
	return repairs, nil
}

func (s *WorkflowStateService) repairTeam(ctx context.Context, team domain.Team, dryRun bool) (*StateRepair, error) {
	var repair *StateRepair
	err := s.tx.WithinTx(ctx, func(tx *domain.Repositories) error {
		states, err := tx.WorkflowStates.ListByTeam(ctx, team.ID)
		if err != nil {
			return err
		}

		names := make(map[string]struct{}, len(states))
		for _, st := range states {
			if st.Type == domain.StateTypeBacklog {
				return nil
			}
			names[st.Name] = struct{}{}
		}

		if len(states) == 0 {
			repair = &StateRepair{TeamID: team.ID, Identifier: team.Identifier, Action: RepairSeededDefaults}
			if dryRun {
				return nil
			}
			return SeedDefaultStates(ctx, tx.WorkflowStates, team.ID)
		}

		tpl := domain.DefaultWorkflowStates[0]
		name := tpl.Name
		for n := 2; ; n++ {
			if _, taken := names[name]; !taken {
				break
			}
			name = fmt.Sprintf("%s %d", tpl.Name, n)
		}

		repair = &StateRepair{TeamID: team.ID, Identifier: team.Identifier, Action: RepairAddedBacklog, StateName: name}
		if dryRun {
			return nil
		}
		_, err = tx.WorkflowStates.Create(ctx, &domain.WorkflowState{
			ID:       uuid.New(),
			TeamID:   team.ID,
			Name:     name,
			Color:    tpl.Color,
			Type:     domain.StateTypeBacklog,
			Position: 0,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return repair, nil
}
