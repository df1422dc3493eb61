package service

import (
	"context"
	"errors"

	"github.com/dafibh/dolinear/dolinear-backend/internal/domain"
	"github.com/google/uuid"
)

// SeedDefaultStates inserts the six default states for a new team. Callers run
// it with repositories bound to the team-creation transaction.
func SeedDefaultStates(ctx context.Context, repo domain.WorkflowStateRepository, teamID uuid.UUID) error {
	states := make([]domain.WorkflowState, len(domain.DefaultWorkflowStates))
	for i, tpl := range domain.DefaultWorkflowStates {
		states[i] = domain.WorkflowState{
			ID:       uuid.New(),
			TeamID:   teamID,
			Name:     tpl.Name,
			Color:    tpl.Color,
			Type:     tpl.Type,
			Position: tpl.Position,
		}
	}
	return repo.CreateMany(ctx, states)
}

// ResolveDefaultState returns the team's backlog state. States can be deleted
// independently of the team, so a missing backlog is a ValidationError.
func ResolveDefaultState(ctx context.Context, reader domain.WorkflowStateReader, teamID uuid.UUID) (*domain.WorkflowState, error) {
	state, err := reader.FirstOfType(ctx, teamID, domain.StateTypeBacklog)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.Validation(domain.MsgNoBacklogState, nil)
		}
		return nil, err
	}
	return state, nil
}

// ValidateStateBelongsToTeam fails with NotFound unless teamID owns stateID
func ValidateStateBelongsToTeam(ctx context.Context, reader domain.WorkflowStateReader, stateID, teamID uuid.UUID) (*domain.WorkflowState, error) {
	state, err := reader.GetForTeam(ctx, teamID, stateID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFound("Workflow state")
		}
		return nil, err
	}
	return state, nil
}
