package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/dafibh/dolinear/dolinear-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const workflowStateColumns = `id, team_id, name, color, type, position, created_at, updated_at`

// WorkflowStateRepository implements domain.WorkflowStateRepository using PostgreSQL
type WorkflowStateRepository struct {
	db DBTX
}

// NewWorkflowStateRepository creates a new WorkflowStateRepository
func NewWorkflowStateRepository(db DBTX) *WorkflowStateRepository {
	return &WorkflowStateRepository{db: db}
}

// CreateMany inserts states in a single statement
func (r *WorkflowStateRepository) CreateMany(ctx context.Context, states []domain.WorkflowState) error {
	if len(states) == 0 {
		return nil
	}
	ids := make([]string, len(states))
	teamIDs := make([]string, len(states))
	names := make([]string, len(states))
	colors := make([]string, len(states))
	types := make([]string, len(states))
	positions := make([]int32, len(states))
	for i, s := range states {
		id := s.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		ids[i] = id.String()
		teamIDs[i] = s.TeamID.String()
		names[i] = s.Name
		colors[i] = s.Color
		types[i] = string(s.Type)
		positions[i] = int32(s.Position)
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO workflow_state (id, team_id, name, color, type, position)
		SELECT * FROM UNNEST($1::uuid[], $2::uuid[], $3::text[], $4::text[], $5::text[], $6::int[])`,
		ids, teamIDs, names, colors, types, positions,
	)
	if err != nil {
		if isPgUniqueViolation(err) {
			return domain.Conflict(domain.MsgDuplicateStateName)
		}
		return fmt.Errorf("failed to create workflow states: %w", err)
	}
	return nil
}

// Create inserts one state
func (r *WorkflowStateRepository) Create(ctx context.Context, s *domain.WorkflowState) (*domain.WorkflowState, error) {
	id := s.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	row := r.db.QueryRow(ctx, `
		INSERT INTO workflow_state (id, team_id, name, color, type, position)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+workflowStateColumns,
		id, s.TeamID, s.Name, s.Color, s.Type, s.Position,
	)
	created, err := scanWorkflowState(row)
	if err != nil {
		if isPgUniqueViolation(err) {
			return nil, domain.Conflict(domain.MsgDuplicateStateName)
		}
		return nil, fmt.Errorf("failed to create workflow state: %w", err)
	}
	return created, nil
}

// GetForTeam returns the state only if the team owns it
func (r *WorkflowStateRepository) GetForTeam(ctx context.Context, teamID, stateID uuid.UUID) (*domain.WorkflowState, error) {
	row := r.db.QueryRow(ctx, `SELECT `+workflowStateColumns+` FROM workflow_state WHERE id = $1 AND team_id = $2`, stateID, teamID)
	return scanWorkflowState(row)
}

// FirstOfType returns the lowest-positioned state of the given type
func (r *WorkflowStateRepository) FirstOfType(ctx context.Context, teamID uuid.UUID, t domain.StateType) (*domain.WorkflowState, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+workflowStateColumns+` FROM workflow_state
		WHERE team_id = $1 AND type = $2
		ORDER BY position ASC, created_at ASC
		LIMIT 1`,
		teamID, t,
	)
	return scanWorkflowState(row)
}

// ListByTeam returns the team's states ordered by position
func (r *WorkflowStateRepository) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]domain.WorkflowState, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+workflowStateColumns+` FROM workflow_state
		WHERE team_id = $1
		ORDER BY position ASC, created_at ASC`,
		teamID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflow states: %w", err)
	}
	defer rows.Close()

	var states []domain.WorkflowState
	for rows.Next() {
		s, err := scanWorkflowState(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow state: %w", err)
		}
		states = append(states, *s)
	}
	return states, rows.Err()
}

// IDsByType returns the ids of every team state of type t
func (r *WorkflowStateRepository) IDsByType(ctx context.Context, teamID uuid.UUID, t domain.StateType) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM workflow_state WHERE team_id = $1 AND type = $2`, teamID, t)
	if err != nil {
		return nil, fmt.Errorf("failed to look up states by type: %w", err)
	}
	return collectUUIDs(rows)
}

// Update writes every mutable column of the state
func (r *WorkflowStateRepository) Update(ctx context.Context, s *domain.WorkflowState) (*domain.WorkflowState, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE workflow_state
		SET name = $1, color = $2, type = $3, position = $4, updated_at = NOW()
		WHERE id = $5 AND team_id = $6
		RETURNING `+workflowStateColumns,
		s.Name, s.Color, s.Type, s.Position, s.ID, s.TeamID,
	)
	updated, err := scanWorkflowState(row)
	if err != nil {
		if isPgUniqueViolation(err) {
			return nil, domain.Conflict(domain.MsgDuplicateStateName)
		}
		return nil, err
	}
	return updated, nil
}

// Delete removes a state. States still referenced by issues are rejected by the foreign key.
func (r *WorkflowStateRepository) Delete(ctx context.Context, teamID, stateID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM workflow_state WHERE id = $1 AND team_id = $2`, stateID, teamID)
	if err != nil {
		if isPgForeignKeyViolation(err) {
			return domain.Conflict(domain.MsgStateInUse)
		}
		return fmt.Errorf("failed to delete workflow state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("Workflow state")
	}
	return nil
}

func scanWorkflowState(row pgx.Row) (*domain.WorkflowState, error) {
	var s domain.WorkflowState
	if err := row.Scan(&s.ID, &s.TeamID, &s.Name, &s.Color, &s.Type, &s.Position, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("Workflow state")
		}
		return nil, err
	}
	return &s, nil
}

func collectUUIDs(rows pgx.Rows) ([]uuid.UUID, error) {
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
