package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/dafibh/dolinear/dolinear-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const teamColumns = `id, workspace_id, name, identifier, issue_counter, created_at, updated_at`

// TeamRepository implements domain.TeamRepository using PostgreSQL
type TeamRepository struct {
	db DBTX
}

// NewTeamRepository creates a new TeamRepository
func NewTeamRepository(db DBTX) *TeamRepository {
	return &TeamRepository{db: db}
}

// Create inserts a team with its counter at zero
func (r *TeamRepository) Create(ctx context.Context, t *domain.Team) (*domain.Team, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO team (id, workspace_id, name, identifier)
		VALUES ($1, $2, $3, $4)
		RETURNING `+teamColumns,
		t.ID, t.WorkspaceID, t.Name, t.Identifier,
	)
	created, err := scanTeam(row)
	if err != nil {
		if isPgUniqueViolation(err) {
			return nil, domain.Conflict(domain.MsgDuplicateTeamIdentifier)
		}
		return nil, fmt.Errorf("failed to create team: %w", err)
	}
	return created, nil
}

// GetInWorkspace returns the team only if it belongs to workspaceID
func (r *TeamRepository) GetInWorkspace(ctx context.Context, workspaceID, teamID uuid.UUID) (*domain.Team, error) {
	row := r.db.QueryRow(ctx, `SELECT `+teamColumns+` FROM team WHERE id = $1 AND workspace_id = $2`, teamID, workspaceID)
	return scanTeam(row)
}

// ListByWorkspace returns the workspace's teams ordered by name
func (r *TeamRepository) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]domain.Team, error) {
	return r.list(ctx, `SELECT `+teamColumns+` FROM team WHERE workspace_id = $1 ORDER BY name ASC`, workspaceID)
}

// ListAll returns every team, used by maintenance commands
func (r *TeamRepository) ListAll(ctx context.Context) ([]domain.Team, error) {
	return r.list(ctx, `SELECT `+teamColumns+` FROM team ORDER BY created_at ASC`)
}

func (r *TeamRepository) list(ctx context.Context, query string, args ...any) ([]domain.Team, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	var teams []domain.Team
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, *t)
	}
	return teams, rows.Err()
}

// UpdateName renames a team
func (r *TeamRepository) UpdateName(ctx context.Context, id uuid.UUID, name string) (*domain.Team, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE team SET name = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING `+teamColumns,
		name, id,
	)
	return scanTeam(row)
}

// Delete removes a team; states, issues and members cascade
func (r *TeamRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM team WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("Team")
	}
	return nil
}

// IncrementIssueCounter performs the read-modify-write in one statement. The
// row lock taken by UPDATE serializes concurrent creators on the same team.
func (r *TeamRepository) IncrementIssueCounter(ctx context.Context, teamID uuid.UUID) (int, string, error) {
	var counter int
	var identifier string
	err := r.db.QueryRow(ctx, `
		UPDATE team SET issue_counter = issue_counter + 1, updated_at = NOW()
		WHERE id = $1
		RETURNING issue_counter, identifier`,
		teamID,
	).Scan(&counter, &identifier)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, "", domain.NotFound("Team")
		}
		return 0, "", fmt.Errorf("failed to increment issue counter: %w", err)
	}
	return counter, identifier, nil
}

// AddMember inserts a team membership
func (r *TeamRepository) AddMember(ctx context.Context, m *domain.TeamMember) (*domain.TeamMember, error) {
	id := m.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	var created domain.TeamMember
	err := r.db.QueryRow(ctx, `
		INSERT INTO team_member (id, team_id, user_id)
		VALUES ($1, $2, $3)
		RETURNING id, team_id, user_id, created_at`,
		id, m.TeamID, m.UserID,
	).Scan(&created.ID, &created.TeamID, &created.UserID, &created.CreatedAt)
	if err != nil {
		if isPgUniqueViolation(err) {
			return nil, domain.Conflict(domain.MsgDuplicateTeamMember)
		}
		return nil, fmt.Errorf("failed to add team member: %w", err)
	}
	return &created, nil
}

// ListMembers returns team members with an embedded user summary
func (r *TeamRepository) ListMembers(ctx context.Context, teamID uuid.UUID) ([]domain.TeamMember, error) {
	rows, err := r.db.Query(ctx, `
		SELECT m.id, m.team_id, m.user_id, m.created_at, u.id, u.email, u.name, u.image
		FROM team_member m
		JOIN users u ON u.id = m.user_id
		WHERE m.team_id = $1
		ORDER BY m.created_at ASC`,
		teamID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list team members: %w", err)
	}
	defer rows.Close()

	var members []domain.TeamMember
	for rows.Next() {
		var m domain.TeamMember
		var u domain.UserSummary
		if err := rows.Scan(&m.ID, &m.TeamID, &m.UserID, &m.CreatedAt, &u.ID, &u.Email, &u.Name, &u.Image); err != nil {
			return nil, fmt.Errorf("failed to scan team member: %w", err)
		}
		m.User = &u
		members = append(members, m)
	}
	return members, rows.Err()
}

func scanTeam(row pgx.Row) (*domain.Team, error) {
	var t domain.Team
	if err := row.Scan(&t.ID, &t.WorkspaceID, &t.Name, &t.Identifier, &t.IssueCounter, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("Team")
		}
		return nil, err
	}
	return &t, nil
}
