package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/dafibh/dolinear/dolinear-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const workspaceColumns = `id, name, slug, owner_id, created_at, updated_at`

// WorkspaceRepository implements domain.WorkspaceRepository using PostgreSQL
type WorkspaceRepository struct {
	db DBTX
}

// NewWorkspaceRepository creates a new WorkspaceRepository
func NewWorkspaceRepository(db DBTX) *WorkspaceRepository {
	return &WorkspaceRepository{db: db}
}

// Create inserts a workspace
func (r *WorkspaceRepository) Create(ctx context.Context, ws *domain.Workspace) (*domain.Workspace, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO workspace (id, name, slug, owner_id)
		VALUES ($1, $2, $3, $4)
		RETURNING `+workspaceColumns,
		ws.ID, ws.Name, ws.Slug, ws.OwnerID,
	)
	created, err := scanWorkspace(row)
	if err != nil {
		if isPgUniqueViolation(err) {
			return nil, domain.Conflict("Workspace slug already exists")
		}
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}
	return created, nil
}

// GetByID retrieves a workspace by ID
func (r *WorkspaceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Workspace, error) {
	row := r.db.QueryRow(ctx, `SELECT `+workspaceColumns+` FROM workspace WHERE id = $1`, id)
	return scanWorkspace(row)
}

// ListForUser returns every workspace the user belongs to, with their role
func (r *WorkspaceRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.WorkspaceWithRole, error) {
	rows, err := r.db.Query(ctx, `
		SELECT w.id, w.name, w.slug, w.owner_id, w.created_at, w.updated_at, m.role
		FROM workspace w
		JOIN workspace_member m ON m.workspace_id = w.id
		WHERE m.user_id = $1
		ORDER BY w.name ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}
	defer rows.Close()

	var result []domain.WorkspaceWithRole
	for rows.Next() {
		var w domain.WorkspaceWithRole
		if err := rows.Scan(&w.ID, &w.Name, &w.Slug, &w.OwnerID, &w.CreatedAt, &w.UpdatedAt, &w.Role); err != nil {
			return nil, fmt.Errorf("failed to scan workspace: %w", err)
		}
		result = append(result, w)
	}
	return result, rows.Err()
}

// SlugExists reports whether a workspace already uses slug
func (r *WorkspaceRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM workspace WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check slug: %w", err)
	}
	return exists, nil
}

// UpdateName renames a workspace
func (r *WorkspaceRepository) UpdateName(ctx context.Context, id uuid.UUID, name string) (*domain.Workspace, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE workspace SET name = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING `+workspaceColumns,
		name, id,
	)
	return scanWorkspace(row)
}

// Delete removes a workspace; members, teams and labels cascade
func (r *WorkspaceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM workspace WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete workspace: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("Workspace")
	}
	return nil
}

// AddMember inserts a membership row
func (r *WorkspaceRepository) AddMember(ctx context.Context, m *domain.WorkspaceMember) (*domain.WorkspaceMember, error) {
	id := m.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	var created domain.WorkspaceMember
	err := r.db.QueryRow(ctx, `
		INSERT INTO workspace_member (id, workspace_id, user_id, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, workspace_id, user_id, role, created_at, updated_at`,
		id, m.WorkspaceID, m.UserID, m.Role,
	).Scan(&created.ID, &created.WorkspaceID, &created.UserID, &created.Role, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		if isPgUniqueViolation(err) {
			return nil, domain.Conflict(domain.MsgDuplicateWorkspaceUser)
		}
		if isPgForeignKeyViolation(err) {
			return nil, domain.NotFound("User")
		}
		return nil, fmt.Errorf("failed to add workspace member: %w", err)
	}
	return &created, nil
}

// GetMember returns the membership of userID in workspaceID
func (r *WorkspaceRepository) GetMember(ctx context.Context, workspaceID, userID uuid.UUID) (*domain.WorkspaceMember, error) {
	var m domain.WorkspaceMember
	err := r.db.QueryRow(ctx, `
		SELECT id, workspace_id, user_id, role, created_at, updated_at
		FROM workspace_member
		WHERE workspace_id = $1 AND user_id = $2`,
		workspaceID, userID,
	).Scan(&m.ID, &m.WorkspaceID, &m.UserID, &m.Role, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("Workspace member")
		}
		return nil, fmt.Errorf("failed to get workspace member: %w", err)
	}
	return &m, nil
}

// ListMembers returns members with an embedded user summary
func (r *WorkspaceRepository) ListMembers(ctx context.Context, workspaceID uuid.UUID) ([]domain.WorkspaceMember, error) {
	rows, err := r.db.Query(ctx, `
		SELECT m.id, m.workspace_id, m.user_id, m.role, m.created_at, m.updated_at,
			u.id, u.email, u.name, u.image
		FROM workspace_member m
		JOIN users u ON u.id = m.user_id
		WHERE m.workspace_id = $1
		ORDER BY m.created_at ASC`,
		workspaceID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspace members: %w", err)
	}
	defer rows.Close()

	var members []domain.WorkspaceMember
	for rows.Next() {
		var m domain.WorkspaceMember
		var u domain.UserSummary
		if err := rows.Scan(&m.ID, &m.WorkspaceID, &m.UserID, &m.Role, &m.CreatedAt, &m.UpdatedAt,
			&u.ID, &u.Email, &u.Name, &u.Image); err != nil {
			return nil, fmt.Errorf("failed to scan workspace member: %w", err)
		}
		m.User = &u
		members = append(members, m)
	}
	return members, rows.Err()
}

func scanWorkspace(row pgx.Row) (*domain.Workspace, error) {
	var w domain.Workspace
	if err := row.Scan(&w.ID, &w.Name, &w.Slug, &w.OwnerID, &w.CreatedAt, &w.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("Workspace")
		}
		return nil, err
	}
	return &w, nil
}
