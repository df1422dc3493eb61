package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/dafibh/dolinear/dolinear-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const labelColumns = `id, workspace_id, name, color, description, created_at, updated_at`

// LabelRepository implements domain.LabelRepository using PostgreSQL
type LabelRepository struct {
	db DBTX
}

// NewLabelRepository creates a new LabelRepository
func NewLabelRepository(db DBTX) *LabelRepository {
	return &LabelRepository{db: db}
}

// Create inserts a label
func (r *LabelRepository) Create(ctx context.Context, l *domain.Label) (*domain.Label, error) {
	id := l.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	row := r.db.QueryRow(ctx, `
		INSERT INTO label (id, workspace_id, name, color, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+labelColumns,
		id, l.WorkspaceID, l.Name, l.Color, l.Description,
	)
	created, err := scanLabel(row)
	if err != nil {
		if isPgUniqueViolation(err) {
			return nil, domain.Conflict(domain.MsgDuplicateLabelName)
		}
		return nil, fmt.Errorf("failed to create label: %w", err)
	}
	return created, nil
}

// GetInWorkspace returns the label only if it belongs to the workspace
func (r *LabelRepository) GetInWorkspace(ctx context.Context, workspaceID, labelID uuid.UUID) (*domain.Label, error) {
	row := r.db.QueryRow(ctx, `SELECT `+labelColumns+` FROM label WHERE id = $1 AND workspace_id = $2`, labelID, workspaceID)
	return scanLabel(row)
}

// ListByWorkspace returns the workspace's labels ordered by name
func (r *LabelRepository) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]domain.Label, error) {
	rows, err := r.db.Query(ctx, `SELECT `+labelColumns+` FROM label WHERE workspace_id = $1 ORDER BY name ASC`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}
	defer rows.Close()

	var labels []domain.Label
	for rows.Next() {
		l, err := scanLabel(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan label: %w", err)
		}
		labels = append(labels, *l)
	}
	return labels, rows.Err()
}

// CountInWorkspace counts the distinct ids that are labels of the workspace
func (r *LabelRepository) CountInWorkspace(ctx context.Context, workspaceID uuid.UUID, ids []uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM label WHERE workspace_id = $1 AND id = ANY($2::uuid[])`,
		workspaceID, uuidStrings(ids)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count labels: %w", err)
	}
	return count, nil
}

// Update writes the mutable label columns
func (r *LabelRepository) Update(ctx context.Context, l *domain.Label) (*domain.Label, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE label SET name = $1, color = $2, description = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING `+labelColumns,
		l.Name, l.Color, l.Description, l.ID,
	)
	updated, err := scanLabel(row)
	if err != nil {
		if isPgUniqueViolation(err) {
			return nil, domain.Conflict(domain.MsgDuplicateLabelName)
		}
		return nil, err
	}
	return updated, nil
}

// Delete removes a label; issue links cascade
func (r *LabelRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM label WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete label: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("Label")
	}
	return nil
}

func scanLabel(row pgx.Row) (*domain.Label, error) {
	var l domain.Label
	if err := row.Scan(&l.ID, &l.WorkspaceID, &l.Name, &l.Color, &l.Description, &l.CreatedAt, &l.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("Label")
		}
		return nil, err
	}
	return &l, nil
}
