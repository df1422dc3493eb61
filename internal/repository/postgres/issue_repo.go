package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/dafibh/dolinear/dolinear-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const issueColumns = `id, team_id, number, identifier, title, description, workflow_state_id, priority,
	assignee_id, creator_id, due_date, estimate, sort_order, created_at, updated_at`

// IssueRepository implements domain.IssueRepository using PostgreSQL
type IssueRepository struct {
	db DBTX
}

// NewIssueRepository creates a new IssueRepository
func NewIssueRepository(db DBTX) *IssueRepository {
	return &IssueRepository{db: db}
}

// Insert writes a fully derived issue row
func (r *IssueRepository) Insert(ctx context.Context, i *domain.Issue) (*domain.Issue, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO issue (id, team_id, number, identifier, title, description, workflow_state_id,
			priority, assignee_id, creator_id, due_date, estimate, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING `+issueColumns,
		i.ID, i.TeamID, i.Number, i.Identifier, i.Title, i.Description, i.WorkflowStateID,
		i.Priority, i.AssigneeID, i.CreatorID, i.DueDate, i.Estimate, i.SortOrder,
	)
	created, err := scanIssue(row)
	if err != nil {
		if isPgUniqueViolation(err) {
			return nil, domain.Conflict("Issue identifier already exists")
		}
		if isPgForeignKeyViolation(err) {
			return nil, domain.Validation(domain.MsgValidationFailed, map[string][]string{
				"assigneeId": {"Assignee does not exist"},
			})
		}
		return nil, fmt.Errorf("failed to insert issue: %w", err)
	}
	return created, nil
}

// MinSortOrder returns COALESCE(MIN(sort_order), 0) over the team's issues
func (r *IssueRepository) MinSortOrder(ctx context.Context, teamID uuid.UUID) (float64, error) {
	var lowest float64
	err := r.db.QueryRow(ctx, `SELECT COALESCE(MIN(sort_order), 0)::float8 FROM issue WHERE team_id = $1`, teamID).Scan(&lowest)
	if err != nil {
		return 0, fmt.Errorf("failed to read min sort order: %w", err)
	}
	return lowest, nil
}

// GetByID retrieves an issue by ID
func (r *IssueRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Issue, error) {
	row := r.db.QueryRow(ctx, `SELECT `+issueColumns+` FROM issue WHERE id = $1`, id)
	return scanIssue(row)
}

// GetInTeam retrieves an issue by ID, scoped to a team
func (r *IssueRepository) GetInTeam(ctx context.Context, teamID, issueID uuid.UUID) (*domain.Issue, error) {
	row := r.db.QueryRow(ctx, `SELECT `+issueColumns+` FROM issue WHERE id = $1 AND team_id = $2`, issueID, teamID)
	return scanIssue(row)
}

// GetByIdentifier retrieves an issue by its TEAM-N identifier, scoped to a team
func (r *IssueRepository) GetByIdentifier(ctx context.Context, teamID uuid.UUID, identifier string) (*domain.Issue, error) {
	row := r.db.QueryRow(ctx, `SELECT `+issueColumns+` FROM issue WHERE identifier = $1 AND team_id = $2`, identifier, teamID)
	return scanIssue(row)
}

// Update writes every mutable column. Number and identifier are never touched.
func (r *IssueRepository) Update(ctx context.Context, i *domain.Issue) (*domain.Issue, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE issue SET
			title = $1, description = $2, workflow_state_id = $3, priority = $4,
			assignee_id = $5, due_date = $6, estimate = $7, sort_order = $8, updated_at = NOW()
		WHERE id = $9
		RETURNING `+issueColumns,
		i.Title, i.Description, i.WorkflowStateID, i.Priority,
		i.AssigneeID, i.DueDate, i.Estimate, i.SortOrder, i.ID,
	)
	updated, err := scanIssue(row)
	if err != nil {
		if isPgForeignKeyViolation(err) {
			return nil, domain.Validation(domain.MsgValidationFailed, map[string][]string{
				"assigneeId": {"Assignee does not exist"},
			})
		}
		return nil, err
	}
	return updated, nil
}

// Delete removes an issue; comments, label links and attachments cascade
func (r *IssueRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM issue WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete issue: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("Issue")
	}
	return nil
}

// List returns one page of issues matching pred
func (r *IssueRepository) List(ctx context.Context, pred domain.IssuePredicate, sort domain.IssueSort, limit, offset int) ([]domain.Issue, error) {
	where, args := buildIssueWhere(pred)
	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM issue WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		issueColumns, where, buildIssueOrder(sort), len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list issues: %w", err)
	}
	defer rows.Close()

	issues := []domain.Issue{}
	for rows.Next() {
		i, err := scanIssue(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan issue: %w", err)
		}
		issues = append(issues, *i)
	}
	return issues, rows.Err()
}

// Count returns the number of issues matching pred
func (r *IssueRepository) Count(ctx context.Context, pred domain.IssuePredicate) (int, error) {
	where, args := buildIssueWhere(pred)
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM issue WHERE `+where, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count issues: %w", err)
	}
	return total, nil
}

// IssueIDsWithLabel returns the ids of every issue carrying labelID
func (r *IssueRepository) IssueIDsWithLabel(ctx context.Context, labelID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `SELECT issue_id FROM issue_label WHERE label_id = $1`, labelID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up issues by label: %w", err)
	}
	return collectUUIDs(rows)
}

// AttachLabels links labels in one statement; the primary key absorbs repeats
func (r *IssueRepository) AttachLabels(ctx context.Context, issueID uuid.UUID, labelIDs []uuid.UUID) error {
	if len(labelIDs) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO issue_label (issue_id, label_id)
		SELECT $1, UNNEST($2::uuid[])
		ON CONFLICT DO NOTHING`,
		issueID, uuidStrings(labelIDs),
	)
	if err != nil {
		if isPgForeignKeyViolation(err) {
			return domain.NotFound("Label")
		}
		return fmt.Errorf("failed to attach labels: %w", err)
	}
	return nil
}

// AttachLabel links a single label
func (r *IssueRepository) AttachLabel(ctx context.Context, issueID, labelID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `INSERT INTO issue_label (issue_id, label_id) VALUES ($1, $2)`, issueID, labelID)
	if err != nil {
		if isPgUniqueViolation(err) {
			return domain.Conflict(domain.MsgLabelAlreadyAttached)
		}
		if isPgForeignKeyViolation(err) {
			return domain.NotFound("Label")
		}
		return fmt.Errorf("failed to attach label: %w", err)
	}
	return nil
}

// DetachLabel unlinks a label and reports whether a link existed
func (r *IssueRepository) DetachLabel(ctx context.Context, issueID, labelID uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM issue_label WHERE issue_id = $1 AND label_id = $2`, issueID, labelID)
	if err != nil {
		return false, fmt.Errorf("failed to detach label: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// HasLabel reports whether the issue carries the label
func (r *IssueRepository) HasLabel(ctx context.Context, issueID, labelID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM issue_label WHERE issue_id = $1 AND label_id = $2)`,
		issueID, labelID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check issue label: %w", err)
	}
	return exists, nil
}

// ListLabels returns the labels attached to an issue
func (r *IssueRepository) ListLabels(ctx context.Context, issueID uuid.UUID) ([]domain.LabelSummary, error) {
	rows, err := r.db.Query(ctx, `
		SELECT l.id, l.name, l.color
		FROM issue_label il
		JOIN label l ON l.id = il.label_id
		WHERE il.issue_id = $1
		ORDER BY l.name ASC`,
		issueID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list issue labels: %w", err)
	}
	defer rows.Close()

	labels := []domain.LabelSummary{}
	for rows.Next() {
		var l domain.LabelSummary
		if err := rows.Scan(&l.ID, &l.Name, &l.Color); err != nil {
			return nil, fmt.Errorf("failed to scan label: %w", err)
		}
		labels = append(labels, l)
	}
	return labels, rows.Err()
}

func scanIssue(row pgx.Row) (*domain.Issue, error) {
	var i domain.Issue
	err := row.Scan(&i.ID, &i.TeamID, &i.Number, &i.Identifier, &i.Title, &i.Description, &i.WorkflowStateID,
		&i.Priority, &i.AssigneeID, &i.CreatorID, &i.DueDate, &i.Estimate, &i.SortOrder, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("Issue")
		}
		return nil, err
	}
	return &i, nil
}
