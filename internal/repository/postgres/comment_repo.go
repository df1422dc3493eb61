package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/dafibh/dolinear/dolinear-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const commentColumns = `id, issue_id, user_id, body, created_at, updated_at`

// CommentRepository implements domain.CommentRepository using PostgreSQL
type CommentRepository struct {
	db DBTX
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db DBTX) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create inserts a comment
func (r *CommentRepository) Create(ctx context.Context, c *domain.Comment) (*domain.Comment, error) {
	id := c.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	row := r.db.QueryRow(ctx, `
		INSERT INTO comment (id, issue_id, user_id, body)
		VALUES ($1, $2, $3, $4)
		RETURNING `+commentColumns,
		id, c.IssueID, c.UserID, c.Body,
	)
	created, err := scanComment(row)
	if err != nil {
		if isPgForeignKeyViolation(err) {
			return nil, domain.NotFound("Issue")
		}
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return created, nil
}

// GetForIssue returns the comment only if it belongs to issueID
func (r *CommentRepository) GetForIssue(ctx context.Context, issueID, commentID uuid.UUID) (*domain.Comment, error) {
	row := r.db.QueryRow(ctx, `SELECT `+commentColumns+` FROM comment WHERE id = $1 AND issue_id = $2`, commentID, issueID)
	return scanComment(row)
}

// ListByIssue returns comments oldest first
func (r *CommentRepository) ListByIssue(ctx context.Context, issueID uuid.UUID) ([]domain.Comment, error) {
	rows, err := r.db.Query(ctx, `SELECT `+commentColumns+` FROM comment WHERE issue_id = $1 ORDER BY created_at ASC`, issueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	comments := []domain.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, *c)
	}
	return comments, rows.Err()
}

// UpdateBody replaces a comment's body
func (r *CommentRepository) UpdateBody(ctx context.Context, id uuid.UUID, body string) (*domain.Comment, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE comment SET body = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING `+commentColumns,
		body, id,
	)
	return scanComment(row)
}

// Delete removes a comment
func (r *CommentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM comment WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("Comment")
	}
	return nil
}

func scanComment(row pgx.Row) (*domain.Comment, error) {
	var c domain.Comment
	if err := row.Scan(&c.ID, &c.IssueID, &c.UserID, &c.Body, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("Comment")
		}
		return nil, err
	}
	return &c, nil
}
