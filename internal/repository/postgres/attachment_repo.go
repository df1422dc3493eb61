package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/dafibh/dolinear/dolinear-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const attachmentColumns = `id, issue_id, uploader_id, filename, content_type, size_bytes, object_key, thumbnail_key, created_at`

// AttachmentRepository implements domain.AttachmentRepository using PostgreSQL
type AttachmentRepository struct {
	db DBTX
}

// NewAttachmentRepository creates a new AttachmentRepository
func NewAttachmentRepository(db DBTX) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

// Create records an uploaded attachment
func (r *AttachmentRepository) Create(ctx context.Context, a *domain.Attachment) (*domain.Attachment, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO attachment (id, issue_id, uploader_id, filename, content_type, size_bytes, object_key, thumbnail_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+attachmentColumns,
		a.ID, a.IssueID, a.UploaderID, a.Filename, a.ContentType, a.SizeBytes, a.ObjectKey, a.ThumbnailKey,
	)
	created, err := scanAttachment(row)
	if err != nil {
		if isPgForeignKeyViolation(err) {
			return nil, domain.NotFound("Issue")
		}
		return nil, fmt.Errorf("failed to create attachment: %w", err)
	}
	return created, nil
}

// GetForIssue returns the attachment only if it belongs to issueID
func (r *AttachmentRepository) GetForIssue(ctx context.Context, issueID, attachmentID uuid.UUID) (*domain.Attachment, error) {
	row := r.db.QueryRow(ctx, `SELECT `+attachmentColumns+` FROM attachment WHERE id = $1 AND issue_id = $2`, attachmentID, issueID)
	return scanAttachment(row)
}

// ListByIssue returns attachments oldest first
func (r *AttachmentRepository) ListByIssue(ctx context.Context, issueID uuid.UUID) ([]domain.Attachment, error) {
	rows, err := r.db.Query(ctx, `SELECT `+attachmentColumns+` FROM attachment WHERE issue_id = $1 ORDER BY created_at ASC`, issueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}
	defer rows.Close()

	var attachments []domain.Attachment
	for rows.Next() {
		a, err := scanAttachment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attachment: %w", err)
		}
		attachments = append(attachments, *a)
	}
	return attachments, rows.Err()
}

// Delete removes an attachment row
func (r *AttachmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM attachment WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete attachment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("Attachment")
	}
	return nil
}

func scanAttachment(row pgx.Row) (*domain.Attachment, error) {
	var a domain.Attachment
	err := row.Scan(&a.ID, &a.IssueID, &a.UploaderID, &a.Filename, &a.ContentType, &a.SizeBytes,
		&a.ObjectKey, &a.ThumbnailKey, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("Attachment")
		}
		return nil, err
	}
	return &a, nil
}
