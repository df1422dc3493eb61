package service

import (
	"context"
	"strings"

	"github.com/dafibh/dolinear/dolinear-backend/internal/domain"
	"github.com/google/uuid"
)

// CommentService handles comments on issues
type CommentService struct {
	commentRepo domain.CommentRepository
	issueRepo   domain.IssueRepository
}

// NewCommentService creates a new CommentService
func NewCommentService(commentRepo domain.CommentRepository, issueRepo domain.IssueRepository) *CommentService {
	return &CommentService{commentRepo: commentRepo, issueRepo: issueRepo}
}

func validateBody(body string) error {
	if strings.TrimSpace(body) == "" {
		return domain.Validation(domain.MsgValidationFailed, map[string][]string{"body": {"Body is required"}})
	}
	return nil
}

// CreateComment posts a comment as the acting user
func (s *CommentService) CreateComment(ctx context.Context, access *TeamAccess, issueID uuid.UUID, body string) (*domain.Comment, error) {
	if err := validateBody(body); err != nil {
		return nil, err
	}
	if _, err := s.issueRepo.GetInTeam(ctx, access.Team.ID, issueID); err != nil {
		return nil, err
	}
	return s.commentRepo.Create(ctx, &domain.Comment{
		ID:      uuid.New(),
		IssueID: issueID,
		UserID:  access.UserID,
		Body:    body,
	})
}

// ListComments returns an issue's comments, oldest first
func (s *CommentService) ListComments(ctx context.Context, access *TeamAccess, issueID uuid.UUID) ([]domain.Comment, error) {
	if _, err := s.issueRepo.GetInTeam(ctx, access.Team.ID, issueID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByIssue(ctx, issueID)
}

// UpdateComment edits a comment's body. Only its author may do so.
func (s *CommentService) UpdateComment(ctx context.Context, access *TeamAccess, issueID, commentID uuid.UUID, body string) (*domain.Comment, error) {
	if err := validateBody(body); err != nil {
		return nil, err
	}
	comment, err := s.ownComment(ctx, access, issueID, commentID, domain.MsgCommentEditForbidden)
	if err != nil {
		return nil, err
	}
	return s.commentRepo.UpdateBody(ctx, comment.ID, body)
}

// DeleteComment removes a comment. Only its author may do so.
func (s *CommentService) DeleteComment(ctx context.Context, access *TeamAccess, issueID, commentID uuid.UUID) error {
	comment, err := s.ownComment(ctx, access, issueID, commentID, domain.MsgCommentDeleteForbidden)
	if err != nil {
		return err
	}
	return s.commentRepo.Delete(ctx, comment.ID)
}

func (s *CommentService) ownComment(ctx context.Context, access *TeamAccess, issueID, commentID uuid.UUID, forbidden string) (*domain.Comment, error) {
	if _, err := s.issueRepo.GetInTeam(ctx, access.Team.ID, issueID); err != nil {
		return nil, err
	}
	comment, err := s.commentRepo.GetForIssue(ctx, issueID, commentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != access.UserID {
		return nil, domain.Forbidden(forbidden)
	}
	return comment, nil
}
