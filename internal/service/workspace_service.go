package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dafibh/dolinear/dolinear-backend/internal/domain"
	"github.com/google/uuid"
)

const maxNameLen = 50

var slugSeparator = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases name and collapses every run of non-alphanumerics into a dash
func Slugify(name string) string {
	slug := slugSeparator.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return "workspace"
	}
	return slug
}

func validateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return domain.Validation(domain.MsgValidationFailed, map[string][]string{"name": {"Name is required"}})
	}
	if utf8.RuneCountInString(trimmed) > maxNameLen {
		return domain.Validation(domain.MsgValidationFailed, map[string][]string{"name": {"Name must be at most 50 characters"}})
	}
	return nil
}

// WorkspaceService handles workspace-related business logic
type WorkspaceService struct {
	tx            domain.Transactor
	workspaceRepo domain.WorkspaceRepository
	userRepo      domain.UserRepository
}

// NewWorkspaceService creates a new WorkspaceService
func NewWorkspaceService(tx domain.Transactor, workspaceRepo domain.WorkspaceRepository, userRepo domain.UserRepository) *WorkspaceService {
	return &WorkspaceService{tx: tx, workspaceRepo: workspaceRepo, userRepo: userRepo}
}

// CreateWorkspace creates a workspace owned by userID. The workspace and the
// owner membership are written together.
func (s *WorkspaceService) CreateWorkspace(ctx context.Context, userID uuid.UUID, name string) (*domain.Workspace, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)

	var created *domain.Workspace
	err := s.tx.WithinTx(ctx, func(tx *domain.Repositories) error {
		slug, err := uniqueSlug(ctx, tx.Workspaces, Slugify(name))
		if err != nil {
			return err
		}

		created, err = tx.Workspaces.Create(ctx, &domain.Workspace{
			ID:      uuid.New(),
			Name:    name,
			Slug:    slug,
			OwnerID: userID,
		})
		if err != nil {
			return err
		}

		_, err = tx.Workspaces.AddMember(ctx, &domain.WorkspaceMember{
			ID:          uuid.New(),
			WorkspaceID: created.ID,
			UserID:      userID,
			Role:        domain.RoleOwner,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func uniqueSlug(ctx context.Context, repo domain.WorkspaceRepository, base string) (string, error) {
	slug := base
	for n := 2; ; n++ {
		exists, err := repo.SlugExists(ctx, slug)
		if err != nil {
			return "", err
		}
		if !exists {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, n)
	}
}

// ListWorkspaces returns every workspace userID belongs to, with their role
func (s *WorkspaceService) ListWorkspaces(ctx context.Context, userID uuid.UUID) ([]domain.WorkspaceWithRole, error) {
	return s.workspaceRepo.ListForUser(ctx, userID)
}

// UpdateWorkspace renames the workspace; the slug is left unchanged
func (s *WorkspaceService) UpdateWorkspace(ctx context.Context, access *WorkspaceAccess, name string) (*domain.Workspace, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	return s.workspaceRepo.UpdateName(ctx, access.Workspace.ID, strings.TrimSpace(name))
}

// DeleteWorkspace removes the workspace and everything under it
func (s *WorkspaceService) DeleteWorkspace(ctx context.Context, access *WorkspaceAccess) error {
	return s.workspaceRepo.Delete(ctx, access.Workspace.ID)
}

// AddMemberInput contains input for adding a workspace member
type AddMemberInput struct {
	UserID uuid.UUID
	Role   domain.Role
}

// AddMember adds an existing user with role admin or member
func (s *WorkspaceService) AddMember(ctx context.Context, access *WorkspaceAccess, input AddMemberInput) (*domain.WorkspaceMember, error) {
	if input.Role != domain.RoleAdmin && input.Role != domain.RoleMember {
		return nil, domain.Validation(domain.MsgValidationFailed, map[string][]string{"role": {"Role must be admin or member"}})
	}

	if _, err := s.userRepo.GetByID(ctx, input.UserID); err != nil {
		return nil, err
	}

	_, err := s.workspaceRepo.GetMember(ctx, access.Workspace.ID, input.UserID)
	if err == nil {
		return nil, domain.Validation(domain.MsgDuplicateWorkspaceUser, nil)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	return s.workspaceRepo.AddMember(ctx, &domain.WorkspaceMember{
		ID:          uuid.New(),
		WorkspaceID: access.Workspace.ID,
		UserID:      input.UserID,
		Role:        input.Role,
	})
}

// ListMembers returns the workspace members with their user summaries
func (s *WorkspaceService) ListMembers(ctx context.Context, access *WorkspaceAccess) ([]domain.WorkspaceMember, error) {
	return s.workspaceRepo.ListMembers(ctx, access.Workspace.ID)
}
