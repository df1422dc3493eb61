package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/dafibh/dolinear/dolinear-backend/internal/domain"
	"github.com/google/uuid"
)

// LabelService manages workspace labels
type LabelService struct {
	labelRepo domain.LabelRepository
}

// NewLabelService creates a new LabelService
func NewLabelService(labelRepo domain.LabelRepository) *LabelService {
	return &LabelService{labelRepo: labelRepo}
}

// CreateLabelInput contains input for creating a label
type CreateLabelInput struct {
	Name        string
	Color       string
	Description *string
}

// UpdateLabelInput is a partial update of a label
type UpdateLabelInput struct {
	Name        *string
	Color       *string
	Description domain.Optional[string]
}

func validateLabelFields(name, color *string, description *string) error {
	fe := domain.FieldErrors{}
	if name != nil {
		n := utf8.RuneCountInString(strings.TrimSpace(*name))
		if n == 0 || n > domain.MaxLabelNameLen {
			fe.Add("name", "Name must be between 1 and 50 characters")
		}
	}
	if color != nil {
		validateColor(fe, *color)
	}
	if description != nil && utf8.RuneCountInString(*description) > domain.MaxLabelDescriptionLen {
		fe.Add("description", "Description must be at most 200 characters")
	}
	return fe.Err(domain.MsgValidationFailed)
}

// ListLabels returns the workspace's labels ordered by name
func (s *LabelService) ListLabels(ctx context.Context, access *WorkspaceAccess) ([]domain.Label, error) {
	return s.labelRepo.ListByWorkspace(ctx, access.Workspace.ID)
}

// GetLabel returns one label of the workspace
func (s *LabelService) GetLabel(ctx context.Context, access *WorkspaceAccess, labelID uuid.UUID) (*domain.Label, error) {
	return s.labelRepo.GetInWorkspace(ctx, access.Workspace.ID, labelID)
}

// CreateLabel creates a label; names are unique per workspace
func (s *LabelService) CreateLabel(ctx context.Context, access *WorkspaceAccess, input CreateLabelInput) (*domain.Label, error) {
	if err := validateLabelFields(&input.Name, &input.Color, input.Description); err != nil {
		return nil, err
	}
	return s.labelRepo.Create(ctx, &domain.Label{
		ID:          uuid.New(),
		WorkspaceID: access.Workspace.ID,
		Name:        strings.TrimSpace(input.Name),
		Color:       input.Color,
		Description: input.Description,
	})
}

// UpdateLabel applies a partial update
func (s *LabelService) UpdateLabel(ctx context.Context, access *WorkspaceAccess, labelID uuid.UUID, input UpdateLabelInput) (*domain.Label, error) {
	if err := validateLabelFields(input.Name, input.Color, input.Description.Value); err != nil {
		return nil, err
	}

	label, err := s.labelRepo.GetInWorkspace(ctx, access.Workspace.ID, labelID)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		label.Name = strings.TrimSpace(*input.Name)
	}
	if input.Color != nil {
		label.Color = *input.Color
	}
	if input.Description.Set {
		label.Description = input.Description.Value
	}
	return s.labelRepo.Update(ctx, label)
}

// DeleteLabel removes a label and detaches it from every issue
func (s *LabelService) DeleteLabel(ctx context.Context, access *WorkspaceAccess, labelID uuid.UUID) error {
	if _, err := s.labelRepo.GetInWorkspace(ctx, access.Workspace.ID, labelID); err != nil {
		return err
	}
	return s.labelRepo.Delete(ctx, labelID)
}
