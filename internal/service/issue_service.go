package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dafibh/dolinear/dolinear-backend/internal/domain"
	"github.com/google/uuid"
)

// CreateIssueInput holds the caller-supplied fields of a new issue
type CreateIssueInput struct {
	Title           string
	Description     *string
	WorkflowStateID *uuid.UUID
	Priority        *int
	AssigneeID      *uuid.UUID
	DueDate         *time.Time
	Estimate        *int
	LabelIDs        []uuid.UUID
}

func (in *CreateIssueInput) validate() error {
	fe := domain.FieldErrors{}
	validateTitle(fe, in.Title)
	if in.Priority != nil {
		validatePriority(fe, *in.Priority)
	}
	if in.Estimate != nil {
		validateEstimate(fe, *in.Estimate)
	}
	return fe.Err(domain.MsgValidationFailed)
}

// UpdateIssueInput is a partial update. Optional fields distinguish "absent" from "clear".
type UpdateIssueInput struct {
	Title           *string
	Description     domain.Optional[string]
	WorkflowStateID *uuid.UUID
	Priority        *int
	AssigneeID      domain.Optional[uuid.UUID]
	DueDate         domain.Optional[time.Time]
	Estimate        domain.Optional[int]
	SortOrder       *float64
}

func (in *UpdateIssueInput) validate() error {
	fe := domain.FieldErrors{}
	if in.Title != nil {
		validateTitle(fe, *in.Title)
	}
	if in.Priority != nil {
		validatePriority(fe, *in.Priority)
	}
	if in.Estimate.Value != nil {
		validateEstimate(fe, *in.Estimate.Value)
	}
	return fe.Err(domain.MsgValidationFailed)
}

func validateTitle(fe domain.FieldErrors, title string) {
	if strings.TrimSpace(title) == "" {
		fe.Add("title", "Title is required")
	} else if utf8.RuneCountInString(title) > domain.MaxIssueTitleLen {
		fe.Add("title", "Title must be at most 500 characters")
	}
}

func validatePriority(fe domain.FieldErrors, p int) {
	if p < domain.MinPriority || p > domain.MaxPriority {
		fe.Add("priority", "Priority must be between 0 and 4")
	}
}

func validateEstimate(fe domain.FieldErrors, e int) {
	if e < 0 {
		fe.Add("estimate", "Estimate must be zero or greater")
	}
}

// AttachmentPurger removes stored objects once their issue is gone
type AttachmentPurger interface {
	PurgeObjects(ctx context.Context, attachments []domain.Attachment)
}

// IssueService creates, queries and mutates issues within a team
type IssueService struct {
	tx             domain.Transactor
	issueRepo      domain.IssueRepository
	stateRepo      domain.WorkflowStateRepository
	labelRepo      domain.LabelRepository
	workspaceRepo  domain.WorkspaceRepository
	attachmentRepo domain.AttachmentRepository
	purger         AttachmentPurger
}

// NewIssueService creates a new IssueService
func NewIssueService(tx domain.Transactor, repos *domain.Repositories) *IssueService {
	return &IssueService{
		tx:             tx,
		issueRepo:      repos.Issues,
		stateRepo:      repos.WorkflowStates,
		labelRepo:      repos.Labels,
		workspaceRepo:  repos.Workspaces,
		attachmentRepo: repos.Attachments,
	}
}

// SetAttachmentPurger enables object cleanup on issue deletion
func (s *IssueService) SetAttachmentPurger(p AttachmentPurger) {
	s.purger = p
}

// CreateIssue allocates the next team number, resolves the workflow state,
// places the issue above every existing one and links its labels, all in one
// transaction. Any failure leaves no trace, including the counter bump.
func (s *IssueService) CreateIssue(ctx context.Context, access *TeamAccess, in CreateIssueInput) (*domain.Issue, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if in.AssigneeID != nil {
		if err := s.checkAssignee(ctx, access, *in.AssigneeID); err != nil {
			return nil, err
		}
	}

	teamID := access.Team.ID
	priority := domain.MinPriority
	if in.Priority != nil {
		priority = *in.Priority
	}

	var created *domain.Issue
	err := s.tx.WithinTx(ctx, func(tx *domain.Repositories) error {
		counter, teamIdentifier, err := tx.Teams.IncrementIssueCounter(ctx, teamID)
		if err != nil {
			return err
		}

		var state *domain.WorkflowState
		if in.WorkflowStateID != nil {
			state, err = ValidateStateBelongsToTeam(ctx, tx.WorkflowStates, *in.WorkflowStateID, teamID)
		} else {
			state, err = ResolveDefaultState(ctx, tx.WorkflowStates, teamID)
		}
		if err != nil {
			return err
		}

		minSort, err := tx.Issues.MinSortOrder(ctx, teamID)
		if err != nil {
			return err
		}

		if len(in.LabelIDs) > 0 {
			if err := ensureLabelsInWorkspace(ctx, tx.Labels, access.Workspace.ID, in.LabelIDs); err != nil {
				return err
			}
		}

		issue := &domain.Issue{
			ID:              uuid.New(),
			TeamID:          teamID,
			Number:          counter,
			Identifier:      domain.FormatIssueIdentifier(teamIdentifier, counter),
			Title:           in.Title,
			Description:     in.Description,
			WorkflowStateID: state.ID,
			Priority:        priority,
			AssigneeID:      in.AssigneeID,
			CreatorID:       access.UserID,
			DueDate:         in.DueDate,
			Estimate:        in.Estimate,
			SortOrder:       minSort - 1,
		}
		if _, err := tx.Issues.Insert(ctx, issue); err != nil {
			return err
		}

		if err := tx.Issues.AttachLabels(ctx, issue.ID, in.LabelIDs); err != nil {
			return err
		}

		created, err = tx.Issues.GetByID(ctx, issue.ID)
		if err != nil {
			return err
		}
		created.Labels, err = tx.Issues.ListLabels(ctx, issue.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetIssue returns an issue by identifier together with its labels
func (s *IssueService) GetIssue(ctx context.Context, access *TeamAccess, identifier string) (*domain.Issue, error) {
	issue, err := s.issueRepo.GetByIdentifier(ctx, access.Team.ID, identifier)
	if err != nil {
		return nil, err
	}
	issue.Labels, err = s.issueRepo.ListLabels(ctx, issue.ID)
	if err != nil {
		return nil, err
	}
	return issue, nil
}

// UpdateIssue applies a partial update. A new workflow state must belong to the team.
func (s *IssueService) UpdateIssue(ctx context.Context, access *TeamAccess, identifier string, in UpdateIssueInput) (*domain.Issue, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	issue, err := s.issueRepo.GetByIdentifier(ctx, access.Team.ID, identifier)
	if err != nil {
		return nil, err
	}

	if in.WorkflowStateID != nil {
		if _, err := ValidateStateBelongsToTeam(ctx, s.stateRepo, *in.WorkflowStateID, access.Team.ID); err != nil {
			return nil, err
		}
		issue.WorkflowStateID = *in.WorkflowStateID
	}
	if in.AssigneeID.Value != nil {
		if err := s.checkAssignee(ctx, access, *in.AssigneeID.Value); err != nil {
			return nil, err
		}
	}

	if in.Title != nil {
		issue.Title = *in.Title
	}
	if in.Description.Set {
		issue.Description = in.Description.Value
	}
	if in.Priority != nil {
		issue.Priority = *in.Priority
	}
	if in.AssigneeID.Set {
		issue.AssigneeID = in.AssigneeID.Value
	}
	if in.DueDate.Set {
		issue.DueDate = in.DueDate.Value
	}
	if in.Estimate.Set {
		issue.Estimate = in.Estimate.Value
	}
	if in.SortOrder != nil {
		issue.SortOrder = *in.SortOrder
	}

	return s.issueRepo.Update(ctx, issue)
}

// DeleteIssue removes an issue. Comments, label links and attachment rows go
// with it; stored attachment objects are purged afterwards on a best-effort basis.
func (s *IssueService) DeleteIssue(ctx context.Context, access *TeamAccess, identifier string) error {
	issue, err := s.issueRepo.GetByIdentifier(ctx, access.Team.ID, identifier)
	if err != nil {
		return err
	}

	var attachments []domain.Attachment
	if s.purger != nil {
		attachments, err = s.attachmentRepo.ListByIssue(ctx, issue.ID)
		if err != nil {
			return err
		}
	}

	if err := s.issueRepo.Delete(ctx, issue.ID); err != nil {
		return err
	}

	if s.purger != nil && len(attachments) > 0 {
		s.purger.PurgeObjects(ctx, attachments)
	}
	return nil
}

// AttachLabel links a workspace label to an issue
func (s *IssueService) AttachLabel(ctx context.Context, access *TeamAccess, identifier string, labelID uuid.UUID) error {
	issue, err := s.issueRepo.GetByIdentifier(ctx, access.Team.ID, identifier)
	if err != nil {
		return err
	}
	if _, err := s.labelRepo.GetInWorkspace(ctx, access.Workspace.ID, labelID); err != nil {
		return err
	}

	attached, err := s.issueRepo.HasLabel(ctx, issue.ID, labelID)
	if err != nil {
		return err
	}
	if attached {
		return domain.Conflict(domain.MsgLabelAlreadyAttached)
	}
	return s.issueRepo.AttachLabel(ctx, issue.ID, labelID)
}

// DetachLabel unlinks a label; a link that never existed is NotFound
func (s *IssueService) DetachLabel(ctx context.Context, access *TeamAccess, identifier string, labelID uuid.UUID) error {
	issue, err := s.issueRepo.GetByIdentifier(ctx, access.Team.ID, identifier)
	if err != nil {
		return err
	}
	removed, err := s.issueRepo.DetachLabel(ctx, issue.ID, labelID)
	if err != nil {
		return err
	}
	if !removed {
		return domain.NotFound("Issue label")
	}
	return nil
}

// checkAssignee requires the assignee to be a member of the issue's workspace
func (s *IssueService) checkAssignee(ctx context.Context, access *TeamAccess, assigneeID uuid.UUID) error {
	_, err := s.workspaceRepo.GetMember(ctx, access.Workspace.ID, assigneeID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Validation(domain.MsgValidationFailed, map[string][]string{
				"assigneeId": {"Assignee must be a member of this workspace"},
			})
		}
		return err
	}
	return nil
}

// ensureLabelsInWorkspace fails with NotFound if any id is not a label of the workspace
func ensureLabelsInWorkspace(ctx context.Context, repo domain.LabelRepository, workspaceID uuid.UUID, ids []uuid.UUID) error {
	distinct := make(map[uuid.UUID]struct{}, len(ids))
	unique := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, seen := distinct[id]; seen {
			continue
		}
		distinct[id] = struct{}{}
		unique = append(unique, id)
	}

	count, err := repo.CountInWorkspace(ctx, workspaceID, unique)
	if err != nil {
		return err
	}
	if count != len(unique) {
		return domain.NotFound("Label")
	}
	return nil
}
