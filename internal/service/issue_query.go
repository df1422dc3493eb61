package service

import (
	"context"

	"github.com/dafibh/dolinear/dolinear-backend/internal/domain"
	"github.com/google/uuid"
)

// ListIssuesInput carries the filters, ordering and paging of a listing.
// Nil Page and PageSize fall back to 1 and 50.
type ListIssuesInput struct {
	Filter   domain.IssueFilter
	Sort     domain.IssueSort
	Page     *int
	PageSize *int
}

type issueListParams struct {
	filter   domain.IssueFilter
	sort     domain.IssueSort
	page     int
	pageSize int
}

func (in ListIssuesInput) normalize() (*issueListParams, error) {
	p := &issueListParams{
		filter:   in.Filter,
		sort:     in.Sort,
		page:     domain.DefaultIssuesPage,
		pageSize: domain.DefaultPageSize,
	}
	fe := domain.FieldErrors{}

	if in.Page != nil {
		if *in.Page < 1 {
			fe.Add("page", "Page must be 1 or greater")
		}
		p.page = *in.Page
	}
	if in.PageSize != nil {
		if *in.PageSize < 1 || *in.PageSize > domain.MaxPageSize {
			fe.Add("pageSize", "Page size must be between 1 and 100")
		}
		p.pageSize = *in.PageSize
	}

	if p.sort.Field == "" {
		p.sort.Field = domain.SortBySortOrder
	} else if !p.sort.Field.Valid() {
		fe.Add("sort", "Sort must be one of sortOrder, createdAt, priority, dueDate")
	}
	if p.sort.Direction == "" {
		p.sort.Direction = domain.SortAsc
	} else if !p.sort.Direction.Valid() {
		fe.Add("order", "Order must be asc or desc")
	}

	if f := in.Filter.Priority; f != nil && (*f < domain.MinPriority || *f > domain.MaxPriority) {
		fe.Add("priority", "Priority must be between 0 and 4")
	}
	if f := in.Filter.StateType; f != nil && !f.Valid() {
		fe.Add("stateType", "State type must be one of backlog, unstarted, started, completed, cancelled")
	}

	if err := fe.Err(domain.MsgInvalidQuery); err != nil {
		return nil, err
	}
	return p, nil
}

// ListIssues filters, sorts and pages a team's issues. Sub-lookups for state
// type and label that match nothing short-circuit to an empty page.
func (s *IssueService) ListIssues(ctx context.Context, teamID uuid.UUID, in ListIssuesInput) (*domain.IssuePage, error) {
	p, err := in.normalize()
	if err != nil {
		return nil, err
	}

	empty := &domain.IssuePage{Items: []domain.Issue{}, Page: p.page, PageSize: p.pageSize}

	pred := domain.IssuePredicate{
		TeamID:          teamID,
		WorkflowStateID: p.filter.WorkflowStateID,
		Priority:        p.filter.Priority,
		AssigneeID:      p.filter.AssigneeID,
	}

	if p.filter.StateType != nil {
		ids, err := s.stateRepo.IDsByType(ctx, teamID, *p.filter.StateType)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return empty, nil
		}
		pred.WorkflowStateIDs = ids
	}

	if p.filter.LabelID != nil {
		ids, err := s.issueRepo.IssueIDsWithLabel(ctx, *p.filter.LabelID)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return empty, nil
		}
		pred.IssueIDs = ids
	}

	total, err := s.issueRepo.Count(ctx, pred)
	if err != nil {
		return nil, err
	}

	offset := (p.page - 1) * p.pageSize
	items, err := s.issueRepo.List(ctx, pred, p.sort, p.pageSize, offset)
	if err != nil {
		return nil, err
	}

	return &domain.IssuePage{
		Items:    items,
		Total:    total,
		Page:     p.page,
		PageSize: p.pageSize,
		HasMore:  offset+len(items) < total,
	}, nil
}
