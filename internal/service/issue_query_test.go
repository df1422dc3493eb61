package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/dafibh/dolinear/dolinear-backend/internal/domain"
	"github.com/dafibh/dolinear/dolinear-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestListIssues_DefaultsOrderBySortOrder(t *testing.T) {
	f := newIssueFixture(t)
	for i := 1; i <= 3; i++ {
		f.create(t, CreateIssueInput{Title: fmt.Sprintf("issue %d", i)})
	}

	page, err := f.svc.ListIssues(context.Background(), f.access.Team.ID, ListIssuesInput{})
	require.NoError(t, err)

	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 50, page.PageSize)
	assert.False(t, page.HasMore)
	require.Len(t, page.Items, 3)
	assert.Equal(t, "ENG-3", page.Items[0].Identifier)
	assert.Equal(t, "ENG-1", page.Items[2].Identifier)
}

func TestListIssues_Pagination(t *testing.T) {
	f := newIssueFixture(t)
	for i := 1; i <= 5; i++ {
		f.create(t, CreateIssueInput{Title: fmt.Sprintf("issue %d", i)})
	}
	ctx := context.Background()

	first, err := f.svc.ListIssues(ctx, f.access.Team.ID, ListIssuesInput{Page: intPtr(1), PageSize: intPtr(2)})
	require.NoError(t, err)
	assert.Len(t, first.Items, 2)
	assert.Equal(t, 5, first.Total)
	assert.True(t, first.HasMore)

	last, err := f.svc.ListIssues(ctx, f.access.Team.ID, ListIssuesInput{Page: intPtr(3), PageSize: intPtr(2)})
	require.NoError(t, err)
	assert.Len(t, last.Items, 1)
	assert.False(t, last.HasMore)

	beyond, err := f.svc.ListIssues(ctx, f.access.Team.ID, ListIssuesInput{Page: intPtr(10), PageSize: intPtr(2)})
	require.NoError(t, err)
	assert.Empty(t, beyond.Items)
	assert.Equal(t, 5, beyond.Total)
	assert.False(t, beyond.HasMore)
}

func TestListIssues_Filters(t *testing.T) {
	f := newIssueFixture(t)
	ctx := context.Background()
	states := f.store.States(f.access.Team.ID)
	started := states[2]
	bug := f.store.AddLabel(f.access.Workspace.ID, "bug")

	f.create(t, CreateIssueInput{Title: "a", Priority: intPtr(1)})
	f.create(t, CreateIssueInput{Title: "b", Priority: intPtr(1), WorkflowStateID: &started.ID, LabelIDs: []uuid.UUID{bug.ID}})
	f.create(t, CreateIssueInput{Title: "c", Priority: intPtr(3), AssigneeID: &f.owner.ID, LabelIDs: []uuid.UUID{bug.ID}})

	stateType := domain.StateTypeStarted
	byType, err := f.svc.ListIssues(ctx, f.access.Team.ID, ListIssuesInput{Filter: domain.IssueFilter{StateType: &stateType}})
	require.NoError(t, err)
	require.Len(t, byType.Items, 1)
	assert.Equal(t, "b", byType.Items[0].Title)

	byLabelAndPriority, err := f.svc.ListIssues(ctx, f.access.Team.ID, ListIssuesInput{
		Filter: domain.IssueFilter{LabelID: &bug.ID, Priority: intPtr(1)},
	})
	require.NoError(t, err)
	require.Len(t, byLabelAndPriority.Items, 1)
	assert.Equal(t, 1, byLabelAndPriority.Total)
	assert.Equal(t, "b", byLabelAndPriority.Items[0].Title)

	byAssignee, err := f.svc.ListIssues(ctx, f.access.Team.ID, ListIssuesInput{Filter: domain.IssueFilter{AssigneeID: &f.owner.ID}})
	require.NoError(t, err)
	require.Len(t, byAssignee.Items, 1)
	assert.Equal(t, "c", byAssignee.Items[0].Title)
}

func TestListIssues_EmptySubLookupShortCircuits(t *testing.T) {
	f := newIssueFixture(t)
	f.create(t, CreateIssueInput{Title: "a"})
	unused := f.store.AddLabel(f.access.Workspace.ID, "unused")
	f.store.FailOn("Issues.Count", testutil.ErrInjected)
	f.store.FailOn("Issues.List", testutil.ErrInjected)

	page, err := f.svc.ListIssues(context.Background(), f.access.Team.ID, ListIssuesInput{Filter: domain.IssueFilter{LabelID: &unused.ID}})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 0, page.Total)
	assert.False(t, page.HasMore)
}

func TestListIssues_SortByPriorityDesc(t *testing.T) {
	f := newIssueFixture(t)
	f.create(t, CreateIssueInput{Title: "low", Priority: intPtr(1)})
	f.create(t, CreateIssueInput{Title: "urgent", Priority: intPtr(4)})
	f.create(t, CreateIssueInput{Title: "medium", Priority: intPtr(2)})

	page, err := f.svc.ListIssues(context.Background(), f.access.Team.ID, ListIssuesInput{
		Sort: domain.IssueSort{Field: domain.SortByPriority, Direction: domain.SortDesc},
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.Equal(t, []string{"urgent", "medium", "low"}, []string{page.Items[0].Title, page.Items[1].Title, page.Items[2].Title})
}

func TestListIssues_InvalidQuery(t *testing.T) {
	f := newIssueFixture(t)
	badType := domain.StateType("archived")

	tests := []struct {
		name  string
		input ListIssuesInput
		field string
	}{
		{"page zero", ListIssuesInput{Page: intPtr(0)}, "page"},
		{"page size too large", ListIssuesInput{PageSize: intPtr(101)}, "pageSize"},
		{"unknown sort", ListIssuesInput{Sort: domain.IssueSort{Field: "title"}}, "sort"},
		{"unknown order", ListIssuesInput{Sort: domain.IssueSort{Direction: "up"}}, "order"},
		{"unknown state type", ListIssuesInput{Filter: domain.IssueFilter{StateType: &badType}}, "stateType"},
		{"priority out of range", ListIssuesInput{Filter: domain.IssueFilter{Priority: intPtr(9)}}, "priority"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.ListIssues(context.Background(), f.access.Team.ID, tt.input)
			var appErr *domain.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, domain.MsgInvalidQuery, appErr.Message)
			assert.Contains(t, appErr.Details, tt.field)
		})
	}
}
