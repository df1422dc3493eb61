package service

import (
	"context"
	"strings"
	"testing"

	"github.com/dafibh/dolinear/dolinear-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabelLifecycle(t *testing.T) {
	f := newIssueFixture(t)
	svc := NewLabelService(f.store.Repositories().Labels)
	access := &f.access.WorkspaceAccess
	ctx := context.Background()

	desc := "Something is broken"
	bug, err := svc.CreateLabel(ctx, access, CreateLabelInput{Name: "bug", Color: "#ff0000", Description: &desc})
	require.NoError(t, err)

	_, err = svc.CreateLabel(ctx, access, CreateLabelInput{Name: "bug", Color: "#00ff00"})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, domain.MsgDuplicateLabelName, err.Error())

	updated, err := svc.UpdateLabel(ctx, access, bug.ID, UpdateLabelInput{Description: domain.Null[string]()})
	require.NoError(t, err)
	assert.Nil(t, updated.Description)
	assert.Equal(t, "bug", updated.Name)

	issue := f.create(t, CreateIssueInput{Title: "x", LabelIDs: []uuid.UUID{bug.ID}})
	require.NoError(t, svc.DeleteLabel(ctx, access, bug.ID))

	got, err := f.svc.GetIssue(ctx, f.access, issue.Identifier)
	require.NoError(t, err)
	assert.Empty(t, got.Labels)

	_, err = svc.GetLabel(ctx, access, bug.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateLabel_Validation(t *testing.T) {
	f := newIssueFixture(t)
	svc := NewLabelService(f.store.Repositories().Labels)
	long := strings.Repeat("d", 201)

	_, err := svc.CreateLabel(context.Background(), &f.access.WorkspaceAccess, CreateLabelInput{Name: "", Color: "", Description: &long})

	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Details, "name")
	assert.Contains(t, appErr.Details, "color")
	assert.Contains(t, appErr.Details, "description")
}
