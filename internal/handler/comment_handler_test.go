package handler

import (
	"net/http"
	"testing"

	"github.com/dafibh/dolinear/dolinear-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComments(t *testing.T) {
	f := newAPIFixture(t)
	issue := f.createIssue(CreateIssueRequest{Title: "Discuss"})
	path := f.teamPath() + "/issues/" + issue.ID.String() + "/comments"

	rec := f.do(http.MethodPost, path, CommentRequest{Body: "First"}, &f.owner)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	first := decodeData[domain.Comment](t, rec)
	assert.Equal(t, f.owner.ID, first.UserID)

	rec = f.do(http.MethodPost, path, CommentRequest{Body: "Second"}, &f.member)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(http.MethodGet, path, nil, &f.member)
	require.Equal(t, http.StatusOK, rec.Code)
	comments := decodeData[[]domain.Comment](t, rec)
	require.Len(t, comments, 2)
	assert.Equal(t, "First", comments[0].Body)
	assert.Equal(t, "Second", comments[1].Body)

	rec = f.do(http.MethodPatch, path+"/"+first.ID.String(), CommentRequest{Body: "Hijacked"}, &f.member)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, domain.MsgCommentEditForbidden, decodeError(t, rec).Message)

	rec = f.do(http.MethodDelete, path+"/"+first.ID.String(), nil, &f.member)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, domain.MsgCommentDeleteForbidden, decodeError(t, rec).Message)

	rec = f.do(http.MethodPatch, path+"/"+first.ID.String(), CommentRequest{Body: "Edited"}, &f.owner)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Edited", decodeData[domain.Comment](t, rec).Body)

	rec = f.do(http.MethodDelete, path+"/"+first.ID.String(), nil, &f.owner)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestComments_Validation(t *testing.T) {
	f := newAPIFixture(t)
	issue := f.createIssue(CreateIssueRequest{Title: "Discuss"})

	rec := f.do(http.MethodPost, f.teamPath()+"/issues/"+issue.ID.String()+"/comments", CommentRequest{Body: ""}, &f.owner)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPost, f.teamPath()+"/issues/"+uuid.NewString()+"/comments", CommentRequest{Body: "hi"}, &f.owner)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Issue not found", decodeError(t, rec).Message)

	rec = f.do(http.MethodGet, f.teamPath()+"/issues/ENG-1/comments", nil, &f.owner)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec).Details, "issueId")
}

func TestLabels(t *testing.T) {
	f := newAPIFixture(t)
	path := f.wsPath() + "/labels"

	rec := f.do(http.MethodPost, path, CreateLabelRequest{Name: "bug", Color: "#ff0000", Description: strPtr("Broken")}, &f.member)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	label := decodeData[domain.Label](t, rec)

	rec = f.do(http.MethodPost, path, CreateLabelRequest{Name: "bug", Color: "#00ff00"}, &f.member)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, domain.MsgDuplicateLabelName, decodeError(t, rec).Message)

	rec = f.do(http.MethodPatch, path+"/"+label.ID.String(), stringsReader(`{"description":null}`), &f.member)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeData[domain.Label](t, rec)
	assert.Nil(t, updated.Description)
	assert.Equal(t, "bug", updated.Name)

	rec = f.do(http.MethodGet, path+"/"+label.ID.String(), nil, &f.member)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodGet, path, nil, &f.member)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeData[[]domain.Label](t, rec), 1)

	rec = f.do(http.MethodDelete, path+"/"+label.ID.String(), nil, &f.member)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(http.MethodGet, path+"/"+label.ID.String(), nil, &f.member)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWorkflowStates(t *testing.T) {
	f := newAPIFixture(t)
	path := f.teamPath() + "/states"

	rec := f.do(http.MethodPost, path, CreateStateRequest{Name: "Blocked", Color: "#000", Type: domain.StateTypeStarted, Position: 6}, &f.member)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	state := decodeData[domain.WorkflowState](t, rec)

	rec = f.do(http.MethodPost, path, CreateStateRequest{Name: "Blocked", Color: "#000", Type: domain.StateTypeStarted}, &f.member)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(http.MethodPost, path, CreateStateRequest{Name: "Weird", Color: "#000", Type: "paused"}, &f.member)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec).Details, "type")

	rec = f.do(http.MethodPatch, path+"/"+state.ID.String(), UpdateStateRequest{Name: strPtr("Waiting")}, &f.member)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Waiting", decodeData[domain.WorkflowState](t, rec).Name)

	f.createIssue(CreateIssueRequest{Title: "Occupies", WorkflowStateID: &state.ID})
	rec = f.do(http.MethodDelete, path+"/"+state.ID.String(), nil, &f.member)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, domain.MsgStateInUse, decodeError(t, rec).Message)

	canceled := f.store.States(f.team.ID)[5]
	rec = f.do(http.MethodDelete, path+"/"+canceled.ID.String(), nil, &f.member)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Len(t, f.store.States(f.team.ID), len(domain.DefaultWorkflowStates))
}
