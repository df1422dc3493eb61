package handler

import (
	"net/http"
	"testing"

	"github.com/dafibh/dolinear/dolinear-backend/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttachments_StorageNotConfigured(t *testing.T) {
	f := newAPIFixture(t)
	issue := f.createIssue(CreateIssueRequest{Title: "Screenshot"})
	path := f.teamPath() + "/issues/" + issue.Identifier + "/attachments"

	rec := f.upload(path, "shot.png", pngBytes(t, 60, 60), f.owner)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, KindServiceUnavailable, decodeError(t, rec).Error)

	rec = f.do(http.MethodGet, path, nil, &f.owner)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAttachments_UploadListDelete(t *testing.T) {
	f := newAPIFixture(t, withStorage())
	issue := f.createIssue(CreateIssueRequest{Title: "Screenshot"})
	path := f.teamPath() + "/issues/" + issue.Identifier + "/attachments"

	rec := f.upload(path, "shot.png", pngBytes(t, 300, 80), f.member)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	view := decodeData[service.AttachmentView](t, rec)
	assert.Equal(t, "shot.png", view.Filename)
	assert.Equal(t, "image/png", view.ContentType)
	assert.Equal(t, f.member.ID, view.UploaderID)
	assert.NotEmpty(t, view.URL)
	assert.NotEmpty(t, view.ThumbnailURL)
	assert.Equal(t, 2, f.objects.Len())
	var types []string
	for _, ct := range f.objects.Types {
		types = append(types, ct)
	}
	assert.ElementsMatch(t, []string{"image/png", "image/jpeg"}, types)

	rec = f.do(http.MethodGet, path, nil, &f.owner)
	require.Equal(t, http.StatusOK, rec.Code)
	views := decodeData[[]service.AttachmentView](t, rec)
	require.Len(t, views, 1)
	assert.Equal(t, view.ID, views[0].ID)

	rec = f.do(http.MethodDelete, path+"/"+view.ID.String(), nil, &f.owner)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, f.objects.Len())
}

func TestAttachments_DeleteRequiresUploaderOrAdmin(t *testing.T) {
	f := newAPIFixture(t, withStorage())
	issue := f.createIssue(CreateIssueRequest{Title: "Screenshot"})
	path := f.teamPath() + "/issues/" + issue.Identifier + "/attachments"

	rec := f.upload(path, "shot.png", pngBytes(t, 60, 60), f.owner)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	view := decodeData[service.AttachmentView](t, rec)

	rec = f.do(http.MethodDelete, path+"/"+view.ID.String(), nil, &f.member)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, service.MsgAttachmentDelete, decodeError(t, rec).Message)
	assert.Equal(t, 2, f.objects.Len())
}

func TestAttachments_RejectsBadImages(t *testing.T) {
	f := newAPIFixture(t, withStorage())
	issue := f.createIssue(CreateIssueRequest{Title: "Screenshot"})
	path := f.teamPath() + "/issues/" + issue.Identifier + "/attachments"

	cases := []struct {
		name     string
		filename string
		data     []byte
		message  string
	}{
		{"too small", "tiny.png", pngBytes(t, 20, 20), service.MsgImageTooSmall},
		{"unsupported extension", "notes.gif", pngBytes(t, 60, 60), service.MsgInvalidFormat},
		{"not an image", "fake.png", []byte("definitely not a png"), service.MsgInvalidImageData},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := f.upload(path, tc.filename, tc.data, f.owner)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, tc.message, body.Message)
			assert.Contains(t, body.Details, "file")
		})
	}
	assert.Equal(t, 0, f.objects.Len())
}

func TestAttachments_UnknownIssue(t *testing.T) {
	f := newAPIFixture(t, withStorage())

	rec := f.upload(f.teamPath()+"/issues/ENG-99/attachments", "shot.png", pngBytes(t, 60, 60), f.owner)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 0, f.objects.Len())
}

func TestDeleteIssue_PurgesAttachmentObjects(t *testing.T) {
	f := newAPIFixture(t, withStorage())
	issue := f.createIssue(CreateIssueRequest{Title: "Screenshot"})

	rec := f.upload(f.teamPath()+"/issues/"+issue.Identifier+"/attachments", "shot.png", pngBytes(t, 60, 60), f.owner)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Equal(t, 2, f.objects.Len())

	rec = f.do(http.MethodDelete, f.teamPath()+"/issues/"+issue.Identifier, nil, &f.owner)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, f.objects.Len())
}
