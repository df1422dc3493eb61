package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/dafibh/dolinear/dolinear-backend/internal/domain"
	"github.com/dafibh/dolinear/dolinear-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestUploadAttachment(t *testing.T) {
	f := newIssueFixture(t)
	objects := testutil.NewMemoryObjectStore()
	svc := NewAttachmentService(f.store.Repositories().Attachments, f.store.Repositories().Issues, objects, 15*time.Minute)
	ctx := context.Background()
	issue := f.create(t, CreateIssueInput{Title: "x"})

	view, err := svc.UploadAttachment(ctx, f.access, issue.Identifier, "screenshot.png", pngBytes(t, 400, 300))
	require.NoError(t, err)

	assert.Equal(t, "screenshot.png", view.Filename)
	assert.Equal(t, "image/png", view.ContentType)
	assert.Contains(t, view.URL, view.ObjectKey)
	assert.Contains(t, view.ObjectKey, issue.ID.String())
	assert.Equal(t, 2, objects.Len())
	assert.Equal(t, "image/jpeg", objects.Types[view.ThumbnailKey])

	thumb, _, err := image.Decode(bytes.NewReader(objects.Objects[view.ThumbnailKey]))
	require.NoError(t, err)
	assert.Equal(t, ThumbnailWidth, thumb.Bounds().Dx())
	assert.Equal(t, 150, thumb.Bounds().Dy())

	list, err := svc.ListAttachments(ctx, f.access, issue.Identifier)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestUploadAttachment_Validation(t *testing.T) {
	f := newIssueFixture(t)
	svc := NewAttachmentService(f.store.Repositories().Attachments, f.store.Repositories().Issues, testutil.NewMemoryObjectStore(), time.Minute)
	issue := f.create(t, CreateIssueInput{Title: "x"})

	tests := []struct {
		name     string
		filename string
		data     []byte
		message  string
	}{
		{"bad extension", "doc.pdf", pngBytes(t, 100, 100), MsgInvalidFormat},
		{"undecodable", "img.png", []byte("not an image"), MsgInvalidImageData},
		{"too small", "img.png", pngBytes(t, 20, 20), MsgImageTooSmall},
		{"too large", "img.png", make([]byte, MaxImageSize+1), MsgImageTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UploadAttachment(context.Background(), f.access, issue.Identifier, tt.filename, tt.data)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestUploadAttachment_CleansUpOnFailure(t *testing.T) {
	f := newIssueFixture(t)
	objects := testutil.NewMemoryObjectStore()
	objects.FailAfter = 1
	svc := NewAttachmentService(f.store.Repositories().Attachments, f.store.Repositories().Issues, objects, time.Minute)
	issue := f.create(t, CreateIssueInput{Title: "x"})

	_, err := svc.UploadAttachment(context.Background(), f.access, issue.Identifier, "a.png", pngBytes(t, 100, 100))

	assert.ErrorIs(t, err, testutil.ErrInjected)
	assert.Equal(t, 0, objects.Len())
}

func TestUploadAttachment_RowFailureRemovesObjects(t *testing.T) {
	f := newIssueFixture(t)
	objects := testutil.NewMemoryObjectStore()
	f.store.FailOn("Attachments.Create", testutil.ErrInjected)
	svc := NewAttachmentService(f.store.Repositories().Attachments, f.store.Repositories().Issues, objects, time.Minute)
	issue := f.create(t, CreateIssueInput{Title: "x"})

	_, err := svc.UploadAttachment(context.Background(), f.access, issue.Identifier, "a.png", pngBytes(t, 100, 100))

	assert.ErrorIs(t, err, testutil.ErrInjected)
	assert.Equal(t, 0, objects.Len())
}

func TestDeleteAttachment_Permissions(t *testing.T) {
	f := newIssueFixture(t)
	objects := testutil.NewMemoryObjectStore()
	svc := NewAttachmentService(f.store.Repositories().Attachments, f.store.Repositories().Issues, objects, time.Minute)
	ctx := context.Background()
	issue := f.create(t, CreateIssueInput{Title: "x"})
	view, err := svc.UploadAttachment(ctx, f.access, issue.Identifier, "a.png", pngBytes(t, 100, 100))
	require.NoError(t, err)

	member := f.store.AddUser("member@example.com")
	m := f.store.AddWorkspaceMember(f.access.Workspace.ID, member.ID, domain.RoleMember)
	other := *f.access
	other.UserID = member.ID
	other.Member = &m

	err = svc.DeleteAttachment(ctx, &other, issue.Identifier, view.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	require.NoError(t, svc.DeleteAttachment(ctx, f.access, issue.Identifier, view.ID))
	assert.Equal(t, 0, objects.Len())
}

func TestDeleteIssue_PurgesAttachmentObjects(t *testing.T) {
	f := newIssueFixture(t)
	objects := testutil.NewMemoryObjectStore()
	attachments := NewAttachmentService(f.store.Repositories().Attachments, f.store.Repositories().Issues, objects, time.Minute)
	f.svc.SetAttachmentPurger(attachments)
	ctx := context.Background()
	issue := f.create(t, CreateIssueInput{Title: "x"})
	_, err := attachments.UploadAttachment(ctx, f.access, issue.Identifier, "a.png", pngBytes(t, 100, 100))
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteIssue(ctx, f.access, issue.Identifier))
	assert.Equal(t, 0, objects.Len())
}

func TestAttachments_DisabledWithoutStorage(t *testing.T) {
	f := newIssueFixture(t)
	svc := NewAttachmentService(f.store.Repositories().Attachments, f.store.Repositories().Issues, nil, time.Minute)

	assert.False(t, svc.IsEnabled())
	_, err := svc.ListAttachments(context.Background(), f.access, "ENG-1")
	assert.ErrorIs(t, err, ErrStorageNotConfigured)
}
