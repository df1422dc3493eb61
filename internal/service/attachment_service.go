package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"path/filepath"
	"strings"
	"time"

	"github.com/dafibh/dolinear/dolinear-backend/internal/domain"
	"github.com/dafibh/dolinear/dolinear-backend/internal/repository/storage"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	_ "golang.org/x/image/webp"
)

const (
	MaxImageSize   = 5 * 1024 * 1024 // 5MB
	MinImageWidth  = 50
	MinImageHeight = 50
	ThumbnailWidth = 200
	JPEGQuality    = 85
)

// ErrStorageNotConfigured is returned by every attachment operation when no bucket is set
var ErrStorageNotConfigured = errors.New("attachment storage not configured")

// Upload validation messages
const (
	MsgImageTooLarge    = "File too large. Maximum size is 5MB"
	MsgInvalidFormat    = "Invalid format. Supported: JPEG, PNG, WebP"
	MsgImageTooSmall    = "Image too small. Minimum 50x50 pixels"
	MsgInvalidImageData = "Invalid image data"
	MsgAttachmentDelete = "Only the uploader or a workspace admin can delete this attachment"
)

// AllowedExtensions maps extensions to content types
var AllowedExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// AttachmentView is an attachment with short-lived download URLs
type AttachmentView struct {
	domain.Attachment
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

// AttachmentService stores issue images and their thumbnails
type AttachmentService struct {
	attachmentRepo domain.AttachmentRepository
	issueRepo      domain.IssueRepository
	storage        storage.ObjectRepository
	urlExpiry      time.Duration
}

// NewAttachmentService creates a new AttachmentService. A nil store disables uploads.
func NewAttachmentService(attachmentRepo domain.AttachmentRepository, issueRepo domain.IssueRepository, store storage.ObjectRepository, urlExpiry time.Duration) *AttachmentService {
	return &AttachmentService{
		attachmentRepo: attachmentRepo,
		issueRepo:      issueRepo,
		storage:        store,
		urlExpiry:      urlExpiry,
	}
}

// IsEnabled indicates whether object storage is configured
func (s *AttachmentService) IsEnabled() bool {
	return s != nil && s.storage != nil
}

func invalidFile(message string) error {
	return domain.Validation(message, map[string][]string{"file": {message}})
}

// validateAndDecode checks size, extension and dimensions and returns the decoded image
func validateAndDecode(data []byte, filename string) (image.Image, string, error) {
	if len(data) > MaxImageSize {
		return nil, "", invalidFile(MsgImageTooLarge)
	}

	contentType, ok := AllowedExtensions[strings.ToLower(filepath.Ext(filename))]
	if !ok {
		return nil, "", invalidFile(MsgInvalidFormat)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", invalidFile(MsgInvalidImageData)
	}

	bounds := img.Bounds()
	if bounds.Dx() < MinImageWidth || bounds.Dy() < MinImageHeight {
		return nil, "", invalidFile(MsgImageTooSmall)
	}
	return img, contentType, nil
}

func objectKey(access *TeamAccess, issueID, attachmentID uuid.UUID, variant string) string {
	return fmt.Sprintf("%s/%s/%s/%s_%s", access.Workspace.ID, access.Team.ID, issueID, attachmentID, variant)
}

// UploadAttachment stores the original image and a JPEG thumbnail, then records
// the attachment. Objects already uploaded are removed if a later step fails.
func (s *AttachmentService) UploadAttachment(ctx context.Context, access *TeamAccess, identifier, filename string, data []byte) (*AttachmentView, error) {
	if !s.IsEnabled() {
		return nil, ErrStorageNotConfigured
	}

	issue, err := s.issueRepo.GetByIdentifier(ctx, access.Team.ID, identifier)
	if err != nil {
		return nil, err
	}

	img, contentType, err := validateAndDecode(data, filename)
	if err != nil {
		return nil, err
	}

	thumb := img
	if img.Bounds().Dx() > ThumbnailWidth {
		thumb = imaging.Resize(img, ThumbnailWidth, 0, imaging.Lanczos)
	}
	var thumbBuf bytes.Buffer
	if err := jpeg.Encode(&thumbBuf, thumb, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	attachmentID := uuid.New()
	originalKey := objectKey(access, issue.ID, attachmentID, "original")
	thumbKey := objectKey(access, issue.ID, attachmentID, "thumb")

	var uploaded []string
	cleanup := func() {
		for _, key := range uploaded {
			if err := s.storage.Delete(ctx, key); err != nil {
				log.Warn().Err(err).Str("object_key", key).Msg("Failed to clean up attachment object")
			}
		}
	}

	if err := s.storage.Upload(ctx, originalKey, bytes.NewReader(data), contentType, int64(len(data))); err != nil {
		return nil, err
	}
	uploaded = append(uploaded, originalKey)

	if err := s.storage.Upload(ctx, thumbKey, bytes.NewReader(thumbBuf.Bytes()), "image/jpeg", int64(thumbBuf.Len())); err != nil {
		cleanup()
		return nil, err
	}
	uploaded = append(uploaded, thumbKey)

	created, err := s.attachmentRepo.Create(ctx, &domain.Attachment{
		ID:           attachmentID,
		IssueID:      issue.ID,
		UploaderID:   access.UserID,
		Filename:     filepath.Base(filename),
		ContentType:  contentType,
		SizeBytes:    int64(len(data)),
		ObjectKey:    originalKey,
		ThumbnailKey: thumbKey,
	})
	if err != nil {
		cleanup()
		return nil, err
	}

	return s.view(ctx, *created)
}

// ListAttachments returns the issue's attachments with presigned URLs
func (s *AttachmentService) ListAttachments(ctx context.Context, access *TeamAccess, identifier string) ([]AttachmentView, error) {
	if !s.IsEnabled() {
		return nil, ErrStorageNotConfigured
	}

	issue, err := s.issueRepo.GetByIdentifier(ctx, access.Team.ID, identifier)
	if err != nil {
		return nil, err
	}

	attachments, err := s.attachmentRepo.ListByIssue(ctx, issue.ID)
	if err != nil {
		return nil, err
	}

	views := make([]AttachmentView, 0, len(attachments))
	for _, a := range attachments {
		v, err := s.view(ctx, a)
		if err != nil {
			return nil, err
		}
		views = append(views, *v)
	}
	return views, nil
}

// DeleteAttachment removes an attachment. The uploader and workspace owners or
// admins may do so.
func (s *AttachmentService) DeleteAttachment(ctx context.Context, access *TeamAccess, identifier string, attachmentID uuid.UUID) error {
	if !s.IsEnabled() {
		return ErrStorageNotConfigured
	}

	issue, err := s.issueRepo.GetByIdentifier(ctx, access.Team.ID, identifier)
	if err != nil {
		return err
	}

	attachment, err := s.attachmentRepo.GetForIssue(ctx, issue.ID, attachmentID)
	if err != nil {
		return err
	}
	if attachment.UploaderID != access.UserID && !access.HasRole(domain.RoleOwner, domain.RoleAdmin) {
		return domain.Forbidden(MsgAttachmentDelete)
	}

	if err := s.attachmentRepo.Delete(ctx, attachment.ID); err != nil {
		return err
	}
	s.PurgeObjects(ctx, []domain.Attachment{*attachment})
	return nil
}

// PurgeObjects deletes the stored objects of attachments whose rows are gone.
// Failures are logged and otherwise ignored.
func (s *AttachmentService) PurgeObjects(ctx context.Context, attachments []domain.Attachment) {
	if !s.IsEnabled() {
		return
	}
	for _, a := range attachments {
		for _, key := range []string{a.ObjectKey, a.ThumbnailKey} {
			if key == "" {
				continue
			}
			if err := s.storage.Delete(ctx, key); err != nil {
				log.Warn().Err(err).Str("attachment_id", a.ID.String()).Str("object_key", key).Msg("Failed to delete attachment object")
			}
		}
	}
}

func (s *AttachmentService) view(ctx context.Context, a domain.Attachment) (*AttachmentView, error) {
	url, err := s.storage.PresignedURL(ctx, a.ObjectKey, s.urlExpiry)
	if err != nil {
		return nil, err
	}
	thumbURL, err := s.storage.PresignedURL(ctx, a.ThumbnailKey, s.urlExpiry)
	if err != nil {
		return nil, err
	}
	return &AttachmentView{Attachment: a, URL: url, ThumbnailURL: thumbURL}, nil
}
