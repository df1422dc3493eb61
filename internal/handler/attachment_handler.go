package handler

import (
	"io"
	"net/http"

	"github.com/dafibh/dolinear/dolinear-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// AttachmentHandler handles issue image attachments
type AttachmentHandler struct {
	attachmentService *service.AttachmentService
	guard             *Guard
}

// NewAttachmentHandler creates a new AttachmentHandler
func NewAttachmentHandler(attachmentService *service.AttachmentService, guard *Guard) *AttachmentHandler {
	return &AttachmentHandler{attachmentService: attachmentService, guard: guard}
}

func (h *AttachmentHandler) enabled() bool {
	return h.attachmentService != nil && h.attachmentService.IsEnabled()
}

// UploadAttachment godoc
// @Summary Upload an image to an issue
// @Description JPEG, PNG or WebP up to 5MB and at least 50x50 pixels
// @Tags attachments
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param wsId path string true "Workspace ID"
// @Param teamId path string true "Team ID"
// @Param identifier path string true "Issue identifier"
// @Param file formData file true "Image"
// @Success 201 {object} DataResponse{data=service.AttachmentView}
// @Failure 400 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /workspaces/{wsId}/teams/{teamId}/issues/{identifier}/attachments [post]
func (h *AttachmentHandler) UploadAttachment(c echo.Context) error {
	if !h.enabled() {
		return RespondError(c, service.ErrStorageNotConfigured)
	}
	access, err := h.guard.Team(c)
	if err != nil {
		return RespondError(c, err)
	}
	identifier, err := identifierParam(c)
	if err != nil {
		return RespondError(c, err)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return RespondError(c, invalidField("file", "File is required"))
	}
	if file.Size > service.MaxImageSize {
		return RespondError(c, invalidField("file", service.MsgImageTooLarge))
	}

	src, err := file.Open()
	if err != nil {
		log.Error().Err(err).Msg("Failed to open uploaded file")
		return RespondError(c, err)
	}
	defer src.Close()

	// One byte past the limit is enough for the service to reject oversize bodies
	data, err := io.ReadAll(io.LimitReader(src, service.MaxImageSize+1))
	if err != nil {
		log.Error().Err(err).Msg("Failed to read uploaded file")
		return RespondError(c, err)
	}

	view, err := h.attachmentService.UploadAttachment(c.Request().Context(), access, identifier, file.Filename, data)
	if err != nil {
		return RespondError(c, err)
	}

	log.Info().
		Str("attachment_id", view.ID.String()).
		Str("identifier", identifier).
		Int64("size_bytes", view.SizeBytes).
		Msg("Attachment uploaded")

	return respondData(c, http.StatusCreated, view)
}

// ListAttachments godoc
// @Summary List an issue's attachments
// @Tags attachments
// @Produce json
// @Security BearerAuth
// @Param wsId path string true "Workspace ID"
// @Param teamId path string true "Team ID"
// @Param identifier path string true "Issue identifier"
// @Success 200 {object} DataResponse{data=[]service.AttachmentView}
// @Failure 503 {object} ErrorResponse
// @Router /workspaces/{wsId}/teams/{teamId}/issues/{identifier}/attachments [get]
func (h *AttachmentHandler) ListAttachments(c echo.Context) error {
	if !h.enabled() {
		return RespondError(c, service.ErrStorageNotConfigured)
	}
	access, err := h.guard.Team(c)
	if err != nil {
		return RespondError(c, err)
	}
	identifier, err := identifierParam(c)
	if err != nil {
		return RespondError(c, err)
	}

	views, err := h.attachmentService.ListAttachments(c.Request().Context(), access, identifier)
	if err != nil {
		return RespondError(c, err)
	}
	return respondData(c, http.StatusOK, views)
}

// DeleteAttachment godoc
// @Summary Delete an attachment
// @Description Allowed for the uploader or a workspace owner or admin
// @Tags attachments
// @Security BearerAuth
// @Param wsId path string true "Workspace ID"
// @Param teamId path string true "Team ID"
// @Param identifier path string true "Issue identifier"
// @Param attachmentId path string true "Attachment ID"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /workspaces/{wsId}/teams/{teamId}/issues/{identifier}/attachments/{attachmentId} [delete]
func (h *AttachmentHandler) DeleteAttachment(c echo.Context) error {
	if !h.enabled() {
		return RespondError(c, service.ErrStorageNotConfigured)
	}
	access, err := h.guard.Team(c)
	if err != nil {
		return RespondError(c, err)
	}
	identifier, err := identifierParam(c)
	if err != nil {
		return RespondError(c, err)
	}
	attachmentID, err := uuidParam(c, "attachmentId")
	if err != nil {
		return RespondError(c, err)
	}

	if err := h.attachmentService.DeleteAttachment(c.Request().Context(), access, identifier, attachmentID); err != nil {
		return RespondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
