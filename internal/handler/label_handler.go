package handler

import (
	"net/http"

	"github.com/dafibh/dolinear/dolinear-backend/internal/domain"
	"github.com/dafibh/dolinear/dolinear-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// LabelHandler handles label-related HTTP requests
type LabelHandler struct {
	labelService *service.LabelService
	guard        *Guard
}

// NewLabelHandler creates a new LabelHandler
func NewLabelHandler(labelService *service.LabelService, guard *Guard) *LabelHandler {
	return &LabelHandler{labelService: labelService, guard: guard}
}

// CreateLabelRequest represents the create label request body
type CreateLabelRequest struct {
	Name        string  `json:"name"`
	Color       string  `json:"color"`
	Description *string `json:"description,omitempty"`
}

// UpdateLabelRequest represents the update label request body.
// A null description clears it.
type UpdateLabelRequest struct {
	Name        *string                 `json:"name,omitempty"`
	Color       *string                 `json:"color,omitempty"`
	Description domain.Optional[string] `json:"description" swaggertype:"string"`
}

// ListLabels godoc
// @Summary List workspace labels
// @Tags labels
// @Produce json
// @Security BearerAuth
// @Param wsId path string true "Workspace ID"
// @Success 200 {object} DataResponse{data=[]domain.Label}
// @Router /workspaces/{wsId}/labels [get]
func (h *LabelHandler) ListLabels(c echo.Context) error {
	access, err := h.guard.Workspace(c)
	if err != nil {
		return RespondError(c, err)
	}

	labels, err := h.labelService.ListLabels(c.Request().Context(), access)
	if err != nil {
		return RespondError(c, err)
	}
	return respondData(c, http.StatusOK, labels)
}

// GetLabel godoc
// @Summary Get a label
// @Tags labels
// @Produce json
// @Security BearerAuth
// @Param wsId path string true "Workspace ID"
// @Param labelId path string true "Label ID"
// @Success 200 {object} DataResponse{data=domain.Label}
// @Failure 404 {object} ErrorResponse
// @Router /workspaces/{wsId}/labels/{labelId} [get]
func (h *LabelHandler) GetLabel(c echo.Context) error {
	access, err := h.guard.Workspace(c)
	if err != nil {
		return RespondError(c, err)
	}
	labelID, err := uuidParam(c, "labelId")
	if err != nil {
		return RespondError(c, err)
	}

	label, err := h.labelService.GetLabel(c.Request().Context(), access, labelID)
	if err != nil {
		return RespondError(c, err)
	}
	return respondData(c, http.StatusOK, label)
}

// CreateLabel godoc
// @Summary Create a label
// @Tags labels
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param wsId path string true "Workspace ID"
// @Param request body CreateLabelRequest true "Label"
// @Success 201 {object} DataResponse{data=domain.Label}
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /workspaces/{wsId}/labels [post]
func (h *LabelHandler) CreateLabel(c echo.Context) error {
	access, err := h.guard.Workspace(c)
	if err != nil {
		return RespondError(c, err)
	}

	var req CreateLabelRequest
	if err := c.Bind(&req); err != nil {
		return RespondError(c, invalidBody())
	}

	label, err := h.labelService.CreateLabel(c.Request().Context(), access, service.CreateLabelInput{
		Name:        req.Name,
		Color:       req.Color,
		Description: req.Description,
	})
	if err != nil {
		return RespondError(c, err)
	}
	return respondData(c, http.StatusCreated, label)
}

// UpdateLabel godoc
// @Summary Update a label
// @Tags labels
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param wsId path string true "Workspace ID"
// @Param labelId path string true "Label ID"
// @Param request body UpdateLabelRequest true "Fields to change"
// @Success 200 {object} DataResponse{data=domain.Label}
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /workspaces/{wsId}/labels/{labelId} [patch]
func (h *LabelHandler) UpdateLabel(c echo.Context) error {
	access, err := h.guard.Workspace(c)
	if err != nil {
		return RespondError(c, err)
	}
	labelID, err := uuidParam(c, "labelId")
	if err != nil {
		return RespondError(c, err)
	}

	var req UpdateLabelRequest
	if err := c.Bind(&req); err != nil {
		return RespondError(c, invalidBody())
	}

	label, err := h.labelService.UpdateLabel(c.Request().Context(), access, labelID, service.UpdateLabelInput{
		Name:        req.Name,
		Color:       req.Color,
		Description: req.Description,
	})
	if err != nil {
		return RespondError(c, err)
	}
	return respondData(c, http.StatusOK, label)
}

// DeleteLabel godoc
// @Summary Delete a label
// @Tags labels
// @Security BearerAuth
// @Param wsId path string true "Workspace ID"
// @Param labelId path string true "Label ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /workspaces/{wsId}/labels/{labelId} [delete]
func (h *LabelHandler) DeleteLabel(c echo.Context) error {
	access, err := h.guard.Workspace(c)
	if err != nil {
		return RespondError(c, err)
	}
	labelID, err := uuidParam(c, "labelId")
	if err != nil {
		return RespondError(c, err)
	}

	if err := h.labelService.DeleteLabel(c.Request().Context(), access, labelID); err != nil {
		return RespondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
