package handler

import (
	"net/http"

	"github.com/dafibh/dolinear/dolinear-backend/internal/domain"
	"github.com/dafibh/dolinear/dolinear-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// WorkflowStateHandler handles workflow state HTTP requests
type WorkflowStateHandler struct {
	stateService *service.WorkflowStateService
	guard        *Guard
}

// NewWorkflowStateHandler creates a new WorkflowStateHandler
func NewWorkflowStateHandler(stateService *service.WorkflowStateService, guard *Guard) *WorkflowStateHandler {
	return &WorkflowStateHandler{stateService: stateService, guard: guard}
}

// CreateStateRequest represents the create workflow state request body
type CreateStateRequest struct {
	Name     string           `json:"name"`
	Color    string           `json:"color"`
	Type     domain.StateType `json:"type"`
	Position int              `json:"position"`
}

// UpdateStateRequest represents the update workflow state request body
type UpdateStateRequest struct {
	Name     *string           `json:"name,omitempty"`
	Color    *string           `json:"color,omitempty"`
	Type     *domain.StateType `json:"type,omitempty"`
	Position *int              `json:"position,omitempty"`
}

// ListStates godoc
// @Summary List a team's workflow states
// @Tags workflow-states
// @Produce json
// @Security BearerAuth
// @Param wsId path string true "Workspace ID"
// @Param teamId path string true "Team ID"
// @Success 200 {object} DataResponse{data=[]domain.WorkflowState}
// @Router /workspaces/{wsId}/teams/{teamId}/states [get]
func (h *WorkflowStateHandler) ListStates(c echo.Context) error {
	access, err := h.guard.Team(c)
	if err != nil {
		return RespondError(c, err)
	}

	states, err := h.stateService.ListStates(c.Request().Context(), access)
	if err != nil {
		return RespondError(c, err)
	}
	return respondData(c, http.StatusOK, states)
}

// CreateState godoc
// @Summary Create a workflow state
// @Tags workflow-states
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param wsId path string true "Workspace ID"
// @Param teamId path string true "Team ID"
// @Param request body CreateStateRequest true "State"
// @Success 201 {object} DataResponse{data=domain.WorkflowState}
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /workspaces/{wsId}/teams/{teamId}/states [post]
func (h *WorkflowStateHandler) CreateState(c echo.Context) error {
	access, err := h.guard.Team(c)
	if err != nil {
		return RespondError(c, err)
	}

	var req CreateStateRequest
	if err := c.Bind(&req); err != nil {
		return RespondError(c, invalidBody())
	}

	state, err := h.stateService.CreateState(c.Request().Context(), access, service.CreateStateInput{
		Name:     req.Name,
		Color:    req.Color,
		Type:     req.Type,
		Position: req.Position,
	})
	if err != nil {
		return RespondError(c, err)
	}
	return respondData(c, http.StatusCreated, state)
}

// UpdateState godoc
// @Summary Update a workflow state
// @Tags workflow-states
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param wsId path string true "Workspace ID"
// @Param teamId path string true "Team ID"
// @Param stateId path string true "State ID"
// @Param request body UpdateStateRequest true "Fields to change"
// @Success 200 {object} DataResponse{data=domain.WorkflowState}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /workspaces/{wsId}/teams/{teamId}/states/{stateId} [patch]
func (h *WorkflowStateHandler) UpdateState(c echo.Context) error {
	access, err := h.guard.Team(c)
	if err != nil {
		return RespondError(c, err)
	}
	stateID, err := uuidParam(c, "stateId")
	if err != nil {
		return RespondError(c, err)
	}

	var req UpdateStateRequest
	if err := c.Bind(&req); err != nil {
		return RespondError(c, invalidBody())
	}

	state, err := h.stateService.UpdateState(c.Request().Context(), access, stateID, service.UpdateStateInput{
		Name:     req.Name,
		Color:    req.Color,
		Type:     req.Type,
		Position: req.Position,
	})
	if err != nil {
		return RespondError(c, err)
	}
	return respondData(c, http.StatusOK, state)
}

// DeleteState godoc
// @Summary Delete a workflow state
// @Tags workflow-states
// @Security BearerAuth
// @Param wsId path string true "Workspace ID"
// @Param teamId path string true "Team ID"
// @Param stateId path string true "State ID"
// @Success 204
// @Failure 409 {object} ErrorResponse
// @Router /workspaces/{wsId}/teams/{teamId}/states/{stateId} [delete]
func (h *WorkflowStateHandler) DeleteState(c echo.Context) error {
	access, err := h.guard.Team(c)
	if err != nil {
		return RespondError(c, err)
	}
	stateID, err := uuidParam(c, "stateId")
	if err != nil {
		return RespondError(c, err)
	}

	if err := h.stateService.DeleteState(c.Request().Context(), access, stateID); err != nil {
		return RespondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
