package handler

import (
	"net/http"

	"github.com/dafibh/dolinear/dolinear-backend/internal/domain"
	"github.com/dafibh/dolinear/dolinear-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// WorkspaceHandler handles workspace-related HTTP requests
type WorkspaceHandler struct {
	workspaceService *service.WorkspaceService
	guard            *Guard
}

// NewWorkspaceHandler creates a new WorkspaceHandler
func NewWorkspaceHandler(workspaceService *service.WorkspaceService, guard *Guard) *WorkspaceHandler {
	return &WorkspaceHandler{workspaceService: workspaceService, guard: guard}
}

// WorkspaceRequest is the body of workspace create and update
type WorkspaceRequest struct {
	Name string `json:"name"`
}

// AddWorkspaceMemberRequest is the body of POST /workspaces/:wsId/members
type AddWorkspaceMemberRequest struct {
	UserID uuid.UUID   `json:"userId"`
	Role   domain.Role `json:"role"`
}

// CreateWorkspace godoc
// @Summary Create a workspace
// @Description The caller becomes its owner
// @Tags workspaces
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body WorkspaceRequest true "Workspace name"
// @Success 201 {object} DataResponse{data=domain.Workspace}
// @Failure 400 {object} ErrorResponse
// @Router /workspaces [post]
func (h *WorkspaceHandler) CreateWorkspace(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return RespondError(c, err)
	}

	var req WorkspaceRequest
	if err := c.Bind(&req); err != nil {
		return RespondError(c, invalidBody())
	}

	ws, err := h.workspaceService.CreateWorkspace(c.Request().Context(), userID, req.Name)
	if err != nil {
		return RespondError(c, err)
	}

	log.Info().Str("workspace_id", ws.ID.String()).Str("slug", ws.Slug).Str("user_id", userID.String()).Msg("Workspace created")

	return respondData(c, http.StatusCreated, ws)
}

// ListWorkspaces godoc
// @Summary List the caller's workspaces
// @Tags workspaces
// @Produce json
// @Security BearerAuth
// @Success 200 {object} DataResponse{data=[]domain.WorkspaceWithRole}
// @Router /workspaces [get]
func (h *WorkspaceHandler) ListWorkspaces(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return RespondError(c, err)
	}

	workspaces, err := h.workspaceService.ListWorkspaces(c.Request().Context(), userID)
	if err != nil {
		return RespondError(c, err)
	}
	return respondData(c, http.StatusOK, workspaces)
}

// GetWorkspace godoc
// @Summary Get a workspace
// @Tags workspaces
// @Produce json
// @Security BearerAuth
// @Param wsId path string true "Workspace ID"
// @Success 200 {object} DataResponse{data=domain.WorkspaceWithRole}
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /workspaces/{wsId} [get]
func (h *WorkspaceHandler) GetWorkspace(c echo.Context) error {
	access, err := h.guard.Workspace(c)
	if err != nil {
		return RespondError(c, err)
	}
	return respondData(c, http.StatusOK, domain.WorkspaceWithRole{
		Workspace: *access.Workspace,
		Role:      access.Member.Role,
	})
}

// UpdateWorkspace godoc
// @Summary Rename a workspace
// @Tags workspaces
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param wsId path string true "Workspace ID"
// @Param request body WorkspaceRequest true "Workspace name"
// @Success 200 {object} DataResponse{data=domain.Workspace}
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /workspaces/{wsId} [patch]
func (h *WorkspaceHandler) UpdateWorkspace(c echo.Context) error {
	access, err := h.guard.Workspace(c, domain.RoleOwner, domain.RoleAdmin)
	if err != nil {
		return RespondError(c, err)
	}

	var req WorkspaceRequest
	if err := c.Bind(&req); err != nil {
		return RespondError(c, invalidBody())
	}

	ws, err := h.workspaceService.UpdateWorkspace(c.Request().Context(), access, req.Name)
	if err != nil {
		return RespondError(c, err)
	}
	return respondData(c, http.StatusOK, ws)
}

// DeleteWorkspace godoc
// @Summary Delete a workspace and everything in it
// @Tags workspaces
// @Security BearerAuth
// @Param wsId path string true "Workspace ID"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Router /workspaces/{wsId} [delete]
func (h *WorkspaceHandler) DeleteWorkspace(c echo.Context) error {
	access, err := h.guard.Workspace(c, domain.RoleOwner)
	if err != nil {
		return RespondError(c, err)
	}

	if err := h.workspaceService.DeleteWorkspace(c.Request().Context(), access); err != nil {
		return RespondError(c, err)
	}

	log.Info().Str("workspace_id", access.Workspace.ID.String()).Str("user_id", access.UserID.String()).Msg("Workspace deleted")

	return c.NoContent(http.StatusNoContent)
}

// AddMember godoc
// @Summary Add a workspace member
// @Tags workspaces
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param wsId path string true "Workspace ID"
// @Param request body AddWorkspaceMemberRequest true "Member"
// @Success 201 {object} DataResponse{data=domain.WorkspaceMember}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /workspaces/{wsId}/members [post]
func (h *WorkspaceHandler) AddMember(c echo.Context) error {
	access, err := h.guard.Workspace(c, domain.RoleOwner, domain.RoleAdmin)
	if err != nil {
		return RespondError(c, err)
	}

	var req AddWorkspaceMemberRequest
	if err := c.Bind(&req); err != nil {
		return RespondError(c, invalidBody())
	}

	member, err := h.workspaceService.AddMember(c.Request().Context(), access, service.AddMemberInput{
		UserID: req.UserID,
		Role:   req.Role,
	})
	if err != nil {
		return RespondError(c, err)
	}
	return respondData(c, http.StatusCreated, member)
}

// ListMembers godoc
// @Summary List workspace members
// @Tags workspaces
// @Produce json
// @Security BearerAuth
// @Param wsId path string true "Workspace ID"
// @Success 200 {object} DataResponse{data=[]domain.WorkspaceMember}
// @Router /workspaces/{wsId}/members [get]
func (h *WorkspaceHandler) ListMembers(c echo.Context) error {
	access, err := h.guard.Workspace(c)
	if err != nil {
		return RespondError(c, err)
	}

	members, err := h.workspaceService.ListMembers(c.Request().Context(), access)
	if err != nil {
		return RespondError(c, err)
	}
	return respondData(c, http.StatusOK, members)
}
