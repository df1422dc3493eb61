package handler

import (
	"net/http"

	"github.com/dafibh/dolinear/dolinear-backend/internal/domain"
	"github.com/dafibh/dolinear/dolinear-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// TeamHandler handles team-related HTTP requests
type TeamHandler struct {
	teamService *service.TeamService
	guard       *Guard
}

// NewTeamHandler creates a new TeamHandler
func NewTeamHandler(teamService *service.TeamService, guard *Guard) *TeamHandler {
	return &TeamHandler{teamService: teamService, guard: guard}
}

// CreateTeamRequest represents the create team request body
type CreateTeamRequest struct {
	Name       string `json:"name"`
	Identifier string `json:"identifier"`
}

// UpdateTeamRequest represents the update team request body
type UpdateTeamRequest struct {
	Name string `json:"name"`
}

// AddTeamMemberRequest is the body of POST .../teams/:teamId/members
type AddTeamMemberRequest struct {
	UserID uuid.UUID `json:"userId"`
}

// CreateTeam godoc
// @Summary Create a team
// @Description Seeds the default workflow states and adds the caller as a member
// @Tags teams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param wsId path string true "Workspace ID"
// @Param request body CreateTeamRequest true "Team"
// @Success 201 {object} DataResponse{data=domain.Team}
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /workspaces/{wsId}/teams [post]
func (h *TeamHandler) CreateTeam(c echo.Context) error {
	access, err := h.guard.Workspace(c)
	if err != nil {
		return RespondError(c, err)
	}

	var req CreateTeamRequest
	if err := c.Bind(&req); err != nil {
		return RespondError(c, invalidBody())
	}

	team, err := h.teamService.CreateTeam(c.Request().Context(), access, service.CreateTeamInput{
		Name:       req.Name,
		Identifier: req.Identifier,
	})
	if err != nil {
		return RespondError(c, err)
	}

	log.Info().Str("workspace_id", access.Workspace.ID.String()).Str("team_id", team.ID.String()).Str("identifier", team.Identifier).Msg("Team created")

	return respondData(c, http.StatusCreated, team)
}

// ListTeams godoc
// @Summary List teams in a workspace
// @Tags teams
// @Produce json
// @Security BearerAuth
// @Param wsId path string true "Workspace ID"
// @Success 200 {object} DataResponse{data=[]domain.Team}
// @Router /workspaces/{wsId}/teams [get]
func (h *TeamHandler) ListTeams(c echo.Context) error {
	access, err := h.guard.Workspace(c)
	if err != nil {
		return RespondError(c, err)
	}

	teams, err := h.teamService.ListTeams(c.Request().Context(), access)
	if err != nil {
		return RespondError(c, err)
	}
	return respondData(c, http.StatusOK, teams)
}

// GetTeam godoc
// @Summary Get a team
// @Tags teams
// @Produce json
// @Security BearerAuth
// @Param wsId path string true "Workspace ID"
// @Param teamId path string true "Team ID"
// @Success 200 {object} DataResponse{data=domain.Team}
// @Failure 404 {object} ErrorResponse
// @Router /workspaces/{wsId}/teams/{teamId} [get]
func (h *TeamHandler) GetTeam(c echo.Context) error {
	access, err := h.guard.Team(c)
	if err != nil {
		return RespondError(c, err)
	}
	return respondData(c, http.StatusOK, access.Team)
}

// UpdateTeam godoc
// @Summary Rename a team
// @Tags teams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param wsId path string true "Workspace ID"
// @Param teamId path string true "Team ID"
// @Param request body UpdateTeamRequest true "Team name"
// @Success 200 {object} DataResponse{data=domain.Team}
// @Failure 400 {object} ErrorResponse
// @Router /workspaces/{wsId}/teams/{teamId} [patch]
func (h *TeamHandler) UpdateTeam(c echo.Context) error {
	access, err := h.guard.Team(c)
	if err != nil {
		return RespondError(c, err)
	}

	var req UpdateTeamRequest
	if err := c.Bind(&req); err != nil {
		return RespondError(c, invalidBody())
	}

	team, err := h.teamService.UpdateTeam(c.Request().Context(), access, req.Name)
	if err != nil {
		return RespondError(c, err)
	}
	return respondData(c, http.StatusOK, team)
}

// DeleteTeam godoc
// @Summary Delete a team
// @Tags teams
// @Security BearerAuth
// @Param wsId path string true "Workspace ID"
// @Param teamId path string true "Team ID"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Router /workspaces/{wsId}/teams/{teamId} [delete]
func (h *TeamHandler) DeleteTeam(c echo.Context) error {
	access, err := h.guard.Team(c, domain.RoleOwner, domain.RoleAdmin)
	if err != nil {
		return RespondError(c, err)
	}

	if err := h.teamService.DeleteTeam(c.Request().Context(), access); err != nil {
		return RespondError(c, err)
	}

	log.Info().Str("team_id", access.Team.ID.String()).Str("user_id", access.UserID.String()).Msg("Team deleted")

	return c.NoContent(http.StatusNoContent)
}

// AddMember godoc
// @Summary Add a team member
// @Tags teams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param wsId path string true "Workspace ID"
// @Param teamId path string true "Team ID"
// @Param request body AddTeamMemberRequest true "Member"
// @Success 201 {object} DataResponse{data=domain.TeamMember}
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /workspaces/{wsId}/teams/{teamId}/members [post]
func (h *TeamHandler) AddMember(c echo.Context) error {
	access, err := h.guard.Team(c)
	if err != nil {
		return RespondError(c, err)
	}

	var req AddTeamMemberRequest
	if err := c.Bind(&req); err != nil {
		return RespondError(c, invalidBody())
	}

	member, err := h.teamService.AddMember(c.Request().Context(), access, req.UserID)
	if err != nil {
		return RespondError(c, err)
	}
	return respondData(c, http.StatusCreated, member)
}

// ListMembers godoc
// @Summary List team members
// @Tags teams
// @Produce json
// @Security BearerAuth
// @Param wsId path string true "Workspace ID"
// @Param teamId path string true "Team ID"
// @Success 200 {object} DataResponse{data=[]domain.TeamMember}
// @Router /workspaces/{wsId}/teams/{teamId}/members [get]
func (h *TeamHandler) ListMembers(c echo.Context) error {
	access, err := h.guard.Team(c)
	if err != nil {
		return RespondError(c, err)
	}

	members, err := h.teamService.ListMembers(c.Request().Context(), access)
	if err != nil {
		return RespondError(c, err)
	}
	return respondData(c, http.StatusOK, members)
}
