package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dafibh/dolinear/dolinear-backend/internal/domain"
	"github.com/dafibh/dolinear/dolinear-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// IssueHandler handles issue-related HTTP requests
type IssueHandler struct {
	issueService *service.IssueService
	guard        *Guard
}

// NewIssueHandler creates a new IssueHandler
func NewIssueHandler(issueService *service.IssueService, guard *Guard) *IssueHandler {
	return &IssueHandler{issueService: issueService, guard: guard}
}

// CreateIssueRequest represents the create issue request body
type CreateIssueRequest struct {
	Title           string      `json:"title"`
	Description     *string     `json:"description,omitempty"`
	WorkflowStateID *uuid.UUID  `json:"workflowStateId,omitempty"`
	Priority        *int        `json:"priority,omitempty"`
	AssigneeID      *uuid.UUID  `json:"assigneeId,omitempty"`
	DueDate         *string     `json:"dueDate,omitempty"`
	Estimate        *int        `json:"estimate,omitempty"`
	LabelIDs        []uuid.UUID `json:"labelIds,omitempty"`
}

// UpdateIssueRequest represents the update issue request body.
// An explicit null clears description, assigneeId, dueDate and estimate.
type UpdateIssueRequest struct {
	Title           *string                    `json:"title,omitempty"`
	Description     domain.Optional[string]    `json:"description" swaggertype:"string"`
	WorkflowStateID *uuid.UUID                 `json:"workflowStateId,omitempty"`
	Priority        *int                       `json:"priority,omitempty"`
	AssigneeID      domain.Optional[uuid.UUID] `json:"assigneeId" swaggertype:"string"`
	DueDate         domain.Optional[string]    `json:"dueDate" swaggertype:"string"`
	Estimate        domain.Optional[int]       `json:"estimate" swaggertype:"integer"`
	SortOrder       *float64                   `json:"sortOrder,omitempty"`
}

// AttachLabelRequest is the body of POST .../issues/:identifier/labels
type AttachLabelRequest struct {
	LabelID uuid.UUID `json:"labelId"`
}

// parseDueDate accepts RFC3339 timestamps or plain YYYY-MM-DD dates
func parseDueDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func invalidDueDate() error {
	return invalidField("dueDate", "Must be an RFC3339 timestamp or YYYY-MM-DD")
}

// CreateIssue godoc
// @Summary Create an issue
// @Description Allocates the next team number and places the issue at the top of the team's order
// @Tags issues
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param wsId path string true "Workspace ID"
// @Param teamId path string true "Team ID"
// @Param request body CreateIssueRequest true "Issue"
// @Success 201 {object} DataResponse{data=domain.Issue}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /workspaces/{wsId}/teams/{teamId}/issues [post]
func (h *IssueHandler) CreateIssue(c echo.Context) error {
	access, err := h.guard.Team(c)
	if err != nil {
		return RespondError(c, err)
	}

	var req CreateIssueRequest
	if err := c.Bind(&req); err != nil {
		return RespondError(c, invalidBody())
	}

	input := service.CreateIssueInput{
		Title:           req.Title,
		Description:     req.Description,
		WorkflowStateID: req.WorkflowStateID,
		Priority:        req.Priority,
		AssigneeID:      req.AssigneeID,
		Estimate:        req.Estimate,
		LabelIDs:        req.LabelIDs,
	}
	if req.DueDate != nil && *req.DueDate != "" {
		due, err := parseDueDate(*req.DueDate)
		if err != nil {
			return RespondError(c, invalidDueDate())
		}
		input.DueDate = &due
	}

	issue, err := h.issueService.CreateIssue(c.Request().Context(), access, input)
	if err != nil {
		return RespondError(c, err)
	}

	log.Info().Str("team_id", access.Team.ID.String()).Str("issue_id", issue.ID.String()).Str("identifier", issue.Identifier).Msg("Issue created")

	return respondData(c, http.StatusCreated, issue)
}

// ListIssues godoc
// @Summary List a team's issues
// @Description Filters are combined with AND
// @Tags issues
// @Produce json
// @Security BearerAuth
// @Param wsId path string true "Workspace ID"
// @Param teamId path string true "Team ID"
// @Param workflowStateId query string false "Workflow state ID"
// @Param stateType query string false "State type" Enums(backlog, unstarted, started, completed, cancelled)
// @Param priority query int false "Priority (0-4)"
// @Param assigneeId query string false "Assignee user ID"
// @Param labelId query string false "Label ID"
// @Param sort query string false "Sort field" Enums(sortOrder, createdAt, priority, dueDate)
// @Param order query string false "Sort direction" Enums(asc, desc)
// @Param page query int false "Page (default 1)"
// @Param pageSize query int false "Page size (default 50, max 100)"
// @Success 200 {object} ListResponse{data=[]domain.Issue}
// @Failure 400 {object} ErrorResponse
// @Router /workspaces/{wsId}/teams/{teamId}/issues [get]
func (h *IssueHandler) ListIssues(c echo.Context) error {
	access, err := h.guard.Team(c)
	if err != nil {
		return RespondError(c, err)
	}

	input, err := parseListIssuesQuery(c)
	if err != nil {
		return RespondError(c, err)
	}

	page, err := h.issueService.ListIssues(c.Request().Context(), access.Team.ID, *input)
	if err != nil {
		return RespondError(c, err)
	}

	return c.JSON(http.StatusOK, ListResponse{
		Data:     page.Items,
		Total:    page.Total,
		Page:     page.Page,
		PageSize: page.PageSize,
		HasMore:  page.HasMore,
	})
}

func parseListIssuesQuery(c echo.Context) (*service.ListIssuesInput, error) {
	fe := domain.FieldErrors{}
	input := &service.ListIssuesInput{
		Sort: domain.IssueSort{
			Field:     domain.IssueSortField(c.QueryParam("sort")),
			Direction: domain.SortDirection(c.QueryParam("order")),
		},
	}

	queryUUID := func(name string) *uuid.UUID {
		raw := c.QueryParam(name)
		if raw == "" {
			return nil
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			fe.Add(name, "Must be a valid UUID")
			return nil
		}
		return &id
	}
	queryInt := func(name string) *int {
		raw := c.QueryParam(name)
		if raw == "" {
			return nil
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			fe.Add(name, "Must be an integer")
			return nil
		}
		return &n
	}

	input.Filter.WorkflowStateID = queryUUID("workflowStateId")
	input.Filter.AssigneeID = queryUUID("assigneeId")
	input.Filter.LabelID = queryUUID("labelId")
	input.Filter.Priority = queryInt("priority")
	input.Page = queryInt("page")
	input.PageSize = queryInt("pageSize")
	if raw := c.QueryParam("stateType"); raw != "" {
		st := domain.StateType(raw)
		input.Filter.StateType = &st
	}

	if err := fe.Err(domain.MsgInvalidQuery); err != nil {
		return nil, err
	}
	return input, nil
}

// GetIssue godoc
// @Summary Get an issue by identifier
// @Tags issues
// @Produce json
// @Security BearerAuth
// @Param wsId path string true "Workspace ID"
// @Param teamId path string true "Team ID"
// @Param identifier path string true "Issue identifier, e.g. ENG-42"
// @Success 200 {object} DataResponse{data=domain.Issue}
// @Failure 404 {object} ErrorResponse
// @Router /workspaces/{wsId}/teams/{teamId}/issues/{identifier} [get]
func (h *IssueHandler) GetIssue(c echo.Context) error {
	access, err := h.guard.Team(c)
	if err != nil {
		return RespondError(c, err)
	}
	identifier, err := identifierParam(c)
	if err != nil {
		return RespondError(c, err)
	}

	issue, err := h.issueService.GetIssue(c.Request().Context(), access, identifier)
	if err != nil {
		return RespondError(c, err)
	}
	return respondData(c, http.StatusOK, issue)
}

// UpdateIssue godoc
// @Summary Update an issue
// @Tags issues
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param wsId path string true "Workspace ID"
// @Param teamId path string true "Team ID"
// @Param identifier path string true "Issue identifier"
// @Param request body UpdateIssueRequest true "Fields to change"
// @Success 200 {object} DataResponse{data=domain.Issue}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /workspaces/{wsId}/teams/{teamId}/issues/{identifier} [patch]
func (h *IssueHandler) UpdateIssue(c echo.Context) error {
	access, err := h.guard.Team(c)
	if err != nil {
		return RespondError(c, err)
	}
	identifier, err := identifierParam(c)
	if err != nil {
		return RespondError(c, err)
	}

	var req UpdateIssueRequest
	if err := c.Bind(&req); err != nil {
		return RespondError(c, invalidBody())
	}

	input := service.UpdateIssueInput{
		Title:           req.Title,
		Description:     req.Description,
		WorkflowStateID: req.WorkflowStateID,
		Priority:        req.Priority,
		AssigneeID:      req.AssigneeID,
		Estimate:        req.Estimate,
		SortOrder:       req.SortOrder,
	}
	if req.DueDate.Set {
		if req.DueDate.Value == nil || *req.DueDate.Value == "" {
			input.DueDate = domain.Null[time.Time]()
		} else {
			due, err := parseDueDate(*req.DueDate.Value)
			if err != nil {
				return RespondError(c, invalidDueDate())
			}
			input.DueDate = domain.Some(due)
		}
	}

	issue, err := h.issueService.UpdateIssue(c.Request().Context(), access, identifier, input)
	if err != nil {
		return RespondError(c, err)
	}
	return respondData(c, http.StatusOK, issue)
}

// DeleteIssue godoc
// @Summary Delete an issue
// @Description Removes its comments, label links and attachments
// @Tags issues
// @Security BearerAuth
// @Param wsId path string true "Workspace ID"
// @Param teamId path string true "Team ID"
// @Param identifier path string true "Issue identifier"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /workspaces/{wsId}/teams/{teamId}/issues/{identifier} [delete]
func (h *IssueHandler) DeleteIssue(c echo.Context) error {
	access, err := h.guard.Team(c)
	if err != nil {
		return RespondError(c, err)
	}
	identifier, err := identifierParam(c)
	if err != nil {
		return RespondError(c, err)
	}

	if err := h.issueService.DeleteIssue(c.Request().Context(), access, identifier); err != nil {
		return RespondError(c, err)
	}

	log.Info().Str("team_id", access.Team.ID.String()).Str("identifier", identifier).Str("user_id", access.UserID.String()).Msg("Issue deleted")

	return c.NoContent(http.StatusNoContent)
}

// AttachLabel godoc
// @Summary Attach a label to an issue
// @Tags issues
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param wsId path string true "Workspace ID"
// @Param teamId path string true "Team ID"
// @Param identifier path string true "Issue identifier"
// @Param request body AttachLabelRequest true "Label"
// @Success 201 {object} DataResponse{data=domain.Issue}
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /workspaces/{wsId}/teams/{teamId}/issues/{identifier}/labels [post]
func (h *IssueHandler) AttachLabel(c echo.Context) error {
	access, err := h.guard.Team(c)
	if err != nil {
		return RespondError(c, err)
	}
	identifier, err := identifierParam(c)
	if err != nil {
		return RespondError(c, err)
	}

	var req AttachLabelRequest
	if err := c.Bind(&req); err != nil {
		return RespondError(c, invalidBody())
	}

	ctx := c.Request().Context()
	if err := h.issueService.AttachLabel(ctx, access, identifier, req.LabelID); err != nil {
		return RespondError(c, err)
	}

	issue, err := h.issueService.GetIssue(ctx, access, identifier)
	if err != nil {
		return RespondError(c, err)
	}
	return respondData(c, http.StatusCreated, issue)
}

// DetachLabel godoc
// @Summary Remove a label from an issue
// @Tags issues
// @Security BearerAuth
// @Param wsId path string true "Workspace ID"
// @Param teamId path string true "Team ID"
// @Param identifier path string true "Issue identifier"
// @Param labelId path string true "Label ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /workspaces/{wsId}/teams/{teamId}/issues/{identifier}/labels/{labelId} [delete]
func (h *IssueHandler) DetachLabel(c echo.Context) error {
	access, err := h.guard.Team(c)
	if err != nil {
		return RespondError(c, err)
	}
	identifier, err := identifierParam(c)
	if err != nil {
		return RespondError(c, err)
	}
	labelID, err := uuidParam(c, "labelId")
	if err != nil {
		return RespondError(c, err)
	}

	if err := h.issueService.DetachLabel(c.Request().Context(), access, identifier, labelID); err != nil {
		return RespondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
