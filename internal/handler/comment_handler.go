package handler

import (
	"net/http"

	"github.com/dafibh/dolinear/dolinear-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles issue comment HTTP requests
type CommentHandler struct {
	commentService *service.CommentService
	guard          *Guard
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentService *service.CommentService, guard *Guard) *CommentHandler {
	return &CommentHandler{commentService: commentService, guard: guard}
}

// CommentRequest is the body of comment create and update
type CommentRequest struct {
	Body string `json:"body"`
}

// CreateComment godoc
// @Summary Comment on an issue
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param wsId path string true "Workspace ID"
// @Param teamId path string true "Team ID"
// @Param issueId path string true "Issue ID"
// @Param request body CommentRequest true "Comment"
// @Success 201 {object} DataResponse{data=domain.Comment}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /workspaces/{wsId}/teams/{teamId}/issues/{issueId}/comments [post]
func (h *CommentHandler) CreateComment(c echo.Context) error {
	access, err := h.guard.Team(c)
	if err != nil {
		return RespondError(c, err)
	}
	issueID, err := uuidParam(c, "issueId")
	if err != nil {
		return RespondError(c, err)
	}

	var req CommentRequest
	if err := c.Bind(&req); err != nil {
		return RespondError(c, invalidBody())
	}

	comment, err := h.commentService.CreateComment(c.Request().Context(), access, issueID, req.Body)
	if err != nil {
		return RespondError(c, err)
	}
	return respondData(c, http.StatusCreated, comment)
}

// ListComments godoc
// @Summary List an issue's comments
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param wsId path string true "Workspace ID"
// @Param teamId path string true "Team ID"
// @Param issueId path string true "Issue ID"
// @Success 200 {object} DataResponse{data=[]domain.Comment}
// @Failure 404 {object} ErrorResponse
// @Router /workspaces/{wsId}/teams/{teamId}/issues/{issueId}/comments [get]
func (h *CommentHandler) ListComments(c echo.Context) error {
	access, err := h.guard.Team(c)
	if err != nil {
		return RespondError(c, err)
	}
	issueID, err := uuidParam(c, "issueId")
	if err != nil {
		return RespondError(c, err)
	}

	comments, err := h.commentService.ListComments(c.Request().Context(), access, issueID)
	if err != nil {
		return RespondError(c, err)
	}
	return respondData(c, http.StatusOK, comments)
}

// UpdateComment godoc
// @Summary Edit a comment
// @Description Only the author may edit
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param wsId path string true "Workspace ID"
// @Param teamId path string true "Team ID"
// @Param issueId path string true "Issue ID"
// @Param commentId path string true "Comment ID"
// @Param request body CommentRequest true "Comment"
// @Success 200 {object} DataResponse{data=domain.Comment}
// @Failure 403 {object} ErrorResponse
// @Router /workspaces/{wsId}/teams/{teamId}/issues/{issueId}/comments/{commentId} [patch]
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	access, err := h.guard.Team(c)
	if err != nil {
		return RespondError(c, err)
	}
	issueID, err := uuidParam(c, "issueId")
	if err != nil {
		return RespondError(c, err)
	}
	commentID, err := uuidParam(c, "commentId")
	if err != nil {
		return RespondError(c, err)
	}

	var req CommentRequest
	if err := c.Bind(&req); err != nil {
		return RespondError(c, invalidBody())
	}

	comment, err := h.commentService.UpdateComment(c.Request().Context(), access, issueID, commentID, req.Body)
	if err != nil {
		return RespondError(c, err)
	}
	return respondData(c, http.StatusOK, comment)
}

// DeleteComment godoc
// @Summary Delete a comment
// @Description Only the author may delete
// @Tags comments
// @Security BearerAuth
// @Param wsId path string true "Workspace ID"
// @Param teamId path string true "Team ID"
// @Param issueId path string true "Issue ID"
// @Param commentId path string true "Comment ID"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Router /workspaces/{wsId}/teams/{teamId}/issues/{issueId}/comments/{commentId} [delete]
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	access, err := h.guard.Team(c)
	if err != nil {
		return RespondError(c, err)
	}
	issueID, err := uuidParam(c, "issueId")
	if err != nil {
		return RespondError(c, err)
	}
	commentID, err := uuidParam(c, "commentId")
	if err != nil {
		return RespondError(c, err)
	}

	if err := h.commentService.DeleteComment(c.Request().Context(), access, issueID, commentID); err != nil {
		return RespondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
