package handler

import (
	"github.com/dafibh/dolinear/dolinear-backend/internal/middleware"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// Handlers groups every API handler so route registration stays in one place
type Handlers struct {
	Health        *HealthHandler
	User          *UserHandler
	Workspace     *WorkspaceHandler
	Team          *TeamHandler
	WorkflowState *WorkflowStateHandler
	Label         *LabelHandler
	Issue         *IssueHandler
	Comment       *CommentHandler
	Attachment    *AttachmentHandler
}

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, rateLimiter *middleware.RateLimiter, h Handlers) {
	e.GET("/health", h.Health.Health)

	// API docs
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.GET("/openapi.json", ServeOpenAPI3Spec)

	// API version 1, authenticated and rate limited per user
	api := e.Group("/api/v1")
	api.Use(authMiddleware.Authenticate())
	api.Use(middleware.RateLimitMiddleware(rateLimiter))

	api.GET("/me", h.User.Me)

	// Workspace routes
	workspaces := api.Group("/workspaces")
	workspaces.POST("", h.Workspace.CreateWorkspace)
	workspaces.GET("", h.Workspace.ListWorkspaces)
	workspaces.GET("/:wsId", h.Workspace.GetWorkspace)
	workspaces.PATCH("/:wsId", h.Workspace.UpdateWorkspace)
	workspaces.DELETE("/:wsId", h.Workspace.DeleteWorkspace)
	workspaces.POST("/:wsId/members", h.Workspace.AddMember)
	workspaces.GET("/:wsId/members", h.Workspace.ListMembers)

	// Label routes
	labels := workspaces.Group("/:wsId/labels")
	labels.GET("", h.Label.ListLabels)
	labels.POST("", h.Label.CreateLabel)
	labels.GET("/:labelId", h.Label.GetLabel)
	labels.PATCH("/:labelId", h.Label.UpdateLabel)
	labels.DELETE("/:labelId", h.Label.DeleteLabel)

	// Team routes
	teams := workspaces.Group("/:wsId/teams")
	teams.POST("", h.Team.CreateTeam)
	teams.GET("", h.Team.ListTeams)
	teams.GET("/:teamId", h.Team.GetTeam)
	teams.PATCH("/:teamId", h.Team.UpdateTeam)
	teams.DELETE("/:teamId", h.Team.DeleteTeam)
	teams.POST("/:teamId/members", h.Team.AddMember)
	teams.GET("/:teamId/members", h.Team.ListMembers)

	// Workflow state routes
	states := teams.Group("/:teamId/states")
	states.GET("", h.WorkflowState.ListStates)
	states.POST("", h.WorkflowState.CreateState)
	states.PATCH("/:stateId", h.WorkflowState.UpdateState)
	states.DELETE("/:stateId", h.WorkflowState.DeleteState)

	// Issue routes
	issues := teams.Group("/:teamId/issues")
	issues.POST("", h.Issue.CreateIssue)
	issues.GET("", h.Issue.ListIssues)
	issues.GET("/:identifier", h.Issue.GetIssue)
	issues.PATCH("/:identifier", h.Issue.UpdateIssue)
	issues.DELETE("/:identifier", h.Issue.DeleteIssue)
	issues.POST("/:identifier/labels", h.Issue.AttachLabel)
	issues.DELETE("/:identifier/labels/:labelId", h.Issue.DetachLabel)

	// Attachment routes
	issues.POST("/:identifier/attachments", h.Attachment.UploadAttachment)
	issues.GET("/:identifier/attachments", h.Attachment.ListAttachments)
	issues.DELETE("/:identifier/attachments/:attachmentId", h.Attachment.DeleteAttachment)

	// Comment routes, addressed by internal issue id
	issues.POST("/:issueId/comments", h.Comment.CreateComment)
	issues.GET("/:issueId/comments", h.Comment.ListComments)
	issues.PATCH("/:issueId/comments/:commentId", h.Comment.UpdateComment)
	issues.DELETE("/:issueId/comments/:commentId", h.Comment.DeleteComment)
}
