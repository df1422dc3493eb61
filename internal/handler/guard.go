package handler

import (
	"github.com/dafibh/dolinear/dolinear-backend/internal/domain"
	"github.com/dafibh/dolinear/dolinear-backend/internal/middleware"
	"github.com/dafibh/dolinear/dolinear-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Guard resolves the :wsId and :teamId path parameters into an authorized
// access for the current user.
type Guard struct {
	authz *service.AuthorizationService
}

// NewGuard creates a new Guard
func NewGuard(authz *service.AuthorizationService) *Guard {
	return &Guard{authz: authz}
}

// Workspace requires membership of :wsId and, when given, one of roles
func (g *Guard) Workspace(c echo.Context, roles ...domain.Role) (*service.WorkspaceAccess, error) {
	userID, err := currentUser(c)
	if err != nil {
		return nil, err
	}
	wsID, err := uuidParam(c, "wsId")
	if err != nil {
		return nil, err
	}
	return g.authz.Authorize(c.Request().Context(), userID, wsID, roles...)
}

// Team requires membership of :wsId and that :teamId belongs to it
func (g *Guard) Team(c echo.Context, roles ...domain.Role) (*service.TeamAccess, error) {
	userID, err := currentUser(c)
	if err != nil {
		return nil, err
	}
	wsID, err := uuidParam(c, "wsId")
	if err != nil {
		return nil, err
	}
	teamID, err := uuidParam(c, "teamId")
	if err != nil {
		return nil, err
	}
	return g.authz.AuthorizeTeam(c.Request().Context(), userID, wsID, teamID, roles...)
}

func currentUser(c echo.Context) (uuid.UUID, error) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return uuid.Nil, domain.Unauthorized("Authentication required")
	}
	return userID, nil
}

func uuidParam(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, invalidField(name, "Must be a valid UUID")
	}
	return id, nil
}

func identifierParam(c echo.Context) (string, error) {
	identifier := c.Param("identifier")
	if !domain.ValidIssueIdentifier(identifier) {
		return "", invalidField("identifier", "Must look like TEAM-123")
	}
	return identifier, nil
}

func invalidField(field, message string) error {
	return domain.Validation(domain.MsgValidationFailed, map[string][]string{field: {message}})
}

func invalidBody() error {
	return domain.Validation("Invalid request body", nil)
}
