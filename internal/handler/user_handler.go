package handler

import (
	"net/http"

	"github.com/dafibh/dolinear/dolinear-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Me godoc
// @Summary Get the current user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} DataResponse{data=domain.User}
// @Failure 401 {object} ErrorResponse
// @Router /me [get]
func (h *UserHandler) Me(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return RespondError(c, err)
	}

	user, err := h.userService.GetUser(c.Request().Context(), userID)
	if err != nil {
		return RespondError(c, err)
	}
	return respondData(c, http.StatusOK, user)
}
