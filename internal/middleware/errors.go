package middleware

import (
	"net/http"

	"github.com/dafibh/dolinear/dolinear-backend/internal/domain"
	"github.com/labstack/echo/v4"
)

// KindRateLimit is the error kind written when a caller exceeds its request budget
const KindRateLimit = "RateLimitError"

// errorBody mirrors the API error envelope for responses written before a handler runs
type errorBody struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

func writeError(c echo.Context, status int, kind, message string) error {
	return c.JSON(status, errorBody{Error: kind, Message: message, StatusCode: status})
}

// unauthorizedError creates an unauthorized error response
func unauthorizedError(c echo.Context, message string) error {
	return writeError(c, http.StatusUnauthorized, string(domain.KindUnauthorized), message)
}
