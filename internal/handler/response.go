package handler

import (
	"errors"
	"net/http"

	"github.com/dafibh/dolinear/dolinear-backend/internal/domain"
	"github.com/dafibh/dolinear/dolinear-backend/internal/middleware"
	"github.com/dafibh/dolinear/dolinear-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error      string              `json:"error"`
	Message    string              `json:"message"`
	StatusCode int                 `json:"statusCode"`
	Details    map[string][]string `json:"details,omitempty"`
}

// DataResponse wraps a single payload
type DataResponse struct {
	Data interface{} `json:"data"`
}

// ListResponse wraps one page of a listing
type ListResponse struct {
	Data     interface{} `json:"data"`
	Total    int         `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"pageSize"`
	HasMore  bool        `json:"hasMore"`
}

// Kind strings that have no AppError counterpart
const (
	KindServiceUnavailable = "ServiceUnavailable"
	KindMethodNotAllowed   = "MethodNotAllowed"
)

const msgInternal = "Internal server error"

var kindStatus = map[domain.ErrorKind]int{
	domain.KindNotFound:     http.StatusNotFound,
	domain.KindValidation:   http.StatusBadRequest,
	domain.KindUnauthorized: http.StatusUnauthorized,
	domain.KindForbidden:    http.StatusForbidden,
	domain.KindConflict:     http.StatusConflict,
	domain.KindInternal:     http.StatusInternalServerError,
}

func respondData(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, DataResponse{Data: data})
}

func writeError(c echo.Context, status int, kind, message string, details map[string][]string) error {
	return c.JSON(status, ErrorResponse{
		Error:      kind,
		Message:    message,
		StatusCode: status,
		Details:    details,
	})
}

// NewValidationError creates a validation error response
func NewValidationError(c echo.Context, message string, details map[string][]string) error {
	return writeError(c, http.StatusBadRequest, string(domain.KindValidation), message, details)
}

// RespondError maps err onto the error envelope. Anything that is not an
// AppError is logged and reported as an internal error.
func RespondError(c echo.Context, err error) error {
	if errors.Is(err, service.ErrStorageNotConfigured) {
		return writeError(c, http.StatusServiceUnavailable, KindServiceUnavailable, "Attachment storage is not configured", nil)
	}

	var appErr *domain.AppError
	if errors.As(err, &appErr) && appErr.Kind != domain.KindInternal {
		return writeError(c, kindStatus[appErr.Kind], string(appErr.Kind), appErr.Message, appErr.Details)
	}

	log.Error().Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("user_id", middleware.GetUserID(c).String()).
		Msg("Request failed")
	return writeError(c, http.StatusInternalServerError, string(domain.KindInternal), msgInternal, nil)
}

// HTTPErrorHandler routes errors that escape handlers, including echo's own
// 404/405 and recovered panics, through the error envelope.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if !errors.As(err, &he) {
		_ = RespondError(c, err)
		return
	}

	message := http.StatusText(he.Code)
	if m, ok := he.Message.(string); ok && m != "" {
		message = m
	}

	kind := string(domain.KindInternal)
	switch he.Code {
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge, http.StatusUnsupportedMediaType:
		kind = string(domain.KindValidation)
	case http.StatusUnauthorized:
		kind = string(domain.KindUnauthorized)
	case http.StatusForbidden:
		kind = string(domain.KindForbidden)
	case http.StatusNotFound:
		kind = string(domain.KindNotFound)
	case http.StatusMethodNotAllowed:
		kind = KindMethodNotAllowed
	case http.StatusConflict:
		kind = string(domain.KindConflict)
	case http.StatusTooManyRequests:
		kind = middleware.KindRateLimit
	case http.StatusServiceUnavailable:
		kind = KindServiceUnavailable
	}
	if he.Code >= http.StatusInternalServerError && he.Code != http.StatusServiceUnavailable {
		log.Error().Err(err).Str("path", c.Request().URL.Path).Msg("Unhandled server error")
		message = msgInternal
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(he.Code)
		return
	}
	_ = writeError(c, he.Code, kind, message, nil)
}
