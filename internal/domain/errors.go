package domain

import (
	"errors"
	"sort"
)

// ErrorKind is the stable, machine-readable category of an AppError.
type ErrorKind string

const (
	KindNotFound     ErrorKind = "NotFoundError"
	KindValidation   ErrorKind = "ValidationError"
	KindUnauthorized ErrorKind = "UnauthorizedError"
	KindForbidden    ErrorKind = "ForbiddenError"
	KindConflict     ErrorKind = "ConflictError"
	KindInternal     ErrorKind = "InternalServerError"
)

// AppError is the single error type raised by services and repositories.
// Details carries per-field messages for validation failures.
type AppError struct {
	Kind    ErrorKind
	Message string
	Details map[string][]string
}

func (e *AppError) Error() string {
	return e.Message
}

// Is matches on Kind, and on Message too when the target carries one.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Message == "" || t.Message == e.Message
}

// Domain errors
var (
	ErrNotFound     = &AppError{Kind: KindNotFound}
	ErrValidation   = &AppError{Kind: KindValidation}
	ErrUnauthorized = &AppError{Kind: KindUnauthorized}
	ErrForbidden    = &AppError{Kind: KindForbidden}
	ErrConflict     = &AppError{Kind: KindConflict}
)

// User-visible messages shared between layers
const (
	MsgNotWorkspaceMember      = "Not a member of this workspace"
	MsgInsufficientPermissions = "Insufficient permissions"
	MsgNoBacklogState          = "No backlog workflow state found for this team"
	MsgInvalidTeamIdentifier   = "Identifier must be 2-5 uppercase letters"
	MsgDuplicateTeamIdentifier = "Identifier already exists in this workspace"
	MsgDuplicateTeamMember     = "User is already a member of this team"
	MsgTargetNotInWorkspace    = "User is not a member of this workspace"
	MsgDuplicateWorkspaceUser  = "User is already a member"
	MsgDuplicateLabelName      = "Label with this name already exists in workspace"
	MsgDuplicateStateName      = "A workflow state with this name already exists in this team"
	MsgStateInUse              = "Workflow state is in use by issues"
	MsgLabelAlreadyAttached    = "Label is already attached to this issue"
	MsgCommentEditForbidden    = "Only the author can edit this comment"
	MsgCommentDeleteForbidden  = "Only the author can delete this comment"
	MsgValidationFailed        = "Validation failed"
	MsgInvalidQuery            = "Invalid query parameters"
)

// NotFound reports a missing resource as "<resource> not found".
func NotFound(resource string) *AppError {
	return &AppError{Kind: KindNotFound, Message: resource + " not found"}
}

// Validation reports malformed input or an unsatisfiable business rule.
func Validation(message string, details map[string][]string) *AppError {
	return &AppError{Kind: KindValidation, Message: message, Details: details}
}

// Unauthorized reports a missing or invalid session.
func Unauthorized(message string) *AppError {
	if message == "" {
		message = "Unauthorized"
	}
	return &AppError{Kind: KindUnauthorized, Message: message}
}

// Forbidden reports an authenticated caller lacking membership or role.
func Forbidden(message string) *AppError {
	if message == "" {
		message = "Forbidden"
	}
	return &AppError{Kind: KindForbidden, Message: message}
}

// Conflict reports a uniqueness violation.
func Conflict(message string) *AppError {
	return &AppError{Kind: KindConflict, Message: message}
}

// KindOf returns the kind of err, or KindInternal for anything that is not an AppError.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// FieldErrors collects per-field validation messages.
type FieldErrors map[string][]string

// Add appends a message for field.
func (f FieldErrors) Add(field, message string) {
	f[field] = append(f[field], message)
}

// Fields returns the offending field names in stable order.
func (f FieldErrors) Fields() []string {
	fields := make([]string, 0, len(f))
	for k := range f {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	return fields
}

// Err returns nil when no field failed, otherwise a ValidationError carrying the details.
func (f FieldErrors) Err(message string) error {
	if len(f) == 0 {
		return nil
	}
	return Validation(message, map[string][]string(f))
}
