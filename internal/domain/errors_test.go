package domain

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
)

func TestAppErrorIs(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{"same kind", NotFound("Team"), ErrNotFound, true},
		{"wrapped", fmt.Errorf("load: %w", NotFound("Team")), ErrNotFound, true},
		{"other kind", Conflict(MsgDuplicateLabelName), ErrNotFound, false},
		{"matching message", Forbidden(MsgNotWorkspaceMember), Forbidden(MsgNotWorkspaceMember), true},
		{"different message", Forbidden(MsgNotWorkspaceMember), Forbidden(MsgInsufficientPermissions), false},
		{"plain error", errors.New("boom"), ErrNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.want {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.want)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"not found", NotFound("Issue"), KindNotFound},
		{"validation", Validation(MsgValidationFailed, nil), KindValidation},
		{"unauthorized", Unauthorized(""), KindUnauthorized},
		{"wrapped conflict", fmt.Errorf("create: %w", Conflict(MsgDuplicateTeamIdentifier)), KindConflict},
		{"unknown", errors.New("connection reset"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNotFoundMessage(t *testing.T) {
	if got := NotFound("Workflow state").Error(); got != "Workflow state not found" {
		t.Errorf("NotFound message = %q", got)
	}
}

func TestFieldErrors(t *testing.T) {
	fe := FieldErrors{}
	if err := fe.Err(MsgValidationFailed); err != nil {
		t.Fatalf("empty FieldErrors should give nil, got %v", err)
	}

	fe.Add("title", "Title is required")
	fe.Add("priority", "Priority must be between 0 and 4")
	fe.Add("title", "Title is too long")

	if got := fe.Fields(); !reflect.DeepEqual(got, []string{"priority", "title"}) {
		t.Errorf("Fields() = %v", got)
	}

	var appErr *AppError
	if !errors.As(fe.Err(MsgValidationFailed), &appErr) {
		t.Fatal("Err() should return an AppError")
	}
	if appErr.Kind != KindValidation {
		t.Errorf("Kind = %s, want %s", appErr.Kind, KindValidation)
	}
	if len(appErr.Details["title"]) != 2 {
		t.Errorf("title details = %v, want two messages", appErr.Details["title"])
	}
}
