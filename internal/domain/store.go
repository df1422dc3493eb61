package domain

import (
	"context"
	"encoding/json"
)

// Repositories groups the per-entity repositories bound to one database handle,
// either the shared pool or a single transaction.
type Repositories struct {
	Users          UserRepository
	Workspaces     WorkspaceRepository
	Teams          TeamRepository
	WorkflowStates WorkflowStateRepository
	Issues         IssueRepository
	Labels         LabelRepository
	Comments       CommentRepository
	Attachments    AttachmentRepository
}

// Transactor runs fn inside one database transaction. The repositories handed
// to fn are bound to that transaction; a non-nil error from fn rolls it back.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(tx *Repositories) error) error
}

// Optional is a PATCH field. Set reports whether the key was present in the
// request; a nil Value with Set means "clear".
type Optional[T any] struct {
	Set   bool
	Value *T
}

// Some returns an Optional holding v
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: &v}
}

// Null returns an Optional that clears the field
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

// UnmarshalJSON implements json.Unmarshaler
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}
