package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// User represents an authenticated person. AuthSubject is the token subject
// that identified them on first sign-in.
type User struct {
	ID          uuid.UUID `json:"id"`
	AuthSubject string    `json:"-"`
	Email       string    `json:"email"`
	Name        *string   `json:"name"`
	Image       *string   `json:"image"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// UserSummary is the user projection embedded in member listings.
type UserSummary struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  *string   `json:"name"`
	Image *string   `json:"image"`
}

// Identity is the verified claim set of a bearer token
type Identity struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

// UserRepository defines the interface for user persistence operations
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetBySubject(ctx context.Context, subject string) (*User, error)
	// Upsert creates the user for subject or refreshes its profile fields.
	Upsert(ctx context.Context, user *User) (*User, error)
}
