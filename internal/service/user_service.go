package service

import (
	"context"

	"github.com/dafibh/dolinear/dolinear-backend/internal/domain"
	"github.com/google/uuid"
)

// UserService maps token identities onto user rows
type UserService struct {
	userRepo domain.UserRepository
}

// NewUserService creates a new UserService
func NewUserService(userRepo domain.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// EnsureUser returns the user for the identity's subject, creating it on first
// sign-in and refreshing its profile fields afterwards.
func (s *UserService) EnsureUser(ctx context.Context, id domain.Identity) (*domain.User, error) {
	if id.Subject == "" {
		return nil, domain.Unauthorized("Invalid token subject")
	}
	return s.userRepo.Upsert(ctx, &domain.User{
		ID:          uuid.New(),
		AuthSubject: id.Subject,
		Email:       id.Email,
		Name:        optionalString(id.Name),
		Image:       optionalString(id.Picture),
	})
}

// GetUser returns a user by id
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
