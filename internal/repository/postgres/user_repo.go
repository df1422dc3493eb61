package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/dafibh/dolinear/dolinear-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const userColumns = `id, auth_subject, email, name, image, created_at, updated_at`

// UserRepository implements domain.UserRepository using PostgreSQL
type UserRepository struct {
	db DBTX
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID retrieves a user by their UUID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetBySubject retrieves a user by the token subject they signed in with
func (r *UserRepository) GetBySubject(ctx context.Context, subject string) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE auth_subject = $1`, subject)
	return scanUser(row)
}

// Upsert inserts the user or refreshes the profile of an existing subject.
// Empty claims never overwrite stored values.
func (r *UserRepository) Upsert(ctx context.Context, user *domain.User) (*domain.User, error) {
	id := user.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (id, auth_subject, email, name, image)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (auth_subject) DO UPDATE SET
			email = COALESCE(NULLIF(EXCLUDED.email, ''), users.email),
			name = COALESCE(EXCLUDED.name, users.name),
			image = COALESCE(EXCLUDED.image, users.image),
			updated_at = NOW()
		RETURNING `+userColumns,
		id, user.AuthSubject, user.Email, user.Name, user.Image,
	)
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return u, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.AuthSubject, &u.Email, &u.Name, &u.Image, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("User")
		}
		return nil, err
	}
	return &u, nil
}
