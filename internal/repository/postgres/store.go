package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/dafibh/dolinear/dolinear-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is the query surface shared by a pool and a transaction
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Pool is the subset of *pgxpool.Pool the store needs. pgxmock satisfies it too.
type Pool interface {
	DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// PoolConfig configures Open
type PoolConfig struct {
	DatabaseURL      string
	MaxConns         int32
	StatementTimeout time.Duration
}

// Store owns the connection pool and hands out repositories bound to it or to a transaction
type Store struct {
	pool  Pool
	repos *domain.Repositories
}

// NewStore wraps an existing pool
func NewStore(pool Pool) *Store {
	return &Store{pool: pool, repos: newRepositories(pool)}
}

// Open connects a pgx pool, applies the statement timeout and verifies connectivity
func Open(ctx context.Context, cfg PoolConfig) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.StatementTimeout > 0 {
		poolCfg.ConnConfig.RuntimeParams["statement_timeout"] = fmt.Sprintf("%d", cfg.StatementTimeout.Milliseconds())
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return NewStore(pool), nil
}

// Repositories returns repositories bound to the pool
func (s *Store) Repositories() *domain.Repositories {
	return s.repos
}

// WithinTx implements domain.Transactor. The transaction is rolled back when fn
// fails or ctx is cancelled before commit.
func (s *Store) WithinTx(ctx context.Context, fn func(tx *domain.Repositories) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(newRepositories(tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Ping checks database connectivity
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases all pooled connections
func (s *Store) Close() {
	s.pool.Close()
}

func newRepositories(db DBTX) *domain.Repositories {
	return &domain.Repositories{
		Users:          NewUserRepository(db),
		Workspaces:     NewWorkspaceRepository(db),
		Teams:          NewTeamRepository(db),
		WorkflowStates: NewWorkflowStateRepository(db),
		Issues:         NewIssueRepository(db),
		Labels:         NewLabelRepository(db),
		Comments:       NewCommentRepository(db),
		Attachments:    NewAttachmentRepository(db),
	}
}
