package postgres

import (
	"context"
	"fmt"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		auth_subject TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL DEFAULT '',
		name TEXT,
		image TEXT,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS workspace (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		slug TEXT NOT NULL UNIQUE,
		owner_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS workspace_member (
		id UUID PRIMARY KEY,
		workspace_id UUID NOT NULL REFERENCES workspace(id) ON DELETE CASCADE,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		role TEXT NOT NULL DEFAULT 'member' CHECK (role IN ('owner', 'admin', 'member')),
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		UNIQUE(workspace_id, user_id)
	)`,

	`CREATE TABLE IF NOT EXISTS team (
		id UUID PRIMARY KEY,
		workspace_id UUID NOT NULL REFERENCES workspace(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		identifier TEXT NOT NULL,
		issue_counter INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		UNIQUE(workspace_id, identifier)
	)`,

	`CREATE TABLE IF NOT EXISTS team_member (
		id UUID PRIMARY KEY,
		team_id UUID NOT NULL REFERENCES team(id) ON DELETE CASCADE,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		UNIQUE(team_id, user_id)
	)`,

	`CREATE TABLE IF NOT EXISTS workflow_state (
		id UUID PRIMARY KEY,
		team_id UUID NOT NULL REFERENCES team(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		color TEXT NOT NULL,
		type TEXT NOT NULL CHECK (type IN ('backlog', 'unstarted', 'started', 'completed', 'cancelled')),
		position INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		UNIQUE(team_id, name)
	)`,

	`CREATE TABLE IF NOT EXISTS label (
		id UUID PRIMARY KEY,
		workspace_id UUID NOT NULL REFERENCES workspace(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		color TEXT NOT NULL,
		description TEXT,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		UNIQUE(workspace_id, name)
	)`,

	`CREATE TABLE IF NOT EXISTS issue (
		id UUID PRIMARY KEY,
		team_id UUID NOT NULL REFERENCES team(id) ON DELETE CASCADE,
		number INTEGER NOT NULL,
		identifier TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		description TEXT,
		workflow_state_id UUID NOT NULL REFERENCES workflow_state(id),
		priority INTEGER NOT NULL DEFAULT 0 CHECK (priority BETWEEN 0 AND 4),
		assignee_id UUID REFERENCES users(id) ON DELETE SET NULL,
		creator_id UUID NOT NULL REFERENCES users(id),
		due_date TIMESTAMP WITH TIME ZONE,
		estimate INTEGER CHECK (estimate >= 0),
		sort_order DOUBLE PRECISION NOT NULL DEFAULT 0,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		UNIQUE(team_id, number)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_issue_team_state ON issue(team_id, workflow_state_id)`,
	`CREATE INDEX IF NOT EXISTS idx_issue_assignee ON issue(assignee_id)`,
	`CREATE INDEX IF NOT EXISTS idx_issue_team_sort ON issue(team_id, sort_order)`,

	`CREATE TABLE IF NOT EXISTS issue_label (
		issue_id UUID NOT NULL REFERENCES issue(id) ON DELETE CASCADE,
		label_id UUID NOT NULL REFERENCES label(id) ON DELETE CASCADE,
		PRIMARY KEY (issue_id, label_id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_issue_label_label ON issue_label(label_id)`,

	`CREATE TABLE IF NOT EXISTS comment (
		id UUID PRIMARY KEY,
		issue_id UUID NOT NULL REFERENCES issue(id) ON DELETE CASCADE,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		body TEXT NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_comment_issue_created ON comment(issue_id, created_at)`,

	`CREATE TABLE IF NOT EXISTS attachment (
		id UUID PRIMARY KEY,
		issue_id UUID NOT NULL REFERENCES issue(id) ON DELETE CASCADE,
		uploader_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		filename TEXT NOT NULL,
		content_type TEXT NOT NULL,
		size_bytes BIGINT NOT NULL,
		object_key TEXT NOT NULL,
		thumbnail_key TEXT NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_attachment_issue ON attachment(issue_id, created_at)`,
}

// Migrate applies every schema statement in order. Statements are idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	for i, migration := range migrations {
		if _, err := s.pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
