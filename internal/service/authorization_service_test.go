package service

import (
	"context"
	"testing"

	"github.com/dafibh/dolinear/dolinear-backend/internal/domain"
	"github.com/dafibh/dolinear/dolinear-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorize(t *testing.T) {
	store := testutil.NewMemoryStore()
	owner := store.AddUser("owner@example.com")
	member := store.AddUser("member@example.com")
	outsider := store.AddUser("outsider@example.com")
	ws := store.AddWorkspace("Acme", owner.ID)
	store.AddWorkspaceMember(ws.ID, member.ID, domain.RoleMember)
	svc := NewAuthorizationService(store.Repositories().Workspaces, store.Repositories().Teams)
	ctx := context.Background()

	t.Run("member without role restriction", func(t *testing.T) {
		access, err := svc.Authorize(ctx, member.ID, ws.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleMember, access.Member.Role)
		assert.Equal(t, ws.ID, access.Workspace.ID)
	})

	t.Run("owner satisfies owner or admin", func(t *testing.T) {
		_, err := svc.Authorize(ctx, owner.ID, ws.ID, domain.RoleOwner, domain.RoleAdmin)
		assert.NoError(t, err)
	})

	t.Run("member lacks role", func(t *testing.T) {
		_, err := svc.Authorize(ctx, member.ID, ws.ID, domain.RoleOwner, domain.RoleAdmin)
		assert.ErrorIs(t, err, domain.ErrForbidden)
		assert.Equal(t, domain.MsgInsufficientPermissions, err.Error())
	})

	t.Run("non member", func(t *testing.T) {
		_, err := svc.Authorize(ctx, outsider.ID, ws.ID)
		assert.ErrorIs(t, err, domain.ErrForbidden)
		assert.Equal(t, domain.MsgNotWorkspaceMember, err.Error())
	})

	t.Run("missing workspace", func(t *testing.T) {
		_, err := svc.Authorize(ctx, owner.ID, uuid.New())
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Equal(t, "Workspace not found", err.Error())
	})
}

func TestAuthorizeTeam_TeamMustBelongToWorkspace(t *testing.T) {
	store := testutil.NewMemoryStore()
	owner := store.AddUser("owner@example.com")
	ws := store.AddWorkspace("Acme", owner.ID)
	other := store.AddWorkspace("Other", owner.ID)
	team := store.AddTeam(other.ID, "Eng", "ENG")
	svc := NewAuthorizationService(store.Repositories().Workspaces, store.Repositories().Teams)

	_, err := svc.AuthorizeTeam(context.Background(), owner.ID, ws.ID, team.ID)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, "Team not found", err.Error())
}
