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

func newWorkspaceService(store *testutil.MemoryStore) *WorkspaceService {
	return NewWorkspaceService(store, store.Repositories().Workspaces, store.Repositories().Users)
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Acme Corp":          "acme-corp",
		"  Hello,  World!! ": "hello-world",
		"--Data__Team--":     "data-team",
		"!!!":                "workspace",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestCreateWorkspace_OwnerMembershipAndUniqueSlug(t *testing.T) {
	store := testutil.NewMemoryStore()
	user := store.AddUser("owner@example.com")
	svc := newWorkspaceService(store)
	ctx := context.Background()

	first, err := svc.CreateWorkspace(ctx, user.ID, "Acme Corp")
	require.NoError(t, err)
	assert.Equal(t, "acme-corp", first.Slug)
	assert.Equal(t, user.ID, first.OwnerID)

	second, err := svc.CreateWorkspace(ctx, user.ID, "Acme  Corp")
	require.NoError(t, err)
	assert.Equal(t, "acme-corp-2", second.Slug)

	list, err := svc.ListWorkspaces(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, domain.RoleOwner, list[0].Role)
}

func TestCreateWorkspace_RollsBackWhenOwnerInsertFails(t *testing.T) {
	store := testutil.NewMemoryStore()
	user := store.AddUser("owner@example.com")
	store.FailOn("Workspaces.AddMember", testutil.ErrInjected)
	svc := newWorkspaceService(store)

	_, err := svc.CreateWorkspace(context.Background(), user.ID, "Acme")
	require.ErrorIs(t, err, testutil.ErrInjected)

	exists, err := store.Repositories().Workspaces.SlugExists(context.Background(), "acme")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCreateWorkspace_InvalidName(t *testing.T) {
	svc := newWorkspaceService(testutil.NewMemoryStore())

	_, err := svc.CreateWorkspace(context.Background(), uuid.New(), "   ")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAddMember(t *testing.T) {
	store := testutil.NewMemoryStore()
	owner := store.AddUser("owner@example.com")
	newcomer := store.AddUser("new@example.com")
	ws := store.AddWorkspace("Acme", owner.ID)
	svc := newWorkspaceService(store)
	access := &WorkspaceAccess{UserID: owner.ID, Workspace: &ws}
	ctx := context.Background()

	member, err := svc.AddMember(ctx, access, AddMemberInput{UserID: newcomer.ID, Role: domain.RoleMember})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleMember, member.Role)

	_, err = svc.AddMember(ctx, access, AddMemberInput{UserID: newcomer.ID, Role: domain.RoleAdmin})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, domain.MsgDuplicateWorkspaceUser, err.Error())

	_, err = svc.AddMember(ctx, access, AddMemberInput{UserID: uuid.New(), Role: domain.RoleMember})
	assert.Equal(t, "User not found", err.Error())

	_, err = svc.AddMember(ctx, access, AddMemberInput{UserID: newcomer.ID, Role: domain.RoleOwner})
	assert.ErrorIs(t, err, domain.ErrValidation)

	members, err := svc.ListMembers(ctx, access)
	require.NoError(t, err)
	require.Len(t, members, 2)
	require.NotNil(t, members[1].User)
	assert.Equal(t, "new@example.com", members[1].User.Email)
}
