package service

import (
	"context"
	"testing"

	"github.com/dafibh/dolinear/dolinear-backend/internal/domain"
	"github.com/dafibh/dolinear/dolinear-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTeamFixture(t *testing.T) (*testutil.MemoryStore, *TeamService, *WorkspaceAccess) {
	t.Helper()
	store := testutil.NewMemoryStore()
	owner := store.AddUser("owner@example.com")
	ws := store.AddWorkspace("Acme", owner.ID)
	access, err := NewAuthorizationService(store.Repositories().Workspaces, store.Repositories().Teams).
		Authorize(context.Background(), owner.ID, ws.ID)
	require.NoError(t, err)
	svc := NewTeamService(store, store.Repositories().Teams, store.Repositories().Workspaces)
	return store, svc, access
}

func TestCreateTeam_SeedsDefaultStatesAndMembership(t *testing.T) {
	store, svc, access := newTeamFixture(t)
	ctx := context.Background()

	team, err := svc.CreateTeam(ctx, access, CreateTeamInput{Name: "Engineering", Identifier: "ENG"})
	require.NoError(t, err)
	assert.Equal(t, 0, team.IssueCounter)

	states := store.States(team.ID)
	require.Len(t, states, 6)
	names := make([]string, len(states))
	for i, st := range states {
		names[i] = st.Name
		assert.Equal(t, i, st.Position)
	}
	assert.Equal(t, []string{"Backlog", "Todo", "In Progress", "In Review", "Done", "Canceled"}, names)
	assert.Equal(t, domain.StateTypeBacklog, states[0].Type)

	members, err := svc.ListMembers(ctx, &TeamAccess{WorkspaceAccess: *access, Team: team})
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, access.UserID, members[0].UserID)
}

func TestCreateTeam_Identifier(t *testing.T) {
	_, svc, access := newTeamFixture(t)
	ctx := context.Background()

	for _, bad := range []string{"E", "ENGINE", "eng", "EN1"} {
		_, err := svc.CreateTeam(ctx, access, CreateTeamInput{Name: "x", Identifier: bad})
		assert.ErrorIs(t, err, domain.ErrValidation, bad)
		assert.Equal(t, domain.MsgInvalidTeamIdentifier, err.Error(), bad)
	}

	_, err := svc.CreateTeam(ctx, access, CreateTeamInput{Name: "Eng", Identifier: "ENG"})
	require.NoError(t, err)
	_, err = svc.CreateTeam(ctx, access, CreateTeamInput{Name: "Eng 2", Identifier: "ENG"})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, domain.MsgDuplicateTeamIdentifier, err.Error())
}

func TestCreateTeam_SeedFailureRollsBack(t *testing.T) {
	store, svc, access := newTeamFixture(t)
	store.FailOn("WorkflowStates.CreateMany", testutil.ErrInjected)
	ctx := context.Background()

	_, err := svc.CreateTeam(ctx, access, CreateTeamInput{Name: "Eng", Identifier: "ENG"})
	require.ErrorIs(t, err, testutil.ErrInjected)

	teams, err := svc.ListTeams(ctx, access)
	require.NoError(t, err)
	assert.Empty(t, teams)
}

func TestTeamAddMember(t *testing.T) {
	store, svc, access := newTeamFixture(t)
	ctx := context.Background()
	team, err := svc.CreateTeam(ctx, access, CreateTeamInput{Name: "Eng", Identifier: "ENG"})
	require.NoError(t, err)
	teamAccess := &TeamAccess{WorkspaceAccess: *access, Team: team}

	outsider := store.AddUser("outsider@example.com")
	_, err = svc.AddMember(ctx, teamAccess, outsider.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, domain.MsgTargetNotInWorkspace, err.Error())

	colleague := store.AddUser("colleague@example.com")
	store.AddWorkspaceMember(access.Workspace.ID, colleague.ID, domain.RoleMember)
	_, err = svc.AddMember(ctx, teamAccess, colleague.ID)
	require.NoError(t, err)

	_, err = svc.AddMember(ctx, teamAccess, colleague.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, domain.MsgDuplicateTeamMember, err.Error())
}

func TestDeleteTeam_CascadesToIssues(t *testing.T) {
	store, svc, access := newTeamFixture(t)
	ctx := context.Background()
	team, err := svc.CreateTeam(ctx, access, CreateTeamInput{Name: "Eng", Identifier: "ENG"})
	require.NoError(t, err)
	teamAccess := &TeamAccess{WorkspaceAccess: *access, Team: team}

	issues := NewIssueService(store, store.Repositories())
	_, err = issues.CreateIssue(ctx, teamAccess, CreateIssueInput{Title: "x"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTeam(ctx, teamAccess))
	assert.Equal(t, 0, store.IssueCount())
	assert.Empty(t, store.States(team.ID))
}
