package testutil

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dafibh/dolinear/dolinear-backend/internal/domain"
	"github.com/google/uuid"
)

type issueLabelKey struct {
	issueID uuid.UUID
	labelID uuid.UUID
}

type memData struct {
	users       map[uuid.UUID]domain.User
	workspaces  map[uuid.UUID]domain.Workspace
	wsMembers   map[uuid.UUID]domain.WorkspaceMember
	teams       map[uuid.UUID]domain.Team
	teamMembers map[uuid.UUID]domain.TeamMember
	states      map[uuid.UUID]domain.WorkflowState
	labels      map[uuid.UUID]domain.Label
	issues      map[uuid.UUID]domain.Issue
	issueLabels map[issueLabelKey]time.Time
	comments    map[uuid.UUID]domain.Comment
	attachments map[uuid.UUID]domain.Attachment
}

func newMemData() *memData {
	return &memData{
		users:       map[uuid.UUID]domain.User{},
		workspaces:  map[uuid.UUID]domain.Workspace{},
		wsMembers:   map[uuid.UUID]domain.WorkspaceMember{},
		teams:       map[uuid.UUID]domain.Team{},
		teamMembers: map[uuid.UUID]domain.TeamMember{},
		states:      map[uuid.UUID]domain.WorkflowState{},
		labels:      map[uuid.UUID]domain.Label{},
		issues:      map[uuid.UUID]domain.Issue{},
		issueLabels: map[issueLabelKey]time.Time{},
		comments:    map[uuid.UUID]domain.Comment{},
		attachments: map[uuid.UUID]domain.Attachment{},
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (d *memData) clone() *memData {
	return &memData{
		users:       cloneMap(d.users),
		workspaces:  cloneMap(d.workspaces),
		wsMembers:   cloneMap(d.wsMembers),
		teams:       cloneMap(d.teams),
		teamMembers: cloneMap(d.teamMembers),
		states:      cloneMap(d.states),
		labels:      cloneMap(d.labels),
		issues:      cloneMap(d.issues),
		issueLabels: cloneMap(d.issueLabels),
		comments:    cloneMap(d.comments),
		attachments: cloneMap(d.attachments),
	}
}

// MemoryStore is an in-memory, transaction-aware implementation of every
// repository. Transactions are serialized; a failed one restores the snapshot
// taken when it began.
type MemoryStore struct {
	txMu  sync.Mutex
	mu    sync.Mutex
	data  *memData
	clock time.Time
	fail  map[string]error
	repos *domain.Repositories
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		data:  newMemData(),
		clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		fail:  map[string]error{},
	}
	s.repos = &domain.Repositories{
		Users:          &memUsers{s},
		Workspaces:     &memWorkspaces{s},
		Teams:          &memTeams{s},
		WorkflowStates: &memStates{s},
		Issues:         &memIssues{s},
		Labels:         &memLabels{s},
		Comments:       &memComments{s},
		Attachments:    &memAttachments{s},
	}
	return s
}

// Repositories returns the store's repositories
func (s *MemoryStore) Repositories() *domain.Repositories {
	return s.repos
}

// WithinTx implements domain.Transactor
func (s *MemoryStore) WithinTx(ctx context.Context, fn func(tx *domain.Repositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	if err := fn(s.repos); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// FailOn makes the named operation (for example "Issues.Insert") return err
func (s *MemoryStore) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[op] = err
}

// lock acquires the data lock and reports the injected failure for op, if any.
// The caller must unlock.
func (s *MemoryStore) lock(op string) error {
	s.mu.Lock()
	return s.fail[op]
}

func (s *MemoryStore) now() time.Time {
	s.clock = s.clock.Add(time.Millisecond)
	return s.clock
}

// AddUser seeds a user and returns it
func (s *MemoryStore) AddUser(email string) domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	u := domain.User{ID: uuid.New(), AuthSubject: "auth|" + email, Email: email, CreatedAt: now, UpdatedAt: now}
	s.data.users[u.ID] = u
	return u
}

// AddWorkspace seeds a workspace with owner as its owner member
func (s *MemoryStore) AddWorkspace(name string, owner uuid.UUID) domain.Workspace {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	ws := domain.Workspace{ID: uuid.New(), Name: name, Slug: fmt.Sprintf("ws-%s", uuid.NewString()[:8]), OwnerID: owner, CreatedAt: now, UpdatedAt: now}
	s.data.workspaces[ws.ID] = ws
	s.addMemberLocked(ws.ID, owner, domain.RoleOwner)
	return ws
}

// AddWorkspaceMember seeds a membership
func (s *MemoryStore) AddWorkspaceMember(workspaceID, userID uuid.UUID, role domain.Role) domain.WorkspaceMember {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addMemberLocked(workspaceID, userID, role)
}

func (s *MemoryStore) addMemberLocked(workspaceID, userID uuid.UUID, role domain.Role) domain.WorkspaceMember {
	now := s.now()
	m := domain.WorkspaceMember{ID: uuid.New(), WorkspaceID: workspaceID, UserID: userID, Role: role, CreatedAt: now, UpdatedAt: now}
	s.data.wsMembers[m.ID] = m
	return m
}

// AddTeam seeds a team with the default workflow states
func (s *MemoryStore) AddTeam(workspaceID uuid.UUID, name, identifier string) domain.Team {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	t := domain.Team{ID: uuid.New(), WorkspaceID: workspaceID, Name: name, Identifier: identifier, CreatedAt: now, UpdatedAt: now}
	s.data.teams[t.ID] = t
	for _, tpl := range domain.DefaultWorkflowStates {
		st := domain.WorkflowState{ID: uuid.New(), TeamID: t.ID, Name: tpl.Name, Color: tpl.Color, Type: tpl.Type, Position: tpl.Position, CreatedAt: s.now()}
		st.UpdatedAt = st.CreatedAt
		s.data.states[st.ID] = st
	}
	return t
}

// AddLabel seeds a workspace label
func (s *MemoryStore) AddLabel(workspaceID uuid.UUID, name string) domain.Label {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	l := domain.Label{ID: uuid.New(), WorkspaceID: workspaceID, Name: name, Color: "#000000", CreatedAt: now, UpdatedAt: now}
	s.data.labels[l.ID] = l
	return l
}

// Team returns the current copy of a team
func (s *MemoryStore) Team(id uuid.UUID) domain.Team {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.teams[id]
}

// States returns the team's states ordered by position
func (s *MemoryStore) States(teamID uuid.UUID) []domain.WorkflowState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statesLocked(teamID)
}

func (s *MemoryStore) statesLocked(teamID uuid.UUID) []domain.WorkflowState {
	var out []domain.WorkflowState
	for _, st := range s.data.states {
		if st.TeamID == teamID {
			out = append(out, st)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// IssueCount returns the number of stored issues
func (s *MemoryStore) IssueCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data.issues)
}

// --- users ---

type memUsers struct{ s *MemoryStore }

func (r *memUsers) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if err := r.s.lock("Users.GetByID"); err != nil {
		r.s.mu.Unlock()
		return nil, err
	}
	defer r.s.mu.Unlock()
	u, ok := r.s.data.users[id]
	if !ok {
		return nil, domain.NotFound("User")
	}
	return &u, nil
}

func (r *memUsers) GetBySubject(ctx context.Context, subject string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.data.users {
		if u.AuthSubject == subject {
			return &u, nil
		}
	}
	return nil, domain.NotFound("User")
}

func (r *memUsers) Upsert(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := r.s.lock("Users.Upsert"); err != nil {
		r.s.mu.Unlock()
		return nil, err
	}
	defer r.s.mu.Unlock()
	now := r.s.now()
	for id, u := range r.s.data.users {
		if u.AuthSubject != user.AuthSubject {
			continue
		}
		if user.Email != "" {
			u.Email = user.Email
		}
		if user.Name != nil {
			u.Name = user.Name
		}
		if user.Image != nil {
			u.Image = user.Image
		}
		u.UpdatedAt = now
		r.s.data.users[id] = u
		return &u, nil
	}
	u := *user
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.CreatedAt, u.UpdatedAt = now, now
	r.s.data.users[u.ID] = u
	return &u, nil
}

func (s *MemoryStore) userSummary(id uuid.UUID) *domain.UserSummary {
	u, ok := s.data.users[id]
	if !ok {
		return nil
	}
	return &domain.UserSummary{ID: u.ID, Email: u.Email, Name: u.Name, Image: u.Image}
}

// --- workspaces ---

type memWorkspaces struct{ s *MemoryStore }

func (r *memWorkspaces) Create(ctx context.Context, ws *domain.Workspace) (*domain.Workspace, error) {
	if err := r.s.lock("Workspaces.Create"); err != nil {
		r.s.mu.Unlock()
		return nil, err
	}
	defer r.s.mu.Unlock()
	for _, w := range r.s.data.workspaces {
		if w.Slug == ws.Slug {
			return nil, domain.Conflict("Workspace slug already exists")
		}
	}
	w := *ws
	w.CreatedAt = r.s.now()
	w.UpdatedAt = w.CreatedAt
	r.s.data.workspaces[w.ID] = w
	return &w, nil
}

func (r *memWorkspaces) GetByID(ctx context.Context, id uuid.UUID) (*domain.Workspace, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.data.workspaces[id]
	if !ok {
		return nil, domain.NotFound("Workspace")
	}
	return &w, nil
}

func (r *memWorkspaces) ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.WorkspaceWithRole, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.WorkspaceWithRole{}
	for _, m := range r.s.data.wsMembers {
		if m.UserID != userID {
			continue
		}
		if w, ok := r.s.data.workspaces[m.WorkspaceID]; ok {
			out = append(out, domain.WorkspaceWithRole{Workspace: w, Role: m.Role})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memWorkspaces) SlugExists(ctx context.Context, slug string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, w := range r.s.data.workspaces {
		if w.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (r *memWorkspaces) UpdateName(ctx context.Context, id uuid.UUID, name string) (*domain.Workspace, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.data.workspaces[id]
	if !ok {
		return nil, domain.NotFound("Workspace")
	}
	w.Name = name
	w.UpdatedAt = r.s.now()
	r.s.data.workspaces[id] = w
	return &w, nil
}

func (r *memWorkspaces) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.workspaces[id]; !ok {
		return domain.NotFound("Workspace")
	}
	delete(r.s.data.workspaces, id)
	for mid, m := range r.s.data.wsMembers {
		if m.WorkspaceID == id {
			delete(r.s.data.wsMembers, mid)
		}
	}
	for tid, t := range r.s.data.teams {
		if t.WorkspaceID == id {
			r.s.deleteTeamLocked(tid)
		}
	}
	for lid, l := range r.s.data.labels {
		if l.WorkspaceID == id {
			r.s.deleteLabelLocked(lid)
		}
	}
	return nil
}

func (r *memWorkspaces) AddMember(ctx context.Context, member *domain.WorkspaceMember) (*domain.WorkspaceMember, error) {
	if err := r.s.lock("Workspaces.AddMember"); err != nil {
		r.s.mu.Unlock()
		return nil, err
	}
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.users[member.UserID]; !ok {
		return nil, domain.NotFound("User")
	}
	for _, m := range r.s.data.wsMembers {
		if m.WorkspaceID == member.WorkspaceID && m.UserID == member.UserID {
			return nil, domain.Conflict(domain.MsgDuplicateWorkspaceUser)
		}
	}
	m := *member
	m.CreatedAt = r.s.now()
	m.UpdatedAt = m.CreatedAt
	r.s.data.wsMembers[m.ID] = m
	return &m, nil
}

func (r *memWorkspaces) GetMember(ctx context.Context, workspaceID, userID uuid.UUID) (*domain.WorkspaceMember, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.data.wsMembers {
		if m.WorkspaceID == workspaceID && m.UserID == userID {
			return &m, nil
		}
	}
	return nil, domain.NotFound("Workspace member")
}

func (r *memWorkspaces) ListMembers(ctx context.Context, workspaceID uuid.UUID) ([]domain.WorkspaceMember, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.WorkspaceMember{}
	for _, m := range r.s.data.wsMembers {
		if m.WorkspaceID == workspaceID {
			m.User = r.s.userSummary(m.UserID)
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// --- teams ---

type memTeams struct{ s *MemoryStore }

func (r *memTeams) Create(ctx context.Context, team *domain.Team) (*domain.Team, error) {
	if err := r.s.lock("Teams.Create"); err != nil {
		r.s.mu.Unlock()
		return nil, err
	}
	defer r.s.mu.Unlock()
	for _, t := range r.s.data.teams {
		if t.WorkspaceID == team.WorkspaceID && t.Identifier == team.Identifier {
			return nil, domain.Conflict(domain.MsgDuplicateTeamIdentifier)
		}
	}
	t := *team
	t.IssueCounter = 0
	t.CreatedAt = r.s.now()
	t.UpdatedAt = t.CreatedAt
	r.s.data.teams[t.ID] = t
	return &t, nil
}

func (r *memTeams) GetInWorkspace(ctx context.Context, workspaceID, teamID uuid.UUID) (*domain.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.data.teams[teamID]
	if !ok || t.WorkspaceID != workspaceID {
		return nil, domain.NotFound("Team")
	}
	return &t, nil
}

func (r *memTeams) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]domain.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.Team{}
	for _, t := range r.s.data.teams {
		if t.WorkspaceID == workspaceID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memTeams) ListAll(ctx context.Context) ([]domain.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.Team{}
	for _, t := range r.s.data.teams {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memTeams) UpdateName(ctx context.Context, id uuid.UUID, name string) (*domain.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.data.teams[id]
	if !ok {
		return nil, domain.NotFound("Team")
	}
	t.Name = name
	t.UpdatedAt = r.s.now()
	r.s.data.teams[id] = t
	return &t, nil
}

func (r *memTeams) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.teams[id]; !ok {
		return domain.NotFound("Team")
	}
	r.s.deleteTeamLocked(id)
	return nil
}

func (s *MemoryStore) deleteTeamLocked(id uuid.UUID) {
	delete(s.data.teams, id)
	for mid, m := range s.data.teamMembers {
		if m.TeamID == id {
			delete(s.data.teamMembers, mid)
		}
	}
	for iid, i := range s.data.issues {
		if i.TeamID == id {
			s.deleteIssueLocked(iid)
		}
	}
	for sid, st := range s.data.states {
		if st.TeamID == id {
			delete(s.data.states, sid)
		}
	}
}

func (r *memTeams) IncrementIssueCounter(ctx context.Context, teamID uuid.UUID) (int, string, error) {
	if err := r.s.lock("Teams.IncrementIssueCounter"); err != nil {
		r.s.mu.Unlock()
		return 0, "", err
	}
	defer r.s.mu.Unlock()
	t, ok := r.s.data.teams[teamID]
	if !ok {
		return 0, "", domain.NotFound("Team")
	}
	t.IssueCounter++
	t.UpdatedAt = r.s.now()
	r.s.data.teams[teamID] = t
	return t.IssueCounter, t.Identifier, nil
}

func (r *memTeams) AddMember(ctx context.Context, member *domain.TeamMember) (*domain.TeamMember, error) {
	if err := r.s.lock("Teams.AddMember"); err != nil {
		r.s.mu.Unlock()
		return nil, err
	}
	defer r.s.mu.Unlock()
	for _, m := range r.s.data.teamMembers {
		if m.TeamID == member.TeamID && m.UserID == member.UserID {
			return nil, domain.Conflict(domain.MsgDuplicateTeamMember)
		}
	}
	m := *member
	m.CreatedAt = r.s.now()
	r.s.data.teamMembers[m.ID] = m
	return &m, nil
}

func (r *memTeams) ListMembers(ctx context.Context, teamID uuid.UUID) ([]domain.TeamMember, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.TeamMember{}
	for _, m := range r.s.data.teamMembers {
		if m.TeamID == teamID {
			m.User = r.s.userSummary(m.UserID)
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// --- workflow states ---

type memStates struct{ s *MemoryStore }

func (r *memStates) GetForTeam(ctx context.Context, teamID, stateID uuid.UUID) (*domain.WorkflowState, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st, ok := r.s.data.states[stateID]
	if !ok || st.TeamID != teamID {
		return nil, domain.NotFound("Workflow state")
	}
	return &st, nil
}

func (r *memStates) FirstOfType(ctx context.Context, teamID uuid.UUID, t domain.StateType) (*domain.WorkflowState, error) {
	if err := r.s.lock("WorkflowStates.FirstOfType"); err != nil {
		r.s.mu.Unlock()
		return nil, err
	}
	defer r.s.mu.Unlock()
	for _, st := range r.s.statesLocked(teamID) {
		if st.Type == t {
			return &st, nil
		}
	}
	return nil, domain.NotFound("Workflow state")
}

func (r *memStates) insertLocked(st domain.WorkflowState) (*domain.WorkflowState, error) {
	for _, existing := range r.s.data.states {
		if existing.TeamID == st.TeamID && existing.Name == st.Name {
			return nil, domain.Conflict(domain.MsgDuplicateStateName)
		}
	}
	st.CreatedAt = r.s.now()
	st.UpdatedAt = st.CreatedAt
	r.s.data.states[st.ID] = st
	return &st, nil
}

func (r *memStates) CreateMany(ctx context.Context, states []domain.WorkflowState) error {
	if err := r.s.lock("WorkflowStates.CreateMany"); err != nil {
		r.s.mu.Unlock()
		return err
	}
	defer r.s.mu.Unlock()
	for _, st := range states {
		if _, err := r.insertLocked(st); err != nil {
			return err
		}
	}
	return nil
}

func (r *memStates) Create(ctx context.Context, state *domain.WorkflowState) (*domain.WorkflowState, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.insertLocked(*state)
}

func (r *memStates) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]domain.WorkflowState, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := r.s.statesLocked(teamID)
	if out == nil {
		out = []domain.WorkflowState{}
	}
	return out, nil
}

func (r *memStates) IDsByType(ctx context.Context, teamID uuid.UUID, t domain.StateType) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ids := []uuid.UUID{}
	for _, st := range r.s.statesLocked(teamID) {
		if st.Type == t {
			ids = append(ids, st.ID)
		}
	}
	return ids, nil
}

func (r *memStates) Update(ctx context.Context, state *domain.WorkflowState) (*domain.WorkflowState, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.data.states[state.ID]
	if !ok {
		return nil, domain.NotFound("Workflow state")
	}
	for _, other := range r.s.data.states {
		if other.ID != state.ID && other.TeamID == state.TeamID && other.Name == state.Name {
			return nil, domain.Conflict(domain.MsgDuplicateStateName)
		}
	}
	st := *state
	st.CreatedAt = existing.CreatedAt
	st.UpdatedAt = r.s.now()
	r.s.data.states[st.ID] = st
	return &st, nil
}

func (r *memStates) Delete(ctx context.Context, teamID, stateID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st, ok := r.s.data.states[stateID]
	if !ok || st.TeamID != teamID {
		return domain.NotFound("Workflow state")
	}
	for _, i := range r.s.data.issues {
		if i.WorkflowStateID == stateID {
			return domain.Conflict(domain.MsgStateInUse)
		}
	}
	delete(r.s.data.states, stateID)
	return nil
}

// --- labels ---

type memLabels struct{ s *MemoryStore }

func (r *memLabels) Create(ctx context.Context, label *domain.Label) (*domain.Label, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, l := range r.s.data.labels {
		if l.WorkspaceID == label.WorkspaceID && l.Name == label.Name {
			return nil, domain.Conflict(domain.MsgDuplicateLabelName)
		}
	}
	l := *label
	l.CreatedAt = r.s.now()
	l.UpdatedAt = l.CreatedAt
	r.s.data.labels[l.ID] = l
	return &l, nil
}

func (r *memLabels) GetInWorkspace(ctx context.Context, workspaceID, labelID uuid.UUID) (*domain.Label, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.data.labels[labelID]
	if !ok || l.WorkspaceID != workspaceID {
		return nil, domain.NotFound("Label")
	}
	return &l, nil
}

func (r *memLabels) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]domain.Label, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.Label{}
	for _, l := range r.s.data.labels {
		if l.WorkspaceID == workspaceID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memLabels) CountInWorkspace(ctx context.Context, workspaceID uuid.UUID, ids []uuid.UUID) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	seen := map[uuid.UUID]struct{}{}
	for _, id := range ids {
		if l, ok := r.s.data.labels[id]; ok && l.WorkspaceID == workspaceID {
			seen[id] = struct{}{}
		}
	}
	return len(seen), nil
}

func (r *memLabels) Update(ctx context.Context, label *domain.Label) (*domain.Label, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.data.labels[label.ID]
	if !ok {
		return nil, domain.NotFound("Label")
	}
	for _, other := range r.s.data.labels {
		if other.ID != label.ID && other.WorkspaceID == label.WorkspaceID && other.Name == label.Name {
			return nil, domain.Conflict(domain.MsgDuplicateLabelName)
		}
	}
	l := *label
	l.CreatedAt = existing.CreatedAt
	l.UpdatedAt = r.s.now()
	r.s.data.labels[l.ID] = l
	return &l, nil
}

func (r *memLabels) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.labels[id]; !ok {
		return domain.NotFound("Label")
	}
	r.s.deleteLabelLocked(id)
	return nil
}

func (s *MemoryStore) deleteLabelLocked(id uuid.UUID) {
	delete(s.data.labels, id)
	for k := range s.data.issueLabels {
		if k.labelID == id {
			delete(s.data.issueLabels, k)
		}
	}
}

// --- issues ---

type memIssues struct{ s *MemoryStore }

func (r *memIssues) Insert(ctx context.Context, issue *domain.Issue) (*domain.Issue, error) {
	if err := r.s.lock("Issues.Insert"); err != nil {
		r.s.mu.Unlock()
		return nil, err
	}
	defer r.s.mu.Unlock()
	for _, i := range r.s.data.issues {
		if i.Identifier == issue.Identifier || (i.TeamID == issue.TeamID && i.Number == issue.Number) {
			return nil, domain.Conflict("Issue identifier already exists")
		}
	}
	i := *issue
	i.Labels = nil
	i.CreatedAt = r.s.now()
	i.UpdatedAt = i.CreatedAt
	r.s.data.issues[i.ID] = i
	return &i, nil
}

func (r *memIssues) MinSortOrder(ctx context.Context, teamID uuid.UUID) (float64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var lowest float64
	first := true
	for _, i := range r.s.data.issues {
		if i.TeamID != teamID {
			continue
		}
		if first || i.SortOrder < lowest {
			lowest = i.SortOrder
			first = false
		}
	}
	return lowest, nil
}

func (r *memIssues) GetByID(ctx context.Context, id uuid.UUID) (*domain.Issue, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i, ok := r.s.data.issues[id]
	if !ok {
		return nil, domain.NotFound("Issue")
	}
	return &i, nil
}

func (r *memIssues) GetInTeam(ctx context.Context, teamID, issueID uuid.UUID) (*domain.Issue, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i, ok := r.s.data.issues[issueID]
	if !ok || i.TeamID != teamID {
		return nil, domain.NotFound("Issue")
	}
	return &i, nil
}

func (r *memIssues) GetByIdentifier(ctx context.Context, teamID uuid.UUID, identifier string) (*domain.Issue, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, i := range r.s.data.issues {
		if i.TeamID == teamID && i.Identifier == identifier {
			return &i, nil
		}
	}
	return nil, domain.NotFound("Issue")
}

func (r *memIssues) Update(ctx context.Context, issue *domain.Issue) (*domain.Issue, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.data.issues[issue.ID]
	if !ok {
		return nil, domain.NotFound("Issue")
	}
	i := *issue
	i.Labels = nil
	i.Number, i.Identifier, i.TeamID, i.CreatorID = existing.Number, existing.Identifier, existing.TeamID, existing.CreatorID
	i.CreatedAt = existing.CreatedAt
	i.UpdatedAt = r.s.now()
	r.s.data.issues[i.ID] = i
	return &i, nil
}

func (r *memIssues) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.issues[id]; !ok {
		return domain.NotFound("Issue")
	}
	r.s.deleteIssueLocked(id)
	return nil
}

func (s *MemoryStore) deleteIssueLocked(id uuid.UUID) {
	delete(s.data.issues, id)
	for k := range s.data.issueLabels {
		if k.issueID == id {
			delete(s.data.issueLabels, k)
		}
	}
	for cid, c := range s.data.comments {
		if c.IssueID == id {
			delete(s.data.comments, cid)
		}
	}
	for aid, a := range s.data.attachments {
		if a.IssueID == id {
			delete(s.data.attachments, aid)
		}
	}
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func (s *MemoryStore) matchLocked(pred domain.IssuePredicate) []domain.Issue {
	var out []domain.Issue
	for _, i := range s.data.issues {
		if i.TeamID != pred.TeamID {
			continue
		}
		if pred.WorkflowStateID != nil && i.WorkflowStateID != *pred.WorkflowStateID {
			continue
		}
		if pred.WorkflowStateIDs != nil && !containsID(pred.WorkflowStateIDs, i.WorkflowStateID) {
			continue
		}
		if pred.Priority != nil && i.Priority != *pred.Priority {
			continue
		}
		if pred.AssigneeID != nil && (i.AssigneeID == nil || *i.AssigneeID != *pred.AssigneeID) {
			continue
		}
		if pred.IssueIDs != nil && !containsID(pred.IssueIDs, i.ID) {
			continue
		}
		out = append(out, i)
	}
	return out
}

// compareIssues orders like PostgreSQL: NULL due dates sort last ascending and first descending
func compareIssues(a, b domain.Issue, field domain.IssueSortField) int {
	switch field {
	case domain.SortByCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	case domain.SortByPriority:
		return a.Priority - b.Priority
	case domain.SortByDueDate:
		switch {
		case a.DueDate == nil && b.DueDate == nil:
			return 0
		case a.DueDate == nil:
			return 1
		case b.DueDate == nil:
			return -1
		}
		return a.DueDate.Compare(*b.DueDate)
	default:
		switch {
		case a.SortOrder < b.SortOrder:
			return -1
		case a.SortOrder > b.SortOrder:
			return 1
		}
		return 0
	}
}

func (r *memIssues) List(ctx context.Context, pred domain.IssuePredicate, srt domain.IssueSort, limit, offset int) ([]domain.Issue, error) {
	if err := r.s.lock("Issues.List"); err != nil {
		r.s.mu.Unlock()
		return nil, err
	}
	defer r.s.mu.Unlock()
	items := r.s.matchLocked(pred)
	sort.SliceStable(items, func(i, j int) bool {
		c := compareIssues(items[i], items[j], srt.Field)
		if srt.Direction == domain.SortDesc {
			c = -c
		}
		if c != 0 {
			return c < 0
		}
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return items[i].ID.String() < items[j].ID.String()
	})
	out := []domain.Issue{}
	if offset >= len(items) {
		return out, nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return append(out, items[offset:end]...), nil
}

func (r *memIssues) Count(ctx context.Context, pred domain.IssuePredicate) (int, error) {
	if err := r.s.lock("Issues.Count"); err != nil {
		r.s.mu.Unlock()
		return 0, err
	}
	defer r.s.mu.Unlock()
	return len(r.s.matchLocked(pred)), nil
}

func (r *memIssues) IssueIDsWithLabel(ctx context.Context, labelID uuid.UUID) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ids := []uuid.UUID{}
	for k := range r.s.data.issueLabels {
		if k.labelID == labelID {
			ids = append(ids, k.issueID)
		}
	}
	return ids, nil
}

func (r *memIssues) AttachLabels(ctx context.Context, issueID uuid.UUID, labelIDs []uuid.UUID) error {
	if err := r.s.lock("Issues.AttachLabels"); err != nil {
		r.s.mu.Unlock()
		return err
	}
	defer r.s.mu.Unlock()
	for _, id := range labelIDs {
		k := issueLabelKey{issueID, id}
		if _, ok := r.s.data.issueLabels[k]; !ok {
			r.s.data.issueLabels[k] = r.s.now()
		}
	}
	return nil
}

func (r *memIssues) AttachLabel(ctx context.Context, issueID, labelID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := issueLabelKey{issueID, labelID}
	if _, ok := r.s.data.issueLabels[k]; ok {
		return domain.Conflict(domain.MsgLabelAlreadyAttached)
	}
	r.s.data.issueLabels[k] = r.s.now()
	return nil
}

func (r *memIssues) DetachLabel(ctx context.Context, issueID, labelID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := issueLabelKey{issueID, labelID}
	if _, ok := r.s.data.issueLabels[k]; !ok {
		return false, nil
	}
	delete(r.s.data.issueLabels, k)
	return true, nil
}

func (r *memIssues) HasLabel(ctx context.Context, issueID, labelID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.data.issueLabels[issueLabelKey{issueID, labelID}]
	return ok, nil
}

func (r *memIssues) ListLabels(ctx context.Context, issueID uuid.UUID) ([]domain.LabelSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.LabelSummary{}
	for k := range r.s.data.issueLabels {
		if k.issueID != issueID {
			continue
		}
		if l, ok := r.s.data.labels[k.labelID]; ok {
			out = append(out, domain.LabelSummary{ID: l.ID, Name: l.Name, Color: l.Color})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// --- comments ---

type memComments struct{ s *MemoryStore }

func (r *memComments) Create(ctx context.Context, comment *domain.Comment) (*domain.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.issues[comment.IssueID]; !ok {
		return nil, domain.NotFound("Issue")
	}
	c := *comment
	c.CreatedAt = r.s.now()
	c.UpdatedAt = c.CreatedAt
	r.s.data.comments[c.ID] = c
	return &c, nil
}

func (r *memComments) GetForIssue(ctx context.Context, issueID, commentID uuid.UUID) (*domain.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.data.comments[commentID]
	if !ok || c.IssueID != issueID {
		return nil, domain.NotFound("Comment")
	}
	return &c, nil
}

func (r *memComments) ListByIssue(ctx context.Context, issueID uuid.UUID) ([]domain.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.Comment{}
	for _, c := range r.s.data.comments {
		if c.IssueID == issueID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memComments) UpdateBody(ctx context.Context, id uuid.UUID, body string) (*domain.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.data.comments[id]
	if !ok {
		return nil, domain.NotFound("Comment")
	}
	c.Body = body
	c.UpdatedAt = r.s.now()
	r.s.data.comments[id] = c
	return &c, nil
}

func (r *memComments) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.comments[id]; !ok {
		return domain.NotFound("Comment")
	}
	delete(r.s.data.comments, id)
	return nil
}

// --- attachments ---

type memAttachments struct{ s *MemoryStore }

func (r *memAttachments) Create(ctx context.Context, a *domain.Attachment) (*domain.Attachment, error) {
	if err := r.s.lock("Attachments.Create"); err != nil {
		r.s.mu.Unlock()
		return nil, err
	}
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.issues[a.IssueID]; !ok {
		return nil, domain.NotFound("Issue")
	}
	out := *a
	out.CreatedAt = r.s.now()
	r.s.data.attachments[out.ID] = out
	return &out, nil
}

func (r *memAttachments) GetForIssue(ctx context.Context, issueID, attachmentID uuid.UUID) (*domain.Attachment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.data.attachments[attachmentID]
	if !ok || a.IssueID != issueID {
		return nil, domain.NotFound("Attachment")
	}
	return &a, nil
}

func (r *memAttachments) ListByIssue(ctx context.Context, issueID uuid.UUID) ([]domain.Attachment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.Attachment{}
	for _, a := range r.s.data.attachments {
		if a.IssueID == issueID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memAttachments) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.attachments[id]; !ok {
		return domain.NotFound("Attachment")
	}
	delete(r.s.data.attachments, id)
	return nil
}

// ErrInjected is a generic failure for FailOn
var ErrInjected = errors.New("injected failure")
