package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dafibh/dolinear/dolinear-backend/internal/domain"
	"github.com/dafibh/dolinear/dolinear-backend/internal/middleware"
	"github.com/dafibh/dolinear/dolinear-backend/internal/repository/storage"
	"github.com/dafibh/dolinear/dolinear-backend/internal/service"
	"github.com/dafibh/dolinear/dolinear-backend/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type stubPinger struct{ err error }

func (p stubPinger) Ping(ctx context.Context) error { return p.err }

// apiFixture serves the full route table over the in-memory store. Requests
// carry HS256 tokens whose subjects match the seeded users.
type apiFixture struct {
	t       *testing.T
	e       *echo.Echo
	store   *testutil.MemoryStore
	objects *testutil.MemoryObjectStore
	tokens  *middleware.HMACValidator

	owner  domain.User
	member domain.User
	ws     domain.Workspace
	team   domain.Team
}

type fixtureOption func(*fixtureSettings)

type fixtureSettings struct {
	withStorage bool
	pingErr     error
}

func withStorage() fixtureOption {
	return func(s *fixtureSettings) { s.withStorage = true }
}

func withPingError(err error) fixtureOption {
	return func(s *fixtureSettings) { s.pingErr = err }
}

func newAPIFixture(t *testing.T, opts ...fixtureOption) *apiFixture {
	t.Helper()
	var settings fixtureSettings
	for _, opt := range opts {
		opt(&settings)
	}

	store := testutil.NewMemoryStore()
	repos := store.Repositories()

	f := &apiFixture{
		t:      t,
		store:  store,
		tokens: middleware.NewHMACValidator(testSecret, middleware.TokenIssuer),
	}
	f.owner = store.AddUser("owner@example.com")
	f.member = store.AddUser("member@example.com")
	f.ws = store.AddWorkspace("Acme", f.owner.ID)
	store.AddWorkspaceMember(f.ws.ID, f.member.ID, domain.RoleMember)
	f.team = store.AddTeam(f.ws.ID, "Engineering", "ENG")

	var objects storage.ObjectRepository
	if settings.withStorage {
		f.objects = testutil.NewMemoryObjectStore()
		objects = f.objects
	}

	userService := service.NewUserService(repos.Users)
	issueService := service.NewIssueService(store, repos)
	attachmentService := service.NewAttachmentService(repos.Attachments, repos.Issues, objects, 15*time.Minute)
	if attachmentService.IsEnabled() {
		issueService.SetAttachmentPurger(attachmentService)
	}

	guard := NewGuard(service.NewAuthorizationService(repos.Workspaces, repos.Teams))
	handlers := Handlers{
		Health:        NewHealthHandler(stubPinger{err: settings.pingErr}),
		User:          NewUserHandler(userService),
		Workspace:     NewWorkspaceHandler(service.NewWorkspaceService(store, repos.Workspaces, repos.Users), guard),
		Team:          NewTeamHandler(service.NewTeamService(store, repos.Teams, repos.Workspaces), guard),
		WorkflowState: NewWorkflowStateHandler(service.NewWorkflowStateService(store, repos.WorkflowStates, repos.Teams), guard),
		Label:         NewLabelHandler(service.NewLabelService(repos.Labels), guard),
		Issue:         NewIssueHandler(issueService, guard),
		Comment:       NewCommentHandler(service.NewCommentService(repos.Comments, repos.Issues), guard),
		Attachment:    NewAttachmentHandler(attachmentService, guard),
	}

	rl := middleware.NewRateLimiterWithConfig(6000, 1000)
	t.Cleanup(rl.Stop)

	f.e = echo.New()
	f.e.HTTPErrorHandler = HTTPErrorHandler
	RegisterRoutes(f.e, middleware.NewAuthMiddleware(f.tokens, userService), rl, handlers)
	return f
}

func (f *apiFixture) token(u domain.User) string {
	f.t.Helper()
	tok, err := f.tokens.IssueToken(domain.Identity{Subject: u.AuthSubject, Email: u.Email}, time.Hour)
	require.NoError(f.t, err)
	return tok
}

// do sends body as JSON (or as-is when it is an io.Reader) on behalf of as.
// A nil as sends no Authorization header.
func (f *apiFixture) do(method, path string, body interface{}, as *domain.User) *httptest.ResponseRecorder {
	f.t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case io.Reader:
		reader = b
	default:
		raw, err := json.Marshal(b)
		require.NoError(f.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if as != nil {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+f.token(*as))
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func (f *apiFixture) upload(path, filename string, data []byte, as domain.User) *httptest.ResponseRecorder {
	f.t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(f.t, err)
	_, err = part.Write(data)
	require.NoError(f.t, err)
	require.NoError(f.t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+f.token(as))
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func (f *apiFixture) wsPath() string {
	return "/api/v1/workspaces/" + f.ws.ID.String()
}

func (f *apiFixture) teamPath() string {
	return f.wsPath() + "/teams/" + f.team.ID.String()
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var env struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env.Data
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

var errPing = errors.New("connection refused")

func strPtr(s string) *string { return &s }

func stringsReader(s string) io.Reader { return strings.NewReader(s) }
