package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dafibh/dolinear/dolinear-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResolver struct {
	user *domain.User
	err  error
	seen []domain.Identity
}

func (s *stubResolver) EnsureUser(ctx context.Context, id domain.Identity) (*domain.User, error) {
	s.seen = append(s.seen, id)
	if s.err != nil {
		return nil, s.err
	}
	return s.user, nil
}

func runAuth(t *testing.T, m *AuthMiddleware, header string) (*httptest.ResponseRecorder, echo.Context, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	err := m.Authenticate()(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})(c)
	require.NoError(t, err)
	return rec, c, called
}

func TestAuthenticate_ValidToken(t *testing.T) {
	hmac := NewHMACValidator("test-secret", "")
	token, err := hmac.IssueToken(domain.Identity{Subject: "local|1", Email: "a@example.com", Name: "Ada"}, time.Hour)
	require.NoError(t, err)

	user := &domain.User{ID: uuid.New()}
	resolver := &stubResolver{user: user}
	rec, c, called := runAuth(t, NewAuthMiddleware(hmac, resolver), "Bearer "+token)

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, user.ID, GetUserID(c))
	require.NotNil(t, GetIdentity(c))
	assert.Equal(t, "local|1", GetIdentity(c).Subject)
	require.Len(t, resolver.seen, 1)
	assert.Equal(t, "Ada", resolver.seen[0].Name)
}

func TestAuthenticate_Rejections(t *testing.T) {
	hmac := NewHMACValidator("test-secret", "")
	other := NewHMACValidator("other-secret", "")
	foreign, err := other.IssueToken(domain.Identity{Subject: "local|1"}, time.Hour)
	require.NoError(t, err)
	expired, err := hmac.IssueToken(domain.Identity{Subject: "local|1"}, -2*time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name    string
		header  string
		message string
	}{
		{"missing header", "", "Missing authorization header"},
		{"wrong scheme", "Basic abc", "Invalid authorization header format"},
		{"wrong secret", "Bearer " + foreign, "Invalid token"},
		{"expired", "Bearer " + expired, "Invalid token"},
		{"garbage", "Bearer not-a-jwt", "Invalid token"},
	}

	m := NewAuthMiddleware(hmac, &stubResolver{user: &domain.User{ID: uuid.New()}})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _, called := runAuth(t, m, tt.header)

			assert.False(t, called)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)

			var body errorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "UnauthorizedError", body.Error)
			assert.Equal(t, tt.message, body.Message)
			assert.Equal(t, http.StatusUnauthorized, body.StatusCode)
		})
	}
}

func TestAuthenticate_ResolverFailurePropagates(t *testing.T) {
	hmac := NewHMACValidator("test-secret", "")
	token, err := hmac.IssueToken(domain.Identity{Subject: "local|1"}, time.Hour)
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	c := e.NewContext(req, httptest.NewRecorder())

	boom := errors.New("db down")
	m := NewAuthMiddleware(hmac, &stubResolver{err: boom})
	err = m.Authenticate()(func(c echo.Context) error { return nil })(c)

	assert.ErrorIs(t, err, boom)
}

func TestGetUserID_Absent(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	assert.Equal(t, uuid.Nil, GetUserID(c))
	assert.Nil(t, GetIdentity(c))
}
