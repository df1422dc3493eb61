package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiterWithConfig(10, 5) // 10 per minute, burst of 5
	defer rl.Stop()

	userID := uuid.New()
	for i := 0; i < 5; i++ {
		assert.True(t, rl.Allow(userID), "request %d should be allowed", i+1)
	}
	assert.False(t, rl.Allow(userID), "request 6 should be limited")
}

func TestRateLimiter_DifferentUsers(t *testing.T) {
	rl := NewRateLimiterWithConfig(10, 3)
	defer rl.Stop()

	user1, user2 := uuid.New(), uuid.New()
	for i := 0; i < 3; i++ {
		rl.Allow(user1)
	}
	assert.False(t, rl.Allow(user1))
	assert.True(t, rl.Allow(user2))
}

func serveLimited(rl *RateLimiter, userID uuid.UUID) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/workspaces", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != uuid.Nil {
		c.SetRequest(req.WithContext(WithUserID(req.Context(), userID)))
	}
	_ = RateLimitMiddleware(rl)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})(c)
	return rec
}

func TestRateLimitMiddleware_HeadersAndRejection(t *testing.T) {
	rl := NewRateLimiterWithConfig(60, 2)
	defer rl.Stop()
	userID := uuid.New()

	first := serveLimited(rl, userID)
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "60", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, first.Header().Get("X-RateLimit-Reset"))

	serveLimited(rl, userID)
	limited := serveLimited(rl, userID)
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "0", limited.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, limited.Header().Get("Retry-After"))

	var body errorBody
	require.NoError(t, json.Unmarshal(limited.Body.Bytes(), &body))
	assert.Equal(t, KindRateLimit, body.Error)
	assert.Equal(t, http.StatusTooManyRequests, body.StatusCode)
}

func TestRateLimitMiddleware_SkipsAnonymous(t *testing.T) {
	rl := NewRateLimiterWithConfig(60, 1)
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		rec := serveLimited(rl, uuid.Nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
	}
}
