package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/mealsearch/backend/internal/testhelpers"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	opts, err := redis.ParseURL(testhelpers.SetupTestRedis(t))
	require.NoError(t, err)

	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRateLimiterIsAllowed(t *testing.T) {
	rl := NewSearchRateLimiter(newTestRedis(t), 2, time.Minute)
	ctx := context.Background()

	allowed, remaining, _, err := rl.IsAllowed(ctx, "session-a")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 1, remaining)

	allowed, remaining, _, err = rl.IsAllowed(ctx, "session-a")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 0, remaining)

	allowed, _, _, err = rl.IsAllowed(ctx, "session-a")
	require.NoError(t, err)
	assert.False(t, allowed)

	// other sessions have their own budget
	allowed, _, _, err = rl.IsAllowed(ctx, "session-b")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestSessionRateLimitMiddleware(t *testing.T) {
	rl := NewSearchRateLimiter(newTestRedis(t), 1, time.Minute)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/sessions/:id/query", rl.SessionRateLimitMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusAccepted)
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/sessions/abc/query", nil))
	assert.Equal(t, http.StatusAccepted, rr.Code)
	assert.Equal(t, "1", rr.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rr.Header().Get("X-RateLimit-Remaining"))

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/sessions/abc/query", nil))
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
}

func TestSessionRateLimitMiddlewareFailsOpen(t *testing.T) {
	// nothing listens here, so every check errors out
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	defer func() { _ = client.Close() }()
	rl := NewSearchRateLimiter(client, 1, time.Minute)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/sessions/:id/query", rl.SessionRateLimitMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusAccepted)
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/sessions/abc/query", nil))
	assert.Equal(t, http.StatusAccepted, rr.Code)
	assert.Equal(t, "rate limit check failed", rr.Header().Get("X-RateLimit-Error"))
}
