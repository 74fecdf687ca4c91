package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/mealsearch/backend/internal/middleware"
	"github.com/pageza/mealsearch/backend/internal/mocks"
	"github.com/pageza/mealsearch/backend/internal/model"
	"github.com/pageza/mealsearch/backend/internal/service"
	"github.com/pageza/mealsearch/backend/internal/types"
)

func setupSearchTestRouter(t *testing.T) (*gin.Engine, *mocks.MockRecipeClient, *service.SessionRegistry) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	client := &mocks.MockRecipeClient{}
	sessions := service.NewSessionRegistry(client, time.Hour)

	router := gin.New()
	RegisterRoutes(router, sessions, client, nil)
	return router, client, sessions
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeSession(t *testing.T, w *httptest.ResponseRecorder) SessionResponse {
	t.Helper()
	var resp SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func createSession(t *testing.T, router http.Handler) string {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	return decodeSession(t, w).SessionID
}

func pastaRecipes() []types.Recipe {
	return []types.Recipe{{
		ID:           "1",
		Name:         types.StringPtr("Pasta"),
		ImageURL:     types.StringPtr("http://x/img.jpg"),
		Instructions: types.StringPtr("Boil water..."),
	}}
}

func TestHealthCheck(t *testing.T) {
	router, _, _ := setupSearchTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestCreateSession(t *testing.T) {
	router, _, sessions := setupSearchTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	resp := decodeSession(t, w)
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, model.StateEmpty, resp.Screen.Kind)
	assert.Equal(t, 1, sessions.Len())
}

func TestGetSession(t *testing.T) {
	router, _, _ := setupSearchTestRouter(t)
	id := createSession(t, router)

	w := doJSON(t, router, http.MethodGet, "/api/v1/sessions/"+id, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, decodeSession(t, w).SessionID)

	w = doJSON(t, router, http.MethodGet, "/api/v1/sessions/00000000-0000-0000-0000-000000000000", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/sessions/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteSession(t *testing.T) {
	router, _, _ := setupSearchTestRouter(t)
	id := createSession(t, router)

	w := doJSON(t, router, http.MethodDelete, "/api/v1/sessions/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/api/v1/sessions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubmitQueryBlank(t *testing.T) {
	router, client, _ := setupSearchTestRouter(t)
	id := createSession(t, router)

	w := doJSON(t, router, http.MethodPost, "/api/v1/sessions/"+id+"/query", types.SubmitQueryRequest{Query: "   "})
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, model.StateEmpty, decodeSession(t, w).Screen.Kind)

	client.AssertNotCalled(t, "SearchRecipes", mock.Anything, mock.Anything)
}

func TestSubmitQueryWait(t *testing.T) {
	router, client, _ := setupSearchTestRouter(t)
	client.On("SearchRecipes", mock.Anything, "pasta").Return(pastaRecipes(), nil)
	id := createSession(t, router)

	w := doJSON(t, router, http.MethodPost, "/api/v1/sessions/"+id+"/query?wait=true", types.SubmitQueryRequest{Query: "pasta"})
	require.Equal(t, http.StatusOK, w.Code)

	screen := decodeSession(t, w).Screen
	assert.Equal(t, model.StateSuccess, screen.Kind)
	require.Len(t, screen.Cards, 1)
	assert.Equal(t, "Pasta", screen.Cards[0].Title)
	assert.Equal(t, "Boil water...", screen.Cards[0].Snippet)
}

func TestSubmitQueryAsync(t *testing.T) {
	router, client, sessions := setupSearchTestRouter(t)
	release := make(chan time.Time)
	client.On("SearchRecipes", mock.Anything, "pasta").Return(pastaRecipes(), nil).WaitUntil(release)
	id := createSession(t, router)

	w := doJSON(t, router, http.MethodPost, "/api/v1/sessions/"+id+"/query", types.SubmitQueryRequest{Query: "pasta"})
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, model.StateLoading, decodeSession(t, w).Screen.Kind)

	close(release)
	session, err := sessions.Get(id)
	require.NoError(t, err)
	assert.Eventually(t, func() bool {
		return session.Machine.State().Kind() == model.StateSuccess
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSubmitQueryNoMatches(t *testing.T) {
	router, client, _ := setupSearchTestRouter(t)
	client.On("SearchRecipes", mock.Anything, "zzz").Return([]types.Recipe{}, nil)
	id := createSession(t, router)

	w := doJSON(t, router, http.MethodPost, "/api/v1/sessions/"+id+"/query?wait=true", types.SubmitQueryRequest{Query: "zzz"})
	require.Equal(t, http.StatusOK, w.Code)

	screen := decodeSession(t, w).Screen
	assert.Equal(t, model.StateError, screen.Kind)
	assert.Equal(t, `No meals found for "zzz"`, screen.Message)
}

func TestSubmitQueryUpstreamFailure(t *testing.T) {
	router, client, _ := setupSearchTestRouter(t)
	client.On("SearchRecipes", mock.Anything, "pasta").
		Return(nil, &service.NetworkError{Op: "search", Err: errors.New("connection refused")})
	id := createSession(t, router)

	w := doJSON(t, router, http.MethodPost, "/api/v1/sessions/"+id+"/query?wait=true", types.SubmitQueryRequest{Query: "pasta"})
	require.Equal(t, http.StatusOK, w.Code)

	screen := decodeSession(t, w).Screen
	assert.Equal(t, model.StateError, screen.Kind)
	assert.NotEmpty(t, screen.Message)
}

func TestSubmitQueryBadRequest(t *testing.T) {
	router, _, _ := setupSearchTestRouter(t)
	id := createSession(t, router)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/"+id+"/query", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/sessions/nope/query", types.SubmitQueryRequest{Query: "pasta"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// readEvent returns the data payload of the next server-sent event.
func readEvent(t *testing.T, r *bufio.Reader) string {
	t.Helper()
	var data string
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		if line == "" {
			if data != "" {
				return data
			}
			continue
		}
		if strings.HasPrefix(line, "event:") {
			assert.Equal(t, "state", strings.TrimSpace(strings.TrimPrefix(line, "event:")))
		}
		if strings.HasPrefix(line, "data:") {
			data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		}
	}
}

func TestStreamEvents(t *testing.T) {
	router, client, _ := setupSearchTestRouter(t)
	client.On("SearchRecipes", mock.Anything, "pasta").Return(pastaRecipes(), nil)

	srv := httptest.NewServer(router)
	defer srv.Close()

	id := createSession(t, router)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/sessions/"+id+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	events := bufio.NewReader(resp.Body)
	assert.Contains(t, readEvent(t, events), `"state":"empty"`)

	w := doJSON(t, router, http.MethodPost, "/api/v1/sessions/"+id+"/query?wait=true", types.SubmitQueryRequest{Query: "pasta"})
	require.Equal(t, http.StatusOK, w.Code)

	assert.Contains(t, readEvent(t, events), `"state":"loading"`)
	assert.Contains(t, readEvent(t, events), `"state":"success"`)
}

func TestStreamEventsUnknownSession(t *testing.T) {
	router, _, _ := setupSearchTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/sessions/nope/events", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubmitQueryUnknownSessionSkipsRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	// nothing listens here, so a limiter that runs marks the response as failed open
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	defer func() { _ = rdb.Close() }()

	client := &mocks.MockRecipeClient{}
	router := gin.New()
	RegisterRoutes(router, service.NewSessionRegistry(client, time.Hour), client, middleware.NewSearchRateLimiter(rdb, 1, time.Minute))

	w := doJSON(t, router, http.MethodPost, "/api/v1/sessions/00000000-0000-0000-0000-000000000000/query", types.SubmitQueryRequest{Query: "   "})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, w.Header().Get("X-RateLimit-Error"))

	id := createSession(t, router)
	w = doJSON(t, router, http.MethodPost, "/api/v1/sessions/"+id+"/query", types.SubmitQueryRequest{Query: "   "})
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "rate limit check failed", w.Header().Get("X-RateLimit-Error"))
}
