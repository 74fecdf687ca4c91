package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/mealsearch/backend/internal/middleware"
	"github.com/pageza/mealsearch/backend/internal/service"
	"github.com/pageza/mealsearch/backend/internal/types"
	"github.com/pageza/mealsearch/backend/internal/view"
)

const sessionContextKey = "session"

// SearchHandler exposes search sessions over HTTP
type SearchHandler struct {
	sessions *service.SessionRegistry
	limiter  *middleware.RateLimiter
}

// NewSearchHandler creates a SearchHandler. limiter may be nil to disable rate limiting.
func NewSearchHandler(sessions *service.SessionRegistry, limiter *middleware.RateLimiter) *SearchHandler {
	return &SearchHandler{
		sessions: sessions,
		limiter:  limiter,
	}
}

func (h *SearchHandler) RegisterRoutes(router *gin.RouterGroup) {
	// unknown sessions are rejected before they reach the limiter
	query := []gin.HandlerFunc{h.RequireSession}
	if h.limiter != nil {
		query = append(query, h.limiter.SessionRateLimitMiddleware())
	}
	query = append(query, h.SubmitQuery)

	sessions := router.Group("/sessions")
	{
		sessions.POST("", h.CreateSession)
		sessions.GET("/:id", h.GetSession)
		sessions.DELETE("/:id", h.DeleteSession)
		sessions.POST("/:id/query", query...)
		sessions.GET("/:id/events", h.StreamEvents)
	}
}

func (h *SearchHandler) CreateSession(c *gin.Context) {
	session := h.sessions.Create()
	c.JSON(http.StatusCreated, SessionResponse{
		SessionID: session.ID.String(),
		Screen:    view.Render(session.Machine.State()),
	})
}

func (h *SearchHandler) GetSession(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, SessionResponse{
		SessionID: session.ID.String(),
		Screen:    view.Render(session.Machine.State()),
	})
}

func (h *SearchHandler) DeleteSession(c *gin.Context) {
	if err := h.sessions.Delete(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// SubmitQuery starts a search. The response carries the screen as it stands
// right after submission; with ?wait=true it carries the final screen instead.
func (h *SearchHandler) SubmitQuery(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		if session, ok = h.session(c); !ok {
			return
		}
	}

	var req types.SubmitQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	// The search outlives this request unless the caller waits for it
	done := session.Machine.SubmitQuery(context.WithoutCancel(c.Request.Context()), req.Query)

	if c.Query("wait") != "true" {
		c.JSON(http.StatusAccepted, SessionResponse{
			SessionID: session.ID.String(),
			Screen:    view.Render(session.Machine.State()),
		})
		return
	}

	select {
	case final := <-done:
		c.JSON(http.StatusOK, SessionResponse{
			SessionID: session.ID.String(),
			Screen:    view.Render(final),
		})
	case <-c.Request.Context().Done():
	}
}

// StreamEvents streams every state of the session as server-sent events,
// starting with the current one.
func (h *SearchHandler) StreamEvents(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	states, unsubscribe := session.Machine.Subscribe()
	defer unsubscribe()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.SSEvent("state", view.Render(session.Machine.State()))
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case s, ok := <-states:
			if !ok {
				return false
			}
			c.SSEvent("state", view.Render(s))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// RequireSession aborts with 404 unless :id names a live session, and stores
// the session on the context for the handlers after it.
func (h *SearchHandler) RequireSession(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		c.Abort()
		return
	}
	c.Set(sessionContextKey, session)
	c.Next()
}

func sessionFromContext(c *gin.Context) (*service.Session, bool) {
	v, ok := c.Get(sessionContextKey)
	if !ok {
		return nil, false
	}
	session, ok := v.(*service.Session)
	return session, ok
}

func (h *SearchHandler) session(c *gin.Context) (*service.Session, bool) {
	session, err := h.sessions.Get(c.Param("id"))
	if errors.Is(err, service.ErrSessionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}
	return session, true
}
