package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pageza/mealsearch/backend/config"
	"github.com/pageza/mealsearch/backend/internal/middleware"
	"github.com/pageza/mealsearch/backend/internal/router"
	"github.com/pageza/mealsearch/backend/internal/service"
)

// sweepInterval is how often idle sessions are evicted
const sweepInterval = time.Minute

// Server represents the HTTP server
type Server struct {
	router   *gin.Engine
	http     *http.Server
	sessions *service.SessionRegistry

	sweepCtx  context.Context
	stopSweep context.CancelFunc
}

// New creates a new server instance. limiter may be nil.
func New(cfg *config.Config, recipes service.IRecipeClient, limiter *middleware.RateLimiter) *Server {
	sessions := service.NewSessionRegistry(recipes, cfg.SessionIdleTimeout)
	r := router.SetupRouter(cfg, sessions, recipes, limiter)
	sweepCtx, stopSweep := context.WithCancel(context.Background())

	return &Server{
		router:    r,
		sessions:  sessions,
		sweepCtx:  sweepCtx,
		stopSweep: stopSweep,
		http: &http.Server{
			Addr:              cfg.ServerAddr(),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Handler returns the server's HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves HTTP until Shutdown is called. It returns nil after a clean shutdown.
func (s *Server) Start() error {
	go s.sessions.Run(s.sweepCtx, sweepInterval)

	log.Printf("[Server] listening on %s", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.stopSweep()
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.stopSweep()
	return s.http.Shutdown(ctx)
}

// Close stops the server immediately, dropping open event streams
func (s *Server) Close() error {
	s.stopSweep()
	return s.http.Close()
}
