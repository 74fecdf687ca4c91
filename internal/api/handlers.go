package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/mealsearch/backend/internal/middleware"
	"github.com/pageza/mealsearch/backend/internal/service"
)

// HealthCheck returns the health status of the API
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RegisterRoutes registers all API routes under /api/v1. limiter may be nil.
func RegisterRoutes(router *gin.Engine, sessions *service.SessionRegistry, recipes service.IRecipeClient, limiter *middleware.RateLimiter) {
	v1 := router.Group("/api/v1")
	v1.GET("/health", HealthCheck)

	NewSearchHandler(sessions, limiter).RegisterRoutes(v1)
	NewRecipeHandler(recipes).RegisterRoutes(v1)
}
