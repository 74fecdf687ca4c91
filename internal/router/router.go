package router

import (
	"github.com/gin-gonic/gin"

	"github.com/pageza/mealsearch/backend/config"
	"github.com/pageza/mealsearch/backend/internal/api"
	"github.com/pageza/mealsearch/backend/internal/middleware"
	"github.com/pageza/mealsearch/backend/internal/service"
)

// SetupRouter configures the application routes. limiter may be nil.
func SetupRouter(
	cfg *config.Config,
	sessions *service.SessionRegistry,
	recipes service.IRecipeClient,
	limiter *middleware.RateLimiter,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	api.RegisterRoutes(router, sessions, recipes, limiter)

	return router
}
