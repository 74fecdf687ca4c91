package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pageza/mealsearch/backend/config"
	"github.com/pageza/mealsearch/backend/internal/database"
	"github.com/pageza/mealsearch/backend/internal/middleware"
	"github.com/pageza/mealsearch/backend/internal/server"
	"github.com/pageza/mealsearch/backend/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	gin.SetMode(cfg.Environment.GinMode())

	client, err := service.NewMealDBClient(cfg.MealDBBaseURL, cfg.MealDBConnectTimeout, cfg.MealDBReadTimeout)
	if err != nil {
		log.Fatalf("Failed to create recipe client: %v", err)
	}

	var limiter *middleware.RateLimiter
	if cfg.RateLimitEnabled() {
		redisClient, err := database.NewRedisClient(context.Background(), cfg)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer func() { _ = redisClient.Close() }()
		limiter = middleware.NewSearchRateLimiter(redisClient, cfg.SearchRateLimit, cfg.SearchRateWindow)
		log.Printf("Search rate limit: %d per %v", cfg.SearchRateLimit, cfg.SearchRateWindow)
	}

	srv := server.New(cfg, client, limiter)

	// Channel to listen for errors coming from the server
	errChan := make(chan error, 1)
	go func() {
		log.Println("Starting server...")
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
		return
	case sig := <-quit:
		log.Printf("Received signal: %v", sig)
	}

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Graceful shutdown failed, closing: %v", err)
		_ = srv.Close()
	}
	log.Println("Server stopped")
}
