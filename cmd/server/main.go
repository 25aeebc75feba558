package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tendant/simple-social/pkg/simplesocial"
	"github.com/tendant/simple-social/pkg/simplesocial/api"
	"github.com/tendant/simple-social/pkg/simplesocial/config"
	"github.com/tendant/simple-social/pkg/simplesocial/seed"
)

func main() {
	// Load configuration from environment
	serverConfig, err := config.Load(config.WithEnv())
	if err != nil {
		log.Fatalf("Failed to load server configuration: %v", err)
	}

	logger := newLogger(serverConfig.Environment)
	slog.SetDefault(logger)

	ctx := context.Background()
	handler, cleanup, err := buildHandler(ctx, serverConfig, logger)
	if err != nil {
		log.Fatalf("Failed to build server: %v", err)
	}
	defer cleanup()

	// Create HTTP server instance
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", serverConfig.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Simple Social Server starting",
			"port", serverConfig.Port,
			"env", serverConfig.Environment,
			"database", serverConfig.DatabaseType,
			"redis_events", serverConfig.RedisURL != "",
			"metrics", serverConfig.EnableMetrics,
		)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Create a deadline to wait for
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown server gracefully
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exiting")
}

func newLogger(environment string) *slog.Logger {
	if environment == "development" || environment == "testing" {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

// buildHandler wires the service, optional seed data and the router from cfg.
func buildHandler(ctx context.Context, cfg *config.ServerConfig, logger *slog.Logger) (http.Handler, func(), error) {
	var (
		metrics *api.PrometheusMetrics
		extra   []simplesocial.EventSink
	)
	if cfg.EnableMetrics {
		metrics = api.NewPrometheusMetrics()
		extra = append(extra, metrics.EventSink())
	}

	svc, cleanup, err := cfg.BuildService(ctx, logger, extra...)
	if err != nil {
		return nil, nil, err
	}

	if cfg.SeedPosts > 0 {
		res, err := seed.Posts(ctx, svc, cfg.SeedPosts)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("failed to seed data: %w", err)
		}
		logger.Info("Seeded demo data", "posts", res.Posts, "comments", res.Comments, "likes", res.Likes)
	}

	router := api.NewRouter(svc, api.RouterOptions{
		Logger:         logger,
		Metrics:        metrics,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		MaxBodyBytes:   cfg.MaxBodyBytes,
		RequestTimeout: cfg.RequestTimeout,
	})
	return router, cleanup, nil
}
