package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bloghq/blog-backend/internal/api"
	"github.com/bloghq/blog-backend/internal/auth"
	"github.com/bloghq/blog-backend/internal/blog"
	"github.com/bloghq/blog-backend/internal/config"
	"github.com/bloghq/blog-backend/internal/log"
	"github.com/bloghq/blog-backend/internal/metrics"
	"github.com/bloghq/blog-backend/internal/storage"
)

func main() {
	// Load configuration; a missing signing key aborts here, never later.
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger, err := log.NewSugar(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Infow("Starting blog API server",
		"env", cfg.Env,
		"addr", cfg.HTTPAddr,
		"db_backend", cfg.Database.Backend,
	)

	// Setup metrics
	metricsObj, metricsHandler, err := metrics.Setup("blog-api")
	if err != nil {
		logger.Fatalw("Failed to setup metrics", "error", err)
	}

	// Open storage backend
	store, err := storage.Open(storage.Config{
		Backend:     cfg.Database.Backend,
		PostgresDSN: cfg.Database.PostgresDSN,
	})
	if err != nil {
		logger.Fatalw("Failed to open storage", "error", err)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Ping(ctx); err != nil {
		logger.Fatalw("Storage ping failed", "error", err)
	}
	logger.Infow("Storage initialized")

	// Setup services
	tokens := auth.NewTokens(
		[]byte(cfg.JWT.Key),
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.TokenTTL(),
		nil,
	)
	authSvc := auth.NewService(store, tokens, logger)
	blogSvc := blog.NewService(store, logger, metricsObj)

	// Setup API handler and middleware
	handler := api.NewHandler(authSvc, blogSvc, store, logger, metricsObj)
	middleware := api.NewMiddleware(logger, metricsObj)

	router := handler.Routes(middleware, tokens, cfg.Security.CORSAllowedOrigins, cfg.Security.RateLimitRPM)

	logger.Infow("CORS configured", "allowed_origins", cfg.Security.CORSAllowedOrigins)

	// Add metrics endpoint
	router.Handle("/metrics", metricsHandler)

	// Setup HTTP server
	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	serverErrors := make(chan error, 1)
	go func() {
		logger.Infow("API server starting", "addr", server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Fatalw("Server startup failed", "error", err)
	case sig := <-shutdown:
		logger.Infow("Shutdown signal received", "signal", sig.String())

		// Give outstanding requests 30 seconds to complete
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Errorw("Graceful shutdown failed", "error", err)
			server.Close()
		}

		logger.Infow("Server stopped")
	}
}
