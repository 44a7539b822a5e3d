package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/bristoevents/eventmail/internal/cache"
	"github.com/bristoevents/eventmail/internal/config"
	"github.com/bristoevents/eventmail/internal/email"
	"github.com/bristoevents/eventmail/internal/events"
	"github.com/bristoevents/eventmail/internal/handler"
	"github.com/bristoevents/eventmail/internal/logger"
	"github.com/bristoevents/eventmail/internal/middleware"
	"github.com/bristoevents/eventmail/internal/router"
	"github.com/bristoevents/eventmail/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	log.Info().Str("version", handler.Version).Msg("starting eventmail server")

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	// Mail transport
	sender, err := email.NewFromConfig(context.Background(), cfg.Mail, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize mail sender")
	}
	log.Info().Str("provider", cfg.Mail.Provider).Msg("mail sender initialized")

	// Submission events
	publisher, err := events.NewFromConfig(cfg.Events, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize event publisher")
	}
	defer publisher.Close()

	// Redis backs shared rate-limit counters when enabled
	var rdb *cache.Redis
	var health handler.HealthChecker
	if cfg.Redis.Enabled {
		rdb, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer rdb.Close()
		health = rdb
		log.Info().Msg("connected to Redis")
	}

	// Initialize services
	submissionSvc := service.NewSubmissionService(sender, publisher, cfg.Business, log)

	// Initialize handlers
	h := handler.New(health, log, cfg, submissionSvc)

	// Initialize middleware
	mw := middleware.New(rdb, log, cfg)

	// Set up router
	r := router.New(h, mw, cfg)

	// Create HTTP server
	addr := cfg.Server.Addr()
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
