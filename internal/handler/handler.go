package handler

import (
	"context"

	"github.com/bristoevents/eventmail/internal/config"
	"github.com/bristoevents/eventmail/internal/logger"
	"github.com/bristoevents/eventmail/internal/model"
	"github.com/bristoevents/eventmail/internal/service"
)

// HealthChecker reports whether a dependency is reachable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Handler holds all HTTP handlers
type Handler struct {
	rdb       HealthChecker
	log       *logger.Logger
	cfg       *config.Config
	validator *model.Validator
	svc       *service.SubmissionService
}

// New creates a new Handler instance. rdb is nil when Redis is disabled.
func New(rdb HealthChecker, log *logger.Logger, cfg *config.Config, svc *service.SubmissionService) *Handler {
	return &Handler{
		rdb:       rdb,
		log:       log,
		cfg:       cfg,
		validator: model.NewValidator(),
		svc:       svc,
	}
}
