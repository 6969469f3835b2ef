package cron

import (
	"context"
	"fmt"

	"github.com/littlemija/littlemija-backend/pkg/logger"
	"github.com/littlemija/littlemija-backend/pkg/metrics"
)

const defaultOutboxMaxAttempts = 10

type OutboxBacklogJobParams struct {
	Logger      *logger.Logger
	Repository  outboxBacklogRepo
	MaxAttempts int
	Metrics     *metrics.CronJobMetrics
}

type outboxBacklogRepo interface {
	CountExhausted(ctx context.Context, maxAttempts int) (int64, error)
}

// NewOutboxBacklogJob warns when order events have exhausted their publish attempts and will
// not be relayed without intervention.
func NewOutboxBacklogJob(params OutboxBacklogJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("outbox repository required")
	}
	maxAttempts := params.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultOutboxMaxAttempts
	}
	return &outboxBacklogJob{
		logg:        params.Logger,
		repo:        params.Repository,
		maxAttempts: maxAttempts,
		metrics:     params.Metrics,
	}, nil
}

type outboxBacklogJob struct {
	logg        *logger.Logger
	repo        outboxBacklogRepo
	maxAttempts int
	metrics     *metrics.CronJobMetrics
}

func (j *outboxBacklogJob) Name() string { return "outbox-backlog" }

func (j *outboxBacklogJob) Run(ctx context.Context) error {
	stuck, err := j.repo.CountExhausted(ctx, j.maxAttempts)
	if err != nil {
		return fmt.Errorf("outbox backlog: %w", err)
	}
	j.metrics.SetOutboxExhausted(stuck)
	if stuck == 0 {
		return nil
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"stuck_events": stuck,
		"max_attempts": j.maxAttempts,
	})
	j.logg.Warn(logCtx, "outbox events exhausted their publish attempts")
	return nil
}
