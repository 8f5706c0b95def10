package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/odyssey-erp/bodyshop/internal/jobs"
)

// RateWarmer loads every insurer's schedules into the rate cache.
type RateWarmer interface {
	Warmup(ctx context.Context) (warmed, failed int, err error)
}

// RateWarmupJob keeps the SLA schedule cache hot after deploys and schedule edits.
type RateWarmupJob struct {
	Rates   RateWarmer
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

func NewRateWarmupJob(rates RateWarmer, logger *slog.Logger, metrics *jobmetrics.Metrics) *RateWarmupJob {
	return &RateWarmupJob{Rates: rates, Logger: logger, Metrics: metrics}
}

// Handle processes TaskRateCacheWarmup tasks. Individual insurer failures are counted but only
// fail the task when nothing could be warmed.
func (j *RateWarmupJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Rates == nil {
		return errors.New("rate warmup: handler not configured")
	}
	tracker := j.Metrics.Track(TaskRateCacheWarmup)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("job", TaskRateCacheWarmup))

	start := time.Now()
	warmed, failed, err := j.Rates.Warmup(ctx)
	j.Metrics.AddWarmed("rates", warmed, failed)
	if err != nil {
		logger.Error("list insurers for warmup", slog.Any("error", err))
		return err
	}
	if failed > 0 && warmed == 0 {
		return fmt.Errorf("rate warmup: all %d insurers failed", failed)
	}
	logger.Info("completed rate cache warmup", slog.Int("warmed", warmed), slog.Int("failed", failed), slog.Duration("duration", time.Since(start)))
	return nil
}
