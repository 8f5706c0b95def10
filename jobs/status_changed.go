package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/odyssey-erp/bodyshop/internal/jobs"
	"github.com/odyssey-erp/bodyshop/internal/quoting/quotations"
)

// StatusChangedJob applies quotation status changes to the owning repair job.
type StatusChangedJob struct {
	Stages  quotations.JobStageStore
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewStatusChangedJob wires dependencies for the status change handler.
func NewStatusChangedJob(stages quotations.JobStageStore, logger *slog.Logger, metrics *jobmetrics.Metrics) *StatusChangedJob {
	return &StatusChangedJob{Stages: stages, Logger: logger, Metrics: metrics}
}

// Handle processes TaskQuotationStatusChanged tasks.
func (j *StatusChangedJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Stages == nil {
		return errors.New("status changed: handler not configured")
	}
	var event quotations.StatusChangedEvent
	if err := json.Unmarshal(t.Payload(), &event); err != nil {
		return fmt.Errorf("status changed: decode payload: %v: %w", err, asynq.SkipRetry)
	}
	stage, ok := quotations.StageFor(event.To)
	if !ok || event.JobID <= 0 {
		return fmt.Errorf("status changed: quotation %d has no stage for %q: %w", event.QuotationID, event.To, asynq.SkipRetry)
	}

	tracker := j.Metrics.Track(TaskQuotationStatusChanged)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(
		slog.Int64("tenant_id", event.TenantID),
		slog.Int64("job_id", event.JobID),
		slog.String("quote_number", event.QuoteNumber),
	)
	if err := j.Stages.UpdateJobStage(ctx, event.TenantID, event.JobID, stage); err != nil {
		logger.Error("update repair job stage", slog.String("stage", string(stage)), slog.Any("error", err))
		return err
	}
	j.Metrics.IncStage(string(stage))
	logger.Info("repair job stage updated", slog.String("from", string(event.From)), slog.String("stage", string(stage)))
	return nil
}

func (j *StatusChangedJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskQuotationStatusChanged))
	}
	return slog.Default().With(slog.String("job", TaskQuotationStatusChanged))
}
