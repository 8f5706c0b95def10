package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/bodyshop/internal/quoting/quotations"
)

const (
	// QueueCritical carries repair job stage updates, which estimators wait on.
	QueueCritical = "critical"
	// QueueDefault carries cache and housekeeping work.
	QueueDefault = "default"
	// TaskQuotationStatusChanged moves the repair job to the stage matching a quotation's new status.
	TaskQuotationStatusChanged = "quotation:status_changed"
	// TaskRateCacheWarmup preloads SLA schedule lists for every insurer.
	TaskRateCacheWarmup = "rates:cache_warmup"
	// TaskIdempotencyCleanup purges expired idempotency keys.
	TaskIdempotencyCleanup = "idempotency:cleanup"
)

// NewQuotationStatusChangedTask wraps a status change event as a task.
func NewQuotationStatusChangedTask(event quotations.StatusChangedEvent) (*asynq.Task, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskQuotationStatusChanged, data), nil
}

// RateCacheWarmupPayload carries no scope; every insurer with a schedule is warmed.
type RateCacheWarmupPayload struct {
	Reason string `json:"reason,omitempty"`
}

// NewRateCacheWarmupTask constructs a rate cache warmup task.
func NewRateCacheWarmupTask(reason string) (*asynq.Task, error) {
	data, err := json.Marshal(RateCacheWarmupPayload{Reason: reason})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRateCacheWarmup, data), nil
}

// IdempotencyCleanupPayload sets how long keys are retained.
type IdempotencyCleanupPayload struct {
	RetentionHours int `json:"retention_hours"`
}

// Retention returns the retention window, defaulting to 72 hours.
func (p IdempotencyCleanupPayload) Retention() time.Duration {
	if p.RetentionHours <= 0 {
		return 72 * time.Hour
	}
	return time.Duration(p.RetentionHours) * time.Hour
}

// NewIdempotencyCleanupTask constructs a cleanup task.
func NewIdempotencyCleanupTask(retentionHours int) (*asynq.Task, error) {
	data, err := json.Marshal(IdempotencyCleanupPayload{RetentionHours: retentionHours})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskIdempotencyCleanup, data), nil
}
