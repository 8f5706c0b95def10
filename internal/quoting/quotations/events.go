package quotations

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// StatusChangedEvent is published after a lifecycle transition is persisted.
type StatusChangedEvent struct {
	TenantID    int64     `json:"tenant_id"`
	QuotationID int64     `json:"quotation_id"`
	QuoteNumber string    `json:"quote_number"`
	JobID       int64     `json:"job_id"`
	From        Status    `json:"from"`
	To          Status    `json:"to"`
	Reason      string    `json:"reason,omitempty"`
	ActorID     int64     `json:"actor_id"`
	ChangedAt   time.Time `json:"changed_at"`
}

// Publisher hands status changes to the job lifecycle.
type Publisher interface {
	PublishStatusChanged(ctx context.Context, event StatusChangedEvent) error
}

// JobStage is the repair job stage driven by quotation status.
type JobStage string

const (
	JobStageQuoting          JobStage = "quoting"
	JobStageAwaitingApproval JobStage = "awaiting_approval"
	JobStageApproved         JobStage = "approved"
	JobStageDeclined         JobStage = "declined"
)

// StageFor maps a quotation status to the repair job stage.
func StageFor(status Status) (JobStage, bool) {
	switch status {
	case StatusDraft:
		return JobStageQuoting, true
	case StatusSent:
		return JobStageAwaitingApproval, true
	case StatusApproved:
		return JobStageApproved, true
	case StatusRejected:
		return JobStageDeclined, true
	}
	return "", false
}

// JobStageStore moves a repair job to a stage.
type JobStageStore interface {
	UpdateJobStage(ctx context.Context, tenantID, jobID int64, stage JobStage) error
}

type jobStageStore struct {
	pool *pgxpool.Pool
}

// NewJobStageStore returns a JobStageStore over repair_jobs.
func NewJobStageStore(pool *pgxpool.Pool) JobStageStore {
	return &jobStageStore{pool: pool}
}

func (s *jobStageStore) UpdateJobStage(ctx context.Context, tenantID, jobID int64, stage JobStage) error {
	if s == nil || s.pool == nil {
		return errors.New("job stage store not initialised")
	}
	_, err := s.pool.Exec(ctx, `UPDATE repair_jobs SET stage = $3, updated_at = NOW() WHERE tenant_id = $1 AND id = $2`,
		tenantID, jobID, stage)
	return err
}
