package jobs

import (
	"context"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/bodyshop/internal/quoting/quotations"
)

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

// Client publishes quoting events and maintenance tasks. It satisfies quotations.Publisher.
type Client struct {
	client enqueuer
}

// NewClient constructs an Asynq-backed client.
func NewClient(redisOpts asynq.RedisClientOpt) (*Client, error) {
	return &Client{client: asynq.NewClient(redisOpts)}, nil
}

// PublishStatusChanged enqueues the repair job stage update for a quotation transition.
func (c *Client) PublishStatusChanged(ctx context.Context, event quotations.StatusChangedEvent) error {
	task, err := NewQuotationStatusChangedTask(event)
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(QueueCritical), asynq.MaxRetry(5))
	return err
}

// EnqueueRateWarmup schedules a rate cache warmup. Repeats within a minute collapse into one task.
func (c *Client) EnqueueRateWarmup(ctx context.Context, reason string) (*asynq.TaskInfo, error) {
	task, err := NewRateCacheWarmupTask(reason)
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault), asynq.Unique(time.Minute))
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}
