package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/bodyshop/jobs"
)

type fakeEnqueuer struct {
	tasks []*asynq.Task
}

func (f *fakeEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{ID: "t1", Type: task.Type(), Queue: jobs.QueueDefault}, nil
}

func (f *fakeEnqueuer) Close() error { return nil }

type fakeInspector struct{}

func (fakeInspector) GetQueueInfo(queue string) (*asynq.QueueInfo, error) {
	return &asynq.QueueInfo{Queue: queue, Pending: 4, Retry: 1}, nil
}

func (fakeInspector) Close() error { return nil }

func TestTriggerCommand(t *testing.T) {
	client := &fakeEnqueuer{}
	c := &JobsCLI{client: client, inspector: fakeInspector{}}
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)

	code := c.Command(context.Background(), []string{"trigger", "-retention-hours", "48", jobs.TaskIdempotencyCleanup}, stdout, stderr)
	require.Equal(t, 0, code, stderr.String())
	require.Len(t, client.tasks, 1)
	var payload jobs.IdempotencyCleanupPayload
	require.NoError(t, json.Unmarshal(client.tasks[0].Payload(), &payload))
	assert.Equal(t, 48, payload.RetentionHours)
	assert.Contains(t, stdout.String(), "enqueued idempotency:cleanup")

	code = c.Command(context.Background(), []string{"trigger", "reports:nightly"}, stdout, stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "unsupported job")

	code = c.Command(context.Background(), []string{"trigger"}, stdout, stderr)
	assert.Equal(t, 2, code)
}

func TestStatsCommand(t *testing.T) {
	c := &JobsCLI{client: &fakeEnqueuer{}, inspector: fakeInspector{}}
	stdout := new(bytes.Buffer)

	code := c.Command(context.Background(), []string{"stats"}, stdout, new(bytes.Buffer))
	require.Equal(t, 0, code)
	var stats QueueStats
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &stats))
	assert.Equal(t, QueueStats{Queue: "default", Pending: 4, Retry: 1}, stats)

	stdout.Reset()
	code = c.Command(context.Background(), []string{"stats", "-queue", "critical"}, stdout, new(bytes.Buffer))
	require.Equal(t, 0, code)
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &stats))
	assert.Equal(t, "critical", stats.Queue)

	assert.Equal(t, 1, c.Command(context.Background(), []string{"stats", "-queue", "low"}, stdout, new(bytes.Buffer)))

	assert.Equal(t, 2, c.Command(context.Background(), nil, stdout, new(bytes.Buffer)))
	assert.Equal(t, 2, c.Command(context.Background(), []string{"purge"}, stdout, new(bytes.Buffer)))
}
