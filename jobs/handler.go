package jobs

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/bodyshop/internal/platform/httpx"
)

// QueueInspector reads queue state; *asynq.Inspector satisfies it.
type QueueInspector interface {
	GetQueueInfo(queue string) (*asynq.QueueInfo, error)
}

// QueueHealth is the per-queue view served by /jobs/health.
type QueueHealth struct {
	Queue    string `json:"queue"`
	Pending  int    `json:"pending"`
	Active   int    `json:"active"`
	Retry    int    `json:"retry"`
	Archived int    `json:"archived"`
	Paused   bool   `json:"paused"`
}

// Handler exposes HTTP endpoints for job observability.
type Handler struct {
	inspector QueueInspector
	logger    *slog.Logger
}

// NewHandler constructs an HTTP handler for jobs endpoints. A nil inspector reports empty queues.
func NewHandler(inspector QueueInspector, logger *slog.Logger) *Handler {
	return &Handler{inspector: inspector, logger: logger}
}

// MountRoutes attaches job routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/health", h.health)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	queues := make([]QueueHealth, 0, 2)
	for _, name := range []string{QueueCritical, QueueDefault} {
		qh, err := h.queueHealth(name)
		if err != nil {
			h.logger.Warn("jobs health", slog.String("queue", name), slog.Any("error", err))
			httpx.Problem(w, http.StatusServiceUnavailable, http.StatusText(http.StatusServiceUnavailable), "job queue unavailable")
			return
		}
		queues = append(queues, qh)
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"queues": queues})
}

func (h *Handler) queueHealth(name string) (QueueHealth, error) {
	qh := QueueHealth{Queue: name}
	if h.inspector == nil {
		return qh, nil
	}
	info, err := h.inspector.GetQueueInfo(name)
	if errors.Is(err, asynq.ErrQueueNotFound) {
		return qh, nil
	}
	if err != nil {
		return qh, err
	}
	if info != nil {
		qh.Pending = info.Pending
		qh.Active = info.Active
		qh.Retry = info.Retry
		qh.Archived = info.Archived
		qh.Paused = info.Paused
	}
	return qh, nil
}
