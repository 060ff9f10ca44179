package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/amplio-agency/amplio/internal/audit"
)

// QueuedRecorder appends audit records through the job queue: non-blocking
// for the caller, bounded retry on the worker side, log-and-drop when the
// queue itself is unreachable. Audit durability never gates the primary
// operation's result.
type QueuedRecorder struct {
	client *asynq.Client
	logger *slog.Logger
}

// NewQueuedRecorder constructs a QueuedRecorder.
func NewQueuedRecorder(client *asynq.Client, logger *slog.Logger) *QueuedRecorder {
	return &QueuedRecorder{client: client, logger: logger}
}

// Append enqueues the record. Enqueue failure is logged and dropped.
func (r *QueuedRecorder) Append(ctx context.Context, rec audit.Record) {
	task, err := NewAuditAppendTask(rec)
	if err != nil {
		if r.logger != nil {
			r.logger.Warn("audit append dropped", slog.Any("error", err))
		}
		return
	}
	if _, err := r.client.EnqueueContext(ctx, task); err != nil {
		if r.logger != nil {
			r.logger.Warn("audit append dropped",
				slog.String("resource", rec.Resource),
				slog.String("decision", string(rec.Decision)),
				slog.Any("error", err))
		}
	}
}
