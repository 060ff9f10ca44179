package jobs

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/amplio-agency/amplio/internal/lifecycle"
	"github.com/amplio-agency/amplio/internal/workflow"
)

// Dispatcher hands committed transition side effects to the queue.
type Dispatcher struct {
	client *asynq.Client
	logger *slog.Logger
}

// NewDispatcher constructs a Dispatcher.
func NewDispatcher(client *asynq.Client, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{client: client, logger: logger}
}

// Dispatch enqueues the task for the effect. Fire-and-forget: failures are
// logged, never propagated to the transition result.
func (d *Dispatcher) Dispatch(ctx context.Context, effect lifecycle.Effect, req workflow.Request) {
	var task *asynq.Task
	var err error
	switch effect {
	case lifecycle.EffectGenerateInvoice:
		task, err = NewInvoiceGenerateTask(InvoiceGeneratePayload{PaymentID: req.ID, Ref: uuid.New()})
	default:
		if d.logger != nil {
			d.logger.Warn("unknown side effect", slog.String("effect", string(effect)))
		}
		return
	}
	if err != nil {
		d.log(effect, err)
		return
	}
	if _, err := d.client.EnqueueContext(ctx, task); err != nil {
		d.log(effect, err)
	}
}

func (d *Dispatcher) log(effect lifecycle.Effect, err error) {
	if d.logger != nil {
		d.logger.Error("dispatch side effect", slog.String("effect", string(effect)), slog.Any("error", err))
	}
}
