package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/amplio-agency/amplio/internal/audit"
)

// InvoiceGenerator creates the invoice for a paid payment.
type InvoiceGenerator interface {
	GenerateInvoice(ctx context.Context, paymentID int64) error
}

// Worker wraps the Asynq server processing background tasks.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	logger *slog.Logger
}

// WorkerConfig collects dependencies required to bootstrap the worker.
type WorkerConfig struct {
	RedisOpts asynq.RedisClientOpt
	Logger    *slog.Logger
	Sink      *audit.Sink
	Invoices  InvoiceGenerator
}

// NewWorker constructs a Worker instance.
func NewWorker(cfg WorkerConfig) *Worker {
	srv := asynq.NewServer(cfg.RedisOpts, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			QueueAudit:   2,
			QueueDefault: 1,
		},
	})
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskTypeAuditAppend, handleAuditAppend(cfg.Sink, cfg.Logger))
	mux.HandleFunc(TaskTypeInvoiceGenerate, handleInvoiceGenerate(cfg.Invoices, cfg.Logger))
	return &Worker{server: srv, mux: mux, logger: cfg.Logger}
}

// Run starts processing jobs until context cancellation.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.server.Start(w.mux); err != nil {
		return err
	}
	<-ctx.Done()
	w.server.Shutdown()
	return nil
}

func handleAuditAppend(sink *audit.Sink, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var rec audit.Record
		if err := json.Unmarshal(t.Payload(), &rec); err != nil {
			return asynq.SkipRetry
		}
		if err := sink.Insert(ctx, rec); err != nil {
			// Retried up to the task's MaxRetry; after that Asynq parks it
			// and the record is effectively dropped, which the trail's
			// best-effort contract permits.
			if logger != nil {
				logger.Warn("audit append retry", slog.Any("error", err))
			}
			return err
		}
		return nil
	}
}

func handleInvoiceGenerate(invoices InvoiceGenerator, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload InvoiceGeneratePayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		if err := invoices.GenerateInvoice(ctx, payload.PaymentID); err != nil {
			if logger != nil {
				logger.Error("generate invoice", slog.Int64("payment_id", payload.PaymentID), slog.Any("error", err))
			}
			return err
		}
		return nil
	}
}
