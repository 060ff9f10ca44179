package audit

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Sink persists audit records into audit_records.
type Sink struct {
	pool *pgxpool.Pool
}

// NewSink returns a new Sink.
func NewSink(pool *pgxpool.Pool) *Sink {
	return &Sink{pool: pool}
}

// Insert writes one record. Records are never updated or deleted.
func (s *Sink) Insert(ctx context.Context, rec Record) error {
	if s == nil {
		return errors.New("audit sink not initialised")
	}
	if rec.Resource == "" || rec.Action == "" || rec.Decision == "" {
		return errors.New("audit record requires resource/action/decision")
	}
	_, err := s.pool.Exec(ctx, `INSERT INTO audit_records
(id, actor_id, actor_role, resource, resource_id, action, decision, prior_state, new_state, at)
VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), NULLIF($9, ''), $10)`,
		rec.ID, rec.ActorID, rec.ActorRole, rec.Resource, rec.ResourceID,
		rec.Action, string(rec.Decision), rec.PriorState, rec.NewState, rec.At)
	return err
}

// SinkRecorder appends straight into the sink, best-effort. Failures are
// logged and dropped so the primary operation is never blocked on audit
// durability. Single-process deployments wire this directly; multi-process
// setups route records through the job queue instead.
type SinkRecorder struct {
	sink   *Sink
	logger *slog.Logger
}

// NewSinkRecorder constructs a SinkRecorder.
func NewSinkRecorder(sink *Sink, logger *slog.Logger) *SinkRecorder {
	return &SinkRecorder{sink: sink, logger: logger}
}

// Append writes the record, swallowing (but logging) failures.
func (r *SinkRecorder) Append(ctx context.Context, rec Record) {
	if err := r.sink.Insert(ctx, rec); err != nil && r.logger != nil {
		r.logger.Warn("audit append dropped", slog.Any("error", err))
	}
}
