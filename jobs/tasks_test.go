package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/amplio-agency/amplio/internal/audit"
)

func TestAuditAppendTaskRoundTrip(t *testing.T) {
	rec := audit.NewRecord(audit.Record{
		ActorID:    7,
		ActorRole:  "ADMIN",
		Resource:   "campaign",
		ResourceID: "12",
		Action:     "approve",
		Decision:   audit.DecisionApplied,
		PriorState: "DRAFT",
		NewState:   "ACTIVE",
	})

	task, err := NewAuditAppendTask(rec)
	require.NoError(t, err)
	require.Equal(t, TaskTypeAuditAppend, task.Type())

	var decoded audit.Record
	require.NoError(t, json.Unmarshal(task.Payload(), &decoded))
	require.Equal(t, rec.ID, decoded.ID)
	require.Equal(t, rec.Decision, decoded.Decision)
	require.Equal(t, rec.PriorState, decoded.PriorState)
	require.Equal(t, rec.NewState, decoded.NewState)
}

func TestInvoiceGenerateTaskRoundTrip(t *testing.T) {
	payload := InvoiceGeneratePayload{PaymentID: 42, Ref: uuid.New()}
	task, err := NewInvoiceGenerateTask(payload)
	require.NoError(t, err)
	require.Equal(t, TaskTypeInvoiceGenerate, task.Type())

	var decoded InvoiceGeneratePayload
	require.NoError(t, json.Unmarshal(task.Payload(), &decoded))
	require.Equal(t, payload, decoded)
}

func TestQueuedRecorderEnqueues(t *testing.T) {
	mr := miniredis.RunT(t)
	client := asynq.NewClient(asynq.RedisClientOpt{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()

	task, err := NewAuditAppendTask(audit.NewRecord(audit.Record{Resource: "brand", Decision: audit.DecisionAllow}))
	require.NoError(t, err)
	info, err := client.EnqueueContext(context.Background(), task)
	require.NoError(t, err)
	require.Equal(t, QueueAudit, info.Queue)
	require.Equal(t, auditMaxRetry, info.MaxRetry)
}

func TestQueuedRecorderDropsOnBrokerFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	client := asynq.NewClient(asynq.RedisClientOpt{Addr: addr})
	defer func() { _ = client.Close() }()

	recorder := NewQueuedRecorder(client, slog.Default())
	// Best-effort contract: the append is dropped, never panics or blocks.
	recorder.Append(context.Background(), audit.NewRecord(audit.Record{Resource: "brand", Decision: audit.DecisionAllow}))
}
