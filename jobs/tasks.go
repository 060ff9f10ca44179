package jobs

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/amplio-agency/amplio/internal/audit"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// QueueAudit carries audit trail appends.
	QueueAudit = "audit"

	// TaskTypeAuditAppend persists one audit record.
	TaskTypeAuditAppend = "audit:append"
	// TaskTypeInvoiceGenerate creates the invoice for a paid payment.
	TaskTypeInvoiceGenerate = "invoice:generate"

	// auditMaxRetry bounds redelivery before the record is dropped to logs.
	auditMaxRetry = 5
)

// NewAuditAppendTask constructs an audit append task.
func NewAuditAppendTask(rec audit.Record) (*asynq.Task, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeAuditAppend, data,
		asynq.Queue(QueueAudit), asynq.MaxRetry(auditMaxRetry)), nil
}

// InvoiceGeneratePayload identifies the payment to invoice.
type InvoiceGeneratePayload struct {
	PaymentID int64     `json:"payment_id"`
	Ref       uuid.UUID `json:"ref"`
}

// NewInvoiceGenerateTask constructs an invoice generation task.
func NewInvoiceGenerateTask(payload InvoiceGeneratePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeInvoiceGenerate, data, asynq.Queue(QueueDefault)), nil
}
