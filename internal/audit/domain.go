package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Decision categorises the outcome attached to an audit record.
type Decision string

const (
	DecisionAllow          Decision = "ALLOW"
	DecisionApplied        Decision = "APPLIED"
	DecisionDenied         Decision = "DENIED"
	DecisionSelfProtection Decision = "SELF_PROTECTION"
	DecisionIllegal        Decision = "ILLEGAL"
	DecisionNotFound       Decision = "NOT_FOUND"
	DecisionConflict       Decision = "CONFLICT"
	DecisionStoreFailure   Decision = "STORE_FAILURE"
)

// Record is one immutable audit trail entry. Records are append-only: this
// package never updates or deletes them.
type Record struct {
	ID         uuid.UUID `json:"id"`
	ActorID    int64     `json:"actor_id"`
	ActorRole  string    `json:"actor_role"`
	Resource   string    `json:"resource"`
	ResourceID string    `json:"resource_id"`
	Action     string    `json:"action"`
	Decision   Decision  `json:"decision"`
	PriorState string    `json:"prior_state,omitempty"`
	NewState   string    `json:"new_state,omitempty"`
	At         time.Time `json:"at"`
}

// NewRecord stamps identity and time onto a record.
func NewRecord(rec Record) Record {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.At.IsZero() {
		rec.At = time.Now().UTC()
	}
	return rec
}

// Recorder accepts append-only records. Appends are best-effort: a recorder
// must never block or fail the caller's primary operation.
type Recorder interface {
	Append(ctx context.Context, rec Record)
}

// NopRecorder drops every record. Useful when the trail is disabled.
type NopRecorder struct{}

// Append discards the record.
func (NopRecorder) Append(context.Context, Record) {}
