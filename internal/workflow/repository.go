package workflow

import (
	"context"

	"github.com/amplio-agency/amplio/internal/lifecycle"
)

// Companion carries fields that must be written atomically with the state.
type Companion struct {
	Approved *bool
	Feedback *string
}

// EntityStore is the persistence contract the workflow imposes per entity
// type. CompareAndSetState must condition the write on the expected state so
// a concurrent writer observes ErrConflict instead of double-applying; the
// write must commit the state and companions together or not at all.
type EntityStore interface {
	GetSnapshot(ctx context.Context, id int64) (lifecycle.Snapshot, error)
	CompareAndSetState(ctx context.Context, id int64, expected, next lifecycle.State, companion Companion) error
}

// EffectDispatcher hands a committed transition's side effect to the job
// queue. Dispatch is fire-and-forget; implementations log their own failures.
type EffectDispatcher interface {
	Dispatch(ctx context.Context, effect lifecycle.Effect, req Request)
}
