package policy

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/amplio-agency/amplio/internal/audit"
)

// Decision is the gate's verdict for one permission check.
type Decision struct {
	Allowed bool
	Reason  string
}

const (
	reasonSuperAdmin  = "super admin bypass"
	reasonNotGranted  = "permission not granted"
	reasonStoreFailed = "policy store unavailable"
)

// Gate evaluates whether an actor may perform an action on a resource. It
// holds no mutable state beyond the store's own read path and is safe for
// concurrent use.
type Gate struct {
	store  *Store
	trail  audit.Recorder
	logger *slog.Logger
}

// NewGate constructs a Gate.
func NewGate(store *Store, trail audit.Recorder, logger *slog.Logger) *Gate {
	if trail == nil {
		trail = audit.NopRecorder{}
	}
	return &Gate{store: store, trail: trail, logger: logger}
}

// Check evaluates the permission and emits exactly one audit record with the
// decision before returning.
func (g *Gate) Check(ctx context.Context, actor Actor, resource Resource, action Action) Decision {
	decision := g.Evaluate(ctx, actor, resource, action)
	outcome := audit.DecisionDenied
	if decision.Allowed {
		outcome = audit.DecisionAllow
	}
	g.trail.Append(ctx, audit.NewRecord(audit.Record{
		ActorID:   actor.ID,
		ActorRole: string(actor.Role),
		Resource:  string(resource),
		Action:    string(action),
		Decision:  outcome,
	}))
	return decision
}

// Evaluate resolves the permission without emitting an audit record. Callers
// that compose the check into a larger operation record the merged outcome
// themselves.
func (g *Gate) Evaluate(ctx context.Context, actor Actor, resource Resource, action Action) Decision {
	// The top role is allowed everything unconditionally. This is the one
	// escape hatch that never consults the policy table.
	if actor.Role == RoleSuperAdmin {
		return Decision{Allowed: true, Reason: reasonSuperAdmin}
	}
	allowed, err := g.store.Resolve(ctx, actor.Role, resource, action)
	if err != nil {
		// Fail closed: an unreachable store denies, it never falls back to
		// the compiled-in default.
		if g.logger != nil {
			g.logger.Error("policy resolve failed",
				slog.String("role", string(actor.Role)),
				slog.String("actor", strconv.FormatInt(actor.ID, 10)),
				slog.String("permission", Key(resource, action)),
				slog.Any("error", err))
		}
		return Decision{Allowed: false, Reason: reasonStoreFailed}
	}
	if !allowed {
		return Decision{Allowed: false, Reason: reasonNotGranted}
	}
	return Decision{Allowed: true}
}
