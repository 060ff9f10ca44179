package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/amplio-agency/amplio/internal/audit"
	"github.com/amplio-agency/amplio/internal/lifecycle"
	"github.com/amplio-agency/amplio/internal/policy"
)

type registration struct {
	machine *lifecycle.Machine
	store   EntityStore
}

// MetricsRecorder counts workflow outcomes. Implementations must be nil-safe
// for the caller: a nil recorder simply records nothing.
type MetricsRecorder interface {
	CountDecision(entity, decision string)
	CountTransition(entity, state string)
}

// Service applies transitions across every registered entity type. It never
// retries: conflicts and store failures surface to the caller.
type Service struct {
	gate     *policy.Gate
	trail    audit.Recorder
	effects  EffectDispatcher
	logger   *slog.Logger
	metrics  MetricsRecorder
	entities map[EntityType]registration
}

// NewService constructs the workflow service.
func NewService(gate *policy.Gate, trail audit.Recorder, effects EffectDispatcher, logger *slog.Logger) *Service {
	if trail == nil {
		trail = audit.NopRecorder{}
	}
	return &Service{
		gate:     gate,
		trail:    trail,
		effects:  effects,
		logger:   logger,
		entities: make(map[EntityType]registration),
	}
}

// WithMetrics attaches outcome counters.
func (s *Service) WithMetrics(metrics MetricsRecorder) *Service {
	s.metrics = metrics
	return s
}

// Register binds an entity type to its lifecycle and store.
func (s *Service) Register(entity EntityType, machine *lifecycle.Machine, store EntityStore) *Service {
	s.entities[entity] = registration{machine: machine, store: store}
	return s
}

// Apply runs one transition request end to end. Exactly one audit record is
// appended per call, carrying the decision that matches the returned result;
// the lone exception is a failure of the audit sink itself, which is
// best-effort by design.
func (s *Service) Apply(ctx context.Context, req Request) (Outcome, error) {
	reg, ok := s.entities[req.Type]
	if !ok {
		return Outcome{}, fmt.Errorf("%w: %s", ErrUnknownEntity, req.Type)
	}

	snap, err := reg.store.GetSnapshot(ctx, req.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.record(ctx, req, audit.DecisionNotFound, "", "")
			return Outcome{}, ErrNotFound
		}
		s.record(ctx, req, audit.DecisionStoreFailure, "", "")
		return Outcome{}, fmt.Errorf("%w: %v", ErrStore, err)
	}

	// Self-protection runs before the permission table so the failure kind
	// is never masked as a generic denial.
	if req.Type == TypeAdminUser && req.Action == lifecycle.ActionDelete && req.Actor.ID == req.ID {
		s.record(ctx, req, audit.DecisionSelfProtection, string(snap.State), "")
		return Outcome{}, ErrSelfProtection
	}

	resource, permission, ok := reg.machine.Requirement(req.Action)
	if !ok {
		s.record(ctx, req, audit.DecisionIllegal, string(snap.State), "")
		return Outcome{}, fmt.Errorf("%w: %s does not support %q", ErrIllegal, req.Type, req.Action)
	}

	// Permission is resolved before transition legality: a denied actor
	// learns nothing about the entity's current state.
	decision := s.gate.Evaluate(ctx, req.Actor, resource, permission)
	if !decision.Allowed {
		s.record(ctx, req, audit.DecisionDenied, string(snap.State), "")
		return Outcome{}, fmt.Errorf("%w: %s", ErrDenied, decision.Reason)
	}

	arc, err := reg.machine.Transition(snap, req.Action, req.Target)
	if err != nil {
		s.record(ctx, req, audit.DecisionIllegal, string(snap.State), "")
		return Outcome{}, err
	}

	companion := Companion{}
	approved := snap.Approved
	if arc.SetsApproved {
		t := true
		companion.Approved = &t
		approved = true
	}
	if arc.TakesFeedback && req.Feedback != "" {
		fb := req.Feedback
		companion.Feedback = &fb
	}

	if err := reg.store.CompareAndSetState(ctx, req.ID, snap.State, arc.Next, companion); err != nil {
		switch {
		case errors.Is(err, ErrConflict):
			s.record(ctx, req, audit.DecisionConflict, string(snap.State), "")
			return Outcome{}, ErrConflict
		case errors.Is(err, ErrNotFound):
			s.record(ctx, req, audit.DecisionNotFound, string(snap.State), "")
			return Outcome{}, ErrNotFound
		default:
			s.record(ctx, req, audit.DecisionStoreFailure, string(snap.State), "")
			if s.logger != nil {
				s.logger.Error("persist transition",
					slog.String("entity", string(req.Type)),
					slog.Int64("id", req.ID),
					slog.Any("error", err))
			}
			return Outcome{}, fmt.Errorf("%w: %v", ErrStore, err)
		}
	}

	s.record(ctx, req, audit.DecisionApplied, string(snap.State), string(arc.Next))
	if s.metrics != nil {
		s.metrics.CountTransition(string(req.Type), string(arc.Next))
	}

	if arc.Effect != lifecycle.EffectNone && s.effects != nil {
		s.effects.Dispatch(ctx, arc.Effect, req)
	}

	return Outcome{Prior: snap.State, New: arc.Next, Approved: approved}, nil
}

func (s *Service) record(ctx context.Context, req Request, decision audit.Decision, prior, next string) {
	if s.metrics != nil {
		s.metrics.CountDecision(string(req.Type), string(decision))
	}
	s.trail.Append(ctx, audit.NewRecord(audit.Record{
		ActorID:    req.Actor.ID,
		ActorRole:  string(req.Actor.Role),
		Resource:   string(req.Type),
		ResourceID: strconv.FormatInt(req.ID, 10),
		Action:     string(req.Action),
		Decision:   decision,
		PriorState: prior,
		NewState:   next,
	}))
}
