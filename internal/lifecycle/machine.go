// Package lifecycle defines the per-entity state machines: valid states,
// legal transitions, the permission each transition demands, and the
// companion fields or side effects a transition carries.
package lifecycle

import (
	"errors"
	"fmt"

	"github.com/amplio-agency/amplio/internal/policy"
)

// State is an entity workflow state.
type State string

// Action is a workflow verb requested against an entity.
type Action string

const (
	ActionStage   Action = "stage"
	ActionEdit    Action = "edit"
	ActionApprove Action = "approve"
	ActionReview  Action = "review"
	ActionDelete  Action = "delete"
)

// Effect names a side effect dispatched after a transition commits.
type Effect string

const (
	EffectNone            Effect = ""
	EffectGenerateInvoice Effect = "invoice:generate"
)

// Snapshot is the workflow-relevant view of an entity.
type Snapshot struct {
	State    State
	Approved bool
}

// Arc describes one legal transition.
type Arc struct {
	Next          State
	Resource      policy.Resource
	Permission    policy.Action
	SetsApproved  bool
	TakesFeedback bool
	Guard         func(Snapshot) error
	Effect        Effect
}

// ErrIllegal marks a transition absent from the entity's table or rejected
// by a guard.
var ErrIllegal = errors.New("lifecycle: illegal transition")

type arcKey struct {
	from   State
	action Action
	to     State
}

// Machine owns one entity's transition table. A machine built with an open
// graph accepts any well-formed target state for its single action.
type Machine struct {
	entity   string
	arcs     map[arcKey]Arc
	open     bool
	openArc  Arc
	openVerb Action
}

// New constructs an empty table-driven machine.
func New(entity string) *Machine {
	return &Machine{entity: entity, arcs: make(map[arcKey]Arc)}
}

// NewOpen constructs a machine whose single action moves between arbitrary
// well-formed states, gated by one permission.
func NewOpen(entity string, verb Action, arc Arc) *Machine {
	return &Machine{entity: entity, open: true, openVerb: verb, openArc: arc}
}

// Allow registers a legal transition.
func (m *Machine) Allow(from State, action Action, arc Arc) *Machine {
	m.arcs[arcKey{from: from, action: action, to: arc.Next}] = arc
	return m
}

// Entity names the machine's entity type.
func (m *Machine) Entity() string {
	return m.entity
}

// Requirement reports the permission the action demands on this entity.
// Every arc sharing an action verb carries the same permission, so the
// gate can run before the transition table is consulted.
func (m *Machine) Requirement(action Action) (policy.Resource, policy.Action, bool) {
	if m.open {
		if action != m.openVerb {
			return "", "", false
		}
		return m.openArc.Resource, m.openArc.Permission, true
	}
	for key, arc := range m.arcs {
		if key.action == action {
			return arc.Resource, arc.Permission, true
		}
	}
	return "", "", false
}

// Transition resolves the arc for (current state, action, target). Unlisted
// pairs are illegal; terminal states simply have no outgoing arcs.
func (m *Machine) Transition(snap Snapshot, action Action, target State) (Arc, error) {
	if m.open {
		if action != m.openVerb {
			return Arc{}, fmt.Errorf("%w: %s does not support %q", ErrIllegal, m.entity, action)
		}
		if err := ValidateStageTag(string(target)); err != nil {
			return Arc{}, fmt.Errorf("%w: %v", ErrIllegal, err)
		}
		arc := m.openArc
		arc.Next = target
		return arc, nil
	}
	arc, ok := m.arcs[arcKey{from: snap.State, action: action, to: target}]
	if !ok {
		return Arc{}, fmt.Errorf("%w: %s cannot %s from %s to %s", ErrIllegal, m.entity, action, snap.State, target)
	}
	if arc.Guard != nil {
		if err := arc.Guard(snap); err != nil {
			return Arc{}, fmt.Errorf("%w: %v", ErrIllegal, err)
		}
	}
	return arc, nil
}

// ValidateStageTag checks the shape of an open-graph stage value: trimmed,
// uppercase, 1..40 chars of [A-Z0-9_], starting with a letter.
func ValidateStageTag(tag string) error {
	if tag == "" {
		return errors.New("stage tag required")
	}
	if len(tag) > 40 {
		return errors.New("stage tag too long")
	}
	if tag[0] < 'A' || tag[0] > 'Z' {
		return errors.New("stage tag must start with an uppercase letter")
	}
	for i := 0; i < len(tag); i++ {
		c := tag[i]
		if (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' {
			continue
		}
		return fmt.Errorf("stage tag contains invalid character %q", c)
	}
	return nil
}
