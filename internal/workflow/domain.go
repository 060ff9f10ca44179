// Package workflow orchestrates gated state transitions: permission check,
// lifecycle validation, optimistic persistence, audit, side effects.
package workflow

import (
	"errors"

	"github.com/amplio-agency/amplio/internal/lifecycle"
	"github.com/amplio-agency/amplio/internal/policy"
)

// EntityType identifies which lifecycle and store a request targets.
type EntityType string

const (
	TypeBrand      EntityType = "brand"
	TypeCampaign   EntityType = "campaign"
	TypeInfluencer EntityType = "influencer"
	TypeAssignment EntityType = "assignment"
	TypeSubmission EntityType = "submission"
	TypePayment    EntityType = "payment"
	TypeAdminUser  EntityType = "admin-user"
)

// Request describes one transition attempt.
type Request struct {
	Actor    policy.Actor
	Type     EntityType
	ID       int64
	Action   lifecycle.Action
	Target   lifecycle.State
	Feedback string
}

// Outcome reports an applied transition.
type Outcome struct {
	Prior    lifecycle.State
	New      lifecycle.State
	Approved bool
}

var (
	// ErrDenied indicates the permission check failed.
	ErrDenied = errors.New("workflow: denied")
	// ErrSelfProtection indicates an actor targeted its own administrative
	// record destructively. Distinct from ErrDenied by design.
	ErrSelfProtection = errors.New("workflow: actors may not remove their own account")
	// ErrIllegal indicates the requested transition is not in the entity's
	// table. Re-exported so callers need only this package.
	ErrIllegal = lifecycle.ErrIllegal
	// ErrNotFound indicates the entity id is unknown.
	ErrNotFound = errors.New("workflow: not found")
	// ErrConflict indicates the optimistic state check lost a race.
	ErrConflict = errors.New("workflow: state changed concurrently")
	// ErrStore indicates the persistence collaborator is unreachable.
	ErrStore = errors.New("workflow: store failure")
	// ErrUnknownEntity indicates no lifecycle is registered for the type.
	ErrUnknownEntity = errors.New("workflow: unknown entity type")
)
