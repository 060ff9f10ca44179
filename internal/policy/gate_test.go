package policy

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/amplio-agency/amplio/internal/audit"
)

type captureTrail struct {
	records []audit.Record
}

func (c *captureTrail) Append(_ context.Context, rec audit.Record) {
	c.records = append(c.records, rec)
}

func TestGateSuperAdminBypass(t *testing.T) {
	ctx := context.Background()
	overrides := newMemoryOverrides()
	// Even a stored deny cannot touch the top role.
	require.NoError(t, overrides.UpsertOverride(ctx, Rule{Role: RoleSuperAdmin, Resource: ResourceBrand, Action: ActionView, Allowed: false}))
	gate := NewGate(NewStore(overrides), nil, nil)

	decision := gate.Evaluate(ctx, Actor{ID: 1, Role: RoleSuperAdmin}, ResourceBrand, ActionView)
	require.True(t, decision.Allowed)
	require.Equal(t, reasonSuperAdmin, decision.Reason)
}

func TestGateCheckEmitsOneRecord(t *testing.T) {
	ctx := context.Background()
	trail := &captureTrail{}
	gate := NewGate(NewStore(newMemoryOverrides()), trail, nil)

	decision := gate.Check(ctx, Actor{ID: 7, Role: RoleAdmin}, ResourceBrand, ActionCreate)
	require.True(t, decision.Allowed)
	require.Len(t, trail.records, 1)
	require.Equal(t, audit.DecisionAllow, trail.records[0].Decision)
	require.Equal(t, int64(7), trail.records[0].ActorID)
	require.Equal(t, "brand", trail.records[0].Resource)
	require.Equal(t, "create", trail.records[0].Action)

	decision = gate.Check(ctx, Actor{ID: 7, Role: RoleStaff}, ResourceBrand, ActionCreate)
	require.False(t, decision.Allowed)
	require.Len(t, trail.records, 2)
	require.Equal(t, audit.DecisionDenied, trail.records[1].Decision)
}

func TestGateFailsClosedOnStoreError(t *testing.T) {
	ctx := context.Background()
	overrides := newMemoryOverrides()
	overrides.err = errors.New("connection refused")
	gate := NewGate(NewStore(overrides), nil, nil)

	// ADMIN holds brand:view by default, but a broken store must not fall
	// back to the compiled-in table.
	decision := gate.Evaluate(ctx, Actor{ID: 2, Role: RoleAdmin}, ResourceBrand, ActionView)
	require.False(t, decision.Allowed)
	require.Equal(t, reasonStoreFailed, decision.Reason)

	// The bypass still works: it never consults the store.
	decision = gate.Evaluate(ctx, Actor{ID: 1, Role: RoleSuperAdmin}, ResourceBrand, ActionView)
	require.True(t, decision.Allowed)
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole(" manager ")
	require.NoError(t, err)
	require.Equal(t, RoleManager, role)

	_, err = ParseRole("wizard")
	require.Error(t, err)
}
