package policy

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type memoryOverrides struct {
	rules map[string]Rule
	err   error
}

func newMemoryOverrides() *memoryOverrides {
	return &memoryOverrides{rules: make(map[string]Rule)}
}

func overrideKey(role Role, resource Resource, action Action) string {
	return string(role) + "/" + Key(resource, action)
}

func (m *memoryOverrides) GetOverride(_ context.Context, role Role, resource Resource, action Action) (*Rule, error) {
	if m.err != nil {
		return nil, m.err
	}
	if rule, ok := m.rules[overrideKey(role, resource, action)]; ok {
		out := rule
		return &out, nil
	}
	return nil, nil
}

func (m *memoryOverrides) ListOverrides(_ context.Context) ([]Rule, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]Rule, 0, len(m.rules))
	for _, rule := range m.rules {
		out = append(out, rule)
	}
	return out, nil
}

func (m *memoryOverrides) UpsertOverride(_ context.Context, rule Rule) error {
	if m.err != nil {
		return m.err
	}
	m.rules[overrideKey(rule.Role, rule.Resource, rule.Action)] = rule
	return nil
}

func TestResolveDefaultsAndOverrides(t *testing.T) {
	ctx := context.Background()
	overrides := newMemoryOverrides()
	store := NewStore(overrides)

	// Compiled-in default.
	allowed, err := store.Resolve(ctx, RoleAdmin, ResourceBrand, ActionCreate)
	require.NoError(t, err)
	require.True(t, allowed)

	// Absent from both sources: deny.
	allowed, err = store.Resolve(ctx, RoleStaff, ResourcePayment, ActionEdit)
	require.NoError(t, err)
	require.False(t, allowed)

	// ADMIN has no campaign approval by default.
	allowed, err = store.Resolve(ctx, RoleAdmin, ResourceCampaign, ActionApprove)
	require.NoError(t, err)
	require.False(t, allowed)

	// A stored override wins over the default.
	require.NoError(t, store.Upsert(ctx, Rule{Role: RoleAdmin, Resource: ResourceCampaign, Action: ActionApprove, Allowed: true}))
	allowed, err = store.Resolve(ctx, RoleAdmin, ResourceCampaign, ActionApprove)
	require.NoError(t, err)
	require.True(t, allowed)

	// And a deny override revokes a default grant.
	require.NoError(t, store.Upsert(ctx, Rule{Role: RoleAdmin, Resource: ResourceBrand, Action: ActionCreate, Allowed: false}))
	allowed, err = store.Resolve(ctx, RoleAdmin, ResourceBrand, ActionCreate)
	require.NoError(t, err)
	require.False(t, allowed)
}

func TestUpsertIdempotent(t *testing.T) {
	ctx := context.Background()
	overrides := newMemoryOverrides()
	store := NewStore(overrides)

	rule := Rule{Role: RoleManager, Resource: ResourcePayment, Action: ActionEdit, Allowed: true}
	require.NoError(t, store.Upsert(ctx, rule))
	require.NoError(t, store.Upsert(ctx, rule))
	require.Len(t, overrides.rules, 1)

	allowed, err := store.Resolve(ctx, RoleManager, ResourcePayment, ActionEdit)
	require.NoError(t, err)
	require.True(t, allowed)
}

func TestUpsertValidatesTriple(t *testing.T) {
	ctx := context.Background()
	store := NewStore(newMemoryOverrides())

	require.Error(t, store.Upsert(ctx, Rule{Role: "INTERN", Resource: ResourceBrand, Action: ActionView}))
	require.Error(t, store.Upsert(ctx, Rule{Role: RoleAdmin, Resource: "", Action: ActionView}))
	require.Error(t, store.Upsert(ctx, Rule{Role: RoleAdmin, Resource: ResourceBrand, Action: ""}))
}

func TestResolvePropagatesStoreError(t *testing.T) {
	ctx := context.Background()
	overrides := newMemoryOverrides()
	overrides.err = errors.New("connection refused")
	store := NewStore(overrides)

	_, err := store.Resolve(ctx, RoleAdmin, ResourceBrand, ActionView)
	require.Error(t, err)
}

func TestEffectiveMergesOverrides(t *testing.T) {
	ctx := context.Background()
	overrides := newMemoryOverrides()
	store := NewStore(overrides)

	base, err := store.Effective(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, base)

	require.NoError(t, store.Upsert(ctx, Rule{Role: RoleStaff, Resource: ResourceContent, Action: ActionReview, Allowed: true}))
	merged, err := store.Effective(ctx)
	require.NoError(t, err)
	require.Len(t, merged, len(base)+1)

	var found bool
	for _, rule := range merged {
		if rule.Role == RoleStaff && rule.Resource == ResourceContent && rule.Action == ActionReview {
			found = true
			require.True(t, rule.Allowed)
		}
	}
	require.True(t, found)
}
