package policy

import (
	"context"
	"errors"
	"sort"
)

// Store resolves permissions by merging persisted overrides onto the
// compiled-in defaults. It is a pure data component: the SUPER_ADMIN-only
// restriction on Upsert is enforced by the caller.
type Store struct {
	overrides OverrideRepository
}

// NewStore constructs a Store backed by the override repository.
func NewStore(overrides OverrideRepository) *Store {
	return &Store{overrides: overrides}
}

// Resolve answers whether the role may perform the action on the resource.
// An override wins over the default; a triple absent from both is denied.
// A store error propagates so the caller can fail closed.
func (s *Store) Resolve(ctx context.Context, role Role, resource Resource, action Action) (bool, error) {
	if s.overrides != nil {
		rule, err := s.overrides.GetOverride(ctx, role, resource, action)
		if err != nil {
			return false, err
		}
		if rule != nil {
			return rule.Allowed, nil
		}
	}
	allowed, ok := DefaultAllowed(role, resource, action)
	if !ok {
		return false, nil
	}
	return allowed, nil
}

// Upsert writes an override for the triple. Idempotent: writing the same
// rule twice leaves a single stored row.
func (s *Store) Upsert(ctx context.Context, rule Rule) error {
	if s.overrides == nil {
		return ErrStoreUnavailable
	}
	if _, err := ParseRole(string(rule.Role)); err != nil {
		return err
	}
	if rule.Resource == "" || rule.Action == "" {
		return errors.New("policy: resource and action required")
	}
	return s.overrides.UpsertOverride(ctx, rule)
}

// Effective returns the merged permission matrix: every default plus every
// override, overrides winning on shared triples.
func (s *Store) Effective(ctx context.Context) ([]Rule, error) {
	merged := make(map[string]Rule)
	for _, rule := range DefaultRules() {
		merged[string(rule.Role)+"/"+Key(rule.Resource, rule.Action)] = rule
	}
	if s.overrides != nil {
		rules, err := s.overrides.ListOverrides(ctx)
		if err != nil {
			return nil, err
		}
		for _, rule := range rules {
			merged[string(rule.Role)+"/"+Key(rule.Resource, rule.Action)] = rule
		}
	}
	out := make([]Rule, 0, len(merged))
	for _, rule := range merged {
		out = append(out, rule)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Role != out[j].Role {
			return out[i].Role < out[j].Role
		}
		if out[i].Resource != out[j].Resource {
			return out[i].Resource < out[j].Resource
		}
		return out[i].Action < out[j].Action
	})
	return out, nil
}
