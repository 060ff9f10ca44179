package policy

import "context"

// OverrideRepository persists runtime permission overrides.
type OverrideRepository interface {
	// GetOverride returns nil when no override exists for the triple.
	GetOverride(ctx context.Context, role Role, resource Resource, action Action) (*Rule, error)
	ListOverrides(ctx context.Context) ([]Rule, error)
	// UpsertOverride replaces any existing row for the same triple.
	UpsertOverride(ctx context.Context, rule Rule) error
}
