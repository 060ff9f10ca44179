package policy

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence for overrides.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetOverride returns the override row for the triple, or nil when absent.
func (r *Repository) GetOverride(ctx context.Context, role Role, resource Resource, action Action) (*Rule, error) {
	var rule Rule
	err := r.pool.QueryRow(ctx, `SELECT role, resource, action, allowed, updated_at
FROM permission_overrides WHERE role=$1 AND resource=$2 AND action=$3`, string(role), string(resource), string(action)).
		Scan(&rule.Role, &rule.Resource, &rule.Action, &rule.Allowed, &rule.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return &rule, nil
}

// ListOverrides returns every override row.
func (r *Repository) ListOverrides(ctx context.Context) ([]Rule, error) {
	rows, err := r.pool.Query(ctx, `SELECT role, resource, action, allowed, updated_at
FROM permission_overrides ORDER BY role, resource, action`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	defer rows.Close()
	var rules []Rule
	for rows.Next() {
		var rule Rule
		if err := rows.Scan(&rule.Role, &rule.Resource, &rule.Action, &rule.Allowed, &rule.UpdatedAt); err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rules, nil
}

// UpsertOverride writes the rule, replacing any existing row for the triple.
func (r *Repository) UpsertOverride(ctx context.Context, rule Rule) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO permission_overrides (role, resource, action, allowed, updated_at)
VALUES ($1, $2, $3, $4, NOW())
ON CONFLICT (role, resource, action) DO UPDATE SET allowed = EXCLUDED.allowed, updated_at = NOW()`,
		string(rule.Role), string(rule.Resource), string(rule.Action), rule.Allowed)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
