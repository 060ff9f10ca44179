package brands

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amplio-agency/amplio/internal/lifecycle"
	"github.com/amplio-agency/amplio/internal/workflow"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts the brand.
func (r *Repository) Create(ctx context.Context, brand Brand) (Brand, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO brands (name, contact, stage, created_at, updated_at)
VALUES ($1, $2, $3, NOW(), NOW()) RETURNING id, created_at, updated_at`,
		brand.Name, brand.Contact, string(brand.Stage)).
		Scan(&brand.ID, &brand.CreatedAt, &brand.UpdatedAt)
	if err != nil {
		return Brand{}, err
	}
	return brand, nil
}

// Get returns one brand by id.
func (r *Repository) Get(ctx context.Context, id int64) (Brand, error) {
	var brand Brand
	var stage string
	err := r.pool.QueryRow(ctx, `SELECT id, name, contact, stage, created_at, updated_at FROM brands WHERE id=$1`, id).
		Scan(&brand.ID, &brand.Name, &brand.Contact, &stage, &brand.CreatedAt, &brand.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Brand{}, ErrNotFound
		}
		return Brand{}, err
	}
	brand.Stage = lifecycle.State(stage)
	return brand, nil
}

// List returns all brands newest-first.
func (r *Repository) List(ctx context.Context) ([]Brand, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, contact, stage, created_at, updated_at FROM brands ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var brands []Brand
	for rows.Next() {
		var brand Brand
		var stage string
		if err := rows.Scan(&brand.ID, &brand.Name, &brand.Contact, &stage, &brand.CreatedAt, &brand.UpdatedAt); err != nil {
			return nil, err
		}
		brand.Stage = lifecycle.State(stage)
		brands = append(brands, brand)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return brands, nil
}

// GetSnapshot returns the workflow view of the brand.
func (r *Repository) GetSnapshot(ctx context.Context, id int64) (lifecycle.Snapshot, error) {
	var stage string
	err := r.pool.QueryRow(ctx, `SELECT stage FROM brands WHERE id=$1`, id).Scan(&stage)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return lifecycle.Snapshot{}, workflow.ErrNotFound
		}
		return lifecycle.Snapshot{}, err
	}
	return lifecycle.Snapshot{State: lifecycle.State(stage)}, nil
}

// CompareAndSetState moves the stage only if it still matches the one read.
func (r *Repository) CompareAndSetState(ctx context.Context, id int64, expected, next lifecycle.State, _ workflow.Companion) error {
	tag, err := r.pool.Exec(ctx, `UPDATE brands SET stage=$1, updated_at=NOW() WHERE id=$2 AND stage=$3`,
		string(next), id, string(expected))
	if err != nil {
		return workflow.MapCASError(err)
	}
	if tag.RowsAffected() == 0 {
		return workflow.StaleOrMissing(ctx, r.pool, `SELECT true FROM brands WHERE id=$1`, id)
	}
	return nil
}
