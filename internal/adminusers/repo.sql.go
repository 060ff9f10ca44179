package adminusers

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amplio-agency/amplio/internal/lifecycle"
	"github.com/amplio-agency/amplio/internal/policy"
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

const adminUserColumns = `id, email, name, role, password_hash, status, created_at, updated_at`

func scanAdminUser(row pgx.Row) (AdminUser, error) {
	var u AdminUser
	var role, status string
	err := row.Scan(&u.ID, &u.Email, &u.Name, &role, &u.PasswordHash, &status, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return AdminUser{}, err
	}
	u.Role = policy.Role(role)
	u.Status = lifecycle.State(status)
	return u, nil
}

// Create inserts the admin user.
func (r *Repository) Create(ctx context.Context, user AdminUser) (AdminUser, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO admin_users (email, name, role, password_hash, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, NOW(), NOW()) RETURNING id, created_at, updated_at`,
		user.Email, user.Name, string(user.Role), user.PasswordHash, string(user.Status)).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return AdminUser{}, ErrEmailTaken
		}
		return AdminUser{}, err
	}
	return user, nil
}

// Get returns one admin user by id.
func (r *Repository) Get(ctx context.Context, id int64) (AdminUser, error) {
	u, err := scanAdminUser(r.pool.QueryRow(ctx, `SELECT `+adminUserColumns+` FROM admin_users WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return AdminUser{}, ErrNotFound
		}
		return AdminUser{}, err
	}
	return u, nil
}

// List returns all admin users, deleted ones included.
func (r *Repository) List(ctx context.Context) ([]AdminUser, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+adminUserColumns+` FROM admin_users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []AdminUser
	for rows.Next() {
		u, err := scanAdminUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetSnapshot returns the workflow view of the admin user.
func (r *Repository) GetSnapshot(ctx context.Context, id int64) (lifecycle.Snapshot, error) {
	var status string
	err := r.pool.QueryRow(ctx, `SELECT status FROM admin_users WHERE id=$1`, id).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return lifecycle.Snapshot{}, workflow.ErrNotFound
		}
		return lifecycle.Snapshot{}, err
	}
	return lifecycle.Snapshot{State: lifecycle.State(status)}, nil
}

// CompareAndSetState writes the status only when the expected one still holds.
func (r *Repository) CompareAndSetState(ctx context.Context, id int64, expected, next lifecycle.State, _ workflow.Companion) error {
	tag, err := r.pool.Exec(ctx, `UPDATE admin_users SET status=$1, updated_at=NOW() WHERE id=$2 AND status=$3`,
		string(next), id, string(expected))
	if err != nil {
		return workflow.MapCASError(err)
	}
	if tag.RowsAffected() == 0 {
		return workflow.StaleOrMissing(ctx, r.pool, `SELECT true FROM admin_users WHERE id=$1`, id)
	}
	return nil
}
