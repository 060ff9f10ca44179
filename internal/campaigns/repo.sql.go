package campaigns

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

const campaignColumns = `id, brand_id, name, budget_cents, currency, status, approved, created_at, updated_at`

func scanCampaign(row pgx.Row) (Campaign, error) {
	var c Campaign
	var status string
	err := row.Scan(&c.ID, &c.BrandID, &c.Name, &c.BudgetCents, &c.Currency, &status, &c.Approved, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return Campaign{}, err
	}
	c.Status = lifecycle.State(status)
	return c, nil
}

// Create inserts the campaign.
func (r *Repository) Create(ctx context.Context, campaign Campaign) (Campaign, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO campaigns (brand_id, name, budget_cents, currency, status, approved, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, false, NOW(), NOW()) RETURNING id, created_at, updated_at`,
		campaign.BrandID, campaign.Name, campaign.BudgetCents, campaign.Currency, string(campaign.Status)).
		Scan(&campaign.ID, &campaign.CreatedAt, &campaign.UpdatedAt)
	if err != nil {
		return Campaign{}, err
	}
	return campaign, nil
}

// Get returns one campaign by id.
func (r *Repository) Get(ctx context.Context, id int64) (Campaign, error) {
	c, err := scanCampaign(r.pool.QueryRow(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Campaign{}, ErrNotFound
		}
		return Campaign{}, err
	}
	return c, nil
}

// List returns all campaigns newest-first.
func (r *Repository) List(ctx context.Context) ([]Campaign, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+campaignColumns+` FROM campaigns ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var campaigns []Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return campaigns, nil
}

// GetSnapshot returns the workflow view of the campaign.
func (r *Repository) GetSnapshot(ctx context.Context, id int64) (lifecycle.Snapshot, error) {
	var status string
	var approved bool
	err := r.pool.QueryRow(ctx, `SELECT status, approved FROM campaigns WHERE id=$1`, id).Scan(&status, &approved)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return lifecycle.Snapshot{}, workflow.ErrNotFound
		}
		return lifecycle.Snapshot{}, err
	}
	return lifecycle.Snapshot{State: lifecycle.State(status), Approved: approved}, nil
}

// CompareAndSetState writes status and, when present, the approved companion
// in one conditional statement so the pair commits or aborts together.
func (r *Repository) CompareAndSetState(ctx context.Context, id int64, expected, next lifecycle.State, companion workflow.Companion) error {
	tag, err := r.pool.Exec(ctx, `UPDATE campaigns
SET status=$1, approved=COALESCE($2, approved), updated_at=NOW()
WHERE id=$3 AND status=$4`,
		string(next), companion.Approved, id, string(expected))
	if err != nil {
		return workflow.MapCASError(err)
	}
	if tag.RowsAffected() == 0 {
		return workflow.StaleOrMissing(ctx, r.pool, `SELECT true FROM campaigns WHERE id=$1`, id)
	}
	return nil
}
