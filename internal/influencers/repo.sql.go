package influencers

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amplio-agency/amplio/internal/lifecycle"
	"github.com/amplio-agency/amplio/internal/workflow"
)

// Repository provides PostgreSQL backed influencer persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const influencerColumns = `id, handle, platform, rate_cents, status, created_at, updated_at`

func scanInfluencer(row pgx.Row) (Influencer, error) {
	var i Influencer
	var status string
	err := row.Scan(&i.ID, &i.Handle, &i.Platform, &i.RateCents, &status, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return Influencer{}, err
	}
	i.Status = lifecycle.State(status)
	return i, nil
}

// Create inserts the influencer.
func (r *Repository) Create(ctx context.Context, influencer Influencer) (Influencer, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO influencers (handle, platform, rate_cents, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, NOW(), NOW()) RETURNING id, created_at, updated_at`,
		influencer.Handle, influencer.Platform, influencer.RateCents, string(influencer.Status)).
		Scan(&influencer.ID, &influencer.CreatedAt, &influencer.UpdatedAt)
	if err != nil {
		return Influencer{}, err
	}
	return influencer, nil
}

// Get returns one influencer by id.
func (r *Repository) Get(ctx context.Context, id int64) (Influencer, error) {
	i, err := scanInfluencer(r.pool.QueryRow(ctx, `SELECT `+influencerColumns+` FROM influencers WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Influencer{}, ErrNotFound
		}
		return Influencer{}, err
	}
	return i, nil
}

// List returns the roster newest-first.
func (r *Repository) List(ctx context.Context) ([]Influencer, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+influencerColumns+` FROM influencers ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Influencer
	for rows.Next() {
		i, err := scanInfluencer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetSnapshot returns the workflow view of the influencer.
func (r *Repository) GetSnapshot(ctx context.Context, id int64) (lifecycle.Snapshot, error) {
	var status string
	err := r.pool.QueryRow(ctx, `SELECT status FROM influencers WHERE id=$1`, id).Scan(&status)
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
	tag, err := r.pool.Exec(ctx, `UPDATE influencers SET status=$1, updated_at=NOW() WHERE id=$2 AND status=$3`,
		string(next), id, string(expected))
	if err != nil {
		return workflow.MapCASError(err)
	}
	if tag.RowsAffected() == 0 {
		return workflow.StaleOrMissing(ctx, r.pool, `SELECT true FROM influencers WHERE id=$1`, id)
	}
	return nil
}

// AssignmentRepository provides PostgreSQL backed assignment persistence.
type AssignmentRepository struct {
	pool *pgxpool.Pool
}

// NewAssignmentRepository constructs an assignment repository.
func NewAssignmentRepository(pool *pgxpool.Pool) *AssignmentRepository {
	return &AssignmentRepository{pool: pool}
}

const assignmentColumns = `id, campaign_id, influencer_id, status, created_at, updated_at`

func scanAssignment(row pgx.Row) (Assignment, error) {
	var a Assignment
	var status string
	err := row.Scan(&a.ID, &a.CampaignID, &a.InfluencerID, &status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return Assignment{}, err
	}
	a.Status = lifecycle.State(status)
	return a, nil
}

// CreateAssignment inserts the assignment.
func (r *AssignmentRepository) CreateAssignment(ctx context.Context, assignment Assignment) (Assignment, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO assignments (campaign_id, influencer_id, status, created_at, updated_at)
VALUES ($1, $2, $3, NOW(), NOW()) RETURNING id, created_at, updated_at`,
		assignment.CampaignID, assignment.InfluencerID, string(assignment.Status)).
		Scan(&assignment.ID, &assignment.CreatedAt, &assignment.UpdatedAt)
	if err != nil {
		return Assignment{}, err
	}
	return assignment, nil
}

// GetAssignment returns one assignment by id.
func (r *AssignmentRepository) GetAssignment(ctx context.Context, id int64) (Assignment, error) {
	a, err := scanAssignment(r.pool.QueryRow(ctx, `SELECT `+assignmentColumns+` FROM assignments WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Assignment{}, ErrNotFound
		}
		return Assignment{}, err
	}
	return a, nil
}

// ListAssignments returns assignments, optionally for one campaign.
func (r *AssignmentRepository) ListAssignments(ctx context.Context, campaignID int64) ([]Assignment, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+assignmentColumns+` FROM assignments
WHERE $1::bigint = 0 OR campaign_id = $1 ORDER BY id DESC`, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetSnapshot returns the workflow view of the assignment.
func (r *AssignmentRepository) GetSnapshot(ctx context.Context, id int64) (lifecycle.Snapshot, error) {
	var status string
	err := r.pool.QueryRow(ctx, `SELECT status FROM assignments WHERE id=$1`, id).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return lifecycle.Snapshot{}, workflow.ErrNotFound
		}
		return lifecycle.Snapshot{}, err
	}
	return lifecycle.Snapshot{State: lifecycle.State(status)}, nil
}

// CompareAndSetState writes the status only when the expected one still holds.
func (r *AssignmentRepository) CompareAndSetState(ctx context.Context, id int64, expected, next lifecycle.State, _ workflow.Companion) error {
	tag, err := r.pool.Exec(ctx, `UPDATE assignments SET status=$1, updated_at=NOW() WHERE id=$2 AND status=$3`,
		string(next), id, string(expected))
	if err != nil {
		return workflow.MapCASError(err)
	}
	if tag.RowsAffected() == 0 {
		return workflow.StaleOrMissing(ctx, r.pool, `SELECT true FROM assignments WHERE id=$1`, id)
	}
	return nil
}
