package content

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

const submissionColumns = `id, assignment_id, url, status, COALESCE(feedback, ''), created_at, updated_at`

func scanSubmission(row pgx.Row) (Submission, error) {
	var s Submission
	var status string
	err := row.Scan(&s.ID, &s.AssignmentID, &s.URL, &status, &s.Feedback, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return Submission{}, err
	}
	s.Status = lifecycle.State(status)
	return s, nil
}

// Create inserts the submission.
func (r *Repository) Create(ctx context.Context, submission Submission) (Submission, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO submissions (assignment_id, url, status, created_at, updated_at)
VALUES ($1, $2, $3, NOW(), NOW()) RETURNING id, created_at, updated_at`,
		submission.AssignmentID, submission.URL, string(submission.Status)).
		Scan(&submission.ID, &submission.CreatedAt, &submission.UpdatedAt)
	if err != nil {
		return Submission{}, err
	}
	return submission, nil
}

// Get returns one submission by id.
func (r *Repository) Get(ctx context.Context, id int64) (Submission, error) {
	s, err := scanSubmission(r.pool.QueryRow(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Submission{}, ErrNotFound
		}
		return Submission{}, err
	}
	return s, nil
}

// List returns submissions, optionally for one assignment.
func (r *Repository) List(ctx context.Context, assignmentID int64) ([]Submission, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+submissionColumns+` FROM submissions
WHERE $1::bigint = 0 OR assignment_id = $1 ORDER BY id DESC`, assignmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetSnapshot returns the workflow view of the submission.
func (r *Repository) GetSnapshot(ctx context.Context, id int64) (lifecycle.Snapshot, error) {
	var status string
	err := r.pool.QueryRow(ctx, `SELECT status FROM submissions WHERE id=$1`, id).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return lifecycle.Snapshot{}, workflow.ErrNotFound
		}
		return lifecycle.Snapshot{}, err
	}
	return lifecycle.Snapshot{State: lifecycle.State(status)}, nil
}

// CompareAndSetState writes the verdict and, when present, the reviewer
// feedback in one conditional statement so the pair commits or aborts
// together.
func (r *Repository) CompareAndSetState(ctx context.Context, id int64, expected, next lifecycle.State, companion workflow.Companion) error {
	tag, err := r.pool.Exec(ctx, `UPDATE submissions
SET status=$1, feedback=COALESCE($2, feedback), reviewed_at=NOW(), updated_at=NOW()
WHERE id=$3 AND status=$4`,
		string(next), companion.Feedback, id, string(expected))
	if err != nil {
		return workflow.MapCASError(err)
	}
	if tag.RowsAffected() == 0 {
		return workflow.StaleOrMissing(ctx, r.pool, `SELECT true FROM submissions WHERE id=$1`, id)
	}
	return nil
}
