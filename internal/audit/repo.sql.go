package audit

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGRepository reads the trail from PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewPGRepository constructs a repository.
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// ListRecords returns records newest-first within the filter window.
func (r *PGRepository) ListRecords(ctx context.Context, filters TimelineFilters, limit, offset int) ([]Record, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, actor_id, actor_role, resource, resource_id, action, decision,
COALESCE(prior_state, ''), COALESCE(new_state, ''), at
FROM audit_records
WHERE ($1::timestamptz IS NULL OR at >= $1)
  AND ($2::timestamptz IS NULL OR at <= $2)
  AND ($3 = '' OR resource = $3)
  AND ($4 = '' OR decision = $4)
ORDER BY at DESC, id DESC
LIMIT $5 OFFSET $6`,
		nullableTime(filters.From), nullableTime(filters.To), filters.Resource, filters.Decision, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var records []Record
	for rows.Next() {
		var rec Record
		var decision string
		if err := rows.Scan(&rec.ID, &rec.ActorID, &rec.ActorRole, &rec.Resource, &rec.ResourceID,
			&rec.Action, &decision, &rec.PriorState, &rec.NewState, &rec.At); err != nil {
			return nil, err
		}
		rec.Decision = Decision(decision)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
