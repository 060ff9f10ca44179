package workflow

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MapCASError maps PostgreSQL serialization failures onto ErrConflict so the
// caller sees one conflict kind regardless of how the race surfaced.
func MapCASError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "40001" {
		return ErrConflict
	}
	return err
}

// StaleOrMissing distinguishes a lost optimistic race from an unknown id
// after a conditional update touched zero rows.
func StaleOrMissing(ctx context.Context, pool *pgxpool.Pool, existsQuery string, id int64) error {
	var exists bool
	if err := pool.QueryRow(ctx, existsQuery, id).Scan(&exists); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return ErrConflict
}
