// Package stats implements the member stats cache repository using
// PostgreSQL. The cache is derived data: every write is an upsert and a
// missing row is not an error condition worth special handling upstream.
package stats

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/hendrayp/komunitas-backend/internal/adapter/postgres"
	"github.com/hendrayp/komunitas-backend/internal/domain"
)

// Repo provides stats cache persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new stats cache repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const upsertSQL = `
INSERT INTO member_stats_cache (member_id, completed, pending, failed, updated_at)
VALUES ($1, $2, $3, $4, now())
ON CONFLICT (member_id) DO UPDATE
SET completed = EXCLUDED.completed,
    pending = EXCLUDED.pending,
    failed = EXCLUDED.failed,
    updated_at = now()
RETURNING member_id, completed, pending, failed, updated_at`

const getByMemberIDSQL = `
SELECT member_id, completed, pending, failed, updated_at
FROM member_stats_cache
WHERE member_id = $1`

// Upsert writes the cached counts for a member, replacing any prior row.
func (r *Repo) Upsert(ctx context.Context, memberID int64, completed, pending, failed int) (*domain.MemberStatsCache, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var c domain.MemberStatsCache
	err := querier.QueryRow(ctx, upsertSQL, memberID, completed, pending, failed).
		Scan(&c.MemberID, &c.Completed, &c.Pending, &c.Failed, &c.UpdatedAt)
	if err != nil {
		return nil, mapError(err, "member_stats_cache", memberID)
	}
	return &c, nil
}

// GetByMemberID returns the cached counts, or domain.ErrNotFound when the
// member has never been recomputed.
func (r *Repo) GetByMemberID(ctx context.Context, memberID int64) (*domain.MemberStatsCache, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var c domain.MemberStatsCache
	err := querier.QueryRow(ctx, getByMemberIDSQL, memberID).
		Scan(&c.MemberID, &c.Completed, &c.Pending, &c.Failed, &c.UpdatedAt)
	if err != nil {
		return nil, mapError(err, "member_stats_cache", memberID)
	}
	return &c, nil
}

// mapError converts pgx/pgconn errors into domain errors.
func mapError(err error, entity string, id int64) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s %d: %w", entity, id, err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %d: %w", entity, id, domain.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%s %d: %w", entity, id, domain.ErrAlreadyExists)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%s %d: %w", entity, id, domain.ErrNotFound)
		case "23514": // check_violation
			return fmt.Errorf("%s %d: %w", entity, id, domain.ErrValidation)
		}
	}

	return fmt.Errorf("%s %d: %w", entity, id, err)
}
