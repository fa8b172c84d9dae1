// Package boostevent implements the BoostEvent repository using PostgreSQL.
package boostevent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/hendrayp/komunitas-backend/internal/adapter/postgres"
	"github.com/hendrayp/komunitas-backend/internal/domain"
)

// Repo provides boost event persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new boost event repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const insertSQL = `
INSERT INTO boost_events (key, name, value, starts_at, ends_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, created_at`

const listActiveAtSQL = `
SELECT id, key, name, value, starts_at, ends_at, created_at
FROM boost_events
WHERE starts_at <= $1 AND ends_at >= $1
ORDER BY starts_at, id`

const listAllSQL = `
SELECT id, key, name, value, starts_at, ends_at, created_at
FROM boost_events
ORDER BY starts_at DESC, id DESC`

// Create inserts a boost event. A duplicate key returns
// domain.ErrAlreadyExists.
func (r *Repo) Create(ctx context.Context, e *domain.BoostEvent) (*domain.BoostEvent, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	out := *e
	err := querier.QueryRow(ctx, insertSQL, e.Key, e.Name, e.Value, e.StartsAt, e.EndsAt).
		Scan(&out.ID, &out.CreatedAt)
	if err != nil {
		return nil, mapError(err, "boost_event", 0)
	}
	return &out, nil
}

// ListActiveAt returns events whose window contains t, both ends inclusive.
func (r *Repo) ListActiveAt(ctx context.Context, t time.Time) ([]*domain.BoostEvent, error) {
	return r.list(ctx, listActiveAtSQL, t)
}

// ListAll returns every boost event, newest window first.
func (r *Repo) ListAll(ctx context.Context) ([]*domain.BoostEvent, error) {
	return r.list(ctx, listAllSQL)
}

func (r *Repo) list(ctx context.Context, sql string, args ...any) ([]*domain.BoostEvent, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query boost_events: %w", err)
	}
	defer rows.Close()

	var events []*domain.BoostEvent
	for rows.Next() {
		var e domain.BoostEvent
		if err := rows.Scan(&e.ID, &e.Key, &e.Name, &e.Value, &e.StartsAt, &e.EndsAt, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan boost_event row: %w", err)
		}
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate boost_event rows: %w", err)
	}
	return events, nil
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
