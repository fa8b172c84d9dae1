// Package member implements the Member repository using PostgreSQL.
package member

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

// Repo provides member persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new member repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const insertSQL = `
INSERT INTO members (display_name, email)
VALUES ($1, $2)
RETURNING id, display_name, email, loyalty_point, coin, created_at`

const getByIDSQL = `
SELECT id, display_name, email, loyalty_point, coin, created_at
FROM members
WHERE id = $1`

// getByIDForUpdateSQL row-locks the member for the duration of the enclosing
// transaction. Ledger mutations read balances through this lock so that
// concurrent awards serialize instead of losing updates.
const getByIDForUpdateSQL = getByIDSQL + `
FOR UPDATE`

const updateBalancesSQL = `
UPDATE members
SET loyalty_point = $2, coin = $3
WHERE id = $1
RETURNING id, display_name, email, loyalty_point, coin, created_at`

// Create inserts a new member with zero balances.
func (r *Repo) Create(ctx context.Context, displayName, email string) (*domain.Member, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var m domain.Member
	err := querier.QueryRow(ctx, insertSQL, displayName, email).
		Scan(&m.ID, &m.DisplayName, &m.Email, &m.LoyaltyPoint, &m.Coin, &m.CreatedAt)
	if err != nil {
		return nil, mapError(err, "member", 0)
	}
	return &m, nil
}

// GetByID returns a member by ID.
func (r *Repo) GetByID(ctx context.Context, id int64) (*domain.Member, error) {
	return r.get(ctx, getByIDSQL, id)
}

// GetByIDForUpdate returns a member by ID with a row lock. It is only
// meaningful inside a transaction context.
func (r *Repo) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Member, error) {
	return r.get(ctx, getByIDForUpdateSQL, id)
}

func (r *Repo) get(ctx context.Context, sql string, id int64) (*domain.Member, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var m domain.Member
	err := querier.QueryRow(ctx, sql, id).
		Scan(&m.ID, &m.DisplayName, &m.Email, &m.LoyaltyPoint, &m.Coin, &m.CreatedAt)
	if err != nil {
		return nil, mapError(err, "member", id)
	}
	return &m, nil
}

// UpdateBalances sets both balances to the given absolute values. The CHECK
// constraints on members reject negative balances and coin > loyalty_point
// even if a caller slips past the service-level validation.
func (r *Repo) UpdateBalances(ctx context.Context, id, loyaltyPoint, coin int64) (*domain.Member, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var m domain.Member
	err := querier.QueryRow(ctx, updateBalancesSQL, id, loyaltyPoint, coin).
		Scan(&m.ID, &m.DisplayName, &m.Email, &m.LoyaltyPoint, &m.Coin, &m.CreatedAt)
	if err != nil {
		return nil, mapError(err, "member", id)
	}
	return &m, nil
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
