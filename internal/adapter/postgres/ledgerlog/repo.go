// Package ledgerlog implements the transaction log repository using
// PostgreSQL. The log is append-only: there is no update or delete path.
// Per-currency history and the drift audit are derived with raw SQL; the
// paginated history view is built with squirrel because the currency decides
// which delta column is selected.
package ledgerlog

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/hendrayp/komunitas-backend/internal/adapter/postgres"
	"github.com/hendrayp/komunitas-backend/internal/domain"
)

// Repo provides transaction log persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new transaction log repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const insertSQL = `
INSERT INTO transaction_log (
    member_id, type, event_type, loyalty_delta, coin_delta,
    description, reference, loyalty_before, loyalty_after, coin_before, coin_after
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING id, created_at`

const listByMemberSQL = `
SELECT id, member_id, type, event_type, loyalty_delta, coin_delta,
       description, reference, loyalty_before, loyalty_after, coin_before, coin_after, created_at
FROM transaction_log
WHERE member_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3`

const countByMemberSQL = `SELECT count(*) FROM transaction_log WHERE member_id = $1`

const sumDeltasSQL = `
SELECT coalesce(sum(loyalty_delta), 0), coalesce(sum(coin_delta), 0)
FROM transaction_log
WHERE member_id = $1`

// listDriftSQL compares stored balances against the replayed log for every
// member. A member with no log rows and zero balances does not drift.
const listDriftSQL = `
SELECT
    m.id,
    m.loyalty_point,
    m.coin,
    coalesce(sum(tl.loyalty_delta), 0) AS loyalty_from_log,
    coalesce(sum(tl.coin_delta), 0) AS coin_from_log,
    (m.coin <= m.loyalty_point) AS invariant_ok
FROM members m
LEFT JOIN transaction_log tl ON tl.member_id = m.id
GROUP BY m.id, m.loyalty_point, m.coin
HAVING m.loyalty_point <> coalesce(sum(tl.loyalty_delta), 0)
    OR m.coin <> coalesce(sum(tl.coin_delta), 0)
    OR m.coin > m.loyalty_point
ORDER BY m.id`

// Insert appends one entry to the log and fills in its ID and CreatedAt.
func (r *Repo) Insert(ctx context.Context, e *domain.TransactionEntry) (*domain.TransactionEntry, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	out := *e
	err := querier.QueryRow(ctx, insertSQL,
		e.MemberID, e.Type, e.EventType, e.LoyaltyDelta, e.CoinDelta,
		e.Description, e.Reference, e.LoyaltyBefore, e.LoyaltyAfter, e.CoinBefore, e.CoinAfter,
	).Scan(&out.ID, &out.CreatedAt)
	if err != nil {
		return nil, mapError(err, "transaction_log", e.MemberID)
	}
	return &out, nil
}

// ListByMember returns log entries for a member, newest first, with
// limit/offset pagination. Returns entries, total count, and error.
func (r *Repo) ListByMember(ctx context.Context, memberID int64, limit, offset int) ([]*domain.TransactionEntry, int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var total int
	if err := querier.QueryRow(ctx, countByMemberSQL, memberID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transaction_log by member: %w", err)
	}

	effectiveLimit := limit
	if effectiveLimit <= 0 {
		effectiveLimit = 2147483647
	}

	rows, err := querier.Query(ctx, listByMemberSQL, memberID, effectiveLimit, offset)
	if err != nil {
		return nil, 0, mapError(err, "transaction_log", memberID)
	}
	defer rows.Close()

	var entries []*domain.TransactionEntry
	for rows.Next() {
		var e domain.TransactionEntry
		if err := rows.Scan(
			&e.ID, &e.MemberID, &e.Type, &e.EventType, &e.LoyaltyDelta, &e.CoinDelta,
			&e.Description, &e.Reference, &e.LoyaltyBefore, &e.LoyaltyAfter, &e.CoinBefore, &e.CoinAfter, &e.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan transaction_log row: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate transaction_log rows: %w", err)
	}
	return entries, total, nil
}

// HistoryByCurrency returns the per-currency view of the log for a member:
// only entries that moved the requested currency, newest first. The legacy
// schema stored these in separate tables; both views now derive from the log.
func (r *Repo) HistoryByCurrency(ctx context.Context, memberID int64, currency domain.Currency, limit, offset int) ([]*domain.HistoryEntry, int, error) {
	deltaCol := "loyalty_delta"
	if currency == domain.CurrencyCoin {
		deltaCol = "coin_delta"
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)

	countSQL, countArgs, err := psql.
		Select("count(*)").
		From("transaction_log").
		Where(sq.Eq{"member_id": memberID}).
		Where(sq.NotEq{deltaCol: 0}).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build history count query: %w", err)
	}

	var total int
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count history by currency: %w", err)
	}

	builder := psql.
		Select("member_id", deltaCol, "description", "event_type", "created_at").
		From("transaction_log").
		Where(sq.Eq{"member_id": memberID}).
		Where(sq.NotEq{deltaCol: 0}).
		OrderBy("created_at DESC", "id DESC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}
	if offset > 0 {
		builder = builder.Offset(uint64(offset))
	}

	listSQL, listArgs, err := builder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build history query: %w", err)
	}

	rows, err := querier.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, mapError(err, "transaction_log", memberID)
	}
	defer rows.Close()

	var entries []*domain.HistoryEntry
	for rows.Next() {
		var e domain.HistoryEntry
		if err := rows.Scan(&e.MemberID, &e.Delta, &e.Description, &e.EventType, &e.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan history row: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate history rows: %w", err)
	}
	return entries, total, nil
}

// SumDeltas replays the log for a member and returns the implied balances.
func (r *Repo) SumDeltas(ctx context.Context, memberID int64) (loyalty, coin int64, err error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	if err := querier.QueryRow(ctx, sumDeltasSQL, memberID).Scan(&loyalty, &coin); err != nil {
		return 0, 0, fmt.Errorf("sum transaction_log deltas: %w", err)
	}
	return loyalty, coin, nil
}

// ListDrift returns every member whose stored balances disagree with the
// replayed log or whose coin exceeds loyalty_point.
func (r *Repo) ListDrift(ctx context.Context) ([]*domain.LedgerDrift, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, listDriftSQL)
	if err != nil {
		return nil, fmt.Errorf("query ledger drift: %w", err)
	}
	defer rows.Close()

	var drifts []*domain.LedgerDrift
	for rows.Next() {
		var d domain.LedgerDrift
		if err := rows.Scan(&d.MemberID, &d.LoyaltyPoint, &d.Coin, &d.LoyaltyFromLog, &d.CoinFromLog, &d.InvariantOK); err != nil {
			return nil, fmt.Errorf("scan ledger drift row: %w", err)
		}
		drifts = append(drifts, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger drift rows: %w", err)
	}
	return drifts, nil
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
