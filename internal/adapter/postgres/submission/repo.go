// Package submission implements the Submission repository using PostgreSQL.
// Status transitions go through a compare-and-set UPDATE so that concurrent
// verifier callbacks, admin reviews, and the overdue sweeper cannot overwrite
// a terminal state.
package submission

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/hendrayp/komunitas-backend/internal/adapter/postgres"
	"github.com/hendrayp/komunitas-backend/internal/domain"
)

// Repo provides submission persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new submission repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const columns = `id, member_id, task_id, status, started_at, verified_at, evidence_url, note, admin_notes, confidence, extracted_text, updated_at`

const insertSQL = `
INSERT INTO submissions (member_id, task_id, status)
VALUES ($1, $2, 'PENDING')
RETURNING ` + columns

const getByIDSQL = `
SELECT ` + columns + `
FROM submissions
WHERE id = $1`

const getByMemberAndTaskSQL = `
SELECT ` + columns + `
FROM submissions
WHERE member_id = $1 AND task_id = $2`

const listByMemberSQL = `
SELECT ` + columns + `
FROM submissions
WHERE member_id = $1
ORDER BY started_at DESC, id DESC`

// resetForRetrySQL reopens a failed attempt in place. The UNIQUE
// (member_id, task_id) row is reused so a member never holds two attempts
// for the same task.
const resetForRetrySQL = `
UPDATE submissions
SET status = 'PENDING', started_at = now(), verified_at = NULL,
    evidence_url = NULL, note = NULL, admin_notes = NULL, confidence = NULL,
    extracted_text = NULL, updated_at = now()
WHERE id = $1 AND status = 'FAILED'
RETURNING ` + columns

const statusCountsSQL = `
SELECT
    count(*) FILTER (WHERE status = 'COMPLETED') AS completed,
    count(*) FILTER (WHERE status = 'PENDING' AND started_at >= $2) AS pending,
    count(*) FILTER (WHERE status = 'FAILED'
        OR (status = 'PENDING' AND started_at < $2)) AS failed
FROM submissions
WHERE member_id = $1`

const expireOverdueSQL = `
UPDATE submissions
SET status = 'FAILED', updated_at = now()
WHERE status = 'PENDING' AND started_at < $1`

// StatusPatch carries the optional columns a status transition may set.
// Nil fields are left untouched.
type StatusPatch struct {
	VerifiedAt    *time.Time
	EvidenceURL   *string
	Note          *string
	AdminNotes    *string
	Confidence    *float64
	ExtractedText *string
}

// Create opens a PENDING attempt. A second attempt for the same member and
// task trips the unique constraint and returns domain.ErrAlreadyExists.
func (r *Repo) Create(ctx context.Context, memberID, taskID int64) (*domain.Submission, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var s domain.Submission
	err := querier.QueryRow(ctx, insertSQL, memberID, taskID).Scan(scanTargets(&s)...)
	if err != nil {
		return nil, mapError(err, "submission", 0)
	}
	return &s, nil
}

// GetByID returns a submission by ID.
func (r *Repo) GetByID(ctx context.Context, id int64) (*domain.Submission, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var s domain.Submission
	if err := querier.QueryRow(ctx, getByIDSQL, id).Scan(scanTargets(&s)...); err != nil {
		return nil, mapError(err, "submission", id)
	}
	return &s, nil
}

// GetByMemberAndTask returns the member's attempt for a task, if any.
func (r *Repo) GetByMemberAndTask(ctx context.Context, memberID, taskID int64) (*domain.Submission, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var s domain.Submission
	err := querier.QueryRow(ctx, getByMemberAndTaskSQL, memberID, taskID).Scan(scanTargets(&s)...)
	if err != nil {
		return nil, mapError(err, "submission", memberID)
	}
	return &s, nil
}

// ListByMember returns all of a member's submissions, newest first.
func (r *Repo) ListByMember(ctx context.Context, memberID int64) ([]*domain.Submission, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, listByMemberSQL, memberID)
	if err != nil {
		return nil, mapError(err, "submission", memberID)
	}
	defer rows.Close()

	var subs []*domain.Submission
	for rows.Next() {
		var s domain.Submission
		if err := rows.Scan(scanTargets(&s)...); err != nil {
			return nil, fmt.Errorf("scan submission row: %w", err)
		}
		subs = append(subs, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submission rows: %w", err)
	}
	return subs, nil
}

// UpdateStatusCAS moves a submission from one of the expected statuses to the
// target status, applying the patch in the same statement. It returns the
// updated row and true when the transition won, or nil and false when the row
// was no longer in an expected status. A missing row returns
// domain.ErrNotFound.
func (r *Repo) UpdateStatusCAS(ctx context.Context, id int64, from []domain.SubmissionStatus, to domain.SubmissionStatus, patch StatusPatch) (*domain.Submission, bool, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	builder := psql.
		Update("submissions").
		Set("status", to).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id, "status": from}).
		Suffix("RETURNING " + columns)

	if patch.VerifiedAt != nil {
		builder = builder.Set("verified_at", *patch.VerifiedAt)
	}
	if patch.EvidenceURL != nil {
		builder = builder.Set("evidence_url", *patch.EvidenceURL)
	}
	if patch.Note != nil {
		builder = builder.Set("note", *patch.Note)
	}
	if patch.AdminNotes != nil {
		builder = builder.Set("admin_notes", *patch.AdminNotes)
	}
	if patch.Confidence != nil {
		builder = builder.Set("confidence", *patch.Confidence)
	}
	if patch.ExtractedText != nil {
		builder = builder.Set("extracted_text", *patch.ExtractedText)
	}

	updateSQL, args, err := builder.ToSql()
	if err != nil {
		return nil, false, fmt.Errorf("build status update query: %w", err)
	}

	var s domain.Submission
	err = querier.QueryRow(ctx, updateSQL, args...).Scan(scanTargets(&s)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Row exists but lost the CAS, or does not exist at all.
			if _, getErr := r.GetByID(ctx, id); getErr != nil {
				return nil, false, getErr
			}
			return nil, false, nil
		}
		return nil, false, mapError(err, "submission", id)
	}
	return &s, true, nil
}

// ResetForRetry reopens a FAILED attempt as a fresh PENDING one. Returns
// nil and false when the submission is not in FAILED.
func (r *Repo) ResetForRetry(ctx context.Context, id int64) (*domain.Submission, bool, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var s domain.Submission
	err := querier.QueryRow(ctx, resetForRetrySQL, id).Scan(scanTargets(&s)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, mapError(err, "submission", id)
	}
	return &s, true, nil
}

// StatusCounts returns a member's completed/pending/failed totals. A PENDING
// attempt started before pendingCutoff is already past its verification
// window and counts as failed.
func (r *Repo) StatusCounts(ctx context.Context, memberID int64, pendingCutoff time.Time) (completed, pending, failed int, err error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	if err := querier.QueryRow(ctx, statusCountsSQL, memberID, pendingCutoff).
		Scan(&completed, &pending, &failed); err != nil {
		return 0, 0, 0, fmt.Errorf("count submissions by status: %w", err)
	}
	return completed, pending, failed, nil
}

// ExpireOverdue marks every PENDING submission started before cutoff as
// FAILED and returns how many rows changed.
func (r *Repo) ExpireOverdue(ctx context.Context, cutoff time.Time) (int64, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, expireOverdueSQL, cutoff)
	if err != nil {
		return 0, fmt.Errorf("expire overdue submissions: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanTargets(s *domain.Submission) []any {
	return []any{
		&s.ID, &s.MemberID, &s.TaskID, &s.Status, &s.StartedAt,
		&s.VerifiedAt, &s.EvidenceURL, &s.Note, &s.AdminNotes, &s.Confidence,
		&s.ExtractedText, &s.UpdatedAt,
	}
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
