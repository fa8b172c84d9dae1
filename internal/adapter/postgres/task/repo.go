// Package task implements the TaskDefinition repository using PostgreSQL.
// Listing uses squirrel because the status and strategy filters are optional.
package task

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

// Repo provides task definition persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new task definition repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// ListFilter narrows the task listing. Zero values mean "no filter".
type ListFilter struct {
	Status   domain.TaskStatus
	Strategy domain.VerificationStrategy
	Search   string
	Limit    int
	Offset   int
}

const insertSQL = `
INSERT INTO task_definitions (description, target_link, base_point_value, status, strategy, verification_rules)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, posted_at`

const getByIDSQL = `
SELECT id, description, target_link, base_point_value, status, strategy, verification_rules, posted_at
FROM task_definitions
WHERE id = $1`

const retireSQL = `
UPDATE task_definitions
SET status = 'RETIRED'
WHERE id = $1 AND status = 'AVAILABLE'`

const countAvailableSQL = `SELECT count(*) FROM task_definitions WHERE status = 'AVAILABLE'`

// Create inserts a new task definition and fills in its ID and PostedAt.
func (r *Repo) Create(ctx context.Context, t *domain.TaskDefinition) (*domain.TaskDefinition, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	out := *t
	err := querier.QueryRow(ctx, insertSQL,
		t.Description, t.TargetLink, t.BasePointValue, t.Status, t.Strategy, t.VerificationRules,
	).Scan(&out.ID, &out.PostedAt)
	if err != nil {
		return nil, mapError(err, "task_definition", 0)
	}
	return &out, nil
}

// GetByID returns a task definition by ID.
func (r *Repo) GetByID(ctx context.Context, id int64) (*domain.TaskDefinition, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var t domain.TaskDefinition
	err := querier.QueryRow(ctx, getByIDSQL, id).Scan(
		&t.ID, &t.Description, &t.TargetLink, &t.BasePointValue,
		&t.Status, &t.Strategy, &t.VerificationRules, &t.PostedAt,
	)
	if err != nil {
		return nil, mapError(err, "task_definition", id)
	}
	return &t, nil
}

// List returns task definitions matching the filter, newest first.
func (r *Repo) List(ctx context.Context, filter ListFilter) ([]*domain.TaskDefinition, int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	where := func(b sq.SelectBuilder) sq.SelectBuilder {
		if filter.Status != "" {
			b = b.Where(sq.Eq{"status": filter.Status})
		}
		if filter.Strategy != "" {
			b = b.Where(sq.Eq{"strategy": filter.Strategy})
		}
		if filter.Search != "" {
			b = b.Where(sq.ILike{"description": "%" + filter.Search + "%"})
		}
		return b
	}

	countSQL, countArgs, err := where(psql.Select("count(*)").From("task_definitions")).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build task count query: %w", err)
	}

	var total int
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count task_definitions: %w", err)
	}

	builder := where(psql.
		Select("id", "description", "target_link", "base_point_value", "status", "strategy", "verification_rules", "posted_at").
		From("task_definitions")).
		OrderBy("posted_at DESC", "id DESC")
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		builder = builder.Offset(uint64(filter.Offset))
	}

	listSQL, listArgs, err := builder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build task list query: %w", err)
	}

	rows, err := querier.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("query task_definitions: %w", err)
	}
	defer rows.Close()

	var tasks []*domain.TaskDefinition
	for rows.Next() {
		var t domain.TaskDefinition
		if err := rows.Scan(
			&t.ID, &t.Description, &t.TargetLink, &t.BasePointValue,
			&t.Status, &t.Strategy, &t.VerificationRules, &t.PostedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan task_definition row: %w", err)
		}
		tasks = append(tasks, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate task_definition rows: %w", err)
	}
	return tasks, total, nil
}

// Retire marks an available task retired. Retiring a task that is already
// retired or missing returns domain.ErrNotFound.
func (r *Repo) Retire(ctx context.Context, id int64) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, retireSQL, id)
	if err != nil {
		return mapError(err, "task_definition", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("task_definition %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// CountAvailable returns the number of tasks currently open for attempts.
func (r *Repo) CountAvailable(ctx context.Context) (int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var n int
	if err := querier.QueryRow(ctx, countAvailableSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("count available task_definitions: %w", err)
	}
	return n, nil
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
