package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hendrayp/komunitas-backend/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedMember creates a member with the given balances. Returns a filled
// domain.Member.
func SeedMember(t *testing.T, pool *pgxpool.Pool, loyaltyPoint, coin int64) domain.Member {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	m := domain.Member{
		DisplayName:  "Test Member " + suffix,
		Email:        "member-" + suffix + "@example.com",
		LoyaltyPoint: loyaltyPoint,
		Coin:         coin,
	}

	err := pool.QueryRow(ctx,
		`INSERT INTO members (display_name, email, loyalty_point, coin)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		m.DisplayName, m.Email, m.LoyaltyPoint, m.Coin,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		t.Fatalf("testhelper: SeedMember insert member: %v", err)
	}

	return m
}

// SeedTask creates an AVAILABLE task definition with the given strategy and
// point value. Returns a filled domain.TaskDefinition.
func SeedTask(t *testing.T, pool *pgxpool.Pool, strategy domain.VerificationStrategy, basePointValue int64) domain.TaskDefinition {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	task := domain.TaskDefinition{
		Description:    "Test task " + suffix,
		TargetLink:     "https://example.com/posts/" + suffix,
		BasePointValue: basePointValue,
		Status:         domain.TaskStatusAvailable,
		Strategy:       strategy,
	}

	err := pool.QueryRow(ctx,
		`INSERT INTO task_definitions (description, target_link, base_point_value, status, strategy)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, posted_at`,
		task.Description, task.TargetLink, task.BasePointValue, task.Status, task.Strategy,
	).Scan(&task.ID, &task.PostedAt)
	if err != nil {
		t.Fatalf("testhelper: SeedTask insert task_definition: %v", err)
	}

	return task
}

// SeedSubmission creates a submission in the given status with the given
// start time. Returns a filled domain.Submission.
func SeedSubmission(t *testing.T, pool *pgxpool.Pool, memberID, taskID int64, status domain.SubmissionStatus, startedAt time.Time) domain.Submission {
	t.Helper()
	ctx := context.Background()

	s := domain.Submission{
		MemberID:  memberID,
		TaskID:    taskID,
		Status:    status,
		StartedAt: startedAt,
	}

	err := pool.QueryRow(ctx,
		`INSERT INTO submissions (member_id, task_id, status, started_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, updated_at`,
		s.MemberID, s.TaskID, s.Status, s.StartedAt,
	).Scan(&s.ID, &s.UpdatedAt)
	if err != nil {
		t.Fatalf("testhelper: SeedSubmission insert submission: %v", err)
	}

	return s
}

// SeedBoostEvent creates a boost event with the given value and window.
// Returns a filled domain.BoostEvent.
func SeedBoostEvent(t *testing.T, pool *pgxpool.Pool, value string, startsAt, endsAt time.Time) domain.BoostEvent {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	e := domain.BoostEvent{
		Key:      "boost-" + suffix,
		Name:     "Boost " + suffix,
		Value:    value,
		StartsAt: startsAt,
		EndsAt:   endsAt,
	}

	err := pool.QueryRow(ctx,
		`INSERT INTO boost_events (key, name, value, starts_at, ends_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		e.Key, e.Name, e.Value, e.StartsAt, e.EndsAt,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		t.Fatalf("testhelper: SeedBoostEvent insert boost_event: %v", err)
	}

	return e
}
