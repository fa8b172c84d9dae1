package submission_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hendrayp/komunitas-backend/internal/adapter/postgres/submission"
	"github.com/hendrayp/komunitas-backend/internal/adapter/postgres/testhelper"
	"github.com/hendrayp/komunitas-backend/internal/domain"
)

func newRepo(t *testing.T) (*submission.Repo, *pgxpool.Pool) {
	t.Helper()
	pool := testhelper.SetupTestDB(t)
	return submission.New(pool), pool
}

func seedMemberAndTask(t *testing.T, pool *pgxpool.Pool) (domain.Member, domain.TaskDefinition) {
	t.Helper()
	m := testhelper.SeedMember(t, pool, 0, 0)
	task := testhelper.SeedTask(t, pool, domain.VerificationAuto, 50)
	return m, task
}

func TestRepo_Create(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	m, task := seedMemberAndTask(t, pool)

	got, err := repo.Create(ctx, m.ID, task.ID)
	if err != nil {
		t.Fatalf("Create: unexpected error: %v", err)
	}

	if got.Status != domain.SubmissionStatusPending {
		t.Errorf("status mismatch: got %s, want PENDING", got.Status)
	}
	if got.StartedAt.IsZero() {
		t.Error("expected StartedAt to be set")
	}
	if got.VerifiedAt != nil {
		t.Error("expected VerifiedAt to be nil")
	}
}

func TestRepo_Create_Duplicate(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	m, task := seedMemberAndTask(t, pool)

	if _, err := repo.Create(ctx, m.ID, task.ID); err != nil {
		t.Fatalf("first Create: unexpected error: %v", err)
	}

	_, err := repo.Create(ctx, m.ID, task.ID)
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestRepo_GetByMemberAndTask(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	m, task := seedMemberAndTask(t, pool)

	created, err := repo.Create(ctx, m.ID, task.ID)
	if err != nil {
		t.Fatalf("Create: unexpected error: %v", err)
	}

	got, err := repo.GetByMemberAndTask(ctx, m.ID, task.ID)
	if err != nil {
		t.Fatalf("GetByMemberAndTask: unexpected error: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("ID mismatch: got %d, want %d", got.ID, created.ID)
	}

	_, err = repo.GetByMemberAndTask(ctx, m.ID, 999999999)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing attempt, got %v", err)
	}
}

func TestRepo_UpdateStatusCAS_Wins(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	m, task := seedMemberAndTask(t, pool)
	created, err := repo.Create(ctx, m.ID, task.ID)
	if err != nil {
		t.Fatalf("Create: unexpected error: %v", err)
	}

	verifiedAt := time.Now().UTC().Truncate(time.Microsecond)
	confidence := 0.93
	extracted := "screenshot shows a like"

	got, won, err := repo.UpdateStatusCAS(ctx, created.ID,
		[]domain.SubmissionStatus{domain.SubmissionStatusPending},
		domain.SubmissionStatusCompleted,
		submission.StatusPatch{
			VerifiedAt:    &verifiedAt,
			Confidence:    &confidence,
			ExtractedText: &extracted,
		},
	)
	if err != nil {
		t.Fatalf("UpdateStatusCAS: unexpected error: %v", err)
	}
	if !won {
		t.Fatal("expected CAS to win")
	}
	if got.Status != domain.SubmissionStatusCompleted {
		t.Errorf("status mismatch: got %s, want COMPLETED", got.Status)
	}
	if got.VerifiedAt == nil || !got.VerifiedAt.Equal(verifiedAt) {
		t.Errorf("VerifiedAt mismatch: got %v, want %v", got.VerifiedAt, verifiedAt)
	}
	if got.Confidence == nil || *got.Confidence != confidence {
		t.Errorf("Confidence mismatch: got %v, want %v", got.Confidence, confidence)
	}
}

func TestRepo_UpdateStatusCAS_AttachesEvidenceAndNote(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	m, task := seedMemberAndTask(t, pool)
	created, err := repo.Create(ctx, m.ID, task.ID)
	if err != nil {
		t.Fatalf("Create: unexpected error: %v", err)
	}

	evidenceURL := "https://cdn.example.com/shot.png"
	note := "liked from my phone"

	got, won, err := repo.UpdateStatusCAS(ctx, created.ID,
		[]domain.SubmissionStatus{domain.SubmissionStatusPending},
		domain.SubmissionStatusPending,
		submission.StatusPatch{EvidenceURL: &evidenceURL, Note: &note},
	)
	if err != nil {
		t.Fatalf("UpdateStatusCAS: unexpected error: %v", err)
	}
	if !won {
		t.Fatal("expected CAS to win")
	}
	if got.EvidenceURL == nil || *got.EvidenceURL != evidenceURL {
		t.Errorf("EvidenceURL mismatch: %v", got.EvidenceURL)
	}
	if got.Note == nil || *got.Note != note {
		t.Errorf("Note mismatch: %v", got.Note)
	}

	stored, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: unexpected error: %v", err)
	}
	if stored.Note == nil || *stored.Note != note {
		t.Errorf("stored Note mismatch: %v", stored.Note)
	}

	// A retry reopens the attempt with the note cleared.
	if _, _, err := repo.UpdateStatusCAS(ctx, created.ID,
		[]domain.SubmissionStatus{domain.SubmissionStatusPending},
		domain.SubmissionStatusFailed,
		submission.StatusPatch{},
	); err != nil {
		t.Fatalf("fail transition: unexpected error: %v", err)
	}
	reopened, reset, err := repo.ResetForRetry(ctx, created.ID)
	if err != nil {
		t.Fatalf("ResetForRetry: unexpected error: %v", err)
	}
	if !reset {
		t.Fatal("expected reset to succeed from FAILED")
	}
	if reopened.Note != nil || reopened.EvidenceURL != nil {
		t.Errorf("expected note and evidence cleared, got %v / %v", reopened.Note, reopened.EvidenceURL)
	}
}

func TestRepo_UpdateStatusCAS_LosesOnTerminal(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	m, task := seedMemberAndTask(t, pool)
	created := testhelper.SeedSubmission(t, pool, m.ID, task.ID, domain.SubmissionStatusCompleted, time.Now().UTC())

	got, won, err := repo.UpdateStatusCAS(ctx, created.ID,
		[]domain.SubmissionStatus{domain.SubmissionStatusPending},
		domain.SubmissionStatusFailed,
		submission.StatusPatch{},
	)
	if err != nil {
		t.Fatalf("UpdateStatusCAS: unexpected error: %v", err)
	}
	if won {
		t.Fatal("CAS must not win against a terminal status")
	}
	if got != nil {
		t.Errorf("expected nil submission on lost CAS, got %+v", got)
	}
}

func TestRepo_UpdateStatusCAS_NotFound(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)
	ctx := context.Background()

	_, _, err := repo.UpdateStatusCAS(ctx, 999999999,
		[]domain.SubmissionStatus{domain.SubmissionStatusPending},
		domain.SubmissionStatusFailed,
		submission.StatusPatch{},
	)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRepo_ResetForRetry(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	m, task := seedMemberAndTask(t, pool)
	failed := testhelper.SeedSubmission(t, pool, m.ID, task.ID, domain.SubmissionStatusFailed,
		time.Now().UTC().Add(-6*time.Hour))

	got, reset, err := repo.ResetForRetry(ctx, failed.ID)
	if err != nil {
		t.Fatalf("ResetForRetry: unexpected error: %v", err)
	}
	if !reset {
		t.Fatal("expected reset to succeed from FAILED")
	}
	if got.Status != domain.SubmissionStatusPending {
		t.Errorf("status mismatch: got %s, want PENDING", got.Status)
	}
	if !got.StartedAt.After(failed.StartedAt) {
		t.Error("expected StartedAt to be refreshed")
	}

	// A second reset finds the row PENDING and declines.
	_, reset, err = repo.ResetForRetry(ctx, failed.ID)
	if err != nil {
		t.Fatalf("second ResetForRetry: unexpected error: %v", err)
	}
	if reset {
		t.Fatal("reset must only apply to FAILED submissions")
	}
}

func TestRepo_StatusCounts(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	m := testhelper.SeedMember(t, pool, 0, 0)
	now := time.Now().UTC()
	cutoff := now.Add(-4 * time.Hour)

	t1 := testhelper.SeedTask(t, pool, domain.VerificationAuto, 10)
	t2 := testhelper.SeedTask(t, pool, domain.VerificationAuto, 10)
	t3 := testhelper.SeedTask(t, pool, domain.VerificationScreenshot, 10)
	t4 := testhelper.SeedTask(t, pool, domain.VerificationScreenshot, 10)

	testhelper.SeedSubmission(t, pool, m.ID, t1.ID, domain.SubmissionStatusCompleted, now.Add(-1*time.Hour))
	testhelper.SeedSubmission(t, pool, m.ID, t2.ID, domain.SubmissionStatusPending, now.Add(-1*time.Hour))
	// Overdue pending counts as failed.
	testhelper.SeedSubmission(t, pool, m.ID, t3.ID, domain.SubmissionStatusPending, now.Add(-5*time.Hour))
	testhelper.SeedSubmission(t, pool, m.ID, t4.ID, domain.SubmissionStatusFailed, now.Add(-2*time.Hour))

	completed, pending, failed, err := repo.StatusCounts(ctx, m.ID, cutoff)
	if err != nil {
		t.Fatalf("StatusCounts: unexpected error: %v", err)
	}
	if completed != 1 {
		t.Errorf("completed mismatch: got %d, want 1", completed)
	}
	if pending != 1 {
		t.Errorf("pending mismatch: got %d, want 1", pending)
	}
	if failed != 2 {
		t.Errorf("failed mismatch: got %d, want 2", failed)
	}
}

func TestRepo_ExpireOverdue(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	m := testhelper.SeedMember(t, pool, 0, 0)
	now := time.Now().UTC()

	t1 := testhelper.SeedTask(t, pool, domain.VerificationAuto, 10)
	t2 := testhelper.SeedTask(t, pool, domain.VerificationAuto, 10)

	overdue := testhelper.SeedSubmission(t, pool, m.ID, t1.ID, domain.SubmissionStatusPending, now.Add(-5*time.Hour))
	fresh := testhelper.SeedSubmission(t, pool, m.ID, t2.ID, domain.SubmissionStatusPending, now.Add(-1*time.Hour))

	n, err := repo.ExpireOverdue(ctx, now.Add(-4*time.Hour))
	if err != nil {
		t.Fatalf("ExpireOverdue: unexpected error: %v", err)
	}
	if n < 1 {
		t.Fatalf("expected at least 1 expired row, got %d", n)
	}

	got, err := repo.GetByID(ctx, overdue.ID)
	if err != nil {
		t.Fatalf("GetByID overdue: %v", err)
	}
	if got.Status != domain.SubmissionStatusFailed {
		t.Errorf("overdue submission: got %s, want FAILED", got.Status)
	}

	got, err = repo.GetByID(ctx, fresh.ID)
	if err != nil {
		t.Fatalf("GetByID fresh: %v", err)
	}
	if got.Status != domain.SubmissionStatusPending {
		t.Errorf("fresh submission: got %s, want PENDING", got.Status)
	}
}
