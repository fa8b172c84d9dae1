package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hendrayp/komunitas-backend/internal/adapter/postgres/submission"
	"github.com/hendrayp/komunitas-backend/internal/domain"
	"github.com/hendrayp/komunitas-backend/pkg/ctxutil"
)

// StartAttempt opens (or reopens) the caller's attempt at a task.
//
// The operation is idempotent per (member, task): a live pending attempt is
// returned as-is, a failed or expired one is reopened in place, and a
// completed or rejected one refuses with ErrSubmissionTerminal. Two
// concurrent first attempts race on the unique constraint; the loser adopts
// the winner's row.
func (s *Service) StartAttempt(ctx context.Context, taskID int64) (*domain.Submission, error) {
	memberID, ok := ctxutil.MemberIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if taskID <= 0 {
		return nil, domain.NewValidationError("task_id", "must be positive")
	}

	taskDef, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	if taskDef.Status != domain.TaskStatusAvailable {
		return nil, fmt.Errorf("task %d is retired: %w", taskID, domain.ErrConflict)
	}

	existing, err := s.subs.GetByMemberAndTask(ctx, memberID, taskID)
	switch {
	case err == nil:
		return s.restartExisting(ctx, existing)
	case errors.Is(err, domain.ErrNotFound):
		// First attempt, fall through to create.
	default:
		return nil, fmt.Errorf("get existing attempt: %w", err)
	}

	created, err := s.subs.Create(ctx, memberID, taskID)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			// Lost the race to a concurrent attempt. Adopt the winner's row.
			winner, getErr := s.subs.GetByMemberAndTask(ctx, memberID, taskID)
			if getErr != nil {
				return nil, fmt.Errorf("adopt concurrent attempt: %w", getErr)
			}
			return s.restartExisting(ctx, winner)
		}
		return nil, fmt.Errorf("create attempt: %w", err)
	}

	s.log.InfoContext(ctx, "attempt started",
		slog.Int64("member_id", memberID),
		slog.Int64("task_id", taskID),
		slog.Int64("submission_id", created.ID),
	)
	return created, nil
}

// restartExisting decides what an existing attempt row means for a new start
// request.
func (s *Service) restartExisting(ctx context.Context, existing *domain.Submission) (*domain.Submission, error) {
	now := s.clock.Now()

	effective := existing.EffectiveStatus(now, s.window)
	switch effective {
	case domain.SubmissionStatusPending:
		// Still live, nothing to restart.
		return existing, nil

	case domain.SubmissionStatusCompleted, domain.SubmissionStatusRejected:
		return nil, fmt.Errorf("submission %d: %w", existing.ID, domain.ErrSubmissionTerminal)

	case domain.SubmissionStatusFailed:
		// Persist the expiry first if the stored row is still PENDING.
		if existing.Status == domain.SubmissionStatusPending {
			if _, _, err := s.subs.UpdateStatusCAS(ctx, existing.ID,
				[]domain.SubmissionStatus{domain.SubmissionStatusPending},
				domain.SubmissionStatusFailed,
				submission.StatusPatch{},
			); err != nil {
				return nil, fmt.Errorf("expire overdue attempt: %w", err)
			}
		}

		reopened, ok, err := s.subs.ResetForRetry(ctx, existing.ID)
		if err != nil {
			return nil, fmt.Errorf("reopen attempt: %w", err)
		}
		if !ok {
			// A verifier callback slipped in between the expiry and the
			// reset. Surface the final row.
			return nil, fmt.Errorf("submission %d: %w", existing.ID, domain.ErrConflict)
		}

		s.log.InfoContext(ctx, "attempt reopened",
			slog.Int64("member_id", reopened.MemberID),
			slog.Int64("submission_id", reopened.ID),
		)
		return reopened, nil
	}

	return nil, fmt.Errorf("submission %d in unexpected status %s: %w",
		existing.ID, existing.Status, domain.ErrConflict)
}
