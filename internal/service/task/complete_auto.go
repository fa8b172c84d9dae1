package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hendrayp/komunitas-backend/internal/adapter/postgres/submission"
	"github.com/hendrayp/komunitas-backend/internal/domain"
	"github.com/hendrayp/komunitas-backend/internal/service/ledger"
	"github.com/hendrayp/komunitas-backend/pkg/ctxutil"
)

// CompleteAuto finalizes the caller's attempt at an auto-verified task and
// pays out the boosted point value. The status transition and the ledger
// award commit together; losing the status race awards nothing.
func (s *Service) CompleteAuto(ctx context.Context, taskID int64) (*domain.Submission, error) {
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
	if taskDef.Strategy != domain.VerificationAuto {
		return nil, domain.NewValidationError("task_id", "task requires screenshot verification")
	}

	sub, err := s.subs.GetByMemberAndTask(ctx, memberID, taskID)
	if err != nil {
		return nil, fmt.Errorf("get attempt: %w", err)
	}

	now := s.clock.Now()
	if sub.EffectiveStatus(now, s.window) != domain.SubmissionStatusPending {
		return nil, fmt.Errorf("submission %d cannot complete: %w", sub.ID, domain.ErrConflict)
	}

	points, boostEvent, err := s.boosts.BoostedPoints(ctx, taskDef.BasePointValue)
	if err != nil {
		return nil, fmt.Errorf("resolve boost: %w", err)
	}

	var completed *domain.Submission
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		verifiedAt := now
		updated, won, err := s.subs.UpdateStatusCAS(ctx, sub.ID,
			[]domain.SubmissionStatus{domain.SubmissionStatusPending},
			domain.SubmissionStatusCompleted,
			submission.StatusPatch{VerifiedAt: &verifiedAt},
		)
		if err != nil {
			return fmt.Errorf("finalize submission: %w", err)
		}
		if !won {
			return fmt.Errorf("submission %d already resolved: %w", sub.ID, domain.ErrConflict)
		}

		if _, err := s.ledger.AwardInTx(ctx, ledger.AwardInput{
			MemberID:     memberID,
			Points:       points,
			MirrorToCoin: true,
			EventType:    domain.EventTypeTask,
			Description:  taskDef.Description,
			Reference:    fmt.Sprintf("submission:%d", updated.ID),
		}); err != nil {
			return fmt.Errorf("award points: %w", err)
		}

		completed = updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	logAttrs := []any{
		slog.Int64("member_id", memberID),
		slog.Int64("submission_id", completed.ID),
		slog.Int64("points", points),
	}
	if boostEvent != nil {
		logAttrs = append(logAttrs, slog.String("boost", boostEvent.Key))
	}
	s.log.InfoContext(ctx, "auto task completed", logAttrs...)

	s.afterResolution(ctx, memberID, completed, points)
	return completed, nil
}

// afterResolution refreshes the stats cache and notifies the member. Both
// are best effort: the submission is already committed.
func (s *Service) afterResolution(ctx context.Context, memberID int64, sub *domain.Submission, points int64) {
	if _, err := s.Recompute(ctx, memberID); err != nil {
		s.log.WarnContext(ctx, "stats recompute failed",
			slog.Int64("member_id", memberID), slog.String("error", err.Error()))
	}

	var msg string
	switch sub.Status {
	case domain.SubmissionStatusCompleted:
		msg = fmt.Sprintf("Task verified. You earned %d points.", points)
	case domain.SubmissionStatusFailed:
		msg = "Task verification failed. You can try again."
	case domain.SubmissionStatusRejected:
		msg = "Your task submission was rejected."
	default:
		return
	}

	if err := s.notifier.Notify(ctx, domain.Notification{
		MemberID: memberID,
		Message:  msg,
		Link:     fmt.Sprintf("/tasks/%d", sub.TaskID),
	}); err != nil {
		s.log.WarnContext(ctx, "notification failed",
			slog.Int64("member_id", memberID), slog.String("error", err.Error()))
	}
}
