package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hendrayp/komunitas-backend/internal/adapter/postgres/submission"
	"github.com/hendrayp/komunitas-backend/internal/domain"
	"github.com/hendrayp/komunitas-backend/internal/service/ledger"
)

// ReceiveVerificationResult applies an AI reviewer verdict. Delivery is
// at-least-once: a redelivered verdict for an already-resolved submission is
// a no-op, and a pass that arrives after the sweeper failed the attempt
// still completes it.
func (s *Service) ReceiveVerificationResult(ctx context.Context, result domain.VerificationResult) (*domain.Submission, error) {
	if result.SubmissionID <= 0 {
		return nil, domain.NewValidationError("submission_id", "must be positive")
	}
	if result.Confidence < 0 || result.Confidence > 1 {
		return nil, domain.NewValidationError("confidence", "must be between 0 and 1")
	}

	sub, err := s.subs.GetByID(ctx, result.SubmissionID)
	if err != nil {
		return nil, fmt.Errorf("get submission: %w", err)
	}
	if sub.Status.Terminal() {
		s.log.InfoContext(ctx, "duplicate verdict ignored",
			slog.Int64("submission_id", sub.ID), slog.String("status", sub.Status.String()))
		return sub, nil
	}

	if result.Passed {
		return s.applyPass(ctx, sub, result)
	}
	return s.applyFail(ctx, sub, result)
}

func (s *Service) applyPass(ctx context.Context, sub *domain.Submission, result domain.VerificationResult) (*domain.Submission, error) {
	taskDef, err := s.tasks.GetByID(ctx, sub.TaskID)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}

	points, _, err := s.boosts.BoostedPoints(ctx, taskDef.BasePointValue)
	if err != nil {
		return nil, fmt.Errorf("resolve boost: %w", err)
	}

	// FAILED is an accepted starting state only when the row carries no
	// verdict timestamp: the sweeper expires overdue attempts without setting
	// verified_at, so a pass that arrives late still completes them. A
	// verdict-failed attempt has verified_at set and stays failed until the
	// member retries.
	from := []domain.SubmissionStatus{domain.SubmissionStatusPending}
	if sub.VerifiedAt == nil {
		from = append(from, domain.SubmissionStatusFailed)
	}

	var resolved *domain.Submission
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		verifiedAt := s.clock.Now()
		updated, won, err := s.subs.UpdateStatusCAS(ctx, sub.ID,
			from,
			domain.SubmissionStatusCompleted,
			submission.StatusPatch{
				VerifiedAt:    &verifiedAt,
				Confidence:    &result.Confidence,
				ExtractedText: &result.ExtractedText,
			},
		)
		if err != nil {
			return fmt.Errorf("finalize submission: %w", err)
		}
		if !won {
			// Resolved concurrently, treat as redelivery.
			resolved = nil
			return nil
		}

		if _, err := s.ledger.AwardInTx(ctx, ledger.AwardInput{
			MemberID:     sub.MemberID,
			Points:       points,
			MirrorToCoin: true,
			EventType:    domain.EventTypeTask,
			Description:  taskDef.Description,
			Reference:    fmt.Sprintf("submission:%d", sub.ID),
		}); err != nil {
			return fmt.Errorf("award points: %w", err)
		}

		resolved = updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	if resolved == nil {
		return s.subs.GetByID(ctx, sub.ID)
	}

	s.log.InfoContext(ctx, "verdict accepted",
		slog.Int64("submission_id", resolved.ID),
		slog.Float64("confidence", result.Confidence),
		slog.Int64("points", points),
	)

	s.afterResolution(ctx, sub.MemberID, resolved, points)
	return resolved, nil
}

func (s *Service) applyFail(ctx context.Context, sub *domain.Submission, result domain.VerificationResult) (*domain.Submission, error) {
	verifiedAt := s.clock.Now()
	updated, won, err := s.subs.UpdateStatusCAS(ctx, sub.ID,
		[]domain.SubmissionStatus{domain.SubmissionStatusPending},
		domain.SubmissionStatusFailed,
		submission.StatusPatch{
			VerifiedAt:    &verifiedAt,
			Confidence:    &result.Confidence,
			ExtractedText: &result.ExtractedText,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("record failed verdict: %w", err)
	}
	if !won {
		return s.subs.GetByID(ctx, sub.ID)
	}

	s.log.InfoContext(ctx, "verdict rejected submission",
		slog.Int64("submission_id", updated.ID),
		slog.Float64("confidence", result.Confidence),
	)

	s.afterResolution(ctx, sub.MemberID, updated, 0)
	return updated, nil
}
