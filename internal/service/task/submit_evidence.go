package task

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/hendrayp/komunitas-backend/internal/adapter/postgres/submission"
	"github.com/hendrayp/komunitas-backend/internal/adapter/verifier"
	"github.com/hendrayp/komunitas-backend/internal/domain"
	"github.com/hendrayp/komunitas-backend/pkg/ctxutil"
)

// SubmitEvidence attaches a screenshot, with an optional member note, to the
// caller's pending attempt and hands the submission to the AI reviewer. The
// attempt stays PENDING until the reviewer calls back.
func (s *Service) SubmitEvidence(ctx context.Context, taskID int64, evidenceURL, note string) (*domain.Submission, error) {
	memberID, ok := ctxutil.MemberIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if taskID <= 0 {
		return nil, domain.NewValidationError("task_id", "must be positive")
	}
	if u, err := url.Parse(evidenceURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, domain.NewValidationError("evidence_url", "must be an absolute URL")
	}

	taskDef, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	if taskDef.Strategy != domain.VerificationScreenshot {
		return nil, domain.NewValidationError("task_id", "task does not take screenshot evidence")
	}

	sub, err := s.subs.GetByMemberAndTask(ctx, memberID, taskID)
	if err != nil {
		return nil, fmt.Errorf("get attempt: %w", err)
	}

	now := s.clock.Now()
	if sub.EffectiveStatus(now, s.window) != domain.SubmissionStatusPending {
		return nil, fmt.Errorf("submission %d is not awaiting evidence: %w", sub.ID, domain.ErrConflict)
	}

	patch := submission.StatusPatch{EvidenceURL: &evidenceURL}
	if note != "" {
		patch.Note = &note
	}
	updated, won, err := s.subs.UpdateStatusCAS(ctx, sub.ID,
		[]domain.SubmissionStatus{domain.SubmissionStatusPending},
		domain.SubmissionStatusPending,
		patch,
	)
	if err != nil {
		return nil, fmt.Errorf("attach evidence: %w", err)
	}
	if !won {
		return nil, fmt.Errorf("submission %d is not awaiting evidence: %w", sub.ID, domain.ErrConflict)
	}

	if err := s.verifier.Dispatch(ctx, verifier.DispatchRequest{
		SubmissionID:      updated.ID,
		EvidenceURL:       evidenceURL,
		VerificationRules: taskDef.VerificationRules,
	}); err != nil {
		// Best effort. The evidence is stored; the member can resubmit to
		// redispatch, and the sweeper fails the attempt if nothing arrives.
		s.log.WarnContext(ctx, "verification dispatch failed",
			slog.Int64("submission_id", updated.ID),
			slog.String("error", err.Error()),
		)
	}

	s.log.InfoContext(ctx, "evidence submitted",
		slog.Int64("member_id", memberID),
		slog.Int64("submission_id", updated.ID),
	)
	return updated, nil
}
