package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hendrayp/komunitas-backend/internal/adapter/postgres/submission"
	"github.com/hendrayp/komunitas-backend/internal/domain"
	"github.com/hendrayp/komunitas-backend/pkg/ctxutil"
)

// Reject is the admin override: it permanently closes a submission with an
// explanation. Rejection is terminal; unlike failure the member cannot retry.
func (s *Service) Reject(ctx context.Context, submissionID int64, notes string) (*domain.Submission, error) {
	if !ctxutil.IsAdmin(ctx) {
		return nil, domain.ErrForbidden
	}
	if submissionID <= 0 {
		return nil, domain.NewValidationError("submission_id", "must be positive")
	}
	if notes == "" {
		return nil, domain.NewValidationError("admin_notes", "rejection requires an explanation")
	}

	sub, err := s.subs.GetByID(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("get submission: %w", err)
	}
	if sub.Status.Terminal() {
		return nil, fmt.Errorf("submission %d: %w", sub.ID, domain.ErrSubmissionTerminal)
	}

	verifiedAt := s.clock.Now()
	updated, won, err := s.subs.UpdateStatusCAS(ctx, submissionID,
		[]domain.SubmissionStatus{domain.SubmissionStatusPending, domain.SubmissionStatusFailed},
		domain.SubmissionStatusRejected,
		submission.StatusPatch{
			VerifiedAt: &verifiedAt,
			AdminNotes: &notes,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("reject submission: %w", err)
	}
	if !won {
		return nil, fmt.Errorf("submission %d already resolved: %w", submissionID, domain.ErrConflict)
	}

	s.log.InfoContext(ctx, "submission rejected",
		slog.Int64("submission_id", updated.ID),
		slog.Int64("member_id", updated.MemberID),
	)

	s.afterResolution(ctx, updated.MemberID, updated, 0)
	return updated, nil
}
