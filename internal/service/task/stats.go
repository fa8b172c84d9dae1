package task

import (
	"context"
	"errors"
	"fmt"

	"github.com/hendrayp/komunitas-backend/internal/domain"
	"github.com/hendrayp/komunitas-backend/pkg/ctxutil"
)

// GetStats returns the caller's task statistics. The total is always counted
// live from the current catalog; the per-outcome counts come from the cache
// and are recomputed on a miss.
func (s *Service) GetStats(ctx context.Context) (*domain.TaskStats, error) {
	memberID, ok := ctxutil.MemberIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	total, err := s.tasks.CountAvailable(ctx)
	if err != nil {
		return nil, fmt.Errorf("count available tasks: %w", err)
	}

	cached, err := s.stats.GetByMemberID(ctx, memberID)
	if errors.Is(err, domain.ErrNotFound) {
		cached, err = s.Recompute(ctx, memberID)
	}
	if err != nil {
		return nil, fmt.Errorf("get cached stats: %w", err)
	}

	return &domain.TaskStats{
		Total:     total,
		Completed: cached.Completed,
		Pending:   cached.Pending,
		Failed:    cached.Failed,
	}, nil
}

// Recompute counts the member's submissions by outcome and overwrites the
// cache. Pending attempts past the verification window count as failed.
func (s *Service) Recompute(ctx context.Context, memberID int64) (*domain.MemberStatsCache, error) {
	if memberID <= 0 {
		return nil, domain.NewValidationError("member_id", "must be positive")
	}

	cutoff := s.clock.Now().Add(-s.window)
	completed, pending, failed, err := s.subs.StatusCounts(ctx, memberID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("count submissions: %w", err)
	}

	cached, err := s.stats.Upsert(ctx, memberID, completed, pending, failed)
	if err != nil {
		return nil, fmt.Errorf("write stats cache: %w", err)
	}
	return cached, nil
}
