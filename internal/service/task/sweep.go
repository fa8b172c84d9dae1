package task

import (
	"context"
	"fmt"
	"log/slog"
)

// SweepOverdue persists the FAILED status for every pending submission whose
// verification window has elapsed. Reads already treat such rows as failed
// through EffectiveStatus; the sweep keeps the stored data in line and is
// safe to run at any frequency.
func (s *Service) SweepOverdue(ctx context.Context) (int64, error) {
	cutoff := s.clock.Now().Add(-s.window)

	n, err := s.subs.ExpireOverdue(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("expire overdue submissions: %w", err)
	}

	if n > 0 {
		s.log.InfoContext(ctx, "overdue submissions expired",
			slog.Int64("count", n),
			slog.Time("cutoff", cutoff),
		)
	}
	return n, nil
}
