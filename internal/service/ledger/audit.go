package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hendrayp/komunitas-backend/internal/domain"
)

// Audit replays the transaction log against stored balances and reports every
// member that drifted. It never mutates anything; repairs go through Correct
// or SyncCoins.
func (s *Service) Audit(ctx context.Context) ([]*domain.LedgerDrift, error) {
	drifts, err := s.entries.ListDrift(ctx)
	if err != nil {
		return nil, fmt.Errorf("list drift: %w", err)
	}

	if len(drifts) > 0 {
		s.log.WarnContext(ctx, "ledger audit found drifted members",
			slog.Int("count", len(drifts)))
	}

	return drifts, nil
}
