package ledger

import (
	"context"
	"fmt"

	"github.com/hendrayp/komunitas-backend/internal/domain"
)

// summaryRecentLimit bounds the activity slices in a points summary.
const summaryRecentLimit = 10

// Balances returns the member's current balances.
func (s *Service) Balances(ctx context.Context, memberID int64) (*domain.Balances, error) {
	member, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}
	return &domain.Balances{
		LoyaltyPoint: member.LoyaltyPoint,
		Coin:         member.Coin,
	}, nil
}

// Summary returns the member's balances together with recent earning and
// spending activity.
func (s *Service) Summary(ctx context.Context, memberID int64) (*domain.PointsSummary, error) {
	member, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}

	recent, _, err := s.entries.ListByMember(ctx, memberID, summaryRecentLimit, 0)
	if err != nil {
		return nil, fmt.Errorf("list recent entries: %w", err)
	}

	var spends []*domain.TransactionEntry
	for _, e := range recent {
		if e.Type == domain.TransactionTypeRedeem {
			spends = append(spends, e)
		}
	}

	return &domain.PointsSummary{
		Member:       member,
		Consistent:   member.Consistent(),
		RecentTxns:   recent,
		RecentSpends: spends,
	}, nil
}

// ListTransactions returns the member's full transaction log, paginated.
func (s *Service) ListTransactions(ctx context.Context, memberID int64, limit, offset int) ([]*domain.TransactionEntry, int, error) {
	if memberID <= 0 {
		return nil, 0, domain.NewValidationError("member_id", "must be positive")
	}
	return s.entries.ListByMember(ctx, memberID, limit, offset)
}

// History returns the per-currency view of the member's ledger activity.
func (s *Service) History(ctx context.Context, memberID int64, currency domain.Currency, limit, offset int) ([]*domain.HistoryEntry, int, error) {
	if memberID <= 0 {
		return nil, 0, domain.NewValidationError("member_id", "must be positive")
	}
	if !currency.IsValid() {
		return nil, 0, domain.NewValidationError("currency", "unknown currency")
	}
	return s.entries.HistoryByCurrency(ctx, memberID, currency, limit, offset)
}
