package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hendrayp/komunitas-backend/internal/domain"
)

// applyInTx is the single write path of the ledger. It must run inside a
// transaction: the member row is locked, both balances are recomputed, and
// the log entry is appended against the same snapshot.
func (s *Service) applyInTx(
	ctx context.Context,
	memberID int64,
	txType domain.TransactionType,
	eventType domain.EventType,
	loyaltyDelta, coinDelta int64,
	description, reference string,
) (*domain.TransactionEntry, error) {
	member, err := s.members.GetByIDForUpdate(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("lock member: %w", err)
	}

	newLoyalty := member.LoyaltyPoint + loyaltyDelta
	newCoin := member.Coin + coinDelta

	if newLoyalty < 0 || newCoin < 0 {
		if txType == domain.TransactionTypeCorrection {
			return nil, domain.NewValidationError("delta", "correction would drive a balance below zero")
		}
		return nil, fmt.Errorf("member %d: %w", memberID, domain.ErrInsufficientBalance)
	}
	if newCoin > newLoyalty {
		return nil, domain.NewValidationError("delta", "coin balance may not exceed loyalty points")
	}

	if _, err := s.members.UpdateBalances(ctx, memberID, newLoyalty, newCoin); err != nil {
		return nil, fmt.Errorf("update balances: %w", err)
	}

	entry, err := s.entries.Insert(ctx, &domain.TransactionEntry{
		MemberID:      memberID,
		Type:          txType,
		EventType:     eventType,
		LoyaltyDelta:  loyaltyDelta,
		CoinDelta:     coinDelta,
		Description:   description,
		Reference:     reference,
		LoyaltyBefore: member.LoyaltyPoint,
		LoyaltyAfter:  newLoyalty,
		CoinBefore:    member.Coin,
		CoinAfter:     newCoin,
	})
	if err != nil {
		return nil, fmt.Errorf("append log entry: %w", err)
	}

	s.log.InfoContext(ctx, "ledger mutation applied",
		slog.Int64("member_id", memberID),
		slog.String("type", txType.String()),
		slog.String("event_type", eventType.String()),
		slog.Int64("loyalty_delta", loyaltyDelta),
		slog.Int64("coin_delta", coinDelta),
	)

	return entry, nil
}

// Award credits loyalty points, mirroring into coin when the input says so.
// It opens its own transaction.
func (s *Service) Award(ctx context.Context, input AwardInput) (*domain.TransactionEntry, error) {
	var entry *domain.TransactionEntry
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		entry, err = s.AwardInTx(ctx, input)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// AwardInTx is Award for callers that already hold a transaction, such as the
// task service finalizing a submission and paying out atomically. It must not
// be called outside one: RunInTx does not nest.
func (s *Service) AwardInTx(ctx context.Context, input AwardInput) (*domain.TransactionEntry, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	coinDelta := int64(0)
	if input.MirrorToCoin {
		coinDelta = input.Points
	}

	return s.applyInTx(ctx, input.MemberID,
		domain.TransactionTypeEarn, input.EventType,
		input.Points, coinDelta,
		input.Description, input.Reference)
}

// Redeem spends coin. The member keeps every loyalty point; a spend that
// would overdraw the coin balance fails with ErrInsufficientBalance.
func (s *Service) Redeem(ctx context.Context, input RedeemInput) (*domain.TransactionEntry, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var entry *domain.TransactionEntry
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		entry, err = s.applyInTx(ctx, input.MemberID,
			domain.TransactionTypeRedeem, domain.EventTypeRedemption,
			0, -input.Coins,
			input.Description, input.Reference)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Correct applies an admin correction with explicit deltas on either balance.
func (s *Service) Correct(ctx context.Context, input CorrectInput) (*domain.TransactionEntry, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var entry *domain.TransactionEntry
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		entry, err = s.applyInTx(ctx, input.MemberID,
			domain.TransactionTypeCorrection, domain.EventTypeAdminCorrection,
			input.LoyaltyDelta, input.CoinDelta,
			input.Description, input.Reference)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// SyncCoins raises a member's coin balance up to their loyalty points. It
// repairs historical drift where earns were recorded on loyalty only; a
// member already at coin == loyalty_point gets no log entry.
func (s *Service) SyncCoins(ctx context.Context, memberID int64) (*domain.TransactionEntry, error) {
	if memberID <= 0 {
		return nil, domain.NewValidationError("member_id", "must be positive")
	}

	var entry *domain.TransactionEntry
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		member, err := s.members.GetByIDForUpdate(ctx, memberID)
		if err != nil {
			return fmt.Errorf("lock member: %w", err)
		}

		delta := member.LoyaltyPoint - member.Coin
		if delta == 0 {
			return nil
		}

		entry, err = s.applyInTx(ctx, memberID,
			domain.TransactionTypeCorrection, domain.EventTypeAdminCorrection,
			0, delta,
			"sync coin balance to loyalty points", "")
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}
