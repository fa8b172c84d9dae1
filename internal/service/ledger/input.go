package ledger

import "github.com/hendrayp/komunitas-backend/internal/domain"

// AwardInput describes an earning mutation. Points is the loyalty amount;
// MirrorToCoin additionally credits the same amount of coin, which is the
// normal policy for task and login awards.
type AwardInput struct {
	MemberID     int64
	Points       int64
	MirrorToCoin bool
	EventType    domain.EventType
	Description  string
	Reference    string
}

// Validate checks AwardInput fields.
func (in AwardInput) Validate() error {
	if in.MemberID <= 0 {
		return domain.NewValidationError("member_id", "must be positive")
	}
	if in.Points <= 0 {
		return domain.NewValidationError("points", "must be positive")
	}
	if !in.EventType.IsValid() {
		return domain.NewValidationError("event_type", "unknown event type")
	}
	if in.Description == "" {
		return domain.NewValidationError("description", "must not be empty")
	}
	return nil
}

// RedeemInput describes a coin spend. Loyalty is untouched: redemption is the
// sanctioned source of coin falling below loyalty_point.
type RedeemInput struct {
	MemberID    int64
	Coins       int64
	Description string
	Reference   string
}

// Validate checks RedeemInput fields.
func (in RedeemInput) Validate() error {
	if in.MemberID <= 0 {
		return domain.NewValidationError("member_id", "must be positive")
	}
	if in.Coins <= 0 {
		return domain.NewValidationError("coins", "must be positive")
	}
	if in.Description == "" {
		return domain.NewValidationError("description", "must not be empty")
	}
	return nil
}

// CorrectInput describes an admin correction. Deltas may be negative; the
// resulting balances must still satisfy 0 <= coin <= loyalty_point.
type CorrectInput struct {
	MemberID     int64
	LoyaltyDelta int64
	CoinDelta    int64
	Description  string
	Reference    string
}

// Validate checks CorrectInput fields.
func (in CorrectInput) Validate() error {
	if in.MemberID <= 0 {
		return domain.NewValidationError("member_id", "must be positive")
	}
	if in.LoyaltyDelta == 0 && in.CoinDelta == 0 {
		return domain.NewValidationError("delta", "correction must change at least one balance")
	}
	if in.Description == "" {
		return domain.NewValidationError("description", "must not be empty")
	}
	return nil
}
