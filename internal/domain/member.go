package domain

import "time"

// Member is a registered community member with a dual-currency balance.
//
// LoyaltyPoint is the cumulative reputation score; it only decreases through
// admin corrections. Coin is the spendable balance, bounded above by
// LoyaltyPoint. Both are mutated exclusively through the ledger service.
type Member struct {
	ID           int64
	DisplayName  string
	Email        string
	LoyaltyPoint int64
	Coin         int64
	CreatedAt    time.Time
}

// Consistent reports whether the member balances satisfy the ledger
// invariant: 0 <= coin <= loyalty_point.
func (m Member) Consistent() bool {
	return m.Coin >= 0 && m.LoyaltyPoint >= 0 && m.Coin <= m.LoyaltyPoint
}

// Balances is a snapshot of both currency balances.
type Balances struct {
	LoyaltyPoint int64 `json:"loyalty_balance"`
	Coin         int64 `json:"coin_balance"`
}

// PointsSummary combines current balances with recent ledger activity.
type PointsSummary struct {
	Member       *Member
	Consistent   bool
	RecentTxns   []*TransactionEntry
	RecentSpends []*TransactionEntry
}
