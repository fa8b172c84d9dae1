package domain

import "time"

// Currency identifies one of the two member balances.
type Currency string

const (
	CurrencyLoyalty Currency = "LOYALTY"
	CurrencyCoin    Currency = "COIN"
)

func (c Currency) String() string { return string(c) }

func (c Currency) IsValid() bool {
	switch c {
	case CurrencyLoyalty, CurrencyCoin:
		return true
	}
	return false
}

// TransactionType classifies a ledger mutation.
//
// Earn mirrors loyalty into coin by policy; redeem spends coin only and is
// the sanctioned source of coin < loyalty_point drift; correction is the
// admin-only type allowed to repair drift directly.
type TransactionType string

const (
	TransactionTypeEarn       TransactionType = "EARN"
	TransactionTypeRedeem     TransactionType = "REDEEM"
	TransactionTypeCorrection TransactionType = "CORRECTION"
)

func (t TransactionType) String() string { return string(t) }

func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeEarn, TransactionTypeRedeem, TransactionTypeCorrection:
		return true
	}
	return false
}

// EventType records what caused a ledger mutation.
type EventType string

const (
	EventTypeTask            EventType = "TASK"
	EventTypeLogin           EventType = "LOGIN"
	EventTypeRedemption      EventType = "REDEMPTION"
	EventTypeAdminManual     EventType = "ADMIN_MANUAL"
	EventTypeAdminCorrection EventType = "ADMIN_CORRECTION"
)

func (e EventType) String() string { return string(e) }

func (e EventType) IsValid() bool {
	switch e {
	case EventTypeTask, EventTypeLogin, EventTypeRedemption,
		EventTypeAdminManual, EventTypeAdminCorrection:
		return true
	}
	return false
}

// TransactionEntry is one consolidated audit record per ledger mutation.
// It captures before/after snapshots of both balances regardless of which
// currency changed, so the log alone can reconstruct any member's balance
// history. Rows are write-once: never updated, never deleted.
type TransactionEntry struct {
	ID            int64
	MemberID      int64
	Type          TransactionType
	EventType     EventType
	LoyaltyDelta  int64
	CoinDelta     int64
	Description   string
	Reference     string
	LoyaltyBefore int64
	LoyaltyAfter  int64
	CoinBefore    int64
	CoinAfter     int64
	CreatedAt     time.Time
}

// HistoryEntry is a per-currency view of a transaction-log row. The legacy
// schema carried separate loyalty and coin history tables; both are now
// derived from the transaction log.
type HistoryEntry struct {
	MemberID    int64
	Delta       int64
	Description string
	EventType   EventType
	CreatedAt   time.Time
}

// LedgerDrift describes one member whose stored balances disagree with the
// transaction log or violate the coin <= loyalty_point invariant.
type LedgerDrift struct {
	MemberID       int64
	LoyaltyPoint   int64
	Coin           int64
	LoyaltyFromLog int64
	CoinFromLog    int64
	InvariantOK    bool
}
