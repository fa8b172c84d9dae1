// Package ledger owns every mutation of member balances. All writes go
// through applyInTx, which row-locks the member, enforces the balance
// invariants, and appends one transaction log entry in the same transaction.
package ledger

import (
	"context"
	"log/slog"

	"github.com/hendrayp/komunitas-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type memberRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.Member, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Member, error)
	UpdateBalances(ctx context.Context, id, loyaltyPoint, coin int64) (*domain.Member, error)
}

type logRepo interface {
	Insert(ctx context.Context, e *domain.TransactionEntry) (*domain.TransactionEntry, error)
	ListByMember(ctx context.Context, memberID int64, limit, offset int) ([]*domain.TransactionEntry, int, error)
	HistoryByCurrency(ctx context.Context, memberID int64, currency domain.Currency, limit, offset int) ([]*domain.HistoryEntry, int, error)
	SumDeltas(ctx context.Context, memberID int64) (loyalty, coin int64, err error)
	ListDrift(ctx context.Context) ([]*domain.LedgerDrift, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the ledger business logic.
type Service struct {
	members memberRepo
	entries logRepo
	tx      txManager
	log     *slog.Logger
}

// NewService creates a new Ledger service.
func NewService(log *slog.Logger, members memberRepo, entries logRepo, tx txManager) *Service {
	return &Service{
		members: members,
		entries: entries,
		tx:      tx,
		log:     log.With("service", "ledger"),
	}
}
