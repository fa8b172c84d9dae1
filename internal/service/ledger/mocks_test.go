package ledger

import (
	"context"

	"github.com/hendrayp/komunitas-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Hand-written mocks for the private repo interfaces
// ---------------------------------------------------------------------------

type memberRepoMock struct {
	GetByIDFunc          func(ctx context.Context, id int64) (*domain.Member, error)
	GetByIDForUpdateFunc func(ctx context.Context, id int64) (*domain.Member, error)
	UpdateBalancesFunc   func(ctx context.Context, id, loyaltyPoint, coin int64) (*domain.Member, error)
}

func (m *memberRepoMock) GetByID(ctx context.Context, id int64) (*domain.Member, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *memberRepoMock) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Member, error) {
	return m.GetByIDForUpdateFunc(ctx, id)
}

func (m *memberRepoMock) UpdateBalances(ctx context.Context, id, loyaltyPoint, coin int64) (*domain.Member, error) {
	return m.UpdateBalancesFunc(ctx, id, loyaltyPoint, coin)
}

type logRepoMock struct {
	InsertFunc            func(ctx context.Context, e *domain.TransactionEntry) (*domain.TransactionEntry, error)
	ListByMemberFunc      func(ctx context.Context, memberID int64, limit, offset int) ([]*domain.TransactionEntry, int, error)
	HistoryByCurrencyFunc func(ctx context.Context, memberID int64, currency domain.Currency, limit, offset int) ([]*domain.HistoryEntry, int, error)
	SumDeltasFunc         func(ctx context.Context, memberID int64) (int64, int64, error)
	ListDriftFunc         func(ctx context.Context) ([]*domain.LedgerDrift, error)
}

func (m *logRepoMock) Insert(ctx context.Context, e *domain.TransactionEntry) (*domain.TransactionEntry, error) {
	return m.InsertFunc(ctx, e)
}

func (m *logRepoMock) ListByMember(ctx context.Context, memberID int64, limit, offset int) ([]*domain.TransactionEntry, int, error) {
	return m.ListByMemberFunc(ctx, memberID, limit, offset)
}

func (m *logRepoMock) HistoryByCurrency(ctx context.Context, memberID int64, currency domain.Currency, limit, offset int) ([]*domain.HistoryEntry, int, error) {
	return m.HistoryByCurrencyFunc(ctx, memberID, currency, limit, offset)
}

func (m *logRepoMock) SumDeltas(ctx context.Context, memberID int64) (int64, int64, error) {
	return m.SumDeltasFunc(ctx, memberID)
}

func (m *logRepoMock) ListDrift(ctx context.Context) ([]*domain.LedgerDrift, error) {
	return m.ListDriftFunc(ctx)
}

// txManagerMock runs the callback directly, without a real transaction.
type txManagerMock struct{}

func (m *txManagerMock) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
