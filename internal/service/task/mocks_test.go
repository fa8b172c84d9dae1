package task

import (
	"context"
	"time"

	"github.com/hendrayp/komunitas-backend/internal/adapter/postgres/submission"
	postgrestask "github.com/hendrayp/komunitas-backend/internal/adapter/postgres/task"
	"github.com/hendrayp/komunitas-backend/internal/adapter/verifier"
	"github.com/hendrayp/komunitas-backend/internal/domain"
	"github.com/hendrayp/komunitas-backend/internal/service/ledger"
)

// ---------------------------------------------------------------------------
// Hand-written mocks for the private interfaces
// ---------------------------------------------------------------------------

type taskRepoMock struct {
	CreateFunc         func(ctx context.Context, t *domain.TaskDefinition) (*domain.TaskDefinition, error)
	GetByIDFunc        func(ctx context.Context, id int64) (*domain.TaskDefinition, error)
	ListFunc           func(ctx context.Context, filter postgrestask.ListFilter) ([]*domain.TaskDefinition, int, error)
	RetireFunc         func(ctx context.Context, id int64) error
	CountAvailableFunc func(ctx context.Context) (int, error)
}

func (m *taskRepoMock) Create(ctx context.Context, t *domain.TaskDefinition) (*domain.TaskDefinition, error) {
	return m.CreateFunc(ctx, t)
}

func (m *taskRepoMock) GetByID(ctx context.Context, id int64) (*domain.TaskDefinition, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *taskRepoMock) List(ctx context.Context, filter postgrestask.ListFilter) ([]*domain.TaskDefinition, int, error) {
	return m.ListFunc(ctx, filter)
}

func (m *taskRepoMock) Retire(ctx context.Context, id int64) error {
	return m.RetireFunc(ctx, id)
}

func (m *taskRepoMock) CountAvailable(ctx context.Context) (int, error) {
	return m.CountAvailableFunc(ctx)
}

type submissionRepoMock struct {
	CreateFunc             func(ctx context.Context, memberID, taskID int64) (*domain.Submission, error)
	GetByIDFunc            func(ctx context.Context, id int64) (*domain.Submission, error)
	GetByMemberAndTaskFunc func(ctx context.Context, memberID, taskID int64) (*domain.Submission, error)
	ListByMemberFunc       func(ctx context.Context, memberID int64) ([]*domain.Submission, error)
	UpdateStatusCASFunc    func(ctx context.Context, id int64, from []domain.SubmissionStatus, to domain.SubmissionStatus, patch submission.StatusPatch) (*domain.Submission, bool, error)
	ResetForRetryFunc      func(ctx context.Context, id int64) (*domain.Submission, bool, error)
	StatusCountsFunc       func(ctx context.Context, memberID int64, pendingCutoff time.Time) (int, int, int, error)
	ExpireOverdueFunc      func(ctx context.Context, cutoff time.Time) (int64, error)
}

func (m *submissionRepoMock) Create(ctx context.Context, memberID, taskID int64) (*domain.Submission, error) {
	return m.CreateFunc(ctx, memberID, taskID)
}

func (m *submissionRepoMock) GetByID(ctx context.Context, id int64) (*domain.Submission, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *submissionRepoMock) GetByMemberAndTask(ctx context.Context, memberID, taskID int64) (*domain.Submission, error) {
	return m.GetByMemberAndTaskFunc(ctx, memberID, taskID)
}

func (m *submissionRepoMock) ListByMember(ctx context.Context, memberID int64) ([]*domain.Submission, error) {
	return m.ListByMemberFunc(ctx, memberID)
}

func (m *submissionRepoMock) UpdateStatusCAS(ctx context.Context, id int64, from []domain.SubmissionStatus, to domain.SubmissionStatus, patch submission.StatusPatch) (*domain.Submission, bool, error) {
	return m.UpdateStatusCASFunc(ctx, id, from, to, patch)
}

func (m *submissionRepoMock) ResetForRetry(ctx context.Context, id int64) (*domain.Submission, bool, error) {
	return m.ResetForRetryFunc(ctx, id)
}

func (m *submissionRepoMock) StatusCounts(ctx context.Context, memberID int64, pendingCutoff time.Time) (int, int, int, error) {
	return m.StatusCountsFunc(ctx, memberID, pendingCutoff)
}

func (m *submissionRepoMock) ExpireOverdue(ctx context.Context, cutoff time.Time) (int64, error) {
	return m.ExpireOverdueFunc(ctx, cutoff)
}

type statsRepoMock struct {
	UpsertFunc        func(ctx context.Context, memberID int64, completed, pending, failed int) (*domain.MemberStatsCache, error)
	GetByMemberIDFunc func(ctx context.Context, memberID int64) (*domain.MemberStatsCache, error)
}

func (m *statsRepoMock) Upsert(ctx context.Context, memberID int64, completed, pending, failed int) (*domain.MemberStatsCache, error) {
	return m.UpsertFunc(ctx, memberID, completed, pending, failed)
}

func (m *statsRepoMock) GetByMemberID(ctx context.Context, memberID int64) (*domain.MemberStatsCache, error) {
	return m.GetByMemberIDFunc(ctx, memberID)
}

type awarderMock struct {
	AwardInTxFunc func(ctx context.Context, input ledger.AwardInput) (*domain.TransactionEntry, error)
}

func (m *awarderMock) AwardInTx(ctx context.Context, input ledger.AwardInput) (*domain.TransactionEntry, error) {
	return m.AwardInTxFunc(ctx, input)
}

type boostResolverMock struct {
	BoostedPointsFunc func(ctx context.Context, base int64) (int64, *domain.BoostEvent, error)
}

func (m *boostResolverMock) BoostedPoints(ctx context.Context, base int64) (int64, *domain.BoostEvent, error) {
	if m.BoostedPointsFunc != nil {
		return m.BoostedPointsFunc(ctx, base)
	}
	return base, nil, nil
}

type verifyDispatcherMock struct {
	DispatchFunc func(ctx context.Context, job verifier.DispatchRequest) error
}

func (m *verifyDispatcherMock) Dispatch(ctx context.Context, job verifier.DispatchRequest) error {
	if m.DispatchFunc != nil {
		return m.DispatchFunc(ctx, job)
	}
	return nil
}

type memberNotifierMock struct {
	NotifyFunc func(ctx context.Context, n domain.Notification) error
}

func (m *memberNotifierMock) Notify(ctx context.Context, n domain.Notification) error {
	if m.NotifyFunc != nil {
		return m.NotifyFunc(ctx, n)
	}
	return nil
}

// txManagerMock runs the callback directly, without a real transaction.
type txManagerMock struct{}

func (m *txManagerMock) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
