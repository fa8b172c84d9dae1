package rest

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/hendrayp/komunitas-backend/internal/domain"
	"github.com/hendrayp/komunitas-backend/internal/service/boost"
	"github.com/hendrayp/komunitas-backend/internal/service/ledger"
	"github.com/hendrayp/komunitas-backend/internal/service/task"
	"github.com/hendrayp/komunitas-backend/pkg/ctxutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// authedRequest builds a request with an authenticated member context.
func authedRequest(method, target string, body io.Reader, memberID int64, admin bool) *http.Request {
	req := httptest.NewRequest(method, target, body)
	ctx := ctxutil.WithMemberID(req.Context(), memberID)
	if admin {
		ctx = ctxutil.WithAdmin(ctx, true)
	}
	return req.WithContext(ctx)
}

type taskServiceMock struct {
	ListTasksFunc      func(ctx context.Context, filter task.ListFilter) ([]*task.TaskView, int, error)
	GetTaskFunc        func(ctx context.Context, taskID int64) (*task.TaskView, error)
	StartAttemptFunc   func(ctx context.Context, taskID int64) (*domain.Submission, error)
	CompleteAutoFunc   func(ctx context.Context, taskID int64) (*domain.Submission, error)
	SubmitEvidenceFunc func(ctx context.Context, taskID int64, evidenceURL, note string) (*domain.Submission, error)
	GetStatsFunc       func(ctx context.Context) (*domain.TaskStats, error)
}

func (m *taskServiceMock) ListTasks(ctx context.Context, filter task.ListFilter) ([]*task.TaskView, int, error) {
	return m.ListTasksFunc(ctx, filter)
}

func (m *taskServiceMock) GetTask(ctx context.Context, taskID int64) (*task.TaskView, error) {
	return m.GetTaskFunc(ctx, taskID)
}

func (m *taskServiceMock) StartAttempt(ctx context.Context, taskID int64) (*domain.Submission, error) {
	return m.StartAttemptFunc(ctx, taskID)
}

func (m *taskServiceMock) CompleteAuto(ctx context.Context, taskID int64) (*domain.Submission, error) {
	return m.CompleteAutoFunc(ctx, taskID)
}

func (m *taskServiceMock) SubmitEvidence(ctx context.Context, taskID int64, evidenceURL, note string) (*domain.Submission, error) {
	return m.SubmitEvidenceFunc(ctx, taskID, evidenceURL, note)
}

func (m *taskServiceMock) GetStats(ctx context.Context) (*domain.TaskStats, error) {
	return m.GetStatsFunc(ctx)
}

type ledgerServiceMock struct {
	SummaryFunc          func(ctx context.Context, memberID int64) (*domain.PointsSummary, error)
	HistoryFunc          func(ctx context.Context, memberID int64, currency domain.Currency, limit, offset int) ([]*domain.HistoryEntry, int, error)
	ListTransactionsFunc func(ctx context.Context, memberID int64, limit, offset int) ([]*domain.TransactionEntry, int, error)
	RedeemFunc           func(ctx context.Context, input ledger.RedeemInput) (*domain.TransactionEntry, error)
}

func (m *ledgerServiceMock) Summary(ctx context.Context, memberID int64) (*domain.PointsSummary, error) {
	return m.SummaryFunc(ctx, memberID)
}

func (m *ledgerServiceMock) History(ctx context.Context, memberID int64, currency domain.Currency, limit, offset int) ([]*domain.HistoryEntry, int, error) {
	return m.HistoryFunc(ctx, memberID, currency, limit, offset)
}

func (m *ledgerServiceMock) ListTransactions(ctx context.Context, memberID int64, limit, offset int) ([]*domain.TransactionEntry, int, error) {
	return m.ListTransactionsFunc(ctx, memberID, limit, offset)
}

func (m *ledgerServiceMock) Redeem(ctx context.Context, input ledger.RedeemInput) (*domain.TransactionEntry, error) {
	return m.RedeemFunc(ctx, input)
}

type adminLedgerServiceMock struct {
	AwardFunc     func(ctx context.Context, input ledger.AwardInput) (*domain.TransactionEntry, error)
	CorrectFunc   func(ctx context.Context, input ledger.CorrectInput) (*domain.TransactionEntry, error)
	SyncCoinsFunc func(ctx context.Context, memberID int64) (*domain.TransactionEntry, error)
	AuditFunc     func(ctx context.Context) ([]*domain.LedgerDrift, error)
}

func (m *adminLedgerServiceMock) Award(ctx context.Context, input ledger.AwardInput) (*domain.TransactionEntry, error) {
	return m.AwardFunc(ctx, input)
}

func (m *adminLedgerServiceMock) Correct(ctx context.Context, input ledger.CorrectInput) (*domain.TransactionEntry, error) {
	return m.CorrectFunc(ctx, input)
}

func (m *adminLedgerServiceMock) SyncCoins(ctx context.Context, memberID int64) (*domain.TransactionEntry, error) {
	return m.SyncCoinsFunc(ctx, memberID)
}

func (m *adminLedgerServiceMock) Audit(ctx context.Context) ([]*domain.LedgerDrift, error) {
	return m.AuditFunc(ctx)
}

type adminTaskServiceMock struct {
	CreateTaskFunc                func(ctx context.Context, input task.CreateTaskInput) (*domain.TaskDefinition, error)
	RetireTaskFunc                func(ctx context.Context, taskID int64) error
	RejectFunc                    func(ctx context.Context, submissionID int64, notes string) (*domain.Submission, error)
	ReceiveVerificationResultFunc func(ctx context.Context, result domain.VerificationResult) (*domain.Submission, error)
}

func (m *adminTaskServiceMock) CreateTask(ctx context.Context, input task.CreateTaskInput) (*domain.TaskDefinition, error) {
	return m.CreateTaskFunc(ctx, input)
}

func (m *adminTaskServiceMock) RetireTask(ctx context.Context, taskID int64) error {
	return m.RetireTaskFunc(ctx, taskID)
}

func (m *adminTaskServiceMock) Reject(ctx context.Context, submissionID int64, notes string) (*domain.Submission, error) {
	return m.RejectFunc(ctx, submissionID, notes)
}

func (m *adminTaskServiceMock) ReceiveVerificationResult(ctx context.Context, result domain.VerificationResult) (*domain.Submission, error) {
	return m.ReceiveVerificationResultFunc(ctx, result)
}

type boostServiceMock struct {
	CreateEventFunc func(ctx context.Context, input boost.CreateEventInput) (*domain.BoostEvent, error)
	ListEventsFunc  func(ctx context.Context) ([]*domain.BoostEvent, error)
}

func (m *boostServiceMock) CreateEvent(ctx context.Context, input boost.CreateEventInput) (*domain.BoostEvent, error) {
	return m.CreateEventFunc(ctx, input)
}

func (m *boostServiceMock) ListEvents(ctx context.Context) ([]*domain.BoostEvent, error) {
	return m.ListEventsFunc(ctx)
}

type verificationReceiverMock struct {
	ReceiveFunc func(ctx context.Context, result domain.VerificationResult) (*domain.Submission, error)
}

func (m *verificationReceiverMock) ReceiveVerificationResult(ctx context.Context, result domain.VerificationResult) (*domain.Submission, error) {
	return m.ReceiveFunc(ctx, result)
}
