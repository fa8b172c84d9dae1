// Package task implements the task catalog and the submission verification
// state machine. Finalizing a submission and paying out its points happen in
// one transaction; stats recompute and notifications run after commit and are
// allowed to fail.
package task

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/hendrayp/komunitas-backend/internal/adapter/postgres/submission"
	postgrestask "github.com/hendrayp/komunitas-backend/internal/adapter/postgres/task"
	"github.com/hendrayp/komunitas-backend/internal/adapter/verifier"
	"github.com/hendrayp/komunitas-backend/internal/domain"
	"github.com/hendrayp/komunitas-backend/internal/service/ledger"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type taskRepo interface {
	Create(ctx context.Context, t *domain.TaskDefinition) (*domain.TaskDefinition, error)
	GetByID(ctx context.Context, id int64) (*domain.TaskDefinition, error)
	List(ctx context.Context, filter postgrestask.ListFilter) ([]*domain.TaskDefinition, int, error)
	Retire(ctx context.Context, id int64) error
	CountAvailable(ctx context.Context) (int, error)
}

type submissionRepo interface {
	Create(ctx context.Context, memberID, taskID int64) (*domain.Submission, error)
	GetByID(ctx context.Context, id int64) (*domain.Submission, error)
	GetByMemberAndTask(ctx context.Context, memberID, taskID int64) (*domain.Submission, error)
	ListByMember(ctx context.Context, memberID int64) ([]*domain.Submission, error)
	UpdateStatusCAS(ctx context.Context, id int64, from []domain.SubmissionStatus, to domain.SubmissionStatus, patch submission.StatusPatch) (*domain.Submission, bool, error)
	ResetForRetry(ctx context.Context, id int64) (*domain.Submission, bool, error)
	StatusCounts(ctx context.Context, memberID int64, pendingCutoff time.Time) (completed, pending, failed int, err error)
	ExpireOverdue(ctx context.Context, cutoff time.Time) (int64, error)
}

type statsRepo interface {
	Upsert(ctx context.Context, memberID int64, completed, pending, failed int) (*domain.MemberStatsCache, error)
	GetByMemberID(ctx context.Context, memberID int64) (*domain.MemberStatsCache, error)
}

type awarder interface {
	AwardInTx(ctx context.Context, input ledger.AwardInput) (*domain.TransactionEntry, error)
}

type boostResolver interface {
	BoostedPoints(ctx context.Context, base int64) (int64, *domain.BoostEvent, error)
}

type verifyDispatcher interface {
	Dispatch(ctx context.Context, job verifier.DispatchRequest) error
}

type memberNotifier interface {
	Notify(ctx context.Context, n domain.Notification) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the task and submission business logic.
type Service struct {
	tasks    taskRepo
	subs     submissionRepo
	stats    statsRepo
	ledger   awarder
	boosts   boostResolver
	verifier verifyDispatcher
	notifier memberNotifier
	tx       txManager
	clock    clockwork.Clock
	window   time.Duration
	log      *slog.Logger
}

// NewService creates a new Task service. window is how long a pending
// submission may wait for verification before it reads as failed.
func NewService(
	log *slog.Logger,
	tasks taskRepo,
	subs submissionRepo,
	stats statsRepo,
	ledgerSvc awarder,
	boosts boostResolver,
	verifierDispatch verifyDispatcher,
	notifier memberNotifier,
	tx txManager,
	clock clockwork.Clock,
	window time.Duration,
) *Service {
	return &Service{
		tasks:    tasks,
		subs:     subs,
		stats:    stats,
		ledger:   ledgerSvc,
		boosts:   boosts,
		verifier: verifierDispatch,
		notifier: notifier,
		tx:       tx,
		clock:    clock,
		window:   window,
		log:      log.With("service", "task"),
	}
}
