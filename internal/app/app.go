package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"

	"github.com/hendrayp/komunitas-backend/internal/adapter/notifier"
	"github.com/hendrayp/komunitas-backend/internal/adapter/postgres"
	"github.com/hendrayp/komunitas-backend/internal/adapter/postgres/boostevent"
	"github.com/hendrayp/komunitas-backend/internal/adapter/postgres/ledgerlog"
	"github.com/hendrayp/komunitas-backend/internal/adapter/postgres/member"
	"github.com/hendrayp/komunitas-backend/internal/adapter/postgres/stats"
	"github.com/hendrayp/komunitas-backend/internal/adapter/postgres/submission"
	postgrestask "github.com/hendrayp/komunitas-backend/internal/adapter/postgres/task"
	"github.com/hendrayp/komunitas-backend/internal/adapter/verifier"
	"github.com/hendrayp/komunitas-backend/internal/config"
	"github.com/hendrayp/komunitas-backend/internal/service/boost"
	"github.com/hendrayp/komunitas-backend/internal/service/ledger"
	"github.com/hendrayp/komunitas-backend/internal/service/task"
	"github.com/hendrayp/komunitas-backend/internal/transport/middleware"
	"github.com/hendrayp/komunitas-backend/internal/transport/rest"
)

// Run is the application entry point. It loads configuration, connects to
// the database, wires repositories and services, and serves HTTP until the
// context is cancelled.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	services := BuildServices(cfg, pool, logger)

	var limiter *middleware.RateLimiter
	if cfg.Server.RateLimitPerMinute > 0 {
		limiter = middleware.NewRateLimiter(time.Minute)
		defer limiter.Stop()
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      buildHTTPHandler(cfg, pool, services, limiter, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}

// Services bundles the wired service layer so commands other than the API
// server (the sweeper) can reuse the same construction.
type Services struct {
	Ledger *ledger.Service
	Boost  *boost.Service
	Task   *task.Service
}

// BuildServices wires repositories and services on top of a database pool.
func BuildServices(cfg *config.Config, pool *pgxpool.Pool, logger *slog.Logger) Services {
	tx := postgres.NewTxManager(pool)

	memberRepo := member.New(pool)
	logRepo := ledgerlog.New(pool)
	taskRepo := postgrestask.New(pool)
	subRepo := submission.New(pool)
	statsRepo := stats.New(pool)
	boostRepo := boostevent.New(pool)

	clock := clockwork.NewRealClock()

	ledgerSvc := ledger.NewService(logger, memberRepo, logRepo, tx)
	boostSvc := boost.NewService(logger, boostRepo, clock, cfg.Tasks.DefaultBoostMultiplier)

	verifierAdapter := verifier.New(cfg.Webhooks.VerifierURL, cfg.Webhooks.Timeout, logger)
	notifierAdapter := notifier.New(cfg.Webhooks.NotifierURL, cfg.Webhooks.Timeout, logger)

	taskSvc := task.NewService(logger, taskRepo, subRepo, statsRepo, ledgerSvc,
		boostSvc, verifierAdapter, notifierAdapter, tx, clock, cfg.Tasks.VerificationWindow)

	return Services{Ledger: ledgerSvc, Boost: boostSvc, Task: taskSvc}
}

func buildHTTPHandler(cfg *config.Config, pool *pgxpool.Pool, services Services, limiter *middleware.RateLimiter, logger *slog.Logger) http.Handler {
	router := rest.NewRouter(rest.Handlers{
		Health:   rest.NewHealthHandler(pool, BuildVersion()),
		Tasks:    rest.NewTaskHandler(services.Task, logger),
		Ledger:   rest.NewLedgerHandler(services.Ledger, logger),
		Admin:    rest.NewAdminHandler(services.Ledger, services.Task, services.Boost, logger),
		Callback: rest.NewCallbackHandler(services.Task, cfg.Webhooks.CallbackToken, logger),
	})

	mws := []middleware.Middleware{
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.CORS(cfg.CORS),
	}
	if limiter != nil {
		mws = append(mws, limiter.Limit(cfg.Server.RateLimitPerMinute))
	}
	mws = append(mws, middleware.Auth(cfg.Auth))

	return middleware.Chain(mws...)(router)
}
