// Command sweeper expires PENDING submissions whose verification window has
// elapsed. It is intended to be invoked by an external cron job, not as an
// in-process goroutine.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/hendrayp/komunitas-backend/internal/adapter/postgres"
	"github.com/hendrayp/komunitas-backend/internal/app"
	"github.com/hendrayp/komunitas-backend/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	services := app.BuildServices(cfg, pool, logger)

	expired, err := services.Task.SweepOverdue(ctx)
	if err != nil {
		logger.Error("sweep failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("sweep completed",
		slog.Int64("expired", expired),
		slog.Duration("window", cfg.Tasks.VerificationWindow),
	)
}
