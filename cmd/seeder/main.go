// Command seeder populates the database with an initial task catalog and,
// optionally, demo members. It is intended to be run offline against a fresh
// database, not as part of the main server.
//
// Flags:
//
//	--file     path to a JSON seed file (required)
//	--dry-run  parse the seed file without writing to DB
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/hendrayp/komunitas-backend/internal/adapter/postgres"
	"github.com/hendrayp/komunitas-backend/internal/adapter/postgres/member"
	postgrestask "github.com/hendrayp/komunitas-backend/internal/adapter/postgres/task"
	"github.com/hendrayp/komunitas-backend/internal/app"
	"github.com/hendrayp/komunitas-backend/internal/config"
	"github.com/hendrayp/komunitas-backend/internal/domain"
)

type seedFile struct {
	Members []seedMember `json:"members"`
	Tasks   []seedTask   `json:"tasks"`
}

type seedMember struct {
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}

type seedTask struct {
	Description       string  `json:"description"`
	TargetLink        string  `json:"target_link"`
	BasePointValue    int64   `json:"base_point_value"`
	Strategy          string  `json:"strategy"`
	VerificationRules *string `json:"verification_rules,omitempty"`
}

func main() {
	fileFlag := flag.String("file", "", "path to JSON seed file")
	dryRunFlag := flag.Bool("dry-run", false, "parse seed file without writing to DB")
	flag.Parse()

	if *fileFlag == "" {
		log.Fatal("--file is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	seed, err := loadSeedFile(*fileFlag)
	if err != nil {
		logger.Error("load seed file", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("seed file parsed",
		slog.Int("members", len(seed.Members)),
		slog.Int("tasks", len(seed.Tasks)),
	)

	if *dryRunFlag {
		logger.Info("dry run, nothing written")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	memberRepo := member.New(pool)
	taskRepo := postgrestask.New(pool)

	for _, m := range seed.Members {
		if _, err := memberRepo.Create(ctx, m.DisplayName, m.Email); err != nil {
			logger.Error("create member",
				slog.String("email", m.Email),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	for _, t := range seed.Tasks {
		def := &domain.TaskDefinition{
			Description:       t.Description,
			TargetLink:        t.TargetLink,
			BasePointValue:    t.BasePointValue,
			Status:            domain.TaskStatusAvailable,
			Strategy:          domain.VerificationStrategy(t.Strategy),
			VerificationRules: t.VerificationRules,
		}
		if !def.Strategy.IsValid() {
			logger.Error("invalid strategy",
				slog.String("description", t.Description),
				slog.String("strategy", t.Strategy),
			)
			os.Exit(1)
		}
		if _, err := taskRepo.Create(ctx, def); err != nil {
			logger.Error("create task",
				slog.String("description", t.Description),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	logger.Info("seeding completed",
		slog.Int("members", len(seed.Members)),
		slog.Int("tasks", len(seed.Tasks)),
	)
}

func loadSeedFile(path string) (*seedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var seed seedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, err
	}
	return &seed, nil
}
