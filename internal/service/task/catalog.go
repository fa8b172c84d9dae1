package task

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hendrayp/komunitas-backend/internal/domain"
	"github.com/hendrayp/komunitas-backend/pkg/ctxutil"
)

// CreateTaskInput describes a new catalog entry.
type CreateTaskInput struct {
	Description       string
	TargetLink        string
	BasePointValue    int64
	Strategy          domain.VerificationStrategy
	VerificationRules *string
}

// Validate checks CreateTaskInput fields.
func (in CreateTaskInput) Validate() error {
	if in.Description == "" {
		return domain.NewValidationError("description", "must not be empty")
	}
	if in.BasePointValue <= 0 {
		return domain.NewValidationError("base_point_value", "must be positive")
	}
	if !in.Strategy.IsValid() {
		return domain.NewValidationError("strategy", "unknown verification strategy")
	}
	if in.Strategy == domain.VerificationScreenshot {
		if in.VerificationRules == nil || *in.VerificationRules == "" {
			return domain.NewValidationError("verification_rules", "screenshot tasks require rules")
		}
		if !json.Valid([]byte(*in.VerificationRules)) {
			return domain.NewValidationError("verification_rules", "must be valid JSON")
		}
	}
	return nil
}

// CreateTask publishes a new task to the catalog.
func (s *Service) CreateTask(ctx context.Context, input CreateTaskInput) (*domain.TaskDefinition, error) {
	if !ctxutil.IsAdmin(ctx) {
		return nil, domain.ErrForbidden
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	created, err := s.tasks.Create(ctx, &domain.TaskDefinition{
		Description:       input.Description,
		TargetLink:        input.TargetLink,
		BasePointValue:    input.BasePointValue,
		Status:            domain.TaskStatusAvailable,
		Strategy:          input.Strategy,
		VerificationRules: input.VerificationRules,
	})
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	s.log.InfoContext(ctx, "task published",
		slog.Int64("task_id", created.ID),
		slog.String("strategy", created.Strategy.String()),
		slog.Int64("base_point_value", created.BasePointValue),
	)
	return created, nil
}

// RetireTask closes a task for new attempts. Existing submissions still
// resolve normally.
func (s *Service) RetireTask(ctx context.Context, taskID int64) error {
	if !ctxutil.IsAdmin(ctx) {
		return domain.ErrForbidden
	}
	if taskID <= 0 {
		return domain.NewValidationError("task_id", "must be positive")
	}

	if err := s.tasks.Retire(ctx, taskID); err != nil {
		return fmt.Errorf("retire task: %w", err)
	}

	s.log.InfoContext(ctx, "task retired", slog.Int64("task_id", taskID))
	return nil
}
