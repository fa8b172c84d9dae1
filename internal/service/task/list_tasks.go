package task

import (
	"context"
	"errors"
	"fmt"
	"time"

	postgrestask "github.com/hendrayp/komunitas-backend/internal/adapter/postgres/task"
	"github.com/hendrayp/komunitas-backend/internal/domain"
	"github.com/hendrayp/komunitas-backend/pkg/ctxutil"
)

// TaskView is a task definition paired with the caller's standing on it.
// Submission is only populated on single-task lookups.
type TaskView struct {
	Task       *domain.TaskDefinition
	Status     domain.SubmissionStatus
	Deadline   *time.Time
	Submission *domain.Submission
}

// ListFilter narrows a task listing.
type ListFilter struct {
	Strategy domain.VerificationStrategy
	Search   string
	Limit    int
	Offset   int
}

// ListTasks returns available tasks annotated with the caller's effective
// submission status. Tasks the member never attempted read as AVAILABLE;
// pending attempts carry their verification deadline.
func (s *Service) ListTasks(ctx context.Context, filter ListFilter) ([]*TaskView, int, error) {
	memberID, ok := ctxutil.MemberIDFromCtx(ctx)
	if !ok {
		return nil, 0, domain.ErrUnauthorized
	}
	if filter.Strategy != "" && !filter.Strategy.IsValid() {
		return nil, 0, domain.NewValidationError("strategy", "unknown verification strategy")
	}

	tasks, total, err := s.tasks.List(ctx, postgrestask.ListFilter{
		Status:   domain.TaskStatusAvailable,
		Strategy: filter.Strategy,
		Search:   filter.Search,
		Limit:    filter.Limit,
		Offset:   filter.Offset,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}

	subs, err := s.subs.ListByMember(ctx, memberID)
	if err != nil {
		return nil, 0, fmt.Errorf("list submissions: %w", err)
	}
	byTask := make(map[int64]*domain.Submission, len(subs))
	for _, sub := range subs {
		byTask[sub.TaskID] = sub
	}

	now := s.clock.Now()
	views := make([]*TaskView, 0, len(tasks))
	for _, t := range tasks {
		view := &TaskView{Task: t, Status: domain.SubmissionStatusAvailable}
		if sub, attempted := byTask[t.ID]; attempted {
			view.Status = sub.EffectiveStatus(now, s.window)
			if view.Status == domain.SubmissionStatusPending {
				deadline := sub.Deadline(s.window)
				view.Deadline = &deadline
			}
		}
		views = append(views, view)
	}

	return views, total, nil
}

// GetTask returns one task annotated with the caller's standing on it.
// Unlike ListTasks it also resolves retired tasks, so members can still
// inspect a task they already attempted.
func (s *Service) GetTask(ctx context.Context, taskID int64) (*TaskView, error) {
	memberID, ok := ctxutil.MemberIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if taskID <= 0 {
		return nil, domain.NewValidationError("task_id", "must be positive")
	}

	taskDef, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}

	view := &TaskView{Task: taskDef, Status: domain.SubmissionStatusAvailable}
	sub, err := s.subs.GetByMemberAndTask(ctx, memberID, taskID)
	switch {
	case err == nil:
		now := s.clock.Now()
		view.Status = sub.EffectiveStatus(now, s.window)
		view.Submission = sub
		if view.Status == domain.SubmissionStatusPending {
			deadline := sub.Deadline(s.window)
			view.Deadline = &deadline
		}
	case errors.Is(err, domain.ErrNotFound):
		// Never attempted.
	default:
		return nil, fmt.Errorf("get submission: %w", err)
	}

	return view, nil
}
