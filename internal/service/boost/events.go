package boost

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hendrayp/komunitas-backend/internal/domain"
)

// CreateEventInput describes a new scheduled boost.
type CreateEventInput struct {
	Key      string
	Name     string
	Value    string
	StartsAt time.Time
	EndsAt   time.Time
}

// Validate checks CreateEventInput fields.
func (in CreateEventInput) Validate() error {
	if in.Key == "" {
		return domain.NewValidationError("key", "must not be empty")
	}
	if in.Value == "" {
		return domain.NewValidationError("value", "must not be empty")
	}
	if in.StartsAt.IsZero() || in.EndsAt.IsZero() {
		return domain.NewValidationError("window", "starts_at and ends_at are required")
	}
	if in.EndsAt.Before(in.StartsAt) {
		return domain.NewValidationError("window", "ends_at must not precede starts_at")
	}
	return nil
}

// CreateEvent schedules a boost event.
func (s *Service) CreateEvent(ctx context.Context, input CreateEventInput) (*domain.BoostEvent, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	event, err := s.events.Create(ctx, &domain.BoostEvent{
		Key:      input.Key,
		Name:     input.Name,
		Value:    input.Value,
		StartsAt: input.StartsAt,
		EndsAt:   input.EndsAt,
	})
	if err != nil {
		return nil, fmt.Errorf("create boost event: %w", err)
	}

	s.log.InfoContext(ctx, "boost event scheduled",
		slog.String("key", event.Key),
		slog.Time("starts_at", event.StartsAt),
		slog.Time("ends_at", event.EndsAt),
	)
	return event, nil
}

// ListEvents returns every scheduled boost event.
func (s *Service) ListEvents(ctx context.Context) ([]*domain.BoostEvent, error) {
	return s.events.ListAll(ctx)
}
