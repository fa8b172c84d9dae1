// Package boost resolves point multipliers from scheduled boost events.
//
// Event values are stored as free-form strings for compatibility with the
// legacy settings table: a numeric value up to 10 is a direct multiplier
// ("3" = 3x), a numeric value above 10 is a percentage ("200" = 2x), and
// anything non-numeric is an activation flag that applies the configured
// default multiplier. When several events overlap, the highest multiplier
// wins; boosts never stack.
package boost

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"

	"github.com/hendrayp/komunitas-backend/internal/domain"
)

type eventRepo interface {
	Create(ctx context.Context, e *domain.BoostEvent) (*domain.BoostEvent, error)
	ListActiveAt(ctx context.Context, t time.Time) ([]*domain.BoostEvent, error)
	ListAll(ctx context.Context) ([]*domain.BoostEvent, error)
}

// Service implements boost resolution.
type Service struct {
	events            eventRepo
	clock             clockwork.Clock
	defaultMultiplier decimal.Decimal
	log               *slog.Logger
}

// NewService creates a new Boost service. defaultMultiplier applies to
// activation-flag events and must be at least 1.
func NewService(log *slog.Logger, events eventRepo, clock clockwork.Clock, defaultMultiplier float64) *Service {
	return &Service{
		events:            events,
		clock:             clock,
		defaultMultiplier: decimal.NewFromFloat(defaultMultiplier),
		log:               log.With("service", "boost"),
	}
}

// ActiveMultiplier returns the multiplier in effect right now and the event
// that supplies it. With no active events it returns 1 and a nil event.
func (s *Service) ActiveMultiplier(ctx context.Context) (decimal.Decimal, *domain.BoostEvent, error) {
	now := s.clock.Now()

	events, err := s.events.ListActiveAt(ctx, now)
	if err != nil {
		return decimal.Zero, nil, fmt.Errorf("list active boost events: %w", err)
	}

	best := decimal.NewFromInt(1)
	var bestEvent *domain.BoostEvent
	for _, e := range events {
		m := s.parseValue(e.Value)
		if m.GreaterThan(best) {
			best = m
			bestEvent = e
		}
	}

	if bestEvent != nil {
		s.log.DebugContext(ctx, "boost active",
			slog.String("key", bestEvent.Key),
			slog.String("multiplier", best.String()),
		)
	}

	return best, bestEvent, nil
}

// BoostedPoints applies the active multiplier to a base point value, rounding
// half away from zero.
func (s *Service) BoostedPoints(ctx context.Context, base int64) (int64, *domain.BoostEvent, error) {
	mult, event, err := s.ActiveMultiplier(ctx)
	if err != nil {
		return 0, nil, err
	}

	boosted := decimal.NewFromInt(base).Mul(mult).Round(0).IntPart()
	return boosted, event, nil
}

// parseValue maps a stored event value onto a multiplier. Values that fail
// to produce a usable multiplier fall back conservatively: non-numeric means
// "activated" at the default, non-positive means no boost.
func (s *Service) parseValue(value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return s.defaultMultiplier
	}

	if !d.IsPositive() {
		return decimal.NewFromInt(1)
	}

	if d.LessThanOrEqual(decimal.NewFromInt(10)) {
		return d
	}

	// Percentage form: "150" means 1.5x.
	return d.Div(decimal.NewFromInt(100))
}
