package domain

import "time"

// BoostEvent is a time-boxed point multiplier configuration row.
//
// Value is a polymorphic string: a number up to 10 is a direct multiplier
// ("2" means x2), a number above 10 is a percentage ("200" means x2.0), and
// anything non-numeric ("true", "active") is an activation flag whose
// multiplier is supplied by the caller. Parsing lives in the boost resolver.
type BoostEvent struct {
	ID        int64
	Key       string
	Name      string
	Value     string
	StartsAt  time.Time
	EndsAt    time.Time
	CreatedAt time.Time
}

// ActiveAt reports whether the event window [StartsAt, EndsAt] contains t.
func (e BoostEvent) ActiveAt(t time.Time) bool {
	return !t.Before(e.StartsAt) && !t.After(e.EndsAt)
}
