package domain

import "time"

// MemberStatsCache is the derived, non-authoritative per-member count of
// submissions by outcome. It is recomputed on demand and safely overwritten;
// losing it costs nothing but a recompute.
type MemberStatsCache struct {
	MemberID  int64
	Completed int
	Pending   int
	Failed    int
	UpdatedAt time.Time
}

// TaskStats is the member-facing stats payload. Total is never cached: it is
// always counted live from the current population of available tasks.
type TaskStats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
	Failed    int `json:"failed"`
}

// Notification is an outbound message handed to the delivery collaborator.
type Notification struct {
	MemberID int64  `json:"member_id"`
	Message  string `json:"message"`
	Link     string `json:"link,omitempty"`
}
