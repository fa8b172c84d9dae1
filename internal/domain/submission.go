package domain

import "time"

// SubmissionStatus is the lifecycle state of one member's attempt at one task.
//
// "Available" is virtual: it means no submission row exists yet (or the
// catalog state of the task, from a member's point of view). Completed and
// rejected are terminal; failed is retryable.
type SubmissionStatus string

const (
	SubmissionStatusAvailable SubmissionStatus = "AVAILABLE"
	SubmissionStatusPending   SubmissionStatus = "PENDING"
	SubmissionStatusCompleted SubmissionStatus = "COMPLETED"
	SubmissionStatusFailed    SubmissionStatus = "FAILED"
	SubmissionStatusRejected  SubmissionStatus = "REJECTED"
)

func (s SubmissionStatus) String() string { return string(s) }

func (s SubmissionStatus) IsValid() bool {
	switch s {
	case SubmissionStatusPending, SubmissionStatusCompleted,
		SubmissionStatusFailed, SubmissionStatusRejected:
		return true
	}
	return false
}

// Terminal reports whether the status permits no further member-driven
// transitions. Failed is not terminal: the member may retry.
func (s SubmissionStatus) Terminal() bool {
	return s == SubmissionStatusCompleted || s == SubmissionStatusRejected
}

// Submission is one member's attempt record for one task. Exactly one row
// exists per (member, task) pair; retries mutate the row in place.
type Submission struct {
	ID            int64
	MemberID      int64
	TaskID        int64
	Status        SubmissionStatus
	StartedAt     time.Time
	VerifiedAt    *time.Time
	EvidenceURL   *string
	Note          *string
	AdminNotes    *string
	Confidence    *float64
	ExtractedText *string
	UpdatedAt     time.Time
}

// EffectiveStatus derives the externally observable status at the given
// instant. A pending submission whose verification window has elapsed reads
// as failed without any stored transition; a background sweep may later
// persist it, but correctness does not depend on one.
func (s *Submission) EffectiveStatus(now time.Time, window time.Duration) SubmissionStatus {
	if s.Status == SubmissionStatusPending && now.Sub(s.StartedAt) > window {
		return SubmissionStatusFailed
	}
	return s.Status
}

// Overdue reports whether a pending submission has outlived the verification
// window at the given instant.
func (s *Submission) Overdue(now time.Time, window time.Duration) bool {
	return s.Status == SubmissionStatusPending && now.Sub(s.StartedAt) > window
}

// Deadline returns the instant at which a pending submission expires, or the
// zero time for non-pending submissions.
func (s *Submission) Deadline(window time.Duration) time.Time {
	if s.Status != SubmissionStatusPending {
		return time.Time{}
	}
	return s.StartedAt.Add(window)
}

// VerificationResult is the payload delivered by the AI reviewer callback.
// Delivery is at-least-once; handlers must treat redelivery for a terminal
// submission as a no-op.
type VerificationResult struct {
	SubmissionID  int64
	Confidence    float64
	ExtractedText string
	Passed        bool
}
