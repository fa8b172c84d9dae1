package domain

import "time"

// VerificationStrategy selects how a pending submission gets resolved.
type VerificationStrategy string

const (
	// VerificationAuto resolves through an external completion signal.
	VerificationAuto VerificationStrategy = "AUTO"
	// VerificationScreenshot resolves through AI-assisted screenshot review.
	VerificationScreenshot VerificationStrategy = "SCREENSHOT"
)

func (v VerificationStrategy) String() string { return string(v) }

func (v VerificationStrategy) IsValid() bool {
	switch v {
	case VerificationAuto, VerificationScreenshot:
		return true
	}
	return false
}

// TaskStatus is the catalog state of a task definition.
type TaskStatus string

const (
	TaskStatusAvailable TaskStatus = "AVAILABLE"
	TaskStatusRetired   TaskStatus = "RETIRED"
)

func (s TaskStatus) String() string { return string(s) }

func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusAvailable, TaskStatusRetired:
		return true
	}
	return false
}

// TaskDefinition describes one task members can attempt. Both verification
// strategies share the same shape; screenshot tasks additionally carry
// VerificationRules consumed by the AI reviewer.
type TaskDefinition struct {
	ID                int64
	Description       string
	TargetLink        string
	BasePointValue    int64
	Status            TaskStatus
	Strategy          VerificationStrategy
	VerificationRules *string
	PostedAt          time.Time
}
