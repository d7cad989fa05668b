package core

import (
	"time"

	"github.com/google/uuid"
)

// ExecutionStatus is the outcome of orchestrated work.
type ExecutionStatus string

const (
	StatusCompleted ExecutionStatus = "completed"
	StatusFailed    ExecutionStatus = "failed"
)

// ExecutionResult describes one orchestrated execution. It is handed to the
// after-notification and never persisted.
type ExecutionResult struct {
	ID          string
	ScheduleID  uint
	Status      ExecutionStatus
	Duration    time.Duration
	Error       string
	StartedAt   time.Time
	CompletedAt *time.Time
	FailedAt    *time.Time
}

// NewExecutionResult starts a result for a schedule.
func NewExecutionResult(scheduleID uint, startedAt time.Time) *ExecutionResult {
	return &ExecutionResult{
		ID:         uuid.New().String(),
		ScheduleID: scheduleID,
		StartedAt:  startedAt,
	}
}

// Complete marks the result completed at t.
func (r *ExecutionResult) Complete(t time.Time) {
	r.Status = StatusCompleted
	r.Duration = t.Sub(r.StartedAt)
	r.CompletedAt = &t
}

// Fail marks the result failed at t with msg.
func (r *ExecutionResult) Fail(t time.Time, msg string) {
	r.Status = StatusFailed
	r.Duration = t.Sub(r.StartedAt)
	r.Error = msg
	r.FailedAt = &t
}

// Details returns the execution details as a flat map.
func (r *ExecutionResult) Details() map[string]any {
	if r == nil {
		return nil
	}
	d := map[string]any{
		"status":   string(r.Status),
		"duration": r.Duration.Seconds(),
	}
	if r.CompletedAt != nil {
		d["completed_at"] = r.CompletedAt.Format(time.RFC3339)
	}
	if r.FailedAt != nil {
		d["failed_at"] = r.FailedAt.Format(time.RFC3339)
	}
	if r.Status == StatusFailed {
		d["error"] = r.Error
	}
	return d
}

// ExecutionState is the lifecycle position of an orchestrated execution.
type ExecutionState string

const (
	StateIdle       ExecutionState = "idle"
	StateBeforeSent ExecutionState = "before_sent"
	StateExecuting  ExecutionState = "executing"
	StateCompleted  ExecutionState = "completed"
	StateFailed     ExecutionState = "failed"
	StateAfterSent  ExecutionState = "after_sent"
	StateDone       ExecutionState = "done"
)
