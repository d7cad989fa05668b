package core

import "time"

// Event is the interface for all notification and execution events.
type Event interface {
	eventMarker()
}

// NotificationSent is emitted when a tick dispatched a notification.
type NotificationSent struct {
	ScheduleID   uint
	PeriodID     uint
	Type         NotificationType
	NotifyAt     time.Time
	Notification string
	Timestamp    time.Time
}

func (*NotificationSent) eventMarker() {}

// NotificationFailed is emitted when resolving or dispatching a notification failed.
type NotificationFailed struct {
	ScheduleID uint
	PeriodID   uint
	Type       NotificationType
	NotifyAt   time.Time
	Error      error
	Timestamp  time.Time
}

func (*NotificationFailed) eventMarker() {}

// NotificationSkipped is emitted when the ledger already holds the firing.
type NotificationSkipped struct {
	ScheduleID uint
	PeriodID   uint
	Type       NotificationType
	NotifyAt   time.Time
	Timestamp  time.Time
}

func (*NotificationSkipped) eventMarker() {}

// NotificationBroadcast carries a broadcast-channel payload to subscribers.
type NotificationBroadcast struct {
	Target    Target
	Kind      string
	Message   string
	Data      map[string]any
	Timestamp time.Time
}

func (*NotificationBroadcast) eventMarker() {}

// ExecutionStarted is emitted when orchestrated work begins.
type ExecutionStarted struct {
	ScheduleID uint
	Timestamp  time.Time
}

func (*ExecutionStarted) eventMarker() {}

// ExecutionCompleted is emitted when orchestrated work returns normally.
type ExecutionCompleted struct {
	Result    *ExecutionResult
	Timestamp time.Time
}

func (*ExecutionCompleted) eventMarker() {}

// ExecutionFailed is emitted when orchestrated work fails.
type ExecutionFailed struct {
	Result    *ExecutionResult
	Error     error
	Timestamp time.Time
}

func (*ExecutionFailed) eventMarker() {}
