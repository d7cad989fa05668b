package core

import (
	"context"
	"time"
)

// Starter is the interface for starting background services.
type Starter interface {
	Start(ctx context.Context) error
}

// ScheduleStore reads schedules and their periods.
type ScheduleStore interface {
	// ActiveSchedules returns active schedules with periods loaded. Recurrence
	// and date bounds are filtered by the caller.
	ActiveSchedules(ctx context.Context) ([]*Schedule, error)
}

// Ledger is the persistent record of handled notification firings.
type Ledger interface {
	// AlreadySent reports whether the triple has been recorded.
	AlreadySent(ctx context.Context, periodID uint, typ NotificationType, notifyAt time.Time) (bool, error)

	// RecordSent inserts the triple. It returns ErrAlreadyRecorded when the
	// triple exists.
	RecordSent(ctx context.Context, periodID uint, typ NotificationType, notifyAt, sentAt time.Time) error

	// Claim atomically inserts the triple and reports whether this call
	// created it.
	Claim(ctx context.Context, periodID uint, typ NotificationType, notifyAt, sentAt time.Time) (bool, error)
}

// NotificationWriter persists database-channel notifications.
type NotificationWriter interface {
	SaveNotification(ctx context.Context, n *DatabaseNotification) error
}

// Storage is the full persistence layer.
type Storage interface {
	ScheduleStore
	Ledger
	NotificationWriter

	// Migrate creates the necessary database tables.
	Migrate(ctx context.Context) error
}
