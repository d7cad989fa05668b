package tick

import (
	"time"

	"github.com/cpiprint/zap-notify/pkg/core"
)

// Status is the outcome of one firing.
type Status string

const (
	// StatusSent means a notification was dispatched.
	StatusSent Status = "sent"
	// StatusSkipped means the ledger already held the firing.
	StatusSkipped Status = "skipped"
	// StatusEmpty means no notification was configured; the firing is recorded.
	StatusEmpty Status = "empty"
	// StatusFailed means resolving or dispatching failed; the firing is recorded.
	StatusFailed Status = "failed"
	// StatusLedgerError means the ledger could not be read or written.
	StatusLedgerError Status = "ledger_error"
)

// Firing is a notification due at the current minute.
type Firing struct {
	Schedule *core.Schedule
	Period   *core.SchedulePeriod
	Type     core.NotificationType
	NotifyAt time.Time
}

// Key returns the ledger key of the firing.
func (f Firing) Key() core.LedgerKey {
	return core.NewLedgerKey(f.Period.ID, f.Type, f.NotifyAt)
}

// Outcome records what happened to one firing.
type Outcome struct {
	ScheduleID uint
	PeriodID   uint
	Type       core.NotificationType
	NotifyAt   time.Time
	Status     Status
	Err        error
}

// Report summarizes one tick.
type Report struct {
	Now      time.Time
	Duration time.Duration
	Outcomes []Outcome
}

// Count returns the number of outcomes with status s.
func (r *Report) Count(s Status) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == s {
			n++
		}
	}
	return n
}

// Sent returns the number of dispatched notifications.
func (r *Report) Sent() int { return r.Count(StatusSent) }
