// Package zapctx provides public access to tick and execution context for
// work functions, hooks and notification factories.
package zapctx

import (
	"context"
	"time"

	"github.com/cpiprint/zap-notify/pkg/core"
	intctx "github.com/cpiprint/zap-notify/pkg/internal/context"
)

// ScheduleFromContext returns the schedule being executed or notified, or nil.
func ScheduleFromContext(ctx context.Context) *core.Schedule {
	if e := intctx.GetExecution(ctx); e != nil {
		return e.Schedule
	}
	if f := intctx.GetFiring(ctx); f != nil {
		return f.Schedule
	}
	return nil
}

// ExecutionFromContext returns the result of the current orchestrated
// execution, or nil outside Executor.Execute.
func ExecutionFromContext(ctx context.Context) *core.ExecutionResult {
	if e := intctx.GetExecution(ctx); e != nil {
		return e.Result
	}
	return nil
}

// StateFromContext returns the state of the current execution, or "" outside one.
func StateFromContext(ctx context.Context) core.ExecutionState {
	if e := intctx.GetExecution(ctx); e != nil {
		return e.State()
	}
	return ""
}

// FiringFromContext returns the period, notification type and notify-at of
// the tick firing being dispatched. ok is false outside a tick.
func FiringFromContext(ctx context.Context) (period *core.SchedulePeriod, typ core.NotificationType, notifyAt time.Time, ok bool) {
	f := intctx.GetFiring(ctx)
	if f == nil {
		return nil, "", time.Time{}, false
	}
	return f.Period, f.Type, f.NotifyAt, true
}
