// Package context provides internal context helpers for notification ticks
// and orchestrated executions.
//
// This package is internal and should not be imported directly.
// It provides context value types for:
//   - Execution: the schedule, result and state machine of an orchestrated run
//   - Firing: the (period, type, notify-at) triple a tick is dispatching
package context
