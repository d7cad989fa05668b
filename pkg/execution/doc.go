// Package execution wraps a schedule's work with its before and after
// notifications.
//
// Executor.Execute sends the before-notification, runs the work, and sends
// the after-notification carrying the execution result. Notification
// failures are logged and never stop the work; a work failure is reported
// in the after-notification and returned to the caller as a WorkError.
//
// Execution does not touch the dedup ledger. It is a second, independent
// trigger for the same notifications the tick sends.
//
// Inside work and hooks the current schedule, result and state are available
// through the zapctx package.
package execution
