// Package core provides the fundamental types and interfaces for the zap package.
//
// This package contains:
//   - Schedule and SchedulePeriod data models with GORM annotations
//   - LedgerEntry, the persisted record of a handled notification
//   - ExecutionResult handed to after-notifications
//   - Config and Settings for the notifications switches
//   - Storage interfaces (ScheduleStore, Ledger)
//   - Event types for monitoring ticks and executions
//   - Error types separating delivery, work and ledger failures
//
// Most users should import the root package github.com/cpiprint/zap-notify
// instead of this package directly.
package core
