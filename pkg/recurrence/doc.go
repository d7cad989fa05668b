// Package recurrence decides which schedule periods are candidates for a
// notification tick on a given calendar day.
//
// This package includes:
//   - Rule implementations for daily, weekly, monthly and cron frequencies
//   - ActiveOn, the per-schedule selection predicate (active flag, rule, date bounds)
//   - Matcher, which fetches schedules from a core.ScheduleStore and yields
//     candidate (schedule, period) pairs lazily
//
// Candidates are recomputed on every call; nothing is cached between ticks.
package recurrence
