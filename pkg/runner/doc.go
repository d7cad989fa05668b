// Package runner triggers the notification tick once per minute.
//
// The Runner wraps a robfig/cron engine with SkipIfStillRunning and Recover
// so a slow tick never overlaps the next one and a panic in one tick does
// not stop the schedule. RunOnce performs a single tick for command-line
// use.
package runner
