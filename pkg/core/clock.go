package core

import (
	"strings"
	"time"
)

// Clock provides the current instant.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock returns the wall clock.
func SystemClock() Clock { return ClockFunc(time.Now) }

// FixedClock returns a clock that always reports t.
func FixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}

// WeekdayName returns the lower-cased English weekday name of t ("monday").
func WeekdayName(t time.Time) string {
	return strings.ToLower(t.Weekday().String())
}

// DateOf returns midnight of t's calendar date in t's location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
