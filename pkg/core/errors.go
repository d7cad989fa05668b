package core

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotificationNotFound = errors.New("zap: notification not found")
	ErrInvalidNotification  = errors.New("zap: invalid notification name")
	ErrUnsupportedChannel   = errors.New("zap: channel not supported by notification")
	ErrNoSender             = errors.New("zap: no sender registered for channel")
	ErrNoRoute              = errors.New("zap: target has no route for channel")
	ErrAlreadyRecorded      = errors.New("zap: notification already recorded")
	ErrTickInProgress       = errors.New("zap: tick already in progress")
	ErrQueueFull            = errors.New("zap: delivery queue full")
	ErrDeliveryStopped      = errors.New("zap: delivery service stopped")
	ErrNilSchedule          = errors.New("zap: nil schedule")
	ErrUnsavedSchedule      = errors.New("zap: schedule has no id")
	ErrDuplicateSchedule    = errors.New("zap: schedule listed more than once")
)

// NotificationNotFoundError reports a notification name with no registered factory.
type NotificationNotFoundError struct {
	Name string
}

func (e *NotificationNotFoundError) Error() string {
	return fmt.Sprintf("zap: notification %q does not exist", e.Name)
}

// Is matches ErrNotificationNotFound.
func (e *NotificationNotFoundError) Is(target error) bool {
	return target == ErrNotificationNotFound
}

// DeliveryError is a notification send failure. Callers log and continue.
type DeliveryError struct {
	Notification string
	Channel      Channel
	Err          error
}

func (e *DeliveryError) Error() string {
	if e.Channel != "" {
		return fmt.Sprintf("zap: deliver %s via %s: %v", e.Notification, e.Channel, e.Err)
	}
	return fmt.Sprintf("zap: deliver %s: %v", e.Notification, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// WorkError is a failure of orchestrated work. It is returned to the caller.
type WorkError struct {
	ScheduleID uint
	Err        error
}

func (e *WorkError) Error() string {
	return fmt.Sprintf("zap: schedule %d work failed: %v", e.ScheduleID, e.Err)
}

func (e *WorkError) Unwrap() error {
	return e.Err
}

// LedgerError is a read or write failure against the dedup ledger.
type LedgerError struct {
	Op  string
	Key LedgerKey
	Err error
}

func (e *LedgerError) Error() string {
	return fmt.Sprintf("zap: ledger %s (period %d, %s, %s): %v",
		e.Op, e.Key.PeriodID, e.Key.Type, e.Key.NotifyAt.Format(time.RFC3339), e.Err)
}

func (e *LedgerError) Unwrap() error {
	return e.Err
}

// PanicError carries a recovered panic value.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// NoRetryError marks a delivery error that should not be retried.
type NoRetryError struct {
	Err error
}

func (e *NoRetryError) Error() string {
	return fmt.Sprintf("no retry: %v", e.Err)
}

func (e *NoRetryError) Unwrap() error {
	return e.Err
}

// NoRetry wraps an error to indicate it should not be retried.
func NoRetry(err error) error {
	return &NoRetryError{Err: err}
}

// RetryAfterError marks a delivery error that should be retried after a delay.
type RetryAfterError struct {
	Err   error
	Delay time.Duration
}

func (e *RetryAfterError) Error() string {
	return fmt.Sprintf("retry after %v: %v", e.Delay, e.Err)
}

func (e *RetryAfterError) Unwrap() error {
	return e.Err
}

// RetryAfter wraps an error to indicate it should be retried after a delay.
func RetryAfter(d time.Duration, err error) error {
	return &RetryAfterError{Err: err, Delay: d}
}
