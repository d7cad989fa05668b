package zap

import (
	"time"

	"github.com/cpiprint/zap-notify/pkg/core"
)

// Error types
type (
	// NotificationNotFoundError reports a notification name with no registered factory.
	NotificationNotFoundError = core.NotificationNotFoundError

	// DeliveryError is a notification send failure.
	DeliveryError = core.DeliveryError

	// WorkError is a failure of orchestrated work.
	WorkError = core.WorkError

	// LedgerError is a read or write failure against the dedup ledger.
	LedgerError = core.LedgerError

	// NoRetryError marks a delivery error that should not be retried.
	NoRetryError = core.NoRetryError

	// RetryAfterError marks a delivery error that should be retried after a delay.
	RetryAfterError = core.RetryAfterError
)

// Error variables
var (
	ErrNotificationNotFound = core.ErrNotificationNotFound
	ErrInvalidNotification  = core.ErrInvalidNotification
	ErrUnsupportedChannel   = core.ErrUnsupportedChannel
	ErrNoSender             = core.ErrNoSender
	ErrNoRoute              = core.ErrNoRoute
	ErrAlreadyRecorded      = core.ErrAlreadyRecorded
	ErrTickInProgress       = core.ErrTickInProgress
	ErrQueueFull            = core.ErrQueueFull
	ErrDeliveryStopped      = core.ErrDeliveryStopped
	ErrNilSchedule          = core.ErrNilSchedule
	ErrUnsavedSchedule      = core.ErrUnsavedSchedule
	ErrDuplicateSchedule    = core.ErrDuplicateSchedule
)

// NoRetry wraps an error to indicate it should not be retried.
func NoRetry(err error) error {
	return core.NoRetry(err)
}

// RetryAfter wraps an error to indicate it should be retried after a delay.
func RetryAfter(d time.Duration, err error) error {
	return core.RetryAfter(d, err)
}
