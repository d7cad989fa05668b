// Package zap sends before and after notifications for recurring schedules
// exactly once per period, notification type and minute.
//
// This is the main package users should import. It re-exports the public
// types of the pkg/ packages for a clean API surface.
//
// Basic usage:
//
//	db, _ := gorm.Open(sqlite.Open("zap.db"), &gorm.Config{})
//	store := zap.NewGormStorage(db)
//	store.Migrate(ctx)
//
//	settings := zap.NewSettings(zap.DefaultConfig())
//	registry := zap.NewRegistry()
//	zap.RegisterDefaults(registry, zap.DefaultsOptions{Channels: zap.ChannelsFrom(settings)})
//
//	svc := zap.NewDeliveryService()
//	svc.Register(zap.ChannelDatabase, zap.NewDatabaseSender(store))
//	go svc.Start(ctx)
//
//	dispatcher := zap.NewDispatcher(registry, svc, zap.WithSettings(settings))
//	ticker := zap.NewTicker(store, store, dispatcher)
//	zap.NewRunner(ticker).Start(ctx)
//
// Work tied to a schedule can be wrapped with its notifications:
//
//	zap.NewExecutor(dispatcher).Execute(ctx, schedule, func(ctx context.Context) (any, error) {
//	    return runBackup(ctx)
//	})
package zap

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/cpiprint/zap-notify/pkg/core"
	"github.com/cpiprint/zap-notify/pkg/delivery"
	"github.com/cpiprint/zap-notify/pkg/events"
	"github.com/cpiprint/zap-notify/pkg/execution"
	"github.com/cpiprint/zap-notify/pkg/notification"
	"github.com/cpiprint/zap-notify/pkg/recurrence"
	"github.com/cpiprint/zap-notify/pkg/runner"
	"github.com/cpiprint/zap-notify/pkg/security"
	"github.com/cpiprint/zap-notify/pkg/storage"
	"github.com/cpiprint/zap-notify/pkg/tick"
	"github.com/cpiprint/zap-notify/pkg/zapctx"
)

type (
	// Schedule is a recurring time window owned by a schedulable entity.
	Schedule = core.Schedule

	// SchedulePeriod is a time-of-day slot of a schedule.
	SchedulePeriod = core.SchedulePeriod

	// Offsets is a list of notification offsets in minutes.
	Offsets = core.Offsets

	// TimeOfDay is a wall-clock time without a date.
	TimeOfDay = core.TimeOfDay

	// FrequencyConfig parameterizes a schedule's recurrence rule.
	FrequencyConfig = core.FrequencyConfig

	// Frequency is the recurrence rule of a schedule.
	Frequency = core.Frequency

	// NotificationType is before or after.
	NotificationType = core.NotificationType

	// Channel identifies a delivery channel.
	Channel = core.Channel

	// Config holds the notification options.
	Config = core.Config

	// Settings holds a Config that can be swapped at runtime.
	Settings = core.Settings

	// Target is an addressable notification recipient.
	Target = core.Target

	// TargetResolver enriches the target of a schedule.
	TargetResolver = core.TargetResolver

	// Clock provides the current time.
	Clock = core.Clock

	// ExecutionResult describes one orchestrated execution.
	ExecutionResult = core.ExecutionResult

	// Storage is the full persistence layer.
	Storage = core.Storage

	// Event is the interface for all notification and execution events.
	Event = core.Event

	// NotificationSent is emitted when a tick dispatched a notification.
	NotificationSent = core.NotificationSent

	// NotificationFailed is emitted when a tick failed to dispatch a notification.
	NotificationFailed = core.NotificationFailed

	// NotificationSkipped is emitted when the ledger already held a firing.
	NotificationSkipped = core.NotificationSkipped

	// NotificationBroadcast carries a broadcast-channel payload.
	NotificationBroadcast = core.NotificationBroadcast

	// ExecutionStarted is emitted when orchestrated work begins.
	ExecutionStarted = core.ExecutionStarted

	// ExecutionCompleted is emitted when orchestrated work returns normally.
	ExecutionCompleted = core.ExecutionCompleted

	// ExecutionFailed is emitted when orchestrated work fails.
	ExecutionFailed = core.ExecutionFailed

	// Notification is a renderable message for a schedule.
	Notification = notification.Notification

	// Factory builds a registered notification.
	Factory = notification.Factory

	// Registry maps notification names to factories.
	Registry = notification.Registry

	// DefaultsOptions configures the built-in notifications.
	DefaultsOptions = notification.DefaultsOptions

	// Dispatcher resolves schedule notifications and hands them to delivery.
	Dispatcher = notification.Dispatcher

	// DispatcherOption configures a Dispatcher.
	DispatcherOption = notification.Option

	// DeliveryService routes notifications to channel senders.
	DeliveryService = delivery.Service

	// DeliveryOption configures a DeliveryService.
	DeliveryOption = delivery.Option

	// Sender delivers one rendered payload on one channel.
	Sender = delivery.Sender

	// Ticker evaluates schedules once per minute.
	Ticker = tick.Ticker

	// TickOption configures a Ticker.
	TickOption = tick.Option

	// Report summarizes one tick.
	Report = tick.Report

	// Executor runs work between a schedule's notifications.
	Executor = execution.Executor

	// Work is the job wrapped by an execution.
	Work = execution.Work

	// BatchResult is the outcome of one schedule in ExecuteBatch.
	BatchResult = execution.BatchResult

	// ExecutorOption configures an Executor.
	ExecutorOption = execution.Option

	// Runner triggers the tick from a cron schedule.
	Runner = runner.Runner

	// RunnerOption configures a Runner.
	RunnerOption = runner.Option

	// Bus fans events out to subscriber channels.
	Bus = events.Bus

	// GormStorage implements Storage using GORM.
	GormStorage = storage.GormStorage
)

// Notification types
const (
	NotifyBefore = core.NotifyBefore
	NotifyAfter  = core.NotifyAfter
)

// Frequencies
const (
	FrequencyNone    = core.FrequencyNone
	FrequencyDaily   = core.FrequencyDaily
	FrequencyWeekly  = core.FrequencyWeekly
	FrequencyMonthly = core.FrequencyMonthly
	FrequencyCron    = core.FrequencyCron
)

// Channels
const (
	ChannelMail      = core.ChannelMail
	ChannelDatabase  = core.ChannelDatabase
	ChannelBroadcast = core.ChannelBroadcast
	ChannelTelegram  = core.ChannelTelegram
	ChannelLog       = core.ChannelLog
)

// Built-in notification names
const (
	StartingNotification  = notification.StartingName
	CompletedNotification = notification.CompletedName
)

// Security limits
const (
	MaxNotificationNameLength = security.MaxNotificationNameLength
	MaxRetries                = security.MaxRetries
	MaxConcurrency            = security.MaxConcurrency
	MaxErrorMessageLength     = security.MaxErrorMessageLength
	MaxOffsetMinutes          = security.MaxOffsetMinutes
)

// DefaultConfig returns the default notification options.
func DefaultConfig() Config {
	return core.DefaultConfig()
}

// NewSettings creates Settings holding cfg.
func NewSettings(cfg Config) *Settings {
	return core.NewSettings(cfg)
}

// Minutes builds Offsets from minute values.
func Minutes(m ...int) Offsets {
	return core.Minutes(m...)
}

// ParseTimeOfDay parses "15:04" or "15:04:05".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	return core.ParseTimeOfDay(s)
}

// ActiveOn reports whether s is active on day's calendar date.
func ActiveOn(s *Schedule, day time.Time) bool {
	return recurrence.ActiveOn(s, day)
}

// NewGormStorage creates a new GORM-backed storage.
func NewGormStorage(db *gorm.DB) *GormStorage {
	return storage.NewGormStorage(db)
}

// NewRegistry creates an empty notification registry.
func NewRegistry() *Registry {
	return notification.NewRegistry()
}

// RegisterDefaults registers the built-in starting and completed notifications.
func RegisterDefaults(r *Registry, opts DefaultsOptions) error {
	return notification.RegisterDefaults(r, opts)
}

// ChannelsFrom reads the default channels from settings on every call.
func ChannelsFrom(settings *Settings) func() []Channel {
	return notification.ChannelsFrom(settings)
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(r *Registry, d notification.Delivery, opts ...DispatcherOption) *Dispatcher {
	return notification.NewDispatcher(r, d, opts...)
}

// WithSettings sets the settings a Dispatcher reads.
func WithSettings(s *Settings) DispatcherOption {
	return notification.WithSettings(s)
}

// WithTargetResolver sets how a Dispatcher finds a schedule's recipient.
func WithTargetResolver(r TargetResolver) DispatcherOption {
	return notification.WithTargetResolver(r)
}

// NewDeliveryService creates a delivery service with no senders.
func NewDeliveryService(opts ...DeliveryOption) *DeliveryService {
	return delivery.NewService(opts...)
}

// NewDatabaseSender stores notifications for in-app display.
func NewDatabaseSender(w core.NotificationWriter) Sender {
	return delivery.NewDatabaseSender(w)
}

// NewTicker creates a Ticker.
func NewTicker(store core.ScheduleStore, ledger core.Ledger, d *Dispatcher, opts ...TickOption) *Ticker {
	return tick.New(store, ledger, d, opts...)
}

// NewExecutor creates an Executor sending notifications through d. A nil d
// runs work without notifications.
func NewExecutor(d *Dispatcher, opts ...ExecutorOption) *Executor {
	if d == nil {
		return execution.New(nil, opts...)
	}
	return execution.New(d, opts...)
}

// NewRunner creates a Runner driving t once per minute.
func NewRunner(t *Ticker, opts ...RunnerOption) *Runner {
	return runner.New(t, opts...)
}

// NewBus creates an event bus.
func NewBus() *Bus {
	return events.NewBus()
}

// ValidateNotificationName validates a notification registry name.
func ValidateNotificationName(name string) error {
	return security.ValidateNotificationName(name)
}

// SanitizeErrorMessage truncates and sanitizes error messages.
func SanitizeErrorMessage(msg string) string {
	return security.SanitizeErrorMessage(msg)
}

// ScheduleFromContext returns the schedule being executed or notified, or nil.
func ScheduleFromContext(ctx context.Context) *Schedule {
	return zapctx.ScheduleFromContext(ctx)
}

// ExecutionFromContext returns the current execution result, or nil.
func ExecutionFromContext(ctx context.Context) *ExecutionResult {
	return zapctx.ExecutionFromContext(ctx)
}
