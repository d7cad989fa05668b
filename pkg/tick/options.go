package tick

import (
	"log/slog"
	"time"

	"github.com/cpiprint/zap-notify/pkg/core"
	"github.com/cpiprint/zap-notify/pkg/events"
	"github.com/cpiprint/zap-notify/pkg/security"
)

// Options holds Ticker configuration.
type Options struct {
	Clock       core.Clock
	Location    *time.Location
	Settings    *core.Settings
	Emitter     events.Emitter
	Logger      *slog.Logger
	ClaimFirst  bool
	Concurrency int
}

// Option modifies Options.
type Option interface {
	Apply(*Options)
}

type optionFunc func(*Options)

func (f optionFunc) Apply(o *Options) { f(o) }

// WithClock sets the clock. Defaults to the system clock.
func WithClock(c core.Clock) Option {
	return optionFunc(func(o *Options) {
		o.Clock = c
	})
}

// WithLocation evaluates calendar dates and times of day in loc.
// Defaults to the clock's location.
func WithLocation(loc *time.Location) Option {
	return optionFunc(func(o *Options) {
		o.Location = loc
	})
}

// WithSettings overrides the notification settings. Defaults to the
// dispatcher's settings.
func WithSettings(s *core.Settings) Option {
	return optionFunc(func(o *Options) {
		o.Settings = s
	})
}

// WithEmitter sets where tick events are published.
func WithEmitter(e events.Emitter) Option {
	return optionFunc(func(o *Options) {
		o.Emitter = e
	})
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(o *Options) {
		o.Logger = l
	})
}

// WithClaimFirst inserts the ledger row atomically before dispatch instead
// of checking first and recording after.
func WithClaimFirst(enabled bool) Option {
	return optionFunc(func(o *Options) {
		o.ClaimFirst = enabled
	})
}

// WithConcurrency dispatches up to n firings in parallel.
// Values are clamped to [1, MaxConcurrency].
func WithConcurrency(n int) Option {
	return optionFunc(func(o *Options) {
		o.Concurrency = security.ClampConcurrency(n)
	})
}
