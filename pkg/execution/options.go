package execution

import (
	"log/slog"

	"github.com/cpiprint/zap-notify/pkg/core"
	"github.com/cpiprint/zap-notify/pkg/events"
)

// Options holds Executor configuration.
type Options struct {
	Clock   core.Clock
	Emitter events.Emitter
	Logger  *slog.Logger
}

// Option modifies Options.
type Option interface {
	Apply(*Options)
}

type optionFunc func(*Options)

func (f optionFunc) Apply(o *Options) { f(o) }

// WithClock sets the clock used for execution timestamps.
func WithClock(c core.Clock) Option {
	return optionFunc(func(o *Options) {
		o.Clock = c
	})
}

// WithEmitter sets where execution events are published.
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
