package runner

import (
	"log/slog"
	"time"
)

// DefaultSpec fires at the start of every minute.
const DefaultSpec = "* * * * *"

// DefaultTimeout bounds one tick so it finishes before the next minute.
const DefaultTimeout = 55 * time.Second

// Options holds Runner configuration.
type Options struct {
	Spec     string
	Location *time.Location
	Timeout  time.Duration
	Logger   *slog.Logger
}

// Option modifies Options.
type Option interface {
	Apply(*Options)
}

type optionFunc func(*Options)

func (f optionFunc) Apply(o *Options) { f(o) }

// WithSpec overrides the cron spec. Standard five-field expressions and
// descriptors such as "@every 30s" are accepted.
func WithSpec(spec string) Option {
	return optionFunc(func(o *Options) {
		o.Spec = spec
	})
}

// WithLocation sets the cron engine's time zone.
func WithLocation(loc *time.Location) Option {
	return optionFunc(func(o *Options) {
		o.Location = loc
	})
}

// WithTimeout bounds a single tick. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(o *Options) {
		o.Timeout = d
	})
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(o *Options) {
		o.Logger = l
	})
}
