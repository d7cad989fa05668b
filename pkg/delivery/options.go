package delivery

import (
	"log/slog"
	"time"

	"github.com/cpiprint/zap-notify/pkg/security"
)

// Options holds Service configuration.
type Options struct {
	Workers      int
	QueueSize    int
	RatePerSec   float64
	Burst        int
	Retry        RetryConfig
	DrainTimeout time.Duration
	Logger       *slog.Logger
}

func defaultOptions() Options {
	return Options{
		Workers:      4,
		QueueSize:    1000,
		RatePerSec:   20,
		Burst:        20,
		Retry:        DefaultRetryConfig(),
		DrainTimeout: 30 * time.Second,
		Logger:       slog.Default(),
	}
}

// Option modifies Options.
type Option interface {
	Apply(*Options)
}

type optionFunc func(*Options)

func (f optionFunc) Apply(o *Options) { f(o) }

// Workers sets the number of queue workers.
// Values are clamped to [1, MaxConcurrency].
func Workers(n int) Option {
	return optionFunc(func(o *Options) {
		o.Workers = security.ClampConcurrency(n)
	})
}

// QueueSize sets the capacity of the delivery queue.
func QueueSize(n int) Option {
	return optionFunc(func(o *Options) {
		if n > 0 {
			o.QueueSize = n
		}
	})
}

// RateLimit caps sends per second across all channels. A rate of zero or
// less disables limiting.
func RateLimit(perSec float64, burst int) Option {
	return optionFunc(func(o *Options) {
		o.RatePerSec = perSec
		o.Burst = burst
	})
}

// WithRetry sets the retry configuration for every send.
func WithRetry(cfg RetryConfig) Option {
	return optionFunc(func(o *Options) {
		cfg.MaxAttempts = max(1, security.ClampRetries(cfg.MaxAttempts))
		o.Retry = cfg
	})
}

// DisableRetry makes each send a single attempt.
func DisableRetry() Option {
	return optionFunc(func(o *Options) {
		o.Retry.MaxAttempts = 1
	})
}

// DrainTimeout bounds how long queued deliveries are processed after Start's
// context is cancelled.
func DrainTimeout(d time.Duration) Option {
	return optionFunc(func(o *Options) {
		o.DrainTimeout = d
	})
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(o *Options) {
		o.Logger = l
	})
}
