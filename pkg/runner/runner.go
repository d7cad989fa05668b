package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/cpiprint/zap-notify/pkg/core"
	"github.com/cpiprint/zap-notify/pkg/tick"
)

// Ticker runs one notification tick.
type Ticker interface {
	Run(ctx context.Context) (*tick.Report, error)
}

// Runner drives a Ticker from a cron schedule.
type Runner struct {
	ticker Ticker
	opts   Options
}

var _ core.Starter = (*Runner)(nil)

// New creates a Runner for t.
func New(t Ticker, opts ...Option) *Runner {
	o := Options{
		Spec:     DefaultSpec,
		Location: time.Local,
		Timeout:  DefaultTimeout,
		Logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt.Apply(&o)
	}
	return &Runner{ticker: t, opts: o}
}

// RunOnce performs a single tick bounded by the configured timeout.
func (r *Runner) RunOnce(ctx context.Context) (*tick.Report, error) {
	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}
	report, err := r.ticker.Run(ctx)
	switch {
	case errors.Is(err, core.ErrTickInProgress):
		r.opts.Logger.Warn("previous notification tick still running, skipped")
	case err != nil:
		r.opts.Logger.Error("notification tick failed", "error", err)
	}
	return report, err
}

// Start schedules ticks and blocks until ctx is cancelled. Running ticks
// are allowed to finish before Start returns.
func (r *Runner) Start(ctx context.Context) error {
	logger := cronLogger{r.opts.Logger}
	c := cron.New(
		cron.WithLocation(r.opts.Location),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	if _, err := c.AddFunc(r.opts.Spec, func() { _, _ = r.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("zap: invalid tick spec %q: %w", r.opts.Spec, err)
	}

	c.Start()
	r.opts.Logger.Info("notification runner started", "spec", r.opts.Spec, "location", r.opts.Location.String())

	<-ctx.Done()
	<-c.Stop().Done()
	r.opts.Logger.Info("notification runner stopped")
	return ctx.Err()
}

// cronLogger adapts slog to cron.Logger. Cron's per-run info lines are
// logged at debug level.
type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
