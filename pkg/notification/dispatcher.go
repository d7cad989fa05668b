package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cpiprint/zap-notify/pkg/core"
)

// Delivery sends notifications to targets.
type Delivery interface {
	SendNow(ctx context.Context, target core.Target, n Notification) error
	SendQueued(ctx context.Context, target core.Target, n Notification) error
}

// Options holds Dispatcher configuration.
type Options struct {
	Settings *core.Settings
	Targets  core.TargetResolver
	Logger   *slog.Logger
}

// Option modifies Options.
type Option interface {
	Apply(*Options)
}

type optionFunc func(*Options)

func (f optionFunc) Apply(o *Options) { f(o) }

// WithSettings sets the notification settings. Defaults to core.DefaultConfig.
func WithSettings(s *core.Settings) Option {
	return optionFunc(func(o *Options) {
		o.Settings = s
	})
}

// WithTargetResolver sets how a schedule's owner is turned into a Target.
// Without one, Schedule.Target is used.
func WithTargetResolver(r core.TargetResolver) Option {
	return optionFunc(func(o *Options) {
		o.Targets = r
	})
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(o *Options) {
		o.Logger = l
	})
}

// Dispatcher resolves schedule notifications and hands them to Delivery.
type Dispatcher struct {
	registry *Registry
	delivery Delivery
	settings *core.Settings
	targets  core.TargetResolver
	logger   *slog.Logger
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(registry *Registry, delivery Delivery, opts ...Option) *Dispatcher {
	o := &Options{Logger: slog.Default()}
	for _, opt := range opts {
		opt.Apply(o)
	}
	if o.Settings == nil {
		o.Settings = core.NewSettings(core.DefaultConfig())
	}
	return &Dispatcher{
		registry: registry,
		delivery: delivery,
		settings: o.Settings,
		targets:  o.Targets,
		logger:   o.Logger,
	}
}

// Settings returns the settings the dispatcher reads.
func (d *Dispatcher) Settings() *core.Settings {
	return d.settings
}

// Resolve builds the notification configured on s for typ. It returns nil
// when the schedule's flag for typ is off or no name is configured, and a
// *core.NotificationNotFoundError when the name is not registered.
func (d *Dispatcher) Resolve(s *core.Schedule, typ core.NotificationType) (Notification, error) {
	if s == nil {
		return nil, core.ErrNilSchedule
	}
	name, data, enabled := s.NotificationFor(typ)
	if !enabled || name == "" {
		return nil, nil
	}
	return d.registry.Build(name, s, data)
}

// Dispatch sends n to target, queued or immediately per Config.Queue.
// Failures are returned as *core.DeliveryError.
func (d *Dispatcher) Dispatch(ctx context.Context, target core.Target, n Notification) error {
	var err error
	if d.settings.Load().Queue {
		err = d.delivery.SendQueued(ctx, target, n)
	} else {
		err = d.delivery.SendNow(ctx, target, n)
	}
	if err == nil {
		return nil
	}
	var de *core.DeliveryError
	if errors.As(err, &de) {
		return err
	}
	return &core.DeliveryError{Notification: n.Kind(), Err: err}
}

// Target returns the recipient for s.
func (d *Dispatcher) Target(ctx context.Context, s *core.Schedule) (core.Target, error) {
	if d.targets == nil {
		return s.Target(), nil
	}
	return d.targets.ResolveTarget(ctx, s)
}

// Notify resolves and dispatches the typ notification of s when enabled.
// exec, when non-nil, is handed to ExecutionAware notifications. It reports
// whether a notification was dispatched.
func (d *Dispatcher) Notify(ctx context.Context, s *core.Schedule, typ core.NotificationType, exec *core.ExecutionResult) (bool, error) {
	if s == nil {
		return false, core.ErrNilSchedule
	}
	if !s.ShouldNotify(typ, d.settings.Load()) {
		return false, nil
	}
	n, err := d.Resolve(s, typ)
	if err != nil || n == nil {
		return false, err
	}
	if exec != nil {
		if aware, ok := n.(ExecutionAware); ok {
			aware.WithExecution(exec)
		}
	}
	target, err := d.Target(ctx, s)
	if err != nil {
		return false, &core.DeliveryError{Notification: n.Kind(), Err: fmt.Errorf("resolve target: %w", err)}
	}
	if err := d.Dispatch(ctx, target, n); err != nil {
		return false, err
	}
	d.logger.Debug("notification dispatched",
		"schedule_id", s.ID, "type", typ, "notification", n.Kind(), "target", target.String())
	return true, nil
}
