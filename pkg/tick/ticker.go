package tick

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/cpiprint/zap-notify/pkg/core"
	"github.com/cpiprint/zap-notify/pkg/events"
	intctx "github.com/cpiprint/zap-notify/pkg/internal/context"
	"github.com/cpiprint/zap-notify/pkg/notification"
	"github.com/cpiprint/zap-notify/pkg/offset"
	"github.com/cpiprint/zap-notify/pkg/recurrence"
)

// Notifier dispatches one notification for a schedule.
type Notifier interface {
	Notify(ctx context.Context, s *core.Schedule, typ core.NotificationType, exec *core.ExecutionResult) (bool, error)
}

var _ Notifier = (*notification.Dispatcher)(nil)

// Ticker evaluates schedules once per call to Run.
type Ticker struct {
	matcher  *recurrence.Matcher
	ledger   core.Ledger
	notifier Notifier
	opts     Options
	mu       sync.Mutex
}

// New creates a Ticker reading schedules from store, recording firings in
// ledger, and dispatching through d.
func New(store core.ScheduleStore, ledger core.Ledger, d *notification.Dispatcher, opts ...Option) *Ticker {
	var settings *core.Settings
	if d != nil {
		settings = d.Settings()
	}
	return NewWithNotifier(store, ledger, d, append([]Option{WithSettings(settings)}, opts...)...)
}

// NewWithNotifier creates a Ticker using a custom Notifier.
func NewWithNotifier(store core.ScheduleStore, ledger core.Ledger, n Notifier, opts ...Option) *Ticker {
	o := Options{
		Clock:       core.SystemClock(),
		Emitter:     events.Nop,
		Logger:      slog.Default(),
		Concurrency: 1,
	}
	for _, opt := range opts {
		opt.Apply(&o)
	}
	if o.Settings == nil {
		o.Settings = core.NewSettings(core.DefaultConfig())
	}
	return &Ticker{
		matcher:  recurrence.NewMatcher(store, recurrence.WithLogger(o.Logger)),
		ledger:   ledger,
		notifier: n,
		opts:     o,
	}
}

// Now returns the current minute in the ticker's location.
func (t *Ticker) Now() time.Time {
	now := t.opts.Clock.Now()
	if t.opts.Location != nil {
		now = now.In(t.opts.Location)
	}
	return core.TruncateMinute(now)
}

// Run performs one tick at the current minute. It returns
// ErrTickInProgress when another Run on the same Ticker has not finished.
func (t *Ticker) Run(ctx context.Context) (*Report, error) {
	if !t.mu.TryLock() {
		return nil, core.ErrTickInProgress
	}
	defer t.mu.Unlock()

	start := time.Now()
	now := t.Now()
	report := &Report{Now: now}

	cfg := t.opts.Settings.Load()
	if !cfg.Enabled {
		t.opts.Logger.Debug("notifications disabled, tick skipped", "now", now)
		return report, nil
	}

	schedules, err := t.matcher.Schedules(ctx)
	if err != nil {
		return nil, err
	}

	firings := t.Plan(schedules, now, cfg)
	report.Outcomes = t.fireAll(ctx, firings)
	report.Duration = time.Since(start)

	t.opts.Logger.Info("notification tick completed",
		"now", now,
		"candidates", len(firings),
		"sent", report.Count(StatusSent),
		"skipped", report.Count(StatusSkipped),
		"failed", report.Count(StatusFailed),
		"ledger_errors", report.Count(StatusLedgerError),
		"duration", report.Duration,
	)
	return report, nil
}

// Plan lists the firings due at minute now. Occurrences on neighbouring
// calendar days are considered so offsets may cross midnight. Each ledger
// key appears at most once.
func (t *Ticker) Plan(schedules []*core.Schedule, now time.Time, cfg core.Config) []Firing {
	now = core.TruncateMinute(now)
	seen := make(map[core.LedgerKey]struct{})
	var firings []Firing

	for _, typ := range core.NotificationTypes {
		for _, day := range occurrenceDays(now, typ, spanDays(schedules, typ)) {
			for s, p := range t.matcher.Periods(schedules, day) {
				if !s.ShouldNotify(typ, cfg) {
					continue
				}
				for _, at := range offset.NotifyInstants(day, p.TimeFor(typ), s.OffsetsFor(typ), typ) {
					if !at.Equal(now) {
						continue
					}
					f := Firing{Schedule: s, Period: p, Type: typ, NotifyAt: at}
					if _, dup := seen[f.Key()]; dup {
						continue
					}
					seen[f.Key()] = struct{}{}
					firings = append(firings, f)
				}
			}
		}
	}
	return firings
}

// occurrenceDays returns the days whose occurrences can notify at now.
// Before-notifications precede their occurrence; after-notifications
// follow it.
func occurrenceDays(now time.Time, typ core.NotificationType, span int) []time.Time {
	days := make([]time.Time, 0, span+1)
	for i := 0; i <= span; i++ {
		if typ == core.NotifyBefore {
			days = append(days, now.AddDate(0, 0, i))
		} else {
			days = append(days, now.AddDate(0, 0, i-span))
		}
	}
	return days
}

// spanDays is the number of calendar days the largest typ offset can reach,
// at least one.
func spanDays(schedules []*core.Schedule, typ core.NotificationType) int {
	longest := 0
	for _, s := range schedules {
		for _, m := range offset.Normalize(s.OffsetsFor(typ)) {
			longest = max(longest, m)
		}
	}
	return max(1, (longest+minutesPerDay-1)/minutesPerDay)
}

const minutesPerDay = 24 * 60

func (t *Ticker) fireAll(ctx context.Context, firings []Firing) []Outcome {
	outcomes := make([]Outcome, len(firings))
	if t.opts.Concurrency <= 1 || len(firings) <= 1 {
		for i, f := range firings {
			outcomes[i] = t.fire(ctx, f)
		}
		return outcomes
	}

	sem := make(chan struct{}, t.opts.Concurrency)
	var wg sync.WaitGroup
	for i, f := range firings {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, f Firing) {
			defer wg.Done()
			defer func() { <-sem }()
			outcomes[i] = t.fire(ctx, f)
		}(i, f)
	}
	wg.Wait()
	return outcomes
}

func (t *Ticker) fire(ctx context.Context, f Firing) Outcome {
	out := Outcome{
		ScheduleID: f.Schedule.ID,
		PeriodID:   f.Period.ID,
		Type:       f.Type,
		NotifyAt:   f.NotifyAt,
	}
	log := t.opts.Logger.With(
		"schedule_id", f.Schedule.ID,
		"period_id", f.Period.ID,
		"type", f.Type,
		"notify_at", f.NotifyAt,
	)

	if t.opts.ClaimFirst {
		claimed, err := t.ledger.Claim(ctx, f.Period.ID, f.Type, f.NotifyAt, t.opts.Clock.Now())
		if err != nil {
			log.Error("ledger claim failed", "error", err)
			out.Status, out.Err = StatusLedgerError, err
			return out
		}
		if !claimed {
			t.skipped(f, log)
			out.Status = StatusSkipped
			return out
		}
		out.Status, out.Err = t.dispatch(ctx, f, log)
		return out
	}

	sent, err := t.ledger.AlreadySent(ctx, f.Period.ID, f.Type, f.NotifyAt)
	if err != nil {
		log.Error("ledger lookup failed", "error", err)
		out.Status, out.Err = StatusLedgerError, err
		return out
	}
	if sent {
		t.skipped(f, log)
		out.Status = StatusSkipped
		return out
	}

	out.Status, out.Err = t.dispatch(ctx, f, log)

	// Recorded regardless of delivery outcome so a failing notification
	// is not retried every minute.
	err = t.ledger.RecordSent(ctx, f.Period.ID, f.Type, f.NotifyAt, t.opts.Clock.Now())
	switch {
	case errors.Is(err, core.ErrAlreadyRecorded):
		log.Warn("firing recorded concurrently", "status", out.Status)
	case err != nil:
		log.Error("ledger write failed", "error", err)
		out.Status, out.Err = StatusLedgerError, errors.Join(out.Err, err)
	}
	return out
}

func (t *Ticker) dispatch(ctx context.Context, f Firing, log *slog.Logger) (Status, error) {
	ctx = intctx.WithFiring(ctx, &intctx.Firing{
		Schedule: f.Schedule,
		Period:   f.Period,
		Type:     f.Type,
		NotifyAt: f.NotifyAt,
	})

	dispatched, err := t.notifier.Notify(ctx, f.Schedule, f.Type, nil)
	if err != nil {
		log.Error("notification failed", "error", err)
		t.opts.Emitter.Emit(&core.NotificationFailed{
			ScheduleID: f.Schedule.ID,
			PeriodID:   f.Period.ID,
			Type:       f.Type,
			NotifyAt:   f.NotifyAt,
			Error:      err,
			Timestamp:  t.opts.Clock.Now(),
		})
		return StatusFailed, err
	}
	if !dispatched {
		log.Debug("no notification configured")
		return StatusEmpty, nil
	}

	name, _, _ := f.Schedule.NotificationFor(f.Type)
	log.Info("notification sent", "notification", name)
	t.opts.Emitter.Emit(&core.NotificationSent{
		ScheduleID:   f.Schedule.ID,
		PeriodID:     f.Period.ID,
		Type:         f.Type,
		NotifyAt:     f.NotifyAt,
		Notification: name,
		Timestamp:    t.opts.Clock.Now(),
	})
	return StatusSent, nil
}

func (t *Ticker) skipped(f Firing, log *slog.Logger) {
	log.Debug("notification already sent")
	t.opts.Emitter.Emit(&core.NotificationSkipped{
		ScheduleID: f.Schedule.ID,
		PeriodID:   f.Period.ID,
		Type:       f.Type,
		NotifyAt:   f.NotifyAt,
		Timestamp:  t.opts.Clock.Now(),
	})
}
