package recurrence

import (
	"context"
	"iter"
	"log/slog"
	"time"

	"github.com/cpiprint/zap-notify/pkg/core"
)

// ActiveOn reports whether a schedule is active on day's calendar date:
// the active flag is set, the recurrence rule matches, start_date is on or
// before the date, and end_date is absent or on or after it.
func ActiveOn(s *core.Schedule, day time.Time) bool {
	ok, _ := activeOn(s, day)
	return ok
}

func activeOn(s *core.Schedule, day time.Time) (bool, error) {
	if s == nil || !s.IsActive {
		return false, nil
	}
	if !withinBounds(s, day) {
		return false, nil
	}
	rule, err := RuleFor(s)
	if err != nil {
		return false, err
	}
	return rule.Matches(day), nil
}

func withinBounds(s *core.Schedule, day time.Time) bool {
	d := dateKey(day)
	if dateKey(s.Start()) > d {
		return false
	}
	if end, ok := s.End(); ok && dateKey(end) < d {
		return false
	}
	return true
}

// dateKey orders calendar dates independent of location.
func dateKey(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}

// Options holds Matcher configuration.
type Options struct {
	Logger *slog.Logger
}

// Option modifies Options.
type Option interface {
	Apply(*Options)
}

type optionFunc func(*Options)

func (f optionFunc) Apply(o *Options) { f(o) }

// WithLogger sets the logger used to report invalid recurrence rules.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(o *Options) {
		o.Logger = l
	})
}

// Matcher selects candidate periods from a schedule store.
type Matcher struct {
	store  core.ScheduleStore
	logger *slog.Logger
}

// NewMatcher creates a Matcher reading from store.
func NewMatcher(store core.ScheduleStore, opts ...Option) *Matcher {
	o := &Options{Logger: slog.Default()}
	for _, opt := range opts {
		opt.Apply(o)
	}
	return &Matcher{store: store, logger: o.Logger}
}

// Schedules fetches the active schedules with their periods.
func (m *Matcher) Schedules(ctx context.Context) ([]*core.Schedule, error) {
	return m.store.ActiveSchedules(ctx)
}

// CandidatePeriods fetches schedules and returns the (schedule, period)
// pairs active on now's calendar date. The sequence is evaluated lazily.
func (m *Matcher) CandidatePeriods(ctx context.Context, now time.Time) (iter.Seq2[*core.Schedule, *core.SchedulePeriod], error) {
	schedules, err := m.Schedules(ctx)
	if err != nil {
		return nil, err
	}
	return m.Periods(schedules, now), nil
}

// Periods yields the periods of schedules active on day.
func (m *Matcher) Periods(schedules []*core.Schedule, day time.Time) iter.Seq2[*core.Schedule, *core.SchedulePeriod] {
	return func(yield func(*core.Schedule, *core.SchedulePeriod) bool) {
		for _, s := range schedules {
			if !m.activeOn(s, day) {
				continue
			}
			for i := range s.Periods {
				if !yield(s, &s.Periods[i]) {
					return
				}
			}
		}
	}
}

// Filter returns the schedules active on day.
func (m *Matcher) Filter(schedules []*core.Schedule, day time.Time) []*core.Schedule {
	var out []*core.Schedule
	for _, s := range schedules {
		if m.activeOn(s, day) {
			out = append(out, s)
		}
	}
	return out
}

func (m *Matcher) activeOn(s *core.Schedule, day time.Time) bool {
	ok, err := activeOn(s, day)
	if err != nil {
		m.logger.Warn("invalid recurrence rule", "schedule_id", s.ID, "frequency", s.Frequency, "error", err)
	}
	return ok
}
