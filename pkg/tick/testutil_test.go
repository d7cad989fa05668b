package tick

import (
	"context"
	"errors"
	"sync"
	"time"

	"gorm.io/datatypes"

	"github.com/cpiprint/zap-notify/pkg/core"
	intctx "github.com/cpiprint/zap-notify/pkg/internal/context"
)

type memStore struct {
	schedules []*core.Schedule
	err       error
}

func (m *memStore) ActiveSchedules(context.Context) ([]*core.Schedule, error) {
	return m.schedules, m.err
}

type memLedger struct {
	mu       sync.Mutex
	rows     map[core.LedgerKey]time.Time
	readErr  error
	writeErr error
}

func newMemLedger() *memLedger {
	return &memLedger{rows: make(map[core.LedgerKey]time.Time)}
}

func (l *memLedger) AlreadySent(_ context.Context, periodID uint, typ core.NotificationType, notifyAt time.Time) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.readErr != nil {
		return false, l.readErr
	}
	_, ok := l.rows[core.NewLedgerKey(periodID, typ, notifyAt)]
	return ok, nil
}

func (l *memLedger) RecordSent(ctx context.Context, periodID uint, typ core.NotificationType, notifyAt, sentAt time.Time) error {
	ok, err := l.Claim(ctx, periodID, typ, notifyAt, sentAt)
	if err != nil {
		return err
	}
	if !ok {
		return core.ErrAlreadyRecorded
	}
	return nil
}

func (l *memLedger) Claim(_ context.Context, periodID uint, typ core.NotificationType, notifyAt, sentAt time.Time) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.writeErr != nil {
		return false, l.writeErr
	}
	key := core.NewLedgerKey(periodID, typ, notifyAt)
	if _, ok := l.rows[key]; ok {
		return false, nil
	}
	l.rows[key] = sentAt
	return true, nil
}

func (l *memLedger) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.rows)
}

type call struct {
	scheduleID uint
	typ        core.NotificationType
	firing     *intctx.Firing
}

type fakeNotifier struct {
	mu      sync.Mutex
	calls   []call
	err     error
	entered chan struct{}
	block   chan struct{}
}

func (f *fakeNotifier) Notify(ctx context.Context, s *core.Schedule, typ core.NotificationType, _ *core.ExecutionResult) (bool, error) {
	if f.entered != nil {
		select {
		case f.entered <- struct{}{}:
		default:
		}
	}
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{scheduleID: s.ID, typ: typ, firing: intctx.GetFiring(ctx)})
	if f.err != nil {
		return false, f.err
	}
	return true, nil
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

var errBoom = errors.New("boom")

func at(day, hour, minute int) time.Time {
	return time.Date(2025, 3, day, hour, minute, 0, 0, time.UTC)
}

// clockAt is a settable clock.
type clockAt struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clockAt) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clockAt) set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// nightShift is a daily schedule with one 22:00-23:00 period, a 60 minute
// before-notification and a 30 minute after-notification.
func nightShift(id uint) *core.Schedule {
	return &core.Schedule{
		ID:                      id,
		Name:                    "Night shift",
		SchedulableType:         "user",
		SchedulableID:           "42",
		StartDate:               datatypes.Date(at(1, 0, 0)),
		Frequency:               core.FrequencyDaily,
		IsActive:                true,
		NotifyBefore:            true,
		NotifyAfter:             true,
		BeforeNotificationTime:  core.Minutes(60),
		AfterNotificationTime:   core.Minutes(30),
		BeforeNotificationClass: "zap.starting",
		AfterNotificationClass:  "zap.completed",
		Periods: []core.SchedulePeriod{{
			ID:         id * 10,
			ScheduleID: id,
			StartTime:  core.MustTimeOfDay("22:00"),
			EndTime:    core.MustTimeOfDay("23:00"),
		}},
	}
}
