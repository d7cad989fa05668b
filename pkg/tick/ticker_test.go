package tick

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/cpiprint/zap-notify/pkg/core"
	"github.com/cpiprint/zap-notify/pkg/events"
)

func newTicker(store core.ScheduleStore, ledger core.Ledger, n Notifier, clock core.Clock, opts ...Option) *Ticker {
	base := []Option{
		WithClock(clock),
		WithSettings(core.NewSettings(core.DefaultConfig())),
	}
	return NewWithNotifier(store, ledger, n, append(base, opts...)...)
}

func TestRun_BeforeNotificationFiresOnce(t *testing.T) {
	clock := &clockAt{now: at(15, 21, 0)}
	ledger := newMemLedger()
	n := &fakeNotifier{}
	tk := newTicker(&memStore{schedules: []*core.Schedule{nightShift(1)}}, ledger, n, clock)

	report, err := tk.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Sent())
	require.Len(t, n.calls, 1)
	assert.Equal(t, core.NotifyBefore, n.calls[0].typ)
	require.NotNil(t, n.calls[0].firing)
	assert.Equal(t, uint(10), n.calls[0].firing.Period.ID)
	assert.True(t, n.calls[0].firing.NotifyAt.Equal(at(15, 21, 0)))

	// Second tick in the same minute is idempotent.
	report, err = tk.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Sent())
	assert.Equal(t, 1, report.Count(StatusSkipped))
	assert.Equal(t, 1, n.count())

	clock.set(at(15, 21, 1))
	report, err = tk.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.Outcomes)
	assert.Equal(t, 1, n.count())
	assert.Equal(t, 1, ledger.len())
}

func TestRun_SecondsAreTruncated(t *testing.T) {
	clock := &clockAt{now: at(15, 21, 0).Add(42 * time.Second)}
	n := &fakeNotifier{}
	tk := newTicker(&memStore{schedules: []*core.Schedule{nightShift(1)}}, newMemLedger(), n, clock)

	report, err := tk.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Sent())
	assert.True(t, report.Now.Equal(at(15, 21, 0)))
}

func TestRun_AfterNotification(t *testing.T) {
	clock := &clockAt{now: at(15, 23, 30)}
	n := &fakeNotifier{}
	tk := newTicker(&memStore{schedules: []*core.Schedule{nightShift(1)}}, newMemLedger(), n, clock)

	report, err := tk.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Sent())
	require.Len(t, n.calls, 1)
	assert.Equal(t, core.NotifyAfter, n.calls[0].typ)
}

func TestRun_BeforeNotificationCrossesMidnight(t *testing.T) {
	s := nightShift(1)
	s.StartDate = datatypes.Date(at(15, 0, 0))
	s.Periods[0].StartTime = core.MustTimeOfDay("00:30")
	s.Periods[0].EndTime = core.MustTimeOfDay("01:00")

	clock := &clockAt{now: at(14, 23, 30)}
	n := &fakeNotifier{}
	tk := newTicker(&memStore{schedules: []*core.Schedule{s}}, newMemLedger(), n, clock)

	report, err := tk.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Sent(), "occurrence on the 15th notifies on the 14th")
}

func TestRun_AfterNotificationCrossesMidnight(t *testing.T) {
	s := nightShift(1)
	s.EndDate = func() *datatypes.Date { d := datatypes.Date(at(15, 0, 0)); return &d }()
	s.Periods[0].EndTime = core.MustTimeOfDay("23:50")

	clock := &clockAt{now: at(16, 0, 20)}
	n := &fakeNotifier{}
	tk := newTicker(&memStore{schedules: []*core.Schedule{s}}, newMemLedger(), n, clock)

	report, err := tk.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Sent(), "last occurrence on the 15th notifies on the 16th")
}

func TestRun_MultiDayOffsets(t *testing.T) {
	before := nightShift(1)
	before.NotifyAfter = false
	before.StartDate = datatypes.Date(at(17, 0, 0))
	before.BeforeNotificationTime = core.Minutes(2*24*60 + 60)

	after := nightShift(2)
	after.NotifyBefore = false
	after.EndDate = func() *datatypes.Date { d := datatypes.Date(at(10, 0, 0)); return &d }()
	after.AfterNotificationTime = core.Minutes(2 * 24 * 60)

	store := &memStore{schedules: []*core.Schedule{before, after}}

	n := &fakeNotifier{}
	report, err := newTicker(store, newMemLedger(), n, &clockAt{now: at(15, 21, 0)}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Sent(), "occurrence on the 17th notifies two days ahead")
	assert.Equal(t, core.NotifyBefore, n.calls[0].typ)

	n = &fakeNotifier{}
	report, err = newTicker(store, newMemLedger(), n, &clockAt{now: at(12, 23, 0)}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Sent(), "occurrence on the 10th notifies two days later")
	assert.Equal(t, core.NotifyAfter, n.calls[0].typ)
}

func TestRun_GlobalSwitchOff(t *testing.T) {
	clock := &clockAt{now: at(15, 21, 0)}
	ledger := newMemLedger()
	n := &fakeNotifier{}
	tk := newTicker(&memStore{schedules: []*core.Schedule{nightShift(1)}}, ledger, n, clock,
		WithSettings(core.NewSettings(core.Config{Enabled: false})))

	report, err := tk.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.Outcomes)
	assert.Zero(t, n.count())
	assert.Zero(t, ledger.len())
}

func TestRun_WeeklyExcludedDay(t *testing.T) {
	s := nightShift(1)
	s.Frequency = core.FrequencyWeekly
	s.FrequencyConfig = core.FrequencyConfig{Days: []string{"monday"}}

	// 2025-03-15 is a Saturday.
	clock := &clockAt{now: at(15, 21, 0)}
	n := &fakeNotifier{}
	tk := newTicker(&memStore{schedules: []*core.Schedule{s}}, newMemLedger(), n, clock)

	report, err := tk.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.Outcomes)

	clock.set(at(17, 21, 0))
	report, err = tk.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Sent())
}

func TestRun_InactiveAndOutOfRange(t *testing.T) {
	inactive := nightShift(1)
	inactive.IsActive = false
	future := nightShift(2)
	future.StartDate = datatypes.Date(at(20, 0, 0))

	clock := &clockAt{now: at(15, 21, 0)}
	n := &fakeNotifier{}
	tk := newTicker(&memStore{schedules: []*core.Schedule{inactive, future}}, newMemLedger(), n, clock)

	report, err := tk.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.Outcomes)
}

func TestRun_DuplicateOffsetsFireOnce(t *testing.T) {
	s := nightShift(1)
	s.BeforeNotificationTime = core.Minutes(60, 60, 15)

	clock := &clockAt{now: at(15, 21, 0)}
	n := &fakeNotifier{}
	tk := newTicker(&memStore{schedules: []*core.Schedule{s}}, newMemLedger(), n, clock)

	report, err := tk.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, report.Outcomes, 1)

	clock.set(at(15, 21, 45))
	report, err = tk.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Sent())
}

func TestRun_DeliveryFailureIsRecorded(t *testing.T) {
	clock := &clockAt{now: at(15, 21, 0)}
	ledger := newMemLedger()
	n := &fakeNotifier{err: errBoom}
	bus := events.NewBus()
	sub := bus.Subscribe()
	tk := newTicker(&memStore{schedules: []*core.Schedule{nightShift(1)}}, ledger, n, clock, WithEmitter(bus))

	report, err := tk.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Outcomes, 1)
	assert.Equal(t, StatusFailed, report.Outcomes[0].Status)
	assert.ErrorIs(t, report.Outcomes[0].Err, errBoom)
	assert.Equal(t, 1, ledger.len())

	ev := <-sub
	failed, ok := ev.(*core.NotificationFailed)
	require.True(t, ok)
	assert.ErrorIs(t, failed.Error, errBoom)

	report, err = tk.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Count(StatusSkipped))
	assert.Equal(t, 1, n.count())
}

func TestRun_LedgerErrors(t *testing.T) {
	clock := &clockAt{now: at(15, 21, 0)}
	ledger := newMemLedger()
	ledger.readErr = errBoom
	n := &fakeNotifier{}
	tk := newTicker(&memStore{schedules: []*core.Schedule{nightShift(1)}}, ledger, n, clock)

	report, err := tk.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Outcomes, 1)
	assert.Equal(t, StatusLedgerError, report.Outcomes[0].Status)
	assert.Zero(t, n.count(), "no dispatch without a ledger answer")

	ledger.readErr = nil
	ledger.writeErr = errBoom
	report, err = tk.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusLedgerError, report.Outcomes[0].Status)
	assert.ErrorIs(t, report.Outcomes[0].Err, errBoom)
	assert.Equal(t, 1, n.count())
}

func TestRun_StoreError(t *testing.T) {
	tk := newTicker(&memStore{err: errBoom}, newMemLedger(), &fakeNotifier{}, &clockAt{now: at(15, 21, 0)})
	_, err := tk.Run(context.Background())
	assert.ErrorIs(t, err, errBoom)
}

func TestRun_ClaimFirst(t *testing.T) {
	clock := &clockAt{now: at(15, 21, 0)}
	ledger := newMemLedger()
	n := &fakeNotifier{}
	store := &memStore{schedules: []*core.Schedule{nightShift(1)}}

	a := newTicker(store, ledger, n, clock, WithClaimFirst(true))
	b := newTicker(store, ledger, n, clock, WithClaimFirst(true))

	var wg sync.WaitGroup
	reports := make([]*Report, 2)
	for i, tk := range []*Ticker{a, b} {
		wg.Add(1)
		go func(i int, tk *Ticker) {
			defer wg.Done()
			r, err := tk.Run(context.Background())
			assert.NoError(t, err)
			reports[i] = r
		}(i, tk)
	}
	wg.Wait()

	assert.Equal(t, 1, n.count())
	assert.Equal(t, 1, reports[0].Sent()+reports[1].Sent())
	assert.Equal(t, 1, reports[0].Count(StatusSkipped)+reports[1].Count(StatusSkipped))
}

func TestRun_Concurrency(t *testing.T) {
	var schedules []*core.Schedule
	for i := uint(1); i <= 8; i++ {
		schedules = append(schedules, nightShift(i))
	}
	clock := &clockAt{now: at(15, 21, 0)}
	ledger := newMemLedger()
	n := &fakeNotifier{}
	tk := newTicker(&memStore{schedules: schedules}, ledger, n, clock, WithConcurrency(4))

	report, err := tk.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8, report.Sent())
	assert.Equal(t, 8, ledger.len())
	for i, o := range report.Outcomes {
		assert.Equal(t, uint(i+1), o.ScheduleID, "outcomes keep plan order")
	}
}

func TestRun_NoOverlap(t *testing.T) {
	clock := &clockAt{now: at(15, 21, 0)}
	n := &fakeNotifier{entered: make(chan struct{}, 1), block: make(chan struct{})}
	tk := newTicker(&memStore{schedules: []*core.Schedule{nightShift(1)}}, newMemLedger(), n, clock)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := tk.Run(context.Background())
		assert.NoError(t, err)
	}()

	<-n.entered
	_, err := tk.Run(context.Background())
	assert.ErrorIs(t, err, core.ErrTickInProgress)

	close(n.block)
	<-done
}

func TestRun_EmitsSentEvent(t *testing.T) {
	bus := events.NewBus()
	sub := bus.Subscribe()
	tk := newTicker(&memStore{schedules: []*core.Schedule{nightShift(3)}}, newMemLedger(), &fakeNotifier{},
		&clockAt{now: at(15, 21, 0)}, WithEmitter(bus))

	_, err := tk.Run(context.Background())
	require.NoError(t, err)

	ev := <-sub
	sent, ok := ev.(*core.NotificationSent)
	require.True(t, ok)
	assert.Equal(t, uint(3), sent.ScheduleID)
	assert.Equal(t, uint(30), sent.PeriodID)
	assert.Equal(t, "zap.starting", sent.Notification)
}

func TestWithLocation(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	// 19:00 UTC is 21:00 at UTC+2.
	clock := &clockAt{now: at(15, 19, 0)}
	n := &fakeNotifier{}
	tk := newTicker(&memStore{schedules: []*core.Schedule{nightShift(1)}}, newMemLedger(), n, clock, WithLocation(loc))

	report, err := tk.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Sent())
	assert.Equal(t, loc, report.Now.Location())
}
