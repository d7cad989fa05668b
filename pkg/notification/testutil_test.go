package notification

import (
	"context"
	"sync"
	"time"

	"gorm.io/datatypes"

	"github.com/cpiprint/zap-notify/pkg/core"
)

type sent struct {
	queued bool
	target core.Target
	n      Notification
}

type fakeDelivery struct {
	mu   sync.Mutex
	sent []sent
	err  error
}

func (f *fakeDelivery) SendNow(ctx context.Context, target core.Target, n Notification) error {
	return f.record(false, target, n)
}

func (f *fakeDelivery) SendQueued(ctx context.Context, target core.Target, n Notification) error {
	return f.record(true, target, n)
}

func (f *fakeDelivery) record(queued bool, target core.Target, n Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sent{queued: queued, target: target, n: n})
	return nil
}

func testSchedule() *core.Schedule {
	end := datatypes.Date(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC))
	return &core.Schedule{
		ID:                      7,
		Name:                    "Night shift",
		Description:             "Warehouse",
		SchedulableType:         "user",
		SchedulableID:           "42",
		StartDate:               datatypes.Date(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)),
		EndDate:                 &end,
		NotifyBefore:            true,
		NotifyAfter:             true,
		BeforeNotificationClass: StartingName,
		AfterNotificationClass:  CompletedName,
	}
}

// reminder is an application notification built from constructor_params.
type reminder struct {
	title    string
	minutes  float64
	optional any
}

func (r *reminder) Kind() string                  { return "reminder" }
func (r *reminder) Via(core.Target) []core.Channel { return []core.Channel{core.ChannelLog} }
func (r *reminder) Render(ch core.Channel, _ core.Target) (Payload, error) {
	return &TextMessage{To: ch, Text: r.title}, nil
}

func reminderFactory() Factory {
	return Factory{
		New: func(s *core.Schedule, data map[string]any) (Notification, error) {
			return &reminder{title: s.Name}, nil
		},
		Params: []string{"title", "minutes", "optional"},
		FromArgs: func(args []any) (Notification, error) {
			title, err := Arg[string](args, 0)
			if err != nil {
				return nil, err
			}
			minutes, err := Arg[float64](args, 1)
			if err != nil {
				return nil, err
			}
			return &reminder{title: title, minutes: minutes, optional: args[2]}, nil
		},
	}
}
