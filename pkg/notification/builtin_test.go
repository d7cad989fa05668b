package notification

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpiprint/zap-notify/pkg/core"
)

func TestStarting_Render(t *testing.T) {
	s := testSchedule()
	n := NewStarting(s, DefaultsOptions{
		Channels:    core.DefaultConfig().Channels,
		ScheduleURL: func(s *core.Schedule) string { return fmt.Sprintf("https://app.test/schedules/%d", s.ID) },
	})

	assert.Equal(t, KindStarting, n.Kind())
	assert.Equal(t, []core.Channel{core.ChannelMail, core.ChannelDatabase}, n.Via(core.Target{}))

	p, err := n.Render(core.ChannelMail, core.Target{Name: "Ada"})
	require.NoError(t, err)
	mail := p.(*MailMessage)
	assert.Equal(t, "Schedule Starting: Night shift", mail.Subject)
	assert.Equal(t, "Hello Ada!", mail.Greeting)
	assert.Contains(t, mail.Lines, "Scheduled for: 2025-03-01 00:00:00")
	assert.Contains(t, mail.Lines, "Description: Warehouse")
	assert.Equal(t, "https://app.test/schedules/7", mail.ActionURL)
	assert.Contains(t, mail.Text(), "View Schedule: https://app.test/schedules/7")

	p, err = n.Render(core.ChannelDatabase, core.Target{})
	require.NoError(t, err)
	db := p.(*DatabaseMessage)
	assert.Equal(t, "schedule_starting", db.Type)
	assert.Equal(t, uint(7), db.Data["schedule_id"])
	assert.Equal(t, "2025-03-01T00:00:00Z", db.Data["start_date"])
	assert.Equal(t, "2025-04-01T00:00:00Z", db.Data["end_date"])
	assert.Nil(t, db.Data["execution_details"])

	p, err = n.Render(core.ChannelBroadcast, core.Target{})
	require.NoError(t, err)
	assert.Equal(t, `Your scheduled task "Night shift" is about to start.`, p.(*BroadcastMessage).Message)
	assert.Equal(t, p.(*BroadcastMessage).Message, p.(*BroadcastMessage).Data["message"])
}

func TestStarting_GreetingFallbackAndUnsupported(t *testing.T) {
	n := NewStarting(testSchedule(), DefaultsOptions{Channels: core.DefaultConfig().Channels})

	p, err := n.Render(core.ChannelMail, core.Target{})
	require.NoError(t, err)
	assert.Equal(t, "Hello there!", p.(*MailMessage).Greeting)
	assert.Empty(t, p.(*MailMessage).ActionURL)

	_, err = n.Render("pager", core.Target{})
	assert.ErrorIs(t, err, core.ErrUnsupportedChannel)
}

func TestCompleted_WithExecution(t *testing.T) {
	n := NewCompleted(testSchedule(), DefaultsOptions{Channels: core.DefaultConfig().Channels})
	var _ ExecutionAware = n

	start := time.Date(2025, 3, 15, 21, 0, 0, 0, time.UTC)
	r := core.NewExecutionResult(7, start)
	r.Fail(start.Add(2*time.Second), "disk full")
	n.WithExecution(r)

	assert.Equal(t, "failed", n.ExecutionDetails()["status"])
	assert.Equal(t, "disk full", n.ExecutionDetails()["error"])

	p, err := n.Render(core.ChannelMail, core.Target{})
	require.NoError(t, err)
	mail := p.(*MailMessage)
	assert.Equal(t, "Schedule Completed: Night shift", mail.Subject)
	assert.Contains(t, mail.Lines, "Duration: 2")
	assert.Contains(t, mail.Lines, "Status: failed")
	assert.Contains(t, mail.Lines, "Error: disk full")

	p, err = n.Render(core.ChannelDatabase, core.Target{})
	require.NoError(t, err)
	details := p.(*DatabaseMessage).Data["execution_details"].(map[string]any)
	assert.Equal(t, "failed", details["status"])

	p, err = n.Render(core.ChannelTelegram, core.Target{})
	require.NoError(t, err)
	assert.Contains(t, p.(*TextMessage).Text, "Schedule Completed: Night shift")
	assert.Equal(t, core.ChannelTelegram, p.Channel())
}

func TestCompleted_ErrorSanitizedOnlyWhenRendered(t *testing.T) {
	n := NewCompleted(testSchedule(), DefaultsOptions{})
	raw := "boom\x1b[31m red\x00"

	start := time.Date(2025, 3, 15, 21, 0, 0, 0, time.UTC)
	r := core.NewExecutionResult(7, start)
	r.Fail(start.Add(time.Second), raw)
	n.WithExecution(r)

	assert.Equal(t, raw, n.ExecutionDetails()["error"])

	p, err := n.Render(core.ChannelDatabase, core.Target{})
	require.NoError(t, err)
	details := p.(*DatabaseMessage).Data["execution_details"].(map[string]any)
	assert.Equal(t, raw, details["error"])

	p, err = n.Render(core.ChannelMail, core.Target{})
	require.NoError(t, err)
	assert.Contains(t, p.(*MailMessage).Lines, "Error: boom[31m red")
}

func TestChannelsFrom_ReadsCurrentSettings(t *testing.T) {
	settings := core.NewSettings(core.DefaultConfig())
	n := NewStarting(testSchedule(), DefaultsOptions{Channels: ChannelsFrom(settings)})

	settings.Store(core.Config{Enabled: true, DefaultChannels: []core.Channel{core.ChannelTelegram}})
	assert.Equal(t, []core.Channel{core.ChannelTelegram}, n.Via(core.Target{}))
}
