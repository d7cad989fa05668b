package notification

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cpiprint/zap-notify/pkg/core"
	"github.com/cpiprint/zap-notify/pkg/security"
)

const (
	StartingName  = "zap.starting"
	CompletedName = "zap.completed"

	KindStarting  = "schedule_starting"
	KindCompleted = "schedule_completed"
)

// DefaultsOptions configures the built-in notifications.
type DefaultsOptions struct {
	// Channels returns the channels to send through. Defaults to mail and database.
	Channels func() []core.Channel
	// ScheduleURL builds the "View Schedule" link. Empty links are omitted.
	ScheduleURL func(s *core.Schedule) string
}

// ChannelsFrom reads the default channels from settings on every call.
func ChannelsFrom(settings *core.Settings) func() []core.Channel {
	return func() []core.Channel { return settings.Load().Channels() }
}

// RegisterDefaults registers zap.starting and zap.completed.
func RegisterDefaults(r *Registry, opts DefaultsOptions) error {
	if opts.Channels == nil {
		opts.Channels = core.DefaultConfig().Channels
	}
	if err := r.Register(StartingName, Factory{
		New: func(s *core.Schedule, _ map[string]any) (Notification, error) {
			return NewStarting(s, opts), nil
		},
	}); err != nil {
		return err
	}
	return r.Register(CompletedName, Factory{
		New: func(s *core.Schedule, _ map[string]any) (Notification, error) {
			return NewCompleted(s, opts), nil
		},
	})
}

// Starting announces that a schedule is about to start.
type Starting struct {
	scheduleNotification
}

// NewStarting creates a starting notification for s.
func NewStarting(s *core.Schedule, opts DefaultsOptions) *Starting {
	return &Starting{scheduleNotification{
		kind:     KindStarting,
		subject:  "Schedule Starting",
		schedule: s,
		opts:     opts,
	}}
}

// Completed reports that a schedule's work has finished.
type Completed struct {
	scheduleNotification
}

// NewCompleted creates a completed notification for s.
func NewCompleted(s *core.Schedule, opts DefaultsOptions) *Completed {
	return &Completed{scheduleNotification{
		kind:     KindCompleted,
		subject:  "Schedule Completed",
		schedule: s,
		opts:     opts,
	}}
}

// WithExecution implements ExecutionAware.
func (c *Completed) WithExecution(r *core.ExecutionResult) {
	c.mu.Lock()
	c.execution = r.Details()
	c.mu.Unlock()
}

// ExecutionDetails returns the details handed over by WithExecution.
func (c *Completed) ExecutionDetails() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.execution
}

type scheduleNotification struct {
	kind     string
	subject  string
	schedule *core.Schedule
	opts     DefaultsOptions

	mu        sync.Mutex
	execution map[string]any
}

func (n *scheduleNotification) Kind() string { return n.kind }

// Schedule returns the schedule the notification is about.
func (n *scheduleNotification) Schedule() *core.Schedule { return n.schedule }

func (n *scheduleNotification) Via(core.Target) []core.Channel {
	if n.opts.Channels == nil {
		return core.DefaultConfig().Channels()
	}
	return n.opts.Channels()
}

func (n *scheduleNotification) Render(ch core.Channel, target core.Target) (Payload, error) {
	switch ch {
	case core.ChannelMail:
		return n.mail(target), nil
	case core.ChannelDatabase:
		return &DatabaseMessage{Type: n.kind, Data: n.data()}, nil
	case core.ChannelBroadcast:
		data := n.data()
		msg := n.message()
		data["message"] = msg
		return &BroadcastMessage{Message: msg, Data: data}, nil
	case core.ChannelTelegram, core.ChannelLog:
		return &TextMessage{To: ch, Text: n.text()}, nil
	default:
		return nil, fmt.Errorf("%w: %s", core.ErrUnsupportedChannel, ch)
	}
}

func (n *scheduleNotification) details() map[string]any {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.execution
}

func (n *scheduleNotification) message() string {
	if n.kind == KindCompleted {
		return fmt.Sprintf("Your scheduled task %q has been completed.", n.schedule.Name)
	}
	return fmt.Sprintf("Your scheduled task %q is about to start.", n.schedule.Name)
}

func (n *scheduleNotification) mail(target core.Target) *MailMessage {
	s := n.schedule
	name := s.DisplayName()
	greet := target.Name
	if greet == "" {
		greet = "there"
	}
	m := &MailMessage{
		Subject:  fmt.Sprintf("%s: %s", n.subject, name),
		Greeting: fmt.Sprintf("Hello %s!", greet),
		Outro:    []string{"Thank you for using our application!"},
	}
	started := s.Start().Format(time.DateTime)
	if n.kind == KindCompleted {
		m.Lines = append(m.Lines,
			fmt.Sprintf("Your scheduled task %q has been completed successfully.", name),
			"Started at: "+started)
		if d := n.details(); d != nil {
			if v, ok := d["duration"]; ok {
				m.Lines = append(m.Lines, fmt.Sprintf("Duration: %v", v))
			}
			if v, ok := d["status"]; ok {
				m.Lines = append(m.Lines, fmt.Sprintf("Status: %v", v))
			}
			if v, ok := d["error"].(string); ok && v != "" {
				m.Lines = append(m.Lines, "Error: "+security.SanitizeErrorMessage(v))
			}
		}
	} else {
		m.Lines = append(m.Lines,
			fmt.Sprintf("Your scheduled task %q is about to start.", name),
			"Scheduled for: "+started)
	}
	if s.Description != "" {
		m.Lines = append(m.Lines, "Description: "+s.Description)
	}
	if n.opts.ScheduleURL != nil {
		if url := n.opts.ScheduleURL(s); url != "" {
			m.ActionText = "View Schedule"
			m.ActionURL = url
		}
	}
	return m
}

func (n *scheduleNotification) data() map[string]any {
	s := n.schedule
	var end any
	if t, ok := s.End(); ok {
		end = t.Format(time.RFC3339)
	}
	var description any
	if s.Description != "" {
		description = s.Description
	}
	data := map[string]any{
		"schedule_id":       s.ID,
		"schedule_name":     s.Name,
		"type":              n.kind,
		"start_date":        s.Start().Format(time.RFC3339),
		"end_date":          end,
		"description":       description,
		"execution_details": nil,
	}
	if d := n.details(); d != nil {
		data["execution_details"] = d
	}
	return data
}

func (n *scheduleNotification) text() string {
	m := n.mail(core.Target{})
	var b strings.Builder
	b.WriteString(m.Subject)
	for _, l := range m.Lines {
		b.WriteString("\n")
		b.WriteString(l)
	}
	if m.ActionURL != "" {
		b.WriteString("\n")
		b.WriteString(m.ActionURL)
	}
	return b.String()
}
