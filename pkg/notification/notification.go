package notification

import (
	"strings"

	"github.com/cpiprint/zap-notify/pkg/core"
)

// Notification is a message about a schedule that can be rendered for one or
// more channels.
type Notification interface {
	// Kind is a stable identifier such as "schedule_starting".
	Kind() string
	// Via returns the channels the notification is sent through.
	Via(target core.Target) []core.Channel
	// Render builds the payload for one channel. Channels the notification
	// does not support return core.ErrUnsupportedChannel.
	Render(ch core.Channel, target core.Target) (Payload, error)
}

// ExecutionAware notifications receive the outcome of orchestrated work
// before they are sent.
type ExecutionAware interface {
	WithExecution(r *core.ExecutionResult)
}

// Payload is a rendered, channel-specific message.
type Payload interface {
	Channel() core.Channel
}

// MailMessage is the mail rendering of a notification.
type MailMessage struct {
	Subject    string
	Greeting   string
	Lines      []string
	ActionText string
	ActionURL  string
	Outro      []string
}

// Channel implements Payload.
func (*MailMessage) Channel() core.Channel { return core.ChannelMail }

// Text returns a plain-text body.
func (m *MailMessage) Text() string {
	var b strings.Builder
	if m.Greeting != "" {
		b.WriteString(m.Greeting)
		b.WriteString("\n\n")
	}
	for _, l := range m.Lines {
		b.WriteString(l)
		b.WriteString("\n")
	}
	if m.ActionURL != "" {
		b.WriteString("\n")
		b.WriteString(m.ActionText)
		b.WriteString(": ")
		b.WriteString(m.ActionURL)
		b.WriteString("\n")
	}
	if len(m.Outro) > 0 {
		b.WriteString("\n")
		for _, l := range m.Outro {
			b.WriteString(l)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// DatabaseMessage is stored in the notifications table.
type DatabaseMessage struct {
	Type string
	Data map[string]any
}

// Channel implements Payload.
func (*DatabaseMessage) Channel() core.Channel { return core.ChannelDatabase }

// BroadcastMessage is published to in-process subscribers.
type BroadcastMessage struct {
	Message string
	Data    map[string]any
}

// Channel implements Payload.
func (*BroadcastMessage) Channel() core.Channel { return core.ChannelBroadcast }

// TextMessage is a short plain-text rendering for chat and log channels.
type TextMessage struct {
	To   core.Channel
	Text string
}

// Channel implements Payload.
func (m *TextMessage) Channel() core.Channel { return m.To }
