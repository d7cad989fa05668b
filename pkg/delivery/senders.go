package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cpiprint/zap-notify/pkg/core"
	"github.com/cpiprint/zap-notify/pkg/events"
	"github.com/cpiprint/zap-notify/pkg/notification"
)

func unexpectedPayload(ch core.Channel, p notification.Payload) error {
	return core.NoRetry(fmt.Errorf("zap: %s sender cannot send %T", ch, p))
}

// LogSender writes notifications to a structured logger.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a LogSender. A nil logger uses slog.Default.
func NewLogSender(l *slog.Logger) *LogSender {
	if l == nil {
		l = slog.Default()
	}
	return &LogSender{logger: l}
}

// Send implements Sender.
func (s *LogSender) Send(ctx context.Context, target core.Target, p notification.Payload) error {
	attrs := []any{"target", target.String(), "channel", p.Channel()}
	switch m := p.(type) {
	case *notification.TextMessage:
		attrs = append(attrs, "text", m.Text)
	case *notification.MailMessage:
		attrs = append(attrs, "subject", m.Subject)
	case *notification.DatabaseMessage:
		attrs = append(attrs, "type", m.Type)
	case *notification.BroadcastMessage:
		attrs = append(attrs, "message", m.Message)
	}
	s.logger.InfoContext(ctx, "notification", attrs...)
	return nil
}

// DatabaseSender stores notifications for in-app display.
type DatabaseSender struct {
	writer core.NotificationWriter
}

// NewDatabaseSender creates a DatabaseSender.
func NewDatabaseSender(w core.NotificationWriter) *DatabaseSender {
	return &DatabaseSender{writer: w}
}

// Send implements Sender.
func (s *DatabaseSender) Send(ctx context.Context, target core.Target, p notification.Payload) error {
	m, ok := p.(*notification.DatabaseMessage)
	if !ok {
		return unexpectedPayload(core.ChannelDatabase, p)
	}
	return s.writer.SaveNotification(ctx, &core.DatabaseNotification{
		Type:           m.Type,
		NotifiableType: target.Type,
		NotifiableID:   target.ID,
		Data:           m.Data,
	})
}

// BroadcastSender publishes notifications on an event bus.
type BroadcastSender struct {
	emitter events.Emitter
}

// NewBroadcastSender creates a BroadcastSender.
func NewBroadcastSender(e events.Emitter) *BroadcastSender {
	return &BroadcastSender{emitter: e}
}

// Send implements Sender.
func (s *BroadcastSender) Send(ctx context.Context, target core.Target, p notification.Payload) error {
	m, ok := p.(*notification.BroadcastMessage)
	if !ok {
		return unexpectedPayload(core.ChannelBroadcast, p)
	}
	kind, _ := m.Data["type"].(string)
	s.emitter.Emit(&core.NotificationBroadcast{
		Target:    target,
		Kind:      kind,
		Message:   m.Message,
		Data:      m.Data,
		Timestamp: time.Now(),
	})
	return nil
}
