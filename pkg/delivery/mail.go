package delivery

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/cpiprint/zap-notify/pkg/core"
	"github.com/cpiprint/zap-notify/pkg/notification"
)

// DefaultMailTimeout bounds one SMTP session when MailConfig.Timeout is unset.
const DefaultMailTimeout = 15 * time.Second

// MailConfig holds SMTP settings.
type MailConfig struct {
	Host     string        `yaml:"host"`
	Port     int           `yaml:"port"`
	Username string        `yaml:"username"`
	Password string        `yaml:"password"`
	From     string        `yaml:"from"`
	Timeout  time.Duration `yaml:"timeout"`
}

func (c MailConfig) port() int {
	if c.Port == 0 {
		return 587
	}
	return c.Port
}

func (c MailConfig) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultMailTimeout
	}
	return c.Timeout
}

// MailSender delivers mail payloads over SMTP to the address routed for the
// mail channel. The whole SMTP session is bounded by the earlier of the send
// context's deadline and the configured timeout.
type MailSender struct {
	cfg    MailConfig
	dialer net.Dialer
	now    func() time.Time
}

// NewMailSender creates a MailSender.
func NewMailSender(cfg MailConfig) *MailSender {
	return &MailSender{cfg: cfg, now: time.Now}
}

// Send implements Sender.
func (s *MailSender) Send(ctx context.Context, target core.Target, p notification.Payload) error {
	m, ok := p.(*notification.MailMessage)
	if !ok {
		return unexpectedPayload(core.ChannelMail, p)
	}
	to, ok := target.Route(core.ChannelMail)
	if !ok {
		return core.NoRetry(fmt.Errorf("%w: %s %s", core.ErrNoRoute, core.ChannelMail, target))
	}
	msg, err := s.message(to, m)
	if err != nil {
		return core.NoRetry(err)
	}
	client, err := s.client()
	if err != nil {
		return core.NoRetry(err)
	}
	return client.DialAndSendWithContext(ctx, msg)
}

func (s *MailSender) message(to string, m *notification.MailMessage) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(s.cfg.From); err != nil {
		return nil, fmt.Errorf("mail from %q: %w", s.cfg.From, err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("mail to %q: %w", to, err)
	}
	msg.Subject(m.Subject)
	msg.SetDateWithValue(s.now())
	msg.SetBodyString(mail.TypeTextPlain, m.Text())
	return msg, nil
}

func (s *MailSender) client() (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(s.cfg.port()),
		mail.WithTimeout(s.cfg.timeout()),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithDialContextFunc(s.dial),
	}
	if s.cfg.Port == 465 {
		opts = append(opts, mail.WithSSL())
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}
	return mail.NewClient(s.cfg.Host, opts...)
}

// dial connects and carries the dial context's deadline onto the connection
// so a server that stops answering cannot hold the session open.
func (s *MailSender) dial(ctx context.Context, network, address string) (net.Conn, error) {
	conn, err := s.dialer.DialContext(ctx, network, address)
	if err != nil {
		return nil, err
	}
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(s.cfg.timeout())
	}
	if err := conn.SetDeadline(deadline); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return conn, nil
}
