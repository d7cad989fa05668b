package delivery

import (
	"context"
	"fmt"
	"strconv"

	"gopkg.in/telebot.v3"

	"github.com/cpiprint/zap-notify/pkg/core"
	"github.com/cpiprint/zap-notify/pkg/notification"
)

// TelegramClient sends messages via a Telegram bot.
type TelegramClient interface {
	SendMessage(chatID int64, text string, options *telebot.SendOptions) error
}

// TelebotAdapter implements TelegramClient with gopkg.in/telebot.v3.
type TelebotAdapter struct {
	bot *telebot.Bot
}

// NewTelebotAdapter wraps a bot.
func NewTelebotAdapter(b *telebot.Bot) *TelebotAdapter {
	return &TelebotAdapter{bot: b}
}

// NewTelegramBot creates a send-only bot. No updates are polled.
func NewTelegramBot(token string) (*telebot.Bot, error) {
	return telebot.NewBot(telebot.Settings{
		Token:   token,
		Offline: true,
	})
}

// SendMessage sends a text message to a chat.
func (a *TelebotAdapter) SendMessage(chatID int64, text string, options *telebot.SendOptions) error {
	if options == nil {
		options = &telebot.SendOptions{}
	}
	_, err := a.bot.Send(&telebot.Chat{ID: chatID}, text, options)
	return err
}

// TelegramSender delivers text payloads to the chat id routed for the
// telegram channel.
type TelegramSender struct {
	client TelegramClient
}

// NewTelegramSender creates a TelegramSender.
func NewTelegramSender(c TelegramClient) *TelegramSender {
	return &TelegramSender{client: c}
}

// Send implements Sender.
func (s *TelegramSender) Send(ctx context.Context, target core.Target, p notification.Payload) error {
	m, ok := p.(*notification.TextMessage)
	if !ok {
		return unexpectedPayload(core.ChannelTelegram, p)
	}
	route, ok := target.Route(core.ChannelTelegram)
	if !ok {
		return core.NoRetry(fmt.Errorf("%w: %s %s", core.ErrNoRoute, core.ChannelTelegram, target))
	}
	chatID, err := strconv.ParseInt(route, 10, 64)
	if err != nil {
		return core.NoRetry(fmt.Errorf("zap: invalid telegram chat id %q: %w", route, err))
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.client.SendMessage(chatID, m.Text, &telebot.SendOptions{DisableWebPagePreview: true})
}
