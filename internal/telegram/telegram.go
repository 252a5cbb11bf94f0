// Package telegram implements the messaging.Service interface on top of the
// Telegram Bot API.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/daftarche/bankbook/internal/messaging"
	"github.com/daftarche/bankbook/internal/models"
)

// updateTimeout is the long-poll timeout in seconds for GetUpdates.
const updateTimeout = 30

// Opts holds configuration options for the Telegram client.
type Opts struct {
	Token string
	Debug bool
}

// Option configures the Telegram client.
type Option func(*Opts)

// WithToken sets the bot API token.
func WithToken(token string) Option {
	return func(o *Opts) { o.Token = token }
}

// WithDebug enables verbose logging inside the underlying bot library.
func WithDebug(debug bool) Option {
	return func(o *Opts) { o.Debug = debug }
}

// Client is a Telegram-backed messaging service.
type Client struct {
	bot    *tgbotapi.BotAPI
	events chan models.Event
}

// NewClient creates a Telegram client based on provided options.
func NewClient(opts ...Option) (*Client, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("telegram bot token not set")
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		slog.Error("Failed to create Telegram bot", "error", err)
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	bot.Debug = cfg.Debug
	slog.Info("Telegram bot authorized", "username", bot.Self.UserName)

	return &Client{
		bot:    bot,
		events: make(chan models.Event, 64),
	}, nil
}

// Start begins long-polling for updates and forwarding them as events.
func (c *Client) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = updateTimeout
	updates := c.bot.GetUpdatesChan(u)

	go func() {
		defer close(c.events)
		for {
			select {
			case <-ctx.Done():
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				ev, ok := eventFromUpdate(update)
				if !ok {
					continue
				}
				select {
				case c.events <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return nil
}

// Stop halts update polling. The event channel closes once the update
// stream drains.
func (c *Client) Stop() {
	c.bot.StopReceivingUpdates()
}

// Events returns the channel of incoming chat events.
func (c *Client) Events() <-chan models.Event {
	return c.events
}

// eventFromUpdate converts a Telegram update into a chat event. Updates
// without a usable message are skipped.
func eventFromUpdate(update tgbotapi.Update) (models.Event, bool) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return models.Event{}, false
	}
	ev := models.Event{
		UserID:    msg.From.ID,
		FirstName: msg.From.FirstName,
		Time:      int64(msg.Date),
	}
	switch {
	case len(msg.Photo) > 0:
		ev.Kind = models.EventPhoto
		// The photo slice is ordered by size, the last entry is the
		// highest resolution.
		ev.FileID = msg.Photo[len(msg.Photo)-1].FileID
		ev.Text = msg.Caption
	case msg.Document != nil:
		ev.Kind = models.EventFile
		ev.FileID = msg.Document.FileID
		ev.Text = msg.Caption
	default:
		ev.Kind = models.EventText
		ev.Text = msg.Text
	}
	return ev, true
}

// SendMessage sends a plain text message.
func (c *Client) SendMessage(ctx context.Context, to int64, body string) error {
	msg := tgbotapi.NewMessage(to, body)
	if _, err := c.bot.Send(msg); err != nil {
		slog.Error("Failed to send Telegram message", "error", err, "to", to)
		return fmt.Errorf("failed to send message to %d: %w", to, err)
	}
	return nil
}

// SendKeyboard sends a text message with a reply keyboard attached.
func (c *Client) SendKeyboard(ctx context.Context, to int64, body string, kb models.Keyboard) error {
	msg := tgbotapi.NewMessage(to, body)
	msg.ReplyMarkup = replyKeyboard(kb)
	if _, err := c.bot.Send(msg); err != nil {
		slog.Error("Failed to send Telegram keyboard", "error", err, "to", to)
		return fmt.Errorf("failed to send keyboard to %d: %w", to, err)
	}
	return nil
}

// SendPhoto sends a previously uploaded photo by file id.
func (c *Client) SendPhoto(ctx context.Context, to int64, fileID, caption string) error {
	photo := tgbotapi.NewPhoto(to, tgbotapi.FileID(fileID))
	photo.Caption = caption
	if _, err := c.bot.Send(photo); err != nil {
		slog.Error("Failed to send Telegram photo", "error", err, "to", to)
		return fmt.Errorf("failed to send photo to %d: %w", to, err)
	}
	return nil
}

// SendDocument sends a previously uploaded document by file id.
func (c *Client) SendDocument(ctx context.Context, to int64, fileID string) error {
	doc := tgbotapi.NewDocument(to, tgbotapi.FileID(fileID))
	if _, err := c.bot.Send(doc); err != nil {
		slog.Error("Failed to send Telegram document", "error", err, "to", to)
		return fmt.Errorf("failed to send document to %d: %w", to, err)
	}
	return nil
}

// LookupUser resolves a chat id via GetChat.
func (c *Client) LookupUser(ctx context.Context, id int64) (models.ChatUser, error) {
	chat, err := c.bot.GetChat(tgbotapi.ChatInfoConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: id},
	})
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "chat not found") {
			return models.ChatUser{}, messaging.ErrUserNotFound
		}
		slog.Error("Telegram GetChat failed", "error", err, "id", id)
		return models.ChatUser{}, fmt.Errorf("failed to look up chat %d: %w", id, err)
	}
	return models.ChatUser{
		ID:        chat.ID,
		FirstName: chat.FirstName,
		Username:  chat.UserName,
	}, nil
}

// replyKeyboard converts a label grid into a Telegram reply keyboard.
func replyKeyboard(kb models.Keyboard) tgbotapi.ReplyKeyboardMarkup {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(kb))
	for _, row := range kb {
		buttons := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, tgbotapi.NewKeyboardButton(label))
		}
		rows = append(rows, buttons)
	}
	return tgbotapi.NewReplyKeyboard(rows...)
}
