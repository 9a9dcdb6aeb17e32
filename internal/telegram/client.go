// Package telegram adapts the Telegram Bot API to the messaging transport
// and turns long-polled updates into relay events.
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/smallbiznis/orderrelay/internal/messaging"
	"github.com/smallbiznis/orderrelay/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type ClientParams struct {
	fx.In

	Bot     *tgbotapi.BotAPI
	Limiter *ratelimit.SendLimiter `optional:"true"`
	Log     *zap.Logger
}

// Client implements messaging.Transport on top of the Bot API.
type Client struct {
	bot     botAPI
	limiter *ratelimit.SendLimiter
	log     *zap.Logger
}

func NewClient(p ClientParams) *Client {
	return newClient(p.Bot, p.Limiter, p.Log)
}

func newClient(bot botAPI, limiter *ratelimit.SendLimiter, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{bot: bot, limiter: limiter, log: log.Named("telegram")}
}

func (c *Client) SendText(ctx context.Context, to messaging.Endpoint, body string, format messaging.Format) (int, error) {
	chatID, err := c.prepare(ctx, to)
	if err != nil {
		return 0, err
	}
	msg := tgbotapi.NewMessage(chatID, body)
	msg.ParseMode = string(format)
	return c.send(msg, func() tgbotapi.Chattable {
		msg.ParseMode = ""
		return msg
	})
}

// SendVisual treats http(s) references as URLs and anything else as a
// previously uploaded file id.
func (c *Client) SendVisual(ctx context.Context, to messaging.Endpoint, contentRef, caption string) (int, error) {
	chatID, err := c.prepare(ctx, to)
	if err != nil {
		return 0, err
	}
	photo := tgbotapi.NewPhoto(chatID, fileRef(contentRef))
	photo.Caption = caption
	return c.send(photo, nil)
}

func (c *Client) SendActions(ctx context.Context, to messaging.Endpoint, body string, format messaging.Format, rows [][]messaging.Action) (int, error) {
	chatID, err := c.prepare(ctx, to)
	if err != nil {
		return 0, err
	}
	msg := tgbotapi.NewMessage(chatID, body)
	msg.ParseMode = string(format)
	if len(rows) > 0 {
		msg.ReplyMarkup = keyboard(rows)
	}
	return c.send(msg, func() tgbotapi.Chattable {
		msg.ParseMode = ""
		return msg
	})
}

func (c *Client) Acknowledge(ctx context.Context, eventID string, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := c.bot.Request(tgbotapi.NewCallback(eventID, text)); err != nil {
		return fmt.Errorf("%w: answer callback: %w", messaging.ErrSendFailed, err)
	}
	return nil
}

func (c *Client) prepare(ctx context.Context, to messaging.Endpoint) (int64, error) {
	chatID, err := ParseChatID(to)
	if err != nil {
		return 0, err
	}
	if err := c.limiter.Wait(ctx, to.String()); err != nil {
		return 0, err
	}
	return chatID, ctx.Err()
}

// send delivers c. When Telegram rejects the Markdown entities and plain is
// set, the message is resent without formatting.
func (c *Client) send(msg tgbotapi.Chattable, plain func() tgbotapi.Chattable) (int, error) {
	sent, err := c.bot.Send(msg)
	if err != nil && plain != nil && isEntityParseError(err) {
		c.log.Warn("markdown rejected, resending as plain text", zap.Error(err))
		sent, err = c.bot.Send(plain())
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %w", messaging.ErrSendFailed, err)
	}
	return sent.MessageID, nil
}

// ParseChatID converts an endpoint to a Telegram chat id.
func ParseChatID(e messaging.Endpoint) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(e.String()), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: %q", messaging.ErrInvalidEndpoint, e)
	}
	return id, nil
}

func ChatEndpoint(id int64) messaging.Endpoint {
	return messaging.Endpoint(strconv.FormatInt(id, 10))
}

func fileRef(ref string) tgbotapi.RequestFileData {
	ref = strings.TrimSpace(ref)
	lower := strings.ToLower(ref)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return tgbotapi.FileURL(ref)
	}
	return tgbotapi.FileID(ref)
}

func keyboard(rows [][]messaging.Action) tgbotapi.InlineKeyboardMarkup {
	out := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, a := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(a.Label, a.Data))
		}
		out = append(out, tgbotapi.NewInlineKeyboardRow(buttons...))
	}
	return tgbotapi.NewInlineKeyboardMarkup(out...)
}

func isEntityParseError(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "can't parse entities")
}

var _ messaging.Transport = (*Client)(nil)
