package telegram

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/smallbiznis/orderrelay/internal/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeBot struct {
	sent      []tgbotapi.Chattable
	requested []tgbotapi.Chattable
	sendErrs  []error
	nextID    int
}

func (b *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	b.sent = append(b.sent, c)
	if len(b.sendErrs) > 0 {
		err := b.sendErrs[0]
		b.sendErrs = b.sendErrs[1:]
		if err != nil {
			return tgbotapi.Message{}, err
		}
	}
	b.nextID++
	return tgbotapi.Message{MessageID: b.nextID}, nil
}

func (b *fakeBot) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	b.requested = append(b.requested, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func TestSendTextUsesMarkdown(t *testing.T) {
	bot := &fakeBot{nextID: 41}
	c := newClient(bot, nil, zap.NewNop())

	id, err := c.SendText(context.Background(), "555", "*hi*", messaging.FormatMarkdown)

	require.NoError(t, err)
	assert.Equal(t, 42, id)
	msg := bot.sent[0].(tgbotapi.MessageConfig)
	assert.Equal(t, int64(555), msg.ChatID)
	assert.Equal(t, tgbotapi.ModeMarkdown, msg.ParseMode)
}

func TestSendTextFallsBackToPlainOnEntityError(t *testing.T) {
	bot := &fakeBot{sendErrs: []error{errors.New("Bad Request: can't parse entities: Can't find end of the entity")}}
	c := newClient(bot, nil, zap.NewNop())

	id, err := c.SendText(context.Background(), "555", "Customer: John_Doe", messaging.FormatMarkdown)

	require.NoError(t, err)
	assert.Equal(t, 1, id)
	require.Len(t, bot.sent, 2)
	assert.Equal(t, "", bot.sent[1].(tgbotapi.MessageConfig).ParseMode)
}

func TestSendTextWrapsFailure(t *testing.T) {
	bot := &fakeBot{sendErrs: []error{errors.New("Forbidden: bot was blocked by the user")}}
	c := newClient(bot, nil, zap.NewNop())

	_, err := c.SendText(context.Background(), "555", "hi", messaging.FormatPlain)

	assert.ErrorIs(t, err, messaging.ErrSendFailed)
	assert.Len(t, bot.sent, 1)
}

func TestSendRejectsInvalidEndpoint(t *testing.T) {
	c := newClient(&fakeBot{}, nil, zap.NewNop())

	_, err := c.SendText(context.Background(), "not-a-chat", "hi", messaging.FormatPlain)
	assert.ErrorIs(t, err, messaging.ErrInvalidEndpoint)
}

func TestSendVisual(t *testing.T) {
	bot := &fakeBot{}
	c := newClient(bot, nil, zap.NewNop())

	_, err := c.SendVisual(context.Background(), "555", "https://example.com/jacket.jpg", "Denim Jacket")
	require.NoError(t, err)
	_, err = c.SendVisual(context.Background(), "555", "AgACAgUAAxkBAAIB", "Sneakers")
	require.NoError(t, err)

	first := bot.sent[0].(tgbotapi.PhotoConfig)
	assert.Equal(t, tgbotapi.FileURL("https://example.com/jacket.jpg"), first.File)
	assert.Equal(t, "Denim Jacket", first.Caption)
	assert.Equal(t, tgbotapi.FileID("AgACAgUAAxkBAAIB"), bot.sent[1].(tgbotapi.PhotoConfig).File)
}

func TestSendActionsBuildsKeyboard(t *testing.T) {
	bot := &fakeBot{}
	c := newClient(bot, nil, zap.NewNop())

	_, err := c.SendActions(context.Background(), "555", "Pick one", messaging.FormatPlain, [][]messaging.Action{
		{{Label: "💳 Make Payment", Data: "pay:ORDER_1"}},
		{{Label: "👤 Contact Admin", Data: "admin:ORDER_1"}},
	})
	require.NoError(t, err)

	markup := bot.sent[0].(tgbotapi.MessageConfig).ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.Len(t, markup.InlineKeyboard, 2)
	assert.Equal(t, "💳 Make Payment", markup.InlineKeyboard[0][0].Text)
	require.NotNil(t, markup.InlineKeyboard[1][0].CallbackData)
	assert.Equal(t, "admin:ORDER_1", *markup.InlineKeyboard[1][0].CallbackData)
}

func TestSendActionsWithoutRowsOmitsKeyboard(t *testing.T) {
	bot := &fakeBot{}
	c := newClient(bot, nil, zap.NewNop())

	_, err := c.SendActions(context.Background(), "555", "Pick one", messaging.FormatPlain, nil)
	require.NoError(t, err)

	assert.Nil(t, bot.sent[0].(tgbotapi.MessageConfig).ReplyMarkup)
}

func TestAcknowledge(t *testing.T) {
	bot := &fakeBot{}
	c := newClient(bot, nil, zap.NewNop())

	require.NoError(t, c.Acknowledge(context.Background(), "cb-1", "Order not found"))

	cb := bot.requested[0].(tgbotapi.CallbackConfig)
	assert.Equal(t, "cb-1", cb.CallbackQueryID)
	assert.Equal(t, "Order not found", cb.Text)
}

func TestParseChatID(t *testing.T) {
	id, err := ParseChatID("-1001234")
	require.NoError(t, err)
	assert.Equal(t, int64(-1001234), id)
	assert.Equal(t, messaging.Endpoint("-1001234"), ChatEndpoint(id))

	_, err = ParseChatID("")
	assert.ErrorIs(t, err, messaging.ErrInvalidEndpoint)
}
