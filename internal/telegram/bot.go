package telegram

import (
	"errors"
	"fmt"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/smallbiznis/orderrelay/internal/config"
	"go.uber.org/zap"
)

// Identity is the bot account the token belongs to.
type Identity struct {
	Username string
}

// DeepLink opens a chat with the bot and starts the given order.
func (i Identity) DeepLink(orderID string) string {
	return fmt.Sprintf("https://t.me/%s?start=%s", i.Username, orderID)
}

// NewBotAPI authenticates against the Bot API. A missing token is a startup error.
func NewBotAPI(cfg config.Config, log *zap.Logger) (*tgbotapi.BotAPI, error) {
	return newBotAPI(cfg, tgbotapi.APIEndpoint, &http.Client{}, log)
}

func newBotAPI(cfg config.Config, endpoint string, client tgbotapi.HTTPClient, log *zap.Logger) (*tgbotapi.BotAPI, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("telegram")

	if cfg.BotToken == "" {
		return nil, errors.New("BOT_TOKEN is required, create a bot with @BotFather to get one")
	}
	_ = tgbotapi.SetLogger(zap.NewStdLog(log.Named("botapi")))

	bot, err := tgbotapi.NewBotAPIWithClient(cfg.BotToken, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("authorize bot: %w", err)
	}
	bot.Debug = cfg.BotDebug

	id := Identity{Username: bot.Self.UserName}
	log.Info("bot authorized",
		zap.String("username", id.Username),
		zap.String("deep_link", id.DeepLink("ORDER_12345")),
		zap.Bool("operator_configured", cfg.OperatorConfigured()),
	)
	return bot, nil
}

func NewIdentity(bot *tgbotapi.BotAPI) Identity {
	return Identity{Username: bot.Self.UserName}
}
