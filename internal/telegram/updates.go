package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/smallbiznis/orderrelay/internal/messaging"
)

// ToEvent classifies an update. Replies posted in the operator chat become
// operator replies; /start carries its argument; /help reads as "help".
// Updates without text or callback data are ignored.
func ToEvent(update tgbotapi.Update, operator messaging.Endpoint) (messaging.Event, bool) {
	if cq := update.CallbackQuery; cq != nil {
		origin := messaging.Endpoint("")
		if cq.Message != nil && cq.Message.Chat != nil {
			origin = ChatEndpoint(cq.Message.Chat.ID)
		} else if cq.From != nil {
			origin = ChatEndpoint(cq.From.ID)
		}
		return messaging.Event{
			ID:      cq.ID,
			Kind:    messaging.EventAction,
			Origin:  origin,
			From:    sender(cq.From),
			Payload: cq.Data,
		}, true
	}

	msg := update.Message
	if msg == nil || msg.Chat == nil || strings.TrimSpace(msg.Text) == "" {
		return messaging.Event{}, false
	}

	ev := messaging.Event{
		Origin:  ChatEndpoint(msg.Chat.ID),
		From:    sender(msg.From),
		Kind:    messaging.EventText,
		Payload: msg.Text,
	}

	switch {
	case msg.IsCommand() && msg.Command() == "start":
		ev.Kind = messaging.EventStart
		ev.Payload = msg.CommandArguments()
	case msg.IsCommand() && msg.Command() == "help":
		ev.Payload = "help"
	case operator != "" && ev.Origin == operator && msg.ReplyToMessage != nil:
		ev.Kind = messaging.EventOperatorReply
		ev.RepliedTo = msg.ReplyToMessage.MessageID
	}
	return ev, true
}

func sender(u *tgbotapi.User) messaging.Sender {
	if u == nil {
		return messaging.Sender{}
	}
	return messaging.Sender{
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Username:  u.UserName,
	}
}
