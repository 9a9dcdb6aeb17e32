package relay

import (
	"fmt"
	"strings"

	"github.com/smallbiznis/orderrelay/internal/messaging"
	"github.com/smallbiznis/orderrelay/internal/order/domain"
	"github.com/smallbiznis/orderrelay/internal/presentation"
)

const (
	welcomeText = "👋 *Welcome to USA Collection!*\n\n" +
		"I can help you with your orders.\n\n" +
		"To check your order, simply send me your order ID (e.g., `ORDER_12345`) or click the link from our website."

	helpText = "👋 *Need Help?*\n\n" +
		"Just send me your order ID (like `ORDER_12345`) to check your order status.\n\n" +
		"Or click the order link from our website to view your order details instantly."

	unknownText = "I didn't understand that. 😊\n\n" +
		"Send your order ID (like `ORDER_12345`) to check your order, or send \"HELP\" for assistance."

	apologyText = "Sorry, something went wrong. Please try again later. 😔"

	ackOrderNotFound  = "Order not found"
	ackMethodNotFound = "Payment method not found"

	operatorDeliveredText = "✅ Message sent to customer!"
	operatorFailedText    = "❌ Failed to send message to customer"
)

func contactingText(orderID string) string {
	return "👋 *Contacting Admin...*\n\n" +
		"Our admin will be with you shortly!\n\n" +
		"Please feel free to describe your question while you wait. 😊\n\n" +
		fmt.Sprintf("📦 *Reference:* `%s`", orderID)
}

func operatorNotification(orderID string, customer messaging.Endpoint, from messaging.Sender) string {
	username := strings.TrimSpace(from.Username)
	if username == "" {
		username = "N/A"
	}
	name := strings.TrimSpace(from.FirstName + " " + from.LastName)

	return "🚨 *Customer Needs Help*\n\n" +
		fmt.Sprintf("📦 Order: `%s`\n", orderID) +
		fmt.Sprintf("👤 Customer: %s\n", name) +
		fmt.Sprintf("📱 Username: @%s\n", username) +
		fmt.Sprintf("🆔 Chat ID: `%s`\n\n", customer) +
		"💬 *Reply to this message to respond to the customer*"
}

func operatorContext(o domain.Order) string {
	return "📋 *Order Details for Reference:*\n\n" + presentation.FormatSummary(o)
}

func operatorReplyText(body string) string {
	return "👤 *Admin:*\n" + body
}
