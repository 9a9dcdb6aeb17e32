package presentation

import (
	"fmt"
	"strings"

	"github.com/smallbiznis/orderrelay/internal/messaging"
	"github.com/smallbiznis/orderrelay/internal/order/domain"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	NotFoundText = "❌ *Order Not Found*\n\n" +
		"Sorry, I could not find your order. Please check your order ID and try again.\n\n" +
		"Example: `ORDER_12345`"

	PromptText = "What would you like to do next?"

	payLabel   = "💳 Make Payment"
	adminLabel = "👤 Contact Admin"
)

// FormatAmount renders v with en-US grouping and at most three fraction digits.
func FormatAmount(v float64) string {
	p := message.NewPrinter(language.English)
	return p.Sprint(number.Decimal(v, number.MaxFractionDigits(3)))
}

func greeting(o domain.Order) string {
	return fmt.Sprintf("👋 Hello %s!\n\nI found your order! Let me show you what you ordered...", o.CustomerName)
}

func caption(o domain.Order, item domain.LineItem) string {
	return fmt.Sprintf("%s\nQty: %d | Price: %s %s each", item.Name, item.Qty, FormatAmount(item.Price), o.Currency)
}

// FormatSummary renders the order summary. The output depends only on o.
func FormatSummary(o domain.Order) string {
	var b strings.Builder
	b.WriteString("🛒 *Order Summary*\n\n")
	fmt.Fprintf(&b, "📋 Order ID: `%s`\n", o.ID)
	fmt.Fprintf(&b, "👤 Customer: %s\n\n", o.CustomerName)

	for i, item := range o.Items {
		fmt.Fprintf(&b, "%d. %s x%d — %s %s\n", i+1, item.Name, item.Qty, FormatAmount(item.Subtotal()), o.Currency)
	}

	fmt.Fprintf(&b, "\n📦 Shipping Fee: %s %s\n", FormatAmount(o.ShippingFee), o.Currency)
	fmt.Fprintf(&b, "📍 Delivery Address:\n%s\n", o.DeliveryAddress)
	fmt.Fprintf(&b, "\n💰 *Total: %s %s*", FormatAmount(o.Total), o.Currency)
	return b.String()
}

// PromptActions are the two follow-ups offered after a summary. An action
// whose payload would exceed MaxActionData is left out.
func PromptActions(orderID string) [][]messaging.Action {
	rows := make([][]messaging.Action, 0, 2)
	for _, a := range []messaging.Action{
		{Label: payLabel, Data: PayAction(orderID)},
		{Label: adminLabel, Data: AdminAction(orderID)},
	} {
		if FitsAction(a.Data) {
			rows = append(rows, []messaging.Action{a})
		}
	}
	return rows
}

// PaymentSelection is the prompt and one action per payment option. Options
// whose payload would exceed MaxActionData are returned in skipped instead.
func PaymentSelection(o domain.Order) (body string, rows [][]messaging.Action, skipped []string) {
	body = "💳 *Select Payment Method*\n\n" +
		fmt.Sprintf("Total to pay: *%s %s*\n\n", FormatAmount(o.Total), o.Currency) +
		"Choose your preferred payment method below:"

	rows = make([][]messaging.Action, 0, len(o.PaymentMethods))
	for _, pm := range o.PaymentMethods {
		data := MethodAction(o.ID, pm.Name)
		if !FitsAction(data) {
			skipped = append(skipped, pm.Name)
			continue
		}
		rows = append(rows, []messaging.Action{{Label: pm.Name, Data: data}})
	}
	return body, rows, skipped
}

func PaymentDetails(o domain.Order, pm domain.PaymentOption) string {
	return fmt.Sprintf("💳 *%s Payment Details*\n\n", pm.Name) +
		pm.Details + "\n\n" +
		fmt.Sprintf("💰 *Amount to pay: %s %s*\n\n", FormatAmount(o.Total), o.Currency) +
		"After payment, please send a screenshot of your payment confirmation here.\n\n" +
		"Thank you! 🙏"
}
