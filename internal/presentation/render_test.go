package presentation

import (
	"testing"

	"github.com/smallbiznis/orderrelay/internal/order/domain"
	"github.com/smallbiznis/orderrelay/internal/order/ordertest"
	"github.com/stretchr/testify/assert"
)

func TestFormatAmount(t *testing.T) {
	cases := map[float64]string{
		0:        "0",
		150:      "150",
		1234.5:   "1,234.5",
		1500000:  "1,500,000",
		2.34567:  "2.346",
		99.10000: "99.1",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatAmount(in), "amount %v", in)
	}
}

func TestFormatSummary(t *testing.T) {
	want := "🛒 *Order Summary*\n\n" +
		"📋 Order ID: `ORDER_12345`\n" +
		"👤 Customer: Aung Aung\n\n" +
		"1. Denim Jacket x1 — 150 USD\n" +
		"2. Canvas Sneakers x2 — 300 USD\n" +
		"\n📦 Shipping Fee: 50 USD\n" +
		"📍 Delivery Address:\nNo. 12, Pyay Road\nYangon\n" +
		"\n💰 *Total: 500 USD*"

	assert.Equal(t, want, FormatSummary(ordertest.Sample()))
}

func TestFormatSummaryTrustsStoredTotal(t *testing.T) {
	o := ordertest.Sample()
	o.Total = 1

	assert.Contains(t, FormatSummary(o), "*Total: 1 USD*")
}

func TestPaymentSelection(t *testing.T) {
	body, rows, skipped := PaymentSelection(ordertest.Sample())

	assert.Contains(t, body, "Total to pay: *500 USD*")
	assert.Len(t, rows, 2)
	assert.Empty(t, skipped)
	assert.Equal(t, "Bank Transfer", rows[0][0].Label)
	assert.Equal(t, "method:ORDER_12345:Bank_Transfer", rows[0][0].Data)
	assert.Equal(t, "method:ORDER_12345:KBZ_Pay", rows[1][0].Data)
}

func TestPaymentSelectionSkipsOversizedActions(t *testing.T) {
	o := ordertest.Sample()
	long := "Cash on Delivery at the Downtown Yangon Pickup Counter"
	o.PaymentMethods = append(o.PaymentMethods, domain.PaymentOption{Name: long})

	_, rows, skipped := PaymentSelection(o)

	assert.Len(t, rows, 2)
	assert.Equal(t, []string{long}, skipped)
	for _, row := range rows {
		assert.LessOrEqual(t, len(row[0].Data), MaxActionData)
	}
}

func TestPaymentDetails(t *testing.T) {
	o := ordertest.Sample()
	text := PaymentDetails(o, domain.PaymentOption{Name: "KBZ Pay", Details: "Phone: 09 123 456 789"})

	assert.Contains(t, text, "💳 *KBZ Pay Payment Details*")
	assert.Contains(t, text, "Phone: 09 123 456 789")
	assert.Contains(t, text, "💰 *Amount to pay: 500 USD*")
	assert.Contains(t, text, "screenshot")
}
