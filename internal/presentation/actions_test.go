package presentation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionRoundTrip(t *testing.T) {
	cases := []struct {
		data string
		want ActionRequest
	}{
		{PayAction("ORDER_12345"), ActionRequest{Kind: ActionPay, OrderID: "ORDER_12345"}},
		{AdminAction("ORDER_A_B"), ActionRequest{Kind: ActionAdmin, OrderID: "ORDER_A_B"}},
		{MethodAction("ORDER_A_B", "Bank  Transfer"), ActionRequest{Kind: ActionMethod, OrderID: "ORDER_A_B", Method: "Bank Transfer"}},
		{MethodAction("ORDER_1", "Wave\tMoney Pay"), ActionRequest{Kind: ActionMethod, OrderID: "ORDER_1", Method: "Wave Money Pay"}},
	}
	for _, tc := range cases {
		got, ok := ParseAction(tc.data)
		assert.True(t, ok, tc.data)
		assert.Equal(t, tc.want, got, tc.data)
	}
}

func TestParseActionRejectsMalformed(t *testing.T) {
	for _, data := range []string{"", "pay", "pay:", "refund:ORDER_1", "method:ORDER_1", "method::Cash", "method:ORDER_1:"} {
		_, ok := ParseAction(data)
		assert.False(t, ok, data)
	}
}

func TestPromptActions(t *testing.T) {
	rows := PromptActions("ORDER_12345")

	assert.Equal(t, "pay:ORDER_12345", rows[0][0].Data)
	assert.Equal(t, "admin:ORDER_12345", rows[1][0].Data)
}

func TestPromptActionsDropOversizedPayloads(t *testing.T) {
	orderID := "ORDER_" + strings.Repeat("A", 54)

	rows := PromptActions(orderID)

	require.Len(t, rows, 1)
	assert.Equal(t, "pay:"+orderID, rows[0][0].Data)
	assert.True(t, FitsAction(rows[0][0].Data))
	assert.False(t, FitsAction(AdminAction(orderID)))
}
