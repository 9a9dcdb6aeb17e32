package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeOrderID(t *testing.T) {
	for _, in := range []string{"12345", "order_12345", "ORDER_12345", " Order_12345 "} {
		assert.Equal(t, "ORDER_12345", NormalizeOrderID(in), in)
	}
	assert.Equal(t, "ORDER_ABC_9", NormalizeOrderID("abc_9"))
}

func TestLooksLikeOrderID(t *testing.T) {
	cases := map[string]bool{
		"12345":        true,
		"order_12345":  true,
		"ORDER_TEST":   true,
		"hello":        true,
		"help":         false,
		"HELP":         false,
		"Start":        false,
		"hello there":  false,
		"ORDER-12345":  false,
		"":             false,
		"ORDER_12345!": false,
	}
	for in, want := range cases {
		assert.Equal(t, want, LooksLikeOrderID(in), "%q", in)
	}
}
