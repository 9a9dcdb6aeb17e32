package presentation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/smallbiznis/orderrelay/internal/clock"
	"github.com/smallbiznis/orderrelay/internal/config"
	"github.com/smallbiznis/orderrelay/internal/messaging"
	"github.com/smallbiznis/orderrelay/internal/messaging/messagingtest"
	"github.com/smallbiznis/orderrelay/internal/order/domain"
	"github.com/smallbiznis/orderrelay/internal/order/ordertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const customer = messaging.Endpoint("555")

type fixture struct {
	seq       *Sequencer
	transport *messagingtest.Transport
	orders    *ordertest.Service
	clock     *clock.FakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		transport: messagingtest.New(),
		orders:    ordertest.NewService(ordertest.Sample()),
		clock:     clock.NewFakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
	}
	f.seq = New(Params{
		Log:       zap.NewNop(),
		Orders:    f.orders,
		Transport: f.transport,
		Sleeper:   f.clock,
		Relay:     config.NewRelayConfigHolderFrom(config.DefaultRelayConfig()),
	})
	return f
}

func kinds(sent []messagingtest.Sent) []messagingtest.SendKind {
	out := make([]messagingtest.SendKind, 0, len(sent))
	for _, s := range sent {
		out = append(out, s.Kind)
	}
	return out
}

func TestRunPresentsStagesInOrder(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.seq.Run(context.Background(), customer, "ORDER_12345"))

	sent := f.transport.SentTo(customer)
	assert.Equal(t, []messagingtest.SendKind{
		messagingtest.SendText,
		messagingtest.SendVisual,
		messagingtest.SendVisual,
		messagingtest.SendText,
		messagingtest.SendActions,
	}, kinds(sent))

	assert.Contains(t, sent[0].Body, "Hello Aung Aung!")
	assert.Equal(t, "https://example.com/jacket.jpg", sent[1].ContentRef)
	assert.Equal(t, "Denim Jacket\nQty: 1 | Price: 150 USD each", sent[1].Body)
	assert.Equal(t, "Canvas Sneakers\nQty: 2 | Price: 150 USD each", sent[2].Body)

	summary := sent[3].Body
	for _, want := range []string{"ORDER_12345", "150 USD", "300 USD", "50 USD", "500 USD"} {
		assert.Contains(t, summary, want)
	}
	assert.Equal(t, messaging.FormatMarkdown, sent[3].Format)

	assert.Equal(t, PromptText, sent[4].Body)
	assert.Equal(t, PromptActions("ORDER_12345"), sent[4].Rows)

	assert.Equal(t, []time.Duration{
		500 * time.Millisecond,
		500 * time.Millisecond,
		500 * time.Millisecond,
	}, f.clock.Sleeps())
}

func TestRunGalleryFailuresDoNotAbort(t *testing.T) {
	f := newFixture(t)
	f.transport.Fail = func(s messagingtest.Sent) bool { return s.Kind == messagingtest.SendVisual }

	require.NoError(t, f.seq.Run(context.Background(), customer, "ORDER_12345"))

	assert.Equal(t, []messagingtest.SendKind{
		messagingtest.SendText,
		messagingtest.SendText,
		messagingtest.SendActions,
	}, kinds(f.transport.SentTo(customer)))
}

func TestRunUnknownOrderSendsSingleNotFound(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.seq.Run(context.Background(), customer, "ORDER_NOPE"))

	sent := f.transport.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, NotFoundText, sent[0].Body)
	assert.Empty(t, f.clock.Sleeps())
}

func TestRunStoreUnavailable(t *testing.T) {
	f := newFixture(t)
	f.orders.Err = errors.Join(domain.ErrStoreUnavailable, errors.New("disk gone"))

	err := f.seq.Run(context.Background(), customer, "ORDER_12345")

	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.Empty(t, f.transport.Sent())
}

func TestRunGreetingFailureStops(t *testing.T) {
	f := newFixture(t)
	f.transport.Fail = func(s messagingtest.Sent) bool { return s.Kind == messagingtest.SendText }

	err := f.seq.Run(context.Background(), customer, "ORDER_12345")

	assert.ErrorIs(t, err, ErrSendFailed)
	assert.ErrorIs(t, err, messagingtest.ErrRejected)
	assert.Empty(t, f.transport.Sent())
}

func TestRunSummaryFailureSkipsPrompt(t *testing.T) {
	f := newFixture(t)
	f.transport.Fail = func(s messagingtest.Sent) bool {
		return s.Kind == messagingtest.SendText && s.Body == FormatSummary(ordertest.Sample())
	}

	err := f.seq.Run(context.Background(), customer, "ORDER_12345")

	assert.ErrorIs(t, err, ErrSendFailed)
	assert.Equal(t, []messagingtest.SendKind{
		messagingtest.SendText,
		messagingtest.SendVisual,
		messagingtest.SendVisual,
	}, kinds(f.transport.Sent()))
}

func TestRunHonoursPacingConfig(t *testing.T) {
	f := newFixture(t)
	cfg := config.DefaultRelayConfig()
	cfg.Pacing = config.PacingConfig{BetweenItems: 0, BeforeSummary: time.Second, BeforePrompt: 2 * time.Second}
	f.seq.relay = config.NewRelayConfigHolderFrom(cfg)

	require.NoError(t, f.seq.Run(context.Background(), customer, "ORDER_12345"))

	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, f.clock.Sleeps())
}

func TestRunStopsWhenContextCancelled(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := f.seq.Run(ctx, customer, "ORDER_12345")

	assert.ErrorIs(t, err, context.Canceled)
	assert.NotEmpty(t, f.transport.Sent())
}
