package clock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSystemSleepHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := System{}.Sleep(ctx, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSystemSleepZero(t *testing.T) {
	assert.NoError(t, System{}.Sleep(context.Background(), 0))
}

func TestFakeClockRecordsSleeps(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c := NewFakeClock(start)

	assert.NoError(t, c.Sleep(context.Background(), 500*time.Millisecond))
	c.Advance(time.Second)

	assert.Equal(t, start.Add(1500*time.Millisecond), c.Now())
	assert.Equal(t, []time.Duration{500 * time.Millisecond}, c.Sleeps())
}
