package clock

import (
	"context"
	"time"

	"go.uber.org/fx"
)

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// Sleeper pauses the caller for d or until ctx is done.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// System is the wall clock.
type System struct{}

func (System) Now() time.Time {
	return time.Now().UTC()
}

func (System) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var Module = fx.Module("clock",
	fx.Provide(
		func() Clock { return System{} },
		func() Sleeper { return System{} },
	),
)
