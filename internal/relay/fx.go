package relay

import (
	"context"

	"github.com/smallbiznis/orderrelay/internal/presentation"
	"go.uber.org/fx"
)

var Module = fx.Module("relay",
	fx.Provide(func(s *presentation.Sequencer) Presenter { return s }),
	fx.Provide(New),
	fx.Invoke(registerDrain),
)

// registerDrain lets in-flight operator hand-offs finish on shutdown.
func registerDrain(lc fx.Lifecycle, r *Router) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			done := make(chan struct{})
			go func() {
				r.Wait()
				close(done)
			}()
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
}
