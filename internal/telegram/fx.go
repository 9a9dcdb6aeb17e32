package telegram

import (
	"github.com/smallbiznis/orderrelay/internal/messaging"
	"github.com/smallbiznis/orderrelay/internal/relay"
	"go.uber.org/fx"
)

var Module = fx.Module("telegram",
	fx.Provide(NewBotAPI),
	fx.Provide(NewIdentity),
	fx.Provide(
		fx.Annotate(NewClient, fx.As(new(messaging.Transport))),
	),
	fx.Provide(func(r *relay.Router) Dispatcher { return r }),
	fx.Provide(NewPoller),
	fx.Invoke(func(lc fx.Lifecycle, p *Poller) {
		lc.Append(fx.Hook{OnStart: p.Start, OnStop: p.Stop})
	}),
)
