package correlation

import (
	"github.com/smallbiznis/orderrelay/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("correlation",
	fx.Provide(NewFromConfig),
)

func NewFromConfig(holder *config.RelayConfigHolder) (*Table, error) {
	cfg := holder.Get().Correlation
	return New(Options{Tolerance: cfg.Tolerance, Capacity: cfg.Capacity})
}
