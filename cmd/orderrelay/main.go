package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/orderrelay/internal/clock"
	"github.com/smallbiznis/orderrelay/internal/config"
	"github.com/smallbiznis/orderrelay/internal/correlation"
	"github.com/smallbiznis/orderrelay/internal/observability"
	"github.com/smallbiznis/orderrelay/internal/order"
	"github.com/smallbiznis/orderrelay/internal/presentation"
	"github.com/smallbiznis/orderrelay/internal/ratelimit"
	"github.com/smallbiznis/orderrelay/internal/relay"
	"github.com/smallbiznis/orderrelay/internal/server"
	"github.com/smallbiznis/orderrelay/internal/telegram"
	"github.com/smallbiznis/orderrelay/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		order.Module,
		correlation.Module,
		presentation.Module,
		ratelimit.Module,
		relay.Module,
		telegram.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
