package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/smallbiznis/orderrelay/internal/config"
	"github.com/smallbiznis/orderrelay/internal/observability"
	"github.com/smallbiznis/orderrelay/internal/seed"
	"github.com/smallbiznis/orderrelay/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	file := flag.String("file", "", "orders JSON file (defaults to ORDERS_FILE)")
	overwrite := flag.Bool("overwrite", false, "replace orders that already exist")
	flag.Parse()

	app := fx.New(
		config.Module,
		observability.Module,
		db.Module,
		fx.Decorate(func(cfg config.Config) config.Config {
			cfg.OrderStore = config.StoreSQL
			if *file != "" {
				cfg.OrdersFile = *file
			}
			return cfg
		}),
		fx.Invoke(func(cfg config.Config, conn *gorm.DB, log *zap.Logger) error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			_, err := seed.ImportFile(ctx, conn, cfg.OrdersFile, *overwrite, log)
			return err
		}),
		fx.NopLogger,
	)
	if err := app.Err(); err != nil {
		fmt.Fprintln(os.Stderr, "seed failed:", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Start(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "seed failed:", err)
		os.Exit(1)
	}
	_ = app.Stop(ctx)
}
