package db

import (
	"context"
	"time"

	"github.com/smallbiznis/orderrelay/internal/config"
	obslogger "github.com/smallbiznis/orderrelay/internal/observability/logger"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormprom "gorm.io/plugin/prometheus"
)

var Module = fx.Module("db",
	fx.Provide(New),
)

type Params struct {
	fx.In

	Lc  fx.Lifecycle
	Cfg config.Config
	Log *zap.Logger
}

// New opens the order database when ORDER_STORE=sql and returns nil otherwise.
func New(p Params) (*gorm.DB, error) {
	if p.Cfg.OrderStore != config.StoreSQL {
		return nil, nil
	}

	dialector, err := Dialect(p.Cfg)
	if err != nil {
		return nil, err
	}

	conn, err := Open(dialector, p.Cfg, p.Log)
	if err != nil {
		return nil, err
	}
	if err := instrument(conn, p.Cfg); err != nil {
		return nil, err
	}

	p.Lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	p.Log.Info("database connected",
		zap.String("db_type", p.Cfg.DBType),
		zap.String("db_name", p.Cfg.DBName),
	)
	return conn, nil
}

// Open connects through dialector and applies the pool settings from cfg.
func Open(dialector gorm.Dialector, cfg config.Config, log *zap.Logger) (*gorm.DB, error) {
	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger: obslogger.NewGormLogger(log, cfg.Environment == "development"),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	if cfg.DBMaxIdleConn > 0 {
		sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConn)
	}
	if cfg.DBMaxOpenConn > 0 {
		sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConn)
	}
	if cfg.DBConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.DBConnMaxLifetime) * time.Second)
	}
	if cfg.DBConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(time.Duration(cfg.DBConnMaxIdleTime) * time.Second)
	}
	return conn, nil
}

func instrument(conn *gorm.DB, cfg config.Config) error {
	if err := conn.Use(otelgorm.NewPlugin(otelgorm.WithDBName(cfg.DBName))); err != nil {
		return err
	}
	// Pool stats land on the default registry served at /metrics.
	return conn.Use(gormprom.New(gormprom.Config{
		DBName:          cfg.DBName,
		RefreshInterval: 15,
		StartServer:     false,
	}))
}
