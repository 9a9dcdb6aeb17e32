package repository

import (
	"errors"

	"github.com/smallbiznis/orderrelay/internal/config"
	"github.com/smallbiznis/orderrelay/internal/order/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Cfg config.Config
	Log *zap.Logger
	DB  *gorm.DB `optional:"true"`
}

// Provide picks the backend named by ORDER_STORE.
func Provide(p Params) (domain.Repository, error) {
	switch p.Cfg.OrderStore {
	case config.StoreSQL:
		if p.DB == nil {
			return nil, errors.New("order store is sql but no database is configured")
		}
		p.Log.Info("order store: sql", zap.String("db_type", p.Cfg.DBType))
		return NewSQL(p.DB), nil
	default:
		p.Log.Info("order store: file", zap.String("path", p.Cfg.OrdersFile))
		return NewFile(p.Cfg.OrdersFile), nil
	}
}
