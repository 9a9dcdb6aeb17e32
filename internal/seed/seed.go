package seed

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/smallbiznis/orderrelay/internal/order/domain"
	"github.com/smallbiznis/orderrelay/internal/order/repository"
	"github.com/smallbiznis/orderrelay/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Result counts what an import did per order.
type Result struct {
	Inserted int
	Updated  int
	Skipped  int
}

// ImportFile loads the JSON order file at path into the orders table.
func ImportFile(ctx context.Context, conn *gorm.DB, path string, overwrite bool, log *zap.Logger) (Result, error) {
	orders, err := repository.LoadFile(path)
	if err != nil {
		return Result{}, err
	}
	return ImportOrders(ctx, conn, orders, overwrite, log)
}

// ImportOrders creates the orders table if needed and writes every order.
// Existing rows are left alone unless overwrite is set.
func ImportOrders(ctx context.Context, conn *gorm.DB, orders map[string]domain.Order, overwrite bool, log *zap.Logger) (Result, error) {
	if conn == nil {
		return Result{}, errors.New("seed database handle is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("seed")

	tx := conn.WithContext(ctx)
	if err := tx.AutoMigrate(&domain.Order{}); err != nil {
		return Result{}, fmt.Errorf("migrate orders: %w", err)
	}

	var res Result
	for _, id := range slices.Sorted(maps.Keys(orders)) {
		order := orders[id]
		order.ID = domain.NormalizeID(id)
		if order.ID == "" {
			log.Warn("skipping order with empty id")
			res.Skipped++
			continue
		}

		var existing int64
		if err := tx.Model(&domain.Order{}).Where("id = ?", order.ID).Count(&existing).Error; err != nil {
			return res, fmt.Errorf("check order %s: %w", order.ID, err)
		}

		switch {
		case existing > 0 && !overwrite:
			res.Skipped++
		case existing > 0:
			if err := tx.Save(&order).Error; err != nil {
				return res, fmt.Errorf("update order %s: %w", order.ID, err)
			}
			res.Updated++
		default:
			if err := tx.Create(&order).Error; err != nil {
				if db.IsDuplicateKeyErr(err) {
					res.Skipped++
					continue
				}
				return res, fmt.Errorf("insert order %s: %w", order.ID, err)
			}
			res.Inserted++
		}
	}

	log.Info("orders imported",
		zap.Int("inserted", res.Inserted),
		zap.Int("updated", res.Updated),
		zap.Int("skipped", res.Skipped),
	)
	return res, nil
}
