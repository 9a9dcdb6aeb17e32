package repository

import (
	"context"
	"errors"

	"github.com/smallbiznis/orderrelay/internal/order/domain"
	"gorm.io/gorm"
)

type sqlRepo struct {
	db *gorm.DB
}

func NewSQL(db *gorm.DB) domain.Repository {
	return &sqlRepo{db: db}
}

func (r *sqlRepo) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var order domain.Order
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Take(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *sqlRepo) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
