package service

import (
	"context"
	"fmt"

	"github.com/smallbiznis/orderrelay/internal/order/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		log:  p.Log.Named("order.service"),
		repo: p.Repo,
	}
}

func (s *Service) Lookup(ctx context.Context, id string) (domain.Order, error) {
	id = domain.NormalizeID(id)
	if id == "" {
		return domain.Order{}, domain.ErrNotFound
	}

	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.log.Error("order lookup failed", zap.String("order_id", id), zap.Error(err))
		return domain.Order{}, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	if item == nil {
		return domain.Order{}, domain.ErrNotFound
	}

	return *item, nil
}

func (s *Service) Ping(ctx context.Context) error {
	if err := s.repo.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}
