package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/smallbiznis/orderrelay/internal/order/domain"
)

// fileRepo reads a JSON object keyed by order id. The file is re-read on
// every lookup so edits show up without a restart.
type fileRepo struct {
	path string
}

func NewFile(path string) domain.Repository {
	return &fileRepo{path: path}
}

func (r *fileRepo) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	orders, err := LoadFile(r.path)
	if err != nil {
		return nil, err
	}
	order, ok := orders[id]
	if !ok {
		return nil, nil
	}
	if order.ID == "" {
		order.ID = id
	}
	return &order, nil
}

func (r *fileRepo) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := LoadFile(r.path)
	return err
}

// LoadFile decodes every order in the JSON file at path.
func LoadFile(path string) (map[string]domain.Order, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read orders file: %w", err)
	}
	var orders map[string]domain.Order
	if err := json.Unmarshal(data, &orders); err != nil {
		return nil, fmt.Errorf("decode orders file: %w", err)
	}
	return orders, nil
}
