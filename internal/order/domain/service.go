package domain

import (
	"context"
	"errors"
)

type Service interface {
	// Lookup returns ErrNotFound when the order does not exist and an error
	// wrapping ErrStoreUnavailable when the store cannot be read.
	Lookup(ctx context.Context, id string) (Order, error)
	// Ping returns an error wrapping ErrStoreUnavailable when the store is down.
	Ping(ctx context.Context) error
}

var (
	ErrNotFound              = errors.New("not_found")
	ErrStoreUnavailable      = errors.New("store_unavailable")
	ErrPaymentMethodNotFound = errors.New("payment_method_not_found")
)
