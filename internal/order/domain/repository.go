package domain

import "context"

// Repository reads orders from the source of truth. A missing order is
// (nil, nil); any error is an I/O failure.
type Repository interface {
	FindByID(ctx context.Context, id string) (*Order, error)
	// Ping reports whether the store can currently be read.
	Ping(ctx context.Context) error
}
