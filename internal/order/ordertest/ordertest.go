// Package ordertest holds order fixtures and an in-memory domain.Service.
package ordertest

import (
	"context"
	"strings"
	"sync"

	"github.com/smallbiznis/orderrelay/internal/order/domain"
	"gorm.io/datatypes"
)

// Sample is the order used across the relay tests.
func Sample() domain.Order {
	return domain.Order{
		ID:           "ORDER_12345",
		CustomerName: "Aung Aung",
		Items: datatypes.JSONSlice[domain.LineItem]{
			{Name: "Denim Jacket", Qty: 1, Price: 150, Image: "https://example.com/jacket.jpg"},
			{Name: "Canvas Sneakers", Qty: 2, Price: 150, Image: "https://example.com/sneakers.jpg"},
		},
		ShippingFee:     50,
		DeliveryAddress: "No. 12, Pyay Road\nYangon",
		Total:           500,
		Currency:        "USD",
		PaymentMethods: datatypes.JSONSlice[domain.PaymentOption]{
			{Name: "Bank Transfer", Details: "Account: 123-456-789"},
			{Name: "KBZ Pay", Details: "Phone: 09 123 456 789"},
		},
	}
}

// Service answers lookups from a map. Err, when set, is returned for every lookup.
type Service struct {
	Err error

	mu     sync.Mutex
	orders map[string]domain.Order
	calls  []string
}

func NewService(orders ...domain.Order) *Service {
	s := &Service{orders: make(map[string]domain.Order, len(orders))}
	for _, o := range orders {
		s.orders[o.ID] = o
	}
	return s
}

func (s *Service) Lookup(_ context.Context, id string) (domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id = strings.TrimSpace(id)
	s.calls = append(s.calls, id)
	if s.Err != nil {
		return domain.Order{}, s.Err
	}
	o, ok := s.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrNotFound
	}
	return o, nil
}

// Put adds or replaces an order.
func (s *Service) Put(o domain.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID] = o
}

// Ping fails with Err when set.
func (s *Service) Ping(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Err
}

// Calls returns the ids passed to Lookup, in order.
func (s *Service) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

var _ domain.Service = (*Service)(nil)
