// Package orders implements the persisted order history.
//
// The history is append-only: orders are prepended (newest first), never
// edited, never deleted. Each order carries a deep snapshot of the cart
// lines it was placed with, decoupled from any later cart mutation.
package orders

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/roach88/merch/internal/cart"
)

// Status is an order's fulfillment stage. New orders always start at
// StatusPlaced; nothing in this client advances status automatically.
type Status string

const (
	StatusPlaced    Status = "placed"
	StatusPacked    Status = "packed"
	StatusShipped   Status = "shipped"
	StatusTransit   Status = "transit"
	StatusDelivered Status = "delivered"
)

// Statuses is the fixed fulfillment sequence, in progress order.
var Statuses = []Status{StatusPlaced, StatusPacked, StatusShipped, StatusTransit, StatusDelivered}

// Index returns the position of s in the fulfillment sequence, or -1 for
// an unknown status. Used for progress rendering.
func (s Status) Index() int {
	for i, known := range Statuses {
		if s == known {
			return i
		}
	}
	return -1
}

// ShippingInfo is the validated shipping block captured at checkout.
type ShippingInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
	City    string `json:"city"`
	Zip     string `json:"zip"`
}

// Order is one completed checkout.
type Order struct {
	ID           string       `json:"id"`
	Date         time.Time    `json:"date"`
	Items        []cart.Line  `json:"items"`
	Total        float64      `json:"total"`
	Status       Status       `json:"status"`
	ShippingInfo ShippingInfo `json:"shippingInfo"`
}

// Persister stores and restores the full order sequence, newest first.
type Persister interface {
	LoadOrders(ctx context.Context) ([]Order, error)
	SaveOrders(ctx context.Context, orders []Order) error
}

// Store holds the order history. Safe for concurrent use; Add persists
// before returning.
type Store struct {
	mu        sync.Mutex
	orders    []Order
	persister Persister
}

// New creates an order store, restoring any persisted history. An absent
// record restores as an empty history.
func New(ctx context.Context, p Persister) (*Store, error) {
	history, err := p.LoadOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("restore order history: %w", err)
	}
	return &Store{orders: history, persister: p}, nil
}

// Add prepends an order to the history and persists. There is no update
// or delete; the history only grows.
func (s *Store) Add(ctx context.Context, o Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orders = append([]Order{o}, s.orders...)
	if err := s.persister.SaveOrders(ctx, s.orders); err != nil {
		return fmt.Errorf("persist order history: %w", err)
	}
	return nil
}

// All returns a copy of the history, newest first.
func (s *Store) All() []Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Order, len(s.orders))
	copy(out, s.orders)
	return out
}

// Len returns the number of orders in the history.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}
