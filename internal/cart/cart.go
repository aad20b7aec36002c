// Package cart implements the reactive, persisted cart store.
//
// A cart is an ordered sequence of lines; line identity is the
// product+variant combination, so adding the same combination twice
// increments quantity instead of duplicating. Every line carries the
// effective price frozen at add time; later price-affecting changes
// elsewhere never touch existing lines.
//
// All mutating operations persist the full line sequence through the
// injected Persister before returning.
package cart

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/roach88/merch/internal/catalog"
)

// Line is one distinct product+variant combination in the cart.
type Line struct {
	// LineID is derived from product id and selected variant:
	// "<id>-<color|default>-<size|default>".
	LineID string `json:"lineId"`

	// Product is a snapshot of the catalog item at add time.
	Product catalog.Product `json:"product"`

	Quantity      int    `json:"quantity"`
	SelectedColor string `json:"selectedColor,omitempty"`
	SelectedSize  string `json:"selectedSize,omitempty"`

	// Price is the effective unit price frozen at add time. It is never
	// recomputed, even if the quantity changes.
	Price float64 `json:"price"`
}

// LineID computes the identity key for a product+variant combination.
func LineID(productID int, v catalog.Variant) string {
	return strconv.Itoa(productID) + "-" + orDefault(v.Color) + "-" + orDefault(v.Size)
}

func orDefault(s string) string {
	if s == "" {
		return "default"
	}
	return s
}

// Persister stores and restores the full line sequence. Implemented by
// store.Store for production use; tests supply in-memory fakes.
type Persister interface {
	LoadCart(ctx context.Context) ([]Line, error)
	SaveCart(ctx context.Context, lines []Line) error
}

// Store holds the cart line sequence. Safe for concurrent use; every
// mutation is written through the persister before the call returns.
type Store struct {
	mu        sync.Mutex
	lines     []Line
	persister Persister
}

// New creates a cart store, restoring any persisted lines. An absent
// record restores as an empty cart.
func New(ctx context.Context, p Persister) (*Store, error) {
	lines, err := p.LoadCart(ctx)
	if err != nil {
		return nil, fmt.Errorf("restore cart: %w", err)
	}
	return &Store{lines: lines, persister: p}, nil
}

// Add puts a product+variant combination in the cart at the given frozen
// unit price. If a line with the same identity already exists its quantity
// is incremented by one and its price and variant are left untouched;
// otherwise a new line with quantity 1 is appended.
func (s *Store) Add(ctx context.Context, p catalog.Product, v catalog.Variant, price float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := LineID(p.ID, v)
	for i := range s.lines {
		if s.lines[i].LineID == id {
			s.lines[i].Quantity++
			return s.persist(ctx)
		}
	}

	s.lines = append(s.lines, Line{
		LineID:        id,
		Product:       p,
		Quantity:      1,
		SelectedColor: v.Color,
		SelectedSize:  v.Size,
		Price:         price,
	})
	return s.persist(ctx)
}

// UpdateQuantity sets the quantity of a line, clamped to a minimum of 1.
// Removal is a distinct explicit action; a requested quantity of zero or
// less never deletes the line. Unknown line ids are a silent no-op.
func (s *Store) UpdateQuantity(ctx context.Context, lineID string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		if s.lines[i].LineID == lineID {
			s.lines[i].Quantity = max(1, qty)
			return s.persist(ctx)
		}
	}
	return nil
}

// Remove deletes a line. Unknown line ids are a silent no-op.
func (s *Store) Remove(ctx context.Context, lineID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		if s.lines[i].LineID == lineID {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			return s.persist(ctx)
		}
	}
	return nil
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = nil
	return s.persist(ctx)
}

// Lines returns a copy of the line sequence in add order.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// Len returns the number of distinct lines.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines)
}

// TotalPrice returns the subtotal over all lines (price * quantity).
// Returns 0 for an empty cart.
func (s *Store) TotalPrice() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0.0
	for _, l := range s.lines {
		total += l.Price * float64(l.Quantity)
	}
	return total
}

// persist writes the current line sequence. Callers must hold s.mu.
func (s *Store) persist(ctx context.Context) error {
	if err := s.persister.SaveCart(ctx, s.lines); err != nil {
		return fmt.Errorf("persist cart: %w", err)
	}
	return nil
}
