package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/merch/internal/cart"
	"github.com/roach88/merch/internal/orders"
)

// Durable-storage keys. One JSON document each, written wholesale on every
// mutation and restored wholesale at startup.
const (
	cartKey  = "cart-storage"
	orderKey = "order-history"
)

// LoadCart restores the persisted cart line sequence.
// Absent or malformed records restore as an empty cart; a corrupted state
// file must never prevent startup.
func (s *Store) LoadCart(ctx context.Context) ([]cart.Line, error) {
	var lines []cart.Line
	if !s.loadState(ctx, cartKey, &lines) {
		return nil, nil
	}
	return lines, nil
}

// SaveCart writes the full cart line sequence. Synchronous: the record is
// on disk when this returns.
func (s *Store) SaveCart(ctx context.Context, lines []cart.Line) error {
	if lines == nil {
		lines = []cart.Line{}
	}
	return s.saveState(ctx, cartKey, lines)
}

// LoadOrders restores the persisted order history, newest first.
// Absent or malformed records restore as an empty history.
func (s *Store) LoadOrders(ctx context.Context) ([]orders.Order, error) {
	var history []orders.Order
	if !s.loadState(ctx, orderKey, &history) {
		return nil, nil
	}
	return history, nil
}

// SaveOrders writes the full order history.
func (s *Store) SaveOrders(ctx context.Context, history []orders.Order) error {
	if history == nil {
		history = []orders.Order{}
	}
	return s.saveState(ctx, orderKey, history)
}

// loadState reads and unmarshals one state record into v. Returns false if
// the record is absent or malformed; malformed records are logged and
// treated as absent rather than failing startup.
func (s *Store) loadState(ctx context.Context, key string, v any) bool {
	var raw string
	err := s.db.QueryRowContext(ctx, `
		SELECT value FROM client_state WHERE key = ?
	`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false
	}
	if err != nil {
		slog.Warn("state record unreadable, starting empty", "key", key, "error", err)
		return false
	}

	if err := json.Unmarshal([]byte(raw), v); err != nil {
		slog.Warn("state record malformed, starting empty", "key", key, "error", err)
		return false
	}
	return true
}

// saveState marshals v and upserts it under key.
func (s *Store) saveState(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal state %q: %w", key, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO client_state (key, value, updated_at)
		VALUES (?, ?, strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key, string(raw))
	if err != nil {
		return fmt.Errorf("write state %q: %w", key, err)
	}
	return nil
}
