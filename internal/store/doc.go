// Package store provides SQLite-backed durable storage for client state.
//
// The schema is a single key-value table; each record is written wholesale
// on every mutation and restored wholesale at startup:
//
//   - "cart-storage": the cart line sequence
//   - "order-history": the order log, newest first
//
// Reads are forgiving: an absent or malformed record restores as the empty
// default so a corrupted state file never prevents startup. Writes are
// synchronous; a mutating store operation does not return until its record
// is on disk.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
