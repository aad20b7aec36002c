// Package explorer implements the catalog query engine: debounced search
// and category filtering, offset pagination with result merging, and
// client-side price sorting.
//
// ARCHITECTURE:
//
// Generation-Counted Queries:
// Every fired query increments a generation counter. A completion is
// applied only if its generation still matches; responses for superseded
// queries are dropped entirely. This is the explicit replacement for the
// timer-cancellation race the debounce pattern otherwise invites.
//
// Debounce:
// Search and category changes arm a one-shot timer on the injected clock;
// each further change within the quiet window restarts it. Only when the
// window elapses untouched does a query fire, replacing (not appending to)
// the accumulated results.
//
// In-Flight Guard:
// LoadNextPage is dropped silently, not queued, while any fetch is in
// flight or once the remote has signalled exhaustion (a short page). The
// guard is mandatory: overlapping page loads must not both append.
//
// State is mutex-serialized; timer callbacks and page loads may run on
// their own goroutines but every state application happens under the lock.
package explorer
